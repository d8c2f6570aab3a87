package timeindex

import "fmt"

// ReferencePeriod is a span of whole ISO years, used to normalise profiles
// and to relate levels to the years they were measured over.
type ReferencePeriod struct {
	startYear int
	numYears  int
}

// NewReferencePeriod returns the period starting at ISO year startYear and
// lasting numYears years.
func NewReferencePeriod(startYear, numYears int) (*ReferencePeriod, error) {
	if startYear <= 0 {
		return nil, fmt.Errorf("%w: start_year must be a positive integer. Got %d.", ErrInvalidArgument, startYear)
	}
	if numYears <= 0 {
		return nil, fmt.Errorf("%w: num_years must be a positive non-zero integer. Got %d.", ErrInvalidArgument, numYears)
	}
	if err := checkYears(startYear, numYears, ErrInvalidArgument); err != nil {
		return nil, err
	}
	return &ReferencePeriod{startYear: startYear, numYears: numYears}, nil
}

func (r *ReferencePeriod) StartYear() int { return r.startYear }
func (r *ReferencePeriod) NumYears() int  { return r.numYears }

// Equal treats two nil periods as equal.
func (r *ReferencePeriod) Equal(o *ReferencePeriod) bool {
	if r == nil || o == nil {
		return r == o
	}
	return r.startYear == o.startYear && r.numYears == o.numYears
}

func (r *ReferencePeriod) String() string {
	if r == nil {
		return "<nil>"
	}
	return fmt.Sprintf("ReferencePeriod(start_year=%d, num_years=%d)", r.startYear, r.numYears)
}
