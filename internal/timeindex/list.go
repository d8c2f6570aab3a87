package timeindex

import (
	"fmt"
	"slices"
	"sort"
	"time"
)

// ListTimeIndex is an irregular index given by its period boundaries.
type ListTimeIndex struct {
	datetimes   []time.Time
	is52        bool
	extrapFirst bool
	extrapLast  bool
}

// NewListTimeIndex returns an index with len(datetimes)-1 periods.
func NewListTimeIndex(datetimes []time.Time, is52, extrapFirst, extrapLast bool) (*ListTimeIndex, error) {
	if len(datetimes) <= 1 {
		return nil, fmt.Errorf("%w: datetime_list must contain more than one element, got %d", ErrInvalidTimeIndex, len(datetimes))
	}
	if err := checkInstant(datetimes[0], "first datetime", ErrInvalidTimeIndex); err != nil {
		return nil, err
	}
	if err := checkInstant(datetimes[len(datetimes)-1], "last datetime", ErrInvalidTimeIndex); err != nil {
		return nil, err
	}
	loc := datetimes[0].Location().String()
	for i, t := range datetimes {
		if t.Location().String() != loc {
			return nil, fmt.Errorf("%w: Datetime objects in datetime_list have differing time zone information", ErrInvalidTimeIndex)
		}
		if i > 0 && !datetimes[i-1].Before(t) {
			return nil, fmt.Errorf("%w: All elements of datetime_list must be smaller/lower than the succeeding element (index %d)",
				ErrInvalidTimeIndex, i-1)
		}
		if is52 && isWeek53(t) {
			return nil, fmt.Errorf("%w: When is_52_week_years is True, datetime_list should not contain week 53 datetimes. Got %s",
				ErrInvalidTimeIndex, t.Format(time.RFC3339))
		}
	}
	return &ListTimeIndex{
		datetimes:   slices.Clone(datetimes),
		is52:        is52,
		extrapFirst: extrapFirst,
		extrapLast:  extrapLast,
	}, nil
}

func (l *ListTimeIndex) StartTime() time.Time        { return l.datetimes[0] }
func (l *ListTimeIndex) StopTime() time.Time         { return l.datetimes[len(l.datetimes)-1] }
func (l *ListTimeIndex) NumPeriods() int             { return len(l.datetimes) - 1 }
func (l *ListTimeIndex) Is52WeekYears() bool         { return l.is52 }
func (l *ListTimeIndex) ExtrapolateFirstPoint() bool { return l.extrapFirst }
func (l *ListTimeIndex) ExtrapolateLastPoint() bool  { return l.extrapLast }
func (l *ListTimeIndex) DatetimeList() []time.Time   { return slices.Clone(l.datetimes) }

func (l *ListTimeIndex) TotalDuration() time.Duration {
	return toAxis(l.StopTime(), l.is52) - toAxis(l.StartTime(), l.is52)
}

func (l *ListTimeIndex) IsConstant() bool {
	return l.NumPeriods() == 1 && l.extrapFirst && l.extrapLast
}

func (l *ListTimeIndex) IsWholeYears() bool {
	_, _, ok := wholeYears(l.StartTime(), l.StopTime())
	return ok
}

// IsOneYear is false for an index that extrapolates, since it then covers
// more than its boundaries.
func (l *ListTimeIndex) IsOneYear() bool {
	if l.extrapFirst || l.extrapLast {
		return false
	}
	_, n, ok := wholeYears(l.StartTime(), l.StopTime())
	return ok && n == 1
}

func (l *ListTimeIndex) ReferencePeriod() *ReferencePeriod {
	return referencePeriod(l)
}

func (l *ListTimeIndex) PeriodAverage(vector []float64, start time.Time, duration time.Duration, is52 bool) (float64, error) {
	return average(l, vector, start, duration, is52)
}

func (l *ListTimeIndex) CopyAsReferencePeriod(rp *ReferencePeriod) (*SinglePeriodTimeIndex, error) {
	return copyAsReferencePeriod(l, rp)
}

// WriteIntoFixedFrequency gives every target period the value of the last
// input period that starts at or before it. Target periods must lie within
// the input boundaries unless the matching end extrapolates.
func (l *ListTimeIndex) WriteIntoFixedFrequency(target []float64, targetIndex *FixedFrequencyTimeIndex, input []float64) error {
	if err := checkTarget(target, targetIndex); err != nil {
		return err
	}
	if err := checkVector(input, l.NumPeriods()); err != nil {
		return err
	}

	is52 := targetIndex.Is52WeekYears()
	a := axisBounds(l.datetimes, is52)
	n := l.NumPeriods()
	ts := toAxis(targetIndex.StartTime(), is52)
	for j := range target {
		s := ts + time.Duration(j)*targetIndex.PeriodDuration()
		// number of boundaries at or before s
		i := sort.Search(len(a), func(k int) bool { return a[k] > s })
		switch {
		case i == 0:
			if !l.extrapFirst {
				return fmt.Errorf("%w: start_time %s of target period %d is before the first period and extrapolate_first_point is False",
					ErrOutOfRange, fromAxis(s, is52).Format(time.RFC3339), j)
			}
			target[j] = input[0]
		case i > n:
			if !l.extrapLast {
				return fmt.Errorf("%w: End time %s of input is before target period %d and extrapolate_last_point is False",
					ErrOutOfRange, l.StopTime().Format(time.RFC3339), j)
			}
			target[j] = input[n-1]
		default:
			target[j] = input[i-1]
		}
		if e := s + targetIndex.PeriodDuration(); e > a[n] && !l.extrapLast {
			return fmt.Errorf("%w: End time %s of input is before the end of target period %d and extrapolate_last_point is False",
				ErrOutOfRange, l.StopTime().Format(time.RFC3339), j)
		}
	}
	return nil
}

func (l *ListTimeIndex) Equal(other TimeIndex) bool {
	o, ok := other.(*ListTimeIndex)
	if !ok || o == nil {
		return false
	}
	if l.is52 != o.is52 || l.extrapFirst != o.extrapFirst || l.extrapLast != o.extrapLast {
		return false
	}
	return slices.EqualFunc(l.datetimes, o.datetimes, time.Time.Equal)
}
