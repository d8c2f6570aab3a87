package timeindex

import (
	"fmt"
	"time"
)

// FixedFrequencyTimeIndex is a run of NumPeriods equally long periods. On the
// 52-week calendar the periods are laid out on an axis where ISO week 53 does
// not exist.
type FixedFrequencyTimeIndex struct {
	start       time.Time
	period      time.Duration
	numPeriods  int
	is52        bool
	extrapFirst bool
	extrapLast  bool
}

// NewFixedFrequencyTimeIndex validates its arguments and returns the index.
func NewFixedFrequencyTimeIndex(start time.Time, period time.Duration, numPeriods int, is52, extrapFirst, extrapLast bool) (*FixedFrequencyTimeIndex, error) {
	if numPeriods <= 0 {
		return nil, fmt.Errorf("%w: num_periods must be a positive integer, got %d", ErrInvalidTimeIndex, numPeriods)
	}
	if period < time.Second {
		return nil, fmt.Errorf("%w: period_duration must be at least one second, got %s", ErrInvalidTimeIndex, period)
	}
	if period%time.Second != 0 {
		return nil, fmt.Errorf("%w: period_duration must be a whole number of seconds, got %s", ErrInvalidTimeIndex, period)
	}
	if err := checkInstant(start, "start_time", ErrInvalidTimeIndex); err != nil {
		return nil, err
	}
	if period > maxSpan/time.Duration(numPeriods) {
		return nil, fmt.Errorf("%w: %d periods of %s reach outside the supported ISO years %d to %d",
			ErrInvalidTimeIndex, numPeriods, period, MinYear, MaxYear)
	}
	if is52 && isWeek53(start) {
		return nil, fmt.Errorf("%w: Week of start_time must not be 53 when is_52_week_years is True, got %s",
			ErrInvalidTimeIndex, start.Format(time.RFC3339))
	}
	f := &FixedFrequencyTimeIndex{
		start:       start,
		period:      period,
		numPeriods:  numPeriods,
		is52:        is52,
		extrapFirst: extrapFirst,
		extrapLast:  extrapLast,
	}
	if err := checkInstant(f.StopTime(), "stop_time", ErrInvalidTimeIndex); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *FixedFrequencyTimeIndex) StartTime() time.Time          { return f.start }
func (f *FixedFrequencyTimeIndex) PeriodDuration() time.Duration { return f.period }
func (f *FixedFrequencyTimeIndex) NumPeriods() int               { return f.numPeriods }
func (f *FixedFrequencyTimeIndex) Is52WeekYears() bool           { return f.is52 }
func (f *FixedFrequencyTimeIndex) ExtrapolateFirstPoint() bool   { return f.extrapFirst }
func (f *FixedFrequencyTimeIndex) ExtrapolateLastPoint() bool    { return f.extrapLast }
func (f *FixedFrequencyTimeIndex) TotalDuration() time.Duration {
	return time.Duration(f.numPeriods) * f.period
}

func (f *FixedFrequencyTimeIndex) StopTime() time.Time {
	return addOnAxis(f.start, f.TotalDuration(), f.is52)
}

func (f *FixedFrequencyTimeIndex) IsConstant() bool {
	return f.numPeriods == 1 && f.extrapFirst && f.extrapLast
}

func (f *FixedFrequencyTimeIndex) IsWholeYears() bool {
	_, _, ok := wholeYears(f.start, f.StopTime())
	return ok
}

func (f *FixedFrequencyTimeIndex) IsOneYear() bool {
	_, n, ok := wholeYears(f.start, f.StopTime())
	return ok && n == 1
}

func (f *FixedFrequencyTimeIndex) ReferencePeriod() *ReferencePeriod {
	return referencePeriod(f)
}

func (f *FixedFrequencyTimeIndex) DatetimeList() []time.Time {
	out := make([]time.Time, f.numPeriods+1)
	origin := toAxis(f.start, f.is52)
	loc := f.start.Location()
	for i := range out {
		out[i] = relocate(fromAxis(origin+time.Duration(i)*f.period, f.is52), loc)
	}
	return out
}

func (f *FixedFrequencyTimeIndex) PeriodAverage(vector []float64, start time.Time, duration time.Duration, is52 bool) (float64, error) {
	return average(f, vector, start, duration, is52)
}

func (f *FixedFrequencyTimeIndex) CopyAsReferencePeriod(rp *ReferencePeriod) (*SinglePeriodTimeIndex, error) {
	return copyAsReferencePeriod(f, rp)
}

// WriteIntoFixedFrequency copies input when the target has the same layout,
// and otherwise averages input over every target period.
func (f *FixedFrequencyTimeIndex) WriteIntoFixedFrequency(target []float64, targetIndex *FixedFrequencyTimeIndex, input []float64) error {
	if targetIndex != nil && f.sameGrid(targetIndex) {
		if err := checkTarget(target, targetIndex); err != nil {
			return err
		}
		if err := checkVector(input, f.numPeriods); err != nil {
			return err
		}
		copy(target, input)
		return nil
	}
	return resampleAverage(f, target, targetIndex, input)
}

func (f *FixedFrequencyTimeIndex) sameGrid(o *FixedFrequencyTimeIndex) bool {
	return f.start.Equal(o.start) && f.period == o.period && f.numPeriods == o.numPeriods && f.is52 == o.is52
}

func (f *FixedFrequencyTimeIndex) Equal(other TimeIndex) bool {
	o, ok := other.(*FixedFrequencyTimeIndex)
	if !ok || o == nil {
		return false
	}
	return f.sameGrid(o) && f.extrapFirst == o.extrapFirst && f.extrapLast == o.extrapLast
}

func (f *FixedFrequencyTimeIndex) String() string {
	return fmt.Sprintf("FixedFrequencyTimeIndex(start=%s, period=%s, n=%d, is_52_week_years=%t)",
		f.start.Format(time.RFC3339), f.period, f.numPeriods, f.is52)
}
