package timeindex

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInvalidTimeIndex is returned when an index cannot be constructed from
	// the given arguments.
	ErrInvalidTimeIndex = errors.New("invalid time index")
	// ErrInvalidArgument is returned for call-time argument errors such as a
	// vector whose length does not match the index.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrOutOfRange is returned when a window reaches outside the index and
	// the corresponding end is not extrapolated.
	ErrOutOfRange = errors.New("window outside time index")
)

// TimeIndex describes the periods a vector of values is defined over.
type TimeIndex interface {
	StartTime() time.Time
	StopTime() time.Time
	NumPeriods() int
	Is52WeekYears() bool
	ExtrapolateFirstPoint() bool
	ExtrapolateLastPoint() bool

	// IsConstant reports a single period that extends over all time.
	IsConstant() bool
	IsWholeYears() bool
	IsOneYear() bool
	// ReferencePeriod is nil unless the index covers whole years.
	ReferencePeriod() *ReferencePeriod

	// DatetimeList returns the NumPeriods()+1 period boundaries.
	DatetimeList() []time.Time
	// TotalDuration is the length of the index on its own calendar.
	TotalDuration() time.Duration

	// PeriodAverage returns the duration weighted average of vector over
	// [start, start+duration), where the window is measured on the 52-week
	// calendar if is52 is set.
	PeriodAverage(vector []float64, start time.Time, duration time.Duration, is52 bool) (float64, error)
	CopyAsReferencePeriod(rp *ReferencePeriod) (*SinglePeriodTimeIndex, error)
	// WriteIntoFixedFrequency resamples input, defined over this index, onto
	// targetIndex and stores the result in target.
	WriteIntoFixedFrequency(target []float64, targetIndex *FixedFrequencyTimeIndex, input []float64) error

	Equal(other TimeIndex) bool
}

func checkVector(vector []float64, n int) error {
	if len(vector) != n {
		return fmt.Errorf("%w: Vector shape (%d,) does not match number of periods %d of timeindex", ErrInvalidArgument, len(vector), n)
	}
	return nil
}

func checkTarget(target []float64, targetIndex *FixedFrequencyTimeIndex) error {
	if targetIndex == nil {
		return fmt.Errorf("%w: target time index is nil", ErrInvalidArgument)
	}
	if len(target) != targetIndex.NumPeriods() {
		return fmt.Errorf("%w: target vector shape (%d,) does not match number of periods %d of target timeindex",
			ErrInvalidArgument, len(target), targetIndex.NumPeriods())
	}
	return nil
}

// axisBounds maps boundaries onto the time axis of the given calendar.
func axisBounds(bounds []time.Time, is52 bool) []time.Duration {
	out := make([]time.Duration, len(bounds))
	for i, b := range bounds {
		out[i] = toAxis(b, is52)
	}
	return out
}

// weightedAverage averages vector over the window [ws, we) given the period
// boundaries a, all on the same axis. Portions of the window before the first
// or after the last boundary take the value of the nearest period if the
// corresponding flag allows it.
func weightedAverage(vector []float64, a []time.Duration, ws, we time.Duration, extrapFirst, extrapLast, is52 bool) (float64, error) {
	n := len(a) - 1
	if ws < a[0] && !extrapFirst {
		return 0, fmt.Errorf("%w: start_time %s is before the first period and extrapolate_first_point is False",
			ErrOutOfRange, fromAxis(ws, is52).Format(time.RFC3339))
	}
	if we > a[n] && !extrapLast {
		return 0, fmt.Errorf("%w: End time %s is after the last period and extrapolate_last_point is False",
			ErrOutOfRange, fromAxis(we, is52).Format(time.RFC3339))
	}

	var sum, total float64
	add := func(v float64, w time.Duration) {
		if w <= 0 {
			return
		}
		sum += v * w.Seconds()
		total += w.Seconds()
	}
	if ws < a[0] {
		add(vector[0], min(we, a[0])-ws)
	}
	for i := range n {
		add(vector[i], min(we, a[i+1])-max(ws, a[i]))
	}
	if we > a[n] {
		add(vector[n-1], we-max(ws, a[n]))
	}
	if total == 0 {
		return 0, fmt.Errorf("%w: averaging window has zero duration", ErrInvalidArgument)
	}
	return sum / total, nil
}

// average is the PeriodAverage shared by all index kinds.
func average(ti TimeIndex, vector []float64, start time.Time, duration time.Duration, is52 bool) (float64, error) {
	if err := checkVector(vector, ti.NumPeriods()); err != nil {
		return 0, err
	}
	if duration <= 0 {
		return 0, fmt.Errorf("%w: duration must be positive, got %s", ErrInvalidArgument, duration)
	}
	if err := checkInstant(start, "start_time", ErrInvalidArgument); err != nil {
		return 0, err
	}
	if duration > maxSpan {
		return 0, fmt.Errorf("%w: duration %s is longer than the supported ISO years %d to %d",
			ErrInvalidArgument, duration, MinYear, MaxYear)
	}
	a := axisBounds(ti.DatetimeList(), is52)
	ws := toAxis(start, is52)
	return weightedAverage(vector, a, ws, ws+duration, ti.ExtrapolateFirstPoint(), ti.ExtrapolateLastPoint(), is52)
}

// resampleAverage fills target with the average of input over every period of
// targetIndex.
func resampleAverage(ti TimeIndex, target []float64, targetIndex *FixedFrequencyTimeIndex, input []float64) error {
	if err := checkTarget(target, targetIndex); err != nil {
		return err
	}
	if err := checkVector(input, ti.NumPeriods()); err != nil {
		return err
	}
	is52 := targetIndex.Is52WeekYears()
	a := axisBounds(ti.DatetimeList(), is52)
	ts := toAxis(targetIndex.StartTime(), is52)
	for j := range target {
		ws := ts + time.Duration(j)*targetIndex.PeriodDuration()
		v, err := weightedAverage(input, a, ws, ws+targetIndex.PeriodDuration(),
			ti.ExtrapolateFirstPoint(), ti.ExtrapolateLastPoint(), is52)
		if err != nil {
			return err
		}
		target[j] = v
	}
	return nil
}

func copyAsReferencePeriod(ti TimeIndex, rp *ReferencePeriod) (*SinglePeriodTimeIndex, error) {
	if rp == nil {
		return nil, fmt.Errorf("%w: Cannot copy as reference period when provided reference_period is None", ErrInvalidArgument)
	}
	start := relocate(isoYearStart(rp.StartYear(), time.UTC), ti.StartTime().Location())
	span := yearSpan(rp.StartYear(), rp.NumYears(), ti.Is52WeekYears())
	return NewSinglePeriodTimeIndex(start, span, ti.Is52WeekYears(), ti.ExtrapolateFirstPoint(), ti.ExtrapolateLastPoint())
}

func referencePeriod(ti TimeIndex) *ReferencePeriod {
	y, n, ok := wholeYears(ti.StartTime(), ti.StopTime())
	if !ok {
		return nil
	}
	return &ReferencePeriod{startYear: y, numYears: n}
}
