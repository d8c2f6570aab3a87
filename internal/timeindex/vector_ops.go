package timeindex

import (
	"fmt"
	"time"
)

// Aggregate reduces in into out by summing or averaging consecutive chunks of
// len(in)/len(out) values.
func Aggregate(in, out []float64, sum bool) error {
	if len(out) == 0 || len(in)%len(out) != 0 {
		return fmt.Errorf("%w: cannot aggregate %d values into %d", ErrInvalidArgument, len(in), len(out))
	}
	chunk := len(in) / len(out)
	for i := range out {
		var s float64
		for _, v := range in[i*chunk : (i+1)*chunk] {
			s += v
		}
		if !sum {
			s /= float64(chunk)
		}
		out[i] = s
	}
	return nil
}

// PeriodDurationExcludedWeeks53 returns the length of [start, end) with all
// time inside ISO week 53 left out.
func PeriodDurationExcludedWeeks53(start, end time.Time) (time.Duration, error) {
	if end.Before(start) {
		return 0, fmt.Errorf("%w: end_time must be after or equal to start_time, got %s < %s",
			ErrInvalidArgument, end.Format(time.RFC3339), start.Format(time.RFC3339))
	}
	return toAxis(end, true) - toAxis(start, true), nil
}
