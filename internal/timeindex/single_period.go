package timeindex

import (
	"fmt"
	"time"
)

// SinglePeriodTimeIndex is a fixed frequency index with exactly one period.
// Resolvers use it as the window a level is measured over.
type SinglePeriodTimeIndex struct {
	FixedFrequencyTimeIndex
}

func NewSinglePeriodTimeIndex(start time.Time, period time.Duration, is52, extrapFirst, extrapLast bool) (*SinglePeriodTimeIndex, error) {
	f, err := NewFixedFrequencyTimeIndex(start, period, 1, is52, extrapFirst, extrapLast)
	if err != nil {
		return nil, err
	}
	return &SinglePeriodTimeIndex{FixedFrequencyTimeIndex: *f}, nil
}

func (s *SinglePeriodTimeIndex) Equal(other TimeIndex) bool {
	o, ok := other.(*SinglePeriodTimeIndex)
	if !ok || o == nil {
		return false
	}
	return s.FixedFrequencyTimeIndex.Equal(&o.FixedFrequencyTimeIndex)
}

func (s *SinglePeriodTimeIndex) String() string {
	return fmt.Sprintf("SinglePeriodTimeIndex(start=%s, period=%s, is_52_week_years=%t)",
		s.start.Format(time.RFC3339), s.period, s.is52)
}
