package timeindex

import (
	"fmt"
	"time"
)

// profileBaseYear is a 53-week ISO year, so one-year profiles get week 53 on
// the ISO calendar.
const profileBaseYear = 1981

// ModelYear is ISO year `year` on the 52-week calendar, as a single period.
// It panics if year is outside [MinYear, MaxYear].
func ModelYear(year int) *SinglePeriodTimeIndex {
	return mustSingle(isoYearStart(year, time.UTC), yearOf52, true, false, false)
}

// ModelYears returns one period per given ISO year, ending at the start of
// the year after the last one. The index extrapolates at both ends.
func ModelYears(years ...int) (*ListTimeIndex, error) {
	if len(years) == 0 {
		return nil, fmt.Errorf("%w: At least one year must be provided.", ErrInvalidTimeIndex)
	}
	for _, y := range years {
		if err := checkYears(y, 1, ErrInvalidTimeIndex); err != nil {
			return nil, err
		}
	}
	datetimes := make([]time.Time, 0, len(years)+1)
	for _, y := range years {
		datetimes = append(datetimes, isoYearStart(y, time.UTC))
	}
	datetimes = append(datetimes, isoYearStart(years[len(years)-1]+1, time.UTC))
	return NewListTimeIndex(datetimes, false, true, true)
}

// ProfileTimeIndex splits numYears years from startYear into periods of the
// given length, which must divide the span exactly.
func ProfileTimeIndex(startYear, numYears int, period time.Duration, is52 bool) (*FixedFrequencyTimeIndex, error) {
	if numYears <= 0 {
		return nil, fmt.Errorf("%w: num_years must be positive, got %d", ErrInvalidTimeIndex, numYears)
	}
	if period <= 0 {
		return nil, fmt.Errorf("%w: period_duration must be at least one second, got %s", ErrInvalidTimeIndex, period)
	}
	if err := checkYears(startYear, numYears, ErrInvalidTimeIndex); err != nil {
		return nil, err
	}
	span := yearSpan(startYear, numYears, is52)
	if span%period != 0 {
		return nil, fmt.Errorf("%w: Number of periods derived from input arguments must be an integer/whole number. Got %s / %s",
			ErrInvalidTimeIndex, span, period)
	}
	return NewFixedFrequencyTimeIndex(isoYearStart(startYear, time.UTC), period, int(span/period), is52, false, false)
}

// OneYearProfileTimeIndex is a one year profile index with the given
// resolution.
func OneYearProfileTimeIndex(period time.Duration, is52 bool) (*FixedFrequencyTimeIndex, error) {
	return ProfileTimeIndex(profileBaseYear, 1, period, is52)
}

func WeeklyIndex(startYear, numYears int, is52 bool) (*FixedFrequencyTimeIndex, error) {
	return ProfileTimeIndex(startYear, numYears, week, is52)
}

func DailyIndex(startYear, numYears int, is52 bool) (*FixedFrequencyTimeIndex, error) {
	return ProfileTimeIndex(startYear, numYears, day, is52)
}

// IsoCalendarDay is the single day given by ISO year, week and weekday.
func IsoCalendarDay(year, week, weekday int) *SinglePeriodTimeIndex {
	return mustSingle(ISODate(year, week, weekday), day, false, false, false)
}

// AverageYearRange is numYears ISO years from startYear as one period.
func AverageYearRange(startYear, numYears int) (*SinglePeriodTimeIndex, error) {
	if numYears <= 0 {
		return nil, fmt.Errorf("%w: num_years must be positive, got %d", ErrInvalidTimeIndex, numYears)
	}
	if err := checkYears(startYear, numYears, ErrInvalidTimeIndex); err != nil {
		return nil, err
	}
	return NewSinglePeriodTimeIndex(isoYearStart(startYear, time.UTC), yearSpan(startYear, numYears, false), false, false, false)
}

// ConstantTimeIndex is the index of values that do not vary over time.
func ConstantTimeIndex() *SinglePeriodTimeIndex {
	return mustSingle(isoYearStart(1985, time.UTC), yearOf52, true, true, true)
}

// mustSingle is for arguments that are valid by construction.
func mustSingle(start time.Time, period time.Duration, is52, extrapFirst, extrapLast bool) *SinglePeriodTimeIndex {
	ti, err := NewSinglePeriodTimeIndex(start, period, is52, extrapFirst, extrapLast)
	if err != nil {
		panic(err)
	}
	return ti
}
