package timeindex

import (
	"fmt"
	"time"
)

const (
	day      = 24 * time.Hour
	week     = 7 * day
	yearOf52 = 52 * week
)

// epochYear anchors both time axes. Offsets are kept as time.Duration, which
// covers roughly 292 years in each direction.
const epochYear = 2000

// MinYear and MaxYear bound the ISO years an index may cover. Any two instants
// in [MinYear, MaxYear+1) are less than 292 years apart, so axis offsets and
// their differences fit in a time.Duration.
const (
	MinYear = 1850
	MaxYear = 2139
)

// maxSpan is the length of the supported range.
var maxSpan = isoYearStart(MaxYear+1, time.UTC).Sub(isoYearStart(MinYear, time.UTC))

// checkInstant rejects instants outside the supported years. The start of
// MaxYear+1 is allowed as an end boundary.
func checkInstant(t time.Time, name string, kind error) error {
	n := naive(t)
	if n.Before(isoYearStart(MinYear, time.UTC)) || n.After(isoYearStart(MaxYear+1, time.UTC)) {
		return fmt.Errorf("%w: %s %s is outside the supported ISO years %d to %d",
			kind, name, t.Format(time.RFC3339), MinYear, MaxYear)
	}
	return nil
}

// checkYears rejects year spans that leave the supported years.
func checkYears(startYear, numYears int, kind error) error {
	if startYear < MinYear || startYear > MaxYear || numYears > MaxYear+1-startYear {
		return fmt.Errorf("%w: years %d to %d are outside the supported ISO years %d to %d",
			kind, startYear, startYear+numYears-1, MinYear, MaxYear)
	}
	return nil
}

// ISODate returns midnight UTC of the given ISO year, week and weekday
// (Monday is 1).
func ISODate(year, week, weekday int) time.Time {
	return isoYearStart(year, time.UTC).AddDate(0, 0, (week-1)*7+weekday-1)
}

// isoYearStart returns the Monday of ISO week 1 of year, the week that holds
// January 4th.
func isoYearStart(year int, loc *time.Location) time.Time {
	jan4 := time.Date(year, time.January, 4, 0, 0, 0, 0, loc)
	offset := (int(jan4.Weekday()) + 6) % 7
	return jan4.AddDate(0, 0, -offset)
}

func isWeek53(t time.Time) bool {
	_, w := t.ISOWeek()
	return w == 53
}

// isISOYearStart reports whether t is exactly Monday 00:00 of ISO week 1.
func isISOYearStart(t time.Time) bool {
	y, _ := t.ISOWeek()
	return naive(t).Equal(isoYearStart(y, time.UTC))
}

// naive drops the location of t while keeping its wall clock.
func naive(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}

// relocate attaches loc to the wall clock of a naive time.
func relocate(t time.Time, loc *time.Location) time.Time {
	if loc == nil || loc == time.UTC {
		return t
	}
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), loc)
}

// toAxis maps t onto the time axis of the given calendar. On the 52-week axis
// ISO week 53 has zero length, so any instant inside it maps to the start of
// the following year.
func toAxis(t time.Time, is52 bool) time.Duration {
	t = naive(t)
	if !is52 {
		return t.Sub(isoYearStart(epochYear, time.UTC))
	}
	y, _ := t.ISOWeek()
	within := t.Sub(isoYearStart(y, time.UTC))
	if within > yearOf52 {
		within = yearOf52
	}
	return time.Duration(y-epochYear)*yearOf52 + within
}

// fromAxis is the inverse of toAxis. The result is naive.
func fromAxis(d time.Duration, is52 bool) time.Time {
	if !is52 {
		return isoYearStart(epochYear, time.UTC).Add(d)
	}
	years := d / yearOf52
	if d%yearOf52 < 0 {
		years--
	}
	within := d - years*yearOf52
	return isoYearStart(epochYear+int(years), time.UTC).Add(within)
}

// addOnAxis advances t by d on the calendar's axis.
func addOnAxis(t time.Time, d time.Duration, is52 bool) time.Time {
	return relocate(fromAxis(toAxis(t, is52)+d, is52), t.Location())
}

// yearSpan returns the length of numYears years starting at ISO year
// startYear under the given calendar.
func yearSpan(startYear, numYears int, is52 bool) time.Duration {
	if is52 {
		return time.Duration(numYears) * yearOf52
	}
	return isoYearStart(startYear+numYears, time.UTC).Sub(isoYearStart(startYear, time.UTC))
}

// wholeYears reports whether [start, stop) runs from the start of one ISO year
// to the start of a later one, and returns the start year and the year count.
func wholeYears(start, stop time.Time) (startYear, numYears int, ok bool) {
	if !isISOYearStart(start) || !isISOYearStart(stop) {
		return 0, 0, false
	}
	y0, _ := start.ISOWeek()
	y1, _ := stop.ISOWeek()
	if y1 <= y0 {
		return 0, 0, false
	}
	return y0, y1 - y0, true
}
