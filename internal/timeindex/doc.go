// Package timeindex describes the time periods that model data is defined
// over and averages vectors across them.
//
// Two calendars are supported. The ISO calendar has years of 52 or 53 ISO
// weeks. The 52-week calendar treats every year as exactly 52 weeks: ISO week
// 53 does not exist on it, so durations and averages skip it. Internally each
// calendar is an axis of time.Duration offsets from the start of ISO year
// 2000, and the 52-week axis gives week 53 zero length.
package timeindex
