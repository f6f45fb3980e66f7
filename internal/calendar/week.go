// ABOUTME: Calendar arithmetic for day, week, month and year boundaries.
// ABOUTME: Weeks start on Monday; every function works in an explicit location.
package calendar

import (
	"fmt"
	"strings"
	"time"
)

const dayKeyLayout = "2006-01-02"

var dayLayouts = []string{
	"2006-01-02",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
}

// ParseDay returns local midnight of the calendar day named by s.
// Zone-less values are read in loc; RFC3339 values are converted into loc first.
func ParseDay(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return StartOfDay(t, loc), nil
	}
	for _, layout := range dayLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return StartOfDay(t, loc), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date: %q", s)
}

// DayKey formats t as YYYY-MM-DD in loc. Used as a map key for day sets.
func DayKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(dayKeyLayout)
}

// StartOfDay returns midnight of t's day in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// AddDays moves a local midnight by n calendar days, keeping it at midnight across DST.
func AddDays(day time.Time, n int) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day()+n, 0, 0, 0, 0, day.Location())
}

// endOf returns the last representable instant before the next boundary.
func endOf(nextStart time.Time) time.Time {
	return nextStart.Add(-time.Nanosecond)
}

// WeekdayIndex maps Monday to 0 and Sunday to 6.
func WeekdayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// StartOfWeek returns midnight of the Monday on or before t.
func StartOfWeek(t time.Time, loc *time.Location) time.Time {
	day := StartOfDay(t, loc)
	return AddDays(day, -WeekdayIndex(day))
}

// EndOfWeek returns the last instant of the Sunday ending t's week.
func EndOfWeek(t time.Time, loc *time.Location) time.Time {
	return endOf(AddDays(StartOfWeek(t, loc), 7))
}

func StartOfMonth(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, loc)
}

func EndOfMonth(t time.Time, loc *time.Location) time.Time {
	start := StartOfMonth(t, loc)
	return endOf(time.Date(start.Year(), start.Month()+1, 1, 0, 0, 0, 0, loc))
}

func StartOfYear(t time.Time, loc *time.Location) time.Time {
	return time.Date(t.In(loc).Year(), time.January, 1, 0, 0, 0, 0, loc)
}

func EndOfYear(t time.Time, loc *time.Location) time.Time {
	return endOf(time.Date(t.In(loc).Year()+1, time.January, 1, 0, 0, 0, 0, loc))
}

// WeekOfYear returns the ISO 8601 week number of t.
func WeekOfYear(t time.Time) int {
	_, week := t.ISOWeek()
	return week
}

// DateRangeLabel renders a week span such as "Jul 1-7" or "Jul 29-Aug 4".
func DateRangeLabel(start, end time.Time) string {
	if start.Month() == end.Month() {
		return fmt.Sprintf("%s %d-%d", start.Format("Jan"), start.Day(), end.Day())
	}
	return fmt.Sprintf("%s %d-%s %d", start.Format("Jan"), start.Day(), end.Format("Jan"), end.Day())
}

// Range is an inclusive time interval. The zero Range is unbounded.
type Range struct {
	Start time.Time
	End   time.Time
}

// IsZero reports whether the range is unbounded.
func (r Range) IsZero() bool {
	return r.Start.IsZero() && r.End.IsZero()
}

// Contains reports whether t falls within the range, inclusive on both ends.
func (r Range) Contains(t time.Time) bool {
	if r.IsZero() {
		return true
	}
	return !t.Before(r.Start) && !t.After(r.End)
}

// WeekRange returns the Monday-Sunday range containing t.
func WeekRange(t time.Time, loc *time.Location) Range {
	return Range{Start: StartOfWeek(t, loc), End: EndOfWeek(t, loc)}
}
