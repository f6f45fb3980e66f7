// ABOUTME: Quick-select periods (day/week/month/year/all) and custom filters.
// ABOUTME: Both resolve to inclusive ranges over local calendar days.
package calendar

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Period is a quick-select window relative to now.
type Period string

const (
	PeriodDay   Period = "day"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
	PeriodYear  Period = "year"
	PeriodAll   Period = "all"
)

// AllPeriods lists the periods in display order.
var AllPeriods = []Period{PeriodDay, PeriodWeek, PeriodMonth, PeriodYear, PeriodAll}

// ParsePeriod validates a period name.
func ParsePeriod(s string) (Period, error) {
	p := Period(strings.ToLower(strings.TrimSpace(s)))
	for _, valid := range AllPeriods {
		if p == valid {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown period: %q (use day, week, month, year or all)", s)
}

// Range resolves the period against now. PeriodAll yields the zero (unbounded) Range.
func (p Period) Range(now time.Time, loc *time.Location) Range {
	switch p {
	case PeriodDay:
		start := StartOfDay(now, loc)
		return Range{Start: start, End: endOf(AddDays(start, 1))}
	case PeriodWeek:
		return WeekRange(now, loc)
	case PeriodMonth:
		return Range{Start: StartOfMonth(now, loc), End: EndOfMonth(now, loc)}
	case PeriodYear:
		return Range{Start: StartOfYear(now, loc), End: EndOfYear(now, loc)}
	default:
		return Range{}
	}
}

// Label describes the period for display, e.g. "Current Week (1 Jul - 7 Jul)".
func (p Period) Label(now time.Time, loc *time.Location) string {
	r := p.Range(now, loc)
	switch p {
	case PeriodDay:
		return "Today (" + r.Start.Format("2 Jan 2006") + ")"
	case PeriodWeek:
		return fmt.Sprintf("Current Week (%s - %s)", r.Start.Format("2 Jan"), r.End.Format("2 Jan"))
	case PeriodMonth:
		return r.Start.Format("January 2006")
	case PeriodYear:
		return r.Start.Format("2006")
	default:
		return "All Time"
	}
}

// FilterKind selects the granularity of a custom filter.
type FilterKind string

const (
	FilterDate  FilterKind = "date"
	FilterMonth FilterKind = "month"
	FilterYear  FilterKind = "year"
)

// Filter is a user-chosen calendar date, month or year.
// Month and Day are ignored for coarser kinds.
type Filter struct {
	Kind  FilterKind
	Year  int
	Month time.Month
	Day   int
}

// ParseFilter reads "2024", "2024-07" or "2024-07-03" into the matching filter kind.
func ParseFilter(s string) (Filter, error) {
	parts := strings.Split(strings.TrimSpace(s), "-")
	nums := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return Filter{}, fmt.Errorf("invalid filter %q: use YYYY, YYYY-MM or YYYY-MM-DD", s)
		}
		nums = append(nums, n)
	}

	var f Filter
	switch len(nums) {
	case 1:
		f = Filter{Kind: FilterYear, Year: nums[0]}
	case 2:
		f = Filter{Kind: FilterMonth, Year: nums[0], Month: time.Month(nums[1])}
	case 3:
		f = Filter{Kind: FilterDate, Year: nums[0], Month: time.Month(nums[1]), Day: nums[2]}
	default:
		return Filter{}, fmt.Errorf("invalid filter %q: use YYYY, YYYY-MM or YYYY-MM-DD", s)
	}
	if err := f.Validate(); err != nil {
		return Filter{}, err
	}
	return f, nil
}

// Validate checks that the fields needed by Kind are in range.
func (f Filter) Validate() error {
	if f.Year < 1 {
		return fmt.Errorf("invalid year: %d", f.Year)
	}
	if f.Kind == FilterYear {
		return nil
	}
	if f.Month < time.January || f.Month > time.December {
		return fmt.Errorf("invalid month: %d", f.Month)
	}
	if f.Kind == FilterMonth {
		return nil
	}
	if f.Kind != FilterDate {
		return fmt.Errorf("unknown filter kind: %q", f.Kind)
	}
	last := time.Date(f.Year, f.Month+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if f.Day < 1 || f.Day > last {
		return fmt.Errorf("invalid day %d for %s %d", f.Day, f.Month, f.Year)
	}
	return nil
}

// Range returns the inclusive range the filter selects in loc.
func (f Filter) Range(loc *time.Location) Range {
	switch f.Kind {
	case FilterDate:
		start := time.Date(f.Year, f.Month, f.Day, 0, 0, 0, 0, loc)
		return Range{Start: start, End: endOf(AddDays(start, 1))}
	case FilterMonth:
		start := time.Date(f.Year, f.Month, 1, 0, 0, 0, 0, loc)
		return Range{Start: start, End: EndOfMonth(start, loc)}
	default:
		start := time.Date(f.Year, time.January, 1, 0, 0, 0, 0, loc)
		return Range{Start: start, End: EndOfYear(start, loc)}
	}
}

// Contains reports whether the calendar day of t matches the filter.
func (f Filter) Contains(t time.Time, loc *time.Location) bool {
	t = t.In(loc)
	if t.Year() != f.Year {
		return false
	}
	if f.Kind == FilterYear {
		return true
	}
	if t.Month() != f.Month {
		return false
	}
	return f.Kind == FilterMonth || t.Day() == f.Day
}

// Label renders the filter as "3 Jul 2024", "Jul 2024" or "2024".
func (f Filter) Label() string {
	switch f.Kind {
	case FilterDate:
		return fmt.Sprintf("%d %s %d", f.Day, f.Month.String()[:3], f.Year)
	case FilterMonth:
		return fmt.Sprintf("%s %d", f.Month.String()[:3], f.Year)
	default:
		return strconv.Itoa(f.Year)
	}
}
