// ABOUTME: Streak and weekly-progress calculations over sets of training days.
// ABOUTME: Inputs are instants; each is bucketed into its local calendar day.
package calendar

import (
	"sort"
	"time"
)

// DaySet counts events per local calendar day.
type DaySet struct {
	loc    *time.Location
	counts map[string]int
}

// NewDaySet buckets the given instants into days in loc.
func NewDaySet(loc *time.Location, days ...time.Time) *DaySet {
	ds := &DaySet{loc: loc, counts: make(map[string]int, len(days))}
	for _, d := range days {
		ds.Add(d)
	}
	return ds
}

// Add records one event on t's day.
func (ds *DaySet) Add(t time.Time) {
	ds.counts[DayKey(t, ds.loc)]++
}

// Count returns the number of events on t's day.
func (ds *DaySet) Count(t time.Time) int {
	return ds.counts[DayKey(t, ds.loc)]
}

// Has reports whether any event falls on t's day.
func (ds *DaySet) Has(t time.Time) bool {
	return ds.Count(t) > 0
}

// Len returns the number of distinct days.
func (ds *DaySet) Len() int {
	return len(ds.counts)
}

// CurrentStreak counts consecutive days with events ending today.
// A limit above zero caps the look-back; zero means unbounded.
func (ds *DaySet) CurrentStreak(now time.Time, limit int) int {
	day := StartOfDay(now, ds.loc)
	streak := 0
	for limit <= 0 || streak < limit {
		if !ds.Has(day) {
			break
		}
		streak++
		day = AddDays(day, -1)
	}
	return streak
}

// CompletedWeekdays returns the Monday-indexed weekdays (0..6) of now's week that have events.
func (ds *DaySet) CompletedWeekdays(now time.Time) []int {
	start := StartOfWeek(now, ds.loc)
	var out []int
	for i := 0; i < 7; i++ {
		if ds.Has(AddDays(start, i)) {
			out = append(out, i)
		}
	}
	sort.Ints(out)
	return out
}

// DailyCounts returns seven per-day counts for now's week, Monday first.
func (ds *DaySet) DailyCounts(now time.Time) []int {
	start := StartOfWeek(now, ds.loc)
	counts := make([]int, 7)
	for i := range counts {
		counts[i] = ds.Count(AddDays(start, i))
	}
	return counts
}

// CurrentStreak is shorthand for NewDaySet(loc, days...).CurrentStreak(now, limit).
func CurrentStreak(days []time.Time, now time.Time, loc *time.Location, limit int) int {
	return NewDaySet(loc, days...).CurrentStreak(now, limit)
}

// CompletedWeekdays is shorthand for NewDaySet(loc, days...).CompletedWeekdays(now).
func CompletedWeekdays(days []time.Time, now time.Time, loc *time.Location) []int {
	return NewDaySet(loc, days...).CompletedWeekdays(now)
}

// DailyCounts is shorthand for NewDaySet(loc, days...).DailyCounts(now).
func DailyCounts(days []time.Time, now time.Time, loc *time.Location) []int {
	return NewDaySet(loc, days...).DailyCounts(now)
}
