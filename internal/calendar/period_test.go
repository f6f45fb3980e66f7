// ABOUTME: Tests for quick-select periods, custom filters and streak math.
// ABOUTME: Uses fixed clocks so results don't depend on the run date.
package calendar

import (
	"reflect"
	"testing"
	"time"
)

func TestParsePeriod(t *testing.T) {
	for _, in := range []string{"day", "Week", " month ", "YEAR", "all"} {
		if _, err := ParsePeriod(in); err != nil {
			t.Errorf("ParsePeriod(%q) failed: %v", in, err)
		}
	}
	if _, err := ParsePeriod("fortnight"); err == nil {
		t.Error("expected error for unknown period")
	}
}

func TestPeriodRange(t *testing.T) {
	loc := time.UTC
	now := time.Date(2024, 7, 17, 14, 30, 0, 0, loc) // Wednesday

	tests := []struct {
		period    Period
		wantStart string
		wantEnd   string
	}{
		{PeriodDay, "2024-07-17", "2024-07-17"},
		{PeriodWeek, "2024-07-15", "2024-07-21"},
		{PeriodMonth, "2024-07-01", "2024-07-31"},
		{PeriodYear, "2024-01-01", "2024-12-31"},
	}
	for _, tt := range tests {
		t.Run(string(tt.period), func(t *testing.T) {
			r := tt.period.Range(now, loc)
			if got := DayKey(r.Start, loc); got != tt.wantStart {
				t.Errorf("start = %s, want %s", got, tt.wantStart)
			}
			if got := DayKey(r.End, loc); got != tt.wantEnd {
				t.Errorf("end = %s, want %s", got, tt.wantEnd)
			}
		})
	}

	if !PeriodAll.Range(now, loc).IsZero() {
		t.Error("PeriodAll should be unbounded")
	}
}

func TestPeriodMonthIncludesDaysBeforeToday(t *testing.T) {
	loc := time.UTC
	now := time.Date(2024, 7, 17, 0, 0, 0, 0, loc)
	r := PeriodMonth.Range(now, loc)

	if !r.Contains(time.Date(2024, 7, 2, 9, 0, 0, 0, loc)) {
		t.Error("month range should include earlier days of the month")
	}
	if !r.Contains(time.Date(2024, 7, 30, 9, 0, 0, 0, loc)) {
		t.Error("month range should run to the end of the month")
	}
}

func TestPeriodLabel(t *testing.T) {
	loc := time.UTC
	now := time.Date(2024, 7, 3, 0, 0, 0, 0, loc)

	tests := map[Period]string{
		PeriodDay:   "Today (3 Jul 2024)",
		PeriodWeek:  "Current Week (1 Jul - 7 Jul)",
		PeriodMonth: "July 2024",
		PeriodYear:  "2024",
		PeriodAll:   "All Time",
	}
	for p, want := range tests {
		if got := p.Label(now, loc); got != want {
			t.Errorf("%s label = %q, want %q", p, got, want)
		}
	}
}

func TestParseFilter(t *testing.T) {
	tests := []struct {
		input   string
		want    Filter
		wantErr bool
	}{
		{input: "2024", want: Filter{Kind: FilterYear, Year: 2024}},
		{input: "2024-07", want: Filter{Kind: FilterMonth, Year: 2024, Month: time.July}},
		{input: "2024-07-03", want: Filter{Kind: FilterDate, Year: 2024, Month: time.July, Day: 3}},
		{input: "2024-13", wantErr: true},
		{input: "2023-02-29", wantErr: true},
		{input: "july", wantErr: true},
		{input: "2024-07-03-01", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFilter(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error, got %+v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseFilter failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseFilter = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestFilterContainsAndLabel(t *testing.T) {
	loc := time.UTC
	day := time.Date(2024, 7, 3, 18, 0, 0, 0, loc)

	date := Filter{Kind: FilterDate, Year: 2024, Month: time.July, Day: 3}
	month := Filter{Kind: FilterMonth, Year: 2024, Month: time.July}
	year := Filter{Kind: FilterYear, Year: 2024}

	for _, f := range []Filter{date, month, year} {
		if !f.Contains(day, loc) {
			t.Errorf("%s should contain %s", f.Label(), day)
		}
		if !f.Range(loc).Contains(day) {
			t.Errorf("%s range should contain %s", f.Label(), day)
		}
	}
	if date.Contains(day.AddDate(0, 0, 1), loc) {
		t.Error("date filter should not match the next day")
	}
	if month.Contains(day.AddDate(0, 1, 0), loc) {
		t.Error("month filter should not match the next month")
	}

	labels := map[string]Filter{"3 Jul 2024": date, "Jul 2024": month, "2024": year}
	for want, f := range labels {
		if got := f.Label(); got != want {
			t.Errorf("Label = %q, want %q", got, want)
		}
	}
}

func TestCurrentStreak(t *testing.T) {
	loc := time.UTC
	now := time.Date(2024, 7, 10, 20, 0, 0, 0, loc)
	at := func(day, hour int) time.Time { return time.Date(2024, 7, day, hour, 0, 0, 0, loc) }

	tests := []struct {
		name  string
		days  []time.Time
		limit int
		want  int
	}{
		{"no workouts", nil, 0, 0},
		{"nothing today", []time.Time{at(9, 8), at(8, 8)}, 0, 0},
		{"three in a row", []time.Time{at(10, 7), at(9, 7), at(8, 7), at(6, 7)}, 0, 3},
		{"duplicate days count once", []time.Time{at(10, 7), at(10, 19), at(9, 7)}, 0, 2},
		{"limit caps look-back", []time.Time{at(10, 7), at(9, 7), at(8, 7), at(7, 7)}, 2, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CurrentStreak(tt.days, now, loc, tt.limit); got != tt.want {
				t.Errorf("CurrentStreak = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestStreakUsesLocalDays(t *testing.T) {
	la := mustLoad(t, "America/Los_Angeles")
	// 02:00 UTC on the 11th is still the 10th in Los Angeles.
	days := []time.Time{
		time.Date(2024, 7, 11, 2, 0, 0, 0, time.UTC),
		time.Date(2024, 7, 9, 18, 0, 0, 0, la),
	}
	now := time.Date(2024, 7, 10, 21, 0, 0, 0, la)

	if got := CurrentStreak(days, now, la, 0); got != 2 {
		t.Errorf("CurrentStreak = %d, want 2", got)
	}
}

func TestCompletedWeekdaysAndDailyCounts(t *testing.T) {
	loc := time.UTC
	now := time.Date(2024, 7, 10, 12, 0, 0, 0, loc) // Wednesday
	days := []time.Time{
		time.Date(2024, 7, 8, 7, 0, 0, 0, loc),  // Monday
		time.Date(2024, 7, 10, 7, 0, 0, 0, loc), // Wednesday
		time.Date(2024, 7, 10, 19, 0, 0, 0, loc),
		time.Date(2024, 7, 14, 7, 0, 0, 0, loc), // Sunday
		time.Date(2024, 7, 7, 7, 0, 0, 0, loc),  // previous Sunday
	}

	if got, want := CompletedWeekdays(days, now, loc), []int{0, 2, 6}; !reflect.DeepEqual(got, want) {
		t.Errorf("CompletedWeekdays = %v, want %v", got, want)
	}
	if got, want := DailyCounts(days, now, loc), []int{1, 0, 2, 0, 0, 0, 1}; !reflect.DeepEqual(got, want) {
		t.Errorf("DailyCounts = %v, want %v", got, want)
	}
}
