// ABOUTME: Helpers for selecting and summarizing workouts by calendar day.
// ABOUTME: Shared by the services, the CLI and the MCP tools.
package analytics

import (
	"sort"
	"strings"
	"time"

	"github.com/harperreed/jetgym/internal/calendar"
	"github.com/harperreed/jetgym/internal/models"
)

// WorkoutDay returns local midnight of the workout's date. ok is false when
// the date cannot be parsed.
func WorkoutDay(w models.Workout, loc *time.Location) (time.Time, bool) {
	day, err := calendar.ParseDay(w.Date, loc)
	if err != nil {
		return time.Time{}, false
	}
	return day, true
}

// Select returns the workouts whose day satisfies match, preserving order.
func Select(workouts []models.Workout, loc *time.Location, match func(day time.Time) bool) []models.Workout {
	out := make([]models.Workout, 0, len(workouts))
	for _, w := range workouts {
		day, ok := WorkoutDay(w, loc)
		if ok && match(day) {
			out = append(out, w)
		}
	}
	return out
}

// InRange returns the workouts dated within r. A zero range returns every workout.
func InRange(workouts []models.Workout, r calendar.Range, loc *time.Location) []models.Workout {
	if r.IsZero() {
		return append([]models.Workout(nil), workouts...)
	}
	return Select(workouts, loc, r.Contains)
}

// MatchFilter returns the workouts on the filter's date, month or year.
func MatchFilter(workouts []models.Workout, f calendar.Filter, loc *time.Location) []models.Workout {
	return Select(workouts, loc, func(day time.Time) bool { return f.Contains(day, loc) })
}

// SortByDate orders workouts newest first. Undated workouts sort last.
func SortByDate(workouts []models.Workout, loc *time.Location) {
	sort.SliceStable(workouts, func(i, j int) bool {
		di, oki := WorkoutDay(workouts[i], loc)
		dj, okj := WorkoutDay(workouts[j], loc)
		if oki != okj {
			return oki
		}
		if !di.Equal(dj) {
			return di.After(dj)
		}
		return workouts[i].IDValue() > workouts[j].IDValue()
	})
}

// CompletedDays returns the days of completed workouts.
func CompletedDays(workouts []models.Workout, loc *time.Location) []time.Time {
	days := make([]time.Time, 0, len(workouts))
	for _, w := range workouts {
		if !w.Completed {
			continue
		}
		if day, ok := WorkoutDay(w, loc); ok {
			days = append(days, day)
		}
	}
	return days
}

// LastWorkout returns the most recent workout, or nil when there are none.
func LastWorkout(workouts []models.Workout, loc *time.Location) *models.Workout {
	if len(workouts) == 0 {
		return nil
	}
	sorted := append([]models.Workout(nil), workouts...)
	SortByDate(sorted, loc)
	return &sorted[0]
}

// Summarize builds the last-workout card for w.
func Summarize(w models.Workout) models.WorkoutSummary {
	return models.WorkoutSummary{
		Name:      w.Name,
		Date:      w.Date,
		TotalSets: w.TotalSets(),
		TotalReps: w.TotalReps(),
	}
}

// HistoricalSuggestions returns distinct exercise names from past workouts
// containing input (case-insensitive), most recently used first.
func HistoricalSuggestions(workouts []models.Workout, input string, loc *time.Location, limit int) []models.ExerciseSuggestion {
	sorted := append([]models.Workout(nil), workouts...)
	SortByDate(sorted, loc)

	needle := strings.ToLower(strings.TrimSpace(input))
	seen := make(map[string]bool)
	var out []models.ExerciseSuggestion
	for _, w := range sorted {
		for _, ex := range w.Exercises {
			key := strings.ToLower(strings.TrimSpace(ex.Name))
			if key == "" || seen[key] || !strings.Contains(key, needle) {
				continue
			}
			seen[key] = true
			canonical := ex.CanonicalName
			if canonical == "" {
				canonical = ex.Name
			}
			out = append(out, models.ExerciseSuggestion{
				Name:          ex.Name,
				CanonicalName: canonical,
				IsHistorical:  true,
			})
			if limit > 0 && len(out) == limit {
				return out
			}
		}
	}
	return out
}
