// ABOUTME: Weekly workout counts and the consistency report.
// ABOUTME: Scores regularity from the mean and spread of weekly frequency.
package analytics

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/harperreed/jetgym/internal/calendar"
	"github.com/harperreed/jetgym/internal/models"
)

const consistencyTitle = "Consistency Report"

// window returns the workouts from the Monday weeksBack-1 weeks ago through now.
func window(workouts []models.Workout, now time.Time, loc *time.Location, weeksBack int) []models.Workout {
	start := calendar.AddDays(calendar.StartOfWeek(now, loc), -7*(weeksBack-1))
	return InRange(workouts, calendar.Range{Start: start, End: now}, loc)
}

// WorkoutsPerWeek counts workouts by ISO week number over the last weeksBack
// weeks. Every week in the window is present, zero-filled.
func WorkoutsPerWeek(workouts []models.Workout, now time.Time, loc *time.Location, weeksBack int) models.WorkoutsPerWeek {
	out := models.WorkoutsPerWeek{}
	if weeksBack <= 0 {
		return out
	}
	for i := 0; i < weeksBack; i++ {
		out[calendar.WeekOfYear(calendar.AddDays(calendar.StartOfDay(now, loc), -7*i))] = 0
	}
	for _, w := range window(workouts, now, loc, weeksBack) {
		day, _ := WorkoutDay(w, loc)
		out[calendar.WeekOfYear(day)]++
	}
	return out
}

// WeeklyFrequency returns per-week workout counts, oldest week first.
func WeeklyFrequency(workouts []models.Workout, now time.Time, loc *time.Location, weeksBack int) []int {
	if weeksBack <= 0 {
		return []int{}
	}
	oldest := calendar.AddDays(calendar.StartOfWeek(now, loc), -7*(weeksBack-1))
	freq := make([]int, weeksBack)
	for i := range freq {
		start := calendar.AddDays(oldest, 7*i)
		r := calendar.WeekRange(start, loc)
		for _, w := range workouts {
			if day, ok := WorkoutDay(w, loc); ok && r.Contains(day) && !day.After(now) {
				freq[i]++
			}
		}
	}
	return freq
}

// ConsistencyScore rewards a high weekly average and penalizes variation.
// The result is clamped to 0..100.
func ConsistencyScore(weekly []int) int {
	if len(weekly) == 0 {
		return 0
	}
	avg := mean(weekly)
	var variance float64
	for _, f := range weekly {
		d := float64(f) - avg
		variance += d * d
	}
	variance /= float64(len(weekly))

	score := int(math.Min(100, avg*20+(50-math.Sqrt(variance)*10)))
	if score < 0 {
		return 0
	}
	return score
}

// Percentile maps a consistency score to a "top N%" bucket.
func Percentile(score int) int {
	for i, threshold := range []int{90, 80, 70, 60, 50, 40, 30, 20} {
		if score >= threshold {
			return (i + 1) * 10
		}
	}
	return 90
}

// Consistency builds the consistency report for the last weeksBack weeks.
// The streak counts completed workouts only.
func Consistency(workouts []models.Workout, now time.Time, loc *time.Location, weeksBack int) models.ConsistencyInsight {
	recent := window(workouts, now, loc, weeksBack)
	weekly := WeeklyFrequency(workouts, now, loc, weeksBack)

	streak := calendar.CurrentStreak(CompletedDays(workouts, loc), now, loc, 0)
	score := ConsistencyScore(weekly)

	return models.ConsistencyInsight{
		Title:            consistencyTitle,
		Summary:          summaryText(weekly),
		Percentile:       Percentile(score),
		StreakDays:       streak,
		PatternFindings:  patternText(recent, loc),
		Recommendation:   recommendationText(weekly),
		WeeklyFrequency:  weekly,
		DailyWorkouts:    DailyWorkouts(workouts, now, loc),
		ConsistencyScore: score,
	}
}

// DailyWorkouts counts workouts, completed or not, on each day of the
// current Monday-Sunday week.
func DailyWorkouts(workouts []models.Workout, now time.Time, loc *time.Location) []int {
	days := make([]time.Time, 0, len(workouts))
	for _, w := range workouts {
		if day, ok := WorkoutDay(w, loc); ok {
			days = append(days, day)
		}
	}
	return calendar.DailyCounts(days, now, loc)
}

func mean(values []int) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum int
	for _, v := range values {
		sum += v
	}
	return float64(sum) / float64(len(values))
}

func summaryText(weekly []int) string {
	if len(weekly) == 0 {
		return "No workout data available for analysis."
	}
	avg := mean(weekly)
	switch {
	case avg >= 4:
		return fmt.Sprintf("You've maintained a consistent %d-day workout pattern for %d weeks straight.",
			int(math.Round(avg)), len(weekly))
	case avg >= 2:
		return fmt.Sprintf("You're building a good foundation with %d workouts per week on average.",
			int(math.Round(avg)))
	default:
		return "You're getting started with your fitness journey. Consistency will help you see better results."
	}
}

// patternText names the weekday with the most workouts. Ties go to the
// earlier day of the week.
func patternText(workouts []models.Workout, loc *time.Location) string {
	if len(workouts) < 2 {
		return "Not enough data to identify patterns yet."
	}
	var counts [7]int
	for _, w := range workouts {
		if day, ok := WorkoutDay(w, loc); ok {
			counts[calendar.WeekdayIndex(day)]++
		}
	}
	best := 0
	for i := 1; i < len(counts); i++ {
		if counts[i] > counts[best] {
			best = i
		}
	}
	weekday := time.Weekday((best + 1) % 7)
	return fmt.Sprintf("You're most consistent on %s. Try to maintain this pattern for better results.",
		strings.ToLower(weekday.String()))
}

func recommendationText(weekly []int) string {
	if len(weekly) == 0 {
		return "Start with 2-3 workouts per week to build a consistent routine."
	}
	avg := mean(weekly)
	switch {
	case avg >= 4:
		return "Great consistency! Consider adding variety to your workouts to prevent plateaus."
	case avg >= 2:
		return "Try to increase to 3-4 workouts per week for optimal results."
	default:
		return "Aim for at least 2-3 workouts per week to build momentum and see progress."
	}
}
