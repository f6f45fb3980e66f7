// ABOUTME: Training volume estimates for sets, weeks and muscle groups.
// ABOUTME: Bodyweight and time-based sets use a 150 lb bodyweight estimate.
package analytics

import (
	"time"

	"github.com/harperreed/jetgym/internal/calendar"
	"github.com/harperreed/jetgym/internal/models"
)

const (
	// EstimatedBodyweight is used when a set has no external load.
	EstimatedBodyweight = 150.0
	intensityFactor     = 0.5

	// OtherMuscleGroup collects exercises without a muscle group.
	OtherMuscleGroup = "Other"

	muscleVolumeWindowDays = 28
)

// SetVolume estimates the volume of one set in pounds.
//
// Weighted sets are weight x reps. Bodyweight sets are half the estimated
// bodyweight per rep. Time-based sets are minutes x load x 0.5, where load
// is the set weight or the bodyweight estimate.
func SetVolume(set models.ExerciseSet) float64 {
	if set.Value <= 0 {
		return 0
	}
	if set.IsTimeBased {
		load := EstimatedBodyweight
		if set.Weight > 0 {
			load = set.Weight
		}
		return float64(set.Value) / 60.0 * load * intensityFactor
	}
	if set.Weight > 0 {
		return set.Weight * float64(set.Value)
	}
	return EstimatedBodyweight * float64(set.Value) * intensityFactor
}

// WorkoutVolume sums the volume of the completed sets in w.
func WorkoutVolume(w models.Workout) float64 {
	var total float64
	for _, ex := range w.Exercises {
		for _, set := range ex.Sets {
			if set.Completed {
				total += SetVolume(set)
			}
		}
	}
	return total
}

// WeeklyVolume returns weeksBack Monday-Sunday buckets, oldest first.
// Each change is the percentage difference from the week before it, or 0
// when that week had no volume.
func WeeklyVolume(workouts []models.Workout, now time.Time, loc *time.Location, weeksBack int) []models.WeeklyVolume {
	if weeksBack <= 0 {
		return []models.WeeklyVolume{}
	}

	current := calendar.StartOfWeek(now, loc)
	oldest := calendar.AddDays(current, -7*(weeksBack-1))

	totals := make([]float64, weeksBack)
	for _, w := range workouts {
		day, ok := WorkoutDay(w, loc)
		if !ok || day.Before(oldest) || day.After(now) {
			continue
		}
		idx := int(calendar.StartOfWeek(day, loc).Sub(oldest).Hours()+12) / (24 * 7)
		if idx >= 0 && idx < weeksBack {
			totals[idx] += WorkoutVolume(w)
		}
	}

	out := make([]models.WeeklyVolume, weeksBack)
	for i := range out {
		start := calendar.AddDays(oldest, 7*i)
		end := calendar.AddDays(start, 6)
		var change float64
		if i > 0 && totals[i-1] > 0 {
			change = (totals[i] - totals[i-1]) / totals[i-1] * 100
		}
		out[i] = models.WeeklyVolume{
			Week:                   calendar.DateRangeLabel(start, end),
			Volume:                 totals[i],
			ChangeFromPreviousWeek: change,
		}
	}
	return out
}

// MuscleVolume totals completed-set volume per muscle group over the last four weeks.
func MuscleVolume(workouts []models.Workout, now time.Time, loc *time.Location) models.MuscleVolume {
	since := calendar.AddDays(calendar.StartOfDay(now, loc), -muscleVolumeWindowDays)
	result := models.MuscleVolume{MuscleVolumes: map[string]float64{}}

	for _, w := range workouts {
		day, ok := WorkoutDay(w, loc)
		if !ok || day.Before(since) || day.After(now) {
			continue
		}
		for _, ex := range w.Exercises {
			group := ex.MuscleGroup
			if group == "" {
				group = OtherMuscleGroup
			}
			for _, set := range ex.Sets {
				if !set.Completed {
					continue
				}
				v := SetVolume(set)
				result.MuscleVolumes[group] += v
				result.TotalVolume += v
			}
		}
	}
	return result
}
