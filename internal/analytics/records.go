// ABOUTME: Personal records: the highest-volume completed set per exercise.
// ABOUTME: A record is new when it was set in the latest of several sessions.
package analytics

import (
	"sort"
	"time"

	"github.com/harperreed/jetgym/internal/models"
)

type recordCandidate struct {
	name     string
	best     *models.ExerciseSet
	bestDate string
	bestSeq  int
	volume   float64
	lastSeq  int
	sessions int
}

// PersonalRecords returns one record per exercise name, sorted by name.
// Exercises without a completed set are omitted. Time-based records report
// weight 0 and the duration in seconds as reps.
func PersonalRecords(workouts []models.Workout, loc *time.Location) []models.PersonalRecord {
	chrono := append([]models.Workout(nil), workouts...)
	SortByDate(chrono, loc)
	// SortByDate is newest first; walk oldest first so ties keep the earlier set.
	for i, j := 0, len(chrono)-1; i < j; i, j = i+1, j-1 {
		chrono[i], chrono[j] = chrono[j], chrono[i]
	}

	byName := make(map[string]*recordCandidate)
	for seq, w := range chrono {
		seen := make(map[string]bool)
		for _, ex := range w.Exercises {
			c, ok := byName[ex.Name]
			if !ok {
				c = &recordCandidate{name: ex.Name}
				byName[ex.Name] = c
			}
			if !seen[ex.Name] {
				seen[ex.Name] = true
				c.sessions++
				c.lastSeq = seq
			}
			for i := range ex.Sets {
				set := ex.Sets[i]
				if !set.Completed {
					continue
				}
				v := SetVolume(set)
				if c.best == nil || v > c.volume {
					c.best = &set
					c.volume = v
					c.bestDate = w.Date
					c.bestSeq = seq
				}
			}
		}
	}

	records := make([]models.PersonalRecord, 0, len(byName))
	for _, c := range byName {
		if c.best == nil {
			continue
		}
		weight := c.best.Weight
		if c.best.IsTimeBased {
			weight = 0
		}
		date := c.bestDate
		if day, ok := WorkoutDay(models.Workout{Date: date}, loc); ok {
			date = day.Format(models.DateLayout)
		}
		records = append(records, models.PersonalRecord{
			Exercise: c.name,
			Weight:   weight,
			Reps:     c.best.Value,
			Date:     date,
			IsNewPR:  c.sessions > 1 && c.bestSeq == c.lastSeq,
		})
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Exercise < records[j].Exercise })
	return records
}
