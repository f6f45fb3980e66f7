// ABOUTME: Workout DTO exchanged with the fitness API.
// ABOUTME: Workouts own exercises, which own sets; IDs are assigned server-side.
package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/multierr"
)

// DateLayout is the calendar-date format the backend uses for Workout.Date.
const DateLayout = "2006-01-02"

// DateTimeLayout is the zone-less timestamp format used for start/end times.
const DateTimeLayout = "2006-01-02T15:04:05"

// Workout represents one training session.
type Workout struct {
	ID        *int64     `json:"id,omitempty" yaml:"id,omitempty"`
	UserID    int64      `json:"userId" yaml:"user_id"`
	Name      string     `json:"name" yaml:"name"`
	Notes     string     `json:"notes" yaml:"notes,omitempty"`
	Duration  int        `json:"duration" yaml:"duration"`
	Date      string     `json:"date" yaml:"date"`
	StartTime string     `json:"startTime,omitempty" yaml:"start_time,omitempty"`
	EndTime   string     `json:"endTime,omitempty" yaml:"end_time,omitempty"`
	Completed bool       `json:"completed" yaml:"completed"`
	Exercises []Exercise `json:"exercises,omitempty" yaml:"exercises,omitempty"`
}

// NewWorkout creates an uncompleted workout dated now.
func NewWorkout(userID int64, name string) *Workout {
	now := time.Now()
	return &Workout{
		UserID:    userID,
		Name:      name,
		Date:      now.Format(DateLayout),
		StartTime: now.Format(DateTimeLayout),
		EndTime:   now.Format(DateTimeLayout),
	}
}

// WithDate sets the calendar date of the workout.
func (w *Workout) WithDate(t time.Time) *Workout {
	w.Date = t.Format(DateLayout)
	return w
}

// WithNotes sets notes on the workout.
func (w *Workout) WithNotes(notes string) *Workout {
	w.Notes = notes
	return w
}

// WithDuration sets the duration in minutes.
func (w *Workout) WithDuration(minutes int) *Workout {
	w.Duration = minutes
	return w
}

// MarkCompleted flags the workout as done.
func (w *Workout) MarkCompleted() *Workout {
	w.Completed = true
	return w
}

// IDValue returns the server ID, or 0 when the workout has not been saved.
func (w *Workout) IDValue() int64 {
	if w.ID == nil {
		return 0
	}
	return *w.ID
}

// FindExercise returns the exercise with the given ID, or nil.
func (w *Workout) FindExercise(id int64) *Exercise {
	for i := range w.Exercises {
		if w.Exercises[i].IDValue() == id {
			return &w.Exercises[i]
		}
	}
	return nil
}

// TotalSets counts the sets across all exercises.
func (w *Workout) TotalSets() int {
	total := 0
	for _, ex := range w.Exercises {
		total += len(ex.Sets)
	}
	return total
}

// TotalReps sums set values across all exercises.
func (w *Workout) TotalReps() int {
	total := 0
	for _, ex := range w.Exercises {
		for _, s := range ex.Sets {
			total += s.Value
		}
	}
	return total
}

// Validate checks the workout and its nested exercises and sets.
func (w *Workout) Validate() error {
	var err error
	if strings.TrimSpace(w.Name) == "" {
		err = multierr.Append(err, errors.New("workout name is required"))
	}
	if w.Duration < 0 {
		err = multierr.Append(err, fmt.Errorf("duration must not be negative: %d", w.Duration))
	}
	if w.Date == "" {
		err = multierr.Append(err, errors.New("workout date is required"))
	}
	for i := range w.Exercises {
		ex := &w.Exercises[i]
		if w.ID != nil && ex.WorkoutID != 0 && ex.WorkoutID != *w.ID {
			err = multierr.Append(err, fmt.Errorf("exercise %q belongs to workout %d, not %d", ex.Name, ex.WorkoutID, *w.ID))
		}
		err = multierr.Append(err, ex.Validate())
	}
	return err
}

// FindWorkout returns the workout with the given ID from a list, or nil.
func FindWorkout(workouts []Workout, id int64) *Workout {
	for i := range workouts {
		if workouts[i].IDValue() == id {
			return &workouts[i]
		}
	}
	return nil
}

// WorkoutSummary is the condensed view of a single workout.
type WorkoutSummary struct {
	Name      string `json:"name"`
	Date      string `json:"date"`
	TotalSets int    `json:"totalSets"`
	TotalReps int    `json:"totalReps"`
}
