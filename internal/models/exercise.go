// ABOUTME: Exercise and ExerciseSet DTOs nested under a workout.
// ABOUTME: Sets carry reps (or seconds for time-based work) and weight.
package models

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/multierr"
)

// Exercise is a movement performed within a workout.
type Exercise struct {
	ID             *int64        `json:"id,omitempty" yaml:"id,omitempty"`
	WorkoutID      int64         `json:"workoutId" yaml:"workout_id"`
	Name           string        `json:"name" yaml:"name"`
	MuscleGroup    string        `json:"muscleGroup" yaml:"muscle_group,omitempty"`
	IsTimeBased    bool          `json:"isTimeBased" yaml:"is_time_based"`
	CanonicalName  string        `json:"canonicalName,omitempty" yaml:"canonical_name,omitempty"`
	NormalizedName string        `json:"normalizedName,omitempty" yaml:"normalized_name,omitempty"`
	Sets           []ExerciseSet `json:"sets,omitempty" yaml:"sets,omitempty"`
}

// NewExercise creates an exercise attached to a workout.
func NewExercise(workoutID int64, name, muscleGroup string) *Exercise {
	return &Exercise{
		WorkoutID:   workoutID,
		Name:        name,
		MuscleGroup: muscleGroup,
	}
}

// IDValue returns the server ID, or 0 when unsaved.
func (e *Exercise) IDValue() int64 {
	if e.ID == nil {
		return 0
	}
	return *e.ID
}

// FindSet returns the set with the given ID, or nil.
func (e *Exercise) FindSet(id int64) *ExerciseSet {
	for i := range e.Sets {
		if e.Sets[i].IDValue() == id {
			return &e.Sets[i]
		}
	}
	return nil
}

// Validate checks the exercise and its sets.
func (e *Exercise) Validate() error {
	var err error
	if strings.TrimSpace(e.Name) == "" {
		err = multierr.Append(err, errors.New("exercise name is required"))
	}
	for i := range e.Sets {
		s := &e.Sets[i]
		if e.ID != nil && s.ExerciseID != 0 && s.ExerciseID != *e.ID {
			err = multierr.Append(err, fmt.Errorf("set belongs to exercise %d, not %d", s.ExerciseID, *e.ID))
		}
		err = multierr.Append(err, s.Validate())
	}
	return err
}

// ExerciseSet is one set of an exercise. Value is reps, or seconds when
// IsTimeBased is set.
type ExerciseSet struct {
	ID          *int64  `json:"id,omitempty" yaml:"id,omitempty"`
	ExerciseID  int64   `json:"exerciseId" yaml:"exercise_id"`
	Value       int     `json:"value" yaml:"value"`
	IsTimeBased bool    `json:"isTimeBased" yaml:"is_time_based"`
	Weight      float64 `json:"weight" yaml:"weight"`
	Completed   bool    `json:"completed" yaml:"completed"`
}

// NewExerciseSet creates a set for an exercise.
func NewExerciseSet(exerciseID int64, value int, weight float64) *ExerciseSet {
	return &ExerciseSet{
		ExerciseID: exerciseID,
		Value:      value,
		Weight:     weight,
	}
}

// IDValue returns the server ID, or 0 when unsaved.
func (s *ExerciseSet) IDValue() int64 {
	if s.ID == nil {
		return 0
	}
	return *s.ID
}

// Validate rejects negative values and weights.
func (s *ExerciseSet) Validate() error {
	var err error
	if s.Value < 0 {
		err = multierr.Append(err, fmt.Errorf("set value must not be negative: %d", s.Value))
	}
	if s.Weight < 0 {
		err = multierr.Append(err, fmt.Errorf("set weight must not be negative: %.2f", s.Weight))
	}
	return err
}

// ExerciseSuggestion is an autocomplete entry for exercise names.
type ExerciseSuggestion struct {
	Name          string `json:"name"`
	CanonicalName string `json:"canonicalName"`
	IsHistorical  bool   `json:"isHistorical"`
}

// ID returns a pointer to v, for filling optional ID fields.
func ID(v int64) *int64 {
	return &v
}
