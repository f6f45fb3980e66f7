// ABOUTME: Exercise set CRUD.
// ABOUTME: Writes patch the set nested in the cached workout list.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"github.com/harperreed/jetgym/internal/api"
	"github.com/harperreed/jetgym/internal/models"
)

type SetService struct {
	*base
}

// Create adds a set to set.ExerciseID.
func (s *SetService) Create(ctx context.Context, userID int64, set models.ExerciseSet) (*models.ExerciseSet, error) {
	set.ID = nil
	if set.ExerciseID == 0 {
		return nil, errors.New("create set: exercise id is required")
	}
	if err := set.Validate(); err != nil {
		return nil, fmt.Errorf("invalid set: %w", err)
	}

	var raw json.RawMessage
	if err := s.api.Post(ctx, api.PathSetCreate, models.ExerciseSetCreate{UserID: userID, Set: set}, &raw); err != nil {
		return nil, fmt.Errorf("create set: %w", err)
	}
	var created models.ExerciseSet
	if err := api.Unwrap(raw, "newSet", &created); err != nil {
		return nil, fmt.Errorf("create set: decode response: %w", err)
	}
	if created.ID == nil {
		return nil, errors.New("create set: server returned no id")
	}
	if created.ExerciseID == 0 {
		created.ExerciseID = set.ExerciseID
	}

	s.patchWorkouts(userID, func(workouts []models.Workout) []models.Workout {
		if ex, _ := findExercise(workouts, created.ExerciseID); ex != nil {
			ex.Sets = append(ex.Sets, created)
		}
		return workouts
	})
	return &created, nil
}

// Update replaces a set's fields.
func (s *SetService) Update(ctx context.Context, userID int64, set models.ExerciseSet) (*models.ExerciseSet, error) {
	if set.ID == nil {
		return nil, errors.New("update set: id is required")
	}
	if err := set.Validate(); err != nil {
		return nil, fmt.Errorf("invalid set: %w", err)
	}
	if err := s.api.Put(ctx, api.PathSetUpdate, models.ExerciseSetUpdate{UserID: userID, Set: set}, nil); err != nil {
		return nil, fmt.Errorf("update set %d: %w", *set.ID, err)
	}

	updated := set
	s.patchWorkouts(userID, func(workouts []models.Workout) []models.Workout {
		if cur, _ := findSet(workouts, *set.ID); cur != nil {
			exerciseID := cur.ExerciseID
			*cur = set
			if cur.ExerciseID == 0 {
				cur.ExerciseID = exerciseID
			}
			updated = *cur
		}
		return workouts
	})
	return &updated, nil
}

// Delete removes a set.
func (s *SetService) Delete(ctx context.Context, userID, setID int64) error {
	body := models.ExerciseSetDelete{UserID: userID, ExerciseSetID: setID}
	if err := s.api.Delete(ctx, api.PathSetDelete, body, nil); err != nil {
		return fmt.Errorf("delete set %d: %w", setID, err)
	}

	s.patchWorkouts(userID, func(workouts []models.Workout) []models.Workout {
		if _, ex := findSet(workouts, setID); ex != nil {
			kept := ex.Sets[:0]
			for _, set := range ex.Sets {
				if set.IDValue() != setID {
					kept = append(kept, set)
				}
			}
			ex.Sets = kept
		}
		return workouts
	})
	return nil
}

// ListByExercise returns an exercise's sets from the server.
func (s *SetService) ListByExercise(ctx context.Context, userID, exerciseID int64) ([]models.ExerciseSet, error) {
	var sets []models.ExerciseSet
	query := url.Values{"userId": {strconv.FormatInt(userID, 10)}}
	if err := s.api.Get(ctx, api.ExerciseSetsPath(exerciseID), query, &sets); err != nil {
		if !fallbackAllowed(err) {
			return nil, fmt.Errorf("list sets: %w", err)
		}
		cached, _, _ := s.cachedWorkouts(userID)
		ex, _ := findExercise(cached, exerciseID)
		if ex == nil {
			return nil, fmt.Errorf("list sets: %w", err)
		}
		s.countFallback("sets")
		return ex.Sets, nil
	}
	return sets, nil
}

// findSet locates a set and its exercise in a cached list.
func findSet(workouts []models.Workout, setID int64) (*models.ExerciseSet, *models.Exercise) {
	for i := range workouts {
		for j := range workouts[i].Exercises {
			ex := &workouts[i].Exercises[j]
			if set := ex.FindSet(setID); set != nil {
				return set, ex
			}
		}
	}
	return nil, nil
}
