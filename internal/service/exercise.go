// ABOUTME: Exercise CRUD and name suggestions.
// ABOUTME: Writes patch the exercise nested in the cached workout list.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/harperreed/jetgym/internal/analytics"
	"github.com/harperreed/jetgym/internal/api"
	"github.com/harperreed/jetgym/internal/models"
)

const suggestionLimit = 10

type ExerciseService struct {
	*base
}

// Create adds an exercise to ex.WorkoutID.
func (s *ExerciseService) Create(ctx context.Context, userID int64, ex models.Exercise) (*models.Exercise, error) {
	ex.ID = nil
	if ex.WorkoutID == 0 {
		return nil, errors.New("create exercise: workout id is required")
	}
	if err := ex.Validate(); err != nil {
		return nil, fmt.Errorf("invalid exercise: %w", err)
	}

	var raw json.RawMessage
	if err := s.api.Post(ctx, api.PathExerciseCreate, models.ExerciseCreate{UserID: userID, Exercise: ex}, &raw); err != nil {
		return nil, fmt.Errorf("create exercise: %w", err)
	}
	var created models.Exercise
	if err := api.Unwrap(raw, "newExercise", &created); err != nil {
		return nil, fmt.Errorf("create exercise: decode response: %w", err)
	}
	if created.ID == nil {
		return nil, errors.New("create exercise: server returned no id")
	}
	if created.WorkoutID == 0 {
		created.WorkoutID = ex.WorkoutID
	}

	s.patchWorkouts(userID, func(workouts []models.Workout) []models.Workout {
		if w := models.FindWorkout(workouts, created.WorkoutID); w != nil {
			w.Exercises = append(w.Exercises, created)
		}
		return workouts
	})
	return &created, nil
}

// Update replaces an exercise's fields, keeping its cached sets.
func (s *ExerciseService) Update(ctx context.Context, userID int64, ex models.Exercise) (*models.Exercise, error) {
	if ex.ID == nil {
		return nil, errors.New("update exercise: id is required")
	}
	if err := ex.Validate(); err != nil {
		return nil, fmt.Errorf("invalid exercise: %w", err)
	}
	if err := s.api.Put(ctx, api.PathExerciseUpdate, models.ExerciseUpdate{UserID: userID, Exercise: ex}, nil); err != nil {
		return nil, fmt.Errorf("update exercise %d: %w", *ex.ID, err)
	}

	updated := ex
	s.patchWorkouts(userID, func(workouts []models.Workout) []models.Workout {
		if cur, _ := findExercise(workouts, *ex.ID); cur != nil {
			sets := cur.Sets
			workoutID := cur.WorkoutID
			*cur = ex
			cur.Sets = sets
			if cur.WorkoutID == 0 {
				cur.WorkoutID = workoutID
			}
			updated = *cur
		}
		return workouts
	})
	return &updated, nil
}

// Delete removes an exercise and its sets.
func (s *ExerciseService) Delete(ctx context.Context, userID, exerciseID int64) error {
	body := models.ExerciseDelete{UserID: userID, ExerciseID: exerciseID}
	if err := s.api.Delete(ctx, api.PathExerciseDelete, body, nil); err != nil {
		return fmt.Errorf("delete exercise %d: %w", exerciseID, err)
	}

	s.patchWorkouts(userID, func(workouts []models.Workout) []models.Workout {
		if _, w := findExercise(workouts, exerciseID); w != nil {
			kept := w.Exercises[:0]
			for _, ex := range w.Exercises {
				if ex.IDValue() != exerciseID {
					kept = append(kept, ex)
				}
			}
			w.Exercises = kept
		}
		return workouts
	})
	return nil
}

// ListByWorkout returns a workout's exercises from the server, or from the
// cached workout when the server can't answer.
func (s *ExerciseService) ListByWorkout(ctx context.Context, userID, workoutID int64) ([]models.Exercise, error) {
	var exercises []models.Exercise
	query := url.Values{"userId": {strconv.FormatInt(userID, 10)}}
	err := s.api.Get(ctx, api.WorkoutExercisesPath(workoutID), query, &exercises)
	if err == nil {
		return exercises, nil
	}
	if !fallbackAllowed(err) {
		return nil, fmt.Errorf("list exercises: %w", err)
	}

	cached, found, _ := s.cachedWorkouts(userID)
	w := models.FindWorkout(cached, workoutID)
	if !found || w == nil {
		return nil, fmt.Errorf("list exercises: %w", err)
	}
	log.WithField("workout_id", workoutID).Warnf("list exercises failed, using cached workout: %s", err)
	s.countFallback("exercises")
	return w.Exercises, nil
}

// Suggestions autocompletes exercise names. When the server fails, names
// from the user's cached workouts are offered instead.
func (s *ExerciseService) Suggestions(ctx context.Context, userID int64, input string) ([]models.ExerciseSuggestion, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, nil
	}

	var out []models.ExerciseSuggestion
	err := s.api.Do(ctx, api.Request{
		Method: http.MethodGet,
		Path:   api.PathExerciseSuggestions,
		Query:  url.Values{"input": {input}},
		Header: http.Header{"User-Id": {strconv.FormatInt(userID, 10)}},
	}, &out)
	if err == nil {
		return out, nil
	}
	if !fallbackAllowed(err) {
		return nil, fmt.Errorf("exercise suggestions: %w", err)
	}

	cached, found, _ := s.cachedWorkouts(userID)
	if !found {
		return nil, fmt.Errorf("exercise suggestions: %w", err)
	}
	log.Warnf("suggestions failed, using exercise history: %s", err)
	s.countFallback("suggestions")
	return analytics.HistoricalSuggestions(cached, input, s.loc, suggestionLimit), nil
}

// findExercise locates an exercise and its workout in a cached list.
func findExercise(workouts []models.Workout, exerciseID int64) (*models.Exercise, *models.Workout) {
	for i := range workouts {
		if ex := workouts[i].FindExercise(exerciseID); ex != nil {
			return ex, &workouts[i]
		}
	}
	return nil, nil
}
