// ABOUTME: Workout reads (read-through cache) and writes (server first, then write-through).
// ABOUTME: Local filters and the last-workout summary work on the cached list.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/harperreed/jetgym/internal/analytics"
	"github.com/harperreed/jetgym/internal/api"
	"github.com/harperreed/jetgym/internal/cache"
	"github.com/harperreed/jetgym/internal/calendar"
	"github.com/harperreed/jetgym/internal/models"
)

type WorkoutService struct {
	*base
}

func (s *WorkoutService) fetch(ctx context.Context, userID int64) ([]models.Workout, error) {
	var workouts []models.Workout
	if err := s.api.Get(ctx, api.UserWorkoutsPath(userID), nil, &workouts); err != nil {
		return nil, fmt.Errorf("list workouts: %w", err)
	}
	if workouts == nil {
		workouts = []models.Workout{}
	}
	return workouts, nil
}

// List returns the user's workouts, newest first, from the cache when fresh.
func (s *WorkoutService) List(ctx context.Context, userID int64) ([]models.Workout, error) {
	workouts, err := cache.GetOrFetch(ctx, s.cache, WorkoutsKey(userID), 0, func(ctx context.Context) ([]models.Workout, error) {
		return s.fetch(ctx, userID)
	})
	if err != nil {
		return nil, err
	}
	analytics.SortByDate(workouts, s.loc)
	return workouts, nil
}

// Refresh refetches the workouts and replaces the cached list.
func (s *WorkoutService) Refresh(ctx context.Context, userID int64) ([]models.Workout, error) {
	workouts, err := s.fetch(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.cache.SetItem(WorkoutsKey(userID), workouts, 0); err != nil {
		log.WithField("user_id", userID).Warnf("cache workouts: %s", err)
	}
	if err := clearAnalytics(s.cache, userID); err != nil {
		log.WithField("user_id", userID).Warnf("clear analytics cache: %s", err)
	}
	analytics.SortByDate(workouts, s.loc)
	return workouts, nil
}

// ListByPeriod asks the server for the workouts in period. When the server
// can't answer, the cached list is filtered locally instead.
func (s *WorkoutService) ListByPeriod(ctx context.Context, userID int64, period calendar.Period) ([]models.Workout, error) {
	if period == calendar.PeriodAll {
		return s.List(ctx, userID)
	}

	var workouts []models.Workout
	err := s.api.Get(ctx, api.UserWorkoutsByPeriodPath(userID, string(period)), nil, &workouts)
	if err == nil {
		analytics.SortByDate(workouts, s.loc)
		return workouts, nil
	}
	if !fallbackAllowed(err) {
		return nil, fmt.Errorf("list %s workouts: %w", period, err)
	}

	cached, found, cerr := s.cachedWorkouts(userID)
	if cerr != nil || !found {
		return nil, fmt.Errorf("list %s workouts: %w", period, err)
	}
	log.WithField("period", period).Warnf("server period filter failed, filtering cached workouts: %s", err)
	s.countFallback("workouts")

	out := analytics.InRange(cached, period.Range(s.now(), s.loc), s.loc)
	analytics.SortByDate(out, s.loc)
	return out, nil
}

// Filter returns the workouts on the filter's date, month or year.
func (s *WorkoutService) Filter(ctx context.Context, userID int64, f calendar.Filter) ([]models.Workout, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	workouts, err := s.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	return analytics.MatchFilter(workouts, f, s.loc), nil
}

// Get returns one workout with its exercises and sets.
func (s *WorkoutService) Get(ctx context.Context, userID, workoutID int64) (*models.Workout, error) {
	workouts, err := s.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	w := models.FindWorkout(workouts, workoutID)
	if w == nil {
		return nil, fmt.Errorf("workout %d: %w", workoutID, ErrNotFound)
	}
	return w, nil
}

// Create saves a new workout and adds the server's copy to the cached list.
func (s *WorkoutService) Create(ctx context.Context, w models.Workout) (*models.Workout, error) {
	w.ID = nil
	if err := w.Validate(); err != nil {
		return nil, fmt.Errorf("invalid workout: %w", err)
	}

	var raw json.RawMessage
	if err := s.api.Post(ctx, api.PathWorkoutCreate, w, &raw); err != nil {
		return nil, fmt.Errorf("create workout: %w", err)
	}
	var created models.Workout
	if err := api.Unwrap(raw, "newWorkout", &created); err != nil {
		return nil, fmt.Errorf("create workout: decode response: %w", err)
	}
	if created.ID == nil {
		return nil, errors.New("create workout: server returned no id")
	}
	if created.UserID == 0 {
		created.UserID = w.UserID
	}

	s.patchWorkouts(w.UserID, func(workouts []models.Workout) []models.Workout {
		return append(workouts, created)
	})
	return &created, nil
}

// Update replaces a workout's fields. Exercises in w are ignored by the
// server; the cached exercises are kept.
func (s *WorkoutService) Update(ctx context.Context, w models.Workout) (*models.Workout, error) {
	if w.ID == nil {
		return nil, errors.New("update workout: id is required")
	}
	if err := w.Validate(); err != nil {
		return nil, fmt.Errorf("invalid workout: %w", err)
	}

	body := models.WorkoutUpdate{WorkoutID: *w.ID, UserID: w.UserID, Workout: w}
	if err := s.api.Put(ctx, api.PathWorkoutUpdate, body, nil); err != nil {
		return nil, fmt.Errorf("update workout %d: %w", *w.ID, err)
	}

	updated := w
	s.patchWorkouts(w.UserID, func(workouts []models.Workout) []models.Workout {
		if cur := models.FindWorkout(workouts, *w.ID); cur != nil {
			exercises := cur.Exercises
			*cur = w
			cur.Exercises = exercises
			updated = *cur
		}
		return workouts
	})
	return &updated, nil
}

// Delete removes a workout on the server and from the cached list.
func (s *WorkoutService) Delete(ctx context.Context, userID, workoutID int64) error {
	body := models.WorkoutDelete{UserID: userID, WorkoutID: workoutID}
	if err := s.api.Delete(ctx, api.PathWorkoutDelete, body, nil); err != nil {
		return fmt.Errorf("delete workout %d: %w", workoutID, err)
	}

	s.patchWorkouts(userID, func(workouts []models.Workout) []models.Workout {
		out := workouts[:0]
		for _, w := range workouts {
			if w.IDValue() != workoutID {
				out = append(out, w)
			}
		}
		return out
	})
	return nil
}

// Complete marks a workout as done.
func (s *WorkoutService) Complete(ctx context.Context, userID, workoutID int64) (*models.Workout, error) {
	w, err := s.Get(ctx, userID, workoutID)
	if err != nil {
		return nil, err
	}
	if w.Completed {
		return w, nil
	}
	w.MarkCompleted()
	return s.Update(ctx, *w)
}

// LastWorkoutSummary summarizes the most recent workout.
func (s *WorkoutService) LastWorkoutSummary(ctx context.Context, userID int64) (*models.WorkoutSummary, error) {
	workouts, err := s.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	last := analytics.LastWorkout(workouts, s.loc)
	if last == nil {
		return nil, fmt.Errorf("last workout: %w", ErrNotFound)
	}
	summary := analytics.Summarize(*last)
	return &summary, nil
}
