// ABOUTME: Service layer over the API client and the cache.
// ABOUTME: Holds shared dependencies, cache key names and sentinel errors.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/harperreed/jetgym/internal/api"
	"github.com/harperreed/jetgym/internal/cache"
	"github.com/harperreed/jetgym/internal/metrics"
	"github.com/harperreed/jetgym/internal/models"
)

var (
	// ErrNotLoggedIn means no user data is cached.
	ErrNotLoggedIn = errors.New("not logged in (run 'jetgym auth login')")
	// ErrNotCached means a local-only operation found nothing in the cache.
	ErrNotCached = errors.New("no cached data")
	// ErrNotFound means an ID is absent from the user's workouts.
	ErrNotFound = errors.New("not found")
)

// Cache keys shared with the mobile app.
const (
	KeyToken    = "token"
	KeyUserData = "userData"

	workoutsKeyPrefix = "workouts_"
)

// DefaultWeeksBack is the analytics window when callers pass 0.
const DefaultWeeksBack = 7

// WorkoutsKey is the cache key of a user's workout list.
func WorkoutsKey(userID int64) string {
	return fmt.Sprintf("%s%d", workoutsKeyPrefix, userID)
}

// Options configures New. API and Cache are required.
type Options struct {
	API     *api.Client
	Cache   *cache.Cache
	Metrics *metrics.Manager
	// Location sets day boundaries; nil means time.Local.
	Location *time.Location
	// Now replaces time.Now, for tests.
	Now func() time.Time
}

// Services groups the per-resource services.
type Services struct {
	Auth      *AuthService
	Workouts  *WorkoutService
	Exercises *ExerciseService
	Sets      *SetService
	Analytics *AnalyticsService
}

// New builds every service and installs Auth as the client's token source.
func New(opts Options) *Services {
	b := &base{
		api:     opts.API,
		cache:   opts.Cache,
		metrics: opts.Metrics,
		loc:     opts.Location,
		now:     opts.Now,
	}
	if b.loc == nil {
		b.loc = time.Local
	}
	if b.now == nil {
		b.now = time.Now
	}

	workouts := &WorkoutService{base: b}
	s := &Services{
		Auth:      &AuthService{base: b},
		Workouts:  workouts,
		Exercises: &ExerciseService{base: b},
		Sets:      &SetService{base: b},
		Analytics: &AnalyticsService{base: b, workouts: workouts},
	}
	opts.API.SetTokenSource(s.Auth)
	return s
}

// Location returns the zone used for day boundaries.
func (s *Services) Location() *time.Location {
	return s.Auth.loc
}

// Now returns the services' clock reading.
func (s *Services) Now() time.Time {
	return s.Auth.now()
}

type base struct {
	api     *api.Client
	cache   *cache.Cache
	metrics *metrics.Manager
	loc     *time.Location
	now     func() time.Time
}

// cachedWorkouts reads the user's workout list without touching the network.
func (b *base) cachedWorkouts(userID int64) ([]models.Workout, bool, error) {
	var workouts []models.Workout
	found, err := b.cache.GetItem(WorkoutsKey(userID), &workouts)
	return workouts, found, err
}

// patchWorkouts applies fn to the cached list, if there is one, and then
// drops the user's analytics. An absent list stays absent so the next read
// fetches it whole.
func (b *base) patchWorkouts(userID int64, fn func(workouts []models.Workout) []models.Workout) {
	err := cache.Update(b.cache, WorkoutsKey(userID), 0, func(cur *[]models.Workout, found bool) (bool, error) {
		if !found {
			return false, nil
		}
		*cur = fn(*cur)
		return true, nil
	})
	if err != nil {
		log.WithField("key", WorkoutsKey(userID)).Warnf("write-through failed, dropping cached workouts: %s", err)
		_ = b.cache.RemoveItem(WorkoutsKey(userID))
	}
	if err := clearAnalytics(b.cache, userID); err != nil {
		log.WithField("user_id", userID).Warnf("clear analytics cache: %s", err)
	}
}

func (b *base) countFallback(resource string) {
	if b.metrics != nil {
		b.metrics.CounterFallbacks.WithLabelValues(resource).Inc()
	}
}

// fallbackAllowed reports whether a failed server call may be answered
// from the cache. Rejected credentials and cancelled calls may not.
func fallbackAllowed(err error) bool {
	return !errors.Is(err, api.ErrUnauthorized) &&
		!errors.Is(err, context.Canceled)
}
