// ABOUTME: Analytics dashboards read through the cache under the mobile app's keys.
// ABOUTME: Falls back to local computation over cached workouts when the server fails.
package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	log "github.com/sirupsen/logrus"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/harperreed/jetgym/internal/analytics"
	"github.com/harperreed/jetgym/internal/api"
	"github.com/harperreed/jetgym/internal/cache"
	"github.com/harperreed/jetgym/internal/calendar"
	"github.com/harperreed/jetgym/internal/models"
)

// Analytics cache key names. Windowed views append _<uid>_<weeks>, the
// others _<uid>.
const (
	keyWorkoutsPerWeek    = "workoutsPerWeek"
	keyConsistencyInsight = "consistencyInsight"
	keyDailyWorkouts      = "dailyWorkouts"
	keyPersonalRecords    = "personalRecords"
	keyWeeklyVolume       = "weeklyVolume"
	keyMuscleVolume       = "muscleVolume"
)

var (
	windowedKeys = []string{keyWorkoutsPerWeek, keyConsistencyInsight, keyWeeklyVolume}
	userKeys     = []string{keyDailyWorkouts, keyPersonalRecords, keyMuscleVolume}
)

func windowedKey(name string, userID int64, weeksBack int) string {
	return fmt.Sprintf("%s_%d_%d", name, userID, weeksBack)
}

func userKey(name string, userID int64) string {
	return fmt.Sprintf("%s_%d", name, userID)
}

// clearAnalytics removes every analytics entry of one user, for all windows.
func clearAnalytics(c *cache.Cache, userID int64) error {
	var errs error
	for _, name := range windowedKeys {
		// The trailing "_" keeps user 1 from matching user 12.
		_, err := c.RemovePrefix(fmt.Sprintf("%s_%d_", name, userID))
		errs = multierr.Append(errs, err)
	}
	for _, name := range userKeys {
		errs = multierr.Append(errs, c.RemoveItem(userKey(name, userID)))
	}
	return errs
}

type AnalyticsService struct {
	*base
	workouts *WorkoutService
}

// analyticsView reads one dashboard through the cache, computing it from
// the cached workouts when the server call fails.
func analyticsView[T any](ctx context.Context, s *AnalyticsService, key, resource string, userID int64, query url.Values, local func([]models.Workout) T) (T, error) {
	v, err := cache.GetOrFetch(ctx, s.cache, key, 0, func(ctx context.Context) (T, error) {
		var out T
		err := s.api.Get(ctx, api.AnalyticsPath(resource, userID), query, &out)
		return out, err
	})
	if err == nil {
		return v, nil
	}
	if !fallbackAllowed(err) || ctx.Err() != nil {
		return v, fmt.Errorf("%s: %w", resource, err)
	}

	workouts, found, cerr := s.cachedWorkouts(userID)
	if cerr != nil || !found || len(workouts) == 0 {
		return v, fmt.Errorf("%s: %w", resource, err)
	}
	log.WithFields(log.Fields{"resource": resource, "user_id": userID}).
		Warnf("analytics unavailable, computing from cached workouts: %s", err)
	s.countFallback(resource)
	return local(workouts), nil
}

func weeksQuery(weeksBack int) url.Values {
	return url.Values{"weeksBack": {strconv.Itoa(weeksBack)}}
}

func normalizeWeeks(weeksBack int) int {
	if weeksBack <= 0 {
		return DefaultWeeksBack
	}
	return weeksBack
}

// WorkoutsPerWeek maps ISO week number to workout count.
func (s *AnalyticsService) WorkoutsPerWeek(ctx context.Context, userID int64, weeksBack int) (models.WorkoutsPerWeek, error) {
	weeksBack = normalizeWeeks(weeksBack)
	return analyticsView(ctx, s, windowedKey(keyWorkoutsPerWeek, userID, weeksBack), api.AnalyticsWorkoutsPerWeek, userID, weeksQuery(weeksBack),
		func(workouts []models.Workout) models.WorkoutsPerWeek {
			return analytics.WorkoutsPerWeek(workouts, s.now(), s.loc, weeksBack)
		})
}

func (s *AnalyticsService) ConsistencyInsight(ctx context.Context, userID int64, weeksBack int) (models.ConsistencyInsight, error) {
	weeksBack = normalizeWeeks(weeksBack)
	return analyticsView(ctx, s, windowedKey(keyConsistencyInsight, userID, weeksBack), api.AnalyticsConsistencyInsight, userID, weeksQuery(weeksBack),
		func(workouts []models.Workout) models.ConsistencyInsight {
			return analytics.Consistency(workouts, s.now(), s.loc, weeksBack)
		})
}

// DailyWorkouts counts this week's workouts per day, Monday first.
func (s *AnalyticsService) DailyWorkouts(ctx context.Context, userID int64) ([]int, error) {
	return analyticsView(ctx, s, userKey(keyDailyWorkouts, userID), api.AnalyticsDailyWorkouts, userID, nil,
		func(workouts []models.Workout) []int {
			return analytics.DailyWorkouts(workouts, s.now(), s.loc)
		})
}

func (s *AnalyticsService) PersonalRecords(ctx context.Context, userID int64) ([]models.PersonalRecord, error) {
	return analyticsView(ctx, s, userKey(keyPersonalRecords, userID), api.AnalyticsPersonalRecords, userID, nil,
		func(workouts []models.Workout) []models.PersonalRecord {
			return analytics.PersonalRecords(workouts, s.loc)
		})
}

func (s *AnalyticsService) WeeklyVolume(ctx context.Context, userID int64, weeksBack int) ([]models.WeeklyVolume, error) {
	weeksBack = normalizeWeeks(weeksBack)
	return analyticsView(ctx, s, windowedKey(keyWeeklyVolume, userID, weeksBack), api.AnalyticsWeeklyVolume, userID, weeksQuery(weeksBack),
		func(workouts []models.Workout) []models.WeeklyVolume {
			return analytics.WeeklyVolume(workouts, s.now(), s.loc, weeksBack)
		})
}

func (s *AnalyticsService) MuscleVolume(ctx context.Context, userID int64) (models.MuscleVolume, error) {
	return analyticsView(ctx, s, userKey(keyMuscleVolume, userID), api.AnalyticsMuscleVolume, userID, nil,
		func(workouts []models.Workout) models.MuscleVolume {
			return analytics.MuscleVolume(workouts, s.now(), s.loc)
		})
}

// ClearCache drops every cached analytics view of the user.
func (s *AnalyticsService) ClearCache(userID int64) error {
	return clearAnalytics(s.cache, userID)
}

// Dashboard loads all views concurrently. The first failure cancels the rest.
func (s *AnalyticsService) Dashboard(ctx context.Context, userID int64, weeksBack int) (*models.Dashboard, error) {
	var d models.Dashboard
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		d.WorkoutsPerWeek, err = s.WorkoutsPerWeek(gctx, userID, weeksBack)
		return err
	})
	g.Go(func() (err error) {
		d.ConsistencyInsight, err = s.ConsistencyInsight(gctx, userID, weeksBack)
		return err
	})
	g.Go(func() (err error) {
		d.DailyWorkouts, err = s.DailyWorkouts(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		d.PersonalRecords, err = s.PersonalRecords(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		d.WeeklyVolume, err = s.WeeklyVolume(gctx, userID, weeksBack)
		return err
	})
	g.Go(func() (err error) {
		d.MuscleVolume, err = s.MuscleVolume(gctx, userID)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &d, nil
}

// Refresh clears the user's analytics and reloads every view.
func (s *AnalyticsService) Refresh(ctx context.Context, userID int64, weeksBack int) (*models.Dashboard, error) {
	if err := s.ClearCache(userID); err != nil {
		log.WithField("user_id", userID).Warnf("clear analytics cache: %s", err)
	}
	return s.Dashboard(ctx, userID, weeksBack)
}

// StreakLimit caps how many days back Streak looks, like the weekly card.
const StreakLimit = 7

// Streak reports the current streak, at most StreakLimit days, and this
// week's completed weekdays. Only completed workouts count. It reads the
// cache only.
func (s *AnalyticsService) Streak(userID int64) (models.Streak, error) {
	workouts, found, err := s.cachedWorkouts(userID)
	if err != nil {
		return models.Streak{}, fmt.Errorf("streak: %w", err)
	}
	if !found {
		return models.Streak{}, fmt.Errorf("streak: %w", ErrNotCached)
	}

	days := calendar.NewDaySet(s.loc, analytics.CompletedDays(workouts, s.loc)...)
	now := s.now()
	return models.Streak{
		CurrentStreak:     days.CurrentStreak(now, StreakLimit),
		CompletedWeekdays: days.CompletedWeekdays(now),
	}, nil
}

// StreakOrFetch is Streak, listing the user's workouts first when none are
// cached.
func (s *AnalyticsService) StreakOrFetch(ctx context.Context, userID int64) (models.Streak, error) {
	streak, err := s.Streak(userID)
	if !errors.Is(err, ErrNotCached) {
		return streak, err
	}
	if _, err := s.workouts.List(ctx, userID); err != nil {
		return models.Streak{}, fmt.Errorf("streak: %w", err)
	}
	return s.Streak(userID)
}
