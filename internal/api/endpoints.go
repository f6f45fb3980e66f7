// ABOUTME: REST endpoint paths of the fitness backend.
// ABOUTME: Parameterized paths are built by small helper functions.
package api

import (
	"fmt"
	"net/url"
	"strconv"
)

const (
	PathLogin    = "/api/auth/login"
	PathRegister = "/api/auth/register"
	PathLogout   = "/api/auth/logout"

	PathWorkoutCreate = "/api/workout/create"
	PathWorkoutUpdate = "/api/workout/update"
	PathWorkoutDelete = "/api/workout/deleteWorkout"

	PathExerciseCreate      = "/api/exercise/create"
	PathExerciseUpdate      = "/api/exercise/update"
	PathExerciseDelete      = "/api/exercise/delete"
	PathExerciseSuggestions = "/api/exercise/suggestions"

	PathSetCreate = "/api/sets/create"
	PathSetUpdate = "/api/sets/update"
	PathSetDelete = "/api/sets/delete"

	analyticsBase = "/api/analytics"
)

// Analytics resources under /api/analytics/<name>/{userId}.
const (
	AnalyticsWorkoutsPerWeek    = "workouts-per-week"
	AnalyticsConsistencyInsight = "consistency-insight"
	AnalyticsDailyWorkouts      = "daily-workouts"
	AnalyticsPersonalRecords    = "personal-records"
	AnalyticsWeeklyVolume       = "weekly-volume"
	AnalyticsMuscleVolume       = "muscle-volume"
)

func UserWorkoutsPath(userID int64) string {
	return "/api/workout/userWorkouts/" + strconv.FormatInt(userID, 10)
}

func UserWorkoutsByPeriodPath(userID int64, period string) string {
	return UserWorkoutsPath(userID) + "/" + url.PathEscape(period)
}

func WorkoutExercisesPath(workoutID int64) string {
	return "/api/exercise/workoutExercises/" + strconv.FormatInt(workoutID, 10)
}

func ExerciseSetsPath(exerciseID int64) string {
	return "/api/sets/exerciseSets/" + strconv.FormatInt(exerciseID, 10)
}

func AnalyticsPath(resource string, userID int64) string {
	return fmt.Sprintf("%s/%s/%d", analyticsBase, resource, userID)
}
