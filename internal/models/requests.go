// ABOUTME: Request wrappers for update and delete endpoints.
// ABOUTME: Field names follow the backend's wrapper DTOs exactly.
package models

type WorkoutUpdate struct {
	WorkoutID int64   `json:"workoutId"`
	UserID    int64   `json:"userId"`
	Workout   Workout `json:"workoutDTO"`
}

type WorkoutDelete struct {
	UserID    int64 `json:"userId"`
	WorkoutID int64 `json:"workoutId"`
}

type ExerciseCreate struct {
	UserID   int64    `json:"userId"`
	Exercise Exercise `json:"exercise"`
}

type ExerciseUpdate struct {
	UserID   int64    `json:"userId"`
	Exercise Exercise `json:"exerciseDTO"`
}

type ExerciseDelete struct {
	UserID     int64 `json:"userId"`
	ExerciseID int64 `json:"exerciseId"`
}

type ExerciseSetCreate struct {
	UserID int64       `json:"userId"`
	Set    ExerciseSet `json:"exerciseSetDTO"`
}

type ExerciseSetUpdate struct {
	UserID int64       `json:"userId"`
	Set    ExerciseSet `json:"exerciseSetDTO"`
}

type ExerciseSetDelete struct {
	UserID        int64 `json:"userId"`
	ExerciseSetID int64 `json:"exerciseSetId"`
}

// WorkoutCreated is the body of a successful POST /api/workout/create.
type WorkoutCreated struct {
	NewWorkout Workout `json:"newWorkout"`
}

// ExerciseCreated is the body of a successful POST /api/exercise/create.
type ExerciseCreated struct {
	NewExercise Exercise `json:"newExercise"`
}
