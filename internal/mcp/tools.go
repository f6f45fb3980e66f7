// ABOUTME: MCP tool implementations for workouts, exercises, sets and analytics.
// ABOUTME: Every tool acts for the logged-in user and goes through the service layer.
package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/jetgym/internal/calendar"
	"github.com/harperreed/jetgym/internal/models"
)

const defaultListLimit = 20

// Analytics views accepted by get_analytics.
const (
	viewDashboard       = "dashboard"
	viewWorkoutsPerWeek = "workouts_per_week"
	viewConsistency     = "consistency"
	viewDaily           = "daily"
	viewRecords         = "records"
	viewWeeklyVolume    = "weekly_volume"
	viewMuscleVolume    = "muscle_volume"
)

func (s *Server) registerTools() {
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_workouts",
		Description: "List workouts, newest first, optionally limited to the current day, week, month or year",
	}, s.handleListWorkouts)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_workout",
		Description: "Get a workout with its exercises and sets",
	}, s.handleGetWorkout)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "create_workout",
		Description: "Create a new workout",
	}, s.handleCreateWorkout)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "complete_workout",
		Description: "Mark a workout as completed",
	}, s.handleCompleteWorkout)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "delete_workout",
		Description: "Delete a workout with its exercises and sets",
	}, s.handleDeleteWorkout)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "add_exercise",
		Description: "Add an exercise to a workout",
	}, s.handleAddExercise)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "add_set",
		Description: "Add a set (reps or seconds, plus weight) to an exercise",
	}, s.handleAddSet)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_streak",
		Description: "Current training streak and this week's completed weekdays (Monday = 0)",
	}, s.handleGetStreak)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_analytics",
		Description: "Analytics: dashboard, workouts_per_week, consistency, daily, records, weekly_volume or muscle_volume",
	}, s.handleGetAnalytics)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "filter_workouts",
		Description: "Workouts on a date (YYYY-MM-DD), in a month (YYYY-MM) or in a year (YYYY)",
	}, s.handleFilterWorkouts)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "cache_stats",
		Description: "Local cache entry counts and client counters",
	}, s.handleCacheStats)
}

// Tool input/output types

type listWorkoutsInput struct {
	Period string `json:"period,omitempty" jsonschema:"day, week, month, year or all (default all)"`
	Limit  int    `json:"limit,omitempty" jsonschema:"Max results (default 20)"`
}

type workoutIDInput struct {
	ID int64 `json:"id" jsonschema:"Workout ID"`
}

type createWorkoutInput struct {
	Name     string `json:"name" jsonschema:"Workout name"`
	Date     string `json:"date,omitempty" jsonschema:"Date as YYYY-MM-DD, defaults to today"`
	Notes    string `json:"notes,omitempty" jsonschema:"Optional notes"`
	Duration int    `json:"duration,omitempty" jsonschema:"Duration in minutes"`
}

type workoutOutput struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Date      string `json:"date"`
	Completed bool   `json:"completed"`
	Message   string `json:"message"`
}

type addExerciseInput struct {
	WorkoutID   int64  `json:"workout_id" jsonschema:"Workout ID"`
	Name        string `json:"name" jsonschema:"Exercise name"`
	MuscleGroup string `json:"muscle_group,omitempty" jsonschema:"Muscle group, e.g. Chest"`
	TimeBased   bool   `json:"time_based,omitempty" jsonschema:"Sets are measured in seconds instead of reps"`
}

type exerciseOutput struct {
	ID        int64  `json:"id"`
	WorkoutID int64  `json:"workout_id"`
	Name      string `json:"name"`
	Message   string `json:"message"`
}

type addSetInput struct {
	ExerciseID int64   `json:"exercise_id" jsonschema:"Exercise ID"`
	Value      int     `json:"value" jsonschema:"Reps, or seconds for time-based sets"`
	Weight     float64 `json:"weight,omitempty" jsonschema:"Weight lifted"`
	TimeBased  bool    `json:"time_based,omitempty" jsonschema:"Value is seconds"`
	Completed  bool    `json:"completed,omitempty" jsonschema:"Set was completed"`
}

type setOutput struct {
	ID         int64  `json:"id"`
	ExerciseID int64  `json:"exercise_id"`
	Message    string `json:"message"`
}

type streakOutput struct {
	CurrentStreak     int    `json:"current_streak"`
	CompletedWeekdays []int  `json:"completed_weekdays"`
	Message           string `json:"message"`
}

type getAnalyticsInput struct {
	View      string `json:"view,omitempty" jsonschema:"dashboard (default), workouts_per_week, consistency, daily, records, weekly_volume or muscle_volume"`
	WeeksBack int    `json:"weeks_back,omitempty" jsonschema:"Weeks of history for windowed views (default 7)"`
	Refresh   bool   `json:"refresh,omitempty" jsonschema:"Drop cached analytics before reading"`
}

type filterWorkoutsInput struct {
	Filter string `json:"filter" jsonschema:"YYYY, YYYY-MM or YYYY-MM-DD"`
}

type emptyInput struct{}

type cacheStatsOutput struct {
	Entries int                `json:"entries"`
	Expired int                `json:"expired"`
	Bytes   int                `json:"bytes"`
	Metrics map[string]float64 `json:"metrics,omitempty"`
}

type simpleOutput struct {
	Message string `json:"message"`
}

// Tool handlers

func (s *Server) handleListWorkouts(ctx context.Context, req *mcp.CallToolRequest, input listWorkoutsInput) (*mcp.CallToolResult, any, error) {
	uid, err := s.userID()
	if err != nil {
		return nil, nil, err
	}
	if input.Limit <= 0 {
		input.Limit = defaultListLimit
	}

	period := calendar.PeriodAll
	if input.Period != "" {
		if period, err = calendar.ParsePeriod(input.Period); err != nil {
			return nil, nil, err
		}
	}

	workouts, err := s.svc.Workouts.ListByPeriod(ctx, uid, period)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list workouts: %w", err)
	}
	if len(workouts) == 0 {
		return nil, map[string]any{"message": "No workouts found."}, nil
	}
	if len(workouts) > input.Limit {
		workouts = workouts[:input.Limit]
	}
	return nil, workouts, nil
}

func (s *Server) handleGetWorkout(ctx context.Context, req *mcp.CallToolRequest, input workoutIDInput) (*mcp.CallToolResult, any, error) {
	uid, err := s.userID()
	if err != nil {
		return nil, nil, err
	}
	w, err := s.svc.Workouts.Get(ctx, uid, input.ID)
	if err != nil {
		return nil, nil, err
	}
	return nil, w, nil
}

func (s *Server) handleCreateWorkout(ctx context.Context, req *mcp.CallToolRequest, input createWorkoutInput) (*mcp.CallToolResult, workoutOutput, error) {
	uid, err := s.userID()
	if err != nil {
		return nil, workoutOutput{}, err
	}

	loc := s.svc.Location()
	w := models.NewWorkout(uid, strings.TrimSpace(input.Name)).WithDate(s.svc.Now().In(loc))
	if input.Date != "" {
		day, err := calendar.ParseDay(input.Date, loc)
		if err != nil {
			return nil, workoutOutput{}, err
		}
		w.WithDate(day)
	}
	if input.Notes != "" {
		w.WithNotes(input.Notes)
	}
	if input.Duration > 0 {
		w.WithDuration(input.Duration)
	}

	created, err := s.svc.Workouts.Create(ctx, *w)
	if err != nil {
		return nil, workoutOutput{}, err
	}
	return nil, workoutResult(created, fmt.Sprintf("Created workout %q on %s (ID: %d)", created.Name, created.Date, created.IDValue())), nil
}

func (s *Server) handleCompleteWorkout(ctx context.Context, req *mcp.CallToolRequest, input workoutIDInput) (*mcp.CallToolResult, workoutOutput, error) {
	uid, err := s.userID()
	if err != nil {
		return nil, workoutOutput{}, err
	}
	w, err := s.svc.Workouts.Complete(ctx, uid, input.ID)
	if err != nil {
		return nil, workoutOutput{}, err
	}
	return nil, workoutResult(w, fmt.Sprintf("Completed workout %q", w.Name)), nil
}

func (s *Server) handleDeleteWorkout(ctx context.Context, req *mcp.CallToolRequest, input workoutIDInput) (*mcp.CallToolResult, simpleOutput, error) {
	uid, err := s.userID()
	if err != nil {
		return nil, simpleOutput{}, err
	}
	if err := s.svc.Workouts.Delete(ctx, uid, input.ID); err != nil {
		return nil, simpleOutput{}, err
	}
	return nil, simpleOutput{Message: fmt.Sprintf("Deleted workout: %d", input.ID)}, nil
}

func (s *Server) handleAddExercise(ctx context.Context, req *mcp.CallToolRequest, input addExerciseInput) (*mcp.CallToolResult, exerciseOutput, error) {
	uid, err := s.userID()
	if err != nil {
		return nil, exerciseOutput{}, err
	}

	ex := models.NewExercise(input.WorkoutID, strings.TrimSpace(input.Name), strings.TrimSpace(input.MuscleGroup))
	ex.IsTimeBased = input.TimeBased

	created, err := s.svc.Exercises.Create(ctx, uid, *ex)
	if err != nil {
		return nil, exerciseOutput{}, err
	}
	return nil, exerciseOutput{
		ID:        created.IDValue(),
		WorkoutID: created.WorkoutID,
		Name:      created.Name,
		Message:   fmt.Sprintf("Added %s to workout %d (ID: %d)", created.Name, created.WorkoutID, created.IDValue()),
	}, nil
}

func (s *Server) handleAddSet(ctx context.Context, req *mcp.CallToolRequest, input addSetInput) (*mcp.CallToolResult, setOutput, error) {
	uid, err := s.userID()
	if err != nil {
		return nil, setOutput{}, err
	}

	set := models.NewExerciseSet(input.ExerciseID, input.Value, input.Weight)
	set.IsTimeBased = input.TimeBased
	set.Completed = input.Completed

	created, err := s.svc.Sets.Create(ctx, uid, *set)
	if err != nil {
		return nil, setOutput{}, err
	}

	unit := "reps"
	if created.IsTimeBased {
		unit = "s"
	}
	return nil, setOutput{
		ID:         created.IDValue(),
		ExerciseID: created.ExerciseID,
		Message:    fmt.Sprintf("Added set: %d %s @ %.1f (ID: %d)", created.Value, unit, created.Weight, created.IDValue()),
	}, nil
}

func (s *Server) handleGetStreak(ctx context.Context, req *mcp.CallToolRequest, input emptyInput) (*mcp.CallToolResult, streakOutput, error) {
	uid, err := s.userID()
	if err != nil {
		return nil, streakOutput{}, err
	}

	streak, err := s.streak(ctx, uid)
	if err != nil {
		return nil, streakOutput{}, err
	}

	return nil, streakOutput{
		CurrentStreak:     streak.CurrentStreak,
		CompletedWeekdays: streak.CompletedWeekdays,
		Message:           fmt.Sprintf("Current streak: %d day(s)", streak.CurrentStreak),
	}, nil
}

func (s *Server) handleGetAnalytics(ctx context.Context, req *mcp.CallToolRequest, input getAnalyticsInput) (*mcp.CallToolResult, any, error) {
	uid, err := s.userID()
	if err != nil {
		return nil, nil, err
	}
	if input.Refresh {
		if err := s.svc.Analytics.ClearCache(uid); err != nil {
			return nil, nil, fmt.Errorf("failed to clear analytics cache: %w", err)
		}
	}

	a := s.svc.Analytics
	var out any
	switch strings.ToLower(strings.TrimSpace(input.View)) {
	case "", viewDashboard:
		out, err = a.Dashboard(ctx, uid, input.WeeksBack)
	case viewWorkoutsPerWeek:
		out, err = a.WorkoutsPerWeek(ctx, uid, input.WeeksBack)
	case viewConsistency:
		out, err = a.ConsistencyInsight(ctx, uid, input.WeeksBack)
	case viewDaily:
		out, err = a.DailyWorkouts(ctx, uid)
	case viewRecords:
		out, err = a.PersonalRecords(ctx, uid)
	case viewWeeklyVolume:
		out, err = a.WeeklyVolume(ctx, uid, input.WeeksBack)
	case viewMuscleVolume:
		out, err = a.MuscleVolume(ctx, uid)
	default:
		return nil, nil, fmt.Errorf("unknown analytics view: %q", input.View)
	}
	if err != nil {
		return nil, nil, err
	}
	return nil, out, nil
}

func (s *Server) handleFilterWorkouts(ctx context.Context, req *mcp.CallToolRequest, input filterWorkoutsInput) (*mcp.CallToolResult, any, error) {
	uid, err := s.userID()
	if err != nil {
		return nil, nil, err
	}
	f, err := calendar.ParseFilter(input.Filter)
	if err != nil {
		return nil, nil, err
	}

	workouts, err := s.svc.Workouts.Filter(ctx, uid, f)
	if err != nil {
		return nil, nil, err
	}
	if len(workouts) == 0 {
		return nil, map[string]any{"message": fmt.Sprintf("No workouts for %s.", f.Label())}, nil
	}
	return nil, workouts, nil
}

func (s *Server) handleCacheStats(ctx context.Context, req *mcp.CallToolRequest, input emptyInput) (*mcp.CallToolResult, cacheStatsOutput, error) {
	st, err := s.cache.Stats()
	if err != nil {
		return nil, cacheStatsOutput{}, fmt.Errorf("failed to read cache: %w", err)
	}

	out := cacheStatsOutput{Entries: st.Entries, Expired: st.Expired, Bytes: st.Bytes}
	if s.metrics != nil {
		samples, err := s.metrics.Snapshot()
		if err != nil {
			return nil, cacheStatsOutput{}, fmt.Errorf("failed to read metrics: %w", err)
		}
		out.Metrics = make(map[string]float64)
		for _, sample := range samples {
			out.Metrics[sample.Name] += sample.Value
		}
	}
	return nil, out, nil
}

func workoutResult(w *models.Workout, msg string) workoutOutput {
	return workoutOutput{
		ID:        w.IDValue(),
		Name:      w.Name,
		Date:      w.Date,
		Completed: w.Completed,
		Message:   msg,
	}
}
