// ABOUTME: Tests for MCP server, tools, and resources.
// ABOUTME: Handlers are called directly against an httptest backend and a memory cache.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/jetgym/internal/api"
	"github.com/harperreed/jetgym/internal/cache"
	"github.com/harperreed/jetgym/internal/metrics"
	"github.com/harperreed/jetgym/internal/models"
	"github.com/harperreed/jetgym/internal/service"
)

// testNow is a Wednesday.
var testNow = time.Date(2024, 7, 10, 20, 0, 0, 0, time.UTC)

func seedWorkouts() []models.Workout {
	return []models.Workout{
		{
			ID: models.ID(1), UserID: 1, Name: "Push", Date: "2024-07-09", Completed: true,
			Exercises: []models.Exercise{{
				ID: models.ID(11), WorkoutID: 1, Name: "Bench Press", MuscleGroup: "Chest",
				Sets: []models.ExerciseSet{
					{ID: models.ID(111), ExerciseID: 11, Value: 10, Weight: 100, Completed: true},
					{ID: models.ID(112), ExerciseID: 11, Value: 8, Weight: 110, Completed: true},
				},
			}},
		},
		{
			ID: models.ID(2), UserID: 1, Name: "Pull", Date: "2024-07-10", Completed: true,
			Exercises: []models.Exercise{{
				ID: models.ID(21), WorkoutID: 2, Name: "Barbell Row", MuscleGroup: "Back",
				Sets: []models.ExerciseSet{
					{ID: models.ID(211), ExerciseID: 21, Value: 10, Weight: 80, Completed: true},
				},
			}},
		},
		{ID: models.ID(3), UserID: 1, Name: "Legs", Date: "2024-06-20"},
	}
}

// backend answers auth and writes; period and analytics routes are down so
// reads fall back to the cached list.
type backend struct {
	mu       sync.Mutex
	workouts []models.Workout
	nextID   int64
}

func (b *backend) handler() http.Handler {
	mux := http.NewServeMux()
	writeJSON := func(w http.ResponseWriter, status int, v any) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(v)
	}
	nextID := func() *int64 {
		b.nextID++
		return models.ID(b.nextID)
	}
	handle := func(pattern string, fn http.HandlerFunc) {
		mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
			b.mu.Lock()
			defer b.mu.Unlock()
			fn(w, r)
		})
	}

	handle("POST "+api.PathLogin, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, models.LoginResponse{
			Token:     "tok",
			ExpiresIn: 3600000,
			UserData:  models.User{ID: 1, Name: "Jet", Email: "jet@example.com"},
			Workouts:  b.workouts,
		})
	})
	handle("GET /api/workout/userWorkouts/{userId}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, b.workouts)
	})
	handle("GET /api/workout/userWorkouts/{userId}/{period}", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Service Unavailable", http.StatusServiceUnavailable)
	})
	handle("POST "+api.PathWorkoutCreate, func(w http.ResponseWriter, r *http.Request) {
		var wk models.Workout
		_ = json.NewDecoder(r.Body).Decode(&wk)
		wk.ID = nextID()
		writeJSON(w, http.StatusCreated, models.WorkoutCreated{NewWorkout: wk})
	})
	handle("PUT "+api.PathWorkoutUpdate, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "Workout Updated")
	})
	handle("DELETE "+api.PathWorkoutDelete, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "Workout Deleted")
	})
	handle("POST "+api.PathExerciseCreate, func(w http.ResponseWriter, r *http.Request) {
		var body models.ExerciseCreate
		_ = json.NewDecoder(r.Body).Decode(&body)
		ex := body.Exercise
		ex.ID = nextID()
		writeJSON(w, http.StatusCreated, models.ExerciseCreated{NewExercise: ex})
	})
	handle("POST "+api.PathSetCreate, func(w http.ResponseWriter, r *http.Request) {
		var body models.ExerciseSetCreate
		_ = json.NewDecoder(r.Body).Decode(&body)
		set := body.Set
		set.ID = nextID()
		writeJSON(w, http.StatusCreated, set)
	})
	handle("GET /api/analytics/{resource}/{userId}", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Service Unavailable", http.StatusServiceUnavailable)
	})
	return mux
}

type testEnv struct {
	server *Server
	svc    *service.Services
	cache  *cache.Cache
}

// setupServer wires a server over a fresh backend. When login is set the
// session and the seeded workouts are cached.
func setupServer(t *testing.T, login bool) *testEnv {
	t.Helper()

	b := &backend{workouts: seedWorkouts(), nextID: 100}
	srv := httptest.NewServer(b.handler())
	t.Cleanup(srv.Close)

	m := metrics.NewTestManager()
	client, err := api.New(srv.URL, api.WithHTTPClient(srv.Client()), api.WithMetrics(m))
	if err != nil {
		t.Fatalf("api.New failed: %v", err)
	}
	store, err := cache.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory failed: %v", err)
	}
	c := cache.New(store, cache.WithMetrics(m))
	t.Cleanup(func() { _ = c.Close() })

	svc := service.New(service.Options{
		API:      client,
		Cache:    c,
		Metrics:  m,
		Location: time.UTC,
		Now:      func() time.Time { return testNow },
	})
	if login {
		if _, err := svc.Auth.Login(context.Background(), "jet@example.com", "pw"); err != nil {
			t.Fatalf("Login failed: %v", err)
		}
	}

	server, err := NewServer(svc, c, m)
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}
	return &testEnv{server: server, svc: svc, cache: c}
}

func TestNewServer(t *testing.T) {
	env := setupServer(t, false)

	if env.server.mcpServer == nil {
		t.Error("Expected non-nil mcpServer")
	}
	if env.server.svc == nil || env.server.cache == nil {
		t.Error("Expected services and cache to be set")
	}

	if _, err := NewServer(nil, env.cache, nil); err == nil {
		t.Error("Expected error for nil services")
	}
}

func TestToolsRequireLogin(t *testing.T) {
	env := setupServer(t, false)
	ctx := context.Background()

	_, _, err := env.server.handleListWorkouts(ctx, &mcp.CallToolRequest{}, listWorkoutsInput{})
	if !errors.Is(err, service.ErrNotLoggedIn) {
		t.Errorf("Expected ErrNotLoggedIn, got %v", err)
	}

	_, err = env.server.handleStreakResource(ctx, &mcp.ReadResourceRequest{})
	if !errors.Is(err, service.ErrNotLoggedIn) {
		t.Errorf("Expected ErrNotLoggedIn from resource, got %v", err)
	}
}

func TestHandleListWorkouts(t *testing.T) {
	env := setupServer(t, true)
	ctx := context.Background()

	tests := []struct {
		name      string
		input     listWorkoutsInput
		wantCount int
		wantFirst string
	}{
		{name: "all", input: listWorkoutsInput{}, wantCount: 3, wantFirst: "Pull"},
		{name: "limit", input: listWorkoutsInput{Limit: 1}, wantCount: 1, wantFirst: "Pull"},
		{name: "week from cache", input: listWorkoutsInput{Period: "week"}, wantCount: 2, wantFirst: "Pull"},
		{name: "month from cache", input: listWorkoutsInput{Period: "MONTH"}, wantCount: 2, wantFirst: "Pull"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, output, err := env.server.handleListWorkouts(ctx, &mcp.CallToolRequest{}, tt.input)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			workouts, ok := output.([]models.Workout)
			if !ok {
				t.Fatalf("Expected []models.Workout, got %T", output)
			}
			if len(workouts) != tt.wantCount {
				t.Errorf("Count = %d, want %d", len(workouts), tt.wantCount)
			}
			if workouts[0].Name != tt.wantFirst {
				t.Errorf("First = %s, want %s", workouts[0].Name, tt.wantFirst)
			}
		})
	}
}

func TestHandleListWorkoutsInvalidPeriod(t *testing.T) {
	env := setupServer(t, true)

	_, _, err := env.server.handleListWorkouts(context.Background(), &mcp.CallToolRequest{}, listWorkoutsInput{Period: "fortnight"})
	if err == nil || !strings.Contains(err.Error(), "unknown period") {
		t.Errorf("Expected unknown period error, got %v", err)
	}
}

func TestHandleGetWorkout(t *testing.T) {
	env := setupServer(t, true)
	ctx := context.Background()

	_, output, err := env.server.handleGetWorkout(ctx, &mcp.CallToolRequest{}, workoutIDInput{ID: 1})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	w, ok := output.(*models.Workout)
	if !ok {
		t.Fatalf("Expected *models.Workout, got %T", output)
	}
	if w.Name != "Push" || len(w.Exercises) != 1 || len(w.Exercises[0].Sets) != 2 {
		t.Errorf("Unexpected workout: %+v", w)
	}

	_, _, err = env.server.handleGetWorkout(ctx, &mcp.CallToolRequest{}, workoutIDInput{ID: 99})
	if !errors.Is(err, service.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestHandleCreateWorkout(t *testing.T) {
	env := setupServer(t, true)
	ctx := context.Background()

	tests := []struct {
		name      string
		input     createWorkoutInput
		wantDate  string
		wantErr   bool
		errSubstr string
	}{
		{
			name:     "defaults to today",
			input:    createWorkoutInput{Name: "Arms"},
			wantDate: "2024-07-10",
		},
		{
			name:     "explicit date and fields",
			input:    createWorkoutInput{Name: "Run", Date: "2024-07-11", Notes: "easy", Duration: 30},
			wantDate: "2024-07-11",
		},
		{
			name:      "invalid date",
			input:     createWorkoutInput{Name: "Run", Date: "11/07/2024"},
			wantErr:   true,
			errSubstr: "unrecognized date",
		},
		{
			name:      "missing name",
			input:     createWorkoutInput{Name: "  "},
			wantErr:   true,
			errSubstr: "name is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, output, err := env.server.handleCreateWorkout(ctx, &mcp.CallToolRequest{}, tt.input)
			if tt.wantErr {
				if err == nil {
					t.Error("Expected error, got nil")
				} else if !strings.Contains(err.Error(), tt.errSubstr) {
					t.Errorf("Error %q should contain %q", err.Error(), tt.errSubstr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if output.ID == 0 {
				t.Error("Expected server-assigned ID")
			}
			if output.Date != tt.wantDate {
				t.Errorf("Date = %s, want %s", output.Date, tt.wantDate)
			}
			if output.Message == "" {
				t.Error("Expected non-empty Message")
			}
		})
	}

	_, listed, err := env.server.handleListWorkouts(ctx, &mcp.CallToolRequest{}, listWorkoutsInput{})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if n := len(listed.([]models.Workout)); n != 5 {
		t.Errorf("Expected created workouts in the cached list, got %d workouts", n)
	}
}

func TestHandleCompleteWorkout(t *testing.T) {
	env := setupServer(t, true)

	_, output, err := env.server.handleCompleteWorkout(context.Background(), &mcp.CallToolRequest{}, workoutIDInput{ID: 3})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !output.Completed || output.Name != "Legs" {
		t.Errorf("Unexpected output: %+v", output)
	}
}

func TestHandleDeleteWorkout(t *testing.T) {
	env := setupServer(t, true)
	ctx := context.Background()

	_, output, err := env.server.handleDeleteWorkout(ctx, &mcp.CallToolRequest{}, workoutIDInput{ID: 2})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !strings.Contains(output.Message, "Deleted workout: 2") {
		t.Errorf("Unexpected message: %s", output.Message)
	}

	_, _, err = env.server.handleGetWorkout(ctx, &mcp.CallToolRequest{}, workoutIDInput{ID: 2})
	if !errors.Is(err, service.ErrNotFound) {
		t.Errorf("Expected deleted workout to be gone, got %v", err)
	}
}

func TestHandleAddExerciseAndSet(t *testing.T) {
	env := setupServer(t, true)
	ctx := context.Background()

	_, ex, err := env.server.handleAddExercise(ctx, &mcp.CallToolRequest{}, addExerciseInput{
		WorkoutID:   1,
		Name:        "Plank",
		MuscleGroup: "Core",
		TimeBased:   true,
	})
	if err != nil {
		t.Fatalf("handleAddExercise failed: %v", err)
	}
	if ex.ID == 0 || ex.WorkoutID != 1 {
		t.Errorf("Unexpected exercise output: %+v", ex)
	}

	_, set, err := env.server.handleAddSet(ctx, &mcp.CallToolRequest{}, addSetInput{
		ExerciseID: ex.ID,
		Value:      60,
		TimeBased:  true,
		Completed:  true,
	})
	if err != nil {
		t.Fatalf("handleAddSet failed: %v", err)
	}
	if set.ExerciseID != ex.ID || !strings.Contains(set.Message, "60 s") {
		t.Errorf("Unexpected set output: %+v", set)
	}

	_, output, err := env.server.handleGetWorkout(ctx, &mcp.CallToolRequest{}, workoutIDInput{ID: 1})
	if err != nil {
		t.Fatalf("handleGetWorkout failed: %v", err)
	}
	w := output.(*models.Workout)
	if len(w.Exercises) != 2 || len(w.Exercises[1].Sets) != 1 {
		t.Errorf("Expected new exercise and set in cached workout, got %+v", w.Exercises)
	}
}

func TestHandleAddSetValidation(t *testing.T) {
	env := setupServer(t, true)

	_, _, err := env.server.handleAddSet(context.Background(), &mcp.CallToolRequest{}, addSetInput{ExerciseID: 11, Value: -1})
	if err == nil {
		t.Error("Expected error for negative value")
	}
	_, _, err = env.server.handleAddExercise(context.Background(), &mcp.CallToolRequest{}, addExerciseInput{Name: "Squat"})
	if err == nil {
		t.Error("Expected error for missing workout id")
	}
}

func TestHandleGetStreak(t *testing.T) {
	env := setupServer(t, true)
	ctx := context.Background()

	_, output, err := env.server.handleGetStreak(ctx, &mcp.CallToolRequest{}, emptyInput{})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if output.CurrentStreak != 2 {
		t.Errorf("CurrentStreak = %d, want 2", output.CurrentStreak)
	}
	if len(output.CompletedWeekdays) != 2 || output.CompletedWeekdays[0] != 1 || output.CompletedWeekdays[1] != 2 {
		t.Errorf("CompletedWeekdays = %v, want [1 2]", output.CompletedWeekdays)
	}

	// With the list evicted the streak refetches it.
	if err := env.cache.RemoveItem(service.WorkoutsKey(1)); err != nil {
		t.Fatalf("RemoveItem failed: %v", err)
	}
	_, output, err = env.server.handleGetStreak(ctx, &mcp.CallToolRequest{}, emptyInput{})
	if err != nil {
		t.Fatalf("Unexpected error after eviction: %v", err)
	}
	if output.CurrentStreak != 2 {
		t.Errorf("CurrentStreak after refetch = %d, want 2", output.CurrentStreak)
	}
}

func TestHandleGetAnalytics(t *testing.T) {
	env := setupServer(t, true)
	ctx := context.Background()

	tests := []struct {
		name  string
		input getAnalyticsInput
		check func(t *testing.T, out any)
	}{
		{
			name:  "daily",
			input: getAnalyticsInput{View: "daily"},
			check: func(t *testing.T, out any) {
				daily, ok := out.([]int)
				if !ok || len(daily) != 7 || daily[1] != 1 || daily[2] != 1 {
					t.Errorf("Unexpected daily counts: %v", out)
				}
			},
		},
		{
			name:  "muscle volume",
			input: getAnalyticsInput{View: "muscle_volume"},
			check: func(t *testing.T, out any) {
				mv, ok := out.(models.MuscleVolume)
				if !ok || mv.MuscleVolumes["Chest"] != 1880 || mv.MuscleVolumes["Back"] != 800 {
					t.Errorf("Unexpected muscle volume: %+v", out)
				}
			},
		},
		{
			name:  "consistency",
			input: getAnalyticsInput{View: "consistency", WeeksBack: 4},
			check: func(t *testing.T, out any) {
				ci, ok := out.(models.ConsistencyInsight)
				if !ok || len(ci.WeeklyFrequency) != 4 || ci.StreakDays != 2 {
					t.Errorf("Unexpected consistency: %+v", out)
				}
			},
		},
		{
			name:  "dashboard by default",
			input: getAnalyticsInput{Refresh: true},
			check: func(t *testing.T, out any) {
				d, ok := out.(*models.Dashboard)
				if !ok || len(d.PersonalRecords) == 0 {
					t.Errorf("Unexpected dashboard: %+v", out)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, output, err := env.server.handleGetAnalytics(ctx, &mcp.CallToolRequest{}, tt.input)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			tt.check(t, output)
		})
	}

	_, _, err := env.server.handleGetAnalytics(ctx, &mcp.CallToolRequest{}, getAnalyticsInput{View: "heatmap"})
	if err == nil || !strings.Contains(err.Error(), "unknown analytics view") {
		t.Errorf("Expected unknown view error, got %v", err)
	}
}

func TestHandleFilterWorkouts(t *testing.T) {
	env := setupServer(t, true)
	ctx := context.Background()

	_, output, err := env.server.handleFilterWorkouts(ctx, &mcp.CallToolRequest{}, filterWorkoutsInput{Filter: "2024-07"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if workouts, ok := output.([]models.Workout); !ok || len(workouts) != 2 {
		t.Errorf("Expected 2 workouts in July, got %v", output)
	}

	_, output, err = env.server.handleFilterWorkouts(ctx, &mcp.CallToolRequest{}, filterWorkoutsInput{Filter: "2023"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if m, ok := output.(map[string]any); !ok || m["message"] == nil {
		t.Errorf("Expected message for empty result, got %v", output)
	}

	if _, _, err := env.server.handleFilterWorkouts(ctx, &mcp.CallToolRequest{}, filterWorkoutsInput{Filter: "July"}); err == nil {
		t.Error("Expected error for invalid filter")
	}
}

func TestHandleCacheStats(t *testing.T) {
	env := setupServer(t, true)

	_, output, err := env.server.handleCacheStats(context.Background(), &mcp.CallToolRequest{}, emptyInput{})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	// token, userData and the workout list
	if output.Entries != 3 {
		t.Errorf("Entries = %d, want 3", output.Entries)
	}
	if output.Bytes == 0 {
		t.Error("Expected non-zero Bytes")
	}
	if output.Metrics["jetgym_client_api_requests_total"] < 1 {
		t.Errorf("Expected the login request to be counted, got %v", output.Metrics)
	}
}

func readResource(t *testing.T, result *mcp.ReadResourceResult, uri string) map[string]any {
	t.Helper()
	if len(result.Contents) != 1 {
		t.Fatalf("Expected 1 content, got %d", len(result.Contents))
	}
	if result.Contents[0].URI != uri {
		t.Errorf("URI = %s, want %s", result.Contents[0].URI, uri)
	}
	if result.Contents[0].MIMEType != "application/json" {
		t.Errorf("MIMEType = %s, want application/json", result.Contents[0].MIMEType)
	}
	var data map[string]any
	if err := json.Unmarshal([]byte(result.Contents[0].Text), &data); err != nil {
		t.Fatalf("Invalid JSON: %v", err)
	}
	return data
}

func TestHandleRecentResource(t *testing.T) {
	env := setupServer(t, true)

	result, err := env.server.handleRecentResource(context.Background(), &mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	data := readResource(t, result, uriRecent)
	if data["count"] != float64(3) {
		t.Errorf("count = %v, want 3", data["count"])
	}
}

func TestHandleStreakResource(t *testing.T) {
	env := setupServer(t, true)

	result, err := env.server.handleStreakResource(context.Background(), &mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	data := readResource(t, result, uriStreak)
	if data["currentStreak"] != float64(2) {
		t.Errorf("currentStreak = %v, want 2", data["currentStreak"])
	}
}

func TestHandleSummaryResource(t *testing.T) {
	env := setupServer(t, true)

	result, err := env.server.handleSummaryResource(context.Background(), &mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	data := readResource(t, result, uriSummary)

	if data["totalWorkouts"] != float64(3) {
		t.Errorf("totalWorkouts = %v, want 3", data["totalWorkouts"])
	}
	if data["workoutsThisWeek"] != float64(2) {
		t.Errorf("workoutsThisWeek = %v, want 2", data["workoutsThisWeek"])
	}
	last, ok := data["lastWorkout"].(map[string]any)
	if !ok || last["name"] != "Pull" {
		t.Errorf("lastWorkout = %v, want Pull", data["lastWorkout"])
	}
	if _, ok := data["consistency"]; !ok {
		t.Error("Expected locally computed consistency")
	}
}
