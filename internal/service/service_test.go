package service

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/harperreed/jetgym/internal/api"
	"github.com/harperreed/jetgym/internal/cache"
	"github.com/harperreed/jetgym/internal/metrics"
	"github.com/harperreed/jetgym/internal/models"
)

const testUserID int64 = 1

// testNow is a Wednesday.
var testNow = time.Date(2024, 7, 10, 20, 0, 0, 0, time.UTC)

// fakeBackend is an in-memory stand-in for the fitness API.
type fakeBackend struct {
	mu       sync.Mutex
	workouts []models.Workout
	nextID   int64
	hits     map[string]int
	lastAuth string

	// down makes every route except auth answer 503.
	down bool
	// analytics holds canned analytics responses by resource name.
	analytics map[string]any
	// analyticsStatus, when set, is returned by every analytics route.
	analyticsStatus int
}

func newFakeBackend(workouts ...models.Workout) *fakeBackend {
	return &fakeBackend{
		workouts:  workouts,
		nextID:    100,
		hits:      make(map[string]int),
		analytics: make(map[string]any),
	}
}

func (f *fakeBackend) Hits(route string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hits[route]
}

func (f *fakeBackend) SetDown(down bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.down = down
}

func (f *fakeBackend) SetAnalytics(resource string, v any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.analytics[resource] = v
}

func (f *fakeBackend) SetAnalyticsStatus(status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.analyticsStatus = status
}

func (f *fakeBackend) id() *int64 {
	f.nextID++
	return models.ID(f.nextID)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (f *fakeBackend) handler() http.Handler {
	mux := http.NewServeMux()

	route := func(pattern string, fn func(w http.ResponseWriter, r *http.Request)) {
		mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
			f.mu.Lock()
			defer f.mu.Unlock()
			f.hits[pattern]++
			f.lastAuth = r.Header.Get("Authorization")
			if f.down && r.URL.Path != api.PathLogin {
				http.Error(w, "Service Unavailable", http.StatusServiceUnavailable)
				return
			}
			fn(w, r)
		})
	}

	route("POST "+api.PathLogin, func(w http.ResponseWriter, r *http.Request) {
		var req models.LoginRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Password != "hunter2" {
			writeJSON(w, http.StatusUnauthorized, models.APIMessage{Message: "Invalid credentials", Status: 401})
			return
		}
		writeJSON(w, http.StatusOK, models.LoginResponse{
			Token:     "tok-1",
			ExpiresIn: 3600000,
			UserData:  models.User{ID: testUserID, Name: "Jet", Email: req.Email},
			Workouts:  f.workouts,
		})
	})
	route("POST "+api.PathRegister, func(w http.ResponseWriter, r *http.Request) {
		var u models.User
		_ = json.NewDecoder(r.Body).Decode(&u)
		if u.Email == "taken@example.com" {
			writeJSON(w, http.StatusConflict, models.APIMessage{Message: "Email already in use", Status: 409})
			return
		}
		writeJSON(w, http.StatusCreated, models.APIMessage{Message: "User registered successfully", Status: 201})
	})
	route("POST "+api.PathLogout, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "Logged out")
	})

	route("GET /api/workout/userWorkouts/{userId}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, f.workouts)
	})
	route("GET /api/workout/userWorkouts/{userId}/{period}", func(w http.ResponseWriter, r *http.Request) {
		var out []models.Workout
		for _, wk := range f.workouts {
			if r.PathValue("period") == "day" && wk.Date == testNow.Format(models.DateLayout) {
				out = append(out, wk)
			}
		}
		writeJSON(w, http.StatusOK, out)
	})
	route("POST "+api.PathWorkoutCreate, func(w http.ResponseWriter, r *http.Request) {
		var wk models.Workout
		_ = json.NewDecoder(r.Body).Decode(&wk)
		wk.ID = f.id()
		f.workouts = append(f.workouts, wk)
		writeJSON(w, http.StatusCreated, models.WorkoutCreated{NewWorkout: wk})
	})
	route("PUT "+api.PathWorkoutUpdate, func(w http.ResponseWriter, r *http.Request) {
		var body models.WorkoutUpdate
		_ = json.NewDecoder(r.Body).Decode(&body)
		if models.FindWorkout(f.workouts, body.WorkoutID) == nil {
			http.Error(w, "Workout not found", http.StatusNotFound)
			return
		}
		_, _ = io.WriteString(w, "Workout Updated")
	})
	route("DELETE "+api.PathWorkoutDelete, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "Workout Deleted")
	})

	route("POST "+api.PathExerciseCreate, func(w http.ResponseWriter, r *http.Request) {
		var body models.ExerciseCreate
		_ = json.NewDecoder(r.Body).Decode(&body)
		ex := body.Exercise
		ex.ID = f.id()
		writeJSON(w, http.StatusCreated, models.ExerciseCreated{NewExercise: ex})
	})
	route("PUT "+api.PathExerciseUpdate, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "Exercise Updated")
	})
	route("DELETE "+api.PathExerciseDelete, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "Exercise Deleted")
	})
	route("GET "+api.PathExerciseSuggestions, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []models.ExerciseSuggestion{
			{Name: "Bench Press", CanonicalName: "bench_press"},
		})
	})
	route("GET /api/exercise/workoutExercises/{workoutId}", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("userId") == "" {
			http.Error(w, "missing userId", http.StatusBadRequest)
			return
		}
		id, _ := strconv.ParseInt(r.PathValue("workoutId"), 10, 64)
		if wk := models.FindWorkout(f.workouts, id); wk != nil {
			writeJSON(w, http.StatusOK, wk.Exercises)
			return
		}
		writeJSON(w, http.StatusOK, []models.Exercise{})
	})

	route("POST "+api.PathSetCreate, func(w http.ResponseWriter, r *http.Request) {
		var body models.ExerciseSetCreate
		_ = json.NewDecoder(r.Body).Decode(&body)
		set := body.Set
		set.ID = f.id()
		writeJSON(w, http.StatusCreated, set)
	})
	route("PUT "+api.PathSetUpdate, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "Exercise Updated")
	})
	route("DELETE "+api.PathSetDelete, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "Set Deleted Successfully")
	})
	route("GET /api/sets/exerciseSets/{exerciseId}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []models.ExerciseSet{{ID: models.ID(1), Value: 5}})
	})

	route("GET /api/analytics/{resource}/{userId}", func(w http.ResponseWriter, r *http.Request) {
		if f.analyticsStatus != 0 {
			http.Error(w, http.StatusText(f.analyticsStatus), f.analyticsStatus)
			return
		}
		v, ok := f.analytics[r.PathValue("resource")]
		if !ok {
			http.Error(w, "no canned response", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, v)
	})

	return mux
}

type testEnv struct {
	svc     *Services
	backend *fakeBackend
	cache   *cache.Cache
	metrics *metrics.Manager
}

func newTestEnv(t *testing.T, workouts ...models.Workout) *testEnv {
	t.Helper()
	backend := newFakeBackend(workouts...)
	srv := httptest.NewServer(backend.handler())
	t.Cleanup(srv.Close)

	m := metrics.NewTestManager()
	client, err := api.New(srv.URL, api.WithHTTPClient(srv.Client()), api.WithMetrics(m))
	require.NoError(t, err)

	store, err := cache.OpenMemory()
	require.NoError(t, err)
	c := cache.New(store, cache.WithMetrics(m))
	t.Cleanup(func() { _ = c.Close() })

	svc := New(Options{
		API:      client,
		Cache:    c,
		Metrics:  m,
		Location: time.UTC,
		Now:      func() time.Time { return testNow },
	})
	return &testEnv{svc: svc, backend: backend, cache: c, metrics: m}
}

// seedWorkouts puts workouts in the cache as if the user had listed them.
func (e *testEnv) seedWorkouts(t *testing.T, workouts []models.Workout) {
	t.Helper()
	require.NoError(t, e.cache.SetItem(WorkoutsKey(testUserID), workouts, 0))
}

func sampleWorkouts() []models.Workout {
	return []models.Workout{
		{
			ID: models.ID(1), UserID: testUserID, Name: "Push", Date: "2024-07-09", Completed: true,
			Exercises: []models.Exercise{{
				ID: models.ID(11), WorkoutID: 1, Name: "Bench Press", MuscleGroup: "Chest",
				Sets: []models.ExerciseSet{
					{ID: models.ID(111), ExerciseID: 11, Value: 10, Weight: 100, Completed: true},
					{ID: models.ID(112), ExerciseID: 11, Value: 8, Weight: 110, Completed: true},
				},
			}},
		},
		{
			ID: models.ID(2), UserID: testUserID, Name: "Pull", Date: "2024-07-10", Completed: true,
			Exercises: []models.Exercise{{
				ID: models.ID(21), WorkoutID: 2, Name: "Barbell Row", MuscleGroup: "Back",
				Sets: []models.ExerciseSet{
					{ID: models.ID(211), ExerciseID: 21, Value: 10, Weight: 80, Completed: true},
				},
			}},
		},
		{ID: models.ID(3), UserID: testUserID, Name: "Legs", Date: "2024-06-20"},
	}
}
