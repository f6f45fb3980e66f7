// ABOUTME: Analytics DTOs returned by the analytics endpoints.
// ABOUTME: Also produced locally when the server is unreachable.
package models

// WorkoutsPerWeek maps ISO week-of-year to the number of workouts.
type WorkoutsPerWeek map[int]int

// ConsistencyInsight summarizes training regularity.
type ConsistencyInsight struct {
	Title            string `json:"title"`
	Summary          string `json:"summary"`
	Percentile       int    `json:"percentile"`
	StreakDays       int    `json:"streakDays"`
	PatternFindings  string `json:"patternFindings"`
	Recommendation   string `json:"recommendation"`
	WeeklyFrequency  []int  `json:"weeklyFrequency"`
	DailyWorkouts    []int  `json:"dailyWorkouts"`
	ConsistencyScore int    `json:"consistencyScore"`
}

// PersonalRecord is the best completed set for an exercise name.
type PersonalRecord struct {
	Exercise string  `json:"exercise"`
	Weight   float64 `json:"weight"`
	Reps     int     `json:"reps"`
	Date     string  `json:"date"`
	IsNewPR  bool    `json:"isNewPR"`
}

// WeeklyVolume is the total lifted volume of one Monday-Sunday week.
type WeeklyVolume struct {
	Week                   string  `json:"week"`
	Volume                 float64 `json:"volume"`
	ChangeFromPreviousWeek float64 `json:"changeFromPreviousWeek"`
}

// MuscleVolume breaks recent volume down by muscle group.
type MuscleVolume struct {
	MuscleVolumes map[string]float64 `json:"muscleVolumes"`
	TotalVolume   float64            `json:"totalVolume"`
}

// Streak is the current run of training days plus this week's completed
// weekdays, Monday = 0.
type Streak struct {
	CurrentStreak     int   `json:"currentStreak"`
	CompletedWeekdays []int `json:"completedWeekdays"`
}

// Dashboard bundles every analytics view for one user.
type Dashboard struct {
	WorkoutsPerWeek    WorkoutsPerWeek    `json:"workoutsPerWeek"`
	ConsistencyInsight ConsistencyInsight `json:"consistencyInsight"`
	DailyWorkouts      []int              `json:"dailyWorkouts"`
	PersonalRecords    []PersonalRecord   `json:"personalRecords"`
	WeeklyVolume       []WeeklyVolume     `json:"weeklyVolume"`
	MuscleVolume       MuscleVolume       `json:"muscleVolume"`
}
