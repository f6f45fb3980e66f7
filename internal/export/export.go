// ABOUTME: Export of cached workouts as JSON, YAML or Markdown.
// ABOUTME: Optional since-date and period filters select which workouts are written.
package export

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/harperreed/jetgym/internal/analytics"
	"github.com/harperreed/jetgym/internal/calendar"
	"github.com/harperreed/jetgym/internal/models"
)

// Version of the export envelope.
const Version = "1.0"

// Formats lists the supported output formats.
var Formats = []string{"json", "yaml", "markdown"}

// ExportData is the envelope written by every format.
type ExportData struct {
	Version    string           `json:"version" yaml:"version"`
	ExportedAt time.Time        `json:"exported_at" yaml:"exported_at"`
	Tool       string           `json:"tool" yaml:"tool"`
	User       *models.User     `json:"user,omitempty" yaml:"user,omitempty"`
	Workouts   []models.Workout `json:"workouts" yaml:"workouts"`
}

// Options narrows the export. Zero values select everything.
type Options struct {
	Since  *time.Time
	Period calendar.Period
	Now    time.Time
	Loc    *time.Location
}

// Build filters and orders workouts (newest first) into an envelope.
func Build(user *models.User, workouts []models.Workout, opts Options) *ExportData {
	if opts.Loc == nil {
		opts.Loc = time.Local
	}
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}

	selected := workouts
	if opts.Period != "" {
		selected = analytics.InRange(selected, opts.Period.Range(opts.Now, opts.Loc), opts.Loc)
	}
	if opts.Since != nil {
		since := calendar.StartOfDay(*opts.Since, opts.Loc)
		selected = analytics.Select(selected, opts.Loc, func(day time.Time) bool {
			return !day.Before(since)
		})
	}
	selected = append([]models.Workout{}, selected...)
	analytics.SortByDate(selected, opts.Loc)

	var u *models.User
	if user != nil {
		c := *user
		c.Password = ""
		u = &c
	}

	return &ExportData{
		Version:    Version,
		ExportedAt: opts.Now,
		Tool:       "jetgym",
		User:       u,
		Workouts:   selected,
	}
}

// JSON renders data as indented JSON.
func JSON(data *ExportData) ([]byte, error) {
	return json.MarshalIndent(data, "", "  ")
}

// YAML renders data as YAML.
func YAML(data *ExportData) ([]byte, error) {
	return yaml.Marshal(data)
}

// ParseJSON reads an envelope written by JSON.
func ParseJSON(b []byte) (*ExportData, error) {
	var data ExportData
	if err := json.Unmarshal(b, &data); err != nil {
		return nil, fmt.Errorf("unmarshal JSON: %w", err)
	}
	if data.Version != Version {
		return nil, fmt.Errorf("unsupported export version %q", data.Version)
	}
	return &data, nil
}

// Markdown renders a workout table followed by one section per workout
// listing its exercises and sets.
func Markdown(data *ExportData) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# Jetgym Export - %s\n\n", data.ExportedAt.Format("2006-01-02")))
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", data.ExportedAt.Format(time.RFC3339)))
	if data.User != nil {
		sb.WriteString(fmt.Sprintf("User: %s <%s>\n\n", data.User.Name, data.User.Email))
	}

	if len(data.Workouts) == 0 {
		sb.WriteString("No workouts.\n")
		return sb.String()
	}

	sb.WriteString("## Workouts\n\n")
	sb.WriteString("| Date | Name | Duration | Sets | Volume | Completed |\n")
	sb.WriteString("|------|------|----------|------|--------|-----------|\n")
	for _, w := range data.Workouts {
		duration := ""
		if w.Duration > 0 {
			duration = fmt.Sprintf("%d min", w.Duration)
		}
		sb.WriteString(fmt.Sprintf("| %s | %s | %s | %d | %.0f | %s |\n",
			w.Date, escapeCell(w.Name), duration, w.TotalSets(),
			analytics.WorkoutVolume(w), yesNo(w.Completed)))
	}

	for _, w := range data.Workouts {
		if len(w.Exercises) == 0 {
			continue
		}
		sb.WriteString(fmt.Sprintf("\n### %s (%s)\n\n", w.Name, w.Date))
		if w.Notes != "" {
			sb.WriteString(w.Notes + "\n\n")
		}
		sb.WriteString("| Exercise | Muscle Group | Set | Value | Weight | Done |\n")
		sb.WriteString("|----------|--------------|-----|-------|--------|------|\n")
		for _, ex := range w.Exercises {
			if len(ex.Sets) == 0 {
				sb.WriteString(fmt.Sprintf("| %s | %s | - | - | - | - |\n", escapeCell(ex.Name), escapeCell(ex.MuscleGroup)))
				continue
			}
			for i, set := range ex.Sets {
				value := fmt.Sprintf("%d reps", set.Value)
				if set.IsTimeBased || ex.IsTimeBased {
					value = fmt.Sprintf("%ds", set.Value)
				}
				sb.WriteString(fmt.Sprintf("| %s | %s | %d | %s | %.1f | %s |\n",
					escapeCell(ex.Name), escapeCell(ex.MuscleGroup), i+1, value, set.Weight, yesNo(set.Completed)))
			}
		}
	}

	return sb.String()
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
