// ABOUTME: Output and argument helpers shared by the CLI commands.
// ABOUTME: ID parsing, padding, confirmation prompts and JSON printing.
package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"github.com/harperreed/jetgym/internal/models"
)

var weekdayNames = []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

var (
	faint   = color.New(color.Faint)
	success = color.New(color.FgGreen)
	warning = color.New(color.FgYellow)
)

func parseID(s, what string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s id: %s", what, s)
	}
	return id, nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

func padRight(s string, length int) string {
	if len(s) >= length {
		return s
	}
	return s + strings.Repeat(" ", length-len(s))
}

// confirm asks a yes/no question and reads the answer from in.
func confirm(in io.Reader, out io.Writer, prompt string) bool {
	fmt.Fprintf(out, "%s [y/N]: ", prompt)
	answer, _ := bufio.NewReader(in).ReadString('\n')
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}

func printJSON(out io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, string(data))
	return err
}

// setValue renders a set's value as reps or seconds.
func setValue(set models.ExerciseSet) string {
	if set.IsTimeBased {
		return fmt.Sprintf("%ds", set.Value)
	}
	return fmt.Sprintf("%d reps", set.Value)
}

func checkMark(done bool) string {
	if done {
		return "✓"
	}
	return "·"
}

func printWorkoutLine(out io.Writer, w models.Workout) {
	duration := ""
	if w.Duration > 0 {
		duration = fmt.Sprintf("%d min", w.Duration)
	}
	fmt.Fprintf(out, "%s %s %s %s %s\n",
		faint.Sprint(padRight(strconv.FormatInt(w.IDValue(), 10), 6)),
		faint.Sprint(w.Date),
		checkMark(w.Completed),
		padRight(truncate(w.Name, 24), 24),
		duration)
}

func printWorkout(out io.Writer, w *models.Workout) {
	fmt.Fprintf(out, "Workout: %d\n", w.IDValue())
	fmt.Fprintf(out, "Name: %s\n", w.Name)
	fmt.Fprintf(out, "Date: %s\n", w.Date)
	if w.Duration > 0 {
		fmt.Fprintf(out, "Duration: %d min\n", w.Duration)
	}
	fmt.Fprintf(out, "Completed: %t\n", w.Completed)
	if w.Notes != "" {
		fmt.Fprintf(out, "Notes: %s\n", w.Notes)
	}

	if len(w.Exercises) == 0 {
		return
	}
	fmt.Fprintln(out, "\nExercises:")
	for _, ex := range w.Exercises {
		group := ""
		if ex.MuscleGroup != "" {
			group = faint.Sprintf(" (%s)", ex.MuscleGroup)
		}
		fmt.Fprintf(out, "  %s %s%s\n", faint.Sprint(ex.IDValue()), ex.Name, group)
		for i, set := range ex.Sets {
			fmt.Fprintf(out, "    %s %d. %s @ %.1f %s\n",
				faint.Sprint(set.IDValue()), i+1, setValue(set), set.Weight, checkMark(set.Completed))
		}
	}
}
