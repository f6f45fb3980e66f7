// ABOUTME: CLI commands for managing workouts.
// ABOUTME: Supports list, show, add, update, complete, delete, refresh and last subcommands.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harperreed/jetgym/internal/calendar"
	"github.com/harperreed/jetgym/internal/models"
)

var (
	workoutDuration int
	workoutNotes    string
	workoutDate     string
	workoutName     string
	workoutPeriod   string
	workoutFilter   string
	workoutLimit    int
)

var workoutCmd = &cobra.Command{
	Use:     "workout",
	Aliases: []string{"w"},
	Short:   "Manage workouts",
	Long: `Track workout sessions. Each workout holds exercises, and each exercise
holds sets.

WORKFLOW:

  1. Create a workout:     jetgym workout add "Push Day" --duration 60
  2. Add an exercise:      jetgym exercise add <workout-id> "Bench Press" -m Chest
  3. Log sets:             jetgym set add <exercise-id> 10 --weight 80 --completed
  4. Finish it:            jetgym workout complete <workout-id>

Workouts are read from the local cache when it is fresh. Use
'jetgym workout refresh' to reload them from the server.`,
}

var workoutListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List workouts",
	Long: `List workouts, newest first.

FILTERING:

  --period   day, week, month, year or all (current calendar period)
  --filter   YYYY, YYYY-MM or YYYY-MM-DD

EXAMPLES:

  jetgym workout list --period week
  jetgym workout list --filter 2024-07
  jetgym workout list -n 5`,
	RunE: func(cmd *cobra.Command, args []string) error {
		uid, err := currentUserID()
		if err != nil {
			return err
		}

		var (
			workouts []models.Workout
			label    string
		)
		switch {
		case workoutFilter != "":
			f, err := calendar.ParseFilter(workoutFilter)
			if err != nil {
				return err
			}
			workouts, err = svc.Workouts.Filter(cmd.Context(), uid, f)
			if err != nil {
				return err
			}
			label = f.Label()
		default:
			period, err := calendar.ParsePeriod(workoutPeriod)
			if err != nil {
				return err
			}
			workouts, err = svc.Workouts.ListByPeriod(cmd.Context(), uid, period)
			if err != nil {
				return err
			}
			label = period.Label(svc.Now(), svc.Location())
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, faint.Sprint(label))
		if len(workouts) == 0 {
			fmt.Fprintln(out, "No workouts found.")
			return nil
		}
		if workoutLimit > 0 && len(workouts) > workoutLimit {
			workouts = workouts[:workoutLimit]
		}
		for _, w := range workouts {
			printWorkoutLine(out, w)
		}
		return nil
	},
}

var workoutShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show workout details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		uid, err := currentUserID()
		if err != nil {
			return err
		}
		id, err := parseID(args[0], "workout")
		if err != nil {
			return err
		}

		w, err := svc.Workouts.Get(cmd.Context(), uid, id)
		if err != nil {
			return err
		}
		printWorkout(cmd.OutOrStdout(), w)
		return nil
	},
}

var workoutAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a new workout",
	Long: `Add a new workout.

Examples:
  jetgym workout add "Leg Day" --duration 45
  jetgym workout add Run --date 2024-07-01 --notes "easy pace"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		uid, err := currentUserID()
		if err != nil {
			return err
		}

		w := models.NewWorkout(uid, args[0])
		if workoutDate != "" {
			day, err := calendar.ParseDay(workoutDate, svc.Location())
			if err != nil {
				return err
			}
			w.WithDate(day)
		} else {
			w.WithDate(svc.Now().In(svc.Location()))
		}
		if workoutDuration > 0 {
			w.WithDuration(workoutDuration)
		}
		if workoutNotes != "" {
			w.WithNotes(workoutNotes)
		}

		created, err := svc.Workouts.Create(cmd.Context(), *w)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		success.Fprintf(out, "✓ Added workout %s\n", created.Name)
		fmt.Fprintf(out, "  ID: %d\n", created.IDValue())
		fmt.Fprintf(out, "  Date: %s\n", created.Date)
		if created.Duration > 0 {
			fmt.Fprintf(out, "  Duration: %d min\n", created.Duration)
		}
		return nil
	},
}

var workoutUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Change a workout's name, date, duration or notes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		uid, err := currentUserID()
		if err != nil {
			return err
		}
		id, err := parseID(args[0], "workout")
		if err != nil {
			return err
		}

		cur, err := svc.Workouts.Get(cmd.Context(), uid, id)
		if err != nil {
			return err
		}
		w := *cur
		flags := cmd.Flags()
		if flags.Changed("name") {
			w.Name = workoutName
		}
		if flags.Changed("date") {
			day, err := calendar.ParseDay(workoutDate, svc.Location())
			if err != nil {
				return err
			}
			w.WithDate(day)
		}
		if flags.Changed("duration") {
			w.Duration = workoutDuration
		}
		if flags.Changed("notes") {
			w.Notes = workoutNotes
		}

		updated, err := svc.Workouts.Update(cmd.Context(), w)
		if err != nil {
			return err
		}
		success.Fprintf(cmd.OutOrStdout(), "✓ Updated workout %d\n", updated.IDValue())
		return nil
	},
}

var workoutCompleteCmd = &cobra.Command{
	Use:     "complete <id>",
	Aliases: []string{"done"},
	Short:   "Mark a workout as completed",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		uid, err := currentUserID()
		if err != nil {
			return err
		}
		id, err := parseID(args[0], "workout")
		if err != nil {
			return err
		}

		w, err := svc.Workouts.Complete(cmd.Context(), uid, id)
		if err != nil {
			return err
		}
		success.Fprintf(cmd.OutOrStdout(), "✓ Completed %s\n", w.Name)
		return nil
	},
}

var workoutDeleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"rm"},
	Short:   "Delete a workout with its exercises and sets",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		uid, err := currentUserID()
		if err != nil {
			return err
		}
		id, err := parseID(args[0], "workout")
		if err != nil {
			return err
		}

		if err := svc.Workouts.Delete(cmd.Context(), uid, id); err != nil {
			return err
		}
		warning.Fprintf(cmd.OutOrStdout(), "✗ Deleted workout %d\n", id)
		return nil
	},
}

var workoutRefreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Reload workouts from the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		uid, err := currentUserID()
		if err != nil {
			return err
		}

		workouts, err := svc.Workouts.Refresh(cmd.Context(), uid)
		if err != nil {
			return err
		}
		success.Fprintf(cmd.OutOrStdout(), "✓ Refreshed %d workouts\n", len(workouts))
		return nil
	},
}

var workoutLastCmd = &cobra.Command{
	Use:   "last",
	Short: "Summarize the most recent workout",
	RunE: func(cmd *cobra.Command, args []string) error {
		uid, err := currentUserID()
		if err != nil {
			return err
		}

		summary, err := svc.Workouts.LastWorkoutSummary(cmd.Context(), uid)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s %s\n", summary.Name, faint.Sprint(summary.Date))
		fmt.Fprintf(out, "  Sets: %d\n", summary.TotalSets)
		fmt.Fprintf(out, "  Reps: %d\n", summary.TotalReps)
		return nil
	},
}

func init() {
	workoutListCmd.Flags().StringVarP(&workoutPeriod, "period", "p", string(calendar.PeriodAll), "day, week, month, year or all")
	workoutListCmd.Flags().StringVarP(&workoutFilter, "filter", "f", "", "YYYY, YYYY-MM or YYYY-MM-DD")
	workoutListCmd.Flags().IntVarP(&workoutLimit, "limit", "n", 20, "max number of results")

	workoutAddCmd.Flags().IntVarP(&workoutDuration, "duration", "d", 0, "duration in minutes")
	workoutAddCmd.Flags().StringVar(&workoutNotes, "notes", "", "workout notes")
	workoutAddCmd.Flags().StringVar(&workoutDate, "date", "", "date (YYYY-MM-DD), defaults to today")

	workoutUpdateCmd.Flags().StringVar(&workoutName, "name", "", "new name")
	workoutUpdateCmd.Flags().IntVarP(&workoutDuration, "duration", "d", 0, "duration in minutes")
	workoutUpdateCmd.Flags().StringVar(&workoutNotes, "notes", "", "workout notes")
	workoutUpdateCmd.Flags().StringVar(&workoutDate, "date", "", "date (YYYY-MM-DD)")

	workoutCmd.AddCommand(workoutListCmd)
	workoutCmd.AddCommand(workoutShowCmd)
	workoutCmd.AddCommand(workoutAddCmd)
	workoutCmd.AddCommand(workoutUpdateCmd)
	workoutCmd.AddCommand(workoutCompleteCmd)
	workoutCmd.AddCommand(workoutDeleteCmd)
	workoutCmd.AddCommand(workoutRefreshCmd)
	workoutCmd.AddCommand(workoutLastCmd)
	rootCmd.AddCommand(workoutCmd)
}
