// ABOUTME: CLI commands for exercises inside a workout.
// ABOUTME: Supports list, add, update, delete and name suggestions.
package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harperreed/jetgym/internal/models"
	"github.com/harperreed/jetgym/internal/service"
)

var (
	exerciseMuscleGroup string
	exerciseTimeBased   bool
	exerciseName        string
)

var exerciseCmd = &cobra.Command{
	Use:     "exercise",
	Aliases: []string{"ex"},
	Short:   "Manage exercises in a workout",
}

var exerciseListCmd = &cobra.Command{
	Use:     "list <workout-id>",
	Aliases: []string{"ls"},
	Short:   "List a workout's exercises",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		uid, err := currentUserID()
		if err != nil {
			return err
		}
		workoutID, err := parseID(args[0], "workout")
		if err != nil {
			return err
		}

		exercises, err := svc.Exercises.ListByWorkout(cmd.Context(), uid, workoutID)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(exercises) == 0 {
			fmt.Fprintln(out, "No exercises found.")
			return nil
		}
		for _, ex := range exercises {
			kind := "reps"
			if ex.IsTimeBased {
				kind = "time"
			}
			fmt.Fprintf(out, "%s %s %s %s\n",
				faint.Sprint(padRight(fmt.Sprint(ex.IDValue()), 6)),
				padRight(truncate(ex.Name, 24), 24),
				padRight(ex.MuscleGroup, 12),
				faint.Sprintf("%d sets, %s", len(ex.Sets), kind))
		}
		return nil
	},
}

var exerciseAddCmd = &cobra.Command{
	Use:   "add <workout-id> <name>",
	Short: "Add an exercise to a workout",
	Long: `Add an exercise to a workout.

Examples:
  jetgym exercise add 42 "Bench Press" -m Chest
  jetgym exercise add 42 Plank -m Core --time-based`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		uid, err := currentUserID()
		if err != nil {
			return err
		}
		workoutID, err := parseID(args[0], "workout")
		if err != nil {
			return err
		}

		ex := models.NewExercise(workoutID, args[1], exerciseMuscleGroup)
		ex.IsTimeBased = exerciseTimeBased

		created, err := svc.Exercises.Create(cmd.Context(), uid, *ex)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		success.Fprintf(out, "✓ Added exercise %s\n", created.Name)
		fmt.Fprintf(out, "  ID: %d\n", created.IDValue())
		if created.CanonicalName != "" && created.CanonicalName != created.Name {
			fmt.Fprintf(out, "  Canonical name: %s\n", created.CanonicalName)
		}
		return nil
	},
}

var exerciseUpdateCmd = &cobra.Command{
	Use:   "update <exercise-id>",
	Short: "Rename an exercise or change its muscle group",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		uid, err := currentUserID()
		if err != nil {
			return err
		}
		id, err := parseID(args[0], "exercise")
		if err != nil {
			return err
		}

		flags := cmd.Flags()
		if !flags.Changed("name") && !flags.Changed("muscle-group") && !flags.Changed("time-based") {
			return fmt.Errorf("nothing to update: pass --name, --muscle-group or --time-based")
		}

		cur, err := lookupExercise(cmd.Context(), uid, id)
		if err != nil {
			return err
		}
		ex := *cur
		ex.Sets = nil
		if flags.Changed("name") {
			ex.Name = exerciseName
		}
		if flags.Changed("muscle-group") {
			ex.MuscleGroup = exerciseMuscleGroup
		}
		if flags.Changed("time-based") {
			ex.IsTimeBased = exerciseTimeBased
		}

		updated, err := svc.Exercises.Update(cmd.Context(), uid, ex)
		if err != nil {
			return err
		}
		success.Fprintf(cmd.OutOrStdout(), "✓ Updated exercise %s\n", updated.Name)
		return nil
	},
}

var exerciseDeleteCmd = &cobra.Command{
	Use:     "delete <exercise-id>",
	Aliases: []string{"rm"},
	Short:   "Delete an exercise and its sets",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		uid, err := currentUserID()
		if err != nil {
			return err
		}
		id, err := parseID(args[0], "exercise")
		if err != nil {
			return err
		}

		if err := svc.Exercises.Delete(cmd.Context(), uid, id); err != nil {
			return err
		}
		warning.Fprintf(cmd.OutOrStdout(), "✗ Deleted exercise %d\n", id)
		return nil
	},
}

var exerciseSuggestCmd = &cobra.Command{
	Use:   "suggest <text>",
	Short: "Suggest exercise names",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		uid, err := currentUserID()
		if err != nil {
			return err
		}

		suggestions, err := svc.Exercises.Suggestions(cmd.Context(), uid, args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(suggestions) == 0 {
			fmt.Fprintln(out, "No suggestions.")
			return nil
		}
		for _, s := range suggestions {
			marker := ""
			if s.IsHistorical {
				marker = faint.Sprint(" (done before)")
			}
			fmt.Fprintf(out, "%s%s\n", s.Name, marker)
		}
		return nil
	},
}

// lookupExercise finds an exercise in the user's workouts.
func lookupExercise(ctx context.Context, userID, exerciseID int64) (*models.Exercise, error) {
	workouts, err := svc.Workouts.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range workouts {
		if ex := workouts[i].FindExercise(exerciseID); ex != nil {
			return ex, nil
		}
	}
	return nil, fmt.Errorf("exercise %d: %w", exerciseID, service.ErrNotFound)
}

func init() {
	exerciseAddCmd.Flags().StringVarP(&exerciseMuscleGroup, "muscle-group", "m", "", "muscle group (e.g. Chest, Back, Legs)")
	exerciseAddCmd.Flags().BoolVar(&exerciseTimeBased, "time-based", false, "sets are measured in seconds")

	exerciseUpdateCmd.Flags().StringVar(&exerciseName, "name", "", "new name")
	exerciseUpdateCmd.Flags().StringVarP(&exerciseMuscleGroup, "muscle-group", "m", "", "muscle group")
	exerciseUpdateCmd.Flags().BoolVar(&exerciseTimeBased, "time-based", false, "sets are measured in seconds")

	exerciseCmd.AddCommand(exerciseListCmd)
	exerciseCmd.AddCommand(exerciseAddCmd)
	exerciseCmd.AddCommand(exerciseUpdateCmd)
	exerciseCmd.AddCommand(exerciseDeleteCmd)
	exerciseCmd.AddCommand(exerciseSuggestCmd)
	rootCmd.AddCommand(exerciseCmd)
}
