// ABOUTME: CLI commands for the sets of an exercise.
// ABOUTME: Values are reps, or seconds for time-based exercises.
package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/harperreed/jetgym/internal/models"
	"github.com/harperreed/jetgym/internal/service"
)

var (
	setWeight    float64
	setValueFlag int
	setTimeBased bool
	setCompleted bool
)

var setCmd = &cobra.Command{
	Use:   "set",
	Short: "Manage the sets of an exercise",
}

var setListCmd = &cobra.Command{
	Use:     "list <exercise-id>",
	Aliases: []string{"ls"},
	Short:   "List an exercise's sets",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		uid, err := currentUserID()
		if err != nil {
			return err
		}
		exerciseID, err := parseID(args[0], "exercise")
		if err != nil {
			return err
		}

		sets, err := svc.Sets.ListByExercise(cmd.Context(), uid, exerciseID)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(sets) == 0 {
			fmt.Fprintln(out, "No sets found.")
			return nil
		}
		for i, set := range sets {
			fmt.Fprintf(out, "%s %d. %s @ %.1f %s\n",
				faint.Sprint(padRight(fmt.Sprint(set.IDValue()), 6)),
				i+1, setValue(set), set.Weight, checkMark(set.Completed))
		}
		return nil
	},
}

var setAddCmd = &cobra.Command{
	Use:   "add <exercise-id> <value>",
	Short: "Log a set",
	Long: `Log a set for an exercise. The value is reps, or seconds with --time-based.

Examples:
  jetgym set add 7 10 --weight 80 --completed
  jetgym set add 9 60 --time-based`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		uid, err := currentUserID()
		if err != nil {
			return err
		}
		exerciseID, err := parseID(args[0], "exercise")
		if err != nil {
			return err
		}
		value, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid value: %s", args[1])
		}

		set := models.NewExerciseSet(exerciseID, value, setWeight)
		set.IsTimeBased = setTimeBased
		set.Completed = setCompleted

		created, err := svc.Sets.Create(cmd.Context(), uid, *set)
		if err != nil {
			return err
		}
		success.Fprintf(cmd.OutOrStdout(), "✓ Added set %s @ %.1f (ID: %d)\n",
			setValue(*created), created.Weight, created.IDValue())
		return nil
	},
}

var setUpdateCmd = &cobra.Command{
	Use:   "update <set-id>",
	Short: "Change a set's value, weight or completion",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		uid, err := currentUserID()
		if err != nil {
			return err
		}
		id, err := parseID(args[0], "set")
		if err != nil {
			return err
		}

		flags := cmd.Flags()
		if !flags.Changed("value") && !flags.Changed("weight") && !flags.Changed("completed") && !flags.Changed("time-based") {
			return fmt.Errorf("nothing to update: pass --value, --weight, --completed or --time-based")
		}

		cur, err := lookupSet(cmd.Context(), uid, id)
		if err != nil {
			return err
		}
		set := *cur
		if flags.Changed("value") {
			set.Value = setValueFlag
		}
		if flags.Changed("weight") {
			set.Weight = setWeight
		}
		if flags.Changed("completed") {
			set.Completed = setCompleted
		}
		if flags.Changed("time-based") {
			set.IsTimeBased = setTimeBased
		}

		updated, err := svc.Sets.Update(cmd.Context(), uid, set)
		if err != nil {
			return err
		}
		success.Fprintf(cmd.OutOrStdout(), "✓ Updated set %d: %s @ %.1f\n",
			updated.IDValue(), setValue(*updated), updated.Weight)
		return nil
	},
}

var setDeleteCmd = &cobra.Command{
	Use:     "delete <set-id>",
	Aliases: []string{"rm"},
	Short:   "Delete a set",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		uid, err := currentUserID()
		if err != nil {
			return err
		}
		id, err := parseID(args[0], "set")
		if err != nil {
			return err
		}

		if err := svc.Sets.Delete(cmd.Context(), uid, id); err != nil {
			return err
		}
		warning.Fprintf(cmd.OutOrStdout(), "✗ Deleted set %d\n", id)
		return nil
	},
}

// lookupSet finds a set in the user's workouts.
func lookupSet(ctx context.Context, userID, setID int64) (*models.ExerciseSet, error) {
	workouts, err := svc.Workouts.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range workouts {
		for j := range workouts[i].Exercises {
			if set := workouts[i].Exercises[j].FindSet(setID); set != nil {
				return set, nil
			}
		}
	}
	return nil, fmt.Errorf("set %d: %w", setID, service.ErrNotFound)
}

func init() {
	setAddCmd.Flags().Float64VarP(&setWeight, "weight", "w", 0, "weight lifted")
	setAddCmd.Flags().BoolVar(&setTimeBased, "time-based", false, "value is seconds")
	setAddCmd.Flags().BoolVarP(&setCompleted, "completed", "c", false, "mark the set as done")

	setUpdateCmd.Flags().IntVar(&setValueFlag, "value", 0, "reps or seconds")
	setUpdateCmd.Flags().Float64VarP(&setWeight, "weight", "w", 0, "weight lifted")
	setUpdateCmd.Flags().BoolVar(&setTimeBased, "time-based", false, "value is seconds")
	setUpdateCmd.Flags().BoolVarP(&setCompleted, "completed", "c", false, "mark the set as done")

	setCmd.AddCommand(setListCmd)
	setCmd.AddCommand(setAddCmd)
	setCmd.AddCommand(setUpdateCmd)
	setCmd.AddCommand(setDeleteCmd)
	rootCmd.AddCommand(setCmd)
}
