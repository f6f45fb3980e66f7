// ABOUTME: CLI commands for exporting workouts and importing an export file.
// ABOUTME: Supports JSON, YAML and Markdown export formats.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/harperreed/jetgym/internal/analytics"
	"github.com/harperreed/jetgym/internal/calendar"
	"github.com/harperreed/jetgym/internal/export"
	"github.com/harperreed/jetgym/internal/models"
)

var (
	exportOutput string
	exportSince  string
	exportPeriod string
)

var exportCmd = &cobra.Command{
	Use:   "export <format>",
	Short: "Export workouts",
	Long: `Export workouts with their exercises and sets.

FORMATS:

  json       Full JSON export (can be imported again)
  yaml       YAML export (human-readable)
  markdown   Markdown tables (for sharing)

OPTIONS:

  --output, -o   Write to file instead of stdout
  --since        Only include workouts on or after this date (YYYY-MM-DD)
  --period       Only include the current day, week, month or year

EXAMPLES:

  jetgym export json -o backup.json
  jetgym export markdown --period month
  jetgym export yaml --since 2024-01-01`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: export.Formats,
	RunE: func(cmd *cobra.Command, args []string) error {
		uid, err := currentUserID()
		if err != nil {
			return err
		}

		opts := export.Options{Now: svc.Now(), Loc: svc.Location()}
		if exportPeriod != "" {
			p, err := calendar.ParsePeriod(exportPeriod)
			if err != nil {
				return err
			}
			opts.Period = p
		}
		if exportSince != "" {
			t, err := calendar.ParseDay(exportSince, svc.Location())
			if err != nil {
				return fmt.Errorf("invalid date format: %s (use YYYY-MM-DD)", exportSince)
			}
			opts.Since = &t
		}

		user, err := svc.Auth.CurrentUser()
		if err != nil {
			return err
		}
		workouts, err := svc.Workouts.List(cmd.Context(), uid)
		if err != nil {
			return err
		}
		data := export.Build(user, workouts, opts)

		var out []byte
		switch args[0] {
		case "json":
			out, err = export.JSON(data)
		case "yaml":
			out, err = export.YAML(data)
		case "markdown":
			out = []byte(export.Markdown(data))
		default:
			return fmt.Errorf("unknown format: %s (use json, yaml, or markdown)", args[0])
		}
		if err != nil {
			return fmt.Errorf("export failed: %w", err)
		}

		if exportOutput != "" {
			if err := os.WriteFile(exportOutput, out, 0600); err != nil {
				return fmt.Errorf("failed to write file: %w", err)
			}
			success.Fprintf(cmd.OutOrStdout(), "✓ Exported %d workouts to %s\n", len(data.Workouts), exportOutput)
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Recreate workouts from a JSON export",
	Long: `Recreate the workouts of a JSON export for the logged-in user.

Each workout is created again on the server with its exercises and sets,
oldest first. New IDs are assigned.

EXAMPLES:

  jetgym import backup.json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		uid, err := currentUserID()
		if err != nil {
			return err
		}

		raw, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}
		data, err := export.ParseJSON(raw)
		if err != nil {
			return fmt.Errorf("import failed: %w", err)
		}

		workouts := append([]models.Workout{}, data.Workouts...)
		analytics.SortByDate(workouts, svc.Location())
		out := cmd.OutOrStdout()
		for i := len(workouts) - 1; i >= 0; i-- {
			if err := importWorkout(cmd.Context(), uid, workouts[i]); err != nil {
				return fmt.Errorf("import %q (%s): %w", workouts[i].Name, workouts[i].Date, err)
			}
			fmt.Fprintf(out, "  %s %s\n", checkMark(true), workouts[i].Name)
		}

		success.Fprintf(out, "✓ Imported %d workouts from %s\n", len(workouts), args[0])
		return nil
	},
}

// importWorkout creates w for userID, then its exercises and sets.
func importWorkout(ctx context.Context, userID int64, w models.Workout) error {
	exercises := w.Exercises
	w.Exercises = nil
	w.UserID = userID
	if w.Date == "" {
		w.WithDate(time.Now())
	}

	created, err := svc.Workouts.Create(ctx, w)
	if err != nil {
		return err
	}
	for _, ex := range exercises {
		sets := ex.Sets
		ex.Sets = nil
		ex.WorkoutID = created.IDValue()
		newEx, err := svc.Exercises.Create(ctx, userID, ex)
		if err != nil {
			return err
		}
		for _, set := range sets {
			set.ExerciseID = newEx.IDValue()
			if _, err := svc.Sets.Create(ctx, userID, set); err != nil {
				return err
			}
		}
	}
	return nil
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default: stdout)")
	exportCmd.Flags().StringVar(&exportSince, "since", "", "only include workouts since date (YYYY-MM-DD)")
	exportCmd.Flags().StringVarP(&exportPeriod, "period", "p", "", "day, week, month, year or all")

	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
}
