// ABOUTME: CLI commands for training analytics and the workout streak.
// ABOUTME: Views come from the server and fall back to local computation offline.
package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/harperreed/jetgym/internal/models"
	"github.com/harperreed/jetgym/internal/service"
)

var (
	analyticsWeeks int
	analyticsJSON  bool
)

var analyticsCmd = &cobra.Command{
	Use:     "analytics",
	Aliases: []string{"stats"},
	Short:   "Show training analytics",
	Long: `Show training analytics. Without a subcommand the full dashboard is printed.

VIEWS:

  per-week      Workouts per ISO week
  consistency   Consistency score, streak and recommendation
  daily         Workouts on each day of the current week
  records       Personal records per exercise
  volume        Weekly lifted volume
  muscles       Volume by muscle group

Views are cached. 'jetgym analytics refresh' reloads them; 'clear' drops them.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		uid, err := currentUserID()
		if err != nil {
			return err
		}
		d, err := svc.Analytics.Dashboard(cmd.Context(), uid, analyticsWeeks)
		if err != nil {
			return err
		}
		if analyticsJSON {
			return printJSON(cmd.OutOrStdout(), d)
		}
		printDashboard(cmd.OutOrStdout(), d)
		return nil
	},
}

// analyticsViewCmd builds a subcommand around one analytics view.
func analyticsViewCmd(use, short string, load func(cmd *cobra.Command, uid int64) (any, error), render func(out io.Writer, v any)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			uid, err := currentUserID()
			if err != nil {
				return err
			}
			v, err := load(cmd, uid)
			if err != nil {
				return err
			}
			if analyticsJSON {
				return printJSON(cmd.OutOrStdout(), v)
			}
			render(cmd.OutOrStdout(), v)
			return nil
		},
	}
}

var analyticsPerWeekCmd = analyticsViewCmd("per-week", "Workouts per ISO week",
	func(cmd *cobra.Command, uid int64) (any, error) {
		return svc.Analytics.WorkoutsPerWeek(cmd.Context(), uid, analyticsWeeks)
	},
	func(out io.Writer, v any) { printPerWeek(out, v.(models.WorkoutsPerWeek)) })

var analyticsConsistencyCmd = analyticsViewCmd("consistency", "Consistency insight",
	func(cmd *cobra.Command, uid int64) (any, error) {
		return svc.Analytics.ConsistencyInsight(cmd.Context(), uid, analyticsWeeks)
	},
	func(out io.Writer, v any) { printConsistency(out, v.(models.ConsistencyInsight)) })

var analyticsDailyCmd = analyticsViewCmd("daily", "Workouts per day this week",
	func(cmd *cobra.Command, uid int64) (any, error) {
		return svc.Analytics.DailyWorkouts(cmd.Context(), uid)
	},
	func(out io.Writer, v any) { printDaily(out, v.([]int)) })

var analyticsRecordsCmd = analyticsViewCmd("records", "Personal records",
	func(cmd *cobra.Command, uid int64) (any, error) {
		return svc.Analytics.PersonalRecords(cmd.Context(), uid)
	},
	func(out io.Writer, v any) { printRecords(out, v.([]models.PersonalRecord)) })

var analyticsVolumeCmd = analyticsViewCmd("volume", "Weekly volume",
	func(cmd *cobra.Command, uid int64) (any, error) {
		return svc.Analytics.WeeklyVolume(cmd.Context(), uid, analyticsWeeks)
	},
	func(out io.Writer, v any) { printWeeklyVolume(out, v.([]models.WeeklyVolume)) })

var analyticsMusclesCmd = analyticsViewCmd("muscles", "Volume by muscle group",
	func(cmd *cobra.Command, uid int64) (any, error) {
		return svc.Analytics.MuscleVolume(cmd.Context(), uid)
	},
	func(out io.Writer, v any) { printMuscleVolume(out, v.(models.MuscleVolume)) })

var analyticsRefreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Drop cached views and reload the dashboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		uid, err := currentUserID()
		if err != nil {
			return err
		}
		d, err := svc.Analytics.Refresh(cmd.Context(), uid, analyticsWeeks)
		if err != nil {
			return err
		}
		if analyticsJSON {
			return printJSON(cmd.OutOrStdout(), d)
		}
		printDashboard(cmd.OutOrStdout(), d)
		return nil
	},
}

var analyticsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Drop cached analytics views",
	RunE: func(cmd *cobra.Command, args []string) error {
		uid, err := currentUserID()
		if err != nil {
			return err
		}
		if err := svc.Analytics.ClearCache(uid); err != nil {
			return err
		}
		success.Fprintln(cmd.OutOrStdout(), "✓ Analytics cache cleared")
		return nil
	},
}

var streakCmd = &cobra.Command{
	Use:   "streak",
	Short: "Show the current training streak",
	Long: `Show the current streak of consecutive training days and which days of
this week have a completed workout. Computed from cached workouts.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		uid, err := currentUserID()
		if err != nil {
			return err
		}

		streak, err := svc.Analytics.StreakOrFetch(cmd.Context(), uid)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if analyticsJSON {
			return printJSON(out, streak)
		}
		unit := "days"
		if streak.CurrentStreak == 1 {
			unit = "day"
		}
		success.Fprintf(out, "🔥 %d %s\n", streak.CurrentStreak, unit)
		done := make(map[int]bool, len(streak.CompletedWeekdays))
		for _, d := range streak.CompletedWeekdays {
			done[d] = true
		}
		cells := make([]string, len(weekdayNames))
		for i, name := range weekdayNames {
			cells[i] = fmt.Sprintf("%s %s", name, checkMark(done[i]))
		}
		fmt.Fprintln(out, strings.Join(cells, "  "))
		return nil
	},
}

func printDashboard(out io.Writer, d *models.Dashboard) {
	printConsistency(out, d.ConsistencyInsight)
	fmt.Fprintln(out)
	printPerWeek(out, d.WorkoutsPerWeek)
	fmt.Fprintln(out)
	printDaily(out, d.DailyWorkouts)
	fmt.Fprintln(out)
	printWeeklyVolume(out, d.WeeklyVolume)
	fmt.Fprintln(out)
	printMuscleVolume(out, d.MuscleVolume)
	fmt.Fprintln(out)
	printRecords(out, d.PersonalRecords)
}

func printPerWeek(out io.Writer, perWeek models.WorkoutsPerWeek) {
	fmt.Fprintln(out, "Workouts per week:")
	if len(perWeek) == 0 {
		fmt.Fprintln(out, faint.Sprint("  none"))
		return
	}
	weeks := make([]int, 0, len(perWeek))
	for w := range perWeek {
		weeks = append(weeks, w)
	}
	sort.Ints(weeks)
	for _, w := range weeks {
		fmt.Fprintf(out, "  W%02d %s %d\n", w, strings.Repeat("█", perWeek[w]), perWeek[w])
	}
}

func printConsistency(out io.Writer, c models.ConsistencyInsight) {
	fmt.Fprintln(out, c.Title)
	fmt.Fprintf(out, "  Score: %d (top %d%%)\n", c.ConsistencyScore, c.Percentile)
	fmt.Fprintf(out, "  Streak: %d days\n", c.StreakDays)
	if c.Summary != "" {
		fmt.Fprintf(out, "  %s\n", c.Summary)
	}
	if c.PatternFindings != "" {
		fmt.Fprintf(out, "  %s\n", faint.Sprint(c.PatternFindings))
	}
	if c.Recommendation != "" {
		fmt.Fprintf(out, "  → %s\n", c.Recommendation)
	}
}

func printDaily(out io.Writer, daily []int) {
	fmt.Fprintln(out, "This week:")
	for i, name := range weekdayNames {
		n := 0
		if i < len(daily) {
			n = daily[i]
		}
		fmt.Fprintf(out, "  %s %d\n", name, n)
	}
}

func printRecords(out io.Writer, records []models.PersonalRecord) {
	fmt.Fprintln(out, "Personal records:")
	if len(records) == 0 {
		fmt.Fprintln(out, faint.Sprint("  none"))
		return
	}
	for _, r := range records {
		marker := ""
		if r.IsNewPR {
			marker = success.Sprint(" NEW")
		}
		fmt.Fprintf(out, "  %s %.1f x %d %s%s\n",
			padRight(truncate(r.Exercise, 24), 24), r.Weight, r.Reps, faint.Sprint(r.Date), marker)
	}
}

func printWeeklyVolume(out io.Writer, volumes []models.WeeklyVolume) {
	fmt.Fprintln(out, "Weekly volume:")
	if len(volumes) == 0 {
		fmt.Fprintln(out, faint.Sprint("  none"))
		return
	}
	for _, v := range volumes {
		fmt.Fprintf(out, "  %s %10.1f %s\n", v.Week, v.Volume, faint.Sprintf("%+.1f%%", v.ChangeFromPreviousWeek))
	}
}

func printMuscleVolume(out io.Writer, mv models.MuscleVolume) {
	fmt.Fprintln(out, "Volume by muscle group:")
	if len(mv.MuscleVolumes) == 0 {
		fmt.Fprintln(out, faint.Sprint("  none"))
		return
	}
	groups := make([]string, 0, len(mv.MuscleVolumes))
	for g := range mv.MuscleVolumes {
		groups = append(groups, g)
	}
	sort.Slice(groups, func(i, j int) bool {
		return mv.MuscleVolumes[groups[i]] > mv.MuscleVolumes[groups[j]]
	})
	for _, g := range groups {
		fmt.Fprintf(out, "  %s %10.1f\n", padRight(g, 12), mv.MuscleVolumes[g])
	}
	fmt.Fprintf(out, "  %s %10.1f\n", padRight("Total", 12), mv.TotalVolume)
}

func init() {
	analyticsCmd.PersistentFlags().IntVar(&analyticsWeeks, "weeks", service.DefaultWeeksBack, "weeks of history to analyze")
	analyticsCmd.PersistentFlags().BoolVar(&analyticsJSON, "json", false, "print JSON")
	streakCmd.Flags().BoolVar(&analyticsJSON, "json", false, "print JSON")

	analyticsCmd.AddCommand(analyticsPerWeekCmd)
	analyticsCmd.AddCommand(analyticsConsistencyCmd)
	analyticsCmd.AddCommand(analyticsDailyCmd)
	analyticsCmd.AddCommand(analyticsRecordsCmd)
	analyticsCmd.AddCommand(analyticsVolumeCmd)
	analyticsCmd.AddCommand(analyticsMusclesCmd)
	analyticsCmd.AddCommand(analyticsRefreshCmd)
	analyticsCmd.AddCommand(analyticsClearCmd)
	rootCmd.AddCommand(analyticsCmd)
	rootCmd.AddCommand(streakCmd)
}
