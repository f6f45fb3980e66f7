// ABOUTME: CLI commands for inspecting and maintaining the local cache.
// ABOUTME: Supports stats, list, prune and clear.
package main

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/harperreed/jetgym/internal/cache"
)

var (
	cacheYes  bool
	cacheJSON bool
)

var cacheCmd = &cobra.Command{
	Use:         "cache",
	Short:       "Inspect and maintain the local cache",
	Annotations: map[string]string{setupAnnotation: setupCache},
	Long: `Inspect and maintain the local response cache.

Every entry is stored with the time it was written and its TTL. Expired
entries are still used when the server is unreachable, until pruned.

COMMANDS:

  stats   Entry counts, stored bytes and this run's counters
  list    Entries with age and expiry, optionally under a key prefix
  prune   Remove expired entries
  clear   Remove every entry, including the login token`,
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := appCache.Stats()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if cacheJSON {
			return printJSON(out, st)
		}
		fmt.Fprintf(out, "Backend: %s\n", cfg.GetBackend())
		fmt.Fprintf(out, "Entries: %d\n", st.Entries)
		fmt.Fprintf(out, "Expired: %d\n", st.Expired)
		fmt.Fprintf(out, "Bytes:   %d\n", st.Bytes)
		fmt.Fprintf(out, "TTL:     %s\n", appCache.DefaultTTL())

		samples, err := metricsManager.Snapshot()
		if err != nil {
			return err
		}
		printed := false
		for _, s := range samples {
			if s.Value == 0 {
				continue
			}
			if !printed {
				fmt.Fprintln(out, "\nCounters:")
				printed = true
			}
			fmt.Fprintf(out, "  %s %s %g\n", s.Name, faint.Sprint(labelString(s.Labels)), s.Value)
		}
		return nil
	},
}

var cacheListCmd = &cobra.Command{
	Use:     "list [prefix]",
	Aliases: []string{"ls"},
	Short:   "List cache entries",
	Args:    cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		prefix := ""
		if len(args) == 1 {
			prefix = args[0]
		}

		entries, err := appCache.Entries(prefix)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if cacheJSON {
			return printJSON(out, entries)
		}
		if len(entries) == 0 {
			fmt.Fprintln(out, "Cache is empty.")
			return nil
		}
		now := time.Now()
		for _, e := range entries {
			fmt.Fprintf(out, "%s %s %s\n", padRight(truncate(e.Key, 40), 40), padRight(fmt.Sprint(e.Size), 8), entryStatus(e, now))
		}
		return nil
	},
}

var cachePruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove expired entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		removed, err := appCache.Prune()
		if err != nil {
			return err
		}
		success.Fprintf(cmd.OutOrStdout(), "✓ Pruned %d expired entries\n", removed)
		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every cache entry",
	Long: `Remove every cache entry. This also removes the login token, so you
will need to log in again.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if !cacheYes && !confirm(cmd.InOrStdin(), out, "Clear the whole cache and log out?") {
			fmt.Fprintln(out, "Canceled.")
			return nil
		}
		if err := appCache.Clear(); err != nil {
			return err
		}
		success.Fprintln(out, "✓ Cache cleared")
		return nil
	},
}

// entryStatus renders an entry's age and remaining lifetime.
func entryStatus(e cache.EntryInfo, now time.Time) string {
	if e.StoredAt.IsZero() {
		return warning.Sprint("unreadable")
	}
	age := now.Sub(e.StoredAt).Round(time.Second)
	if e.Expired {
		return warning.Sprintf("expired (stored %s ago)", age)
	}
	return faint.Sprintf("stored %s ago, expires in %s", age, e.ExpiresAt.Sub(now).Round(time.Second))
}

func labelString(labels map[string]string) string {
	if len(labels) == 0 {
		return ""
	}
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + labels[k]
	}
	return "{" + strings.Join(parts, ",") + "}"
}

func init() {
	cacheStatsCmd.Flags().BoolVar(&cacheJSON, "json", false, "print JSON")
	cacheListCmd.Flags().BoolVar(&cacheJSON, "json", false, "print JSON")
	cacheClearCmd.Flags().BoolVarP(&cacheYes, "yes", "y", false, "skip confirmation")

	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheListCmd)
	cacheCmd.AddCommand(cachePruneCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}
