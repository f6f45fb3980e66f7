// ABOUTME: CLI commands for the Charm cache backend.
// ABOUTME: Supports status, now, repair, reset and wipe operations.
package main

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/charm/kv"
	"github.com/spf13/cobra"

	"github.com/harperreed/jetgym/internal/cache"
)

var syncForce bool

var syncCmd = &cobra.Command{
	Use:         "sync",
	Short:       "Sync the cache across devices with Charm",
	Annotations: map[string]string{setupAnnotation: setupCache},
	Long: `Sync the jetgym cache across devices using Charm Cloud.

Requires the charm backend:

  jetgym config set backend charm

Entries are E2E encrypted with your SSH key before upload and sync
automatically after every write.

COMMANDS:

  status   Show the Charm account and local entry count
  now      Sync immediately
  repair   Repair database corruption
  reset    Reset local data and restore from cloud (destructive)
  wipe     Delete cloud and local data (destructive)`,
}

var errNotCharm = errors.New("sync needs the charm backend (jetgym config set backend charm)")

// charmStore returns the open Charm store, or errNotCharm.
func charmStore() (*cache.CharmStore, error) {
	store, ok := appCache.Store().(*cache.CharmStore)
	if !ok {
		return nil, errNotCharm
	}
	return store, nil
}

var syncStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show sync status",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := charmStore()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		id, err := store.ID()
		if err != nil {
			warning.Fprintln(out, "Not linked to Charm")
			fmt.Fprintln(out, "\nRun 'charm link' to connect this device.")
			return nil
		}

		host := cfg.CharmHost
		if host == "" {
			host = cache.DefaultCharmHost
		}
		fmt.Fprintln(out, "Charm ID:", id)
		fmt.Fprintln(out, "Server:", host)
		if store.IsReadOnly() {
			warning.Fprintln(out, "Read-only: another jetgym process holds the database")
		}
		fmt.Fprintln(out)

		st, err := appCache.Stats()
		if err != nil {
			return err
		}
		success.Fprintln(out, "✓ Connected to Charm")
		fmt.Fprintf(out, "  Entries: %d (%d expired)\n", st.Entries, st.Expired)
		return nil
	},
}

var syncNowCmd = &cobra.Command{
	Use:   "now",
	Short: "Sync immediately",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := charmStore()
		if err != nil {
			return err
		}
		if store.IsReadOnly() {
			return cache.ErrReadOnly
		}
		if err := store.Sync(); err != nil {
			return fmt.Errorf("sync failed: %w", err)
		}
		success.Fprintln(cmd.OutOrStdout(), "✓ Sync complete")
		return nil
	},
}

var syncRepairCmd = &cobra.Command{
	Use:   "repair",
	Short: "Repair database corruption",
	Long: `Repair database corruption by checkpointing the WAL, removing SHM files,
checking integrity and vacuuming.

Run with --force to attempt recovery even if integrity checks fail.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := charmStore(); err != nil {
			return err
		}
		// The repair needs the database closed.
		if err := teardown(); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Repairing jetgym database...")
		result, err := kv.Repair(cache.CharmDBName, syncForce)
		if result.WalCheckpointed {
			success.Fprintln(out, "  ✓ WAL checkpointed")
		}
		if result.ShmRemoved {
			success.Fprintln(out, "  ✓ SHM file removed")
		}
		if result.IntegrityOK {
			success.Fprintln(out, "  ✓ Integrity check passed")
		} else {
			warning.Fprintln(out, "  ✗ Integrity check failed")
		}
		if result.Vacuumed {
			success.Fprintln(out, "  ✓ Database vacuumed")
		}
		if err != nil {
			if !syncForce {
				warning.Fprintln(out, "\nRun with --force to attempt recovery.")
			}
			return fmt.Errorf("repair failed: %w", err)
		}

		success.Fprintln(out, "\n✓ Repair complete")
		return nil
	},
}

var syncResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset local data and restore from cloud",
	Long: `Delete the local cache and restore it from Charm Cloud.

Use this to fix sync conflicts or reset a device to the cloud state.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := charmStore()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "This will DELETE the local jetgym cache and restore it from cloud.")
		if !confirm(cmd.InOrStdin(), out, "Continue?") {
			fmt.Fprintln(out, "Canceled.")
			return nil
		}

		if err := store.Reset(); err != nil {
			return fmt.Errorf("reset failed: %w", err)
		}
		success.Fprintln(out, "✓ Local cache reset and restored from cloud")
		return nil
	},
}

var syncWipeCmd = &cobra.Command{
	Use:   "wipe",
	Short: "Delete all cloud and local data",
	Long: `Delete all cloud backups and the local cache.

This is a DESTRUCTIVE operation. Your login token is removed as well.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := charmStore(); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "This will PERMANENTLY DELETE all cloud backups and the local jetgym cache.")
		fmt.Fprint(out, "Type 'wipe' to confirm: ")
		var answer string
		_, _ = fmt.Fscanln(cmd.InOrStdin(), &answer)
		if answer != "wipe" {
			fmt.Fprintln(out, "Canceled.")
			return nil
		}

		if err := teardown(); err != nil {
			return err
		}
		result, err := kv.Wipe(cache.CharmDBName)
		if err != nil {
			return fmt.Errorf("wipe failed: %w", err)
		}

		success.Fprintln(out, "✓ Data wiped successfully")
		fmt.Fprintf(out, "  Cloud backups deleted: %d\n", result.CloudBackupsDeleted)
		fmt.Fprintf(out, "  Local files deleted: %d\n", result.LocalFilesDeleted)
		return nil
	},
}

func init() {
	syncRepairCmd.Flags().BoolVar(&syncForce, "force", false, "attempt recovery even if integrity checks fail")

	syncCmd.AddCommand(syncStatusCmd)
	syncCmd.AddCommand(syncNowCmd)
	syncCmd.AddCommand(syncRepairCmd)
	syncCmd.AddCommand(syncResetCmd)
	syncCmd.AddCommand(syncWipeCmd)
	rootCmd.AddCommand(syncCmd)
}
