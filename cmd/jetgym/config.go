// ABOUTME: CLI commands for viewing and editing the jetgym config file.
// ABOUTME: Supports show, get, set and path.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/harperreed/jetgym/internal/config"
)

var configCmd = &cobra.Command{
	Use:         "config",
	Short:       "View and edit configuration",
	Annotations: map[string]string{setupAnnotation: setupConfig},
	Long: `View and edit jetgym configuration.

Settings are read from config.toml when it exists, otherwise config.json,
in $XDG_CONFIG_HOME/jetgym. JETGYM_* environment variables override both.
'jetgym config set' writes config.json.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if err := printJSON(out, cfg); err != nil {
			return err
		}
		baseURL, err := cfg.APIBaseURL()
		if err != nil {
			return err
		}
		fmt.Fprintln(out)
		fmt.Fprintf(out, "API:      %s\n", baseURL)
		fmt.Fprintf(out, "Backend:  %s\n", cfg.GetBackend())
		fmt.Fprintf(out, "Data dir: %s\n", cfg.GetDataDir())
		return nil
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print one setting",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		value, err := cfg.Get(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), value)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change one setting",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := os.Stat(config.GetTOMLConfigPath()); err == nil {
			return fmt.Errorf("%s takes precedence; edit it directly", config.GetTOMLConfigPath())
		}

		// The file alone, so environment overrides are not persisted.
		fileCfg, err := config.LoadFile()
		if err != nil {
			return err
		}
		if err := fileCfg.Set(args[0], args[1]); err != nil {
			return err
		}
		if err := fileCfg.Save(); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}
		success.Fprintf(cmd.OutOrStdout(), "✓ %s = %s\n", args[0], args[1])
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print config file paths",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, config.GetTOMLConfigPath())
		fmt.Fprintln(out, config.GetConfigPath())
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}
