// ABOUTME: CLI command for starting the MCP server.
// ABOUTME: Serves jetgym tools and resources over stdio.
package main

import (
	"github.com/spf13/cobra"

	"github.com/harperreed/jetgym/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server",
	Long: `Start the Model Context Protocol (MCP) server for AI assistant integration.

The server talks over stdin/stdout and uses the session from 'jetgym auth login'.
Set log_file in the config to keep logs out of the protocol stream.

CONFIGURATION:

  {
    "mcpServers": {
      "jetgym": {
        "command": "jetgym",
        "args": ["mcp"]
      }
    }
  }

AVAILABLE TOOLS:

  list_workouts      List workouts for a period
  get_workout        Get a workout with exercises and sets
  create_workout     Create a workout
  complete_workout   Mark a workout as completed
  delete_workout     Delete a workout
  add_exercise       Add an exercise to a workout
  add_set            Log a set for an exercise
  get_streak         Current streak and this week's training days
  get_analytics      Dashboard or a single analytics view
  filter_workouts    Workouts on a date, month or year
  cache_stats        Cache size and counters

AVAILABLE RESOURCES:

  jetgym://workouts/recent   Most recent workouts
  jetgym://streak            Current streak
  jetgym://summary           Overview of recent training`,
	RunE: func(cmd *cobra.Command, args []string) error {
		server, err := mcp.NewServer(svc, appCache, metricsManager)
		if err != nil {
			return err
		}
		return server.Serve(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
