// ABOUTME: Root Cobra command for jetgym CLI.
// ABOUTME: Loads config and wires logging, metrics, cache and services via PersistentPre/PostRunE.
package main

import (
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/harperreed/jetgym/internal/api"
	"github.com/harperreed/jetgym/internal/cache"
	"github.com/harperreed/jetgym/internal/config"
	"github.com/harperreed/jetgym/internal/logging"
	"github.com/harperreed/jetgym/internal/metrics"
	"github.com/harperreed/jetgym/internal/service"
)

// setupAnnotation on a command (or a parent) limits what PersistentPreRunE opens.
const setupAnnotation = "jetgym/setup"

const (
	setupConfig = "config" // config and logging only
	setupCache  = "cache"  // plus the cache, no API client
)

var (
	cfg            *config.Config
	metricsManager *metrics.Manager
	appCache       *cache.Cache
	svc            *service.Services
	logCloser      io.Closer

	flagBackend  string
	flagAPIURL   string
	flagLogLevel string
)

var rootCmd = &cobra.Command{
	Use:   "jetgym",
	Short: "Workout tracker client with an offline cache",
	Long: `jetgym is a command-line client for the jetgym fitness API.

It keeps a local cache of your workouts so reads are fast and analytics keep
working when the server is unreachable.

QUICK START:

  $ jetgym auth login you@example.com       # Log in (prompts for password)
  $ jetgym workout list --period week       # This week's workouts
  $ jetgym workout add "Push Day" -d 60     # Log a workout
  $ jetgym exercise add 42 "Bench Press" -m Chest
  $ jetgym set add 7 10 --weight 80 --completed

ANALYTICS:

  $ jetgym analytics                        # Full dashboard
  $ jetgym analytics records                # Personal records
  $ jetgym streak                           # Current training streak

CACHE:

  Responses are cached for 24h by default (config key cache_ttl). The cache
  backend is sqlite unless configured otherwise (badger, charm or memory).

  $ jetgym cache stats
  $ jetgym cache prune

MCP INTEGRATION:

  Run 'jetgym mcp' to start the Model Context Protocol server:

  {
    "mcpServers": {
      "jetgym": { "command": "jetgym", "args": ["mcp"] }
    }
  }`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "version" {
			return nil
		}
		return setup(cmd)
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return teardown()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagBackend, "backend", "", "cache backend (sqlite, badger, charm, memory)")
	rootCmd.PersistentFlags().StringVar(&flagAPIURL, "api-url", "", "API base URL (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level (debug, info, warn, error)")
}

// setupLevel returns the nearest setup annotation, or "" for full setup.
func setupLevel(cmd *cobra.Command) string {
	for c := cmd; c != nil; c = c.Parent() {
		if level, ok := c.Annotations[setupAnnotation]; ok {
			return level
		}
	}
	return ""
}

func setup(cmd *cobra.Command) error {
	_ = teardown()

	var err error
	cfg, err = config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if flagBackend != "" {
		cfg.Backend = flagBackend
	}
	if flagAPIURL != "" {
		cfg.APIURL = flagAPIURL
	}
	if flagLogLevel != "" {
		cfg.LogLevel = flagLogLevel
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logCloser = logging.Setup(logging.LoggerSetupParams{
		LogFileName:   config.ExpandPath(cfg.LogFile),
		LogLevel:      cfg.GetLogLevel(),
		LogFormatJSON: cfg.LogJSON,
	})

	level := setupLevel(cmd)
	if level == setupConfig {
		return nil
	}

	metricsManager = metrics.NewManager(prometheus.NewRegistry())
	appCache, err = cfg.OpenCache(metricsManager)
	if err != nil {
		return fmt.Errorf("failed to open cache: %w", err)
	}
	if level == setupCache {
		return nil
	}

	baseURL, err := cfg.APIBaseURL()
	if err != nil {
		return err
	}
	timeout, _ := cfg.GetRequestTimeout()
	loc, _ := cfg.Location()

	client, err := api.New(baseURL, api.WithTimeout(timeout), api.WithMetrics(metricsManager))
	if err != nil {
		return err
	}
	svc = service.New(service.Options{
		API:      client,
		Cache:    appCache,
		Metrics:  metricsManager,
		Location: loc,
	})
	return nil
}

// teardown releases everything setup opened.
func teardown() error {
	var err error
	if appCache != nil {
		err = appCache.Close()
		appCache = nil
	}
	if logCloser != nil {
		_ = logCloser.Close()
		logCloser = nil
	}
	svc = nil
	return err
}

// currentUserID returns the logged-in user's ID.
func currentUserID() (int64, error) {
	return svc.Auth.UserID()
}
