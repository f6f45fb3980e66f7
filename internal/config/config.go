// ABOUTME: jetgym configuration: API endpoint selection, cache backend and logging.
// ABOUTME: Reads config.toml or config.json from the XDG config dir, then JETGYM_* env overrides.

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/harperreed/jetgym/internal/cache"
	"github.com/harperreed/jetgym/internal/metrics"
)

const (
	appName = "jetgym"

	EnvDevelopment = "development"
	EnvProduction  = "production"

	defaultRequestTimeout = 30 * time.Second
	defaultLogLevel       = "warn"
)

// Config stores jetgym configuration.
type Config struct {
	// Environment picks DevEndpoint or ProdEndpoint: "development" or "production" (default).
	Environment string `json:"environment,omitempty" toml:"environment"`

	// APIURL overrides both endpoints when set.
	APIURL       string `json:"api_url,omitempty" toml:"api_url"`
	DevEndpoint  string `json:"dev_endpoint,omitempty" toml:"dev_endpoint"`
	ProdEndpoint string `json:"prod_endpoint,omitempty" toml:"prod_endpoint"`

	// Backend selects the cache store: "sqlite" (default), "badger", "charm" or "memory".
	Backend string `json:"backend,omitempty" toml:"backend"`

	// DataDir is the root directory for the cache. Supports ~ expansion.
	// Defaults to ~/.local/share/jetgym.
	DataDir   string `json:"data_dir,omitempty" toml:"data_dir"`
	CharmHost string `json:"charm_host,omitempty" toml:"charm_host"`

	// CacheTTL and RequestTimeout are Go durations such as "24h" or "15s".
	CacheTTL       string `json:"cache_ttl,omitempty" toml:"cache_ttl"`
	RequestTimeout string `json:"request_timeout,omitempty" toml:"request_timeout"`

	// Timezone is an IANA name used for day boundaries. Defaults to the local zone.
	Timezone string `json:"timezone,omitempty" toml:"timezone"`

	LogLevel string `json:"log_level,omitempty" toml:"log_level"`
	LogFile  string `json:"log_file,omitempty" toml:"log_file"`
	LogJSON  bool   `json:"log_json,omitempty" toml:"log_json"`
}

// GetEnvironment normalizes Environment, defaulting to production.
func (c *Config) GetEnvironment() string {
	switch strings.ToLower(c.Environment) {
	case "dev", "development":
		return EnvDevelopment
	default:
		return EnvProduction
	}
}

// APIBaseURL returns APIURL, or the endpoint for the current environment.
func (c *Config) APIBaseURL() (string, error) {
	if c.APIURL != "" {
		return c.APIURL, nil
	}
	url := c.ProdEndpoint
	if c.GetEnvironment() == EnvDevelopment {
		url = c.DevEndpoint
	}
	if url == "" {
		return "", fmt.Errorf("no API endpoint configured for %s (set api_url or %s_endpoint)",
			c.GetEnvironment(), map[string]string{EnvDevelopment: "dev", EnvProduction: "prod"}[c.GetEnvironment()])
	}
	return url, nil
}

// GetBackend returns the configured backend, defaulting to "sqlite".
func (c *Config) GetBackend() string {
	if c.Backend == "" {
		return cache.BackendSQLite
	}
	return c.Backend
}

// GetDataDir returns the configured data directory with ~ expanded,
// defaulting to the standard XDG data directory.
func (c *Config) GetDataDir() string {
	if c.DataDir == "" {
		return DefaultDataDir()
	}
	return ExpandPath(c.DataDir)
}

// GetCacheTTL parses CacheTTL, defaulting to 24h.
func (c *Config) GetCacheTTL() (time.Duration, error) {
	return parsePositiveDuration("cache_ttl", c.CacheTTL, cache.DefaultTTL)
}

// GetRequestTimeout parses RequestTimeout, defaulting to 30s.
func (c *Config) GetRequestTimeout() (time.Duration, error) {
	return parsePositiveDuration("request_timeout", c.RequestTimeout, defaultRequestTimeout)
}

// Location loads Timezone, defaulting to time.Local.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// GetLogLevel returns LogLevel, defaulting to warn.
func (c *Config) GetLogLevel() string {
	if c.LogLevel == "" {
		return defaultLogLevel
	}
	return c.LogLevel
}

// Validate checks every field that has a restricted format.
func (c *Config) Validate() error {
	if err := cache.ValidateBackend(c.GetBackend()); err != nil {
		return err
	}
	if _, err := c.GetCacheTTL(); err != nil {
		return err
	}
	if _, err := c.GetRequestTimeout(); err != nil {
		return err
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

func parsePositiveDuration(name, value string, def time.Duration) (time.Duration, error) {
	if value == "" {
		return def, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", name, value, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be positive", name, value)
	}
	return d, nil
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) string {
	if path == "" {
		return ""
	}
	if path == "~" {
		home, _ := os.UserHomeDir()
		return home
	}
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}

// DefaultDataDir returns the XDG data directory for jetgym.
func DefaultDataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, _ := os.UserHomeDir()
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, appName)
}

// OpenStore creates the cache Store for the configured backend.
func (c *Config) OpenStore() (cache.Store, error) {
	dataDir := c.GetDataDir()

	switch backend := c.GetBackend(); backend {
	case cache.BackendSQLite:
		return cache.OpenSQLite(cache.SQLitePath(dataDir))
	case cache.BackendBadger:
		return cache.OpenBadger(cache.BadgerPath(dataDir))
	case cache.BackendCharm:
		return cache.OpenCharm(c.CharmHost)
	case cache.BackendMemory:
		return cache.OpenMemory()
	default:
		return nil, fmt.Errorf("unknown backend: %q", backend)
	}
}

// OpenCache opens the configured store and wraps it in a Cache.
func (c *Config) OpenCache(m *metrics.Manager) (*cache.Cache, error) {
	ttl, err := c.GetCacheTTL()
	if err != nil {
		return nil, err
	}
	store, err := c.OpenStore()
	if err != nil {
		return nil, err
	}
	return cache.New(store, cache.WithDefaultTTL(ttl), cache.WithMetrics(m)), nil
}

// configDir returns $XDG_CONFIG_HOME/jetgym.
func configDir() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		homeDir, _ := os.UserHomeDir()
		dir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(dir, appName)
}

// GetConfigPath returns the JSON config file path.
func GetConfigPath() string {
	return filepath.Join(configDir(), "config.json")
}

// GetTOMLConfigPath returns the TOML config file path. It wins over JSON when present.
func GetTOMLConfigPath() string {
	return filepath.Join(configDir(), "config.toml")
}

// LoadFile reads the config file without applying environment overrides.
func LoadFile() (*Config, error) {
	var cfg Config

	if _, err := os.Stat(GetTOMLConfigPath()); err == nil {
		if _, err := toml.DecodeFile(GetTOMLConfigPath(), &cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", GetTOMLConfigPath(), err)
		}
		return &cfg, nil
	}

	data, err := os.ReadFile(GetConfigPath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", GetConfigPath(), err)
	}
	return &cfg, nil
}

// Load reads the config file and applies JETGYM_* environment overrides.
func Load() (*Config, error) {
	cfg, err := LoadFile()
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv(os.Getenv)
	return cfg, nil
}

// ApplyEnv overrides fields from JETGYM_* variables read through getenv.
func (c *Config) ApplyEnv(getenv func(string) string) {
	overrides := map[string]*string{
		"JETGYM_ENV":           &c.Environment,
		"JETGYM_API_URL":       &c.APIURL,
		"JETGYM_DEV_ENDPOINT":  &c.DevEndpoint,
		"JETGYM_PROD_ENDPOINT": &c.ProdEndpoint,
		"JETGYM_BACKEND":       &c.Backend,
		"JETGYM_DATA_DIR":      &c.DataDir,
		"JETGYM_TIMEZONE":      &c.Timezone,
		"JETGYM_LOG_LEVEL":     &c.LogLevel,
	}
	for name, field := range overrides {
		if v := getenv(name); v != "" {
			*field = v
		}
	}
}

// Save writes config to disk as JSON.
func (c *Config) Save() error {
	path := GetConfigPath()
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

// Keys lists the settable config keys.
func Keys() []string {
	fields := fieldsByKey(&Config{})
	keys := make([]string, 0, len(fields)+1)
	for k := range fields {
		keys = append(keys, k)
	}
	keys = append(keys, keyLogJSON)
	sort.Strings(keys)
	return keys
}

// Get returns the value of key as text.
func (c *Config) Get(key string) (string, error) {
	if key == keyLogJSON {
		return strconv.FormatBool(c.LogJSON), nil
	}
	field, ok := fieldsByKey(c)[key]
	if !ok {
		return "", fmt.Errorf("unknown config key %q (use one of: %s)", key, strings.Join(Keys(), ", "))
	}
	return *field, nil
}

// Set assigns key from text and validates the result.
func (c *Config) Set(key, value string) error {
	if key == keyLogJSON {
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid log_json %q: %w", value, err)
		}
		c.LogJSON = b
		return nil
	}
	field, ok := fieldsByKey(c)[key]
	if !ok {
		return fmt.Errorf("unknown config key %q (use one of: %s)", key, strings.Join(Keys(), ", "))
	}
	old := *field
	*field = value
	if err := c.Validate(); err != nil {
		*field = old
		return err
	}
	return nil
}

// keyLogJSON is the only boolean key, so it is not in fieldsByKey.
const keyLogJSON = "log_json"

func fieldsByKey(c *Config) map[string]*string {
	return map[string]*string{
		"environment":     &c.Environment,
		"api_url":         &c.APIURL,
		"dev_endpoint":    &c.DevEndpoint,
		"prod_endpoint":   &c.ProdEndpoint,
		"backend":         &c.Backend,
		"data_dir":        &c.DataDir,
		"charm_host":      &c.CharmHost,
		"cache_ttl":       &c.CacheTTL,
		"request_timeout": &c.RequestTimeout,
		"timezone":        &c.Timezone,
		"log_level":       &c.LogLevel,
		"log_file":        &c.LogFile,
	}
}
