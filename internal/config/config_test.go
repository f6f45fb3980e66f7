// ABOUTME: Tests for jetgym configuration management.
// ABOUTME: Covers load, save, TOML, env overrides, defaults and key access.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/harperreed/jetgym/internal/cache"
)

func setupConfigHome(t *testing.T) string {
	t.Helper()
	tmpDir, err := os.MkdirTemp("", "jetgym-config-test-*")
	if err != nil {
		t.Fatalf("MkdirTemp failed: %v", err)
	}
	t.Cleanup(func() { _ = os.RemoveAll(tmpDir) })
	t.Setenv("XDG_CONFIG_HOME", tmpDir)
	return tmpDir
}

func TestGetBackendDefault(t *testing.T) {
	cfg := &Config{}
	if got := cfg.GetBackend(); got != "sqlite" {
		t.Errorf("GetBackend() = %q, want %q", got, "sqlite")
	}
}

func TestGetBackendExplicit(t *testing.T) {
	cfg := &Config{Backend: "badger"}
	if got := cfg.GetBackend(); got != "badger" {
		t.Errorf("GetBackend() = %q, want %q", got, "badger")
	}
}

func TestGetDataDirDefault(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/tmp/xdg-data")
	cfg := &Config{}
	if got := cfg.GetDataDir(); got != "/tmp/xdg-data/jetgym" {
		t.Errorf("GetDataDir() = %q, want %q", got, "/tmp/xdg-data/jetgym")
	}
}

func TestGetDataDirExplicit(t *testing.T) {
	cfg := &Config{DataDir: "/tmp/jetgym-test"}
	if got := cfg.GetDataDir(); got != "/tmp/jetgym-test" {
		t.Errorf("GetDataDir() = %q, want %q", got, "/tmp/jetgym-test")
	}
}

func TestExpandPath(t *testing.T) {
	home, _ := os.UserHomeDir()

	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"/tmp/foo", "/tmp/foo"},
		{"~", home},
		{"~/data", filepath.Join(home, "data")},
		{"relative/path", "relative/path"},
	}
	for _, tt := range tests {
		if got := ExpandPath(tt.in); got != tt.want {
			t.Errorf("ExpandPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestAPIBaseURL(t *testing.T) {
	cfg := &Config{DevEndpoint: "http://localhost:8080", ProdEndpoint: "https://api.jetgym.app"}

	if got, _ := cfg.APIBaseURL(); got != "https://api.jetgym.app" {
		t.Errorf("production APIBaseURL() = %q", got)
	}

	cfg.Environment = "dev"
	if got, _ := cfg.APIBaseURL(); got != "http://localhost:8080" {
		t.Errorf("development APIBaseURL() = %q", got)
	}

	cfg.APIURL = "http://override:9000"
	if got, _ := cfg.APIBaseURL(); got != "http://override:9000" {
		t.Errorf("override APIBaseURL() = %q", got)
	}
}

func TestAPIBaseURLMissing(t *testing.T) {
	cfg := &Config{Environment: "development", ProdEndpoint: "https://api.jetgym.app"}
	if _, err := cfg.APIBaseURL(); err == nil {
		t.Error("expected an error when the dev endpoint is unset")
	}
}

func TestDurations(t *testing.T) {
	cfg := &Config{}
	if ttl, err := cfg.GetCacheTTL(); err != nil || ttl != cache.DefaultTTL {
		t.Errorf("default GetCacheTTL() = %v, %v", ttl, err)
	}
	if d, err := cfg.GetRequestTimeout(); err != nil || d != 30*time.Second {
		t.Errorf("default GetRequestTimeout() = %v, %v", d, err)
	}

	cfg.CacheTTL = "90m"
	if ttl, _ := cfg.GetCacheTTL(); ttl != 90*time.Minute {
		t.Errorf("GetCacheTTL() = %v, want 90m", ttl)
	}

	for _, bad := range []string{"soon", "-5s", "0s"} {
		cfg.RequestTimeout = bad
		if _, err := cfg.GetRequestTimeout(); err == nil {
			t.Errorf("GetRequestTimeout() accepted %q", bad)
		}
	}
}

func TestLocation(t *testing.T) {
	cfg := &Config{}
	if loc, err := cfg.Location(); err != nil || loc != time.Local {
		t.Errorf("default Location() = %v, %v", loc, err)
	}

	cfg.Timezone = "America/Chicago"
	loc, err := cfg.Location()
	if err != nil {
		t.Fatalf("Location() failed: %v", err)
	}
	if loc.String() != "America/Chicago" {
		t.Errorf("Location() = %q", loc)
	}

	cfg.Timezone = "Mars/Olympus"
	if _, err := cfg.Location(); err == nil {
		t.Error("expected an error for an unknown timezone")
	}
}

func TestLoadMissingFile(t *testing.T) {
	setupConfigHome(t)

	cfg, err := LoadFile()
	if err != nil {
		t.Fatalf("LoadFile() failed: %v", err)
	}
	if cfg.Backend != "" || cfg.APIURL != "" {
		t.Errorf("expected an empty config, got %+v", cfg)
	}
}

func TestSaveAndLoad(t *testing.T) {
	setupConfigHome(t)

	cfg := &Config{Backend: "badger", DataDir: "/tmp/jg", ProdEndpoint: "https://api.jetgym.app", LogJSON: true}
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	info, err := os.Stat(GetConfigPath())
	if err != nil {
		t.Fatalf("config file not written: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("config permissions = %o, want 600", perm)
	}

	loaded, err := LoadFile()
	if err != nil {
		t.Fatalf("LoadFile() failed: %v", err)
	}
	if loaded.Backend != "badger" || loaded.DataDir != "/tmp/jg" || !loaded.LogJSON {
		t.Errorf("loaded config mismatch: %+v", loaded)
	}
}

func TestSaveOmitsEmptyFields(t *testing.T) {
	setupConfigHome(t)

	if err := (&Config{Backend: "memory"}).Save(); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}
	data, err := os.ReadFile(GetConfigPath())
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(raw) != 1 || raw["backend"] != "memory" {
		t.Errorf("saved JSON = %s", data)
	}
}

func TestLoadInvalidJSON(t *testing.T) {
	setupConfigHome(t)

	if err := os.MkdirAll(filepath.Dir(GetConfigPath()), 0750); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(GetConfigPath(), []byte("{not json"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(); err == nil {
		t.Error("expected a parse error")
	}
}

func TestLoadTOMLWinsOverJSON(t *testing.T) {
	setupConfigHome(t)

	if err := (&Config{Backend: "badger"}).Save(); err != nil {
		t.Fatal(err)
	}
	toml := "backend = \"memory\"\nprod_endpoint = \"https://toml.example\"\ncache_ttl = \"2h\"\n"
	if err := os.WriteFile(GetTOMLConfigPath(), []byte(toml), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile()
	if err != nil {
		t.Fatalf("LoadFile() failed: %v", err)
	}
	if cfg.Backend != "memory" || cfg.ProdEndpoint != "https://toml.example" || cfg.CacheTTL != "2h" {
		t.Errorf("TOML config not applied: %+v", cfg)
	}
}

func TestLoadAppliesEnv(t *testing.T) {
	setupConfigHome(t)

	if err := (&Config{Backend: "badger", Environment: "production"}).Save(); err != nil {
		t.Fatal(err)
	}
	t.Setenv("JETGYM_BACKEND", "memory")
	t.Setenv("JETGYM_ENV", "development")
	t.Setenv("JETGYM_DEV_ENDPOINT", "http://localhost:8080")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Backend != "memory" {
		t.Errorf("Backend = %q, want env override", cfg.Backend)
	}
	if url, _ := cfg.APIBaseURL(); url != "http://localhost:8080" {
		t.Errorf("APIBaseURL() = %q", url)
	}

	file, _ := LoadFile()
	if file.Backend != "badger" {
		t.Errorf("LoadFile() should ignore env, got backend %q", file.Backend)
	}
}

func TestGetSet(t *testing.T) {
	cfg := &Config{}

	if err := cfg.Set("backend", "charm"); err != nil {
		t.Fatalf("Set(backend) failed: %v", err)
	}
	if got, _ := cfg.Get("backend"); got != "charm" {
		t.Errorf("Get(backend) = %q", got)
	}

	if err := cfg.Set("backend", "markdown"); err == nil {
		t.Error("expected an error for an unknown backend")
	}
	if cfg.Backend != "charm" {
		t.Errorf("rejected Set changed the value to %q", cfg.Backend)
	}

	if err := cfg.Set("log_json", "true"); err != nil || !cfg.LogJSON {
		t.Errorf("Set(log_json) = %v, LogJSON=%v", err, cfg.LogJSON)
	}
	if got, _ := cfg.Get("log_json"); got != "true" {
		t.Errorf("Get(log_json) = %q", got)
	}

	if _, err := cfg.Get("nope"); err == nil {
		t.Error("expected an error for an unknown key")
	}
	if err := cfg.Set("cache_ttl", "forever"); err == nil {
		t.Error("expected an error for a bad duration")
	}
}

func TestKeysListsEverySettableKey(t *testing.T) {
	keys := Keys()
	if !sort.StringsAreSorted(keys) {
		t.Errorf("Keys() not sorted: %v", keys)
	}

	cfg := &Config{}
	for _, k := range keys {
		if _, err := cfg.Get(k); err != nil {
			t.Errorf("Get(%s) failed: %v", k, err)
		}
	}

	if !slices.Contains(keys, "log_json") {
		t.Errorf("Keys() = %v, missing log_json", keys)
	}
	_, err := cfg.Get("nope")
	if err == nil || !strings.Contains(err.Error(), "log_json") {
		t.Errorf("unknown key error should list log_json, got %v", err)
	}
}

func TestOpenStoreMemory(t *testing.T) {
	cfg := &Config{Backend: cache.BackendMemory}
	store, err := cfg.OpenStore()
	if err != nil {
		t.Fatalf("OpenStore() failed: %v", err)
	}
	defer func() { _ = store.Close() }()

	if err := store.Set("k", []byte("v")); err != nil {
		t.Errorf("Set failed: %v", err)
	}
}

func TestOpenCacheSQLite(t *testing.T) {
	dir := t.TempDir()
	cfg := &Config{Backend: cache.BackendSQLite, DataDir: dir, CacheTTL: "1h"}

	c, err := cfg.OpenCache(nil)
	if err != nil {
		t.Fatalf("OpenCache() failed: %v", err)
	}
	defer func() { _ = c.Close() }()

	if c.DefaultTTL() != time.Hour {
		t.Errorf("DefaultTTL() = %v, want 1h", c.DefaultTTL())
	}
	if _, err := os.Stat(filepath.Join(dir, "cache.db")); err != nil {
		t.Errorf("sqlite file not created: %v", err)
	}
}

func TestOpenStoreUnknown(t *testing.T) {
	cfg := &Config{Backend: "postgres"}
	if _, err := cfg.OpenStore(); err == nil {
		t.Error("expected an error for an unknown backend")
	}
}
