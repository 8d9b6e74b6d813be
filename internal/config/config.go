// ABOUTME: Acreage configuration management with backend selection
// ABOUTME: Handles settings, owner identity, surface and tracking options, and the storage factory

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/harper/acreage/internal/bridge"
	"github.com/harper/acreage/internal/charm"
	"github.com/harper/acreage/internal/locate"
	"github.com/harper/acreage/internal/logging"
	"github.com/harper/acreage/internal/models"
	"github.com/harper/acreage/internal/storage"
)

// Backend names.
const (
	BackendSQLite = "sqlite"
	BackendCharm  = "charm"
)

// DefaultListen is where the map surface is served.
const DefaultListen = "127.0.0.1:8765"

// defaultDBFilename is the SQLite database filename inside the data directory.
const defaultDBFilename = "acreage.db"

// TrackingConfig mirrors locate.WatchOptions in a file-friendly form.
type TrackingConfig struct {
	MinInterval  string  `json:"min_interval,omitempty"`
	MinDistanceM float64 `json:"min_distance_m,omitempty"`
}

// Config stores acreage configuration.
type Config struct {
	// Backend selects the storage backend: "sqlite" (default) or "charm".
	Backend string `json:"backend,omitempty"`

	// DataDir is the root directory for data storage. SQLite puts acreage.db here.
	// Supports ~ expansion for home directory. Defaults to ~/.local/share/acreage.
	DataDir string `json:"data_dir,omitempty"`

	// Owner scopes every saved area. Generated on first run.
	Owner string `json:"owner,omitempty"`

	Listen        string            `json:"listen,omitempty"`
	DefaultRegion *models.Region    `json:"default_region,omitempty"`
	Layers        bridge.LayerTable `json:"layers,omitempty"`
	Tracking      TrackingConfig    `json:"tracking,omitempty"`
	Log           logging.Config    `json:"log,omitempty"`

	// CharmHost overrides the Charm server for the charm backend.
	CharmHost string `json:"charm_host,omitempty"`
}

// GetBackend returns the configured backend, defaulting to "sqlite".
func (c *Config) GetBackend() string {
	if c.Backend == "" {
		return BackendSQLite
	}
	return c.Backend
}

// GetDataDir returns the configured data directory with ~ expanded,
// defaulting to the standard XDG data directory.
func (c *Config) GetDataDir() string {
	if c.DataDir == "" {
		return defaultDataDir()
	}
	return ExpandPath(c.DataDir)
}

// GetListen returns the surface listen address.
func (c *Config) GetListen() string {
	if c.Listen == "" {
		return DefaultListen
	}
	return c.Listen
}

// GetLayers returns the configured layer table or the built-in one.
func (c *Config) GetLayers() (bridge.LayerTable, error) {
	if len(c.Layers) == 0 {
		return bridge.DefaultLayers(), nil
	}
	if err := c.Layers.Validate(); err != nil {
		return nil, fmt.Errorf("invalid layers: %w", err)
	}
	return c.Layers, nil
}

// WatchOptions converts the tracking section, filling defaults.
func (c *Config) WatchOptions() (locate.WatchOptions, error) {
	opts := locate.DefaultWatchOptions()
	if c.Tracking.MinInterval != "" {
		d, err := time.ParseDuration(c.Tracking.MinInterval)
		if err != nil {
			return opts, fmt.Errorf("invalid tracking.min_interval: %w", err)
		}
		if d < 0 {
			return opts, fmt.Errorf("invalid tracking.min_interval: %s is negative", d)
		}
		opts.MinInterval = d
	}
	if c.Tracking.MinDistanceM < 0 {
		return opts, fmt.Errorf("invalid tracking.min_distance_m: %v is negative", c.Tracking.MinDistanceM)
	}
	if c.Tracking.MinDistanceM > 0 {
		opts.MinDistance = c.Tracking.MinDistanceM
	}
	return opts, nil
}

// ApplyEnv overrides fields from ACREAGE_* environment variables.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("ACREAGE_OWNER"); v != "" {
		c.Owner = v
	}
	if v := os.Getenv("ACREAGE_BACKEND"); v != "" {
		c.Backend = v
	}
	if v := os.Getenv("ACREAGE_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
}

// defaultDataDir returns the default XDG data directory for acreage.
func defaultDataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "acreage")
}

// defaultFirstRunConfig returns the config written on first run.
func defaultFirstRunConfig() *Config {
	return &Config{
		Backend: BackendSQLite,
		Owner:   uuid.NewString(),
	}
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

// OpenStorage creates a Repository implementation based on the configured backend.
func (c *Config) OpenStorage() (storage.Repository, error) {
	return c.OpenBackend(c.GetBackend())
}

// OpenBackend opens a specific backend, ignoring the configured one. Used by migrate.
func (c *Config) OpenBackend(backend string) (storage.Repository, error) {
	switch backend {
	case BackendSQLite:
		return storage.NewSQLiteDB(filepath.Join(c.GetDataDir(), defaultDBFilename))
	case BackendCharm:
		cfg := charm.DefaultConfig()
		if c.CharmHost != "" {
			cfg.CharmHost = c.CharmHost
		}
		return charm.NewClient(cfg)
	default:
		return nil, fmt.Errorf("unknown backend: %q", backend)
	}
}

// GetConfigPath returns the config file path.
func GetConfigPath() string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, _ := os.UserHomeDir()
		configDir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configDir, "acreage", "config.json")
}

// Load reads config from disk, creating it on first run, then applies
// environment overrides. A config without an owner gets one and is re-saved.
func Load() (*Config, error) {
	path := GetConfigPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := defaultFirstRunConfig()
			if saveErr := cfg.Save(); saveErr != nil {
				fmt.Fprintf(os.Stderr, "warning: could not save default config: %v\n", saveErr)
			}
			cfg.ApplyEnv()
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	if cfg.Owner == "" {
		cfg.Owner = uuid.NewString()
		if saveErr := cfg.Save(); saveErr != nil {
			fmt.Fprintf(os.Stderr, "warning: could not save owner id: %v\n", saveErr)
		}
	}
	cfg.ApplyEnv()
	return &cfg, nil
}

// Save writes config to disk.
func (c *Config) Save() error {
	path := GetConfigPath()
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return atomicWrite(path, data)
}

// atomicWrite writes data to a temp file beside path and renames it into place.
func atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".config-*.json")
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0600); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
