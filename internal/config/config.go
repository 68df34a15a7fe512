// Package config loads settings from the config file, environment, and
// defaults, in that order of increasing precedence for the environment.
//
// The config file is YAML at <data-dir>/config.yaml (default ~/.wte).
// Every key can be overridden with a WTE_ environment variable, dots
// replaced by underscores: remote.url becomes WTE_REMOTE_URL.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the full application configuration.
type Config struct {
	// DataDir holds the local database, config file, and logs.
	DataDir string `mapstructure:"data_dir"`

	Remote    RemoteConfig    `mapstructure:"remote"`
	AI        AIConfig        `mapstructure:"ai"`
	Net       NetConfig       `mapstructure:"net"`
	Sync      SyncConfig      `mapstructure:"sync"`
	Log       LogConfig       `mapstructure:"log"`
	Dashboard DashboardConfig `mapstructure:"dashboard"`
}

// RemoteConfig selects and configures the cross-device row store.
type RemoteConfig struct {
	// Driver is "libsql", "postgres", or empty for local-only operation.
	Driver string `mapstructure:"driver"`
	// URL is the connection URL (libsql://... or postgres://...).
	URL string `mapstructure:"url"`
	// AuthToken authenticates libsql connections.
	AuthToken string `mapstructure:"auth_token"`
}

// AIConfig configures insight generation.
type AIConfig struct {
	// APIKey enables online generation. Empty means offline heuristics
	// only. Also read from ANTHROPIC_API_KEY.
	APIKey      string `mapstructure:"api_key"`
	Model       string `mapstructure:"model"`
	MaxTokens   int64  `mapstructure:"max_tokens"`
	WebSearch   bool   `mapstructure:"web_search"`
	MaxSearches int64  `mapstructure:"max_searches"`
}

// NetConfig configures the connectivity monitor.
type NetConfig struct {
	ProbeAddr string        `mapstructure:"probe_addr"`
	Interval  time.Duration `mapstructure:"interval"`
	Timeout   time.Duration `mapstructure:"timeout"`
	// ForceOffline pins the signal to offline, skipping all probes and
	// remote traffic.
	ForceOffline bool `mapstructure:"force_offline"`
}

// SyncConfig tunes the remote push cycle.
type SyncConfig struct {
	// FlushOnReconnect pushes the full local collection when the network
	// comes back during a watch session. Off by default: a reconnect
	// flush can overwrite remote changes made from another device while
	// this one was offline.
	FlushOnReconnect bool          `mapstructure:"flush_on_reconnect"`
	PushTimeout      time.Duration `mapstructure:"push_timeout"`
}

// LogConfig configures the rotating log file. An empty File logs to
// stderr only.
type LogConfig struct {
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// DashboardConfig configures the live dashboard server.
type DashboardConfig struct {
	Port int `mapstructure:"port"`
}

// Load reads configuration. explicitPath, when non-empty, names the exact
// config file and missing it is an error; otherwise <data-dir>/config.yaml
// is used and may be absent.
func Load(explicitPath string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("WTE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// Honor the conventional variable as a fallback for the API key.
	_ = v.BindEnv("ai.api_key", "WTE_AI_API_KEY", "ANTHROPIC_API_KEY")

	if explicitPath != "" {
		v.SetConfigFile(explicitPath)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("failed to read config %s: %w", explicitPath, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(DefaultDataDir())
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("failed to read config: %w", err)
			}
			// No config file: defaults and environment apply.
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.DataDir == "" {
		cfg.DataDir = DefaultDataDir()
	}
	cfg.DataDir = expandHome(cfg.DataDir)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("data_dir", "")
	v.SetDefault("remote.driver", "")
	v.SetDefault("remote.url", "")
	v.SetDefault("remote.auth_token", "")
	v.SetDefault("ai.api_key", "")
	v.SetDefault("ai.model", "")
	v.SetDefault("ai.max_tokens", 1024)
	v.SetDefault("ai.web_search", true)
	v.SetDefault("ai.max_searches", 3)
	v.SetDefault("net.probe_addr", "1.1.1.1:443")
	v.SetDefault("net.interval", 30*time.Second)
	v.SetDefault("net.timeout", 3*time.Second)
	v.SetDefault("net.force_offline", false)
	v.SetDefault("sync.flush_on_reconnect", false)
	v.SetDefault("sync.push_timeout", 10*time.Second)
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 10)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age_days", 28)
	v.SetDefault("dashboard.port", 8787)
}

// Validate checks cross-field constraints.
func (c Config) Validate() error {
	switch c.Remote.Driver {
	case "", "libsql", "postgres":
	default:
		return fmt.Errorf("unknown remote driver %q (want libsql or postgres)", c.Remote.Driver)
	}
	if c.Remote.Driver != "" && c.Remote.URL == "" {
		return fmt.Errorf("remote.url is required when remote.driver is set")
	}
	return nil
}

// LocalDBPath returns the path of the on-device database.
func (c Config) LocalDBPath() string {
	return filepath.Join(c.DataDir, "local.db")
}

// LogPath resolves the log file path, defaulting under the data dir when
// the configured value is relative.
func (c Config) LogPath() string {
	if c.Log.File == "" {
		return ""
	}
	if filepath.IsAbs(c.Log.File) {
		return c.Log.File
	}
	return filepath.Join(c.DataDir, c.Log.File)
}

// DefaultDataDir returns ~/.wte, or .wte when the home directory is
// unknown.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".wte"
	}
	return filepath.Join(home, ".wte")
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return path
}
