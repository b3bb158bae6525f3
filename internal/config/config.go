package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Library LibraryConfig `mapstructure:"library"`
	Server  ServerConfig  `mapstructure:"server"`
	Logging LoggingConfig `mapstructure:"logging"`

	// DataDir holds the track database; CacheDir holds cached artwork.
	DataDir  string `mapstructure:"data_dir"`
	CacheDir string `mapstructure:"cache_dir"`
}

// LibraryConfig holds the scan policy.
type LibraryConfig struct {
	// Roots is the ordered list of directories to index.
	Roots []string `mapstructure:"roots"`
	// Blacklist is an ordered list of path prefixes excluded from the
	// index even when they sit under a root.
	Blacklist []string `mapstructure:"blacklist"`
	// PreferDirectoryArt selects a sibling image over embedded artwork
	// when both exist.
	PreferDirectoryArt bool `mapstructure:"prefer_directory_art"`
	// ScanInterval enables periodic rescans when non-zero.
	ScanInterval time.Duration `mapstructure:"scan_interval"`
}

// ServerConfig holds the HTTP API configuration.
type ServerConfig struct {
	Port           string `mapstructure:"port"`
	MetricsEnabled bool   `mapstructure:"metrics_enabled"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

// DatabasePath returns the location of the track database file.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "library.sqlite")
}

// MediaArtDir returns the location of the artwork cache directory.
func (c *Config) MediaArtDir() string {
	return filepath.Join(c.CacheDir, "media-art")
}

func defaultDataDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "unplayer")
}

func defaultCacheDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".cache", "unplayer")
}

func configDir() string {
	if dir := os.Getenv("UNPLAYER_CONFIG_DIR"); dir != "" {
		return dir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "unplayer")
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir())
	v.AddConfigPath(".")

	v.SetEnvPrefix("UNPLAYER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("library.roots", []string{})
	v.SetDefault("library.blacklist", []string{})
	v.SetDefault("library.prefer_directory_art", false)
	v.SetDefault("library.scan_interval", time.Duration(0))
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.metrics_enabled", true)
	v.SetDefault("logging.level", "info")
	v.SetDefault("data_dir", defaultDataDir())
	v.SetDefault("cache_dir", defaultCacheDir())

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// normalize resolves every configured path to an absolute form. Library
// roots and blacklist entries that cannot be resolved are dropped with
// an error only for the former; a bad blacklist entry just never
// matches.
func (c *Config) normalize() error {
	var err error
	if c.DataDir, err = filepath.Abs(c.DataDir); err != nil {
		return fmt.Errorf("failed to resolve data directory: %w", err)
	}
	if c.CacheDir, err = filepath.Abs(c.CacheDir); err != nil {
		return fmt.Errorf("failed to resolve cache directory: %w", err)
	}

	roots := make([]string, 0, len(c.Library.Roots))
	for _, root := range c.Library.Roots {
		abs, err := filepath.Abs(root)
		if err != nil {
			return fmt.Errorf("failed to resolve library root %q: %w", root, err)
		}
		roots = append(roots, abs)
	}
	c.Library.Roots = roots

	blacklist := make([]string, 0, len(c.Library.Blacklist))
	for _, prefix := range c.Library.Blacklist {
		if abs, err := filepath.Abs(prefix); err == nil {
			blacklist = append(blacklist, abs)
		}
	}
	c.Library.Blacklist = blacklist

	return nil
}
