package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("UNPLAYER_CONFIG_DIR", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if len(cfg.Library.Roots) != 0 {
		t.Errorf("Expected no default roots, got %v", cfg.Library.Roots)
	}
	if cfg.Library.PreferDirectoryArt {
		t.Error("Expected prefer_directory_art to default to false")
	}
	if cfg.Library.ScanInterval != 0 {
		t.Errorf("Expected zero scan interval, got %v", cfg.Library.ScanInterval)
	}
	if cfg.Server.Port != "8080" {
		t.Errorf("Expected default port 8080, got %s", cfg.Server.Port)
	}
	if !cfg.Server.MetricsEnabled {
		t.Error("Expected metrics enabled by default")
	}
	if !filepath.IsAbs(cfg.DataDir) {
		t.Errorf("Expected absolute data dir, got %s", cfg.DataDir)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("UNPLAYER_CONFIG_DIR", dir)

	content := `
library:
  roots:
    - /music
    - /more/music
  blacklist:
    - /music/podcasts
  prefer_directory_art: true
  scan_interval: 30m
server:
  port: "9000"
data_dir: /var/lib/unplayer
cache_dir: /var/cache/unplayer
`
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if len(cfg.Library.Roots) != 2 || cfg.Library.Roots[0] != "/music" {
		t.Errorf("Unexpected roots: %v", cfg.Library.Roots)
	}
	if len(cfg.Library.Blacklist) != 1 || cfg.Library.Blacklist[0] != "/music/podcasts" {
		t.Errorf("Unexpected blacklist: %v", cfg.Library.Blacklist)
	}
	if !cfg.Library.PreferDirectoryArt {
		t.Error("Expected prefer_directory_art=true")
	}
	if cfg.Library.ScanInterval != 30*time.Minute {
		t.Errorf("Expected 30m scan interval, got %v", cfg.Library.ScanInterval)
	}
	if cfg.Server.Port != "9000" {
		t.Errorf("Expected port 9000, got %s", cfg.Server.Port)
	}
	if got := cfg.DatabasePath(); got != "/var/lib/unplayer/library.sqlite" {
		t.Errorf("DatabasePath() = %s", got)
	}
	if got := cfg.MediaArtDir(); got != "/var/cache/unplayer/media-art" {
		t.Errorf("MediaArtDir() = %s", got)
	}
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("UNPLAYER_CONFIG_DIR", t.TempDir())
	t.Setenv("UNPLAYER_SERVER_PORT", "7070")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Server.Port != "7070" {
		t.Errorf("Expected env override port 7070, got %s", cfg.Server.Port)
	}
}
