package startup

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/gorilla/mux"

	"github.com/fvacek/unplayer/internal/config"
)

func TestGetBuildInfo(t *testing.T) {
	info := GetBuildInfo()
	if info.Version != Version {
		t.Errorf("expected version %q, got %q", Version, info.Version)
	}
	if info.GoVersion == "" || info.OS == "" || info.Arch == "" {
		t.Errorf("expected populated build info, got %+v", info)
	}
}

func TestGetRoutes(t *testing.T) {
	r := mux.NewRouter()
	r.HandleFunc("/health", func(http.ResponseWriter, *http.Request) {}).Methods("GET")
	r.HandleFunc("/api/stats", func(http.ResponseWriter, *http.Request) {}).Methods("GET")
	r.HandleFunc("/api/library/scan", func(http.ResponseWriter, *http.Request) {}).Methods("POST")

	routes, err := GetRoutes(r)
	if err != nil {
		t.Fatalf("failed to walk routes: %v", err)
	}
	if len(routes) != 3 {
		t.Fatalf("expected 3 routes, got %d", len(routes))
	}
}

func TestGetRouteGroup(t *testing.T) {
	tests := []struct {
		path, want string
	}{
		{"/health", "health"},
		{"/api/stats", "api/stats"},
		{"/api/library/scan", "api/library"},
		{"/", ""},
	}
	for _, tt := range tests {
		if got := getRouteGroup(tt.path); got != tt.want {
			t.Errorf("getRouteGroup(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestAnnounceCreatesDirectories(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Config{
		DataDir:  filepath.Join(dir, "data"),
		CacheDir: filepath.Join(dir, "cache"),
	}

	if err := Announce(cfg); err != nil {
		t.Fatalf("announce failed: %v", err)
	}
	if info, err := os.Stat(cfg.DataDir); err != nil || !info.IsDir() {
		t.Errorf("expected data directory to be created: %v", err)
	}
	if info, err := os.Stat(cfg.MediaArtDir()); err != nil || !info.IsDir() {
		t.Errorf("expected media art directory to be created: %v", err)
	}
}

func TestEnsureDirectoryRejectsFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "not-a-dir")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := ensureDirectory(file, "test"); err == nil {
		t.Error("expected an error for a path that is a regular file")
	}
}
