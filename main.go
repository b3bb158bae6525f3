package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fvacek/unplayer/internal/config"
	"github.com/fvacek/unplayer/internal/database"
	"github.com/fvacek/unplayer/internal/handlers"
	"github.com/fvacek/unplayer/internal/library"
	"github.com/fvacek/unplayer/internal/logging"
	"github.com/fvacek/unplayer/internal/middleware"
	"github.com/fvacek/unplayer/internal/startup"
	"github.com/fvacek/unplayer/internal/tags"
)

func main() {
	startTime := time.Now()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		startup.LogFatal("Configuration error: %v", err)
	}
	logging.SetLevel(logging.ParseLevel(cfg.Logging.Level))

	if err := startup.Announce(cfg); err != nil {
		startup.LogFatal("Startup error: %v", err)
	}

	// Initialize database
	dbStart := time.Now()
	store, err := database.Open(context.Background(), cfg.DatabasePath())
	if err != nil {
		startup.LogFatal("Failed to initialize database: %v", err)
	}
	defer store.Close()
	startup.LogDatabaseInit(time.Since(dbStart), store.CreatedTable())

	// Initialize the reconciliation engine
	startup.LogLibraryInit(cfg.Library.ScanInterval)
	lib := library.New(store, tags.New(), library.Config{
		Roots:              cfg.Library.Roots,
		Blacklist:          cfg.Library.Blacklist,
		PreferDirectoryArt: cfg.Library.PreferDirectoryArt,
		MediaArtDir:        cfg.MediaArtDir(),
		ScanInterval:       cfg.Library.ScanInterval,
	})
	lib.SetOnScanStateChanged(func(scanning bool) {
		logging.Debug("scan state changed: scanning=%v", scanning)
	})
	lib.SetOnDatabaseChanged(func() {
		logging.Debug("track database changed")
	})

	// Kick off the initial scan in the background and start the
	// periodic rescan loop.
	if err := lib.TriggerScan(); err != nil {
		logging.Error("Failed to start initial scan: %v", err)
	}
	lib.Start()
	startup.LogLibraryStarted()

	// Initialize handlers
	h := handlers.New(store, lib)

	// Setup router
	router := setupRouter(h, cfg.Server.MetricsEnabled)
	startup.LogHTTPRoutes(router)

	// Apply metrics and logging middleware
	handler := middleware.Logger(middleware.DefaultLoggingConfig())(router)
	handler = middleware.Metrics(middleware.DefaultMetricsConfig())(handler)

	// Create server
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start graceful shutdown handler
	go handleShutdown(srv, lib)

	// Start server
	startup.LogServerStarted(cfg.Server.Port, cfg.Server.MetricsEnabled, time.Since(startTime))
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		startup.LogFatal("Server error: %v", err)
	}
}

func setupRouter(h *handlers.Handlers, metricsEnabled bool) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/health", h.HealthCheck).Methods("GET")
	r.HandleFunc("/healthz", h.HealthCheck).Methods("GET")
	r.HandleFunc("/version", h.GetVersion).Methods("GET")

	if metricsEnabled {
		r.Handle("/metrics", promhttp.Handler()).Methods("GET")
	}

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/stats", h.GetStats).Methods("GET")
	api.HandleFunc("/art/random", h.GetRandomArt).Methods("GET")
	api.HandleFunc("/art", h.AssignArt).Methods("POST")
	api.HandleFunc("/library/scan", h.TriggerScan).Methods("POST")
	api.HandleFunc("/library/status", h.GetScanStatus).Methods("GET")
	api.HandleFunc("/library/reset", h.ResetLibrary).Methods("POST")

	return r
}

func handleShutdown(srv *http.Server, lib *library.Library) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	startup.LogShutdownInitiated(sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	startup.LogShutdownStep("Stopping library")
	lib.Stop()
	startup.LogShutdownStepComplete("Library stopped, partial scan progress committed")

	startup.LogShutdownStep("Shutting down HTTP server")
	if err := srv.Shutdown(ctx); err != nil {
		logging.Warn("Server shutdown error: %v", err)
	} else {
		startup.LogShutdownStepComplete("HTTP server stopped")
	}

	startup.LogShutdownComplete()
}
