package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/fvacek/unplayer/internal/library"
	"github.com/fvacek/unplayer/internal/logging"
)

// GetStats returns the library aggregates: artist, album and track
// counts plus the total duration in seconds.
func (h *Handlers) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.CalculateStats(r.Context())
	if err != nil {
		logging.Error("failed to calculate library stats: %v", err)
		writeJSONError(w, "failed to calculate library stats", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, stats)
}

// StatusResponse reports the reconciliation engine state.
type StatusResponse struct {
	Scanning bool   `json:"scanning"`
	LastScan string `json:"lastScan,omitempty"`
	Tracks   int    `json:"tracks"`
}

// GetScanStatus reports whether a scan is running, when the last one
// finished and how many tracks are indexed.
func (h *Handlers) GetScanStatus(w http.ResponseWriter, r *http.Request) {
	response := StatusResponse{Scanning: h.library.Scanning()}
	if last := h.library.LastScanTime(); !last.IsZero() {
		response.LastScan = last.Format(time.RFC3339)
	}
	if stats, err := h.store.CalculateStats(r.Context()); err != nil {
		logging.Warn("failed to count tracks for status: %v", err)
	} else {
		response.Tracks = stats.Tracks
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, response)
}

// TriggerScan starts a background scan. Returns 409 when one is
// already running.
func (h *Handlers) TriggerScan(w http.ResponseWriter, _ *http.Request) {
	if err := h.library.TriggerScan(); err != nil {
		if errors.Is(err, library.ErrAlreadyScanning) {
			writeJSONError(w, "scan already in progress", http.StatusConflict)
			return
		}
		logging.Error("failed to trigger scan: %v", err)
		writeJSONError(w, "failed to trigger scan", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	writeJSON(w, map[string]string{"status": "scan started"})
}

// ResetLibrary deletes every indexed track and the artwork cache.
func (h *Handlers) ResetLibrary(w http.ResponseWriter, r *http.Request) {
	if err := h.library.Reset(r.Context()); err != nil {
		logging.Error("failed to reset library: %v", err)
		writeJSONError(w, "failed to reset library", http.StatusInternalServerError)
		return
	}
	writeJSONStatus(w, "reset")
}
