package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestLoggerPassesThrough(t *testing.T) {
	called := false
	handler := Logger(DefaultLoggingConfig())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/stats", nil))

	if !called {
		t.Fatal("expected wrapped handler to be called")
	}
	if rec.Code != http.StatusTeapot {
		t.Errorf("expected status %d, got %d", http.StatusTeapot, rec.Code)
	}
}

func TestResponseWriterCapturesStatusAndBytes(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := newResponseWriter(rec)

	rw.WriteHeader(http.StatusNotFound)
	rw.WriteHeader(http.StatusOK)
	if _, err := rw.Write([]byte("nope")); err != nil {
		t.Fatal(err)
	}

	if rw.statusCode != http.StatusNotFound {
		t.Errorf("expected first status to stick, got %d", rw.statusCode)
	}
	if rw.bytesWritten != 4 {
		t.Errorf("expected 4 bytes, got %d", rw.bytesWritten)
	}
}

func TestSanitizeLogField(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"plain", "plain"},
		{"line1\nline2", "line1 line2"},
		{"esc\x1b[31mred", "esc[31mred"},
		{"nul\x00byte", "nulbyte"},
		{"tab\tok", "tab\tok"},
	}
	for _, tt := range tests {
		if got := sanitizeLogField(tt.in); got != tt.want {
			t.Errorf("sanitizeLogField(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestGetClientIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "10.0.0.1:4321"
	if got := getClientIP(r); got != "10.0.0.1" {
		t.Errorf("expected remote addr ip, got %q", got)
	}

	r.Header.Set("X-Real-IP", "10.0.0.2")
	if got := getClientIP(r); got != "10.0.0.2" {
		t.Errorf("expected X-Real-IP, got %q", got)
	}

	r.Header.Set("X-Forwarded-For", "10.0.0.3, 10.0.0.4")
	if got := getClientIP(r); got != "10.0.0.3" {
		t.Errorf("expected first X-Forwarded-For entry, got %q", got)
	}
}

func TestShouldSkip(t *testing.T) {
	cfg := LoggingConfig{SkipPaths: []string{"/metrics"}, LogHealthChecks: false}
	if !shouldSkip("/metrics", cfg) {
		t.Error("expected /metrics to be skipped")
	}
	if !shouldSkip("/health", cfg) {
		t.Error("expected /health to be skipped when health logging is off")
	}
	if shouldSkip("/api/stats", cfg) {
		t.Error("expected /api/stats to be logged")
	}
}

func TestMetricsMiddlewarePassesThrough(t *testing.T) {
	handler := Metrics(DefaultMetricsConfig())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/library/scan", nil))
	if rec.Code != http.StatusAccepted {
		t.Errorf("expected status %d, got %d", http.StatusAccepted, rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusAccepted {
		t.Errorf("expected skipped path to pass through, got %d", rec.Code)
	}
}
