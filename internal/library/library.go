package library

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/fvacek/unplayer/internal/art"
	"github.com/fvacek/unplayer/internal/database"
	"github.com/fvacek/unplayer/internal/logging"
	"github.com/fvacek/unplayer/internal/metrics"
	"github.com/fvacek/unplayer/internal/mimesniff"
	"github.com/fvacek/unplayer/internal/tags"
)

// ErrAlreadyScanning is returned when a scan is requested while one is
// in progress.
var ErrAlreadyScanning = errors.New("library scan already in progress")

// Config holds the scan policy for a Library.
type Config struct {
	Roots              []string
	Blacklist          []string
	PreferDirectoryArt bool
	MediaArtDir        string

	// ScanInterval enables periodic rescans when non-zero.
	ScanInterval time.Duration
}

// Library is the reconciliation engine. Construct one with New and
// share the handle; there is no ambient singleton.
type Library struct {
	store    *database.Store
	reader   tags.Reader
	classify func(path string) string
	cfg      Config

	mu       sync.Mutex
	scanning bool
	lastScan time.Time

	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	onScanState       func(bool)
	onDatabaseChanged func()
	onArtChanged      func()
}

// New creates a Library over the given store and tag reader.
func New(store *database.Store, reader tags.Reader, cfg Config) *Library {
	return &Library{
		store:    store,
		reader:   reader,
		classify: mimesniff.ByContent,
		cfg:      cfg,
		stopChan: make(chan struct{}),
	}
}

// SetClassifier replaces the content classifier. Used by tests.
func (l *Library) SetClassifier(fn func(path string) string) {
	l.classify = fn
}

// SetOnScanStateChanged registers a callback fired when a scan starts
// (true) and finishes (false).
func (l *Library) SetOnScanStateChanged(fn func(bool)) {
	l.onScanState = fn
}

// SetOnDatabaseChanged registers a callback fired after a scan or
// reset has committed changes to the index.
func (l *Library) SetOnDatabaseChanged(fn func()) {
	l.onDatabaseChanged = fn
}

// SetOnArtChanged registers a callback fired when artwork may have
// changed.
func (l *Library) SetOnArtChanged(fn func()) {
	l.onArtChanged = fn
}

// Start launches the periodic rescan loop when a scan interval is
// configured.
func (l *Library) Start() {
	if l.cfg.ScanInterval <= 0 {
		return
	}
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		ticker := time.NewTicker(l.cfg.ScanInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				logging.Debug("periodic rescan triggered")
				if err := l.Scan(); err != nil && !errors.Is(err, ErrAlreadyScanning) {
					logging.Error("periodic rescan failed: %v", err)
				}
			case <-l.stopChan:
				return
			}
		}
	}()
}

// Stop requests cancellation of any in-flight scan and waits for it to
// commit its partial progress. Safe to call more than once.
func (l *Library) Stop() {
	l.stopOnce.Do(func() { close(l.stopChan) })
	l.wg.Wait()
}

// Scanning reports whether a scan is in progress.
func (l *Library) Scanning() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.scanning
}

// LastScanTime returns the completion time of the last scan, zero if
// none has finished yet.
func (l *Library) LastScanTime() time.Time {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lastScan
}

// TriggerScan starts a scan in the background. Returns
// ErrAlreadyScanning when one is in flight.
func (l *Library) TriggerScan() error {
	if !l.tryStartScan() {
		return ErrAlreadyScanning
	}
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		l.scan()
	}()
	return nil
}

// Scan runs a scan synchronously. Returns ErrAlreadyScanning when one
// is in flight.
func (l *Library) Scan() error {
	if !l.tryStartScan() {
		logging.Info("scan already in progress, skipping")
		return ErrAlreadyScanning
	}
	return l.scan()
}

// tryStartScan enforces the at-most-one-scan invariant.
func (l *Library) tryStartScan() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.scanning {
		return false
	}
	l.scanning = true
	return true
}

func (l *Library) finishScan() {
	l.mu.Lock()
	l.scanning = false
	l.lastScan = time.Now()
	l.mu.Unlock()
}

// scan runs one reconciliation pass; the scanning flag is already set.
func (l *Library) scan() error {
	defer l.finishScan()

	metrics.ScanRunsTotal.Inc()
	metrics.ScanIsRunning.Set(1)
	defer metrics.ScanIsRunning.Set(0)

	l.notifyScanState(true)
	defer l.notifyScanState(false)

	start := time.Now()
	logging.Info("starting library scan")

	result, err := l.reconcile()
	if err != nil {
		metrics.ScanErrorsTotal.Inc()
		logging.Error("library scan failed: %v", err)
		return err
	}

	duration := time.Since(start)
	metrics.ScanLastRunTimestamp.Set(float64(time.Now().Unix()))
	metrics.ScanLastRunDuration.Set(duration.Seconds())
	metrics.TracksInserted.Add(float64(result.inserted))
	metrics.TracksUpdated.Add(float64(result.updated))
	metrics.TracksRemoved.Add(float64(result.removed))

	logging.Info("library scan done in %v: %d inserted, %d updated, %d removed, %d art files swept",
		duration, result.inserted, result.updated, result.removed, result.artSwept)

	if result.changed() || result.artUpdated > 0 {
		l.notifyDatabaseChanged()
	}
	l.notifyArtChanged()
	return nil
}

// AssignArt copies an image into the artwork cache, points every track
// of the given artist and album at it and returns the cached path. A
// failed copy leaves the index untouched.
func (l *Library) AssignArt(ctx context.Context, artist, album, imagePath string) (string, error) {
	cached, err := art.Assign(l.cfg.MediaArtDir, imagePath)
	if err != nil {
		return "", err
	}
	if err := l.store.SetTrackArt(ctx, artist, album, cached); err != nil {
		return "", err
	}
	l.notifyArtChanged()
	return cached, nil
}

// Reset deletes every indexed track and the whole artwork cache.
func (l *Library) Reset(ctx context.Context) error {
	if err := l.store.ResetAll(ctx); err != nil {
		return err
	}
	if err := art.RemoveCache(l.cfg.MediaArtDir); err != nil {
		return fmt.Errorf("failed to remove media art directory: %w", err)
	}
	l.notifyDatabaseChanged()
	l.notifyArtChanged()
	return nil
}

func (l *Library) notifyScanState(scanning bool) {
	if l.onScanState != nil {
		l.onScanState(scanning)
	}
}

func (l *Library) notifyDatabaseChanged() {
	if l.onDatabaseChanged != nil {
		l.onDatabaseChanged()
	}
}

func (l *Library) notifyArtChanged() {
	if l.onArtChanged != nil {
		l.onArtChanged()
	}
}

// cancelled reports whether shutdown was requested. Polled once per
// visited file.
func (l *Library) cancelled() bool {
	select {
	case <-l.stopChan:
		return true
	default:
		return false
	}
}
