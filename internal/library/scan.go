package library

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/fvacek/unplayer/internal/art"
	"github.com/fvacek/unplayer/internal/audiotypes"
	"github.com/fvacek/unplayer/internal/database"
	"github.com/fvacek/unplayer/internal/logging"
	"github.com/fvacek/unplayer/internal/metrics"
)

// noMediaMarker excludes a directory's contents from indexing.
const noMediaMarker = ".nomedia"

// errScanCancelled aborts the walk when shutdown is requested.
var errScanCancelled = errors.New("scan cancelled")

type scanResult struct {
	inserted   int
	updated    int
	removed    int
	artUpdated int
	artSwept   int
}

func (r scanResult) changed() bool {
	return r.inserted+r.updated+r.removed > 0
}

// scanContext carries the scan-scoped state: the transaction, the art
// resolver and the memoization caches. It lives for exactly one scan.
type scanContext struct {
	lib      *Library
	ctx      context.Context
	tx       *database.ScanTx
	resolver *art.Resolver

	// roots and blacklist carry a trailing separator so prefix checks
	// cannot match sibling directories with a shared name prefix.
	roots     []string
	blacklist []string
	noMedia   map[string]bool

	idByPath  map[string]int
	modTimes  map[int]int64
	artByID   map[int]string
	artExists map[string]bool
	lastID    int

	toRemove   []int
	missingArt int

	result scanResult
}

// reconcile performs one full reconciliation pass. Only failure to
// open the transaction or to read the pre-scan row set aborts it;
// every later failure degrades to a logged skip.
func (l *Library) reconcile() (scanResult, error) {
	ctx := context.Background()

	tx, err := l.store.BeginScan(ctx)
	if err != nil {
		return scanResult{}, err
	}

	rows, err := tx.LoadTracks(ctx)
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logging.Error("failed to roll back scan transaction: %v", rbErr)
		}
		return scanResult{}, err
	}

	sc := &scanContext{
		lib:       l,
		ctx:       ctx,
		tx:        tx,
		resolver:  art.NewResolver(l.cfg.MediaArtDir, l.cfg.PreferDirectoryArt),
		roots:     prefixDirs(l.cfg.Roots),
		blacklist: prefixDirs(l.cfg.Blacklist),
		noMedia:   make(map[string]bool),
		idByPath:  make(map[string]int),
		modTimes:  make(map[int]int64),
		artByID:   make(map[int]string),
		artExists: make(map[string]bool),
		lastID:    -1,
	}

	sc.classifyExisting(rows)

	cancelled := sc.walk()
	if cancelled {
		// Shutdown mid-walk: commit what has been written so far, the
		// transaction holds only already-validated statements.
		logging.Warn("shutdown requested, committing partial scan")
	} else {
		sc.cleanup()
	}

	if err := tx.Commit(); err != nil {
		return scanResult{}, err
	}
	return sc.result, nil
}

// prefixDirs deduplicates and normalizes directories into prefix form
// with a trailing separator.
func prefixDirs(dirs []string) []string {
	seen := make(map[string]bool, len(dirs))
	out := make([]string, 0, len(dirs))
	for _, dir := range dirs {
		p := filepath.Clean(dir)
		if !strings.HasSuffix(p, string(os.PathSeparator)) {
			p += string(os.PathSeparator)
		}
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	return out
}

func (sc *scanContext) underRoot(path string) bool {
	for _, root := range sc.roots {
		if strings.HasPrefix(path, root) {
			return true
		}
	}
	return false
}

func (sc *scanContext) isBlacklisted(path string) bool {
	for _, prefix := range sc.blacklist {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// isNoMediaDir reports whether a directory carries the no-scan marker,
// memoized per directory for the scan.
func (sc *scanContext) isNoMediaDir(dir string) bool {
	if noMedia, ok := sc.noMedia[dir]; ok {
		return noMedia
	}
	info, err := os.Stat(filepath.Join(dir, noMediaMarker))
	noMedia := err == nil && info.Mode().IsRegular()
	sc.noMedia[dir] = noMedia
	return noMedia
}

// classifyExisting splits the pre-scan row set into rows to keep
// (indexed by path for the walk) and rows to delete because their file
// vanished, became unreadable, or fell outside the configured roots.
// It also verifies referenced artwork files and tracks the highest id
// for allocation.
func (sc *scanContext) classifyExisting(rows []database.TrackRow) {
	for _, row := range rows {
		sc.lastID = row.ID

		remove := false
		info, err := os.Stat(row.Path)
		switch {
		case err != nil || info.IsDir() || !info.Mode().IsRegular():
			remove = true
		case !sc.underRoot(row.Path):
			remove = true
		case sc.isBlacklisted(row.Path):
			remove = true
		case sc.isNoMediaDir(filepath.Dir(row.Path)):
			remove = true
		}

		if remove {
			sc.toRemove = append(sc.toRemove, row.ID)
			continue
		}

		sc.idByPath[row.Path] = row.ID
		sc.modTimes[row.ID] = row.ModTime

		if row.ArtPath == "" {
			sc.artByID[row.ID] = ""
			continue
		}
		exists, checked := sc.artExists[row.ArtPath]
		if !checked {
			_, statErr := os.Stat(row.ArtPath)
			exists = statErr == nil
			sc.artExists[row.ArtPath] = exists
			if !exists {
				sc.missingArt++
			}
		}
		// A row whose art file is gone gets no artByID entry, which
		// marks it for re-resolution in the unchanged branch.
		if exists {
			sc.artByID[row.ID] = row.ArtPath
		}
	}
}

// walk visits every file below every root, returning true when the
// scan was cancelled.
func (sc *scanContext) walk() bool {
	for _, root := range sc.lib.cfg.Roots {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if sc.lib.cancelled() {
				return errScanCancelled
			}
			if err != nil {
				logging.Warn("error accessing %s: %v", path, err)
				if d != nil && d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if d.IsDir() || !d.Type().IsRegular() {
				return nil
			}
			info, err := d.Info()
			if err != nil {
				logging.Warn("error reading file info of %s: %v", path, err)
				return nil
			}
			sc.processFile(path, info)
			return nil
		})
		if errors.Is(err, errScanCancelled) {
			return true
		}
		if err != nil {
			logging.Warn("error walking %s: %v", root, err)
		}
	}
	return false
}

// processFile applies the per-file transition: insert when new, leave
// or refresh artwork when unchanged, re-extract when changed.
func (sc *scanContext) processFile(path string, info fs.FileInfo) {
	id, inDB := sc.idByPath[path]
	if !inDB {
		sc.processNewFile(path, info)
		return
	}

	modTime := info.ModTime().UnixMilli()
	if modTime == sc.modTimes[id] {
		sc.refreshArt(id, path)
		return
	}
	sc.processChangedFile(id, path, modTime)
}

func (sc *scanContext) processNewFile(path string, info fs.FileInfo) {
	if sc.isNoMediaDir(filepath.Dir(path)) {
		return
	}
	if sc.isBlacklisted(path) {
		return
	}
	if !audiotypes.HasAudioExtension(path) {
		return
	}
	mimeType := sc.lib.classify(path)
	if !audiotypes.SupportedMime(mimeType) {
		return
	}

	trackInfo, err := sc.lib.reader.Extract(path, mimeType)
	if err != nil {
		logging.Warn("no usable metadata in %s: %v", path, err)
		return
	}

	sc.lastID++
	artPath := sc.resolver.Resolve(trackInfo.ArtData, path)
	if err := sc.tx.InsertTracks(sc.ctx, sc.lastID, path, info.ModTime().UnixMilli(), trackInfo, artPath); err != nil {
		logging.Error("failed to index %s: %v", path, err)
		metrics.ScanErrorsTotal.Inc()
		return
	}
	sc.result.inserted++
}

func (sc *scanContext) processChangedFile(id int, path string, modTime int64) {
	mimeType := sc.lib.classify(path)
	if !audiotypes.SupportedMime(mimeType) {
		sc.toRemove = append(sc.toRemove, id)
		return
	}
	trackInfo, err := sc.lib.reader.Extract(path, mimeType)
	if err != nil {
		logging.Warn("no usable metadata in changed file %s, removing: %v", path, err)
		sc.toRemove = append(sc.toRemove, id)
		return
	}

	if err := sc.tx.DeleteTracks(sc.ctx, []int{id}); err != nil {
		logging.Error("failed to replace track %d: %v", id, err)
		metrics.ScanErrorsTotal.Inc()
		return
	}
	artPath := sc.resolver.Resolve(trackInfo.ArtData, path)
	if err := sc.tx.InsertTracks(sc.ctx, id, path, modTime, trackInfo, artPath); err != nil {
		logging.Error("failed to re-index %s: %v", path, err)
		metrics.ScanErrorsTotal.Inc()
		return
	}
	sc.result.updated++
}

// refreshArt applies the unchanged-file artwork rules. Rows whose
// stored art is empty, external (outside the cache directory) or
// manually assigned are left alone; embedded art is re-derived only
// when directory art is preferred, and never replaced by an empty
// resolution. A row whose art file vanished is always re-derived.
func (sc *scanContext) refreshArt(id int, path string) {
	artPath, ok := sc.artByID[id]
	deleted := !ok

	isCache := sc.resolver.IsCachePath(artPath)
	embedded := isCache && art.IsEmbeddedPath(artPath)
	manual := isCache && !embedded

	if !deleted {
		if artPath == "" || manual || !isCache {
			return
		}
		if embedded && !sc.lib.cfg.PreferDirectoryArt {
			return
		}
	}

	// A still-cached embedded file already holds the embedded bytes;
	// re-extract only when that file vanished or the art came from
	// elsewhere.
	var data []byte
	if !embedded || deleted {
		if trackInfo, err := sc.lib.reader.Extract(path, sc.lib.classify(path)); err == nil {
			data = trackInfo.ArtData
		}
	}

	newArt := sc.resolver.Resolve(data, path)
	if embedded && newArt == "" {
		return
	}
	if newArt == artPath {
		return
	}
	if err := sc.tx.UpdateArt(sc.ctx, id, newArt); err != nil {
		logging.Error("failed to update artwork of track %d: %v", id, err)
		metrics.ScanErrorsTotal.Inc()
		return
	}
	sc.result.artUpdated++
}

// cleanup runs the post-walk phase: batch-delete marked rows, nullify
// references to vanished artwork and sweep the cache for orphans.
func (sc *scanContext) cleanup() {
	if len(sc.toRemove) > 0 {
		logging.Debug("removing %d tracks from the index", len(sc.toRemove))
		if err := sc.tx.DeleteTracks(sc.ctx, sc.toRemove); err != nil {
			logging.Error("failed to remove tracks: %v", err)
			metrics.ScanErrorsTotal.Inc()
		} else {
			sc.result.removed = len(sc.toRemove)
		}
	}

	if sc.missingArt > 0 {
		gone := make([]string, 0, sc.missingArt)
		for p, exists := range sc.artExists {
			if !exists {
				gone = append(gone, p)
			}
		}
		if err := sc.tx.NullifyArt(sc.ctx, gone); err != nil {
			logging.Error("failed to clear vanished artwork references: %v", err)
			metrics.ScanErrorsTotal.Inc()
		}
	}

	live, err := sc.tx.DistinctArtPaths(sc.ctx)
	if err != nil {
		logging.Error("failed to list referenced artwork: %v", err)
		metrics.ScanErrorsTotal.Inc()
		return
	}
	sc.result.artSwept = sc.resolver.SweepOrphans(live)
}
