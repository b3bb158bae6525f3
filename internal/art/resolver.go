package art

import (
	"crypto/md5"
	"encoding/hex"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/fvacek/unplayer/internal/logging"
	"github.com/fvacek/unplayer/internal/metrics"
	"github.com/fvacek/unplayer/internal/mimesniff"
)

// dirArtPattern matches image files conventionally used as directory
// artwork, case-insensitively.
var dirArtPattern = regexp.MustCompile(`(?i)^(albumart.*|cover|folder|front)\.(jpeg|jpg|png)$`)

// embeddedSuffix marks cache files written from embedded artwork. The
// part before it is the md5 of the file's content, which makes the
// file name a pure function of the bytes.
const embeddedSuffix = "-embedded"

// Resolver decides which artwork a track gets and persists embedded
// artwork into the cache. Its memoization maps are scan-scoped: one
// Resolver serves exactly one scan.
type Resolver struct {
	cacheDir        string
	preferDirectory bool

	// directory path -> sibling art path, "" caching a negative result
	dirArt map[string]string
	// md5 hex -> cache file path, seeded from disk at construction
	embedded map[string]string
}

// NewResolver creates a Resolver for one scan. The cache directory is
// created if missing and its pre-existing embedded files are indexed so
// already-cached artwork is reused without a write.
func NewResolver(cacheDir string, preferDirectory bool) *Resolver {
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		logging.Warn("failed to create media art directory %s: %v", cacheDir, err)
	}

	r := &Resolver{
		cacheDir:        cacheDir,
		preferDirectory: preferDirectory,
		dirArt:          make(map[string]string),
		embedded:        make(map[string]string),
	}

	matches, err := filepath.Glob(filepath.Join(cacheDir, "*"+embeddedSuffix+".*"))
	if err != nil {
		logging.Warn("failed to index media art directory: %v", err)
		return r
	}
	for _, path := range matches {
		base := filepath.Base(path)
		if i := strings.Index(base, embeddedSuffix); i > 0 {
			r.embedded[base[:i]] = path
		}
	}
	return r
}

// Resolve returns the artwork path for a track, or an empty string for
// no artwork. embedded holds the raw image bytes from the file's tags,
// if any.
func (r *Resolver) Resolve(embedded []byte, filePath string) string {
	dir := filepath.Dir(filePath)
	if r.preferDirectory {
		if art := r.DirectoryArt(dir); art != "" {
			return art
		}
		if len(embedded) > 0 {
			return r.saveEmbedded(embedded)
		}
		return ""
	}

	if len(embedded) == 0 {
		return r.DirectoryArt(dir)
	}
	return r.saveEmbedded(embedded)
}

// DirectoryArt returns the first image in dir matching the artwork
// name pattern, memoized per directory including negative results.
func (r *Resolver) DirectoryArt(dir string) string {
	if art, ok := r.dirArt[dir]; ok {
		return art
	}

	art := ""
	entries, err := os.ReadDir(dir)
	if err == nil {
		for _, entry := range entries {
			if !entry.Type().IsRegular() || !dirArtPattern.MatchString(entry.Name()) {
				continue
			}
			candidate := filepath.Join(dir, entry.Name())
			f, err := os.Open(candidate)
			if err != nil {
				continue
			}
			f.Close()
			art = candidate
			break
		}
	}

	r.dirArt[dir] = art
	return art
}

// saveEmbedded persists embedded artwork bytes under their content
// hash, reusing an existing file for identical content. Returns an
// empty string when the image type cannot be determined or the write
// fails.
func (r *Resolver) saveEmbedded(data []byte) string {
	sum := md5.Sum(data)
	hash := hex.EncodeToString(sum[:])

	if path, ok := r.embedded[hash]; ok {
		return path
	}

	_, ext := mimesniff.ForData(data)
	if ext == "" {
		return ""
	}

	path := filepath.Join(r.cacheDir, hash+embeddedSuffix+ext)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		logging.Warn("failed to write media art file %s: %v", path, err)
		return ""
	}

	r.embedded[hash] = path
	metrics.ArtFilesWritten.Inc()
	return path
}

// IsCachePath reports whether path points into the artwork cache
// directory, meaning the file was written by us (embedded or manual)
// rather than found next to the music.
func (r *Resolver) IsCachePath(path string) bool {
	return path != "" && strings.HasPrefix(path, r.cacheDir+string(os.PathSeparator))
}

// IsEmbeddedPath reports whether a cache path carries the embedded
// content-hash naming. A cache path without it is manually assigned
// artwork.
func IsEmbeddedPath(path string) bool {
	return strings.Contains(filepath.Base(path), embeddedSuffix)
}

// SweepOrphans deletes every file in the cache directory whose path is
// not in live, returning the number removed.
func (r *Resolver) SweepOrphans(live map[string]struct{}) int {
	entries, err := os.ReadDir(r.cacheDir)
	if err != nil {
		logging.Warn("failed to read media art directory: %v", err)
		return 0
	}

	removed := 0
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		path := filepath.Join(r.cacheDir, entry.Name())
		if _, ok := live[path]; ok {
			continue
		}
		if err := os.Remove(path); err != nil {
			logging.Warn("failed to remove orphaned art file %s: %v", path, err)
			continue
		}
		removed++
	}
	if removed > 0 {
		metrics.ArtFilesRemoved.Add(float64(removed))
	}
	return removed
}
