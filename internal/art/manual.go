package art

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"

	"github.com/fvacek/unplayer/internal/metrics"
)

// Assign copies a user-chosen image into the cache under a fresh random
// name and returns the new path. The UUID name (no "-embedded" marker)
// is what protects the file from automatic re-resolution. The source
// must decode as an image; a failed copy leaves no partial file behind.
func Assign(cacheDir, src string) (string, error) {
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create media art directory: %w", err)
	}

	if _, err := imaging.Open(src); err != nil {
		return "", fmt.Errorf("%s is not a usable image: %w", src, err)
	}

	ext := filepath.Ext(src)
	dst := filepath.Join(cacheDir, uuid.NewString()+ext)

	if err := copyFile(src, dst); err != nil {
		if removeErr := os.Remove(dst); removeErr != nil && !os.IsNotExist(removeErr) {
			return "", fmt.Errorf("failed to copy artwork: %w (and clean up: %v)", err, removeErr)
		}
		return "", fmt.Errorf("failed to copy artwork: %w", err)
	}

	metrics.ArtFilesWritten.Inc()
	return dst, nil
}

// RemoveCache recursively deletes the artwork cache directory. Used by
// the full library reset.
func RemoveCache(cacheDir string) error {
	return os.RemoveAll(cacheDir)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
