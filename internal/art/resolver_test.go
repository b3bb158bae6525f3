package art

import (
	"bytes"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

var pngHeader = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}

// embeddedBytes returns fake embedded artwork that sniffs as PNG.
func embeddedBytes(seed byte) []byte {
	return append(append([]byte{}, pngHeader...), seed, seed+1, seed+2)
}

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

func TestResolvePrecedence(t *testing.T) {
	musicDir := t.TempDir()
	folderArt := filepath.Join(musicDir, "folder.jpg")
	writeFile(t, folderArt, []byte("jpg"))
	track := filepath.Join(musicDir, "song.mp3")
	embedded := embeddedBytes(1)

	r := NewResolver(t.TempDir(), true)
	if got := r.Resolve(embedded, track); got != folderArt {
		t.Errorf("preferDirectory=true: Resolve() = %q, want %q", got, folderArt)
	}

	r = NewResolver(t.TempDir(), false)
	got := r.Resolve(embedded, track)
	if got == folderArt || got == "" {
		t.Errorf("preferDirectory=false: Resolve() = %q, want embedded cache path", got)
	}
	if !IsEmbeddedPath(got) {
		t.Errorf("Resolve() = %q, want embedded-hash name", got)
	}
}

func TestResolveFallbacks(t *testing.T) {
	musicDir := t.TempDir()
	track := filepath.Join(musicDir, "song.mp3")

	// Directory preferred but empty: fall back to embedded.
	r := NewResolver(t.TempDir(), true)
	if got := r.Resolve(embeddedBytes(1), track); got == "" || !IsEmbeddedPath(got) {
		t.Errorf("expected embedded fallback, got %q", got)
	}

	// Embedded preferred but absent: fall back to directory.
	folderArt := filepath.Join(musicDir, "cover.png")
	writeFile(t, folderArt, []byte("png"))
	r = NewResolver(t.TempDir(), false)
	if got := r.Resolve(nil, track); got != folderArt {
		t.Errorf("expected directory fallback %q, got %q", folderArt, got)
	}

	// Neither source: no artwork.
	r = NewResolver(t.TempDir(), false)
	if got := r.Resolve(nil, filepath.Join(t.TempDir(), "b.mp3")); got != "" {
		t.Errorf("expected no artwork, got %q", got)
	}
}

func TestContentAddressing(t *testing.T) {
	cacheDir := t.TempDir()
	track := filepath.Join(t.TempDir(), "song.mp3")

	r := NewResolver(cacheDir, false)
	first := r.Resolve(embeddedBytes(1), track)
	second := r.Resolve(embeddedBytes(1), track)
	if first == "" || first != second {
		t.Errorf("identical bytes resolved to %q and %q, want one shared path", first, second)
	}

	other := r.Resolve(embeddedBytes(9), track)
	if other == first {
		t.Error("different bytes resolved to the same cache file")
	}

	entries, err := os.ReadDir(cacheDir)
	if err != nil {
		t.Fatalf("failed to read cache dir: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("Expected 2 cache files, got %d", len(entries))
	}

	// A later scan indexes the existing files and reuses them.
	r2 := NewResolver(cacheDir, false)
	if got := r2.Resolve(embeddedBytes(1), track); got != first {
		t.Errorf("new scan resolved to %q, want pre-existing %q", got, first)
	}
	entries, _ = os.ReadDir(cacheDir)
	if len(entries) != 2 {
		t.Errorf("Expected still 2 cache files, got %d", len(entries))
	}
}

func TestUnknownContentYieldsNoArt(t *testing.T) {
	r := NewResolver(t.TempDir(), false)
	got := r.Resolve([]byte{0x00, 0x01, 0x02, 0x03}, filepath.Join(t.TempDir(), "song.mp3"))
	if got != "" {
		t.Errorf("Resolve() with unidentifiable bytes = %q, want empty", got)
	}
}

func TestDirectoryArtPattern(t *testing.T) {
	tests := []struct {
		name    string
		matches bool
	}{
		{"folder.jpg", true},
		{"Folder.JPG", true},
		{"cover.png", true},
		{"front.jpeg", true},
		{"albumart.jpg", true},
		{"albumart_large.png", true},
		{"front.gif", false},
		{"back.jpg", false},
		{"folder.jpg.txt", false},
	}

	for _, tt := range tests {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, tt.name), []byte("img"))
		r := NewResolver(t.TempDir(), false)
		got := r.DirectoryArt(dir)
		if tt.matches && got == "" {
			t.Errorf("DirectoryArt() did not match %q", tt.name)
		}
		if !tt.matches && got != "" {
			t.Errorf("DirectoryArt() matched %q as %q", tt.name, got)
		}
	}
}

func TestDirectoryArtNegativeCaching(t *testing.T) {
	dir := t.TempDir()
	r := NewResolver(t.TempDir(), false)

	if got := r.DirectoryArt(dir); got != "" {
		t.Fatalf("DirectoryArt() on empty dir = %q, want empty", got)
	}

	// The art file appears after the first lookup; the memoized
	// negative result must hold for the rest of the scan.
	writeFile(t, filepath.Join(dir, "cover.jpg"), []byte("img"))
	if got := r.DirectoryArt(dir); got != "" {
		t.Errorf("DirectoryArt() after negative cache = %q, want empty", got)
	}
}

func TestIsCachePath(t *testing.T) {
	cacheDir := t.TempDir()
	r := NewResolver(cacheDir, false)

	if !r.IsCachePath(filepath.Join(cacheDir, "abc-embedded.png")) {
		t.Error("expected cache path to be recognized")
	}
	if r.IsCachePath("/music/folder.jpg") {
		t.Error("expected external path to be rejected")
	}
	if r.IsCachePath("") {
		t.Error("expected empty path to be rejected")
	}
}

func TestIsEmbeddedPath(t *testing.T) {
	if !IsEmbeddedPath("/cache/media-art/0a1b-embedded.png") {
		t.Error("expected embedded name to be recognized")
	}
	if IsEmbeddedPath("/cache/media-art/9f8e7d6c-uuid.png") {
		t.Error("expected uuid name to be rejected")
	}
}

func TestSweepOrphans(t *testing.T) {
	cacheDir := t.TempDir()
	keep := filepath.Join(cacheDir, "keep-embedded.png")
	orphan := filepath.Join(cacheDir, "orphan-embedded.png")
	writeFile(t, keep, []byte("a"))
	writeFile(t, orphan, []byte("b"))

	r := NewResolver(cacheDir, false)
	removed := r.SweepOrphans(map[string]struct{}{keep: {}})
	if removed != 1 {
		t.Errorf("SweepOrphans() = %d, want 1", removed)
	}
	if _, err := os.Stat(keep); err != nil {
		t.Errorf("referenced file was removed: %v", err)
	}
	if _, err := os.Stat(orphan); !os.IsNotExist(err) {
		t.Error("orphaned file still exists")
	}
}

func TestAssign(t *testing.T) {
	cacheDir := t.TempDir()

	src := filepath.Join(t.TempDir(), "album.png")
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2))); err != nil {
		t.Fatalf("failed to encode test image: %v", err)
	}
	writeFile(t, src, buf.Bytes())

	dst, err := Assign(cacheDir, src)
	if err != nil {
		t.Fatalf("Assign() error: %v", err)
	}
	if filepath.Dir(dst) != cacheDir {
		t.Errorf("Assign() placed file at %q, want inside %q", dst, cacheDir)
	}
	if filepath.Ext(dst) != ".png" {
		t.Errorf("Assign() extension = %q, want .png", filepath.Ext(dst))
	}
	if IsEmbeddedPath(dst) {
		t.Errorf("Assign() produced embedded-style name %q", dst)
	}
	data, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("failed to read assigned file: %v", err)
	}
	if !bytes.Equal(data, buf.Bytes()) {
		t.Error("assigned file content differs from source")
	}
}

func TestAssignRejectsNonImage(t *testing.T) {
	src := filepath.Join(t.TempDir(), "not-an-image.png")
	writeFile(t, src, []byte("plain text"))

	if _, err := Assign(t.TempDir(), src); err == nil {
		t.Error("Expected error assigning a non-image file")
	}
}
