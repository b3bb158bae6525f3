package mimesniff

import (
	"mime"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"

	"github.com/fvacek/unplayer/internal/audiotypes"
)

// ByContent returns the MIME type of the file at path, determined by
// sniffing its content. Returns an empty string when the file cannot be
// read.
func ByContent(path string) string {
	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return ""
	}
	return mtype.String()
}

// ByExtension returns the MIME type implied by the file's extension, or
// an empty string when the extension is unknown. Audio extensions map
// through the library's own table so the result matches what content
// sniffing would report; everything else falls back to the platform
// mime database.
func ByExtension(path string) string {
	if m := audiotypes.MimeForExtension(path); m != "" {
		return m
	}
	return mime.TypeByExtension(filepath.Ext(path))
}

// ForData returns the MIME type of a byte slice and the preferred file
// extension for it (with leading dot). The extension is empty when the
// content cannot be identified beyond application/octet-stream.
func ForData(data []byte) (mimeType, ext string) {
	mtype := mimetype.Detect(data)
	if mtype.Is("application/octet-stream") {
		return mtype.String(), ""
	}
	return mtype.String(), mtype.Extension()
}
