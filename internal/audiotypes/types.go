package audiotypes

import (
	"path/filepath"
	"strings"
)

// MIME types accepted after content sniffing.
const (
	MimeFlac      = "audio/flac"
	MimeMp4       = "audio/mp4"
	MimeMp4b      = "audio/x-m4b"
	MimeMpeg      = "audio/mpeg"
	MimeVorbisOgg = "audio/x-vorbis+ogg"
	MimeFlacOgg   = "audio/x-flac+ogg"
	MimeOpusOgg   = "audio/x-opus+ogg"
	MimeOgg       = "audio/ogg"
	MimeApe       = "audio/x-ape"
	MimeMatroska  = "application/x-matroska"
	MimeWav       = "audio/x-wav"
	MimeWavpack   = "audio/x-wavpack"
)

// Extensions maps known audio file extensions (lowercase, no dot) to true.
var Extensions = map[string]bool{
	"flac": true,
	"aac":  true,

	"m4a": true,
	"f4a": true,
	"m4b": true,
	"f4b": true,

	"mp3":  true,
	"mpga": true,

	"oga":  true,
	"ogg":  true,
	"opus": true,

	"ape": true,

	"mka": true,

	"wav": true,
	"wv":  true,
	"wvp": true,
}

// MimeTypes maps supported content-sniffed MIME types to true.
var MimeTypes = map[string]bool{
	MimeFlac:      true,
	MimeMp4:       true,
	MimeMp4b:      true,
	MimeMpeg:      true,
	MimeVorbisOgg: true,
	MimeFlacOgg:   true,
	MimeOpusOgg:   true,
	MimeOgg:       true,
	MimeApe:       true,
	MimeMatroska:  true,
	MimeWav:       true,
	MimeWavpack:   true,
}

// extensionMime maps audio extensions to the MIME type content sniffing
// reports for a well-formed file of that kind. Extensions whose content
// type is ambiguous (raw aac) are absent.
var extensionMime = map[string]string{
	"flac": MimeFlac,
	"m4a":  MimeMp4,
	"f4a":  MimeMp4,
	"m4b":  MimeMp4b,
	"f4b":  MimeMp4b,
	"mp3":  MimeMpeg,
	"mpga": MimeMpeg,
	"oga":  MimeOgg,
	"ogg":  MimeOgg,
	"opus": MimeOpusOgg,
	"ape":  MimeApe,
	"mka":  MimeMatroska,
	"wav":  MimeWav,
	"wv":   MimeWavpack,
	"wvp":  MimeWavpack,
}

// MimeForExtension returns the MIME type implied by a file's audio
// extension, or an empty string for non-audio extensions.
func MimeForExtension(path string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	return extensionMime[ext]
}

// HasAudioExtension reports whether the file name carries a known audio
// extension.
func HasAudioExtension(path string) bool {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	return Extensions[ext]
}

// SupportedMime reports whether a content-sniffed MIME type is one the
// tag reader can handle.
func SupportedMime(mime string) bool {
	// Sniffers may append parameters ("audio/ogg; codecs=opus").
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = strings.TrimSpace(mime[:i])
	}
	return MimeTypes[mime]
}
