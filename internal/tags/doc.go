// Package tags extracts track metadata from audio files.
//
// Tag values and audio properties come from TagLib; embedded cover art
// is pulled separately with dhowden/tag since TagLib's Go binding does
// not expose picture bytes. Extraction failures are reported as errors
// and the caller decides whether the file is skipped or removed from
// the index.
package tags
