// Package art resolves and caches track artwork.
//
// Artwork comes from one of two sources: an image file sitting next to
// the audio file (matched by name pattern) or bytes embedded in the
// file's own tags. Embedded art is persisted to the cache directory
// under a content hash, so byte-identical art across any number of
// tracks occupies exactly one file. Manually assigned artwork gets a
// random UUID name instead, which is how the reconciliation engine
// tells it apart and leaves it alone.
package art
