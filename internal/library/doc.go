// Package library keeps the track index synchronized with the
// filesystem.
//
// A scan diffs the configured library roots against the persisted
// index and applies the minimal set of inserts, updates and deletes
// inside a single transaction: rows whose files vanished or fell out
// of the configured roots are removed, new audio files are tagged and
// inserted, changed files are re-extracted under their existing id,
// and unchanged files are left alone apart from the artwork
// re-resolution rules. After the walk the engine clears dangling
// artwork references and sweeps orphaned files out of the artwork
// cache.
//
// At most one scan runs at a time. Scans are cancelled cooperatively:
// the stop signal is polled once per visited file and a cancelled scan
// commits the work done so far instead of rolling back.
package library
