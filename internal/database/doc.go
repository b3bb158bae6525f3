// Package database provides the SQLite-backed track index.
//
// The index is a single denormalized tracks table: a file with several
// artists, albums or genres is stored as one row per combination, all
// rows sharing the same id. Schema compatibility is checked by column
// set on open; any mismatch drops and recreates the table rather than
// migrating it.
//
// Scans mutate the table through a ScanTx, a transaction bound to its
// own connection so interactive reads keep working while a scan is in
// flight. Read queries outside the scan connection only ever observe
// committed data.
package database
