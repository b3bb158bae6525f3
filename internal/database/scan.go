package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/fvacek/unplayer/internal/tags"
)

// ScanTx is the transaction a library scan runs in. It owns a
// dedicated connection so interactive reads on the store's pool are
// not blocked and never observe uncommitted scan state. None of its
// mutating operations auto-commit.
type ScanTx struct {
	tx   *sql.Tx
	conn *sql.Conn
}

// BeginScan opens the scan transaction on its own connection.
func (s *Store) BeginScan(ctx context.Context) (*ScanTx, error) {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire scan connection: %w", err)
	}
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		if closeErr := conn.Close(); closeErr != nil {
			return nil, fmt.Errorf("failed to begin scan transaction: %w (and release connection: %v)", err, closeErr)
		}
		return nil, fmt.Errorf("failed to begin scan transaction: %w", err)
	}
	return &ScanTx{tx: tx, conn: conn}, nil
}

// Commit commits the scan transaction and releases its connection.
func (t *ScanTx) Commit() error {
	err := t.tx.Commit()
	if closeErr := t.conn.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	return err
}

// Rollback abandons the scan transaction and releases its connection.
func (t *ScanTx) Rollback() error {
	err := t.tx.Rollback()
	if closeErr := t.conn.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	return err
}

// LoadTracks returns one row per track id, ordered ascending by id.
// Ascending order matters: the engine derives the next free id from the
// highest one seen.
func (t *ScanTx) LoadTracks(ctx context.Context) ([]TrackRow, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("load_tracks", start, err) }()

	rows, err := t.tx.QueryContext(ctx,
		"SELECT id, filePath, modificationTime, mediaArt FROM tracks GROUP BY id ORDER BY id",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load tracks: %w", err)
	}
	defer rows.Close()

	var tracks []TrackRow
	for rows.Next() {
		var tr TrackRow
		if err = rows.Scan(&tr.ID, &tr.Path, &tr.ModTime, &tr.ArtPath); err != nil {
			return nil, fmt.Errorf("failed to scan track row: %w", err)
		}
		tracks = append(tracks, tr)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to load tracks: %w", err)
	}
	return tracks, nil
}

// orOnce yields the values of a multi-valued tag, or a single empty
// string when the tag is absent, so the cartesian product below always
// produces at least one row.
func orOnce(values []string) []string {
	if len(values) == 0 {
		return []string{""}
	}
	return values
}

// InsertTracks inserts one row per element of artists x albums x genres,
// all sharing id, modification time, title, duration and artwork.
func (t *ScanTx) InsertTracks(ctx context.Context, id int, filePath string, modTime int64, info tags.Info, artPath string) error {
	start := time.Now()
	var err error
	defer func() { recordQuery("insert_tracks", start, err) }()

	artists := orOnce(info.Artists)
	albums := orOnce(info.Albums)
	genres := orOnce(info.Genres)

	count := len(artists) * len(albums) * len(genres)

	var query strings.Builder
	query.WriteString("INSERT INTO tracks (id, filePath, modificationTime, title, artist, album, year, trackNumber, discNumber, genre, duration, mediaArt) VALUES ")
	args := make([]interface{}, 0, count*12)
	for i := 0; i < count; i++ {
		if i > 0 {
			query.WriteByte(',')
		}
		query.WriteString("(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
	}
	for _, artist := range artists {
		for _, album := range albums {
			for _, genre := range genres {
				args = append(args,
					id, filePath, modTime, info.Title,
					artist, album, info.Year, info.TrackNumber,
					info.DiscNumber, genre, info.Duration, artPath,
				)
			}
		}
	}

	_, err = t.tx.ExecContext(ctx, query.String(), args...)
	if err != nil {
		return fmt.Errorf("failed to insert track %d: %w", id, err)
	}
	return nil
}

// DeleteTracks removes every row of the given ids, chunked to stay
// within the statement parameter limit.
func (t *ScanTx) DeleteTracks(ctx context.Context, ids []int) error {
	start := time.Now()
	var err error
	defer func() { recordQuery("delete_tracks", start, err) }()

	for len(ids) > 0 {
		n := len(ids)
		if n > maxStatementParams {
			n = maxStatementParams
		}
		chunk := ids[:n]
		ids = ids[n:]

		args := make([]interface{}, n)
		for i, id := range chunk {
			args[i] = id
		}
		query := "DELETE FROM tracks WHERE id IN (?" + strings.Repeat(",?", n-1) + ")"
		if _, err = t.tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to delete tracks: %w", err)
		}
	}
	return nil
}

// NullifyArt clears the artwork reference of every row whose mediaArt
// is in paths, chunked to stay within the statement parameter limit.
func (t *ScanTx) NullifyArt(ctx context.Context, paths []string) error {
	start := time.Now()
	var err error
	defer func() { recordQuery("nullify_art", start, err) }()

	for len(paths) > 0 {
		n := len(paths)
		if n > maxStatementParams {
			n = maxStatementParams
		}
		chunk := paths[:n]
		paths = paths[n:]

		args := make([]interface{}, n)
		for i, p := range chunk {
			args[i] = p
		}
		query := "UPDATE tracks SET mediaArt = '' WHERE mediaArt IN (?" + strings.Repeat(",?", n-1) + ")"
		if _, err = t.tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to nullify art references: %w", err)
		}
	}
	return nil
}

// UpdateArt points every row of a track id at a new artwork path.
func (t *ScanTx) UpdateArt(ctx context.Context, id int, artPath string) error {
	start := time.Now()
	var err error
	defer func() { recordQuery("update_art", start, err) }()

	_, err = t.tx.ExecContext(ctx, "UPDATE tracks SET mediaArt = ? WHERE id = ?", artPath, id)
	if err != nil {
		return fmt.Errorf("failed to update art of track %d: %w", id, err)
	}
	return nil
}

// DistinctArtPaths returns every non-empty artwork path referenced by
// the index as seen from inside the scan transaction.
func (t *ScanTx) DistinctArtPaths(ctx context.Context) (map[string]struct{}, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("distinct_art", start, err) }()

	rows, err := t.tx.QueryContext(ctx, "SELECT DISTINCT(mediaArt) FROM tracks WHERE mediaArt != ''")
	if err != nil {
		return nil, fmt.Errorf("failed to query art paths: %w", err)
	}
	defer rows.Close()

	paths := make(map[string]struct{})
	for rows.Next() {
		var p string
		if err = rows.Scan(&p); err != nil {
			return nil, err
		}
		paths[p] = struct{}{}
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return paths, nil
}
