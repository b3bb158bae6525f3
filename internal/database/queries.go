package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// CalculateStats returns the aggregate view of the index. Duration is
// attributed once per track id since multi-valued rows share it.
func (s *Store) CalculateStats(ctx context.Context) (Stats, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("stats", start, err) }()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var stats Stats
	queries := []struct {
		sql  string
		dest *int
	}{
		{"SELECT COUNT(DISTINCT(artist)) FROM tracks", &stats.Artists},
		{"SELECT COUNT(DISTINCT(album)) FROM tracks", &stats.Albums},
		{"SELECT COUNT(DISTINCT(id)) FROM tracks", &stats.Tracks},
		{"SELECT COALESCE(SUM(duration), 0) FROM (SELECT duration FROM tracks GROUP BY id)", &stats.Duration},
	}
	for _, q := range queries {
		if err = s.db.QueryRowContext(ctx, q.sql).Scan(q.dest); err != nil {
			return Stats{}, fmt.Errorf("failed to calculate stats: %w", err)
		}
	}
	return stats, nil
}

// randomArt runs one of the random artwork queries, mapping an empty
// result to an empty path.
func (s *Store) randomArt(ctx context.Context, operation, query string, args ...interface{}) (string, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery(operation, start, err) }()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var path string
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&path)
	if err == sql.ErrNoRows {
		err = nil
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to pick random artwork: %w", err)
	}
	return path, nil
}

// RandomArt picks uniformly among all distinct non-empty artwork paths.
func (s *Store) RandomArt(ctx context.Context) (string, error) {
	return s.randomArt(ctx, "random_art",
		"SELECT mediaArt FROM tracks WHERE mediaArt != '' GROUP BY mediaArt ORDER BY RANDOM() LIMIT 1")
}

// RandomArtForArtist picks among artwork of one artist's tracks.
func (s *Store) RandomArtForArtist(ctx context.Context, artist string) (string, error) {
	return s.randomArt(ctx, "random_art_artist",
		"SELECT mediaArt FROM tracks WHERE mediaArt != '' AND artist = ? GROUP BY mediaArt ORDER BY RANDOM() LIMIT 1",
		artist)
}

// RandomArtForAlbum picks among artwork of one album's tracks.
func (s *Store) RandomArtForAlbum(ctx context.Context, artist, album string) (string, error) {
	return s.randomArt(ctx, "random_art_album",
		"SELECT mediaArt FROM tracks WHERE mediaArt != '' AND artist = ? AND album = ? GROUP BY mediaArt ORDER BY RANDOM() LIMIT 1",
		artist, album)
}

// RandomArtForGenre picks among artwork of one genre's tracks.
func (s *Store) RandomArtForGenre(ctx context.Context, genre string) (string, error) {
	return s.randomArt(ctx, "random_art_genre",
		"SELECT mediaArt FROM tracks WHERE mediaArt != '' AND genre = ? GROUP BY mediaArt ORDER BY RANDOM() LIMIT 1",
		genre)
}

// SetTrackArt points every row matching artist and album at the given
// artwork path. Used for manual artwork assignment.
func (s *Store) SetTrackArt(ctx context.Context, artist, album, artPath string) error {
	start := time.Now()
	var err error
	defer func() { recordQuery("set_track_art", start, err) }()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err = s.db.ExecContext(ctx,
		"UPDATE tracks SET mediaArt = ? WHERE artist = ? AND album = ?",
		artPath, artist, album)
	if err != nil {
		return fmt.Errorf("failed to set artwork: %w", err)
	}
	return nil
}

// ResetAll deletes every row from the index.
func (s *Store) ResetAll(ctx context.Context) error {
	start := time.Now()
	var err error
	defer func() { recordQuery("reset", start, err) }()

	_, err = s.db.ExecContext(ctx, "DELETE FROM tracks")
	if err != nil {
		return fmt.Errorf("failed to reset database: %w", err)
	}
	return nil
}
