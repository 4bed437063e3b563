package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/skylerx/mystats/internal/history"
)

type Play struct {
	TrackID    string
	TrackName  string
	ArtistID   string
	ArtistName string
	AlbumID    string
	AlbumName  string
	DurationMs int64
	PlayedAt   time.Time
}

// AddPlays inserts a batch of plays transactionally. Duplicate plays for the
// same user, track and timestamp are ignored, so re-syncing an overlapping
// window is safe.
func (s *Store) AddPlays(user string, plays []Play) (int64, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT OR IGNORE INTO Play
		(user, track_id, track_name, artist_id, artist_name, album_id, album_name, duration_ms, played_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	var inserted int64
	for _, p := range plays {
		if p.TrackID == "" || p.PlayedAt.IsZero() {
			continue
		}
		res, err := stmt.Exec(user, p.TrackID, p.TrackName, p.ArtistID, p.ArtistName,
			p.AlbumID, p.AlbumName, p.DurationMs, p.PlayedAt.UTC())
		if err != nil {
			return 0, fmt.Errorf("inserting play %q: %w", p.TrackID, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("counting inserted rows: %w", err)
		}
		inserted += n
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing transaction: %w", err)
	}
	return inserted, nil
}

// GetPlays returns the user's plays in [start, end), ordered by timestamp.
func (s *Store) GetPlays(user string, start, end time.Time) ([]history.PlayEvent, error) {
	// Streaming-history exports carry artist names but no artist ids, so fall
	// back to the name as the identifier. Ids and names never collide in
	// practice: a user's plays come from one source or the other.
	query := `
		SELECT track_id,
			CASE WHEN artist_id = '' THEN artist_name ELSE artist_id END,
			album_id, duration_ms, played_at
		FROM Play
		WHERE user = ? AND played_at >= ? AND played_at < ?
		ORDER BY played_at ASC`

	rows, err := s.db.Query(query, user, start.UTC(), end.UTC())
	if err != nil {
		return nil, fmt.Errorf("querying plays: %w", err)
	}
	defer rows.Close()

	var events []history.PlayEvent
	for rows.Next() {
		var e history.PlayEvent
		var artistID, albumID sql.NullString
		if err := rows.Scan(&e.TrackID, &artistID, &albumID, &e.DurationMs, &e.PlayedAt); err != nil {
			return nil, fmt.Errorf("scanning play: %w", err)
		}
		e.ArtistID = artistID.String
		e.AlbumID = albumID.String
		events = append(events, e)
	}
	return events, rows.Err()
}

func (s *Store) GetLatestPlay(user string) (time.Time, error) {
	row := s.db.QueryRow("SELECT played_at FROM Play WHERE user = ? ORDER BY played_at DESC LIMIT 1", user)
	var t time.Time
	err := row.Scan(&t)
	if err == sql.ErrNoRows {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("getting latest play: %w", err)
	}
	return t, nil
}

// PlayTotals returns the lifetime play count and listening minutes for a user.
func (s *Store) PlayTotals(user string) (plays int64, minutes int64, err error) {
	row := s.db.QueryRow(
		"SELECT COUNT(*), COALESCE(SUM(duration_ms), 0) FROM Play WHERE user = ?", user)
	var totalMs int64
	if err := row.Scan(&plays, &totalMs); err != nil {
		return 0, 0, fmt.Errorf("totaling plays: %w", err)
	}
	return plays, totalMs / 60000, nil
}
