package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type ApiKey struct {
	Key        string
	Label      string
	CreatedAt  time.Time
	LastUsedAt time.Time
	Revoked    bool
}

// CreateApiKey mints a new key and returns it. The key is a random UUID; it
// is shown once at creation and never derivable afterwards.
func (s *Store) CreateApiKey(label string) (string, error) {
	key := uuid.NewString()
	_, err := s.db.Exec(
		"INSERT INTO ApiKey (key, label, created_at) VALUES (?, ?, ?)",
		key, label, time.Now().UTC())
	if err != nil {
		return "", fmt.Errorf("creating api key: %w", err)
	}
	return key, nil
}

// ValidApiKey reports whether the key exists and is not revoked, updating its
// last-used timestamp on a hit.
func (s *Store) ValidApiKey(key string) (bool, error) {
	row := s.db.QueryRow("SELECT revoked FROM ApiKey WHERE key = ?", key)
	var revoked bool
	err := row.Scan(&revoked)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking api key: %w", err)
	}
	if revoked {
		return false, nil
	}

	if _, err := s.db.Exec("UPDATE ApiKey SET last_used_at = ? WHERE key = ?", time.Now().UTC(), key); err != nil {
		return false, fmt.Errorf("touching api key: %w", err)
	}
	return true, nil
}

func (s *Store) RevokeApiKey(key string) error {
	res, err := s.db.Exec("UPDATE ApiKey SET revoked = 1 WHERE key = ?", key)
	if err != nil {
		return fmt.Errorf("revoking api key: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("revoking api key: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("api key not found")
	}
	return nil
}

func (s *Store) ListApiKeys() ([]ApiKey, error) {
	rows, err := s.db.Query(
		"SELECT key, label, created_at, last_used_at, revoked FROM ApiKey ORDER BY created_at ASC")
	if err != nil {
		return nil, fmt.Errorf("listing api keys: %w", err)
	}
	defer rows.Close()

	var keys []ApiKey
	for rows.Next() {
		var k ApiKey
		var label sql.NullString
		var lastUsed sql.NullTime
		if err := rows.Scan(&k.Key, &label, &k.CreatedAt, &lastUsed, &k.Revoked); err != nil {
			return nil, fmt.Errorf("scanning api key: %w", err)
		}
		k.Label = label.String
		k.LastUsedAt = lastUsed.Time
		keys = append(keys, k)
	}
	return keys, rows.Err()
}
