package store

import (
	"database/sql"
	"fmt"
	"time"
)

type User struct {
	ID          string
	Slug        string
	DisplayName string
	LastSynced  time.Time
}

// CreateUser ensures a user exists in the database.
func (s *Store) CreateUser(id, slug, displayName string) error {
	row := s.db.QueryRow("SELECT id FROM User WHERE id = ?", id)
	var existing string
	err := row.Scan(&existing)
	if err == sql.ErrNoRows {
		_, err := s.db.Exec("INSERT INTO User (id, slug, display_name) VALUES (?, ?, ?)", id, slug, displayName)
		if err != nil {
			return fmt.Errorf("inserting user %q: %w", id, err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("checking user %q: %w", id, err)
	}

	_, err = s.db.Exec("UPDATE User SET slug = ?, display_name = ? WHERE id = ?", slug, displayName, id)
	if err != nil {
		return fmt.Errorf("updating user %q: %w", id, err)
	}
	return nil
}

// FindUser looks a user up by id or slug, in that order.
func (s *Store) FindUser(identifier string) (*User, error) {
	row := s.db.QueryRow(
		"SELECT id, slug, display_name, last_synced FROM User WHERE id = ? OR slug = ? LIMIT 1",
		identifier, identifier)

	var u User
	var slug, displayName sql.NullString
	var lastSynced sql.NullTime
	err := row.Scan(&u.ID, &slug, &displayName, &lastSynced)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding user %q: %w", identifier, err)
	}
	u.Slug = slug.String
	u.DisplayName = displayName.String
	u.LastSynced = lastSynced.Time
	return &u, nil
}

func (s *Store) SetLastSynced(user string, synced time.Time) error {
	_, err := s.db.Exec("UPDATE User SET last_synced = ? WHERE id = ?", synced, user)
	if err != nil {
		return fmt.Errorf("updating last_synced for %q: %w", user, err)
	}
	return nil
}

func (s *Store) GetLastSynced(user string) (time.Time, error) {
	row := s.db.QueryRow("SELECT last_synced FROM User WHERE id = ?", user)
	var t sql.NullTime
	err := row.Scan(&t)
	if err == sql.ErrNoRows {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("getting last synced: %w", err)
	}
	return t.Time, nil
}
