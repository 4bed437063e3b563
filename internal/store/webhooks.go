package store

import (
	"database/sql"
	"fmt"
)

type Webhook struct {
	User   string
	URL    string
	Secret string
}

// SetWebhook registers or replaces the milestone webhook for a user.
func (s *Store) SetWebhook(user, url, secret string) error {
	_, err := s.db.Exec(
		"INSERT OR REPLACE INTO Webhook (user, url, secret) VALUES (?, ?, ?)",
		user, url, secret)
	if err != nil {
		return fmt.Errorf("setting webhook for %q: %w", user, err)
	}
	return nil
}

// GetWebhook returns the user's webhook, or nil when none is registered.
func (s *Store) GetWebhook(user string) (*Webhook, error) {
	row := s.db.QueryRow("SELECT user, url, secret FROM Webhook WHERE user = ?", user)
	var w Webhook
	err := row.Scan(&w.User, &w.URL, &w.Secret)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting webhook for %q: %w", user, err)
	}
	return &w, nil
}

func (s *Store) DeleteWebhook(user string) error {
	_, err := s.db.Exec("DELETE FROM Webhook WHERE user = ?", user)
	if err != nil {
		return fmt.Errorf("deleting webhook for %q: %w", user, err)
	}
	return nil
}
