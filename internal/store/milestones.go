package store

import (
	"database/sql"
	"fmt"

	"github.com/skylerx/mystats/internal/milestone"
)

// SeedThresholds inserts the given thresholds, leaving existing rows alone.
func (s *Store) SeedThresholds(thresholds []milestone.Threshold) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, t := range thresholds {
		_, err := tx.Exec(`
			INSERT OR IGNORE INTO MilestoneThreshold
			(entity_type, milestone_type, threshold_value, name, active)
			VALUES (?, ?, ?, ?, ?)`,
			t.EntityType, t.MilestoneType, t.Value, t.Name, t.Active)
		if err != nil {
			return fmt.Errorf("seeding threshold %d: %w", t.Value, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func (s *Store) ActiveThresholds(entityType, milestoneType string) ([]milestone.Threshold, error) {
	query := `
		SELECT entity_type, milestone_type, threshold_value, name, active
		FROM MilestoneThreshold
		WHERE entity_type = ? AND milestone_type = ? AND active = 1
		ORDER BY threshold_value ASC`

	rows, err := s.db.Query(query, entityType, milestoneType)
	if err != nil {
		return nil, fmt.Errorf("querying thresholds: %w", err)
	}
	defer rows.Close()

	var thresholds []milestone.Threshold
	for rows.Next() {
		var t milestone.Threshold
		if err := rows.Scan(&t.EntityType, &t.MilestoneType, &t.Value, &t.Name, &t.Active); err != nil {
			return nil, fmt.Errorf("scanning threshold: %w", err)
		}
		thresholds = append(thresholds, t)
	}
	return thresholds, rows.Err()
}

// HighestMilestoneValue returns the highest milestone the user has already
// recorded for the given entity and type, or zero when there is none.
func (s *Store) HighestMilestoneValue(user, entityType, entityID, milestoneType string) (int64, error) {
	row := s.db.QueryRow(`
		SELECT COALESCE(MAX(milestone_value), 0)
		FROM UserMilestone
		WHERE user = ? AND entity_type = ? AND entity_id = ? AND milestone_type = ?`,
		user, entityType, entityID, milestoneType)

	var value int64
	if err := row.Scan(&value); err != nil {
		return 0, fmt.Errorf("getting highest milestone: %w", err)
	}
	return value, nil
}

// AddUserMilestones records crossed milestones. The unique constraint makes
// replays of the same crossing a no-op.
func (s *Store) AddUserMilestones(milestones []milestone.UserMilestone) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, m := range milestones {
		_, err := tx.Exec(`
			INSERT OR IGNORE INTO UserMilestone
			(user, entity_type, entity_id, milestone_type, milestone_value, name, reached_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			m.UserID, m.EntityType, m.EntityID, m.MilestoneType, m.Value, m.Name, m.ReachedAt.UTC())
		if err != nil {
			return fmt.Errorf("inserting milestone %q/%d: %w", m.Name, m.Value, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func (s *Store) ListUserMilestones(user string) ([]milestone.UserMilestone, error) {
	query := `
		SELECT user, entity_type, entity_id, milestone_type, milestone_value, name, reached_at
		FROM UserMilestone
		WHERE user = ?
		ORDER BY reached_at ASC, milestone_value ASC`

	rows, err := s.db.Query(query, user)
	if err != nil {
		return nil, fmt.Errorf("querying milestones: %w", err)
	}
	defer rows.Close()

	var milestones []milestone.UserMilestone
	for rows.Next() {
		var m milestone.UserMilestone
		var entityID sql.NullString
		if err := rows.Scan(&m.UserID, &m.EntityType, &entityID, &m.MilestoneType, &m.Value, &m.Name, &m.ReachedAt); err != nil {
			return nil, fmt.Errorf("scanning milestone: %w", err)
		}
		m.EntityID = entityID.String
		milestones = append(milestones, m)
	}
	return milestones, rows.Err()
}
