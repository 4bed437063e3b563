// Package migration holds the database schema.
package migration

// Create contains the full schema for a fresh database. Every statement is
// idempotent so it can be replayed safely.
const Create = `
CREATE TABLE IF NOT EXISTS User (
  id TEXT PRIMARY KEY,
  slug TEXT UNIQUE,
  display_name TEXT,
  last_synced DATETIME
);

CREATE TABLE IF NOT EXISTS Play (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  user TEXT NOT NULL,
  track_id TEXT NOT NULL,
  track_name TEXT,
  artist_id TEXT,
  artist_name TEXT,
  album_id TEXT,
  album_name TEXT,
  duration_ms INTEGER NOT NULL DEFAULT 0,
  played_at DATETIME NOT NULL,
  FOREIGN KEY (user) REFERENCES User(id),
  UNIQUE (user, track_id, played_at)
);

CREATE INDEX IF NOT EXISTS idx_play_user_played_at ON Play(user, played_at);

CREATE TABLE IF NOT EXISTS MilestoneThreshold (
  entity_type TEXT NOT NULL,
  milestone_type TEXT NOT NULL,
  threshold_value INTEGER NOT NULL,
  name TEXT NOT NULL,
  active INTEGER NOT NULL DEFAULT 1,
  PRIMARY KEY (entity_type, milestone_type, threshold_value)
);

CREATE TABLE IF NOT EXISTS UserMilestone (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  user TEXT NOT NULL,
  entity_type TEXT NOT NULL,
  entity_id TEXT NOT NULL DEFAULT '',
  milestone_type TEXT NOT NULL,
  milestone_value INTEGER NOT NULL,
  name TEXT NOT NULL,
  reached_at DATETIME NOT NULL,
  FOREIGN KEY (user) REFERENCES User(id),
  UNIQUE (user, entity_type, entity_id, milestone_type, milestone_value)
);

CREATE TABLE IF NOT EXISTS ApiKey (
  key TEXT PRIMARY KEY,
  label TEXT,
  created_at DATETIME NOT NULL,
  last_used_at DATETIME,
  revoked INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS Webhook (
  user TEXT PRIMARY KEY,
  url TEXT NOT NULL,
  secret TEXT NOT NULL,
  FOREIGN KEY (user) REFERENCES User(id)
);
`
