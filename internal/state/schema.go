package state

import (
	"database/sql"
)

const currentSchemaVersion = 1

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		);

		CREATE TABLE IF NOT EXISTS playback_state (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			volume REAL NOT NULL DEFAULT 1.0,
			muted INTEGER NOT NULL DEFAULT 0,
			playback_rate REAL NOT NULL DEFAULT 1.0,
			loop_enabled INTEGER NOT NULL DEFAULT 0,
			loop_start REAL NOT NULL DEFAULT 0,
			loop_end REAL NOT NULL DEFAULT 0,
			position REAL NOT NULL DEFAULT 0,
			track_path TEXT NOT NULL DEFAULT ''
		);
	`)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
		INSERT INTO schema_version (version) VALUES (?)
		ON CONFLICT(version) DO NOTHING
	`, currentSchemaVersion)
	return err
}
