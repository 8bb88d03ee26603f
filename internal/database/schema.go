package database

import "database/sql"

// Schema version for migrations
const currentSchemaVersion = 2

// SQL migration scripts
var migrations = []migration{
	{
		version: 1,
		up: []string{
			`CREATE TABLE schema_version (
				version INTEGER PRIMARY KEY,
				applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
			)`,

			// One row per apply invocation
			`CREATE TABLE runs (
				id TEXT PRIMARY KEY,
				root TEXT NOT NULL,
				plan_id TEXT,
				status TEXT NOT NULL DEFAULT 'running',
				started_at DATETIME NOT NULL,
				completed_at DATETIME,

				renamed INTEGER NOT NULL DEFAULT 0,
				moved INTEGER NOT NULL DEFAULT 0,
				deleted INTEGER NOT NULL DEFAULT 0,
				failed INTEGER NOT NULL DEFAULT 0,
				skipped INTEGER NOT NULL DEFAULT 0,
				cleaned INTEGER NOT NULL DEFAULT 0,

				error_message TEXT
			)`,
			`CREATE INDEX idx_runs_started ON runs(started_at)`,

			// Executed operations, in plan order within a run
			`CREATE TABLE operations_log (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
				seq INTEGER NOT NULL,
				operation_type TEXT NOT NULL,
				source_path TEXT NOT NULL,
				target_path TEXT,
				reason TEXT,
				status TEXT NOT NULL,
				error_message TEXT,
				duration_ms INTEGER DEFAULT 0,
				executed_at DATETIME NOT NULL,
				UNIQUE(run_id, seq)
			)`,
			`CREATE INDEX idx_operations_run ON operations_log(run_id)`,
			`CREATE INDEX idx_operations_source ON operations_log(source_path)`,

			`INSERT INTO schema_version (version) VALUES (1)`,
		},
	},
	{
		version: 2,
		up: []string{
			// Bytes removed by delete operations
			`ALTER TABLE operations_log ADD COLUMN bytes_freed INTEGER DEFAULT 0`,
			`INSERT INTO schema_version (version) VALUES (2)`,
		},
	},
}

type migration struct {
	version int
	up      []string
}

func schemaVersion(db *sql.DB) (int, error) {
	var version int
	err := db.QueryRow("SELECT version FROM schema_version ORDER BY version DESC LIMIT 1").Scan(&version)
	return version, err
}

// applyMigrations applies any pending schema migrations
func applyMigrations(db *sql.DB) error {
	currentVersion, err := schemaVersion(db)
	if err != nil {
		// schema_version doesn't exist yet - this is a fresh database
		currentVersion = 0
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}

		tx, err := db.Begin()
		if err != nil {
			return err
		}
		for _, stmt := range m.up {
			if _, err := tx.Exec(stmt); err != nil {
				tx.Rollback()
				return err
			}
		}
		// each migration inserts its own schema_version row
		if err := tx.Commit(); err != nil {
			return err
		}
	}

	return nil
}
