package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// Migrate applies every schema statement. Statements are written to be
// re-runnable, so Migrate is safe to call on an existing database.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// ALTER TABLE ADD COLUMN has no IF NOT EXISTS form.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS plan_definitions (
		id                       TEXT PRIMARY KEY,
		alias                    TEXT NOT NULL,
		culture                  TEXT NOT NULL DEFAULT 'und',
		name                     TEXT NOT NULL DEFAULT '',
		description              TEXT NOT NULL DEFAULT '',
		created_date             TEXT NOT NULL,
		created_by               TEXT NOT NULL DEFAULT '',
		last_modified_date       TEXT,
		last_modified_by         TEXT NOT NULL DEFAULT '',
		classifications          TEXT,
		start_date               TEXT,
		end_date                 TEXT,
		context_key_factory_type TEXT NOT NULL DEFAULT '',
		entry_activity_id        TEXT NOT NULL DEFAULT '',
		reentry_mode             TEXT NOT NULL DEFAULT ''
	)`,

	`CREATE UNIQUE INDEX IF NOT EXISTS idx_plan_definitions_alias ON plan_definitions(alias) WHERE alias != ''`,

	`CREATE TABLE IF NOT EXISTS plan_activities (
		plan_id          TEXT NOT NULL REFERENCES plan_definitions(id) ON DELETE CASCADE,
		position         INTEGER NOT NULL,
		id               TEXT NOT NULL,
		activity_type_id TEXT NOT NULL DEFAULT '',
		parameters       TEXT,
		paths            TEXT,
		PRIMARY KEY (plan_id, position)
	)`,

	`CREATE TABLE IF NOT EXISTS plan_universal_activities (
		plan_id                  TEXT NOT NULL REFERENCES plan_definitions(id) ON DELETE CASCADE,
		position                 INTEGER NOT NULL,
		id                       TEXT NOT NULL,
		activity_type_id         TEXT NOT NULL DEFAULT '',
		parameters               TEXT,
		plan_processing_position TEXT NOT NULL DEFAULT '',
		sort_order               INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (plan_id, position)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_plan_activities_plan ON plan_activities(plan_id)`,
	`CREATE INDEX IF NOT EXISTS idx_plan_universal_activities_plan ON plan_universal_activities(plan_id)`,

	// Activation state, tracked by the definition manager.
	`ALTER TABLE plan_definitions ADD COLUMN is_active INTEGER NOT NULL DEFAULT 0`,
}
