package migrations

import (
	"database/sql"
	"fmt"
)

// Migration represents a single database migration
type Migration struct {
	Version int
	Name    string
	Up      string
	Down    string
}

// AllMigrations contains all container migrations in order
var AllMigrations = []Migration{
	{
		Version: 1,
		Name:    "Add lookup indices for groups and series",
		Up: `
			CREATE INDEX IF NOT EXISTS idx_nodes_parent_kind ON nodes(parent_id, kind);
			CREATE INDEX IF NOT EXISTS idx_series_values_node ON series_values(node_id, idx);
		`,
		Down: `
			DROP INDEX IF EXISTS idx_nodes_parent_kind;
			DROP INDEX IF EXISTS idx_series_values_node;
		`,
	},
	{
		Version: 2,
		Name:    "Record container format metadata",
		Up: `
			INSERT OR IGNORE INTO container_info (key, value) VALUES ('format', 'beeactions');
			INSERT OR IGNORE INTO container_info (key, value) VALUES ('format_version', '1');
		`,
		Down: `
			DELETE FROM container_info WHERE key IN ('format', 'format_version');
		`,
	},
}

// InitSchema creates all tables of a data container
// This must be called before running migrations to ensure all tables exist
func InitSchema(db *sql.DB) error {
	schema := `
	-- Container-level key/value metadata
	CREATE TABLE IF NOT EXISTS container_info (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	-- Hierarchy of groups and series; the root has no parent
	CREATE TABLE IF NOT EXISTS nodes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		parent_id INTEGER REFERENCES nodes(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		kind TEXT NOT NULL CHECK (kind IN ('group', 'series')),
		dtype TEXT,
		title TEXT NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_nodes_parent_name ON nodes(IFNULL(parent_id, 0), name);

	-- Typed attributes attached to any node
	CREATE TABLE IF NOT EXISTS attributes (
		node_id INTEGER NOT NULL REFERENCES nodes(id) ON DELETE CASCADE,
		key TEXT NOT NULL,
		kind TEXT NOT NULL,
		value TEXT NOT NULL,
		PRIMARY KEY (node_id, key)
	);

	-- Append-only series values, one row per element
	CREATE TABLE IF NOT EXISTS series_values (
		node_id INTEGER NOT NULL REFERENCES nodes(id) ON DELETE CASCADE,
		idx INTEGER NOT NULL,
		float_value REAL,
		int_value INTEGER,
		str_value TEXT,
		PRIMARY KEY (node_id, idx)
	);
	`

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize container schema: %w", err)
	}

	return nil
}

// Run executes all pending migrations
func Run(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	currentVersion, err := GetCurrentVersion(db)
	if err != nil {
		return fmt.Errorf("failed to get current migration version: %w", err)
	}

	for _, migration := range AllMigrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin migration %d: %w", migration.Version, err)
		}

		if _, err := tx.Exec(migration.Up); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to apply migration %d (%s): %w", migration.Version, migration.Name, err)
		}

		if _, err := tx.Exec(
			"INSERT INTO schema_migrations (version, name) VALUES (?, ?)",
			migration.Version,
			migration.Name,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, err)
		}
	}

	return nil
}

// GetCurrentVersion returns the current database schema version
func GetCurrentVersion(db *sql.DB) (int, error) {
	var version int
	err := db.QueryRow(`
		SELECT COALESCE(MAX(version), 0)
		FROM schema_migrations
	`).Scan(&version)
	if err != nil && err != sql.ErrNoRows {
		return 0, err
	}
	return version, nil
}

// LatestVersion returns the version of the newest known migration
func LatestVersion() int {
	if len(AllMigrations) == 0 {
		return 0
	}
	return AllMigrations[len(AllMigrations)-1].Version
}
