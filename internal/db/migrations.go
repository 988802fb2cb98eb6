package db

import (
	"database/sql"
	"fmt"
	"log/slog"
)

// Migration represents a database migration
type Migration struct {
	Version int
	Name    string
	Up      func(*sql.Tx) error
}

// migrations is the list of all migrations in order
var migrations = []Migration{
	{
		Version: 1,
		Name:    "create_entries_and_sequences",
		Up:      migrationV1,
	},
	{
		Version: 2,
		Name:    "add_entry_log_table",
		Up:      migrationV2,
	},
}

// LatestVersion returns the version the schema reaches after all migrations.
func LatestVersion() int {
	return migrations[len(migrations)-1].Version
}

// RunMigrations executes all pending migrations
func RunMigrations(db *sql.DB) error {
	if err := createVersionTable(db); err != nil {
		return err
	}

	currentVersion, err := CurrentVersion(db)
	if err != nil {
		return err
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		slog.Info("running migration", "version", migration.Version, "name", migration.Name)

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin transaction for migration %d: %w", migration.Version, err)
		}

		if err := migration.Up(tx); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, err)
		}

		_, err = tx.Exec("INSERT INTO schema_version (version) VALUES (?)", migration.Version)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, err)
		}
	}

	return nil
}

// migrationV1 creates the record table, the sequence table and the setup tag.
func migrationV1(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS contract_info (
			id INTEGER PRIMARY KEY CHECK(id = 1),
			name TEXT NOT NULL,
			version TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS sequences (
			name TEXT PRIMARY KEY,
			value INTEGER NOT NULL CHECK(value >= 0) DEFAULT 0
		);

		CREATE TABLE IF NOT EXISTS entries (
			id INTEGER PRIMARY KEY,
			description TEXT NOT NULL,
			status TEXT NOT NULL CHECK(status IN ('to_do', 'in_progress', 'done')) DEFAULT 'to_do',
			priority TEXT NOT NULL CHECK(priority IN ('none', 'low', 'medium', 'high')) DEFAULT 'none',
			owner TEXT NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("failed to create entry tables: %w", err)
	}
	return nil
}

// migrationV2 adds the audit log.
func migrationV2(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS entry_log (
			id TEXT PRIMARY KEY,
			actor_id TEXT,
			entity_type TEXT NOT NULL,
			entity_id TEXT NOT NULL,
			action TEXT NOT NULL CHECK(action IN ('create', 'update', 'delete')),
			field_name TEXT,
			old_value TEXT,
			new_value TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);

		CREATE INDEX IF NOT EXISTS idx_entry_log_entity ON entry_log(entity_type, entity_id);
	`)
	if err != nil {
		return fmt.Errorf("failed to create entry_log table: %w", err)
	}
	return nil
}
