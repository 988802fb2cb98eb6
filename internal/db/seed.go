package db

import (
	"database/sql"
	"fmt"
)

// SeedFixtures populates the database with development fixtures.
// Ids interleave owners so that owner-filtered pagination has gaps to skip.
// Seeding refuses to run on a database that already holds entries.
func SeedFixtures(database *sql.DB) error {
	var count int
	if err := database.QueryRow("SELECT COUNT(*) FROM entries").Scan(&count); err != nil {
		return fmt.Errorf("seed entries: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("seed entries: database already has %d entries", count)
	}

	fixtures := []struct {
		desc, status, priority, owner string
	}{
		{"Write project proposal", "in_progress", "high", "alice"},
		{"Book dentist appointment", "to_do", "none", "bob"},
		{"Review pull requests", "to_do", "medium", "alice"},
		{"Renew passport", "done", "low", "bob"},
		{"Plan team offsite", "to_do", "low", "alice"},
		{"Fix leaking tap", "to_do", "high", "carol"},
		{"Update résumé", "done", "none", "alice"},
	}

	tx, err := database.Begin()
	if err != nil {
		return fmt.Errorf("seed entries: %w", err)
	}
	defer tx.Rollback()

	// Fixture ids come from the entry sequence so deleted ids are never reused
	if _, err := tx.Exec("INSERT INTO sequences (name, value) VALUES ('entry', 0) ON CONFLICT(name) DO NOTHING"); err != nil {
		return fmt.Errorf("seed sequence: %w", err)
	}

	for _, f := range fixtures {
		var id int64
		if err := tx.QueryRow(
			"UPDATE sequences SET value = value + 1 WHERE name = 'entry' RETURNING value",
		).Scan(&id); err != nil {
			return fmt.Errorf("seed sequence: %w", err)
		}
		if _, err := tx.Exec(
			"INSERT INTO entries (id, description, status, priority, owner) VALUES (?, ?, ?, ?, ?)",
			id, f.desc, f.status, f.priority, f.owner,
		); err != nil {
			return fmt.Errorf("seed entries: %w", err)
		}
	}

	return tx.Commit()
}
