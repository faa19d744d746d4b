package database

import (
	"database/sql"
	"fmt"
)

const schemaVersion = 1

func initSchema(db *sql.DB) error {
	// Check schema version
	var version int
	err := db.QueryRow("PRAGMA user_version").Scan(&version)
	if err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}

	if version == schemaVersion {
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := createTables(tx); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}

	if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", schemaVersion)); err != nil {
		return fmt.Errorf("failed to update schema version: %w", err)
	}

	return tx.Commit()
}

func createTables(tx *sql.Tx) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS files (
            path TEXT PRIMARY KEY,
            last_modified INTEGER NOT NULL,
            checksum BLOB,
            file_exists INTEGER NOT NULL DEFAULT 1
        )`,
		`CREATE TABLE IF NOT EXISTS citations (
            source_path TEXT NOT NULL,
            key TEXT NOT NULL,
            cite_type TEXT NOT NULL DEFAULT '',
            lit_note TEXT NOT NULL DEFAULT '',
            note_index INTEGER NOT NULL DEFAULT 0,
            start INTEGER NOT NULL,
            end INTEGER NOT NULL,
            ord INTEGER NOT NULL,
            FOREIGN KEY (source_path) REFERENCES files(path) ON DELETE CASCADE,
            PRIMARY KEY (source_path, ord)
        )`,
		`CREATE INDEX IF NOT EXISTS idx_citations_key
            ON citations(key)`,
		`CREATE TABLE IF NOT EXISTS metadata (
            "key" TEXT PRIMARY KEY,
            value BLOB
        )`,
	}

	for _, query := range queries {
		if _, err := tx.Exec(query); err != nil {
			return fmt.Errorf("failed to execute query %q: %w", query, err)
		}
	}

	return nil
}
