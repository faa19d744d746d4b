package database

import (
	"database/sql"
	"fmt"
)

type SQLiteTx struct {
	tx *sql.Tx
}

func (tx *SQLiteTx) UpsertFile(file *FileRecord) error {
	_, err := tx.tx.Exec(`
        INSERT INTO files (path, last_modified, checksum, file_exists)
        VALUES (?, ?, ?, 1)
        ON CONFLICT(path) DO UPDATE SET
            last_modified = excluded.last_modified,
            checksum = excluded.checksum,
            file_exists = 1
    `, file.Path, file.LastModified, file.Checksum)

	if err != nil {
		return fmt.Errorf("failed to upsert file in transaction: %w", err)
	}

	return nil
}

func (tx *SQLiteTx) UpsertCitations(sourcePath string, citations []CitationRecord) error {
	// Delete existing citations
	_, err := tx.tx.Exec("DELETE FROM citations WHERE source_path = ?", sourcePath)
	if err != nil {
		return fmt.Errorf("failed to delete existing citations: %w", err)
	}

	// If no new citations, we're done
	if len(citations) == 0 {
		return nil
	}

	// Ensure source file exists if not already in database
	_, err = tx.tx.Exec(`
        INSERT INTO files (path, last_modified, file_exists)
        VALUES (?, 0, 0)
        ON CONFLICT(path) DO NOTHING
    `, sourcePath)
	if err != nil {
		return fmt.Errorf("failed to ensure source file exists: %w", err)
	}

	// Prepare statement for inserting new citations
	stmt, err := tx.tx.Prepare(`
        INSERT INTO citations (source_path, key, cite_type, lit_note, note_index, start, end, ord)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)
    `)
	if err != nil {
		return fmt.Errorf("failed to prepare citation insert statement: %w", err)
	}
	defer stmt.Close()

	for ord, citation := range citations {
		if _, err := stmt.Exec(
			sourcePath, citation.Key, citation.CiteType, citation.LitNote,
			citation.NoteIndex, citation.Start, citation.End, ord,
		); err != nil {
			return fmt.Errorf("failed to insert citation: %w", err)
		}
	}

	return nil
}
