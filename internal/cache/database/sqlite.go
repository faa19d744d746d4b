package database

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

type SQLiteDB struct {
	db *sql.DB
}

func NewSQLiteDB(path string) (*SQLiteDB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable foreign keys and WAL mode
	if _, err := db.Exec(`
        PRAGMA foreign_keys = ON;
        PRAGMA journal_mode = WAL;
    `); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set PRAGMA: %w", err)
	}

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteDB{db: db}, nil
}

func (db *SQLiteDB) WithTx(fn func(Transaction) error) error {
	tx, err := db.db.Begin()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidTransaction, err)
	}
	defer tx.Rollback()

	if err := fn(&SQLiteTx{tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidTransaction, err)
	}

	return nil
}

func (db *SQLiteDB) GetFile(path string) (*FileRecord, error) {
	var record FileRecord
	err := db.db.QueryRow(
		"SELECT path, last_modified, checksum FROM files WHERE path = ? AND file_exists = 1",
		path,
	).Scan(&record.Path, &record.LastModified, &record.Checksum)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query file: %w", err)
	}

	return &record, nil
}

func (db *SQLiteDB) GetAllFiles() ([]FileRecord, error) {
	rows, err := db.db.Query(
		"SELECT path, last_modified, checksum FROM files WHERE file_exists = 1 ORDER BY path",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query files: %w", err)
	}
	defer rows.Close()

	var records []FileRecord
	for rows.Next() {
		var record FileRecord
		if err := rows.Scan(&record.Path, &record.LastModified, &record.Checksum); err != nil {
			return nil, fmt.Errorf("failed to scan file record: %w", err)
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating file records: %w", err)
	}

	return records, nil
}

func (db *SQLiteDB) UpsertFile(file *FileRecord) error {
	result, err := db.db.Exec(`
        INSERT INTO files (path, last_modified, checksum, file_exists)
        VALUES (?, ?, ?, 1)
        ON CONFLICT(path) DO UPDATE SET
            last_modified = excluded.last_modified,
            checksum = excluded.checksum,
            file_exists = 1
    `, file.Path, file.LastModified, file.Checksum)

	if err != nil {
		return fmt.Errorf("failed to upsert file: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}

	if affected == 0 {
		return ErrConstraintViolation
	}

	return nil
}

func (db *SQLiteDB) DeleteFile(path string) error {
	result, err := db.db.Exec("DELETE FROM files WHERE path = ?", path)
	if err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}

	if affected == 0 {
		return ErrNotFound
	}

	return nil
}

func (db *SQLiteDB) GetCitations(sourcePath string) ([]CitationRecord, error) {
	rows, err := db.db.Query(`
        SELECT source_path, key, cite_type, lit_note, note_index, start, end, ord
        FROM citations
        WHERE source_path = ?
        ORDER BY ord
    `, sourcePath)
	if err != nil {
		return nil, fmt.Errorf("failed to query citations: %w", err)
	}
	defer rows.Close()

	return scanCitationRecords(rows)
}

func (db *SQLiteDB) GetCitationsByKey(key string) ([]CitationRecord, error) {
	rows, err := db.db.Query(`
        SELECT source_path, key, cite_type, lit_note, note_index, start, end, ord
        FROM citations
        WHERE key = ?
        ORDER BY source_path, ord
    `, key)
	if err != nil {
		return nil, fmt.Errorf("failed to query citations by key: %w", err)
	}
	defer rows.Close()

	return scanCitationRecords(rows)
}

func (db *SQLiteDB) UpsertCitations(sourcePath string, citations []CitationRecord) error {
	return db.WithTx(func(tx Transaction) error {
		return tx.UpsertCitations(sourcePath, citations)
	})
}

func (db *SQLiteDB) DeleteCitations(sourcePath string) error {
	result, err := db.db.Exec("DELETE FROM citations WHERE source_path = ?", sourcePath)
	if err != nil {
		return fmt.Errorf("failed to delete citations: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}

	if affected == 0 {
		return ErrNotFound
	}

	return nil
}

func (db *SQLiteDB) GetMetadata(key string) ([]byte, error) {
	var value []byte
	err := db.db.QueryRow(`SELECT value FROM metadata WHERE "key" = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve metadata: %w", err)
	}
	return value, nil
}

func (db *SQLiteDB) UpsertMetadata(key string, value []byte) error {
	_, err := db.db.Exec(`
        INSERT INTO metadata ("key", value)
        VALUES (?, ?)
        ON CONFLICT("key") DO UPDATE SET value = excluded.value
    `, key, value)
	if err != nil {
		return fmt.Errorf("failed to upsert metadata: %w", err)
	}
	return nil
}

func (db *SQLiteDB) Clear() error {
	_, err := db.db.Exec(`
        DELETE FROM citations;
        DELETE FROM files;
    `)
	if err != nil {
		return fmt.Errorf("failed to clear database: %w", err)
	}
	return nil
}

func (db *SQLiteDB) Close() error {
	if _, err := db.db.Exec("DELETE FROM files WHERE file_exists = 0"); err != nil {
		return fmt.Errorf("failed to clean up non-existent files: %w", err)
	}
	return db.db.Close()
}

func scanCitationRecords(rows *sql.Rows) ([]CitationRecord, error) {
	var records []CitationRecord
	for rows.Next() {
		var record CitationRecord
		if err := rows.Scan(
			&record.SourcePath, &record.Key, &record.CiteType, &record.LitNote,
			&record.NoteIndex, &record.Start, &record.End, &record.Ord,
		); err != nil {
			return nil, fmt.Errorf("failed to scan citation record: %w", err)
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating citation records: %w", err)
	}

	return records, nil
}
