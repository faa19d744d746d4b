package sqlite

import (
	"fmt"
	"os"

	"github.com/tliron/commonlog"

	"citescan/internal/bibliography"
	"citescan/internal/cache/database"
	"citescan/internal/cache/memory"
	"citescan/internal/locale"
	"citescan/internal/scanner"
)

// rootKey is the metadata key recording which notes directory the
// database was built from.
const rootKey = "root"

// Config wires a store to its directory, database and bibliography.
type Config struct {
	RootPath string
	DBPath   string
	BibPath  string
	Locale   string
	Options  scanner.Options
}

type SQLiteStore struct {
	db       database.Database
	bib      bibliography.Bibliography
	rootPath string
	locale   string
	terms    locale.Table
	options  scanner.Options
	log      commonlog.Logger
}

func NewSQLiteStore(config Config) (*SQLiteStore, error) {
	db, err := database.NewSQLiteDB(config.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create database: %w", err)
	}

	// A database carries the root it was built from. Reusing it for a
	// different directory would silently mix two indexes.
	root, err := db.GetMetadata(rootKey)
	switch {
	case err == database.ErrNotFound:
		if err := db.UpsertMetadata(rootKey, []byte(config.RootPath)); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to record root: %w", err)
		}
	case err != nil:
		db.Close()
		return nil, fmt.Errorf("failed to read root: %w", err)
	case string(root) != config.RootPath:
		db.Close()
		return nil, fmt.Errorf("database %s indexes %s, not %s", config.DBPath, root, config.RootPath)
	}

	bib, err := bibliography.NewHayagrivaBib(config.BibPath)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to open bibliography: %w", err)
	}

	terms := locale.Default()
	options := config.Options
	if options.Labels == nil {
		options.Labels = terms.Labels()
	}

	return &SQLiteStore{
		db:       db,
		bib:      bib,
		rootPath: config.RootPath,
		locale:   config.Locale,
		terms:    terms,
		options:  options,
		log:      commonlog.GetLogger("store"),
	}, nil
}

// Core operations

func (s *SQLiteStore) UpdateOne(path string) error {
	fileInfo, err := scanFile(path)
	if err != nil {
		return fmt.Errorf("failed to scan file: %w", err)
	}

	return s.processFile(fileInfo)
}

func (s *SQLiteStore) UpdateAll() error {
	files, err := scanDirectory(s.rootPath)
	if err != nil {
		return fmt.Errorf("failed to scan directory: %w", err)
	}

	if err := s.removeMissing(files); err != nil {
		return err
	}

	return s.processFiles(files)
}

func (s *SQLiteStore) Recompute() error {
	if err := s.db.Clear(); err != nil {
		return fmt.Errorf("failed to clear database: %w", err)
	}
	return s.UpdateAll()
}

// removeMissing drops records for files no longer present on disk.
func (s *SQLiteStore) removeMissing(files []*FileInfo) error {
	records, err := s.db.GetAllFiles()
	if err != nil {
		return fmt.Errorf("failed to get indexed files: %w", err)
	}

	onDisk := make(map[string]bool, len(files))
	for _, file := range files {
		onDisk[file.Path] = true
	}

	for _, record := range records {
		if onDisk[record.Path] {
			continue
		}
		if _, err := os.Stat(record.Path); err == nil {
			continue
		}
		s.log.Infof("removing deleted file %s", record.Path)
		if err := s.db.DeleteFile(record.Path); err != nil && err != database.ErrNotFound {
			return fmt.Errorf("failed to remove deleted file: %w", err)
		}
	}

	return nil
}

// Queries

func (s *SQLiteStore) GetAllFiles() ([]string, error) {
	records, err := s.db.GetAllFiles()
	if err != nil {
		return nil, err
	}

	paths := make([]string, len(records))
	for i, record := range records {
		paths[i] = record.Path
	}
	return paths, nil
}

func (s *SQLiteStore) GetCitations(path string) ([]database.CitationRecord, error) {
	return s.db.GetCitations(path)
}

func (s *SQLiteStore) GetReferences(key string) ([]database.CitationRecord, error) {
	return s.db.GetCitationsByKey(key)
}

// Resolve looks up the bibliography entry for a citation key.
func (s *SQLiteStore) Resolve(key string) (bibliography.Entry, bool) {
	return s.bib.Resolve(key)
}

// Documents returns a document manager sharing the store's database,
// scan options and locale.
func (s *SQLiteStore) Documents() memory.DocumentManager {
	return memory.NewSQLiteDocumentManager(s.db, s.options, s.locale)
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
