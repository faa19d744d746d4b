package memory

import (
	"fmt"
	"sync"
	"time"

	"citescan/internal/cache/database"
	"citescan/internal/locale"
	"citescan/internal/scanner"
)

type SQLiteDocumentManager struct {
	db      database.Database
	options scanner.Options
	locale  string
	terms   locale.Table
	docs    map[string]Document
	mu      sync.RWMutex
}

func NewSQLiteDocumentManager(db database.Database, options scanner.Options, loc string) *SQLiteDocumentManager {
	return &SQLiteDocumentManager{
		db:      db,
		options: options,
		locale:  loc,
		terms:   locale.Default(),
		docs:    make(map[string]Document),
	}
}

func (m *SQLiteDocumentManager) OpenDocument(path string, content string) (Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Check if document is already open
	if doc, exists := m.docs[path]; exists {
		return doc, fmt.Errorf("document already open: %s", path)
	}

	doc := NewScanDocument(content, m.options, m.locale, m.terms)
	m.docs[path] = doc
	return doc, nil
}

func (m *SQLiteDocumentManager) GetDocument(path string) (Document, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	doc, exists := m.docs[path]
	return doc, exists
}

// CommitDocument writes the document's citations through to the
// database.
func (m *SQLiteDocumentManager) CommitDocument(path string) error {
	m.mu.RLock()
	doc, exists := m.docs[path]
	m.mu.RUnlock()

	if !exists {
		return fmt.Errorf("document not found: %s", path)
	}

	// Flatten citation groups into records
	var records []database.CitationRecord
	noteIndex := 0
	for _, group := range doc.GetCitations() {
		for _, cit := range group.Citations {
			record := database.CitationRecord{
				Key:      cit.ID,
				CiteType: cit.CiteType,
				LitNote:  cit.LitNote,
				Start:    group.From,
				End:      group.To,
			}
			if cit.LitNote != "" {
				noteIndex++
				record.NoteIndex = noteIndex
			}
			records = append(records, record)
		}
	}

	// Update database
	return m.db.WithTx(func(tx database.Transaction) error {
		// Update file record
		if err := tx.UpsertFile(&database.FileRecord{
			Path:         path,
			LastModified: time.Now().Unix(),
		}); err != nil {
			return fmt.Errorf("failed to update file: %w", err)
		}

		// Update citations
		return tx.UpsertCitations(path, records)
	})
}

func (m *SQLiteDocumentManager) CloseDocument(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	doc, exists := m.docs[path]
	if !exists {
		return fmt.Errorf("document not found: %s", path)
	}

	if err := doc.Close(); err != nil {
		return fmt.Errorf("failed to close document: %w", err)
	}

	delete(m.docs, path)
	return nil
}

func (m *SQLiteDocumentManager) CloseAll() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var errs []error
	for path, doc := range m.docs {
		if err := doc.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close %s: %w", path, err))
		}
	}

	m.docs = make(map[string]Document)

	if len(errs) > 0 {
		return fmt.Errorf("errors closing documents: %v", errs)
	}
	return nil
}

// Helper methods for merging database and memory state

func (m *SQLiteDocumentManager) GetAllPaths() ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	// Get paths from database
	records, err := m.db.GetAllFiles()
	if err != nil {
		return nil, fmt.Errorf("failed to get files from database: %w", err)
	}

	// Create set of paths
	paths := make(map[string]struct{})
	for _, record := range records {
		paths[record.Path] = struct{}{}
	}

	// Add paths from memory
	for path := range m.docs {
		paths[path] = struct{}{}
	}

	// Convert to slice
	result := make([]string, 0, len(paths))
	for path := range paths {
		result = append(result, path)
	}

	return result, nil
}

// GetReferences returns every location citing the given key, merging
// the database view with the open documents.
func (m *SQLiteDocumentManager) GetReferences(key string) ([]database.CitationRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	// Get occurrences from database, skipping files open in memory
	records, err := m.db.GetCitationsByKey(key)
	if err != nil && err != database.ErrNotFound {
		return nil, fmt.Errorf("failed to get citations from database: %w", err)
	}

	var result []database.CitationRecord
	for _, record := range records {
		if _, open := m.docs[record.SourcePath]; open {
			continue
		}
		result = append(result, record)
	}

	// Add occurrences from memory
	for docPath, doc := range m.docs {
		for _, group := range doc.GetCitations() {
			for ord, cit := range group.Citations {
				if cit.ID != key {
					continue
				}
				result = append(result, database.CitationRecord{
					SourcePath: docPath,
					Key:        cit.ID,
					CiteType:   cit.CiteType,
					LitNote:    cit.LitNote,
					Start:      group.From,
					End:        group.To,
					Ord:        ord,
				})
			}
		}
	}

	return result, nil
}
