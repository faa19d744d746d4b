package sqlite

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"citescan/internal/bibliography"
	"citescan/internal/cache/database"
	"citescan/internal/citation"
	"citescan/internal/scanner"
	"citescan/internal/utils"
)

// extractCitations scans the file content and flattens the citation
// groups into database records. Note indices number the literature-note
// citations in document order, starting at 1.
func (s *SQLiteStore) extractCitations(content []byte) []database.CitationRecord {
	groups := scanner.Scan(string(content), s.options)

	var records []database.CitationRecord
	noteIndex := 0
	for _, group := range groups {
		folded := citation.Fold(group, s.locale, s.terms)
		for _, cit := range folded.Citations {
			record := database.CitationRecord{
				Key:      cit.ID,
				CiteType: cit.CiteType,
				LitNote:  cit.LitNote,
				Start:    folded.From,
				End:      folded.To,
			}
			if cit.LitNote != "" {
				noteIndex++
				record.NoteIndex = noteIndex
			}
			records = append(records, record)
		}
	}
	return records
}

func (s *SQLiteStore) processFile(file *FileInfo) error {
	checksum := utils.ComputeChecksum(file.Content)

	// Skip files whose content has not changed
	existing, err := s.db.GetFile(file.Path)
	isNewFile := err == database.ErrNotFound
	if err != nil && !isNewFile {
		return fmt.Errorf("failed to look up file: %w", err)
	}
	if existing != nil && bytes.Equal(existing.Checksum, checksum) {
		return nil
	}

	records := s.extractCitations(file.Content)

	err = s.db.WithTx(func(tx database.Transaction) error {
		if err := tx.UpsertFile(&database.FileRecord{
			Path:         file.Path,
			LastModified: file.LastModified,
			Checksum:     checksum,
		}); err != nil {
			return fmt.Errorf("failed to update file record: %w", err)
		}

		return tx.UpsertCitations(file.Path, records)
	})

	if err != nil {
		return err
	}

	// If this is a new file, add it to the bibliography
	if isNewFile {
		if err := s.bib.Append([]bibliography.Entry{s.entryFor(file.Path)}); err != nil {
			return fmt.Errorf("failed to append to bibliography: %w", err)
		}
	}

	return nil
}

func (s *SQLiteStore) processFiles(files []*FileInfo) error {
	var wg sync.WaitGroup
	errors := make(chan error, len(files))
	semaphore := make(chan struct{}, 4) // Limit concurrent operations

	for _, file := range files {
		wg.Add(1)
		go func(f *FileInfo) {
			defer wg.Done()
			semaphore <- struct{}{}        // Acquire
			defer func() { <-semaphore }() // Release

			if err := s.processFile(f); err != nil {
				s.log.Errorf("failed to process file %s: %s", f.Path, err.Error())
				errors <- err
			}
		}(file)
	}

	wg.Wait()
	close(errors)

	// Collect errors
	var errs []error
	for err := range errors {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return fmt.Errorf("encountered %d errors while processing files", len(errs))
	}

	// After all files are processed, rewrite the bibliography with all files
	records, err := s.db.GetAllFiles()
	if err != nil {
		return fmt.Errorf("failed to get all files from database: %w", err)
	}

	entries := make([]bibliography.Entry, len(records))
	for i, record := range records {
		entries[i] = s.entryFor(record.Path)
	}

	if err := s.bib.Override(entries); err != nil {
		return fmt.Errorf("failed to override bibliography: %w", err)
	}

	return nil
}

// entryFor derives the bibliography entry for a file under the root.
func (s *SQLiteStore) entryFor(path string) bibliography.Entry {
	rel, err := filepath.Rel(s.rootPath, path)
	if err != nil {
		rel = path
	}
	key := utils.Path2Key(path, s.rootPath)
	if key == "" {
		key = strings.TrimSuffix(rel, ".md")
	}
	return bibliography.Entry{
		Key:   key,
		Type:  "Misc",
		Title: rel,
		Path:  rel,
	}
}
