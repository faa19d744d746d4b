package store

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"citescan/internal/cache/database"
)

// DummyStore implements the Store interface with in-memory storage
type DummyStore struct {
	// citations stores the occurrences per source file
	citations map[string][]database.CitationRecord
	// byKey stores the reverse view, key -> citing occurrences
	byKey map[string][]database.CitationRecord
	// lastUpdate tracks when each file was last updated
	lastUpdate map[string]time.Time
	mu         sync.RWMutex
}

// NewDummyStore creates a new DummyStore with some sample data
func NewDummyStore() *DummyStore {
	store := &DummyStore{
		citations:  make(map[string][]database.CitationRecord),
		byKey:      make(map[string][]database.CitationRecord),
		lastUpdate: make(map[string]time.Time),
	}

	// Add some sample data
	samplePaths := []string{
		"essay1.md",
		"essay2.md",
		"folder/essay3.md",
	}

	store.citations[samplePaths[0]] = []database.CitationRecord{
		{SourcePath: samplePaths[0], Key: "doe2020", Start: 12, End: 22, Ord: 0},
		{SourcePath: samplePaths[0], Key: "smith2021", Start: 40, End: 52, Ord: 1},
	}
	store.citations[samplePaths[1]] = []database.CitationRecord{
		{SourcePath: samplePaths[1], Key: "doe2020", Start: 5, End: 15, Ord: 0},
	}
	store.citations[samplePaths[2]] = []database.CitationRecord{
		{SourcePath: samplePaths[2], Key: "jones2022", CiteType: "fig", Start: 30, End: 45, Ord: 0},
	}

	store.rebuildKeyView()

	// Set initial update times
	now := time.Now()
	for _, path := range samplePaths {
		store.lastUpdate[path] = now
	}

	return store
}

// rebuildKeyView rebuilds the reverse view. Callers hold the write lock.
func (s *DummyStore) rebuildKeyView() {
	s.byKey = make(map[string][]database.CitationRecord)
	for _, records := range s.citations {
		for _, record := range records {
			s.byKey[record.Key] = append(s.byKey[record.Key], record)
		}
	}
}

// UpdateOne simulates updating a single file
func (s *DummyStore) UpdateOne(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.lastUpdate[path]; !exists {
		return fmt.Errorf("file not found: %s", path)
	}

	s.lastUpdate[path] = time.Now()
	return nil
}

// UpdateAll simulates updating all files
func (s *DummyStore) UpdateAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for path := range s.lastUpdate {
		s.lastUpdate[path] = now
	}
	return nil
}

// Recompute rebuilds the reverse view from the occurrence table
func (s *DummyStore) Recompute() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rebuildKeyView()
	return nil
}

// GetAllFiles returns all indexed file paths
func (s *DummyStore) GetAllFiles() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	paths := make([]string, 0, len(s.lastUpdate))
	for path := range s.lastUpdate {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths, nil
}

// GetCitations returns the citation occurrences in the given file
func (s *DummyStore) GetCitations(path string) ([]database.CitationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, exists := s.lastUpdate[path]; !exists {
		return nil, fmt.Errorf("file not found: %s", path)
	}

	records := make([]database.CitationRecord, len(s.citations[path]))
	copy(records, s.citations[path])
	return records, nil
}

// GetReferences returns every occurrence citing the given key
func (s *DummyStore) GetReferences(key string) ([]database.CitationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]database.CitationRecord, len(s.byKey[key]))
	copy(records, s.byKey[key])
	return records, nil
}

func (s *DummyStore) Close() error {
	return nil
}
