package store

import "citescan/internal/cache/database"

// Store is the long-term citation index over a notes directory.
type Store interface {
	// Core Operations
	UpdateOne(path string) error
	UpdateAll() error
	Recompute() error

	// Queries
	GetAllFiles() ([]string, error)
	GetCitations(path string) ([]database.CitationRecord, error)
	GetReferences(key string) ([]database.CitationRecord, error)

	Close() error
}
