package memory

import "citescan/internal/citation"

// Change represents a change to be applied to a document. Start and
// End are byte offsets into the current content.
type Change struct {
	Start   int
	End     int
	NewText string
}

// Document represents an open document in memory
type Document interface {
	// Core operations
	GetContent() string
	ApplyChanges(changes []Change) error
	Close() error

	// Citation operations
	GetCitations() []citation.CitationGroup
	CitationAt(offset int) (citation.Citation, bool)
}

// DocumentManager manages open documents in memory
type DocumentManager interface {
	// Document operations
	OpenDocument(path string, content string) (Document, error)
	GetDocument(path string) (Document, bool)
	CommitDocument(path string) error
	CloseDocument(path string) error

	// Bulk operations
	CloseAll() error
}
