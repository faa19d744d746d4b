package server

import (
	"citescan/internal/cache/database"
	"citescan/internal/cache/memory"
	"citescan/internal/citation"
)

// FilesResponse lists every indexed file.
type FilesResponse struct {
	Files []string `json:"files"`
	Error string   `json:"error,omitempty"`
}

// CitationsResponse lists citation occurrences, either for one file or
// for one key across all files.
type CitationsResponse struct {
	Citations []CitationResult `json:"citations"`
	Error     string           `json:"error,omitempty"`
}

// CitationResult is one occurrence in wire form.
type CitationResult struct {
	SourcePath string `json:"sourcePath"`
	Key        string `json:"key"`
	CiteType   string `json:"citeType,omitempty"`
	LitNote    string `json:"litNote,omitempty"`
	NoteIndex  int    `json:"noteIndex,omitempty"`
	Start      int    `json:"start"`
	End        int    `json:"end"`
}

// ResolveResponse is the bibliography entry for a key.
type ResolveResponse struct {
	Key   string `json:"key"`
	Type  string `json:"type,omitempty"`
	Title string `json:"title,omitempty"`
	Path  string `json:"path,omitempty"`
	Error string `json:"error,omitempty"`
}

// OpenDocumentRequest opens an editing session for a file.
type OpenDocumentRequest struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// ChangesRequest applies edits to an open document.
type ChangesRequest struct {
	Path    string           `json:"path"`
	Changes []DocumentChange `json:"changes"`
}

// DocumentChange is one edit, with byte offsets into the current
// content.
type DocumentChange struct {
	Start   int    `json:"start"`
	End     int    `json:"end"`
	NewText string `json:"newText"`
}

// DocumentRequest names an open document.
type DocumentRequest struct {
	Path string `json:"path"`
}

// DocumentResponse reports the outcome of a document operation.
type DocumentResponse struct {
	Path  string `json:"path,omitempty"`
	Error string `json:"error,omitempty"`
}

// CitationAtResponse is the citation covering an offset in an open
// document.
type CitationAtResponse struct {
	Citation *citation.Citation `json:"citation,omitempty"`
	Error    string             `json:"error,omitempty"`
}

func toChanges(changes []DocumentChange) []memory.Change {
	result := make([]memory.Change, len(changes))
	for i, change := range changes {
		result[i] = memory.Change{
			Start:   change.Start,
			End:     change.End,
			NewText: change.NewText,
		}
	}
	return result
}

func toCitationResults(records []database.CitationRecord) []CitationResult {
	results := make([]CitationResult, len(records))
	for i, record := range records {
		results[i] = CitationResult{
			SourcePath: record.SourcePath,
			Key:        record.Key,
			CiteType:   record.CiteType,
			LitNote:    record.LitNote,
			NoteIndex:  record.NoteIndex,
			Start:      record.Start,
			End:        record.End,
		}
	}
	return results
}
