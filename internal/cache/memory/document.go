package memory

import (
	"fmt"
	"sync"

	"citescan/internal/citation"
	"citescan/internal/locale"
	"citescan/internal/scanner"
)

// ScanDocument implements the Document interface by rescanning the
// content whenever it changes. A full scan is a single pass over the
// text, so edits stay cheap even without incremental state.
type ScanDocument struct {
	content string
	options scanner.Options
	locale  string
	terms   locale.Table
	groups  []citation.CitationGroup
	mu      sync.RWMutex
}

// NewScanDocument creates a new ScanDocument with the given content.
func NewScanDocument(content string, options scanner.Options, loc string, terms locale.Table) *ScanDocument {
	if terms == nil {
		terms = locale.Default()
	}
	if options.Labels == nil {
		options.Labels = terms.Labels()
	}

	doc := &ScanDocument{
		content: content,
		options: options,
		locale:  loc,
		terms:   terms,
	}
	doc.rescan()
	return doc
}

// rescan rebuilds the citation groups. Callers hold the write lock.
func (d *ScanDocument) rescan() {
	groups := scanner.Scan(d.content, d.options)
	d.groups = make([]citation.CitationGroup, len(groups))
	for i, group := range groups {
		d.groups[i] = citation.Fold(group, d.locale, d.terms)
	}
}

func (d *ScanDocument) GetContent() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.content
}

func (d *ScanDocument) ApplyChanges(changes []Change) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, change := range changes {
		if change.Start > change.End || change.End > len(d.content) {
			return fmt.Errorf("invalid range: content length is %d, range is %d-%d",
				len(d.content), change.Start, change.End)
		}
		d.content = d.content[:change.Start] + change.NewText + d.content[change.End:]
	}

	d.rescan()
	return nil
}

func (d *ScanDocument) GetCitations() []citation.CitationGroup {
	d.mu.RLock()
	defer d.mu.RUnlock()

	groups := make([]citation.CitationGroup, len(d.groups))
	copy(groups, d.groups)
	return groups
}

// CitationAt returns the citation covering the given byte offset.
func (d *ScanDocument) CitationAt(offset int) (citation.Citation, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	for _, group := range d.groups {
		if offset < group.From || offset >= group.To {
			continue
		}
		if len(group.Citations) == 0 {
			break
		}
		// Pick the citation whose key span covers the offset, falling
		// back to the last one starting before it.
		idx := 0
		cit := 0
		for _, seg := range group.Data {
			if seg.Type == scanner.Key {
				if seg.From <= offset {
					cit = idx
				}
				idx++
			}
		}
		if cit < len(group.Citations) {
			return group.Citations[cit], true
		}
		return group.Citations[len(group.Citations)-1], true
	}
	return citation.Citation{}, false
}

func (d *ScanDocument) Close() error {
	return nil
}
