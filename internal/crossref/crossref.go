// Package crossref renders pandoc-crossref style citation groups
// (figure, table, equation and section references) into display labels.
package crossref

import (
	"strings"

	"citescan/internal/citation"
)

// RenderedCitation is a citation group with a display string attached.
// Note and NoteIndex are filled for literature-note citations by the
// cache layer, not by Render.
type RenderedCitation struct {
	citation.CitationGroup
	Val       string `json:"val"`
	NoteIndex int    `json:"noteIndex,omitempty"`
	Note      string `json:"note,omitempty"`
}

type typeLabel struct {
	singular string
	plural   string
}

var typeLabels = map[string]typeLabel{
	"fig": {"Figure", "Figures"},
	"tbl": {"Table", "Tables"},
	"eq":  {"Equation", "Equations"},
	"sec": {"Section", "Sections"},
}

// Render filters groups whose first citation carries a crossref type
// and attaches a display label: the singular or plural type name
// followed by the comma-joined citation ids, wrapped in brackets.
// Output preserves input order; groups are never deduplicated.
func Render(groups []citation.CitationGroup) []RenderedCitation {
	var out []RenderedCitation
	for _, group := range groups {
		if len(group.Citations) == 0 {
			continue
		}
		label, ok := typeLabels[group.Citations[0].CiteType]
		if !ok {
			continue
		}
		name := label.singular
		if len(group.Citations) > 1 {
			name = label.plural
		}
		ids := make([]string, len(group.Citations))
		for i, cit := range group.Citations {
			ids[i] = cit.ID
		}
		out = append(out, RenderedCitation{
			CitationGroup: group,
			Val:           "[" + name + " " + strings.Join(ids, ", ") + "]",
		})
	}
	return out
}
