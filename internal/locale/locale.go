// Package locale holds the locator-label term tables: for a locale and
// an abbreviated label like "p." or "chap.", the display term a reader
// should see. Tables are plain data, read-only at lookup time, and safe
// to share across concurrent callers.
package locale

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultLocale is assumed when a caller passes an empty locale.
const DefaultLocale = "en-US"

// Table maps locale -> label abbreviation -> display term.
type Table map[string]map[string]string

// Default returns the built-in table. Only en-US ships with the
// scanner; other locales load from YAML via Load.
func Default() Table {
	return Table{
		"en-US": {
			"bk.":    "book",
			"bks.":   "books",
			"chap.":  "chapter",
			"chaps.": "chapters",
			"col.":   "column",
			"cols.":  "columns",
			"fig.":   "figure",
			"figs.":  "figures",
			"fol.":   "folio",
			"fols.":  "folios",
			"l.":     "line",
			"ll.":    "lines",
			"n.":     "note",
			"nn.":    "notes",
			"no.":    "number",
			"nos.":   "numbers",
			"op.":    "opus",
			"opp.":   "opera",
			"p.":     "page",
			"pp.":    "pages",
			"para.":  "paragraph",
			"paras.": "paragraphs",
			"¶":      "paragraph",
			"¶¶":     "paragraphs",
			"pt.":    "part",
			"pts.":   "parts",
			"sec.":   "section",
			"secs.":  "sections",
			"§":      "section",
			"§§":     "sections",
			"s.v.":   "sub verbo",
			"s.vv.":  "sub verbis",
			"v.":     "verse",
			"vv.":    "verses",
			"vol.":   "volume",
			"vols.":  "volumes",
		},
	}
}

// Lookup resolves a label abbreviation for a locale. The second return
// is false when the locale or the label has no mapping; callers drop
// the label in that case rather than failing.
func (t Table) Lookup(locale, label string) (string, bool) {
	if locale == "" {
		locale = DefaultLocale
	}
	terms, ok := t[locale]
	if !ok {
		return "", false
	}
	term, ok := terms[label]
	return term, ok
}

// Labels returns every label abbreviation known to any locale in the
// table, for use as a scanner vocabulary.
func (t Table) Labels() []string {
	seen := make(map[string]bool)
	var labels []string
	for _, terms := range t {
		for label := range terms {
			if !seen[label] {
				seen[label] = true
				labels = append(labels, label)
			}
		}
	}
	return labels
}

// Load reads additional locale tables from a YAML file shaped like the
// Table type and merges them over the built-in defaults.
func Load(path string) (Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read locale table: %w", err)
	}

	var loaded Table
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return nil, fmt.Errorf("failed to parse locale table: %w", err)
	}

	table := Default()
	for locale, terms := range loaded {
		if table[locale] == nil {
			table[locale] = make(map[string]string, len(terms))
		}
		for label, term := range terms {
			table[locale][label] = term
		}
	}
	return table, nil
}
