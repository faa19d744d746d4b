// Package citation folds the scanner's token groups into semantic
// citation records.
package citation

import (
	"strings"

	"citescan/internal/locale"
	"citescan/internal/scanner"
)

// Citation is one citation inside a group. At most one of Composite,
// SuppressAuthor and AuthorOnly is set; the last assignment wins.
type Citation struct {
	ID             string `json:"id"`
	Prefix         string `json:"prefix,omitempty"`
	Suffix         string `json:"suffix,omitempty"`
	Infix          string `json:"infix,omitempty"`
	Locator        string `json:"locator,omitempty"`
	Label          string `json:"label,omitempty"`
	LitNote        string `json:"litNote,omitempty"`
	CiteType       string `json:"citeType,omitempty"`
	SuppressAuthor bool   `json:"suppress-author,omitempty"`
	AuthorOnly     bool   `json:"author-only,omitempty"`
	Composite      bool   `json:"composite,omitempty"`
}

// CitationGroup is one group's token list, its derived citations, and
// the span it covers in the source text.
type CitationGroup struct {
	Data      []scanner.Segment `json:"data"`
	Citations []Citation        `json:"citations"`
	From      int               `json:"from"`
	To        int               `json:"to"`
}

func (c *Citation) setComposite() {
	c.Composite = true
	c.SuppressAuthor = false
	c.AuthorOnly = false
}

func (c *Citation) setSuppressAuthor() {
	c.SuppressAuthor = true
	c.Composite = false
	c.AuthorOnly = false
}

func (c *Citation) setAuthorOnly() {
	c.AuthorOnly = true
	c.Composite = false
	c.SuppressAuthor = false
}

// folder accumulates fields for the citation currently being built.
type folder struct {
	loc     string
	terms   locale.Table
	out     []Citation
	cur     Citation
	suffix  string // post-key text, routed to infix or suffix on flush
	content bool   // a non-structural segment has been consumed
}

// Fold walks one group's segment sequence and derives its citation
// records. loc selects the locator-label table; empty means en-US.
// Fold never fails: unknown labels are dropped and key-less runs
// between separators yield no record.
func Fold(segs []scanner.Segment, loc string, terms locale.Table) CitationGroup {
	if terms == nil {
		terms = locale.Default()
	}
	f := &folder{loc: loc, terms: terms}

	for _, seg := range segs {
		switch seg.Type {
		case scanner.At:
			if !f.content {
				// the group leads with a bare sigil: bracket-free
				// rendering convention
				f.cur.setComposite()
			}
			f.content = true
		case scanner.Key:
			if f.cur.ID != "" {
				// a second key without a separator closes the first
				f.flush()
			}
			f.cur.ID = seg.Val
			f.content = true
		case scanner.Suppressor:
			if f.cur.Composite && f.cur.ID != "" {
				// "@key -@key": the leading citation renders author
				// only, the follower drops the author
				f.cur.setAuthorOnly()
				f.flush()
			}
			f.cur.setSuppressAuthor()
			f.content = true
		case scanner.Prefix:
			f.cur.Prefix += seg.Val
			f.content = true
		case scanner.Suffix:
			f.suffix += seg.Val
			f.content = true
		case scanner.Locator:
			if f.cur.Composite && strings.TrimSpace(f.suffix) != "" {
				f.cur.Infix = strings.TrimSpace(f.suffix)
				f.suffix = ""
			}
			f.cur.Locator += seg.Val
			f.content = true
		case scanner.LocatorLabel:
			if term, ok := f.terms.Lookup(f.loc, seg.Val); ok {
				f.cur.Label = term
			}
			f.content = true
		case scanner.LitNote:
			f.cur.LitNote = seg.Val
		case scanner.CiteType:
			f.cur.CiteType = seg.Val
			f.content = true
		case scanner.Separator:
			f.flush()
			f.content = true
		case scanner.Bracket, scanner.CurlyBracket, scanner.LinkSeparator,
			scanner.TypeSeparator, scanner.LocatorSuffix:
			// structural tokens carry no citation fields
		}
	}
	f.flush()

	group := CitationGroup{Data: segs, Citations: f.out}
	if len(segs) > 0 {
		group.From = segs[0].From
		group.To = segs[len(segs)-1].To
	}
	return group
}

// flush finalizes the current citation and resets the accumulator.
// Citations without a key are dropped.
func (f *folder) flush() {
	if f.cur.ID != "" {
		f.cur.Prefix = strings.TrimSpace(f.cur.Prefix)
		f.cur.Suffix = strings.TrimSpace(f.suffix)
		f.cur.Locator = strings.TrimSpace(f.cur.Locator)
		f.out = append(f.out, f.cur)
	}
	f.cur = Citation{}
	f.suffix = ""
}
