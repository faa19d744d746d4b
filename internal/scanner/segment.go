package scanner

import "encoding/json"

// SegmentType classifies a single token produced by the scanner.
type SegmentType int

const (
	At SegmentType = iota // the '@' sigil
	Key
	CurlyBracket // '{' or '}' around an explicit key or locator suffix
	Bracket      // '[', ']', '[[' or ']]'
	Suppressor   // the '-' of an author-suppressing '-@'
	Prefix
	Suffix
	Locator
	LocatorLabel
	LocatorSuffix // whitespace/punctuation around a locator label
	Separator     // ';' between citations in a group
	LitNote       // link path preceding a '|' literature-note separator
	LinkSeparator // the '|' before '@' inside '[[...]]'
	CiteType      // crossref type prefix: fig, tbl, eq, sec
	TypeSeparator // the ':' after a crossref type
)

var segmentTypeNames = map[SegmentType]string{
	At:            "at",
	Key:           "key",
	CurlyBracket:  "curlyBracket",
	Bracket:       "bracket",
	Suppressor:    "suppressor",
	Prefix:        "prefix",
	Suffix:        "suffix",
	Locator:       "locator",
	LocatorLabel:  "locatorLabel",
	LocatorSuffix: "locatorSuffix",
	Separator:     "separator",
	LitNote:       "litNote",
	LinkSeparator: "linkSeparator",
	CiteType:      "citeType",
	TypeSeparator: "typeSeparator",
}

func (t SegmentType) String() string {
	if name, ok := segmentTypeNames[t]; ok {
		return name
	}
	return "unknown"
}

// MarshalJSON emits the type's name rather than its numeric value.
func (t SegmentType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// Segment is one classified, positioned token. From and To are half-open
// byte offsets into the scanned text, and Val is exactly text[From:To].
type Segment struct {
	Type SegmentType `json:"type"`
	From int         `json:"from"`
	To   int         `json:"to"`
	Val  string      `json:"val"`
}

// Group is the ordered token sequence for one citation occurrence.
// Concatenating the Vals of a group reproduces the source substring
// between the first segment's From and the last segment's To.
type Group []Segment

// From returns the start offset of the group's span.
func (g Group) From() int {
	if len(g) == 0 {
		return 0
	}
	return g[0].From
}

// To returns the end offset of the group's span.
func (g Group) To() int {
	if len(g) == 0 {
		return 0
	}
	return g[len(g)-1].To
}

// Text reconstructs the source substring covered by the group.
func (g Group) Text() string {
	var out string
	for _, seg := range g {
		out += seg.Val
	}
	return out
}
