package scanner

import "strings"

// DefaultLabels is the locator-label vocabulary: the CSL pinpoint
// abbreviations recognized ahead of a locator value. Matching always
// prefers the longest label, so order here does not matter.
var DefaultLabels = []string{
	"bk.", "bks.",
	"chap.", "chaps.",
	"col.", "cols.",
	"fig.", "figs.",
	"fol.", "fols.",
	"l.", "ll.",
	"n.", "nn.",
	"no.", "nos.",
	"op.", "opp.",
	"p.", "pp.",
	"para.", "paras.", "¶", "¶¶",
	"pt.", "pts.",
	"sec.", "secs.", "§", "§§",
	"s.v.", "s.vv.",
	"v.", "vv.",
	"vol.", "vols.",
}

// parsePossibleLocator interprets post-key text such as ", p. 12" as a
// CSL locator. It splits the span into an optional leading separator, a
// locator label, the locator value, and a trailing suffix. When no
// locator shape is found the whole span reverts to a single suffix
// segment, so the caller always gets segments covering [from, to).
func parsePossibleLocator(text string, from, to int, labels []string) []Segment {
	return splitLocator(text, from, to, labels, ",;: \t")
}

// parseExplicitLocator interprets the contents of a '{...}' suffix
// after a key. Unlike parsePossibleLocator it only skips whitespace
// before the label: explicit suffixes carry no separator punctuation.
func parseExplicitLocator(text string, from, to int, labels []string) []Segment {
	return splitLocator(text, from, to, labels, " \t")
}

func splitLocator(text string, from, to int, labels []string, sepChars string) []Segment {
	s := text[from:to]
	if s == "" {
		return nil
	}
	suffixOnly := []Segment{{Type: Suffix, From: from, To: to, Val: s}}

	i := 0
	for i < len(s) && strings.IndexByte(sepChars, s[i]) >= 0 {
		i++
	}
	sepEnd := i

	label := matchLabel(s[i:], labels)
	labelEnd := i + len(label)

	j := labelEnd
	for j < len(s) && (s[j] == ' ' || s[j] == '\t') {
		j++
	}
	wsEnd := j

	valLen := locatorValue(s[j:], label != "")
	valEnd := j + valLen
	if valLen == 0 {
		return suffixOnly
	}

	segs := make([]Segment, 0, 5)
	push := func(typ SegmentType, a, b int) {
		if b > a {
			segs = append(segs, Segment{Type: typ, From: from + a, To: from + b, Val: s[a:b]})
		}
	}
	push(LocatorSuffix, 0, sepEnd)
	push(LocatorLabel, sepEnd, labelEnd)
	push(LocatorSuffix, labelEnd, wsEnd)
	push(Locator, wsEnd, valEnd)
	push(Suffix, valEnd, len(s))
	return segs
}

// matchLabel returns the longest label from the vocabulary prefixing s,
// or "" when none applies. A label only counts when followed by
// whitespace, a digit, or nothing at all: "p.x" is not a page label.
func matchLabel(s string, labels []string) string {
	best := ""
	for _, label := range labels {
		if len(label) <= len(best) || !strings.HasPrefix(s, label) {
			continue
		}
		if len(s) > len(label) {
			next := s[len(label)]
			if next != ' ' && next != '\t' && !(next >= '0' && next <= '9') {
				continue
			}
		}
		best = label
	}
	return best
}

// locatorValue measures the leading locator value in s: page numbers,
// ranges, roman numerals after a label, and bracketed sub-locators.
// Returns 0 when s does not start a plausible value.
func locatorValue(s string, labelled bool) int {
	if s == "" {
		return 0
	}
	if !labelled && !(s[0] >= '0' && s[0] <= '9') {
		// without a label only numeric pinpoints are trusted
		return 0
	}
	depth := 0
	i := 0
loop:
	for i < len(s) {
		c := s[i]
		switch {
		case c >= '0' && c <= '9' || isKeyChar(c) || c == '-':
			i++
		case c == ',':
			i++
		case c == '[':
			depth++
			i++
		case c == ']' && depth > 0:
			depth--
			i++
		default:
			break loop
		}
	}
	// back off over trailing punctuation and unbalanced opens
	for i > 0 && (s[i-1] == ',' || s[i-1] == '-' || s[i-1] == '[') {
		i--
	}
	return i
}
