package scanner

// Options configures a scan. The zero value scans with the default
// vocabularies and reports citations inside wiki links and markdown
// link texts.
type Options struct {
	// IgnoreLinks suppresses recognition of citations nested inside
	// [[wiki links]] and of bracketed groups that form a markdown link
	// text (immediately followed by a '(' target).
	IgnoreLinks bool

	// Labels is the locator-label vocabulary. Nil means DefaultLabels.
	Labels []string

	// Types is the crossref type vocabulary. Nil means DefaultTypes.
	Types []string
}

// DefaultTypes is the crossref type prefix vocabulary.
var DefaultTypes = []string{"fig", "tbl", "eq", "sec"}

// mode is the conceptual scanner state for the active candidate group.
type mode int

const (
	modeBody           mode = iota // inside brackets, before or between keys
	modeKey                        // accumulating a key after '@'
	modeExplicitKey                // inside a brace-delimited '@{...}' key
	modePostKey                    // inside brackets after a key, before ';' or ']'
	modeExplicitSuffix             // inside a '{...}' locator suffix after a bare key
	modeBareEnd                    // bare key just closed, deciding what follows
	modeLink                       // inside '[[...]]' before any '@'
)

// state tracks one candidate citation group. A state is allocated when a
// group opener is seen and either discarded or finalized into a group.
type state struct {
	mode     mode
	segs     Group
	pendFrom int     // start of uncommitted text, -1 when none
	keyFrom  int     // start of the key being accumulated
	depth    int     // bracket nesting depth
	bare     bool    // opened on a bare '@', no enclosing brackets
	inLink   bool    // opened as '[[...]]'
	keySeen  bool    // at least one key segment committed
	runKey   bool    // a key was committed since the last separator
	cont     bool    // bracketed continuation of a pending bare group
	ws       Segment // gap between a bare key and its continuation bracket
}

// pendingGroup holds a finished bare citation while the scanner looks
// ahead for a bracketed continuation such as the locator in "@key [p. 4]".
type pendingGroup struct {
	segs   Group
	wsFrom int // where the whitespace after the bare key started
}

type scanner struct {
	text   string
	opts   Options
	labels []string
	types  map[string]bool
	groups []Group
	st     *state
	seek   *pendingGroup
}

// Scan walks text once, left to right, and returns every citation
// occurrence as an ordered group of typed segments. Groups appear in
// source order and never overlap. Scan is a pure function: it keeps no
// state between invocations and is safe to call concurrently.
func Scan(text string, opts Options) []Group {
	labels := opts.Labels
	if labels == nil {
		labels = DefaultLabels
	}
	typeList := opts.Types
	if typeList == nil {
		typeList = DefaultTypes
	}
	types := make(map[string]bool, len(typeList))
	for _, t := range typeList {
		types[t] = true
	}

	s := &scanner{text: text, opts: opts, labels: labels, types: types}
	s.run()
	return s.groups
}

func (s *scanner) run() {
	n := len(s.text)
	// One sentinel iteration past the last character flushes any state
	// still open at end of input.
	for i := 0; i <= n; {
		var c byte
		if i < n {
			c = s.text[i]
		}
		adv := s.step(i, c)
		if adv == 0 && i == n && s.st == nil && s.seek == nil {
			break
		}
		i += adv
	}
}

// step dispatches one character to the handler for the current state and
// returns how many bytes were consumed. A zero return means the same
// character must be re-dispatched after a state change.
func (s *scanner) step(i int, c byte) int {
	if s.st == nil {
		return s.stepIdle(i, c)
	}
	switch s.st.mode {
	case modeBody:
		return s.stepBody(i, c)
	case modeKey:
		return s.stepKey(i, c)
	case modeExplicitKey:
		return s.stepExplicitKey(i, c)
	case modePostKey:
		return s.stepPostKey(i, c)
	case modeExplicitSuffix:
		return s.stepExplicitSuffix(i, c)
	case modeBareEnd:
		return s.stepBareEnd(i, c)
	case modeLink:
		return s.stepLink(i, c)
	}
	return 1
}

// stepIdle looks for a group opener: '[' or a validly preceded '@'.
func (s *scanner) stepIdle(i int, c byte) int {
	if s.seek != nil {
		switch {
		case c == ' ' || c == '\t':
			// tolerated gap before a bracketed continuation
			return 1
		case c == '[':
			st := &state{
				mode:     modePostKey,
				depth:    1,
				cont:     true,
				pendFrom: i + 1,
				ws: Segment{
					Type: Suffix,
					From: s.seek.wsFrom,
					To:   i,
					Val:  s.text[s.seek.wsFrom:i],
				},
			}
			s.st = st
			s.commit(Bracket, i, i+1)
			return 1
		default:
			// nothing bracketed follows: the bare citation stands alone
			s.emitSeek()
			return 0
		}
	}

	switch c {
	case '[':
		if i+1 < len(s.text) && s.text[i+1] == '[' {
			s.st = &state{mode: modeLink, depth: 2, inLink: true, pendFrom: i + 2}
			s.commit(Bracket, i, i+2)
			return 2
		}
		s.st = &state{mode: modeBody, depth: 1, pendFrom: i + 1}
		s.commit(Bracket, i, i+1)
		return 1
	case '@':
		if s.validPre(i) && s.keyStartAhead(i) {
			s.st = &state{mode: modeKey, bare: true, keyFrom: i + 1, pendFrom: -1}
			if i > 0 && s.text[i-1] == '-' && s.validPre(i-1) {
				s.st.segs = append(s.st.segs, Segment{
					Type: Suppressor,
					From: i - 1,
					To:   i,
					Val:  s.text[i-1 : i],
				})
			}
			s.commit(At, i, i+1)
			return 1
		}
		return 1
	}
	return 1
}

// stepBody handles text inside brackets before any key: prospective
// prefix characters, nested brackets, and the '@' that opens a key.
func (s *scanner) stepBody(i int, c byte) int {
	st := s.st
	switch {
	case c == 0:
		// unterminated group at end of input
		s.st = nil
		return 1
	case c == ']' && st.inLink && st.depth == 2 && s.peek(i+1) == ']':
		s.flushPend(s.trailingType(), i)
		return s.closeLink(i)
	case c == '[':
		st.depth++
		return 1
	case c == ']':
		st.depth--
		if st.depth > 0 {
			return 1
		}
		s.flushPend(s.trailingType(), i)
		return s.closeBracket(i)
	case c == '@':
		if s.validPre(i) && s.keyStartAhead(i) {
			s.openKey(i)
			return 1
		}
		return 1
	default:
		return 1
	}
}

// openKey commits pending text before an '@' (splitting off a trailing
// '-' as a suppressor), commits the at sigil and enters key mode.
func (s *scanner) openKey(i int) {
	st := s.st
	end := i
	if i > 0 && s.text[i-1] == '-' && (st.pendFrom < 0 || st.pendFrom <= i-1) {
		end = i - 1
	}
	typ := Prefix
	if st.runKey {
		typ = Suffix
	}
	s.flushPend(typ, end)
	if end < i {
		s.commit(Suppressor, end, i)
	}
	s.commit(At, i, i+1)
	st.mode = modeKey
	st.keyFrom = i + 1
}

// stepKey accumulates a citation key character by character.
func (s *scanner) stepKey(i int, c byte) int {
	st := s.st
	if c == '{' && i == st.keyFrom {
		s.commit(CurlyBracket, i, i+1)
		st.mode = modeExplicitKey
		st.keyFrom = i + 1
		return 1
	}
	if isKeyChar(c) {
		return 1
	}
	if c == ':' && s.types[s.text[st.keyFrom:i]] && isKeyChar(s.peek(i+1)) {
		// what looked like a key so far is a crossref type prefix
		s.commit(CiteType, st.keyFrom, i)
		s.commit(TypeSeparator, i, i+1)
		st.keyFrom = i + 1
		return 1
	}
	if isKeyPunct(c) {
		next := s.peek(i + 1)
		if isKeyChar(next) {
			// mid-key punctuation followed by an alphanumeric stays in the key
			return 1
		}
		// doubled punctuation terminates defensively; otherwise the key
		// ends cleanly before trailing sentence punctuation
		return s.endKey(i, isKeyPunct(next))
	}
	return s.endKey(i, false)
}

// endKey commits the accumulated key and routes to the post-key state.
// A defensive end (doubled punctuation) closes a bare citation outright
// instead of looking for a suffix.
func (s *scanner) endKey(i int, defensive bool) int {
	st := s.st
	if i > st.keyFrom {
		s.commit(Key, st.keyFrom, i)
		st.keySeen = true
		st.runKey = true
	}
	if st.bare {
		if !st.keySeen {
			s.st = nil
			return 0
		}
		if defensive {
			s.groups = append(s.groups, st.segs)
			s.st = nil
			return 0
		}
		st.mode = modeBareEnd
		return 0
	}
	st.mode = modePostKey
	st.pendFrom = i
	return 0
}

// stepBareEnd decides what follows a completed bare key: a whitespace
// gap worth seeking across, an explicit '{...}' suffix, or nothing.
func (s *scanner) stepBareEnd(i int, c byte) int {
	st := s.st
	switch {
	case c == ' ' || c == '\t':
		s.seek = &pendingGroup{segs: st.segs, wsFrom: i}
		s.st = nil
		return 1
	case c == '{':
		s.commit(CurlyBracket, i, i+1)
		st.mode = modeExplicitSuffix
		st.pendFrom = i + 1
		return 1
	default:
		s.groups = append(s.groups, st.segs)
		s.st = nil
		return 0
	}
}

// stepExplicitKey consumes a brace-delimited key: any text up to '}'.
func (s *scanner) stepExplicitKey(i int, c byte) int {
	st := s.st
	switch c {
	case 0, '\n':
		// never closed
		s.st = nil
		return 0
	case '}':
		if i > st.keyFrom {
			s.commit(Key, st.keyFrom, i)
			st.keySeen = true
			st.runKey = true
		}
		s.commit(CurlyBracket, i, i+1)
		if !st.keySeen {
			s.st = nil
			return 1
		}
		if st.bare {
			st.mode = modeBareEnd
		} else {
			st.mode = modePostKey
			st.pendFrom = i + 1
		}
		return 1
	default:
		return 1
	}
}

// stepExplicitSuffix consumes a '{...}' locator suffix after a bare key.
func (s *scanner) stepExplicitSuffix(i int, c byte) int {
	st := s.st
	switch c {
	case 0, '\n':
		// unterminated suffix: the citation stands without it
		if n := len(st.segs); n > 0 && st.segs[n-1].Type == CurlyBracket {
			st.segs = st.segs[:n-1]
		}
		s.groups = append(s.groups, st.segs)
		s.st = nil
		return 0
	case '}':
		st.segs = append(st.segs, parseExplicitLocator(s.text, st.pendFrom, i, s.labels)...)
		s.commit(CurlyBracket, i, i+1)
		s.groups = append(s.groups, st.segs)
		s.st = nil
		return 1
	default:
		return 1
	}
}

// stepPostKey handles in-bracket text after a key: locator lookahead,
// separators, further keys, and the closing bracket.
func (s *scanner) stepPostKey(i int, c byte) int {
	st := s.st
	switch {
	case c == 0:
		// unterminated bracket: flush only a pending bare group
		s.st = nil
		if st.cont {
			s.emitSeek()
		}
		return 1
	case c == ']' && st.inLink && st.depth == 2 && s.peek(i+1) == ']':
		s.flushLocator(i)
		return s.closeLink(i)
	case c == '[':
		st.depth++
		return 1
	case c == ']':
		st.depth--
		if st.depth > 0 {
			return 1
		}
		s.flushLocator(i)
		return s.closeBracket(i)
	case c == ';':
		s.flushLocator(i)
		s.commit(Separator, i, i+1)
		st.mode = modeBody
		st.pendFrom = i + 1
		st.runKey = false
		return 1
	case c == '@':
		if s.validPre(i) && s.keyStartAhead(i) {
			if st.cont && s.text[i-1] != '-' {
				// not a locator continuation after all: the bare
				// citation stands alone and this bracket starts fresh.
				// A '-@' follower stays merged so the pair can fold
				// into author-only plus suppressed-author citations.
				s.emitSeek()
				st.cont = false
			}
			s.openKey(i)
			return 1
		}
		return 1
	default:
		return 1
	}
}

// stepLink consumes '[[...]]' content before any '@' is seen.
func (s *scanner) stepLink(i int, c byte) int {
	st := s.st
	switch {
	case c == 0 || c == '\n':
		s.st = nil
		return 0
	case c == '|' && s.peek(i+1) == '@':
		// literature-note link: the path so far gets retyped
		s.flushPend(LitNote, i)
		s.commit(LinkSeparator, i, i+1)
		st.mode = modeBody
		st.pendFrom = i + 1
		return 1
	case c == '@':
		if s.validPre(i) && s.keyStartAhead(i) {
			s.openKey(i)
			return 1
		}
		return 1
	case c == ']' && st.depth == 2 && s.peek(i+1) == ']':
		// closed without any key: plain wiki link, never a citation
		s.st = nil
		return 2
	default:
		return 1
	}
}

// closeBracket finishes a '[...]' group at its final ']'.
func (s *scanner) closeBracket(i int) int {
	st := s.st
	if !st.keySeen && !st.cont {
		s.st = nil
		return 1
	}
	s.commit(Bracket, i, i+1)
	if s.opts.IgnoreLinks && s.peek(i+1) == '(' {
		// markdown link text, swallowed along with any pending seek
		s.st = nil
		s.seek = nil
		return 1
	}
	s.emitGroup()
	return 1
}

// closeLink finishes a '[[...]]' group at its ']]'.
func (s *scanner) closeLink(i int) int {
	st := s.st
	if !st.keySeen || s.opts.IgnoreLinks {
		s.st = nil
		return 2
	}
	s.commit(Bracket, i, i+2)
	s.emitGroup()
	return 2
}

// emitGroup pushes the active state's segments, merging in a pending
// bare group when the state is its bracketed continuation.
func (s *scanner) emitGroup() {
	st := s.st
	if st.cont && s.seek != nil {
		merged := make(Group, 0, len(s.seek.segs)+1+len(st.segs))
		merged = append(merged, s.seek.segs...)
		merged = append(merged, st.ws)
		merged = append(merged, st.segs...)
		s.groups = append(s.groups, merged)
		s.seek = nil
	} else {
		s.groups = append(s.groups, st.segs)
	}
	s.st = nil
}

func (s *scanner) emitSeek() {
	if s.seek != nil {
		s.groups = append(s.groups, s.seek.segs)
		s.seek = nil
	}
}

// flushLocator runs the locator lookahead over pending post-key text
// and commits the resulting segments.
func (s *scanner) flushLocator(i int) {
	st := s.st
	if st.pendFrom < 0 || st.pendFrom >= i {
		st.pendFrom = -1
		return
	}
	st.segs = append(st.segs, parsePossibleLocator(s.text, st.pendFrom, i, s.labels)...)
	st.pendFrom = -1
}

func (s *scanner) flushPend(typ SegmentType, upto int) {
	st := s.st
	if st.pendFrom >= 0 && upto > st.pendFrom {
		s.commit(typ, st.pendFrom, upto)
	}
	st.pendFrom = -1
}

func (s *scanner) commit(typ SegmentType, from, to int) {
	if to <= from {
		return
	}
	s.st.segs = append(s.st.segs, Segment{
		Type: typ,
		From: from,
		To:   to,
		Val:  s.text[from:to],
	})
}

// trailingType picks the classification for dangling in-bracket text
// at group close: suffix once a key exists, prefix otherwise.
func (s *scanner) trailingType() SegmentType {
	if s.st.runKey || s.st.cont {
		return Suffix
	}
	return Prefix
}

func (s *scanner) peek(i int) byte {
	if i < len(s.text) {
		return s.text[i]
	}
	return 0
}

// validPre reports whether the character before position i may precede
// the '@' of a citation.
func (s *scanner) validPre(i int) bool {
	if i == 0 {
		return true
	}
	switch s.text[i-1] {
	case ' ', '\t', '[', '-', '\r', '\n', ';', '|':
		return true
	}
	return false
}

// keyStartAhead reports whether the character after an '@' at i can
// begin a key. A lone '@' is never a citation.
func (s *scanner) keyStartAhead(i int) bool {
	if i+1 >= len(s.text) {
		return false
	}
	c := s.text[i+1]
	return isKeyChar(c) || c == '{'
}

func isKeyChar(c byte) bool {
	return c >= 'a' && c <= 'z' ||
		c >= 'A' && c <= 'Z' ||
		c >= '0' && c <= '9' ||
		c == '_'
}

// isKeyPunct reports punctuation that may appear inside a key when
// followed by an alphanumeric character.
func isKeyPunct(c byte) bool {
	switch c {
	case ':', '.', '#', '$', '%', '&', '-', '+', '?', '<', '>', '~', '/':
		return true
	}
	return false
}
