package runtime

import (
	"strings"
	"unicode/utf8"
)

// anteMatcher is the reverse-matching half shared by RepMatcher and
// PostMatcher: ante context is always matched right-aligned at the
// Replaceable's original cursor, independent of whether the key or
// post phase is currently active.
type anteMatcher struct {
	rep          *Replaceable
	anteMatchLen int
}

// AnteCursor is the byte index of the leftmost matched ante char.
func (m *anteMatcher) AnteCursor() int {
	return m.rep.cursor - m.anteMatchLen
}

func (m *anteMatcher) remainingAnteSlice() string {
	return m.rep.String()[:m.AnteCursor()]
}

// IsAnteEmpty reports whether there is no more text to match leftward.
func (m *anteMatcher) IsAnteEmpty() bool {
	return m.AnteCursor() == 0
}

// MatchAnteStr reports whether s matches immediately to the left of
// the current ante cursor, without consuming it.
func (m *anteMatcher) MatchAnteStr(s string) bool {
	return strings.HasSuffix(m.remainingAnteSlice(), s)
}

// MatchAnteStartAnchor reports whether the ante cursor sits at the
// very start of the text.
func (m *anteMatcher) MatchAnteStartAnchor() bool {
	return m.AnteCursor() == 0
}

// MatchAnteEndAnchor reports whether the ante cursor sits at the very
// end of the Replaceable's own content (ante matches right to left,
// so its "end anchor" is the text's end).
func (m *anteMatcher) MatchAnteEndAnchor() bool {
	return m.AnteCursor() == m.rep.win.len()
}

// ConsumeAnte extends the ante match leftward by n bytes, failing if
// that would run past the start of the text.
func (m *anteMatcher) ConsumeAnte(n int) bool {
	if n > m.AnteCursor() {
		return false
	}
	m.anteMatchLen += n
	return true
}

// NextAnteChar returns the char immediately to the left of the ante
// cursor, if any.
func (m *anteMatcher) NextAnteChar() (rune, bool) {
	s := m.remainingAnteSlice()
	if s == "" {
		return 0, false
	}
	r, _ := utf8.DecodeLastRuneInString(s)
	return r, true
}

// RepMatcher matches a conversion rule's ante and key against a
// Replaceable, starting at its cursor. Matching the key and matching
// the post context are distinct phases: FinishKey ends the key phase
// and returns a PostMatcher, so code can't accidentally resume
// matching the key once the post phase has begun.
type RepMatcher struct {
	anteMatcher
	keyMatchLen   int
	forwardCursor int
}

func (m *RepMatcher) remaining() int {
	return m.rep.allowedUpperBound() - m.forwardCursor
}

func (m *RepMatcher) remainingForwardSlice() string {
	return m.rep.String()[m.forwardCursor:m.rep.allowedUpperBound()]
}

// ForwardCursor is the byte index of the matcher's key cursor.
func (m *RepMatcher) ForwardCursor() int {
	return m.forwardCursor
}

// IsKeyEmpty reports whether there is no more modifiable text to the
// right of the key cursor.
func (m *RepMatcher) IsKeyEmpty() bool {
	return m.remaining() == 0
}

// MatchKeyStr reports whether s matches starting at the key cursor,
// without consuming it.
func (m *RepMatcher) MatchKeyStr(s string) bool {
	return strings.HasPrefix(m.remainingForwardSlice(), s)
}

// MatchKeyStartAnchor reports whether the key cursor sits at byte 0.
func (m *RepMatcher) MatchKeyStartAnchor() bool {
	return m.forwardCursor == 0
}

// MatchKeyEndAnchor reports whether the key cursor sits at the very
// end of the Replaceable's own content.
func (m *RepMatcher) MatchKeyEndAnchor() bool {
	return m.forwardCursor == m.rep.win.len()
}

// ConsumeKey extends the key match by n bytes, failing if that would
// run past the modifiable range.
func (m *RepMatcher) ConsumeKey(n int) bool {
	if n > m.remaining() {
		return false
	}
	m.keyMatchLen += n
	m.forwardCursor += n
	return true
}

// NextKeyChar returns the char at the key cursor, if any.
func (m *RepMatcher) NextKeyChar() (rune, bool) {
	s := m.remainingForwardSlice()
	if s == "" {
		return 0, false
	}
	r, _ := utf8.DecodeRuneInString(s)
	return r, true
}

// FinishKey ends the key-matching phase and returns a PostMatcher
// positioned right after the matched key, ready to match the post
// context.
func (m *RepMatcher) FinishKey() *PostMatcher {
	return &PostMatcher{
		anteMatcher:   m.anteMatcher,
		keyMatchLen:   m.keyMatchLen,
		forwardCursor: m.forwardCursor,
	}
}

// FinishMatch ends both the key and (trivially, empty) post phases and
// returns an Insertable for applying the replacement. Equivalent to
// FinishKey().FinishMatch() when a rule has no post context to match.
func (m *RepMatcher) FinishMatch() *Insertable {
	return m.FinishKey().FinishMatch()
}

// PostMatcher matches a conversion rule's post context, left-aligned
// at the end of the already-matched key. It can no longer extend the
// key match; ante matching remains available, as ante and post are
// independent of each other.
type PostMatcher struct {
	anteMatcher
	keyMatchLen   int
	postMatchLen  int
	forwardCursor int
}

func (m *PostMatcher) remaining() int {
	return m.rep.win.len() - m.forwardCursor
}

func (m *PostMatcher) remainingForwardSlice() string {
	return m.rep.String()[m.forwardCursor:]
}

// ForwardCursor is the byte index of the matcher's post cursor.
func (m *PostMatcher) ForwardCursor() int {
	return m.forwardCursor
}

// IsPostEmpty reports whether there is no more text to the right of
// the post cursor.
func (m *PostMatcher) IsPostEmpty() bool {
	return m.remaining() == 0
}

// MatchPostStr reports whether s matches starting at the post cursor,
// without consuming it.
func (m *PostMatcher) MatchPostStr(s string) bool {
	return strings.HasPrefix(m.remainingForwardSlice(), s)
}

// MatchPostStartAnchor reports whether the post cursor sits at byte 0.
func (m *PostMatcher) MatchPostStartAnchor() bool {
	return m.forwardCursor == 0
}

// MatchPostEndAnchor reports whether the post cursor sits at the very
// end of the Replaceable's own content.
func (m *PostMatcher) MatchPostEndAnchor() bool {
	return m.forwardCursor == m.rep.win.len()
}

// ConsumePost extends the post match by n bytes, failing if that would
// run past the end of the Replaceable's content.
func (m *PostMatcher) ConsumePost(n int) bool {
	if n > m.remaining() {
		return false
	}
	m.postMatchLen += n
	m.forwardCursor += n
	return true
}

// NextPostChar returns the char at the post cursor, if any.
func (m *PostMatcher) NextPostChar() (rune, bool) {
	s := m.remainingForwardSlice()
	if s == "" {
		return 0, false
	}
	r, _ := utf8.DecodeRuneInString(s)
	return r, true
}

// FinishMatch ends the post-matching phase and returns an Insertable
// that owns the matched key's byte range, ready to receive the rule's
// replacement.
func (m *PostMatcher) FinishMatch() *Insertable {
	return newInsertable(m)
}
