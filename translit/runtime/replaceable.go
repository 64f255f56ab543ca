// Package runtime executes compiled transliterator rules against an
// in-place UTF-8 buffer (spec.md §4.6).
//
// The typical sequence is:
//
//  1. Create a Replaceable over the input string.
//  2. If the direction has a global filter, call Replaceable.ForEachRun
//     with it and operate on each sub-run.
//  3. Call Replaceable.StartMatch, match a rule's ante/key/post against
//     the returned RepMatcher, and on success call FinishMatch to get an
//     Insertable.
//  4. Walk the rule's replacement, pushing literal and decoded text onto
//     the Insertable. A nested function call uses
//     Insertable.StartFunctionCallAdapter to recurse.
//  5. Call Insertable.Finish, which repositions the Replaceable's cursor
//     per the rule's cursor-offset hint, then continue with the next
//     rule until Replaceable.IsFinished.
package runtime

import "unicode/utf8"

// rawBuffer is the single backing byte slice shared by a Replaceable
// and every window derived from it.
type rawBuffer struct {
	data []byte
}

// window is a view over a rawBuffer that hides a prefix and suffix of
// it. All indices passed to its methods are relative to the visible
// part. Multiple windows over the same rawBuffer alias each other:
// a splice through one is visible through all.
type window struct {
	raw     *rawBuffer
	preLen  int
	postLen int
}

func newWindow(s string) window {
	return window{raw: &rawBuffer{data: []byte(s)}}
}

func (w window) len() int {
	return len(w.raw.data) - w.preLen - w.postLen
}

func (w window) bytes() []byte {
	return w.raw.data[w.preLen : len(w.raw.data)-w.postLen]
}

// child returns a window aliasing the same rawBuffer with the same
// visible range, for a Replaceable that shares content with its
// parent but tracks its own cursor and frozen sub-range.
func (w window) child() window {
	return w
}

// tighten narrows the visible range to [start, end) of the current
// window.
func (w window) tighten(start, end int) window {
	return window{
		raw:     w.raw,
		preLen:  w.preLen + start,
		postLen: w.postLen + (w.len() - end),
	}
}

// splice replaces the visible bytes in [start, end) with repl.
func (w window) splice(start, end int, repl []byte) {
	as := w.preLen + start
	ae := w.preLen + end
	merged := make([]byte, 0, as+len(repl)+(len(w.raw.data)-ae))
	merged = append(merged, w.raw.data[:as]...)
	merged = append(merged, repl...)
	merged = append(merged, w.raw.data[ae:]...)
	w.raw.data = merged
}

// Replaceable represents a transliteration run: a window over shared
// text, aware of the sub-range it is allowed to modify and of a cursor
// used by conversion-rule matching.
//
// Replaceables are made to be stacked: ForEachRun narrows a
// Replaceable's modifiable range into a sequence of sub-runs, each its
// own Replaceable sharing the same backing bytes.
type Replaceable struct {
	win        window
	freezePre  int
	freezePost int
	cursor     int
}

// New wraps s for in-place transliteration. The whole string starts
// out modifiable.
func New(s string) *Replaceable {
	return &Replaceable{win: newWindow(s)}
}

// String returns the text visible through this Replaceable's window,
// including any frozen prefix or suffix. A Replaceable returned by
// FunctionCallAdapter.AsReplaceable sees only its own span.
func (r *Replaceable) String() string {
	return string(r.win.bytes())
}

// ModifiableString returns the text within the current modifiable
// range.
func (r *Replaceable) ModifiableString() string {
	s, e := r.AllowedRange()
	return r.String()[s:e]
}

// AllowedRange returns the [start, end) byte range that is currently
// allowed to be modified.
func (r *Replaceable) AllowedRange() (int, int) {
	return r.freezePre, r.allowedUpperBound()
}

func (r *Replaceable) allowedUpperBound() int {
	return r.win.len() - r.freezePost
}

// Cursor returns the current cursor, a valid UTF-8 byte index into the
// full text.
func (r *Replaceable) Cursor() int {
	return r.cursor
}

// StepCursor advances the cursor by one code point.
func (r *Replaceable) StepCursor() {
	s := r.String()
	if r.cursor >= len(s) {
		return
	}
	_, size := utf8.DecodeRuneInString(s[r.cursor:])
	r.cursor += size
}

func (r *Replaceable) setCursor(c int) {
	r.cursor = c
}

// IsFinished reports whether the cursor has reached the end of the
// modifiable range.
func (r *Replaceable) IsFinished() bool {
	return r.cursor >= r.allowedUpperBound()
}

// Child returns a Replaceable sharing this one's content, frozen range
// and cursor, for repeated transliteration of the same modifiable
// range (e.g. re-running a direction's rule list to a fixed point).
func (r *Replaceable) Child() *Replaceable {
	return &Replaceable{
		win:        r.win.child(),
		freezePre:  r.freezePre,
		freezePost: r.freezePost,
		cursor:     r.cursor,
	}
}

// ReplaceModifiableWithStr overwrites the entire modifiable range with
// s. Used by black-box (non-rule-based) transliteration.
func (r *Replaceable) ReplaceModifiableWithStr(s string) {
	start, end := r.AllowedRange()
	r.win.splice(start, end, []byte(s))
}

// Filter reports whether a code point should be visited by a
// transliteration run. A nil Filter matches every code point.
type Filter interface {
	Contains(r rune) bool
}

// ForEachRun applies f to each maximal sub-run of the modifiable range
// whose code points all satisfy filter. Runs are visited left to
// right; a nil filter yields the whole modifiable range as one run.
func (r *Replaceable) ForEachRun(filter Filter, f func(*Replaceable)) {
	start := r.freezePre
	for {
		run, ok := r.nextFilteredRun(start, filter)
		if !ok {
			return
		}
		f(run)
		start = run.allowedUpperBound()
	}
}

func (r *Replaceable) nextFilteredRun(start int, filter Filter) (*Replaceable, bool) {
	upper := r.allowedUpperBound()
	if start == upper {
		return nil, false
	}

	var runStart, runEnd int
	if filter == nil {
		runStart, runEnd = start, upper
	} else {
		rs, ok := r.findFirstCharInModifiableRange(start, filter.Contains)
		if !ok {
			return nil, false
		}
		runStart = rs
		if re, ok := r.findFirstCharInModifiableRange(runStart, func(c rune) bool { return !filter.Contains(c) }); ok {
			runEnd = re
		} else {
			runEnd = upper
		}
	}

	return &Replaceable{
		win:        r.win.child(),
		freezePre:  runStart,
		freezePost: r.win.len() - runEnd,
		cursor:     runStart,
	}, true
}

// findFirstCharInModifiableRange returns the byte index, relative to
// the full text, of the first char at or after start (within the
// modifiable range) that satisfies f.
func (r *Replaceable) findFirstCharInModifiableRange(start int, f func(rune) bool) (int, bool) {
	tail := r.String()[start:r.allowedUpperBound()]
	for i, c := range tail {
		if f(c) {
			return start + i, true
		}
	}
	return 0, false
}

// StartMatch begins matching a single conversion rule at the current
// cursor.
func (r *Replaceable) StartMatch() *RepMatcher {
	return &RepMatcher{
		anteMatcher:   anteMatcher{rep: r},
		forwardCursor: r.cursor,
	}
}
