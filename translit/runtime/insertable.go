package runtime

import (
	"unicode/utf8"

	"github.com/icu4x-go/corei18n/translit/parser"
)

// matchLengths is the byte length of the three match portions of a
// conversion rule, captured at the moment matching finished.
type matchLengths struct {
	ante int
	key  int
	post int
}

// cursorOffset is the pending instruction for where an Insertable's
// Finish should leave the Replaceable's cursor. count is unused for
// Default, a byte offset for Byte, and a code-point count for the two
// CharsOff* kinds.
type cursorOffset struct {
	kind  parser.CursorOffsetKind
	count int
}

// Insertable provides append-only replacement of the byte range a
// matched conversion rule's key occupies. It grows that range
// incrementally from the left as text is pushed, so most replacements
// never need a second pass over the buffer; a replacement shorter than
// the matched key is accommodated by Finish trimming the leftover.
//
// Insertable must have Finish called exactly once, after which it must
// not be used again. Finish adjusts the owning Replaceable's cursor
// according to the rule's cursor-offset hint.
type Insertable struct {
	rep          *Replaceable
	start        int
	endLen       int
	curr         int
	matchLens    matchLengths
	cursorOffset cursorOffset
	finished     bool
}

func newInsertable(m *PostMatcher) *Insertable {
	lens := matchLengths{ante: m.anteMatchLen, key: m.keyMatchLen, post: m.postMatchLen}
	start := m.rep.cursor
	endLen := m.rep.win.len() - (start + lens.key)
	return &Insertable{
		rep:          m.rep,
		start:        start,
		endLen:       endLen,
		curr:         start,
		matchLens:    lens,
		cursorOffset: cursorOffset{kind: parser.CursorDefault},
	}
}

func (ins *Insertable) end() int {
	return ins.rep.win.len() - ins.endLen
}

// ApplySizeHint pre-grows the replacement range to fit size bytes,
// avoiding repeated moves of the unreplaced tail when the final
// replacement length is known up front.
func (ins *Insertable) ApplySizeHint(size int) {
	free := ins.end() - ins.curr
	if free < size {
		ins.rep.win.splice(ins.end(), ins.end(), make([]byte, size-free))
	}
}

// Push appends a single char to the replacement.
func (ins *Insertable) Push(c rune) {
	var buf [utf8.UTFMax]byte
	n := utf8.EncodeRune(buf[:], c)
	ins.PushStr(string(buf[:n]))
}

// PushStr appends s to the replacement.
func (ins *Insertable) PushStr(s string) {
	free := ins.end() - ins.curr
	if free >= len(s) {
		copy(ins.rep.win.bytes()[ins.curr:ins.curr+len(s)], s)
		ins.curr += len(s)
		return
	}
	ins.rep.win.splice(ins.curr, ins.end(), []byte(s))
	ins.curr = ins.end()
}

// CurrReplacementLen returns the number of bytes pushed so far.
func (ins *Insertable) CurrReplacementLen() int {
	return ins.curr - ins.start
}

// CurrReplacement returns the replacement text pushed so far.
func (ins *Insertable) CurrReplacement() string {
	return string(ins.rep.win.bytes()[ins.start:ins.curr])
}

// SetOffsetToHere requests that Finish leave the cursor at the current
// end of the pushed replacement (a target `|` with no placeholders).
func (ins *Insertable) SetOffsetToHere() {
	ins.cursorOffset = cursorOffset{kind: parser.CursorByte, count: ins.CurrReplacementLen()}
}

// SetOffsetToCharsOffEnd requests that Finish leave the cursor count
// code points into the matched post context (a target `|@@@`).
func (ins *Insertable) SetOffsetToCharsOffEnd(count int) {
	ins.cursorOffset = cursorOffset{kind: parser.CursorCharsOffEnd, count: count}
}

// SetOffsetToCharsOffStart requests that Finish leave the cursor count
// code points into the matched ante context (a target `@@@|`).
func (ins *Insertable) SetOffsetToCharsOffStart(count int) {
	ins.cursorOffset = cursorOffset{kind: parser.CursorCharsOffStart, count: count}
}

// makeContiguous discards whatever of the matched key's byte range the
// replacement didn't fill, restoring the Replaceable's whole-buffer
// UTF-8 validity.
func (ins *Insertable) makeContiguous() {
	ins.rep.win.splice(ins.curr, ins.end(), nil)
}

// Finish applies the stored cursor-offset hint and repositions the
// owning Replaceable's cursor, clamped to its modifiable range. It
// must be called exactly once per Insertable.
func (ins *Insertable) Finish() {
	if ins.finished {
		return
	}
	ins.finished = true
	ins.makeContiguous()

	base := ins.start
	replLen := ins.CurrReplacementLen()

	var cursor int
	switch ins.cursorOffset.kind {
	case parser.CursorByte:
		cursor = base + ins.cursorOffset.count
	case parser.CursorCharsOffEnd:
		postStart := base + replLen
		postEnd := postStart + ins.matchLens.post
		matchedPost := ins.rep.String()[postStart:postEnd]
		offLen := charsByteLen(matchedPost, ins.cursorOffset.count, false)
		cursor = min(base+replLen+offLen, ins.rep.allowedUpperBound())
	case parser.CursorCharsOffStart:
		ante := ins.rep.String()[:base]
		matchedAnte := ante[len(ante)-ins.matchLens.ante:]
		offLen := charsByteLen(matchedAnte, ins.cursorOffset.count, true)
		cursor = max(base-offLen, ins.rep.freezePre)
	default:
		cursor = base + replLen
	}
	ins.rep.setCursor(cursor)
}

// charsByteLen returns the byte length of the first (or, if fromEnd,
// the last) count chars of s.
func charsByteLen(s string, count int, fromEnd bool) int {
	if !fromEnd {
		n, length := 0, 0
		for _, c := range s {
			if n >= count {
				break
			}
			length += utf8.RuneLen(c)
			n++
		}
		return length
	}
	runes := []rune(s)
	if count > len(runes) {
		count = len(runes)
	}
	length := 0
	for _, c := range runes[len(runes)-count:] {
		length += utf8.RuneLen(c)
	}
	return length
}

// FunctionCallAdapter lets a `&Foo(...)` function-call argument be
// built up against the parent Insertable and then handed to the
// matching engine for its own, recursive transliteration pass.
//
// Function-call arguments may not themselves contain cursors: nothing
// here ever reads a cursor set on the Replaceable returned by
// AsReplaceable, so such a cursor is silently ignored rather than
// rejected.
type FunctionCallAdapter struct {
	parent *Insertable
	child  *Insertable
}

// StartFunctionCallAdapter begins a nested replacement range right
// after everything pushed to ins so far.
func (ins *Insertable) StartFunctionCallAdapter() *FunctionCallAdapter {
	return &FunctionCallAdapter{
		parent: ins,
		child: &Insertable{
			rep:          ins.rep,
			start:        ins.curr,
			endLen:       ins.endLen,
			curr:         ins.curr,
			cursorOffset: cursorOffset{kind: parser.CursorDefault},
		},
	}
}

// Push appends a single char to the function call's argument.
func (a *FunctionCallAdapter) Push(c rune) { a.child.Push(c) }

// PushStr appends s to the function call's argument.
func (a *FunctionCallAdapter) PushStr(s string) { a.child.PushStr(s) }

// AsReplaceable collapses everything pushed into the adapter so far
// into a standalone Replaceable windowed exactly over that span. The
// caller runs a full transliteration pass over it (back to
// Replaceable.ForEachRun / StartMatch) and then must call Finish with
// the same Replaceable to fold the result back into the parent
// Insertable's growth cursor.
func (a *FunctionCallAdapter) AsReplaceable() *Replaceable {
	a.child.makeContiguous()
	return &Replaceable{win: a.parent.rep.win.tighten(a.child.start, a.child.curr)}
}

// Finish folds rep's final length (which may differ from what was
// pushed, if rep was itself transliterated) back into the parent
// Insertable's growth cursor. rep must be the value AsReplaceable
// returned.
func (a *FunctionCallAdapter) Finish(rep *Replaceable) {
	a.child.curr = a.child.start + rep.win.len()
	a.parent.curr = a.child.curr
}
