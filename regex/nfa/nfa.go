package nfa

import "fmt"

// StateID addresses a single state within an NFA's state table.
type StateID uint32

const (
	InvalidState StateID = 0xFFFFFFFF
	FailState    StateID = 0xFFFFFFFE
)

// StateKind discriminates the union of state shapes an NFA can contain.
type StateKind int

const (
	StateMatch StateKind = iota
	StateByteRange
	StateSparse
	StateSplit
	StateEpsilon
	StateLook
	StateFail
)

func (k StateKind) String() string {
	switch k {
	case StateMatch:
		return "Match"
	case StateByteRange:
		return "ByteRange"
	case StateSparse:
		return "Sparse"
	case StateSplit:
		return "Split"
	case StateEpsilon:
		return "Epsilon"
	case StateLook:
		return "Look"
	case StateFail:
		return "Fail"
	default:
		return "Unknown"
	}
}

// Look enumerates the zero-width assertions the NFA can test, decoupled
// from byte consumption.
type Look int

const (
	LookStartText Look = iota
	LookEndText
	LookStartLine
	LookEndLine
	LookWordBoundaryASCII
	LookNoWordBoundaryASCII
)

// Transition is one arm of a Sparse state: bytes in [Lo,Hi] move to Next.
type Transition struct {
	Lo, Hi byte
	Next   StateID
}

// State is one node in the NFA graph. Which fields are meaningful depends
// on Kind: ByteRange uses lo/hi/next, Sparse uses transitions, Split uses
// left/right, Epsilon/Look use next, Match and Fail use none.
type State struct {
	id               StateID
	kind             StateKind
	lo, hi           byte
	next             StateID
	transitions      []Transition
	left, right      StateID
	look             Look
	isQuantifierSplit bool
}

func (s *State) ID() StateID     { return s.id }
func (s *State) Kind() StateKind { return s.kind }
func (s *State) IsMatch() bool   { return s.kind == StateMatch }

func (s *State) ByteRange() (lo, hi byte, next StateID) { return s.lo, s.hi, s.next }
func (s *State) Split() (left, right StateID)           { return s.left, s.right }
func (s *State) IsQuantifierSplit() bool                { return s.isQuantifierSplit }
func (s *State) Epsilon() StateID                       { return s.next }
func (s *State) LookAssertion() (Look, StateID)         { return s.look, s.next }
func (s *State) Transitions() []Transition              { return s.transitions }

func (s *State) String() string {
	switch s.kind {
	case StateMatch:
		return fmt.Sprintf("%d: Match", s.id)
	case StateByteRange:
		return fmt.Sprintf("%d: [%02x-%02x] -> %d", s.id, s.lo, s.hi, s.next)
	case StateSparse:
		return fmt.Sprintf("%d: Sparse(%d trans)", s.id, len(s.transitions))
	case StateSplit:
		return fmt.Sprintf("%d: Split(%d, %d)", s.id, s.left, s.right)
	case StateEpsilon:
		return fmt.Sprintf("%d: Eps -> %d", s.id, s.next)
	case StateLook:
		return fmt.Sprintf("%d: Look(%d) -> %d", s.id, s.look, s.next)
	case StateFail:
		return fmt.Sprintf("%d: Fail", s.id)
	default:
		return fmt.Sprintf("%d: ?", s.id)
	}
}

// NFA is an immutable, built Thompson-construction automaton.
type NFA struct {
	states          []State
	startAnchored   StateID
	startUnanchored StateID
	anchored        bool
	utf8            bool
	patternCount    int
	captureCount    int
	captureNames    []string
	byteClasses     *ByteClasses
}

func (n *NFA) Start() StateID              { return n.startUnanchored }
func (n *NFA) StartAnchored() StateID      { return n.startAnchored }
func (n *NFA) StartUnanchored() StateID    { return n.startUnanchored }
func (n *NFA) IsAlwaysAnchored() bool      { return n.anchored }
func (n *NFA) IsAnchored() bool            { return n.anchored }
func (n *NFA) IsUTF8() bool                { return n.utf8 }
func (n *NFA) PatternCount() int           { return n.patternCount }
func (n *NFA) CaptureCount() int           { return n.captureCount }
func (n *NFA) SubexpNames() []string       { return n.captureNames }
func (n *NFA) ByteClasses() *ByteClasses   { return n.byteClasses }
func (n *NFA) Len() int                    { return len(n.states) }

func (n *NFA) State(id StateID) *State {
	if int(id) >= len(n.states) {
		return nil
	}
	return &n.states[id]
}

func (n *NFA) IsMatch(id StateID) bool {
	s := n.State(id)
	return s != nil && s.IsMatch()
}

func (n *NFA) States() []State { return n.states }

func (n *NFA) Iter() *StateIter { return &StateIter{nfa: n, pos: 0} }

func (n *NFA) String() string {
	out := fmt.Sprintf("NFA(states=%d, anchored=%v, utf8=%v)\n", len(n.states), n.anchored, n.utf8)
	for i := range n.states {
		out += "  " + n.states[i].String() + "\n"
	}
	return out
}

// StateIter walks an NFA's state table in ID order.
type StateIter struct {
	nfa *NFA
	pos int
}

func (it *StateIter) HasNext() bool { return it.pos < len(it.nfa.states) }

func (it *StateIter) Next() *State {
	if !it.HasNext() {
		return nil
	}
	s := &it.nfa.states[it.pos]
	it.pos++
	return s
}
