package lazy

import (
	"fmt"
	"hash/fnv"

	"github.com/icu4x-go/corei18n/regex/nfa"
)

// StateID uniquely identifies a DFA state in the cache.
type StateID uint32

// Sentinel states are reserved before any real state is inserted, so a
// lookup miss can be told apart from "not yet built" without a separate
// out-of-band flag.
const (
	UnknownState StateID = 0
	DeadState    StateID = 1
	QuitState    StateID = 2
	StartState   StateID = 3

	InvalidState StateID = 0xFFFFFFFF
)

// State is a determinized DFA state: a byte-indexed transition table plus
// the set of NFA states it represents (kept for cache-key recomputation
// and for rebuilding the state after a cache clear).
type State struct {
	id          StateID
	transitions map[byte]StateID
	isMatch     bool
	nfaStates   []nfa.StateID
}

func NewState(id StateID, nfaStates []nfa.StateID, isMatch bool) *State {
	cp := make([]nfa.StateID, len(nfaStates))
	copy(cp, nfaStates)
	return &State{
		id:          id,
		transitions: make(map[byte]StateID, 16),
		isMatch:     isMatch,
		nfaStates:   cp,
	}
}

func (s *State) ID() StateID   { return s.id }
func (s *State) IsMatch() bool { return s.isMatch }

func (s *State) Transition(b byte) (StateID, bool) {
	next, ok := s.transitions[b]
	return next, ok
}

func (s *State) AddTransition(b byte, next StateID) {
	s.transitions[b] = next
}

func (s *State) NFAStates() []nfa.StateID  { return s.nfaStates }
func (s *State) TransitionCount() int      { return len(s.transitions) }

func (s *State) String() string {
	return fmt.Sprintf("DFAState(id=%d, isMatch=%v, transitions=%d, nfaStates=%v)",
		s.id, s.isMatch, len(s.transitions), s.nfaStates)
}

// StateKey identifies a cached DFA state by the NFA state set it closes
// over plus the look-around context under which that closure was taken
// (start/end of text or line, word-adjacency before and after) and
// whether the closure reached a match. Folding
// context into the key keeps cached states correct when the same NFA
// state set recurs under a different context later in the search.
type StateKey uint64

func ComputeStateKey(nfaStates []nfa.StateID, ctx byte) StateKey {
	sorted := make([]nfa.StateID, len(nfaStates))
	copy(sorted, nfaStates)
	sortStateIDs(sorted)

	h := fnv.New64a()
	_, _ = h.Write([]byte{ctx})
	for _, sid := range sorted {
		_, _ = h.Write([]byte{byte(sid), byte(sid >> 8), byte(sid >> 16), byte(sid >> 24)})
	}
	return StateKey(h.Sum64())
}

func sortStateIDs(states []nfa.StateID) {
	for i := 1; i < len(states); i++ {
		key := states[i]
		j := i - 1
		for j >= 0 && states[j] > key {
			states[j+1] = states[j]
			j--
		}
		states[j+1] = key
	}
}

// StateSet deduplicates NFA states visited during epsilon-closure
// computation.
type StateSet struct {
	order []nfa.StateID
	seen  map[nfa.StateID]bool
}

func NewStateSet() *StateSet {
	return &StateSet{seen: make(map[nfa.StateID]bool)}
}

func (ss *StateSet) Add(id nfa.StateID) {
	if !ss.seen[id] {
		ss.seen[id] = true
		ss.order = append(ss.order, id)
	}
}

func (ss *StateSet) Contains(id nfa.StateID) bool { return ss.seen[id] }
func (ss *StateSet) Len() int                     { return len(ss.order) }

func (ss *StateSet) ToSlice() []nfa.StateID {
	out := make([]nfa.StateID, len(ss.order))
	copy(out, ss.order)
	sortStateIDs(out)
	return out
}
