// Package lazy implements a lazy hybrid DFA: states are determinized from
// an NFA on demand as the search consumes bytes, and the result is cached
// so that revisiting the same (NFA state set, look-around context) reuses
// the transition table instead of recomputing it. When the cache fills, it
// is cleared and rebuilt in place up to a configured number of times
// before the search gives up.
package lazy

import (
	"github.com/icu4x-go/corei18n/regex/nfa"
)

// DFA performs on-demand determinization of an NFA.
//
// Not safe for concurrent use from multiple goroutines against the same
// DFA: the cache and per-search clear budget are mutable search state.
type DFA struct {
	automaton *nfa.NFA
	cache     *Cache
	config    Config
	byID      map[StateID]*State
}

func NewDFA(automaton *nfa.NFA, config Config) (*DFA, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &DFA{
		automaton: automaton,
		cache:     NewCache(config.MaxStates),
		config:    config,
		byID:      make(map[StateID]*State),
	}, nil
}

func CompilePattern(pattern string) (*DFA, error) {
	n, err := nfa.NewDefaultCompiler().Compile(pattern)
	if err != nil {
		return nil, err
	}
	return NewDFA(n, DefaultConfig())
}

func isWordByte(b byte) bool {
	return b == '_' ||
		(b >= '0' && b <= '9') ||
		(b >= 'a' && b <= 'z') ||
		(b >= 'A' && b <= 'Z')
}

func packContext(pos int, haystack []byte) byte {
	var ctx byte
	atTextStart := pos == 0
	atTextEnd := pos == len(haystack)
	wordBefore := pos > 0 && isWordByte(haystack[pos-1])
	wordAfter := pos < len(haystack) && isWordByte(haystack[pos])
	lineStart := atTextStart || haystack[pos-1] == '\n'
	lineEnd := atTextEnd || haystack[pos] == '\n'
	if atTextStart {
		ctx |= 1
	}
	if atTextEnd {
		ctx |= 2
	}
	if lineStart {
		ctx |= 4
	}
	if lineEnd {
		ctx |= 8
	}
	if wordBefore != wordAfter {
		ctx |= 16
	}
	return ctx
}

func (d *DFA) satisfiesLook(look nfa.Look, pos int, haystack []byte) bool {
	atTextStart := pos == 0
	atTextEnd := pos == len(haystack)
	switch look {
	case nfa.LookStartText:
		return atTextStart
	case nfa.LookEndText:
		return atTextEnd
	case nfa.LookStartLine:
		return atTextStart || haystack[pos-1] == '\n'
	case nfa.LookEndLine:
		return atTextEnd || haystack[pos] == '\n'
	case nfa.LookWordBoundaryASCII, nfa.LookNoWordBoundaryASCII:
		wordBefore := pos > 0 && isWordByte(haystack[pos-1])
		wordAfter := pos < len(haystack) && isWordByte(haystack[pos])
		boundary := wordBefore != wordAfter
		if look == nfa.LookWordBoundaryASCII {
			return boundary
		}
		return !boundary
	default:
		return false
	}
}

// closure computes the epsilon closure of roots at position pos, resolving
// Look assertions against the surrounding bytes. It returns the consuming
// (ByteRange/Sparse) states reachable without consuming a byte, and
// whether a Match state was reached.
func (d *DFA) closure(roots []nfa.StateID, pos int, haystack []byte) ([]nfa.StateID, bool, error) {
	visited := make(map[nfa.StateID]bool)
	var frontier []nfa.StateID
	isMatch := false

	var visit func(id nfa.StateID) error
	visit = func(id nfa.StateID) error {
		if visited[id] {
			return nil
		}
		visited[id] = true
		if len(visited) > d.config.DeterminizationLimit {
			return ErrStateLimitExceeded
		}
		s := d.automaton.State(id)
		switch s.Kind() {
		case nfa.StateMatch:
			isMatch = true
		case nfa.StateByteRange, nfa.StateSparse:
			frontier = append(frontier, id)
		case nfa.StateSplit:
			l, r := s.Split()
			if err := visit(l); err != nil {
				return err
			}
			return visit(r)
		case nfa.StateEpsilon:
			return visit(s.Epsilon())
		case nfa.StateLook:
			look, next := s.LookAssertion()
			if d.satisfiesLook(look, pos, haystack) {
				return visit(next)
			}
		case nfa.StateFail:
			// dead end, contributes nothing
		}
		return nil
	}

	for _, r := range roots {
		if err := visit(r); err != nil {
			return nil, false, err
		}
	}
	return frontier, isMatch, nil
}

func (d *DFA) startState(pos int, haystack []byte) (*State, error) {
	ctx := packContext(pos, haystack)
	frontier, isMatch, err := d.closure([]nfa.StateID{d.automaton.StartUnanchored()}, pos, haystack)
	if err != nil {
		return nil, err
	}
	if isMatch {
		ctx |= 32
	}
	key := ComputeStateKey(frontier, ctx)
	if s, ok := d.cache.Get(key); ok {
		d.byID[s.ID()] = s
		return s, nil
	}
	s := NewState(InvalidState, frontier, isMatch)
	inserted, _, err := d.cache.GetOrInsert(key, s)
	if err != nil {
		return nil, err
	}
	d.byID[inserted.ID()] = inserted
	return inserted, nil
}

// step computes, caches, and returns the state reached from cur on byte b
// at the position immediately following b.
func (d *DFA) step(cur *State, b byte, nextPos int, haystack []byte) (*State, error) {
	if id, ok := cur.Transition(b); ok {
		if id == DeadState {
			return d.ensureDeadState(), nil
		}
		if s, ok := d.byID[id]; ok {
			return s, nil
		}
	}

	var roots []nfa.StateID
	for _, id := range cur.nfaStates {
		s := d.automaton.State(id)
		switch s.Kind() {
		case nfa.StateByteRange:
			lo, hi, next := s.ByteRange()
			if b >= lo && b <= hi {
				roots = append(roots, next)
			}
		case nfa.StateSparse:
			for _, t := range s.Transitions() {
				if b >= t.Lo && b <= t.Hi {
					roots = append(roots, t.Next)
				}
			}
		}
	}

	dead := d.ensureDeadState()
	if len(roots) == 0 {
		cur.AddTransition(b, DeadState)
		return dead, nil
	}

	ctx := packContext(nextPos, haystack)
	frontier, isMatch, err := d.closure(roots, nextPos, haystack)
	if err != nil {
		return nil, err
	}
	if len(frontier) == 0 && !isMatch {
		cur.AddTransition(b, DeadState)
		return dead, nil
	}
	if isMatch {
		ctx |= 32
	}

	key := ComputeStateKey(frontier, ctx)
	next, _, err := d.cache.GetOrInsert(key, NewState(InvalidState, frontier, isMatch))
	if err == ErrCacheFull {
		if d.cache.ClearCount() >= d.config.MaxCacheClears {
			return nil, ErrTooManyCacheClears
		}
		// cur's memoized byte transitions point at states the clear is
		// about to drop; they must be recomputed on next use.
		cur.transitions = make(map[byte]StateID, 16)
		d.cache.SaveState(ComputeStateKey(cur.nfaStates, 0), cur)
		d.byID = make(map[StateID]*State)
		savedID, ok := d.cache.ClearKeepMemory()
		if ok {
			d.byID[savedID] = cur
		}
		next, _, err = d.cache.GetOrInsert(key, NewState(InvalidState, frontier, isMatch))
	}
	if err != nil {
		return nil, err
	}
	d.byID[next.ID()] = next
	cur.AddTransition(b, next.ID())
	return next, nil
}

func (d *DFA) ensureDeadState() *State {
	if s, ok := d.byID[DeadState]; ok {
		return s
	}
	s := &State{id: DeadState, transitions: map[byte]StateID{}}
	d.byID[DeadState] = s
	return s
}

// FindAt searches haystack starting at byte offset at and returns the end
// offset of the first match, or -1 if none is found before a determinization
// limit or cache-clear budget is exceeded.
func (d *DFA) FindAt(haystack []byte, at int) (int, error) {
	d.cache.ResetClearCount()
	d.byID = make(map[StateID]*State)

	cur, err := d.startState(at, haystack)
	if err != nil {
		return -1, err
	}
	d.byID[cur.ID()] = cur
	if cur.IsMatch() {
		return at, nil
	}

	for pos := at; pos < len(haystack); pos++ {
		cur, err = d.step(cur, haystack[pos], pos+1, haystack)
		if err != nil {
			return -1, err
		}
		if cur.ID() == DeadState {
			return -1, nil
		}
		if cur.IsMatch() {
			return pos + 1, nil
		}
	}
	return -1, nil
}

func (d *DFA) Find(haystack []byte) int {
	pos, err := d.FindAt(haystack, 0)
	if err != nil {
		return -1
	}
	return pos
}

func (d *DFA) IsMatch(haystack []byte) bool {
	return d.Find(haystack) != -1
}

func (d *DFA) Metrics() CacheMetrics { return d.cache.Metrics() }
