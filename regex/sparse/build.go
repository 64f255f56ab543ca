package sparse

import (
	"encoding/binary"
	"sort"

	"github.com/icu4x-go/corei18n/regex/nfa"
)

// rawState is the builder's in-progress representation of one DFA state,
// before byte ranges are finalized into the serialized layout.
type rawState struct {
	trans      []rawTrans
	isMatch    bool
	patternIDs []uint32
}

type rawTrans struct {
	lo, hi byte
	next   int // index into the builder's states slice; deadIndex for no match
}

const (
	deadIndex  = 0
	startIndex = 1
)

// builder runs context-threaded subset construction over an NFA, producing
// a table of rawStates reachable from the unanchored start.
type builder struct {
	nfa     *nfa.NFA
	classes *nfa.ByteClasses
	states  []rawState
	index   map[string]int
	limit   int
}

func newBuilder(n *nfa.NFA, stateLimit int) *builder {
	classes := n.ByteClasses()
	if classes == nil {
		classes = nfa.SingletonByteClasses()
	}
	return &builder{
		nfa:     n,
		classes: classes,
		index:   make(map[string]int),
		limit:   stateLimit,
	}
}

// checkAssertions rejects any NFA containing a look-around kind that
// cannot be resolved without a concrete haystack (see package doc).
func checkAssertions(n *nfa.NFA) error {
	it := n.Iter()
	for it.HasNext() {
		s := it.Next()
		if s.Kind() != nfa.StateLook {
			continue
		}
		look, _ := s.LookAssertion()
		switch look {
		case nfa.LookEndText, nfa.LookEndLine, nfa.LookWordBoundaryASCII, nfa.LookNoWordBoundaryASCII:
			return ErrUnsupportedAssertion
		}
	}
	return nil
}

func stateKey(ids []nfa.StateID, atStart, prevNewline bool) string {
	buf := make([]byte, 1, 1+4*len(ids))
	var ctx byte
	if atStart {
		ctx |= 1
	}
	if prevNewline {
		ctx |= 2
	}
	buf[0] = ctx
	for _, id := range ids {
		buf = binary.LittleEndian.AppendUint32(buf, uint32(id))
	}
	return string(buf)
}

func sortedStateIDs(set map[nfa.StateID]bool) []nfa.StateID {
	out := make([]nfa.StateID, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// closure computes the epsilon closure of roots, resolving only the
// backward-looking assertions (start-of-text, start-of-line) that are
// decidable from atStart/prevNewline alone. Forward-looking assertions
// never appear here: checkAssertions rejects them before construction
// begins.
func (b *builder) closure(roots []nfa.StateID, atStart, prevNewline bool) (frontier []nfa.StateID, isMatch bool, err error) {
	visited := make(map[nfa.StateID]bool)
	set := make(map[nfa.StateID]bool)

	var visit func(id nfa.StateID) error
	visit = func(id nfa.StateID) error {
		if visited[id] {
			return nil
		}
		visited[id] = true
		if len(visited) > b.limit {
			return ErrTooManyStates
		}
		s := b.nfa.State(id)
		switch s.Kind() {
		case nfa.StateMatch:
			isMatch = true
		case nfa.StateByteRange, nfa.StateSparse:
			set[id] = true
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
			satisfied := false
			switch look {
			case nfa.LookStartText:
				satisfied = atStart
			case nfa.LookStartLine:
				satisfied = atStart || prevNewline
			}
			if satisfied {
				return visit(next)
			}
		case nfa.StateFail:
		}
		return nil
	}

	for _, r := range roots {
		if err := visit(r); err != nil {
			return nil, false, err
		}
	}
	return sortedStateIDs(set), isMatch, nil
}

// stateFor returns the builder index for the DFA state reached by the given
// frontier/context, determinizing it for the first time if necessary. newly
// reports whether this call created the state, so the caller can enqueue it
// for transition-filling.
func (b *builder) stateFor(frontier []nfa.StateID, isMatch bool, atStart, prevNewline bool) (idx int, newly bool, err error) {
	key := stateKey(frontier, atStart, prevNewline)
	if i, ok := b.index[key]; ok {
		return i, false, nil
	}
	if len(b.states) >= b.limit {
		return 0, false, ErrTooManyStates
	}
	rs := rawState{isMatch: isMatch}
	if isMatch {
		rs.patternIDs = []uint32{0}
	}
	idx = len(b.states)
	b.states = append(b.states, rs)
	b.index[key] = idx
	return idx, true, nil
}

// pending carries the NFA frontier alongside its builder index so the
// worklist can recompute outgoing transitions once dequeued.
type pending struct {
	idx         int
	frontier    []nfa.StateID
	prevNewline bool
}

// build runs subset construction to completion and returns the finished
// raw state table, with index 0 reserved as the dead state and index 1 as
// the unanchored start state.
func build(n *nfa.NFA, stateLimit int) ([]rawState, error) {
	if err := checkAssertions(n); err != nil {
		return nil, err
	}

	b := newBuilder(n, stateLimit)
	// index 0: dead state, no transitions, never matches.
	b.states = append(b.states, rawState{})
	b.index[stateKey(nil, false, false)] = deadIndex

	startFrontier, startMatch, err := b.closure([]nfa.StateID{n.StartUnanchored()}, true, true)
	if err != nil {
		return nil, err
	}
	startIdx, _, err := b.stateFor(startFrontier, startMatch, true, true)
	if err != nil {
		return nil, err
	}
	if startIdx != startIndex {
		// The dead state is always states[0] and is the only state
		// created before this call, so the start state must land at
		// index 1 on its first determinization.
		panic("sparse: start state did not land at the reserved index")
	}

	queue := []pending{{idx: startIdx, frontier: startFrontier, prevNewline: true}}
	visited := map[int]bool{startIdx: true}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		trans := make([]rawTrans, 0, 8)
		for _, rep := range b.classes.Representatives() {
			elems := b.classes.Elements(b.classes.Get(rep))
			if len(elems) == 0 {
				continue
			}
			lo, hi := elems[0], elems[len(elems)-1]

			var roots []nfa.StateID
			for _, id := range cur.frontier {
				s := n.State(id)
				switch s.Kind() {
				case nfa.StateByteRange:
					blo, bhi, next := s.ByteRange()
					if rep >= blo && rep <= bhi {
						roots = append(roots, next)
					}
				case nfa.StateSparse:
					for _, t := range s.Transitions() {
						if rep >= t.Lo && rep <= t.Hi {
							roots = append(roots, t.Next)
						}
					}
				}
			}

			target := deadIndex
			if len(roots) > 0 {
				nextPrevNewline := rep == '\n'
				frontier, isMatch, err := b.closure(roots, false, nextPrevNewline)
				if err != nil {
					return nil, err
				}
				if len(frontier) > 0 || isMatch {
					idx, newly, err := b.stateFor(frontier, isMatch, false, nextPrevNewline)
					if err != nil {
						return nil, err
					}
					target = idx
					if newly && !visited[idx] {
						visited[idx] = true
						queue = append(queue, pending{idx: idx, frontier: frontier, prevNewline: nextPrevNewline})
					}
				}
			}

			if tn := len(trans); tn > 0 && trans[tn-1].next == target && trans[tn-1].hi+1 == lo {
				trans[tn-1].hi = hi
			} else {
				trans = append(trans, rawTrans{lo: lo, hi: hi, next: target})
			}
		}
		b.states[cur.idx].trans = trans
	}

	return b.states, nil
}
