// Package sparse implements an ahead-of-time (context-free) sparse DFA: the
// full automaton is determinized once at compile time and serialized into a
// compact byte table that can be searched without re-touching the source
// NFA. In exchange it cannot resolve assertions whose truth depends on a
// byte not yet read (end-of-text, end-of-line, word boundary) — patterns
// using those are rejected at Compile time; regex/lazy handles them by
// consulting the haystack directly as it goes.
package sparse

import (
	"sync"

	"github.com/coregx/ahocorasick"
	"github.com/icu4x-go/corei18n/regex/nfa"
)

const defaultStateLimit = 50_000

// DFA is a compiled, serializable sparse automaton.
type DFA struct {
	blob        []byte
	numStates   int
	startOffset int

	mu    sync.Mutex
	accel map[int]*Accelerator // lazily rebuilt from the blob's stored escape bytes
}

// Compile determinizes pattern into a sparse DFA. It returns
// ErrUnsupportedAssertion if pattern requires end-of-text, end-of-line, or
// word-boundary look-around.
func Compile(pattern string) (*DFA, error) {
	n, err := nfa.NewDefaultCompiler().Compile(pattern)
	if err != nil {
		return nil, &CompileError{Pattern: pattern, Err: err}
	}
	return CompileNFA(n)
}

// CompileNFA determinizes an already-built NFA into a sparse DFA.
func CompileNFA(n *nfa.NFA) (*DFA, error) {
	states, err := build(n, defaultStateLimit)
	if err != nil {
		return nil, err
	}

	accelerators := make(map[int]*Accelerator, len(states))
	for i, s := range states {
		if a := buildAccelerator(s.trans, i); a != nil {
			accelerators[i] = a
		}
	}

	blob, err := encode(states, accelerators)
	if err != nil {
		return nil, err
	}
	numStates, startOffset, err := decodeHeader(blob)
	if err != nil {
		return nil, err
	}
	return &DFA{blob: blob, numStates: numStates, startOffset: startOffset, accel: make(map[int]*Accelerator)}, nil
}

// ToBytes returns the serialized form of the DFA, suitable for embedding in
// a data file and later reloaded with FromBytes.
func (d *DFA) ToBytes() []byte {
	out := make([]byte, len(d.blob))
	copy(out, d.blob)
	return out
}

// FromBytes reloads a DFA previously produced by ToBytes.
func FromBytes(blob []byte) (*DFA, error) {
	numStates, startOffset, err := decodeHeader(blob)
	if err != nil {
		return nil, err
	}
	return &DFA{blob: blob, numStates: numStates, startOffset: startOffset, accel: make(map[int]*Accelerator)}, nil
}

// acceleratorFor lazily rebuilds the Aho-Corasick automaton for an
// accelerated state's escape bytes, recorded in the blob at build time.
func (d *DFA) acceleratorFor(offset int, escapes []byte) *Accelerator {
	d.mu.Lock()
	defer d.mu.Unlock()
	if a, ok := d.accel[offset]; ok {
		return a
	}
	builder := ahocorasick.NewBuilder()
	for _, b := range escapes {
		builder.AddPattern([]byte{b})
	}
	auto, err := builder.Build()
	if err != nil {
		return nil
	}
	a := &Accelerator{bytes: escapes, automaton: auto}
	d.accel[offset] = a
	return a
}

// FindAt searches haystack from byte offset at and returns the end offset
// of the first match found, extended for as long as the automaton stays
// in match states, or -1.
func (d *DFA) FindAt(haystack []byte, at int) (int, error) {
	curOffset := d.startOffset
	pos := at
	lastMatch := -1

	for {
		view, err := newStateView(d.blob, curOffset)
		if err != nil {
			return -1, err
		}
		if view.IsMatch() {
			lastMatch = pos
		} else if lastMatch != -1 {
			break
		}
		if pos >= len(haystack) {
			break
		}

		escapes, err := view.Accel()
		if err != nil {
			return -1, err
		}
		if len(escapes) > 0 {
			accel := d.acceleratorFor(curOffset, escapes)
			if accel != nil {
				skipTo := accel.Next(haystack, pos)
				if skipTo == -1 {
					skipTo = len(haystack)
				}
				if view.IsMatch() && skipTo > pos {
					lastMatch = skipTo
				}
				pos = skipTo
				if pos >= len(haystack) {
					break
				}
			}
		}

		next, ok := view.TransitionFor(haystack[pos])
		if !ok {
			break
		}
		curOffset = int(next)
		pos++
	}

	return lastMatch, nil
}

// Find searches haystack from its start and returns the end offset of the
// first match, or -1 if there is none.
func (d *DFA) Find(haystack []byte) int {
	pos, err := d.FindAt(haystack, 0)
	if err != nil {
		return -1
	}
	return pos
}

func (d *DFA) IsMatch(haystack []byte) bool { return d.Find(haystack) != -1 }

// NumStates reports how many determinized states the DFA contains.
func (d *DFA) NumStates() int { return d.numStates }
