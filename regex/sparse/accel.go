package sparse

import "github.com/coregx/ahocorasick"

// maxAccelBytes bounds how many distinct "escape bytes" a state may have
// and still qualify for acceleration, matching the single-byte accel_bytes
// slot width used by the serialized layout.
const maxAccelBytes = 3

// Accelerator speeds up scanning through a run of self-looping DFA states
// by jumping straight to the next occurrence of one of a small set of
// escape bytes, instead of stepping the DFA one byte at a time. It mirrors
// the literal-engine bypass a full regex engine uses around its slower
// general-purpose matcher: most bytes in a typical haystack just re-enter
// the same state, and only a few "escape" bytes ever leave it.
type Accelerator struct {
	bytes     []byte
	automaton *ahocorasick.Automaton
}

// buildAccelerator inspects a state's outgoing transitions and, if at most
// maxAccelBytes of them leave the state's self-loop, returns an Accelerator
// for the bytes that do. selfTarget is the state's own index: transitions
// back to it are not escape bytes.
func buildAccelerator(trans []rawTrans, selfTarget int) *Accelerator {
	var escapes []byte
	for _, t := range trans {
		if t.next == selfTarget {
			continue
		}
		for b := int(t.lo); b <= int(t.hi); b++ {
			escapes = append(escapes, byte(b))
			if len(escapes) > maxAccelBytes {
				return nil
			}
		}
	}
	if len(escapes) == 0 {
		return nil
	}

	builder := ahocorasick.NewBuilder()
	for _, b := range escapes {
		builder.AddPattern([]byte{b})
	}
	auto, err := builder.Build()
	if err != nil {
		return nil
	}
	return &Accelerator{bytes: escapes, automaton: auto}
}

// Next returns the offset of the next escape byte in haystack at or after
// at, or -1 if none occurs before the end of the haystack.
func (a *Accelerator) Next(haystack []byte, at int) int {
	m := a.automaton.Find(haystack, at)
	if m == nil {
		return -1
	}
	return m.Start
}

// Bytes returns the escape bytes this accelerator was built from, in the
// order they were recorded.
func (a *Accelerator) Bytes() []byte { return a.bytes }
