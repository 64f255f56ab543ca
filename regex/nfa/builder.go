package nfa

// Builder assembles a State table incrementally, resolving forward
// references via Patch before the final Build.
type Builder struct {
	states          []State
	startAnchored   StateID
	startUnanchored StateID
	byteClassSet    *ByteClassSet
}

func NewBuilder() *Builder {
	return &Builder{
		startAnchored:   InvalidState,
		startUnanchored: InvalidState,
		byteClassSet:    NewByteClassSet(),
	}
}

func NewBuilderWithCapacity(n int) *Builder {
	b := NewBuilder()
	b.states = make([]State, 0, n)
	return b
}

func (b *Builder) push(s State) StateID {
	id := StateID(len(b.states))
	s.id = id
	b.states = append(b.states, s)
	return id
}

func (b *Builder) AddMatch() StateID {
	return b.push(State{kind: StateMatch})
}

func (b *Builder) AddFail() StateID {
	return b.push(State{kind: StateFail})
}

func (b *Builder) AddByteRange(lo, hi byte, next StateID) StateID {
	b.byteClassSet.SetRange(lo, hi)
	return b.push(State{kind: StateByteRange, lo: lo, hi: hi, next: next})
}

func (b *Builder) AddSparse(transitions []Transition) StateID {
	cp := make([]Transition, len(transitions))
	copy(cp, transitions)
	for _, t := range cp {
		b.byteClassSet.SetRange(t.Lo, t.Hi)
	}
	return b.push(State{kind: StateSparse, transitions: cp})
}

func (b *Builder) AddSplit(left, right StateID) StateID {
	return b.push(State{kind: StateSplit, left: left, right: right})
}

// AddQuantifierSplit is a Split state produced by a quantifier's
// loop/exit branch; marked so loop-detection and priority analysis can
// tell it apart from an alternation split.
func (b *Builder) AddQuantifierSplit(left, right StateID) StateID {
	id := b.AddSplit(left, right)
	b.states[id].isQuantifierSplit = true
	return id
}

func (b *Builder) AddEpsilon(next StateID) StateID {
	return b.push(State{kind: StateEpsilon, next: next})
}

func (b *Builder) AddLook(look Look, next StateID) StateID {
	return b.push(State{kind: StateLook, look: look, next: next})
}

func (b *Builder) AddCapture(next StateID) StateID {
	// Capture groups are transparent in this NFA: the compiler splices a
	// group's inner fragment directly and does not call AddCapture, which
	// adds a plain Epsilon state.
	return b.AddEpsilon(next)
}

// Patch rewrites the forward target of a single-target state (ByteRange,
// Epsilon, Look).
func (b *Builder) Patch(id, target StateID) {
	s := &b.states[id]
	switch s.kind {
	case StateByteRange, StateEpsilon, StateLook:
		s.next = target
	default:
		panic("nfa: Patch called on a state with no single next target")
	}
}

func (b *Builder) PatchSplit(id, left, right StateID) {
	s := &b.states[id]
	if s.kind != StateSplit {
		panic("nfa: PatchSplit called on a non-split state")
	}
	s.left, s.right = left, right
}

func (b *Builder) SetStarts(anchored, unanchored StateID) {
	b.startAnchored = anchored
	b.startUnanchored = unanchored
}

func (b *Builder) States() int { return len(b.states) }

// Validate checks that every forward reference points at an in-bounds
// state and that both start states were set.
func (b *Builder) Validate() error {
	if b.startAnchored == InvalidState {
		return &BuildError{Message: "anchored start state not set", StateID: InvalidState}
	}
	if b.startUnanchored == InvalidState {
		return &BuildError{Message: "unanchored start state not set", StateID: InvalidState}
	}
	n := StateID(len(b.states))
	inBounds := func(id StateID) bool { return id < n }
	for i := range b.states {
		s := &b.states[i]
		switch s.kind {
		case StateByteRange, StateEpsilon, StateLook:
			if !inBounds(s.next) {
				return &BuildError{Message: "invalid next state", StateID: s.id}
			}
		case StateSplit:
			if !inBounds(s.left) || !inBounds(s.right) {
				return &BuildError{Message: "invalid split target", StateID: s.id}
			}
		case StateSparse:
			for _, t := range s.transitions {
				if !inBounds(t.Next) {
					return &BuildError{Message: "invalid sparse target", StateID: s.id}
				}
			}
		}
	}
	return nil
}

type BuildOption func(*NFA)

func WithAnchored(anchored bool) BuildOption {
	return func(n *NFA) { n.anchored = anchored }
}

func WithUTF8(utf8 bool) BuildOption {
	return func(n *NFA) { n.utf8 = utf8 }
}

func WithPatternCount(count int) BuildOption {
	return func(n *NFA) { n.patternCount = count }
}

func WithCaptureCount(count int) BuildOption {
	return func(n *NFA) { n.captureCount = count }
}

func WithCaptureNames(names []string) BuildOption {
	return func(n *NFA) { n.captureNames = names }
}

func (b *Builder) Build(opts ...BuildOption) (*NFA, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	n := &NFA{
		states:          b.states,
		startAnchored:   b.startAnchored,
		startUnanchored: b.startUnanchored,
		patternCount:    1,
		byteClasses:     b.byteClassSet.ByteClasses(),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n, nil
}
