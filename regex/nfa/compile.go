package nfa

import (
	"regexp/syntax"
	"unicode"
)

// CompilerConfig tunes how a *syntax.Regexp parse tree is lowered into an
// NFA.
type CompilerConfig struct {
	// UTF8 marks the produced NFA as operating over well-formed UTF-8
	// input; it is carried through to NFA.IsUTF8 for downstream DFA
	// construction but does not change compilation itself, since byte
	// ranges are always derived from UTF-8 encodings here.
	UTF8 bool
	// Anchored forces every search to begin at the start of input,
	// skipping the unanchored-prefix loop.
	Anchored bool
	// SizeLimit caps the number of NFA states a single compilation may
	// produce; zero means unbounded.
	SizeLimit int
}

func DefaultCompilerConfig() CompilerConfig {
	return CompilerConfig{UTF8: true}
}

// Compiler lowers a regexp/syntax parse tree into a Thompson-construction
// NFA.
type Compiler struct {
	config       CompilerConfig
	builder      *Builder
	captureCount int
	captureNames []string
}

func NewCompiler(config CompilerConfig) *Compiler {
	return &Compiler{config: config}
}

func NewDefaultCompiler() *Compiler {
	return NewCompiler(DefaultCompilerConfig())
}

// fragment is a compiled sub-automaton: start is its entry state, end is a
// single-target state (Epsilon, ByteRange, or Look) whose forward pointer
// the caller patches to continue the chain.
type fragment struct {
	start, end StateID
}

// Compile parses pattern with regexp/syntax and lowers it to an NFA.
func (c *Compiler) Compile(pattern string) (*NFA, error) {
	re, err := syntax.Parse(pattern, syntax.Perl)
	if err != nil {
		return nil, &CompileError{Pattern: pattern, Err: ErrInvalidPattern}
	}
	nfa, err := c.CompileRegexp(re)
	if err != nil {
		return nil, &CompileError{Pattern: pattern, Err: err}
	}
	return nfa, nil
}

// CompileRegexp lowers an already-parsed expression tree.
func (c *Compiler) CompileRegexp(re *syntax.Regexp) (*NFA, error) {
	c.builder = NewBuilder()
	c.captureCount = 0
	c.captureNames = nil
	collectCaptureInfo(re, &c.captureCount, &c.captureNames)

	frag, err := c.compileRegexp(re)
	if err != nil {
		return nil, err
	}
	match := c.builder.AddMatch()
	c.builder.Patch(frag.end, match)

	anchoredStart := frag.start
	unanchoredStart := anchoredStart
	if !c.config.Anchored {
		unanchoredStart, err = c.compileUnanchoredPrefix(anchoredStart)
		if err != nil {
			return nil, err
		}
	}
	if err := c.checkSizeLimit(); err != nil {
		return nil, err
	}
	c.builder.SetStarts(anchoredStart, unanchoredStart)

	return c.builder.Build(
		WithAnchored(c.config.Anchored),
		WithUTF8(c.config.UTF8),
		WithPatternCount(1),
		WithCaptureCount(c.captureCount),
		WithCaptureNames(c.captureNames),
	)
}

func (c *Compiler) checkSizeLimit() error {
	if c.config.SizeLimit > 0 && c.builder.States() > c.config.SizeLimit {
		return ErrExceededSizeLimit
	}
	return nil
}

func (c *Compiler) compileRegexp(re *syntax.Regexp) (fragment, error) {
	if err := c.checkSizeLimit(); err != nil {
		return fragment{}, err
	}
	switch re.Op {
	case syntax.OpLiteral:
		return c.compileLiteral(re.Rune, re.Flags&syntax.FoldCase != 0)
	case syntax.OpCharClass:
		return c.compileCharClass(re.Rune)
	case syntax.OpAnyChar:
		return c.compileAnyChar()
	case syntax.OpAnyCharNotNL:
		return c.compileAnyCharNotNL()
	case syntax.OpConcat:
		return c.compileConcat(re.Sub)
	case syntax.OpAlternate:
		return c.compileAlternate(re.Sub)
	case syntax.OpStar:
		return c.compileStar(re.Sub[0], re.Flags&syntax.NonGreedy != 0)
	case syntax.OpPlus:
		return c.compilePlus(re.Sub[0], re.Flags&syntax.NonGreedy != 0)
	case syntax.OpQuest:
		return c.compileQuest(re.Sub[0], re.Flags&syntax.NonGreedy != 0)
	case syntax.OpRepeat:
		return c.compileRepeat(re.Sub[0], re.Min, re.Max, re.Flags&syntax.NonGreedy != 0)
	case syntax.OpCapture:
		return c.compileRegexp(re.Sub[0])
	case syntax.OpBeginText:
		return c.compileLook(LookStartText)
	case syntax.OpEndText:
		return c.compileLook(LookEndText)
	case syntax.OpBeginLine:
		return c.compileLook(LookStartLine)
	case syntax.OpEndLine:
		return c.compileLook(LookEndLine)
	case syntax.OpWordBoundary:
		return c.compileLook(LookWordBoundaryASCII)
	case syntax.OpNoWordBoundary:
		return c.compileLook(LookNoWordBoundaryASCII)
	case syntax.OpEmptyMatch:
		return c.compileEmptyMatch()
	case syntax.OpNoMatch:
		return c.compileNoMatch()
	default:
		return fragment{}, ErrInvalidPattern
	}
}

func (c *Compiler) compileEmptyMatch() (fragment, error) {
	id := c.builder.AddEpsilon(InvalidState)
	return fragment{start: id, end: id}, nil
}

func (c *Compiler) compileNoMatch() (fragment, error) {
	id := c.builder.AddFail()
	out := c.builder.AddEpsilon(InvalidState)
	return fragment{start: id, end: out}, nil
}

func (c *Compiler) compileLook(look Look) (fragment, error) {
	id := c.builder.AddLook(look, InvalidState)
	return fragment{start: id, end: id}, nil
}

func (c *Compiler) compileLiteral(runes []rune, foldCase bool) (fragment, error) {
	if len(runes) == 0 {
		return c.compileEmptyMatch()
	}
	var frags []fragment
	for _, r := range runes {
		if foldCase {
			f, err := c.compileCharClass(foldCaseRanges(r))
			if err != nil {
				return fragment{}, err
			}
			frags = append(frags, f)
			continue
		}
		f, err := c.compileRune(r)
		if err != nil {
			return fragment{}, err
		}
		frags = append(frags, f)
	}
	return c.chain(frags), nil
}

func (c *Compiler) compileRune(r rune) (fragment, error) {
	return c.compileByteSeqs(utf8Sequences(r, r))
}

func (c *Compiler) compileCharClass(ranges []rune) (fragment, error) {
	var seqs []byteSeq
	for i := 0; i+1 < len(ranges); i += 2 {
		seqs = append(seqs, utf8Sequences(ranges[i], ranges[i+1])...)
	}
	return c.compileByteSeqs(seqs)
}

func (c *Compiler) compileAnyChar() (fragment, error) {
	return c.compileCharClass([]rune{0, 0x10FFFF})
}

func (c *Compiler) compileAnyCharNotNL() (fragment, error) {
	return c.compileCharClass([]rune{0, 0x09, 0x0B, 0x10FFFF})
}

// compileByteSeqs builds one chain per sequence, all converging on a
// shared exit state, joined by a priority-ordered Split tree.
func (c *Compiler) compileByteSeqs(seqs []byteSeq) (fragment, error) {
	if len(seqs) == 0 {
		return c.compileNoMatch()
	}
	out := c.builder.AddEpsilon(InvalidState)
	starts := make([]StateID, len(seqs))
	for i, seq := range seqs {
		starts[i] = c.compileByteSeq(seq, out)
	}
	if len(starts) == 1 {
		return fragment{start: starts[0], end: out}, nil
	}
	top := c.buildSplitTree(starts)
	return fragment{start: top, end: out}, nil
}

func (c *Compiler) compileByteSeq(seq byteSeq, end StateID) StateID {
	next := end
	for i := len(seq) - 1; i >= 0; i-- {
		next = c.builder.AddByteRange(seq[i].lo, seq[i].hi, next)
	}
	return next
}

func (c *Compiler) buildSplitTree(starts []StateID) StateID {
	if len(starts) == 1 {
		return starts[0]
	}
	return c.builder.AddSplit(starts[0], c.buildSplitTree(starts[1:]))
}

func (c *Compiler) chain(frags []fragment) fragment {
	if len(frags) == 0 {
		id, _ := c.compileEmptyMatch()
		return id
	}
	first := frags[0]
	prevEnd := first.end
	for _, f := range frags[1:] {
		c.builder.Patch(prevEnd, f.start)
		prevEnd = f.end
	}
	return fragment{start: first.start, end: prevEnd}
}

func (c *Compiler) compileConcat(subs []*syntax.Regexp) (fragment, error) {
	if len(subs) == 0 {
		return c.compileEmptyMatch()
	}
	frags := make([]fragment, 0, len(subs))
	for _, s := range subs {
		f, err := c.compileRegexp(s)
		if err != nil {
			return fragment{}, err
		}
		frags = append(frags, f)
	}
	return c.chain(frags), nil
}

func (c *Compiler) compileAlternate(subs []*syntax.Regexp) (fragment, error) {
	if len(subs) == 0 {
		return c.compileNoMatch()
	}
	if len(subs) == 1 {
		return c.compileRegexp(subs[0])
	}
	frags := make([]fragment, len(subs))
	for i, s := range subs {
		f, err := c.compileRegexp(s)
		if err != nil {
			return fragment{}, err
		}
		frags[i] = f
	}
	out := c.builder.AddEpsilon(InvalidState)
	starts := make([]StateID, len(frags))
	for i, f := range frags {
		c.builder.Patch(f.end, out)
		starts[i] = f.start
	}
	return fragment{start: c.buildSplitTree(starts), end: out}, nil
}

func (c *Compiler) compileStar(sub *syntax.Regexp, nonGreedy bool) (fragment, error) {
	if canMatchEmpty(sub) {
		plus, err := c.compilePlus(sub, nonGreedy)
		if err != nil {
			return fragment{}, err
		}
		return c.questFragment(plus, nonGreedy), nil
	}
	inner, err := c.compileRegexp(sub)
	if err != nil {
		return fragment{}, err
	}
	out := c.builder.AddEpsilon(InvalidState)
	var split StateID
	if nonGreedy {
		split = c.builder.AddQuantifierSplit(out, inner.start)
	} else {
		split = c.builder.AddQuantifierSplit(inner.start, out)
	}
	c.builder.Patch(inner.end, split)
	return fragment{start: split, end: out}, nil
}

func (c *Compiler) compilePlus(sub *syntax.Regexp, nonGreedy bool) (fragment, error) {
	inner, err := c.compileRegexp(sub)
	if err != nil {
		return fragment{}, err
	}
	out := c.builder.AddEpsilon(InvalidState)
	var split StateID
	if nonGreedy {
		split = c.builder.AddQuantifierSplit(out, inner.start)
	} else {
		split = c.builder.AddQuantifierSplit(inner.start, out)
	}
	c.builder.Patch(inner.end, split)
	return fragment{start: inner.start, end: out}, nil
}

func (c *Compiler) compileQuest(sub *syntax.Regexp, nonGreedy bool) (fragment, error) {
	inner, err := c.compileRegexp(sub)
	if err != nil {
		return fragment{}, err
	}
	return c.questFragment(inner, nonGreedy), nil
}

func (c *Compiler) questFragment(inner fragment, nonGreedy bool) fragment {
	out := c.builder.AddEpsilon(InvalidState)
	c.builder.Patch(inner.end, out)
	var split StateID
	if nonGreedy {
		split = c.builder.AddQuantifierSplit(out, inner.start)
	} else {
		split = c.builder.AddQuantifierSplit(inner.start, out)
	}
	return fragment{start: split, end: out}
}

func (c *Compiler) compileRepeat(sub *syntax.Regexp, min, max int, nonGreedy bool) (fragment, error) {
	if max == -1 {
		return c.compileRepeatMin(sub, min, nonGreedy)
	}
	if min == max {
		return c.compileRepeatExact(sub, min)
	}
	return c.compileRepeatRange(sub, min, max, nonGreedy)
}

func (c *Compiler) compileRepeatExact(sub *syntax.Regexp, n int) (fragment, error) {
	if n == 0 {
		return c.compileEmptyMatch()
	}
	frags := make([]fragment, n)
	for i := 0; i < n; i++ {
		f, err := c.compileRegexp(sub)
		if err != nil {
			return fragment{}, err
		}
		frags[i] = f
	}
	return c.chain(frags), nil
}

func (c *Compiler) compileRepeatMin(sub *syntax.Regexp, min int, nonGreedy bool) (fragment, error) {
	if min == 0 {
		return c.compileStar(sub, nonGreedy)
	}
	if min == 1 {
		return c.compilePlus(sub, nonGreedy)
	}
	head, err := c.compileRepeatExact(sub, min-1)
	if err != nil {
		return fragment{}, err
	}
	tail, err := c.compilePlus(sub, nonGreedy)
	if err != nil {
		return fragment{}, err
	}
	return c.chain([]fragment{head, tail}), nil
}

// compileRepeatRange lowers {min,max} as min inline copies followed by
// (max-min) optional copies wired through a shared terminal.
func (c *Compiler) compileRepeatRange(sub *syntax.Regexp, min, max int, nonGreedy bool) (fragment, error) {
	terminal := c.builder.AddEpsilon(InvalidState)
	cur := terminal
	for i := 0; i < max-min; i++ {
		inner, err := c.compileRegexp(sub)
		if err != nil {
			return fragment{}, err
		}
		c.builder.Patch(inner.end, cur)
		var split StateID
		if nonGreedy {
			split = c.builder.AddQuantifierSplit(cur, inner.start)
		} else {
			split = c.builder.AddQuantifierSplit(inner.start, cur)
		}
		cur = split
	}
	if min == 0 {
		return fragment{start: cur, end: terminal}, nil
	}
	head, err := c.compileRepeatExact(sub, min)
	if err != nil {
		return fragment{}, err
	}
	c.builder.Patch(head.end, cur)
	return fragment{start: head.start, end: terminal}, nil
}

// compileUnanchoredPrefix prepends a non-greedy `(?s:.)*?` loop so an
// anchored automaton can additionally be searched for starting anywhere in
// the input.
func (c *Compiler) compileUnanchoredPrefix(patternStart StateID) (StateID, error) {
	any, err := c.compileAnyChar()
	if err != nil {
		return InvalidState, err
	}
	split := c.builder.AddQuantifierSplit(patternStart, any.start)
	c.builder.Patch(any.end, split)
	return split, nil
}

func canMatchEmpty(re *syntax.Regexp) bool {
	switch re.Op {
	case syntax.OpEmptyMatch, syntax.OpBeginText, syntax.OpEndText,
		syntax.OpBeginLine, syntax.OpEndLine,
		syntax.OpWordBoundary, syntax.OpNoWordBoundary,
		syntax.OpStar, syntax.OpQuest:
		return true
	case syntax.OpPlus:
		return canMatchEmpty(re.Sub[0])
	case syntax.OpRepeat:
		return re.Min == 0 || canMatchEmpty(re.Sub[0])
	case syntax.OpCapture:
		return canMatchEmpty(re.Sub[0])
	case syntax.OpConcat:
		for _, s := range re.Sub {
			if !canMatchEmpty(s) {
				return false
			}
		}
		return true
	case syntax.OpAlternate:
		for _, s := range re.Sub {
			if canMatchEmpty(s) {
				return true
			}
		}
		return false
	case syntax.OpLiteral:
		return len(re.Rune) == 0
	default:
		return false
	}
}

func foldCaseRanges(r rune) []rune {
	lo, hi := r, r
	for c := unicode.SimpleFold(r); c != r; c = unicode.SimpleFold(c) {
		if c < lo {
			lo = c
		}
		if c > hi {
			hi = c
		}
	}
	return []rune{lo, hi}
}

func collectCaptureInfo(re *syntax.Regexp, count *int, names *[]string) {
	if re.Op == syntax.OpCapture {
		*count++
		*names = append(*names, re.Name)
	}
	for _, sub := range re.Sub {
		collectCaptureInfo(sub, count, names)
	}
}
