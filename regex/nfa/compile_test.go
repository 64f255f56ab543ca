package nfa

import "testing"

func mustCompile(t *testing.T, pattern string) *NFA {
	t.Helper()
	n, err := NewDefaultCompiler().Compile(pattern)
	if err != nil {
		t.Fatalf("Compile(%q): %v", pattern, err)
	}
	return n
}

// run walks the NFA via epsilon-closure simulation (a minimal Pike-style
// stepper) purely to exercise the built graph in tests; it is not part of
// the package's public surface.
func run(n *NFA, input string) bool {
	cur := map[StateID]bool{}
	addState(n, n.StartAnchored(), cur, map[StateID]bool{})
	for i := 0; i < len(input); i++ {
		b := input[i]
		next := map[StateID]bool{}
		for id := range cur {
			s := n.State(id)
			switch s.Kind() {
			case StateByteRange:
				lo, hi, to := s.ByteRange()
				if b >= lo && b <= hi {
					addState(n, to, next, map[StateID]bool{})
				}
			case StateSparse:
				for _, tr := range s.Transitions() {
					if b >= tr.Lo && b <= tr.Hi {
						addState(n, tr.Next, next, map[StateID]bool{})
					}
				}
			}
		}
		cur = next
	}
	for id := range cur {
		if n.IsMatch(id) {
			return true
		}
	}
	return false
}

func addState(n *NFA, id StateID, set, seen map[StateID]bool) {
	if seen[id] {
		return
	}
	seen[id] = true
	s := n.State(id)
	switch s.Kind() {
	case StateEpsilon:
		addState(n, s.Epsilon(), set, seen)
	case StateLook:
		_, next := s.LookAssertion()
		addState(n, next, set, seen)
	case StateSplit:
		l, r := s.Split()
		addState(n, l, set, seen)
		addState(n, r, set, seen)
	default:
		set[id] = true
	}
}

func TestCompileLiteral(t *testing.T) {
	n := mustCompile(t, "abc")
	if !run(n, "abc") {
		t.Error("expected match on \"abc\"")
	}
	if run(n, "abd") {
		t.Error("unexpected match on \"abd\"")
	}
}

func TestCompileAlternate(t *testing.T) {
	n := mustCompile(t, "cat|dog")
	if !run(n, "cat") || !run(n, "dog") {
		t.Error("expected both alternatives to match")
	}
	if run(n, "cow") {
		t.Error("unexpected match on \"cow\"")
	}
}

func TestCompileStar(t *testing.T) {
	n := mustCompile(t, "ab*c")
	for _, ok := range []string{"ac", "abc", "abbbbc"} {
		if !run(n, ok) {
			t.Errorf("expected match on %q", ok)
		}
	}
	if run(n, "abx") {
		t.Error("unexpected match on \"abx\"")
	}
}

func TestCompilePlus(t *testing.T) {
	n := mustCompile(t, "ab+c")
	if run(n, "ac") {
		t.Error("plus requires at least one b")
	}
	if !run(n, "abc") || !run(n, "abbc") {
		t.Error("expected match with one or more b")
	}
}

func TestCompileQuest(t *testing.T) {
	n := mustCompile(t, "colou?r")
	if !run(n, "color") || !run(n, "colour") {
		t.Error("expected both spellings to match")
	}
}

func TestCompileRepeatExact(t *testing.T) {
	n := mustCompile(t, "a{3}")
	if !run(n, "aaa") {
		t.Error("expected exactly 3 a's to match")
	}
	if run(n, "aa") {
		t.Error("2 a's should not match {3}")
	}
}

func TestCompileRepeatRange(t *testing.T) {
	n := mustCompile(t, "a{2,4}")
	if run(n, "a") {
		t.Error("1 a should not satisfy {2,4}")
	}
	for _, ok := range []string{"aa", "aaa", "aaaa"} {
		if !run(n, ok) {
			t.Errorf("expected %q to satisfy a{2,4}", ok)
		}
	}
}

func TestCompileRepeatMin(t *testing.T) {
	n := mustCompile(t, "a{2,}")
	if run(n, "a") {
		t.Error("1 a should not satisfy {2,}")
	}
	if !run(n, "aa") || !run(n, "aaaaaa") {
		t.Error("expected 2+ a's to satisfy {2,}")
	}
}

func TestCompileCharClass(t *testing.T) {
	n := mustCompile(t, "[a-c]")
	for _, ok := range []string{"a", "b", "c"} {
		if !run(n, ok) {
			t.Errorf("expected %q to match [a-c]", ok)
		}
	}
	if run(n, "d") {
		t.Error("unexpected match on \"d\"")
	}
}

func TestCompileCharClassMultibyte(t *testing.T) {
	n := mustCompile(t, "[à-ä]")
	if !run(n, "â") {
		t.Error("expected a 2-byte UTF-8 rune to match its class")
	}
	if run(n, "z") {
		t.Error("unexpected match outside class")
	}
}

func TestCompileAnyChar(t *testing.T) {
	n, err := NewCompiler(CompilerConfig{UTF8: true}).Compile("(?s).")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if !run(n, "\n") {
		t.Error("(?s). should match newline")
	}
}

func TestCompileSizeLimit(t *testing.T) {
	c := NewCompiler(CompilerConfig{SizeLimit: 1})
	if _, err := c.Compile("aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"); err == nil {
		t.Error("expected a size-limit compile error")
	}
}

func TestCompileInvalidPattern(t *testing.T) {
	if _, err := NewDefaultCompiler().Compile("["); err == nil {
		t.Error("expected an invalid-pattern error")
	}
}

func TestByteClassSetReducesAlphabet(t *testing.T) {
	n := mustCompile(t, "[a-z]+")
	classes := n.ByteClasses()
	if classes.AlphabetLen() >= 256 {
		t.Errorf("expected reduced alphabet, got %d classes", classes.AlphabetLen())
	}
}
