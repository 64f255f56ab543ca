package runtime

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// digitFilter is a minimal Filter for exercising ForEachRun without
// pulling in translit/parser's UnicodeSet.
type digitFilter struct{}

func (digitFilter) Contains(r rune) bool { return r >= '0' && r <= '9' }

func TestReplaceableBasic(t *testing.T) {
	r := New("hello")
	require.Equal(t, "hello", r.String())
	require.Equal(t, "hello", r.ModifiableString())
	require.False(t, r.IsFinished())
	for i := 0; i < 5; i++ {
		r.StepCursor()
	}
	require.True(t, r.IsFinished())
}

func TestForEachRunFiltersSubRuns(t *testing.T) {
	r := New("a1b22c3")
	var runs []string
	r.ForEachRun(digitFilter{}, func(run *Replaceable) {
		runs = append(runs, run.ModifiableString())
	})
	require.Equal(t, []string{"1", "22", "3"}, runs)
}

func TestForEachRunNilFilterIsWholeRange(t *testing.T) {
	r := New("abc")
	var runs []string
	r.ForEachRun(nil, func(run *Replaceable) {
		runs = append(runs, run.ModifiableString())
	})
	require.Equal(t, []string{"abc"}, runs)
}

func TestForEachRunNoMatchesYieldsNoRuns(t *testing.T) {
	r := New("abc")
	called := false
	r.ForEachRun(digitFilter{}, func(run *Replaceable) { called = true })
	require.False(t, called)
}

// matchAndReplace drives a RepMatcher through optional ante, a
// mandatory key, and an optional post context, then pushes replacement
// onto the resulting Insertable and finishes it. It returns false if
// any required portion failed to match.
func matchAndReplace(r *Replaceable, ante, key, post, replacement string) bool {
	m := r.StartMatch()
	if ante != "" {
		if !m.MatchAnteStr(ante) || !m.ConsumeAnte(len(ante)) {
			return false
		}
	}
	if !m.MatchKeyStr(key) || !m.ConsumeKey(len(key)) {
		return false
	}
	pm := m.FinishKey()
	if post != "" {
		if !pm.MatchPostStr(post) || !pm.ConsumePost(len(post)) {
			return false
		}
	}
	ins := pm.FinishMatch()
	ins.PushStr(replacement)
	ins.Finish()
	return true
}

func TestRepMatcherKeyOnlyReplacement(t *testing.T) {
	r := New("abc")
	r.StepCursor() // position the key cursor at 'b'
	require.True(t, matchAndReplace(r, "", "b", "", "x"))
	require.Equal(t, "axc", r.String())
	require.Equal(t, 2, r.Cursor())
}

func TestRepMatcherAnteContextIsNotReplaced(t *testing.T) {
	r := New("abc")
	r.StepCursor()
	require.True(t, matchAndReplace(r, "a", "b", "", "X"))
	require.Equal(t, "aXc", r.String())
}

func TestRepMatcherFailsWithoutConsuming(t *testing.T) {
	r := New("abc")
	r.StepCursor()
	require.False(t, matchAndReplace(r, "", "z", "", "X"))
	require.Equal(t, "abc", r.String())
}

func TestInsertableCursorOffsetCharsOffEnd(t *testing.T) {
	r := New("abcd")
	r.StepCursor() // cursor at 'b'

	m := r.StartMatch()
	require.True(t, m.MatchAnteStr("a") && m.ConsumeAnte(1))
	require.True(t, m.MatchKeyStr("b") && m.ConsumeKey(1))
	pm := m.FinishKey()
	require.True(t, pm.MatchPostStr("c") && pm.ConsumePost(1))

	ins := pm.FinishMatch()
	ins.PushStr("XY")
	ins.SetOffsetToCharsOffEnd(1)
	ins.Finish()

	require.Equal(t, "aXYcd", r.String())
	require.Equal(t, 4, r.Cursor()) // one char into the matched post, i.e. right before 'd'
}

func TestInsertableCursorOffsetCharsOffStart(t *testing.T) {
	r := New("abcd")
	r.StepCursor() // cursor at 'b'

	m := r.StartMatch()
	require.True(t, m.MatchAnteStr("a") && m.ConsumeAnte(1))
	require.True(t, m.MatchKeyStr("b") && m.ConsumeKey(1))

	ins := m.FinishMatch()
	ins.PushStr("XY")
	ins.SetOffsetToCharsOffStart(1)
	ins.Finish()

	require.Equal(t, "aXYcd", r.String())
	require.Equal(t, 0, r.Cursor()) // one char back into the matched ante
}

func TestInsertableShrinkingReplacementTrimsLeftover(t *testing.T) {
	r := New("hello world")
	m := r.StartMatch()
	require.True(t, m.MatchKeyStr("hello") && m.ConsumeKey(5))
	ins := m.FinishMatch()
	ins.PushStr("hi")
	ins.Finish()
	require.Equal(t, "hi world", r.String())
}

func TestFunctionCallAdapterRecursiveTransliteration(t *testing.T) {
	r := New("ab")
	m := r.StartMatch()
	require.True(t, m.MatchKeyStr("ab") && m.ConsumeKey(2))
	ins := m.FinishMatch()

	ins.PushStr("X")

	adapter := ins.StartFunctionCallAdapter()
	adapter.PushStr("WORLD")
	child := adapter.AsReplaceable()
	child.ReplaceModifiableWithStr(strings.ToLower(child.String()))
	adapter.Finish(child)

	ins.PushStr("!")
	ins.Finish()

	require.Equal(t, "Xworld!", r.String())
}

func TestReplaceableChildSharesContent(t *testing.T) {
	r := New("abc")
	r.StepCursor()
	c := r.Child()
	require.Equal(t, r.String(), c.String())
	require.Equal(t, r.Cursor(), c.Cursor())

	m := c.StartMatch()
	require.True(t, m.MatchKeyStr("b") && m.ConsumeKey(1))
	ins := m.FinishMatch()
	ins.PushStr("Z")
	ins.Finish()

	// c and r alias the same backing bytes.
	require.Equal(t, "aZc", r.String())
}
