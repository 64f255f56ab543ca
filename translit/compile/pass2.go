package compile

import (
	"fmt"
	"strings"

	"github.com/icu4x-go/corei18n/translit/parser"
)

// Rule is one compiled conversion: Ante/Key/Post are the matcher
// patterns (as plain strings with PUA code points standing in for
// variables, quantifiers, segments, unicode sets, function calls, and
// anchors) and Replacement is the encoded target key. A target's own
// ante/post context, if it had one, is not encoded; pass 1 only
// warns about it (see IgnoredTargetContext).
type Rule struct {
	Ante        string
	Key         string
	Post        string
	Replacement string
}

// CompiledDirection is one matching direction's fully encoded rule
// set, ready for translit/runtime to execute.
type CompiledDirection struct {
	Rules    []Rule
	Filter   *parser.UnicodeSet
	VarTable *VarTable
}

// encoder turns a validated direction's rules into Rule strings plus
// the VarTable those strings reference, assigning each special
// construct its final PUA code point the first time it's seen.
type encoder struct {
	table        *VarTable
	offsets      varOffsets
	variableDefs map[string]parser.Section

	compoundIndex  map[string]int
	nextQuantOpt   int
	nextKleene     int
	nextKleenePlus int
	nextSegment    int
	nextSet        int
	nextCall       int
}

func newEncoder(counts SpecialConstructCounts, variableDefs map[string]parser.Section) *encoder {
	off := computeOffsets(counts)
	return &encoder{
		table: &VarTable{
			Compounds:             make([]string, 0, counts.Compounds),
			QuantifiersOpt:        make([]string, counts.QuantifiersOpt),
			QuantifiersKleene:     make([]string, counts.QuantifiersKleene),
			QuantifiersKleenePlus: make([]string, counts.QuantifiersKleenePlus),
			Segments:              make([]string, counts.Segments),
			UnicodeSets:           make([]*parser.UnicodeSet, counts.UnicodeSets),
			FunctionCalls:         make([]FunctionCallEntry, counts.FunctionCalls),
			MaxLeftPlaceholders:   counts.MaxLeftPlaceholders,
			MaxRightPlaceholders:  counts.MaxRightPlaceholders,
			MaxBackrefNum:         counts.MaxBackrefNum,
			PureCursor:            puaBase + rune(off.total),
			AnchorStart:           puaBase + rune(off.total) + 1,
			AnchorEnd:             puaBase + rune(off.total) + 2,
		},
		offsets:       off,
		variableDefs:  variableDefs,
		compoundIndex: map[string]int{},
	}
}

func (enc *encoder) encodeSection(sec parser.Section) (string, error) {
	var b strings.Builder
	for _, elt := range sec {
		s, err := enc.encodeElement(elt)
		if err != nil {
			return "", err
		}
		b.WriteString(s)
	}
	return b.String(), nil
}

func (enc *encoder) encodeElement(elt parser.Element) (string, error) {
	switch el := elt.(type) {
	case parser.Literal:
		return el.Text, nil
	case parser.VariableRef:
		r, err := enc.encodeVariable(el.Name)
		if err != nil {
			return "", err
		}
		return string(r), nil
	case parser.BackRef:
		return string(pua(enc.offsets.backrefs, int(el.Index)-1)), nil
	case parser.Quantifier:
		return enc.encodeQuantifier(el)
	case parser.Segment:
		inner, err := enc.encodeSection(el.Section)
		if err != nil {
			return "", err
		}
		idx := enc.nextSegment
		enc.nextSegment++
		enc.table.Segments[idx] = inner
		return string(pua(enc.offsets.segments, idx)), nil
	case parser.UnicodeSetElement:
		idx := enc.nextSet
		enc.nextSet++
		enc.table.UnicodeSets[idx] = el.Set
		return string(pua(enc.offsets.unicodeSets, idx)), nil
	case parser.FunctionCall:
		arg, err := enc.encodeSection(el.Section)
		if err != nil {
			return "", err
		}
		idx := enc.nextCall
		enc.nextCall++
		enc.table.FunctionCalls[idx] = FunctionCallEntry{Id: el.Id, Pattern: arg}
		return string(pua(enc.offsets.functionCalls, idx)), nil
	case parser.Cursor:
		return string(enc.encodeCursor(el)), nil
	case parser.AnchorStart:
		return string(enc.table.AnchorStart), nil
	case parser.AnchorEnd:
		return string(enc.table.AnchorEnd), nil
	default:
		return "", &Error{Kind: Internal, Message: fmt.Sprintf("unhandled element %T", elt)}
	}
}

// encodeVariable assigns (or reuses) a variable's single Compounds
// slot, recursively encoding its definition the first time it's
// referenced. Pass 1 already proved the variable graph is acyclic, so
// reserving the slot before recursing is safe: a diamond reference (two
// variables sharing a third) resolves to the same slot both times.
func (enc *encoder) encodeVariable(name string) (rune, error) {
	if idx, ok := enc.compoundIndex[name]; ok {
		return pua(enc.offsets.compounds, idx), nil
	}
	section, ok := enc.variableDefs[name]
	if !ok {
		return 0, &Error{Kind: Internal, Message: "variable $" + name + " missing from the variable table"}
	}
	idx := len(enc.table.Compounds)
	enc.compoundIndex[name] = idx
	enc.table.Compounds = append(enc.table.Compounds, "")

	encoded, err := enc.encodeSection(section)
	if err != nil {
		return 0, err
	}
	enc.table.Compounds[idx] = encoded
	return pua(enc.offsets.compounds, idx), nil
}

func (enc *encoder) encodeQuantifier(q parser.Quantifier) (string, error) {
	inner, err := enc.encodeElement(q.Inner)
	if err != nil {
		return "", err
	}
	var idx, base int
	switch q.Kind {
	case parser.ZeroOrOne:
		idx, base = enc.nextQuantOpt, enc.offsets.quantOpt
		enc.nextQuantOpt++
		enc.table.QuantifiersOpt[idx] = inner
	case parser.ZeroOrMore:
		idx, base = enc.nextKleene, enc.offsets.quantKleene
		enc.nextKleene++
		enc.table.QuantifiersKleene[idx] = inner
	case parser.OneOrMore:
		idx, base = enc.nextKleenePlus, enc.offsets.quantKleenePlus
		enc.nextKleenePlus++
		enc.table.QuantifiersKleenePlus[idx] = inner
	default:
		return "", &Error{Kind: Internal, Message: "unhandled quantifier kind"}
	}
	return string(pua(base, idx)), nil
}

// encodeCursor picks the pure-cursor reserved code point, or indexes
// into whichever of the two placeholder pseudo-arrays applies: a
// cursor with both counts zero can't carry placeholder data since the
// validator in pass 1 already rejected non-zero-on-both-sides cursors.
func (enc *encoder) encodeCursor(c parser.Cursor) rune {
	switch {
	case c.RightPlaceholders > 0:
		return pua(enc.offsets.rightPlaceholders, c.RightPlaceholders-1)
	case c.LeftPlaceholders > 0:
		return pua(enc.offsets.leftPlaceholders, c.LeftPlaceholders-1)
	default:
		return enc.table.PureCursor
	}
}

// runPass2 encodes one direction's validated rules into their final
// Rule strings and the VarTable those strings reference.
func runPass2(dr DirectionResult, variableDefs map[string]parser.Section) (*CompiledDirection, error) {
	enc := newEncoder(dr.Counts, variableDefs)

	rules := make([]Rule, 0, len(dr.Rules))
	for _, cr := range dr.Rules {
		ante, err := enc.encodeSection(cr.Source.Ante)
		if err != nil {
			return nil, err
		}
		key, err := enc.encodeSection(cr.Source.Key)
		if err != nil {
			return nil, err
		}
		post, err := enc.encodeSection(cr.Source.Post)
		if err != nil {
			return nil, err
		}
		repl, err := enc.encodeSection(cr.Target.Key)
		if err != nil {
			return nil, err
		}
		rules = append(rules, Rule{Ante: ante, Key: key, Post: post, Replacement: repl})
	}

	return &CompiledDirection{Rules: rules, Filter: dr.Filter, VarTable: enc.table}, nil
}
