package compile

import "github.com/icu4x-go/corei18n/translit/parser"

// Compiled is a whole transliterator's compiled rule set. Forward
// and/or Reverse is nil when requested didn't ask for that direction.
type Compiled struct {
	Forward  *CompiledDirection
	Reverse  *CompiledDirection
	Warnings []Warning
}

// Compile validates a parsed rule list and encodes it into one or both
// matching directions, ready for translit/runtime. requested selects
// which of Forward/Reverse/Both to produce; a rule list intended only
// to be used in one direction still validates the other side's syntax
// (spec §4.4's grammar is direction-agnostic) but that direction's
// CompiledDirection is left nil if it wasn't requested.
func Compile(requested parser.Direction, rules []parser.Rule) (*Compiled, error) {
	p1, err := runPass1(requested, rules)
	if err != nil {
		return nil, err
	}

	out := &Compiled{Warnings: p1.Warnings}
	if permits(requested, dirForward) {
		fwd, err := runPass2(p1.Forward, p1.VariableDefs)
		if err != nil {
			return nil, err
		}
		out.Forward = fwd
	}
	if permits(requested, dirReverse) {
		rev, err := runPass2(p1.Reverse, p1.VariableDefs)
		if err != nil {
			return nil, err
		}
		out.Reverse = rev
	}
	return out, nil
}
