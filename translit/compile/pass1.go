package compile

import (
	"fmt"

	"github.com/icu4x-go/corei18n/translit/parser"
)

// direction is a single, resolved matching direction, as opposed to
// parser.Direction which also has the bidirectional Both.
type direction uint8

const (
	dirForward direction = iota
	dirReverse
)

// permits reports whether a parser.Direction (a conversion rule's own
// arrow, or the transliterator's overall requested direction) covers
// single.
func permits(d parser.Direction, single direction) bool {
	switch d {
	case parser.Both:
		return true
	case parser.Forward:
		return single == dirForward
	case parser.Reverse:
		return single == dirReverse
	default:
		return false
	}
}

// ConversionRule is a validated conversion rule, retained in
// declaration order for one matching direction.
type ConversionRule struct {
	Source parser.HalfRule
	Target parser.HalfRule
}

// pass1Data accumulates counts and variable usage for one direction or
// one variable definition.
type pass1Data struct {
	counts        SpecialConstructCounts
	usedVariables map[string]bool
}

func newPass1Data() pass1Data {
	return pass1Data{usedVariables: map[string]bool{}}
}

// DirectionResult is the validated, counted state pass 2 needs to
// encode one matching direction's rules and VarTable.
type DirectionResult struct {
	Counts        SpecialConstructCounts
	Filter        *parser.UnicodeSet
	Rules         []ConversionRule
	UsedVariables map[string]bool // transitive closure of referenced variable names
}

// Pass1Result is pass 1's full output: both directions plus the
// variable definitions either of them actually reaches.
type Pass1Result struct {
	Forward      DirectionResult
	Reverse      DirectionResult
	VariableDefs map[string]parser.Section
	Warnings     []Warning
}

// pass1 walks one transliterator's rule list, validating every
// conversion and variable definition and counting the special
// constructs each direction will need from its VarTable. Grounded on
// original_source's compile/pass1.rs: a SourceValidator for the
// matched (ante/key/post) side, a TargetValidator for the replacement
// side, and a VariableDefinitionValidator for "$name = ..." bodies.
type pass1 struct {
	forward       pass1Data
	reverse       pass1Data
	forwardRules  []ConversionRule
	reverseRules  []ConversionRule
	forwardFilter *parser.UnicodeSet
	reverseFilter *parser.UnicodeSet

	variableDefs     map[string]parser.Section
	variableData     map[string]pass1Data
	targetDisallowed map[string]bool // variables whose definition used a Quantifier/UnicodeSet, so can't appear on a target side

	warnings []Warning
}

func newPass1() *pass1 {
	return &pass1{
		forward:          newPass1Data(),
		reverse:          newPass1Data(),
		variableDefs:     map[string]parser.Section{},
		variableData:     map[string]pass1Data{},
		targetDisallowed: map[string]bool{},
	}
}

func (p *pass1) dataFor(dir direction) *pass1Data {
	if dir == dirForward {
		return &p.forward
	}
	return &p.reverse
}

// run validates every rule in order. direction is the overall
// direction the caller wants compiled (spec §4.1 "Forward"/"Reverse"
// transliterators both draw from the same rule list).
func (p *pass1) run(requested parser.Direction, rules []parser.Rule) error {
	rest := rules
	if len(rest) > 0 {
		if gf, ok := rest[0].(parser.GlobalFilter); ok {
			p.forwardFilter = gf.Set
			rest = rest[1:]
		}
	}
	if len(rest) > 0 {
		if gif, ok := rest[len(rest)-1].(parser.GlobalInverseFilter); ok {
			p.reverseFilter = gif.Set
			rest = rest[:len(rest)-1]
		}
	}
	for _, r := range rest {
		switch rr := r.(type) {
		case parser.GlobalFilter:
			return &Error{Kind: UnexpectedGlobalFilter, Message: "a global filter is only allowed as the very first rule"}
		case parser.GlobalInverseFilter:
			return &Error{Kind: UnexpectedGlobalFilter, Message: "a global inverse filter is only allowed as the very last rule"}
		case parser.Transform:
			// A reference to another named transform; this pass
			// doesn't resolve cross-transform dependencies.
		case parser.VariableDefinition:
			if err := p.defineVariable(rr); err != nil {
				return err
			}
		case parser.Conversion:
			if err := p.validateConversion(requested, rr); err != nil {
				return err
			}
		default:
			return &Error{Kind: Internal, Message: fmt.Sprintf("unhandled rule type %T", r)}
		}
	}
	return nil
}

// defineVariable validates a "$name = ..." body (VariableDefinitionValidator):
// only Literal, VariableRef, Quantifier, and UnicodeSetElement may
// appear; a Quantifier or UnicodeSetElement marks the variable as
// usable only on a source side, transitively, for anything that refers
// to it.
func (p *pass1) defineVariable(vd parser.VariableDefinition) error {
	if _, exists := p.variableDefs[vd.Name]; exists {
		return nil // the parser already rejected the duplicate definition itself
	}
	p.variableDefs[vd.Name] = vd.Section

	data := newPass1Data()
	disallowed := false
	for _, elt := range vd.Section {
		d, err := p.collectVarDefElement(elt, &data)
		if err != nil {
			return err
		}
		disallowed = disallowed || d
	}
	p.variableData[vd.Name] = data
	if disallowed {
		p.targetDisallowed[vd.Name] = true
	}
	return nil
}

func (p *pass1) collectVarDefElement(elt parser.Element, data *pass1Data) (bool, error) {
	switch e := elt.(type) {
	case parser.Literal:
		return false, nil
	case parser.VariableRef:
		if _, ok := p.variableDefs[e.Name]; !ok {
			return false, &Error{Kind: UndefinedVariable, Message: "undefined variable $" + e.Name}
		}
		data.usedVariables[e.Name] = true
		return p.targetDisallowed[e.Name], nil
	case parser.Quantifier:
		switch e.Kind {
		case parser.ZeroOrOne:
			data.counts.QuantifiersOpt++
		case parser.ZeroOrMore:
			data.counts.QuantifiersKleene++
		case parser.OneOrMore:
			data.counts.QuantifiersKleenePlus++
		}
		if _, err := p.collectVarDefElement(e.Inner, data); err != nil {
			return true, err
		}
		return true, nil
	case parser.UnicodeSetElement:
		data.counts.UnicodeSets++
		return true, nil
	default:
		return false, &Error{Kind: DisallowedConstruct, Message: fmt.Sprintf("a variable definition may not contain %T", elt)}
	}
}

// validateConversion checks a two-sided rule against whichever of
// Forward/Reverse both the rule's own arrow and the requested overall
// direction permit, and records it (per direction) for pass 2.
func (p *pass1) validateConversion(requested parser.Direction, c parser.Conversion) error {
	if permits(c.Direction, dirForward) && permits(requested, dirForward) {
		if err := p.validateOneDirection(dirForward, c.Source, c.Target); err != nil {
			return err
		}
		p.forwardRules = append(p.forwardRules, ConversionRule{Source: c.Source, Target: c.Target})
	}
	if permits(c.Direction, dirReverse) && permits(requested, dirReverse) {
		if err := p.validateOneDirection(dirReverse, c.Target, c.Source); err != nil {
			return err
		}
		p.reverseRules = append(p.reverseRules, ConversionRule{Source: c.Target, Target: c.Source})
	}
	return nil
}

func (p *pass1) validateOneDirection(dir direction, source, target parser.HalfRule) error {
	data := p.dataFor(dir)

	src, err := p.validateSource(source)
	if err != nil {
		return err
	}
	data.counts.addFrom(src.counts)
	for v := range src.usedVariables {
		data.usedVariables[v] = true
	}

	tgt, warnContext, err := p.validateTarget(target, src.numSegments)
	if err != nil {
		return err
	}
	data.counts.addFrom(tgt.counts)
	for v := range tgt.usedVariables {
		data.usedVariables[v] = true
	}
	if warnContext {
		p.warnings = append(p.warnings, Warning{
			Kind:    IgnoredTargetContext,
			Message: "ante/post context on a target half-rule has no effect and was ignored",
		})
	}
	return nil
}

type sourceResult struct {
	counts        SpecialConstructCounts
	usedVariables map[string]bool
	numSegments   int
}

// validateSource is SourceValidator: strips a leading '^'/trailing
// '$' anchor from the edge section that carries it, then walks
// ante/key/post rejecting anything an anchor, cursor, back reference,
// or function call on the matched side, and counting quantifiers,
// segments, and inline unicode sets.
func (p *pass1) validateSource(h parser.HalfRule) (sourceResult, error) {
	res := sourceResult{usedVariables: map[string]bool{}}
	ante, key, post := h.Ante, h.Key, h.Post

	if len(ante) > 0 {
		if _, ok := ante[0].(parser.AnchorStart); ok {
			ante = ante[1:]
		}
	} else if len(key) > 0 {
		if _, ok := key[0].(parser.AnchorStart); ok {
			key = key[1:]
		}
	}
	if len(post) > 0 {
		if _, ok := post[len(post)-1].(parser.AnchorEnd); ok {
			post = post[:len(post)-1]
		}
	} else if len(key) > 0 {
		if _, ok := key[len(key)-1].(parser.AnchorEnd); ok {
			key = key[:len(key)-1]
		}
	}

	for _, sec := range []parser.Section{ante, key, post} {
		if err := p.validateSourceSection(sec, true, &res); err != nil {
			return res, err
		}
	}
	return res, nil
}

// validateSourceSection walks a matched-side section. A Cursor is
// tolerated at top level (a bidirectional "<>" rule's half-rules each
// serve as the other direction's target, where the cursor does apply)
// but rejected inside a nested segment or quantifier, where it could
// never mean anything.
func (p *pass1) validateSourceSection(sec parser.Section, topLevel bool, res *sourceResult) error {
	for _, elt := range sec {
		switch e := elt.(type) {
		case parser.Literal:
		case parser.VariableRef:
			if _, ok := p.variableDefs[e.Name]; !ok {
				return &Error{Kind: UndefinedVariable, Message: "undefined variable $" + e.Name}
			}
			res.usedVariables[e.Name] = true
		case parser.Quantifier:
			switch e.Kind {
			case parser.ZeroOrOne:
				res.counts.QuantifiersOpt++
			case parser.ZeroOrMore:
				res.counts.QuantifiersKleene++
			case parser.OneOrMore:
				res.counts.QuantifiersKleenePlus++
			}
			if err := p.validateSourceSection(parser.Section{e.Inner}, false, res); err != nil {
				return err
			}
		case parser.Segment:
			res.numSegments++
			res.counts.Segments++
			if err := p.validateSourceSection(e.Section, false, res); err != nil {
				return err
			}
		case parser.UnicodeSetElement:
			res.counts.UnicodeSets++
		case parser.Cursor:
			if !topLevel {
				return &Error{Kind: InvalidCursor, Message: "a cursor is not valid inside a nested segment or quantifier"}
			}
		case parser.AnchorStart, parser.AnchorEnd:
			return &Error{Kind: MisplacedAnchor, Message: "an anchor is only valid at the very edge of a source half-rule"}
		case parser.BackRef:
			return &Error{Kind: DisallowedConstruct, Message: "a back reference is only valid on a target side"}
		case parser.FunctionCall:
			return &Error{Kind: DisallowedConstruct, Message: "a function call is only valid on a target side"}
		default:
			return &Error{Kind: Internal, Message: fmt.Sprintf("unhandled source element %T", elt)}
		}
	}
	return nil
}

type targetResult struct {
	counts        SpecialConstructCounts
	usedVariables map[string]bool
}

// validateTarget is TargetValidator: only the target's Key section
// matters (an Ante/Post there is accepted but ignored, with a
// warning); it allows at most one Cursor, validated against its
// position (leading/trailing/mid-section) and checks every back
// reference against the paired source's segment count.
func (p *pass1) validateTarget(h parser.HalfRule, numSegments int) (targetResult, bool, error) {
	res := targetResult{usedVariables: map[string]bool{}}
	warnContext := len(h.Ante) > 0 || len(h.Post) > 0
	key := h.Key
	foundCursor := false

	for i, elt := range key {
		switch e := elt.(type) {
		case parser.Literal:
		case parser.VariableRef:
			if _, ok := p.variableDefs[e.Name]; !ok {
				return res, warnContext, &Error{Kind: UndefinedVariable, Message: "undefined variable $" + e.Name}
			}
			if p.targetDisallowed[e.Name] {
				return res, warnContext, &Error{Kind: SourceOnlyVariable, Message: "variable $" + e.Name + " may only be used on a source side"}
			}
			res.usedVariables[e.Name] = true
		case parser.BackRef:
			if err := checkBackRef(e, numSegments, &res.counts); err != nil {
				return res, warnContext, err
			}
		case parser.FunctionCall:
			res.counts.FunctionCalls++
			if err := p.validateFunctionCallArgs(e.Section, numSegments, &res); err != nil {
				return res, warnContext, err
			}
		case parser.Cursor:
			if foundCursor {
				return res, warnContext, &Error{Kind: DuplicateCursor, Message: "a target key may contain only one cursor"}
			}
			foundCursor = true
			if err := checkCursorPosition(e, i, len(key)); err != nil {
				return res, warnContext, err
			}
			if e.LeftPlaceholders > res.counts.MaxLeftPlaceholders {
				res.counts.MaxLeftPlaceholders = e.LeftPlaceholders
			}
			if e.RightPlaceholders > res.counts.MaxRightPlaceholders {
				res.counts.MaxRightPlaceholders = e.RightPlaceholders
			}
		case parser.AnchorStart, parser.AnchorEnd:
			// Anchors carry no counts and are allowed anywhere on a
			// target key; they're re-emitted verbatim by pass 2.
		default:
			return res, warnContext, &Error{Kind: DisallowedConstruct, Message: fmt.Sprintf("%T is not allowed on a target side", elt)}
		}
	}
	return res, warnContext, nil
}

// validateFunctionCallArgs validates a function call's argument
// section: the same element kinds as a target key, minus cursors and
// anchors (neither makes sense inside a nested, possibly-recursive
// function invocation).
func (p *pass1) validateFunctionCallArgs(sec parser.Section, numSegments int, res *targetResult) error {
	for _, elt := range sec {
		switch e := elt.(type) {
		case parser.Literal:
		case parser.VariableRef:
			if _, ok := p.variableDefs[e.Name]; !ok {
				return &Error{Kind: UndefinedVariable, Message: "undefined variable $" + e.Name}
			}
			if p.targetDisallowed[e.Name] {
				return &Error{Kind: SourceOnlyVariable, Message: "variable $" + e.Name + " may only be used on a source side"}
			}
			res.usedVariables[e.Name] = true
		case parser.BackRef:
			if err := checkBackRef(e, numSegments, &res.counts); err != nil {
				return err
			}
		case parser.FunctionCall:
			res.counts.FunctionCalls++
			if err := p.validateFunctionCallArgs(e.Section, numSegments, res); err != nil {
				return err
			}
		default:
			return &Error{Kind: DisallowedConstruct, Message: fmt.Sprintf("%T is not allowed inside a function call argument", elt)}
		}
	}
	return nil
}

func checkBackRef(e parser.BackRef, numSegments int, counts *SpecialConstructCounts) error {
	if e.Index == 0 || int(e.Index) > numSegments {
		return &Error{Kind: BackReferenceOutOfRange, Message: fmt.Sprintf("back reference $%d exceeds the %d captured segment(s)", e.Index, numSegments)}
	}
	if int(e.Index) > counts.MaxBackrefNum {
		counts.MaxBackrefNum = int(e.Index)
	}
	return nil
}

// checkCursorPosition enforces the three legal cursor shapes: a
// single-element key's cursor can't have placeholders on both sides
// at once; a leading cursor's placeholders must be on its right (not
// its left, since nothing precedes it); a trailing cursor's must be on
// its left; any other, mid-section cursor can't have placeholders at
// all.
func checkCursorPosition(c parser.Cursor, i, n int) error {
	leading := i == 0
	trailing := i == n-1
	switch {
	case leading && trailing:
		if c.LeftPlaceholders != 0 && c.RightPlaceholders != 0 {
			return &Error{Kind: InvalidCursor, Message: "a cursor cannot have placeholders on both sides"}
		}
	case leading:
		if c.LeftPlaceholders != 0 {
			return &Error{Kind: InvalidCursor, Message: "a leading cursor cannot have left placeholders"}
		}
	case trailing:
		if c.RightPlaceholders != 0 {
			return &Error{Kind: InvalidCursor, Message: "a trailing cursor cannot have right placeholders"}
		}
	default:
		if c.LeftPlaceholders != 0 || c.RightPlaceholders != 0 {
			return &Error{Kind: InvalidCursor, Message: "a mid-section cursor cannot have placeholders"}
		}
	}
	return nil
}

// transitiveVariables expands a direction's directly-used variable
// names into the full set reachable through nested variable
// references, detecting cycles along the way (Pass1ResultGenerator's
// visit_var, with the "should not occur" Rust comment replaced by an
// actual returned error: this module's parser doesn't independently
// guarantee acyclic variable definitions).
func (p *pass1) transitiveVariables(direct map[string]bool) (map[string]bool, error) {
	result := map[string]bool{}
	stack := map[string]bool{}
	var visit func(name string) error
	visit = func(name string) error {
		if result[name] {
			return nil
		}
		if stack[name] {
			return &Error{Kind: CyclicVariable, Message: "variable $" + name + " is defined in terms of itself"}
		}
		stack[name] = true
		result[name] = true
		for dep := range p.variableData[name].usedVariables {
			if err := visit(dep); err != nil {
				return err
			}
		}
		delete(stack, name)
		return nil
	}
	for name := range direct {
		if err := visit(name); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// finish resolves both directions' transitive variable sets and
// produces the final counted, validated Pass1Result pass 2 consumes.
func (p *pass1) finish() (*Pass1Result, error) {
	fwdVars, err := p.transitiveVariables(p.forward.usedVariables)
	if err != nil {
		return nil, err
	}
	revVars, err := p.transitiveVariables(p.reverse.usedVariables)
	if err != nil {
		return nil, err
	}

	fwdCounts := p.forward.counts
	for v := range fwdVars {
		fwdCounts.addFrom(p.variableData[v].counts)
	}
	fwdCounts.Compounds = len(fwdVars)

	revCounts := p.reverse.counts
	for v := range revVars {
		revCounts.addFrom(p.variableData[v].counts)
	}
	revCounts.Compounds = len(revVars)

	varDefs := map[string]parser.Section{}
	for v := range fwdVars {
		varDefs[v] = p.variableDefs[v]
	}
	for v := range revVars {
		varDefs[v] = p.variableDefs[v]
	}

	return &Pass1Result{
		Forward: DirectionResult{
			Counts:        fwdCounts,
			Filter:        p.forwardFilter,
			Rules:         p.forwardRules,
			UsedVariables: fwdVars,
		},
		Reverse: DirectionResult{
			Counts:        revCounts,
			Filter:        p.reverseFilter,
			Rules:         p.reverseRules,
			UsedVariables: revVars,
		},
		VariableDefs: varDefs,
		Warnings:     p.warnings,
	}, nil
}

// runPass1 validates rules and returns the counted state pass 2 needs
// for the requested direction(s).
func runPass1(requested parser.Direction, rules []parser.Rule) (*Pass1Result, error) {
	p := newPass1()
	if err := p.run(requested, rules); err != nil {
		return nil, err
	}
	return p.finish()
}
