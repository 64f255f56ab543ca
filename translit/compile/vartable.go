package compile

import "github.com/icu4x-go/corei18n/translit/parser"

// puaBase is the first Private Use Area code point special constructs
// are encoded from (spec §4.5 "PUA encoding"): each construct's final
// code point is puaBase plus its index into whichever of the arrays
// below it belongs to, the arrays themselves laid out back-to-back in
// a fixed order so every index is unique across the whole VarTable.
const puaBase = rune(0xF0000)

// FunctionCallEntry is one &SingleId(...) invocation: the transform to
// recurse into and its already-encoded argument pattern.
type FunctionCallEntry struct {
	Id      parser.SingleId
	Pattern string
}

// VarTable holds every special construct one matching direction's
// rules reference, indexed by the PUA code point pass 2 assigned it.
// Variables are deduplicated by name (a variable referenced five times
// still gets exactly one Compounds slot); quantifiers, segments,
// unicode sets, and function calls get one slot per occurrence, since
// each occurrence is a structurally distinct node even when its
// encoded text happens to coincide with another's.
type VarTable struct {
	Compounds             []string
	QuantifiersOpt        []string
	QuantifiersKleene     []string
	QuantifiersKleenePlus []string
	Segments              []string
	UnicodeSets           []*parser.UnicodeSet
	FunctionCalls         []FunctionCallEntry

	// MaxLeftPlaceholders/MaxRightPlaceholders/MaxBackrefNum size the
	// three pseudo-arrays that store no data of their own: a cursor's
	// placeholder count or a back reference's segment number IS the
	// array index (offset by one, since neither counts from zero), so
	// only the capacity needs to be retained.
	MaxLeftPlaceholders  int
	MaxRightPlaceholders int
	MaxBackrefNum        int

	// PureCursor, AnchorStart, and AnchorEnd are single reserved code
	// points past the end of every indexed array: a bare '|' cursor
	// and the '^'/'$' anchors need no stored data either, and (unlike
	// placeholders/backrefs) there's only ever one of each per
	// direction, so they don't need an array at all.
	PureCursor  rune
	AnchorStart rune
	AnchorEnd   rune
}

// varOffsets is the base PUA index of each of the VarTable's ten fixed
// arrays (seven real, three pseudo), computed once counts are known so
// encoding can assign a final code point to each construct as soon as
// it's first seen, without a second pass.
type varOffsets struct {
	compounds         int
	quantOpt          int
	quantKleene       int
	quantKleenePlus   int
	segments          int
	unicodeSets       int
	functionCalls     int
	leftPlaceholders  int
	rightPlaceholders int
	backrefs          int
	total             int
}

func computeOffsets(c SpecialConstructCounts) varOffsets {
	var o varOffsets
	o.compounds = 0
	o.quantOpt = o.compounds + c.Compounds
	o.quantKleene = o.quantOpt + c.QuantifiersOpt
	o.quantKleenePlus = o.quantKleene + c.QuantifiersKleene
	o.segments = o.quantKleenePlus + c.QuantifiersKleenePlus
	o.unicodeSets = o.segments + c.Segments
	o.functionCalls = o.unicodeSets + c.UnicodeSets
	o.leftPlaceholders = o.functionCalls + c.FunctionCalls
	o.rightPlaceholders = o.leftPlaceholders + c.MaxLeftPlaceholders
	o.backrefs = o.rightPlaceholders + c.MaxRightPlaceholders
	o.total = o.backrefs + c.MaxBackrefNum
	return o
}

func pua(base, idx int) rune {
	return puaBase + rune(base+idx)
}
