package compile

// SpecialConstructCounts tallies how many of each special construct a
// direction (or a single variable definition) needs, so pass 2 can
// size and offset the VarTable's arrays before encoding a single
// pattern (spec §4.5 "Pass 1 ... counting").
type SpecialConstructCounts struct {
	Compounds             int
	QuantifiersOpt        int
	QuantifiersKleene     int
	QuantifiersKleenePlus int
	Segments              int
	UnicodeSets           int
	FunctionCalls         int
	MaxLeftPlaceholders   int
	MaxRightPlaceholders  int
	MaxBackrefNum         int
}

// addFrom folds o into c: additive arrays accumulate, capacity-style
// maximums (placeholder widths, the highest backref number) take the
// larger of the two, since those size a single pseudo-array slot
// rather than append further entries to it.
func (c *SpecialConstructCounts) addFrom(o SpecialConstructCounts) {
	c.Compounds += o.Compounds
	c.QuantifiersOpt += o.QuantifiersOpt
	c.QuantifiersKleene += o.QuantifiersKleene
	c.QuantifiersKleenePlus += o.QuantifiersKleenePlus
	c.Segments += o.Segments
	c.UnicodeSets += o.UnicodeSets
	c.FunctionCalls += o.FunctionCalls
	if o.MaxLeftPlaceholders > c.MaxLeftPlaceholders {
		c.MaxLeftPlaceholders = o.MaxLeftPlaceholders
	}
	if o.MaxRightPlaceholders > c.MaxRightPlaceholders {
		c.MaxRightPlaceholders = o.MaxRightPlaceholders
	}
	if o.MaxBackrefNum > c.MaxBackrefNum {
		c.MaxBackrefNum = o.MaxBackrefNum
	}
}
