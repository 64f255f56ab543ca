package parser

import "unicode"

// scanner is a rune-level cursor over UTF-8 source with byte offsets,
// mirroring the Rust parser's `Peekable<CharIndices>` (original_source
// experimental/transliterator_parser/src/parse.rs).
type scanner struct {
	runes []scannedRune
	pos   int
}

type scannedRune struct {
	offset int
	r      rune
}

func newScanner(source string) *scanner {
	runes := make([]scannedRune, 0, len(source))
	for i, r := range source {
		runes = append(runes, scannedRune{offset: i, r: r})
	}
	return &scanner{runes: runes}
}

func (s *scanner) peek() (rune, bool) {
	if s.pos >= len(s.runes) {
		return 0, false
	}
	return s.runes[s.pos].r, true
}

func (s *scanner) peekOffset() (int, bool) {
	if s.pos >= len(s.runes) {
		return 0, false
	}
	return s.runes[s.pos].offset, true
}

func (s *scanner) next() (int, rune, bool) {
	if s.pos >= len(s.runes) {
		return 0, 0, false
	}
	sr := s.runes[s.pos]
	s.pos++
	return sr.offset, sr.r, true
}

// lastOffset returns an offset suitable for error reporting when the
// scanner has been exhausted: one past the last consumed rune.
func (s *scanner) lastOffset() int {
	if len(s.runes) == 0 {
		return 0
	}
	last := s.runes[len(s.runes)-1]
	return last.offset + len(string(last.r))
}

func (p *Parser) mustPeek() (int, rune, error) {
	off, ok := p.s.peekOffset()
	if !ok {
		return 0, 0, errAt(UnknownEOF, p.s.lastOffset())
	}
	r, _ := p.s.peek()
	return off, r, nil
}

func (p *Parser) mustPeekChar() (rune, error) {
	_, r, err := p.mustPeek()
	return r, err
}

func (p *Parser) mustPeekOffset() (int, error) {
	off, _, err := p.mustPeek()
	return off, err
}

func (p *Parser) peekChar() (rune, bool) {
	return p.s.peek()
}

func (p *Parser) mustNext() (int, rune, error) {
	off, r, ok := p.s.next()
	if !ok {
		return 0, 0, errAt(UnknownEOF, p.s.lastOffset())
	}
	return off, r, nil
}

func (p *Parser) mustNextChar() (rune, error) {
	_, r, err := p.mustNext()
	return r, err
}

func (p *Parser) consume(expected rune) error {
	off, c, err := p.mustNext()
	if err != nil {
		return err
	}
	if c != expected {
		return errUnexpected(c, off)
	}
	return nil
}

// skipWhitespace skips Pattern-White-Space and '#'-to-end-of-line
// comments (spec §4.4 "Lexical conventions").
func (p *Parser) skipWhitespace() {
	for {
		c, ok := p.s.peek()
		if !ok {
			return
		}
		if c == commentChar {
			p.skipUntil(commentEnd)
			continue
		}
		if !isPatternWhitespace(c) {
			return
		}
		p.s.next()
	}
}

func (p *Parser) skipUntil(end rune) {
	for {
		_, c, ok := p.s.next()
		if !ok || c == end {
			return
		}
	}
}

// isPatternWhitespace approximates Unicode's Pattern_White_Space
// property with unicode.IsSpace; format controls (ZWJ/ZWNJ and
// similar) are not IsSpace and so are correctly excluded.
func isPatternWhitespace(r rune) bool {
	return unicode.IsSpace(r)
}
