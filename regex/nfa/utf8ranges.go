package nfa

import "unicode/utf8"

// byteRange is one inclusive byte interval within a fixed-length UTF-8
// encoded sequence.
type byteRange struct{ lo, hi byte }

// byteSeq is a sequence of byteRanges, one per byte position, all sharing
// the encoded length of the rune range they represent.
type byteSeq []byteRange

// lengthBoundaries mark the last codepoint encoded at each UTF-8 length.
var lengthBoundaries = [4]rune{0x7F, 0x7FF, 0xFFFF, utf8.MaxRune}

// utf8Sequences decomposes an inclusive rune range [lo,hi] into byte
// sequences, first splitting at UTF-8 length boundaries and then
// recursively splitting mismatched lead bytes within a fixed length. This
// is the standard construction behind "utf8-ranges"-style automata
// builders: every returned sequence denotes a contiguous, well-formed set
// of UTF-8 byte strings.
func utf8Sequences(lo, hi rune) []byteSeq {
	var out []byteSeq
	for _, boundary := range lengthBoundaries {
		if lo > boundary {
			continue
		}
		split := hi
		if split > boundary {
			split = boundary
		}
		out = append(out, splitSameLength(lo, split)...)
		lo = split + 1
		if lo > hi {
			break
		}
	}
	return out
}

func splitSameLength(lo, hi rune) []byteSeq {
	var loBuf, hiBuf [utf8.UTFMax]byte
	ln := utf8.EncodeRune(loBuf[:], lo)
	hn := utf8.EncodeRune(hiBuf[:], hi)
	if ln != hn {
		// Should not happen given lengthBoundaries, but fall back to
		// per-boundary recursion defensively.
		mid := lo
		return append(splitSameLength(mid, mid), splitSameLength(mid+1, hi)...)
	}
	return splitBytes(loBuf[:ln], hiBuf[:hn])
}

func splitBytes(lo, hi []byte) []byteSeq {
	if len(lo) == 1 {
		return []byteSeq{{{lo[0], hi[0]}}}
	}
	if lo[0] == hi[0] {
		rest := splitBytes(lo[1:], hi[1:])
		out := make([]byteSeq, len(rest))
		for i, r := range rest {
			out[i] = append(byteSeq{{lo[0], lo[0]}}, r...)
		}
		return out
	}

	var out []byteSeq
	const contMin, contMax = 0x80, 0xBF
	maxTail := make([]byte, len(lo)-1)
	minTail := make([]byte, len(lo)-1)
	for i := range maxTail {
		maxTail[i] = contMax
		minTail[i] = contMin
	}

	for _, r := range splitBytes(lo[1:], maxTail) {
		out = append(out, append(byteSeq{{lo[0], lo[0]}}, r...))
	}
	if lo[0]+1 <= hi[0]-1 {
		seq := byteSeq{{lo[0] + 1, hi[0] - 1}}
		for range minTail {
			seq = append(seq, byteRange{contMin, contMax})
		}
		out = append(out, seq)
	}
	for _, r := range splitBytes(minTail, hi[1:]) {
		out = append(out, append(byteSeq{{hi[0], hi[0]}}, r...))
	}
	return out
}
