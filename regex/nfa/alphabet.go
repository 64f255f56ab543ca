package nfa

// ByteClasses maps each of the 256 byte values to an equivalence class
// representative, shrinking the effective alphabet a DFA must branch on.
type ByteClasses struct {
	classes [256]byte
}

// NewByteClasses builds classes from an explicit byte->class mapping.
func NewByteClasses(classes [256]byte) *ByteClasses {
	return &ByteClasses{classes: classes}
}

// SingletonByteClasses returns the identity mapping: every byte is its own
// class. Used when no reduction was computed.
func SingletonByteClasses() *ByteClasses {
	var bc ByteClasses
	for i := 0; i < 256; i++ {
		bc.classes[i] = byte(i)
	}
	return &bc
}

func (bc *ByteClasses) Get(b byte) byte { return bc.classes[b] }

func (bc *ByteClasses) AlphabetLen() int {
	max := byte(0)
	seen := false
	for _, c := range bc.classes {
		if !seen || c > max {
			max = c
			seen = true
		}
	}
	if !seen {
		return 0
	}
	return int(max) + 1
}

func (bc *ByteClasses) IsSingleton() bool { return bc.AlphabetLen() == 256 }

func (bc *ByteClasses) IsEmpty() bool { return false }

// Representatives returns one byte per equivalence class, in class order.
func (bc *ByteClasses) Representatives() []byte {
	seen := make(map[byte]bool)
	var reps []byte
	for b := 0; b < 256; b++ {
		c := bc.classes[b]
		if !seen[c] {
			seen[c] = true
			reps = append(reps, byte(b))
		}
	}
	return reps
}

// Elements returns every byte belonging to the given class.
func (bc *ByteClasses) Elements(class byte) []byte {
	var out []byte
	for b := 0; b < 256; b++ {
		if bc.classes[b] == class {
			out = append(out, byte(b))
		}
	}
	return out
}

// ByteClassSet accumulates byte-range boundaries seen during compilation,
// then derives a ByteClasses partition from them.
type ByteClassSet struct {
	bits [4]uint64
}

func NewByteClassSet() *ByteClassSet { return &ByteClassSet{} }

func (s *ByteClassSet) setBit(n int) { s.bits[n/64] |= 1 << uint(n%64) }
func (s *ByteClassSet) getBit(n int) bool {
	return s.bits[n/64]&(1<<uint(n%64)) != 0
}

// SetRange records that [start,end] forms a contiguous range sharing a
// transition target, marking its boundaries as class breaks.
func (s *ByteClassSet) SetRange(start, end byte) {
	s.setBit(int(start))
	if int(end)+1 < 256 {
		s.setBit(int(end) + 1)
	}
}

func (s *ByteClassSet) SetByte(b byte) { s.SetRange(b, b) }

// Merge folds another set's boundaries into this one.
func (s *ByteClassSet) Merge(other *ByteClassSet) {
	for i := range s.bits {
		s.bits[i] |= other.bits[i]
	}
}

// ByteClasses converts the recorded boundaries into a partition: a new
// class begins at byte 0 and at every recorded boundary.
func (s *ByteClassSet) ByteClasses() *ByteClasses {
	var bc ByteClasses
	class := byte(0)
	for b := 0; b < 256; b++ {
		if b > 0 && s.getBit(b) {
			class++
		}
		bc.classes[b] = class
	}
	return &bc
}
