package sparse

import "encoding/binary"

// Each state is serialized as a self-contained record:
//
//	ntrans   u16   (top bit set => state is a match state)
//	ranges   ntrans × (lo u8, hi u8)
//	next     ntrans × u32   (byte offset of the target state's record)
//	if match:
//	  plen       u32
//	  patternIDs plen × u32
//	accelLen u8
//	accel    accelLen × u8  (accelLen <= maxAccelBytes)
//
// Offsets are absolute byte offsets into the DFA's encoded blob, so a
// state record can be read standalone given only its starting offset.
const matchBit = uint16(1) << 15

// stateView is a read-only window onto one encoded state record.
type stateView struct {
	data []byte
}

func newStateView(blob []byte, offset int) (stateView, error) {
	if offset < 0 || offset+2 > len(blob) {
		return stateView{}, ErrCorruptData
	}
	return stateView{data: blob[offset:]}, nil
}

func (v stateView) header() uint16 {
	return binary.LittleEndian.Uint16(v.data[0:2])
}

func (v stateView) IsMatch() bool { return v.header()&matchBit != 0 }

func (v stateView) NumTransitions() int { return int(v.header() &^ matchBit) }

func (v stateView) rangesOffset() int { return 2 }

func (v stateView) nextOffset() int { return v.rangesOffset() + 2*v.NumTransitions() }

// Transition returns the i'th transition's byte range and the absolute
// blob offset of the state it leads to.
func (v stateView) Transition(i int) (lo, hi byte, nextOffset uint32, err error) {
	n := v.NumTransitions()
	if i < 0 || i >= n {
		return 0, 0, 0, ErrCorruptData
	}
	ro := v.rangesOffset() + 2*i
	if ro+2 > len(v.data) {
		return 0, 0, 0, ErrCorruptData
	}
	lo, hi = v.data[ro], v.data[ro+1]
	no := v.nextOffset() + 4*i
	if no+4 > len(v.data) {
		return 0, 0, 0, ErrCorruptData
	}
	return lo, hi, binary.LittleEndian.Uint32(v.data[no : no+4]), nil
}

// TransitionFor returns the blob offset reached by consuming byte b from
// this state, or false if no transition covers it (an implicit dead
// transition).
func (v stateView) TransitionFor(b byte) (uint32, bool) {
	n := v.NumTransitions()
	for i := 0; i < n; i++ {
		lo, hi, next, err := v.Transition(i)
		if err != nil {
			return 0, false
		}
		if b >= lo && b <= hi {
			return next, true
		}
	}
	return 0, false
}

func (v stateView) patternTableOffset() int {
	return v.nextOffset() + 4*v.NumTransitions()
}

// PatternIDs returns the identifiers of the patterns this state accepts,
// empty if the state is not a match state.
func (v stateView) PatternIDs() ([]uint32, error) {
	if !v.IsMatch() {
		return nil, nil
	}
	po := v.patternTableOffset()
	if po+4 > len(v.data) {
		return nil, ErrCorruptData
	}
	plen := binary.LittleEndian.Uint32(v.data[po : po+4])
	ids := make([]uint32, plen)
	base := po + 4
	for i := range ids {
		o := base + 4*i
		if o+4 > len(v.data) {
			return nil, ErrCorruptData
		}
		ids[i] = binary.LittleEndian.Uint32(v.data[o : o+4])
	}
	return ids, nil
}

func (v stateView) accelOffset() int {
	o := v.patternTableOffset()
	if v.IsMatch() {
		if o+4 > len(v.data) {
			return o
		}
		plen := int(binary.LittleEndian.Uint32(v.data[o : o+4]))
		o += 4 + 4*plen
	}
	return o
}

// Accel returns the state's escape bytes for acceleration, empty if the
// state was not accelerated.
func (v stateView) Accel() ([]byte, error) {
	o := v.accelOffset()
	if o+1 > len(v.data) {
		return nil, ErrCorruptData
	}
	n := int(v.data[o])
	if n > maxAccelBytes || o+1+n > len(v.data) {
		return nil, ErrCorruptData
	}
	return v.data[o+1 : o+1+n], nil
}

// Size returns the total byte length of this state's record.
func (v stateView) Size() (int, error) {
	o := v.accelOffset()
	if o+1 > len(v.data) {
		return 0, ErrCorruptData
	}
	n := int(v.data[o])
	if n > maxAccelBytes || o+1+n > len(v.data) {
		return 0, ErrCorruptData
	}
	return o + 1 + n, nil
}
