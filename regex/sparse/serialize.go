package sparse

import "encoding/binary"

var magic = [4]byte{'S', 'P', 'D', 'F'}

const formatVersion uint16 = 1

const headerSize = 4 + 2 + 4 + 4 // magic, version, numStates, startOffset

// encode lays out rawStates as a self-describing blob: a small header
// followed by one variable-length record per state, each addressable by
// its own absolute byte offset (see state.go for the record layout).
//
// Offsets aren't known until every state's size has been computed, so
// this runs in two passes: Pass A computes each state's size and assigns
// it a final offset; Pass B writes the records, resolving every
// transition's "next" field through the offsets Pass A recorded.
func encode(states []rawState, accelerators map[int]*Accelerator) ([]byte, error) {
	offsets := make([]int, len(states))
	sizes := make([]int, len(states))
	cursor := headerSize

	for i, s := range states {
		size := 2 + 2*len(s.trans) + 4*len(s.trans)
		if s.isMatch {
			size += 4 + 4*len(s.patternIDs)
		}
		accelLen := 0
		if a := accelerators[i]; a != nil {
			accelLen = len(a.Bytes())
		}
		size += 1 + accelLen
		offsets[i] = cursor
		sizes[i] = size
		cursor += size
	}

	blob := make([]byte, cursor)
	copy(blob[0:4], magic[:])
	binary.LittleEndian.PutUint16(blob[4:6], formatVersion)
	binary.LittleEndian.PutUint32(blob[6:10], uint32(len(states)))
	if len(states) > startIndex {
		binary.LittleEndian.PutUint32(blob[10:14], uint32(offsets[startIndex]))
	}

	for i, s := range states {
		o := offsets[i]
		header := uint16(len(s.trans))
		if s.isMatch {
			header |= matchBit
		}
		binary.LittleEndian.PutUint16(blob[o:o+2], header)
		p := o + 2
		for _, t := range s.trans {
			blob[p] = t.lo
			blob[p+1] = t.hi
			p += 2
		}
		for _, t := range s.trans {
			binary.LittleEndian.PutUint32(blob[p:p+4], uint32(offsets[t.next]))
			p += 4
		}
		if s.isMatch {
			binary.LittleEndian.PutUint32(blob[p:p+4], uint32(len(s.patternIDs)))
			p += 4
			for _, id := range s.patternIDs {
				binary.LittleEndian.PutUint32(blob[p:p+4], id)
				p += 4
			}
		}
		var accelBytes []byte
		if a := accelerators[i]; a != nil {
			accelBytes = a.Bytes()
		}
		blob[p] = byte(len(accelBytes))
		p++
		copy(blob[p:], accelBytes)
		p += len(accelBytes)
		if p != o+sizes[i] {
			return nil, ErrCorruptData
		}
	}

	return blob, nil
}

// decodeHeader validates the blob's magic/version and returns the number
// of states and the absolute offset of the start state's record.
func decodeHeader(blob []byte) (numStates int, startOffset int, err error) {
	if len(blob) < headerSize {
		return 0, 0, ErrCorruptData
	}
	if [4]byte(blob[0:4]) != magic {
		return 0, 0, ErrCorruptData
	}
	if binary.LittleEndian.Uint16(blob[4:6]) != formatVersion {
		return 0, 0, ErrVersionSkew
	}
	numStates = int(binary.LittleEndian.Uint32(blob[6:10]))
	startOffset = int(binary.LittleEndian.Uint32(blob[10:14]))
	return numStates, startOffset, nil
}
