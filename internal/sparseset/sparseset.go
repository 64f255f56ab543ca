// Package sparseset provides a sparse set data structure for efficient
// membership testing over a bounded universe of small integers.
//
// A sparse set supports O(1) insertion, membership testing, and
// full-set clearing while maintaining a dense list suitable for
// iteration. No other package of this module imports it at present.
package sparseset

// Set is a set of uint32 values in [0, capacity) supporting O(1)
// Insert/Contains/Clear.
//
// The sparse array maps a value to its index in the dense array; a
// value is a member iff sparse[value] < size and dense[sparse[value]]
// == value. Clearing only resets size, not the backing arrays, so
// repeated Clear/Insert cycles (e.g. once per NFA determinization step)
// do not reallocate.
type Set struct {
	sparse []uint32
	dense  []uint32
	size   uint32
}

// New creates a new Set over the universe [0, capacity).
func New(capacity uint32) *Set {
	return &Set{
		sparse: make([]uint32, capacity),
		dense:  make([]uint32, capacity),
		size:   0,
	}
}

// Capacity returns the exclusive upper bound of values this set can hold.
func (s *Set) Capacity() uint32 {
	return uint32(len(s.sparse))
}

// Len returns the number of elements currently in the set.
func (s *Set) Len() int {
	return int(s.size)
}

// Contains reports whether value is a member of the set.
func (s *Set) Contains(value uint32) bool {
	if value >= uint32(len(s.sparse)) {
		return false
	}
	idx := s.sparse[value]
	return idx < s.size && s.dense[idx] == value
}

// Insert adds value to the set. No-op if already present.
// Panics if value is outside the configured capacity.
func (s *Set) Insert(value uint32) {
	if s.Contains(value) {
		return
	}
	if value >= uint32(len(s.sparse)) {
		panic("sparseset: value out of range")
	}
	s.dense[s.size] = value
	s.sparse[value] = s.size
	s.size++
}

// Clear empties the set without releasing backing storage.
func (s *Set) Clear() {
	s.size = 0
}

// Slice returns the dense list of members in insertion order. The
// returned slice aliases internal storage and is only valid until the
// next mutating call.
func (s *Set) Slice() []uint32 {
	return s.dense[:s.size]
}
