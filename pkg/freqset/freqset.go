// Package freqset implements a compact, duplicate-free set of 802.11
// channel center frequencies expressed in MHz.
package freqset

// Band groups of regularly spaced channels are kept in dense bitmaps;
// frequencies outside those ranges fall back to a sparse map.
const (
	band24Start = 2412
	// band24End covers channels 1-13 (2412-2472) on regular 5 MHz spacing.
	// Channel 14 (2484 MHz, Japan-only) breaks that spacing and falls into
	// the sparse map instead of the dense bitmap.
	band24End  = 2472
	band5Start = 5160
	band5End   = 5885
	band6Start = 5935
	band6End   = 7115
)

// Set is a duplicate-free collection of frequencies in MHz. The zero value
// is ready to use. Iteration order is arbitrary, matching the original
// unordered-set semantics.
type Set struct {
	band24 uint64 // bit i => (2412 + 5*i) MHz present, covers channels 1-13
	band5  []uint64
	band6  []uint64
	sparse map[uint32]struct{}
}

// New returns an empty frequency set.
func New() *Set {
	return &Set{}
}

// NewFromSlice builds a set from a list of frequencies, ignoring duplicates.
func NewFromSlice(freqs []uint32) *Set {
	s := New()
	for _, f := range freqs {
		s.Add(f)
	}
	return s
}

// Add inserts freq into the set. Adding an existing member is a no-op.
func (s *Set) Add(freq uint32) {
	if idx, ok := denseIndex(freq); ok {
		switch {
		case freq >= band24Start && freq <= band24End:
			s.band24 |= 1 << uint(idx)
		case freq >= band5Start && freq <= band5End:
			s.setBit(&s.band5, idx)
		case freq >= band6Start && freq <= band6End:
			s.setBit(&s.band6, idx)
		}
		return
	}
	if s.sparse == nil {
		s.sparse = make(map[uint32]struct{})
	}
	s.sparse[freq] = struct{}{}
}

// Remove deletes freq from the set, if present.
func (s *Set) Remove(freq uint32) {
	if idx, ok := denseIndex(freq); ok {
		switch {
		case freq >= band24Start && freq <= band24End:
			s.band24 &^= 1 << uint(idx)
		case freq >= band5Start && freq <= band5End:
			s.clearBit(s.band5, idx)
		case freq >= band6Start && freq <= band6End:
			s.clearBit(s.band6, idx)
		}
		return
	}
	if s.sparse != nil {
		delete(s.sparse, freq)
	}
}

// Contains reports whether freq is a member of the set.
func (s *Set) Contains(freq uint32) bool {
	if idx, ok := denseIndex(freq); ok {
		switch {
		case freq >= band24Start && freq <= band24End:
			return s.band24&(1<<uint(idx)) != 0
		case freq >= band5Start && freq <= band5End:
			return s.testBit(s.band5, idx)
		case freq >= band6Start && freq <= band6End:
			return s.testBit(s.band6, idx)
		}
	}
	if s.sparse == nil {
		return false
	}
	_, ok := s.sparse[freq]
	return ok
}

// Size returns the number of distinct frequencies in the set.
func (s *Set) Size() int {
	n := popcount(s.band24)
	n += sliceWeight(s.band5)
	n += sliceWeight(s.band6)
	n += len(s.sparse)
	return n
}

// ForEach calls cb once per member, in arbitrary order. cb must not mutate
// the set.
func (s *Set) ForEach(cb func(freq uint32)) {
	for i := 0; i < 64; i++ {
		if s.band24&(1<<uint(i)) != 0 {
			cb(uint32(band24Start + i*5))
		}
	}
	forEachBit(s.band5, band5Start, cb)
	forEachBit(s.band6, band6Start, cb)
	for f := range s.sparse {
		cb(f)
	}
}

// Slice materializes the set's contents as a slice, in arbitrary order.
func (s *Set) Slice() []uint32 {
	out := make([]uint32, 0, s.Size())
	s.ForEach(func(f uint32) { out = append(out, f) })
	return out
}

func (s *Set) setBit(words *[]uint64, idx int) {
	word, bit := idx/64, idx%64
	if word >= len(*words) {
		grown := make([]uint64, word+1)
		copy(grown, *words)
		*words = grown
	}
	(*words)[word] |= 1 << uint(bit)
}

func (s *Set) clearBit(words []uint64, idx int) {
	word, bit := idx/64, idx%64
	if word < len(words) {
		words[word] &^= 1 << uint(bit)
	}
}

func (s *Set) testBit(words []uint64, idx int) bool {
	word, bit := idx/64, idx%64
	if word >= len(words) {
		return false
	}
	return words[word]&(1<<uint(bit)) != 0
}

// denseIndex maps a frequency to a per-band bit index on 5 MHz spacing,
// which is regular enough across all three bands for this purpose.
// Frequencies off that 5 MHz grid are not dense and go to the sparse map.
func denseIndex(freq uint32) (int, bool) {
	switch {
	case freq >= band24Start && freq <= band24End && (freq-band24Start)%5 != 0,
		freq >= band5Start && freq <= band5End && (freq-band5Start)%5 != 0,
		freq >= band6Start && freq <= band6End && (freq-band6Start)%5 != 0:
		return 0, false
	case freq >= band24Start && freq <= band24End:
		return int((freq - band24Start) / 5), true
	case freq >= band5Start && freq <= band5End:
		return int((freq - band5Start) / 5), true
	case freq >= band6Start && freq <= band6End:
		return int((freq - band6Start) / 5), true
	}
	return 0, false
}

func popcount(w uint64) int {
	n := 0
	for w != 0 {
		w &= w - 1
		n++
	}
	return n
}

func sliceWeight(words []uint64) int {
	n := 0
	for _, w := range words {
		n += popcount(w)
	}
	return n
}

func forEachBit(words []uint64, base uint32, cb func(freq uint32)) {
	for wi, w := range words {
		for bi := 0; bi < 64; bi++ {
			if w&(1<<uint(bi)) != 0 {
				cb(base + uint32(wi*64+bi)*5)
			}
		}
	}
}
