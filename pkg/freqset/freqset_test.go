package freqset

import (
	"sort"
	"testing"
)

func TestAddContains(t *testing.T) {
	s := New()
	freqs := []uint32{2412, 2437, 2462, 5180, 5745, 5935, 6115, 60480}
	for _, f := range freqs {
		s.Add(f)
	}
	for _, f := range freqs {
		if !s.Contains(f) {
			t.Fatalf("expected set to contain %d", f)
		}
	}
	if s.Contains(2413) {
		t.Fatalf("set should not contain 2413")
	}
	if s.Size() != len(freqs) {
		t.Fatalf("size = %d, want %d", s.Size(), len(freqs))
	}
}

func TestAddDuplicateNoOp(t *testing.T) {
	s := New()
	s.Add(2412)
	s.Add(2412)
	s.Add(60480)
	s.Add(60480)
	if s.Size() != 2 {
		t.Fatalf("size = %d, want 2", s.Size())
	}
}

func TestRemove(t *testing.T) {
	s := NewFromSlice([]uint32{2412, 2437, 60480})
	s.Remove(2437)
	s.Remove(60480)
	if s.Contains(2437) || s.Contains(60480) {
		t.Fatalf("removed frequencies still present")
	}
	if s.Size() != 1 {
		t.Fatalf("size = %d, want 1", s.Size())
	}
}

func TestForEachOrderIndependent(t *testing.T) {
	want := []uint32{2412, 2437, 2462, 5180, 5220}
	s := NewFromSlice(want)

	var got []uint32
	s.ForEach(func(f uint32) { got = append(got, f) })

	sort.Slice(want, func(i, j int) bool { return want[i] < want[j] })
	sort.Slice(got, func(i, j int) bool { return got[i] < got[j] })

	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestEmptySet(t *testing.T) {
	s := New()
	if s.Size() != 0 {
		t.Fatalf("expected empty set")
	}
	s.ForEach(func(f uint32) { t.Fatalf("unexpected member %d", f) })
}

func TestChannel14RoundTrip(t *testing.T) {
	// 2484 MHz (channel 14) sits 12 MHz above channel 13 and breaks the
	// regular 5 MHz channel spacing the dense 2.4 GHz bitmap assumes, so
	// it must round-trip through the sparse map instead.
	s := New()
	s.Add(2484)
	s.Add(2472)
	if !s.Contains(2484) {
		t.Fatalf("expected set to contain 2484")
	}
	got := s.Slice()
	sort.Slice(got, func(i, j int) bool { return got[i] < got[j] })
	want := []uint32{2472, 2484}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("got %v, want %v", got, want)
	}
	s.Remove(2484)
	if s.Contains(2484) {
		t.Fatalf("2484 still present after Remove")
	}
}
