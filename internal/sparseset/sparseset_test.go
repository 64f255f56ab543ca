package sparseset

import "testing"

func TestSetInsertContains(t *testing.T) {
	s := New(16)
	if s.Contains(3) {
		t.Fatal("empty set should not contain 3")
	}
	s.Insert(3)
	s.Insert(7)
	s.Insert(3) // duplicate, no-op
	if s.Len() != 2 {
		t.Fatalf("len = %d, want 2", s.Len())
	}
	if !s.Contains(3) || !s.Contains(7) {
		t.Fatal("expected 3 and 7 to be members")
	}
	if s.Contains(8) {
		t.Fatal("8 should not be a member")
	}
}

func TestSetClearReusesStorage(t *testing.T) {
	s := New(4)
	s.Insert(0)
	s.Insert(1)
	s.Clear()
	if s.Len() != 0 {
		t.Fatalf("len after clear = %d, want 0", s.Len())
	}
	if s.Contains(0) || s.Contains(1) {
		t.Fatal("cleared set should contain nothing")
	}
	s.Insert(2)
	if !s.Contains(2) || s.Len() != 1 {
		t.Fatal("set should be reusable after clear")
	}
}

func TestSetOutOfRangePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for out-of-range insert")
		}
	}()
	s := New(2)
	s.Insert(5)
}

func TestSetSliceOrder(t *testing.T) {
	s := New(8)
	s.Insert(5)
	s.Insert(1)
	s.Insert(6)
	got := s.Slice()
	want := []uint32{5, 1, 6}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Slice()[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}
