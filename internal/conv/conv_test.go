package conv

import "testing"

func TestIntToUint32(t *testing.T) {
	if got := IntToUint32(42); got != 42 {
		t.Fatalf("got %d, want 42", got)
	}
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for negative input")
		}
	}()
	IntToUint32(-1)
}

func TestIntToUint16Overflow(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for overflow")
		}
	}()
	IntToUint16(70000)
}

func TestUint64ToUint32(t *testing.T) {
	if got := Uint64ToUint32(100); got != 100 {
		t.Fatalf("got %d, want 100", got)
	}
}

func TestFitsUint24(t *testing.T) {
	cases := []struct {
		n    int
		want bool
	}{
		{-1, false},
		{0, true},
		{0xFFFFFF, true},
		{0x1000000, false},
	}
	for _, c := range cases {
		if got := FitsUint24(c.n); got != c.want {
			t.Fatalf("FitsUint24(%d) = %v, want %v", c.n, got, c.want)
		}
	}
}
