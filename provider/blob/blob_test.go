package blob

import (
	"testing"

	"github.com/icu4x-go/corei18n/datakey"
)

func TestBuilderOpenRoundTrip(t *testing.T) {
	b := NewBuilder(7)
	loc := datakey.NewDataLocale("en", "", "US", nil, nil)
	b.AddMarker(0x1234, map[string][]byte{
		EntryKey(loc, datakey.Empty): []byte("hello"),
	})
	data := b.Finish()

	blob, err := Open(data)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if blob.Version() != 7 {
		t.Fatalf("version = %d, want 7", blob.Version())
	}

	m := datakey.NewMarkerVersioned("x@1", false, datakey.FallbackConfig{}, 7)
	req := datakey.NewRequest(loc, datakey.Empty)
	got, err := blob.LoadBuffer(0x1234, m, req)
	if err != nil {
		t.Fatalf("LoadBuffer: %v", err)
	}
	if string(got) != "hello" {
		t.Fatalf("got %q, want %q", got, "hello")
	}
}

func TestOpenRejectsBadMagic(t *testing.T) {
	_, err := Open([]byte("not a blob at all, but long enough to pass length check"))
	if err == nil {
		t.Fatal("expected an error for bad magic")
	}
}

func TestLoadBufferMissingMarker(t *testing.T) {
	b := NewBuilder(1)
	data := b.Finish()
	blob, err := Open(data)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	m := datakey.NewMarker("x@1", false, datakey.FallbackConfig{})
	_, err = blob.LoadBuffer(0xdead, m, datakey.NewRequest(datakey.RootLocale(), datakey.Empty))
	if err == nil {
		t.Fatal("expected MissingMarker error")
	}
}

func TestLoadBufferMissingLocale(t *testing.T) {
	b := NewBuilder(1)
	loc := datakey.NewDataLocale("en", "", "", nil, nil)
	b.AddMarker(0xbeef, map[string][]byte{EntryKey(loc, datakey.Empty): []byte("x")})
	data := b.Finish()
	blob, err := Open(data)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	m := datakey.NewMarker("x@1", false, datakey.FallbackConfig{})
	other := datakey.NewDataLocale("fr", "", "", nil, nil)
	_, err = blob.LoadBuffer(0xbeef, m, datakey.NewRequest(other, datakey.Empty))
	if err == nil {
		t.Fatal("expected MissingLocale error")
	}
}

func TestMultipleMarkersAndEntries(t *testing.T) {
	b := NewBuilder(1)
	en := datakey.NewDataLocale("en", "", "", nil, nil)
	fr := datakey.NewDataLocale("fr", "", "", nil, nil)
	b.AddMarker(1, map[string][]byte{
		EntryKey(en, datakey.Empty): []byte("one-en"),
		EntryKey(fr, datakey.Empty): []byte("one-fr"),
	})
	b.AddMarker(2, map[string][]byte{
		EntryKey(en, datakey.Empty): []byte("two-en"),
	})
	data := b.Finish()
	blob, err := Open(data)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	m := datakey.NewMarker("x@1", false, datakey.FallbackConfig{})
	got, err := blob.LoadBuffer(2, m, datakey.NewRequest(en, datakey.Empty))
	if err != nil || string(got) != "two-en" {
		t.Fatalf("got %q, err %v", got, err)
	}
	got, err = blob.LoadBuffer(1, m, datakey.NewRequest(fr, datakey.Empty))
	if err != nil || string(got) != "one-fr" {
		t.Fatalf("got %q, err %v", got, err)
	}
}
