package datakey

import "testing"

func TestMarkerHashStable(t *testing.T) {
	m1 := NewMarker("datetime/symbols@1", false, FallbackConfig{})
	m2 := NewMarker("datetime/symbols@1", false, FallbackConfig{})
	if m1.Hash != m2.Hash {
		t.Fatalf("hash mismatch for identical paths: %d != %d", m1.Hash, m2.Hash)
	}
	m3 := NewMarker("datetime/symbols@2", false, FallbackConfig{})
	if m1.Hash == m3.Hash {
		t.Fatal("distinct paths should (overwhelmingly likely) hash differently")
	}
}

func TestDataLocaleString(t *testing.T) {
	loc := NewDataLocale("en", "latn", "us", []string{"POSIX"}, map[string]string{"ca": "hebrew"})
	want := "en-Latn-US-posix-u-ca-hebrew"
	if got := loc.String(); got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
}

func TestDataLocaleEqualityIgnoresConstructionOrder(t *testing.T) {
	a := NewDataLocale("en", "", "US", []string{"b", "a"}, map[string]string{"ca": "hebrew", "co": "stroke"})
	b := NewDataLocale("en", "", "US", []string{"a", "b"}, map[string]string{"co": "stroke", "ca": "hebrew"})
	if !a.Equal(b) {
		t.Fatalf("expected %q == %q", a, b)
	}
}

func TestDataLocaleSteppers(t *testing.T) {
	loc := NewDataLocale("en", "Latn", "US", []string{"posix"}, nil)
	if got := loc.WithoutRegion(); got.Region != "" {
		t.Fatalf("WithoutRegion left region %q", got.Region)
	}
	if got := loc.WithoutLastVariant(); len(got.Variants) != 0 {
		t.Fatalf("WithoutLastVariant left variants %v", got.Variants)
	}
	if got := loc.WithoutScript(); got.Script != "" {
		t.Fatalf("WithoutScript left script %q", got.Script)
	}
	root := RootLocale()
	if !root.IsRoot() {
		t.Fatal("RootLocale() should report IsRoot()")
	}
}

func TestAttributeStringValidation(t *testing.T) {
	if _, err := NewAttributeString("gregorian"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := NewAttributeString("bad attr!"); err == nil {
		t.Fatal("expected error for invalid characters")
	}
}

func TestKeyCacheStringDeterministic(t *testing.T) {
	m := NewMarker("list/and@1", false, FallbackConfig{})
	req := NewRequest(NewDataLocale("fr", "", "", nil, nil), Empty)
	k1 := NewKey(m, req)
	k2 := NewKey(m, req)
	if k1.CacheString() != k2.CacheString() {
		t.Fatal("CacheString should be deterministic for equal keys")
	}
}

func TestSingletonMarkerIgnoresLocaleInCacheKey(t *testing.T) {
	m := NewMarker("constants/v1", true, FallbackConfig{})
	req1 := NewRequest(NewDataLocale("fr", "", "", nil, nil), Empty)
	req2 := NewRequest(NewDataLocale("de", "", "", nil, nil), Empty)
	k1 := NewKey(m, req1)
	k2 := NewKey(m, req2)
	if k1.CacheString() != k2.CacheString() {
		t.Fatal("singleton marker should resolve to one cache entry regardless of locale")
	}
}
