package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/icu4x-go/corei18n/export"
)

func TestResolveMarkersAll(t *testing.T) {
	got, err := resolveMarkers("all")
	if err != nil {
		t.Fatalf("resolveMarkers(all): %v", err)
	}
	if len(got) != len(registry) {
		t.Fatalf("got %d markers, want %d", len(got), len(registry))
	}
}

func TestResolveMarkersList(t *testing.T) {
	got, err := resolveMarkers("decimal/symbols@1, list/and@1")
	if err != nil {
		t.Fatalf("resolveMarkers: %v", err)
	}
	if len(got) != 2 || got[0].Path != "decimal/symbols@1" || got[1].Path != "list/and@1" {
		t.Fatalf("unexpected markers: %+v", got)
	}
}

func TestResolveMarkersUnregisteredIsError(t *testing.T) {
	if _, err := resolveMarkers("no/such@1"); err == nil {
		t.Fatal("expected error for unregistered marker")
	}
}

func TestResolveMarkersFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "markers.yaml")
	if err := os.WriteFile(path, []byte("- decimal/symbols@1\n- plurals/cardinal@1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := resolveMarkers("@" + path)
	if err != nil {
		t.Fatalf("resolveMarkers(@file): %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d markers, want 2", len(got))
	}
}

func TestResolveFamiliesFull(t *testing.T) {
	got, err := resolveFamilies("full")
	if err != nil {
		t.Fatalf("resolveFamilies(full): %v", err)
	}
	if len(got) != 1 || !got[0].Full {
		t.Fatalf("unexpected families: %+v", got)
	}
}

func TestResolveFamiliesList(t *testing.T) {
	got, err := resolveFamilies("fr,^en-US")
	if err != nil {
		t.Fatalf("resolveFamilies: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d families, want 2", len(got))
	}
	if !got[1].IncludeAncestors {
		t.Fatalf("expected second family to be ancestors-only: %+v", got[1])
	}
}

func TestResolveFamiliesEmptyIsError(t *testing.T) {
	if _, err := resolveFamilies(""); err == nil {
		t.Fatal("expected error for empty --locales")
	}
}

func TestParsePlacement(t *testing.T) {
	cases := map[string]export.FallbackPlacement{
		"internal": export.PlacementInternal,
		"external": export.PlacementExternal,
		"none":     export.PlacementExternal,
	}
	for in, want := range cases {
		got, err := parsePlacement(in)
		if err != nil {
			t.Fatalf("parsePlacement(%q): %v", in, err)
		}
		if got != want {
			t.Errorf("parsePlacement(%q) = %v, want %v", in, got, want)
		}
	}
	if _, err := parsePlacement("bogus"); err == nil {
		t.Fatal("expected error for unknown placement")
	}
}

func TestLookupMarker(t *testing.T) {
	if _, ok := lookupMarker("decimal/symbols@1"); !ok {
		t.Fatal("expected decimal/symbols@1 to be registered")
	}
	if _, ok := lookupMarker("no/such@1"); ok {
		t.Fatal("expected no/such@1 to be unregistered")
	}
}
