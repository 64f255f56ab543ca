package export

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/icu4x-go/corei18n/datakey"
)

func TestBakedSinkWritesOneFilePerMarker(t *testing.T) {
	dir := t.TempDir()
	sink := NewBakedSink(dir, "bakeddata")

	marker := datakey.NewMarker("decimal/symbols@1", false, datakey.FallbackConfig{})
	loc := datakey.NewDataLocale("en", "", "", nil, nil)
	if err := sink.PutPayload(marker, loc, datakey.Empty, []byte{0x01, 0x02}); err != nil {
		t.Fatalf("PutPayload: %v", err)
	}
	if err := sink.Flush(marker); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if err := sink.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	path := filepath.Join(dir, "decimal_symbols@1.go")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read generated file: %v", err)
	}
	src := string(data)
	if !strings.Contains(src, "package bakeddata") {
		t.Errorf("missing package clause:\n%s", src)
	}
	if !strings.Contains(src, "var DecimalSymbolsV1 = map[string][]byte{") {
		t.Errorf("missing var declaration:\n%s", src)
	}
	if !strings.Contains(src, `"en": {0x01, 0x02},`) {
		t.Errorf("missing entry:\n%s", src)
	}
}

func TestBakedVarName(t *testing.T) {
	cases := map[string]string{
		"decimal/symbols@1":  "DecimalSymbolsV1",
		"list/and@1":         "ListAndV1",
		"fallback/parents@1": "FallbackParentsV1",
	}
	for in, want := range cases {
		if got := bakedVarName(in); got != want {
			t.Errorf("bakedVarName(%q) = %q, want %q", in, got, want)
		}
	}
}
