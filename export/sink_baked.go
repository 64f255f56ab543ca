package export

import (
	"fmt"
	"go/format"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/icu4x-go/corei18n/datakey"
)

// BakedSink writes one Go source file per marker under Root, each
// declaring a package-level map literal from locale string to payload
// bytes. This is the Go analogue of original_source's baked providers:
// a `'static` reference compiled directly into the binary rather than
// read from a blob at load time (spec §3 "DataPayload... Holds either
// a 'static reference (baked data)").
//
// BakedSink only emits source text; it performs no code generation at
// runtime; Package is the package name the emitted files declare.
type BakedSink struct {
	Root    string
	Package string

	mu      sync.Mutex
	pending map[uint64]map[string][]byte
}

// NewBakedSink creates a sink that writes one <sanitized-marker-path>.go
// file per marker under dir, each declaring package pkg.
func NewBakedSink(dir, pkg string) *BakedSink {
	return &BakedSink{
		Root:    dir,
		Package: pkg,
		pending: make(map[uint64]map[string][]byte),
	}
}

// PutPayload buffers one entry under its marker until Flush.
func (s *BakedSink) PutPayload(marker datakey.Marker, locale datakey.DataLocale, attrs datakey.AttributeString, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := s.pending[marker.Hash]
	if entries == nil {
		entries = make(map[string][]byte)
		s.pending[marker.Hash] = entries
	}
	key := locale.String()
	if attrs != datakey.Empty {
		key += "|" + string(attrs)
	}
	entries[key] = data
	return nil
}

// Flush renders one marker's accumulated entries into a .go source
// file under Root.
func (s *BakedSink) Flush(marker datakey.Marker) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.pending[marker.Hash]
	delete(s.pending, marker.Hash)

	if err := os.MkdirAll(s.Root, 0o755); err != nil {
		return fmt.Errorf("baked sink: mkdir %s: %w", s.Root, err)
	}

	varName := bakedVarName(marker.Path)
	src := renderBakedSource(s.Package, varName, entries)
	formatted, err := format.Source(src)
	if err != nil {
		// Fall back to the unformatted source rather than failing the
		// export over a cosmetic gofmt mismatch.
		formatted = src
	}

	path := filepath.Join(s.Root, sanitizeMarkerPath(marker.Path)+".go")
	if err := os.WriteFile(path, formatted, 0o644); err != nil {
		return fmt.Errorf("baked sink: write %s: %w", path, err)
	}
	return nil
}

// Close is a no-op: every marker's output is already on disk by the
// time its Flush returns.
func (s *BakedSink) Close() error { return nil }

func renderBakedSource(pkg, varName string, entries map[string][]byte) []byte {
	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString("// Code generated by icu4xexport. DO NOT EDIT.\n\n")
	fmt.Fprintf(&b, "package %s\n\n", pkg)
	fmt.Fprintf(&b, "var %s = map[string][]byte{\n", varName)
	for _, k := range keys {
		fmt.Fprintf(&b, "\t%q: {", k)
		for i, byteVal := range entries[k] {
			if i > 0 {
				b.WriteByte(',')
			}
			fmt.Fprintf(&b, "0x%02x", byteVal)
		}
		b.WriteString("},\n")
	}
	b.WriteString("}\n")
	return []byte(b.String())
}

// bakedVarName turns a marker path like "decimal/symbols@1" into an
// exported Go identifier, e.g. "DecimalSymbolsV1".
func bakedVarName(path string) string {
	path = strings.ReplaceAll(path, "@", "V")
	var b strings.Builder
	upperNext := true
	for _, c := range path {
		switch {
		case c == '/' || c == '_' || c == '-':
			upperNext = true
		case upperNext:
			b.WriteRune(toUpperASCII(c))
			upperNext = false
		default:
			b.WriteRune(c)
		}
	}
	return b.String()
}

func toUpperASCII(c rune) rune {
	if c >= 'a' && c <= 'z' {
		return c - ('a' - 'A')
	}
	return c
}
