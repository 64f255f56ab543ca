package export

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/icu4x-go/corei18n/datakey"
)

// FilesystemSink writes one file per (marker, locale, attrs) under
// Root as "<Root>/<marker_path>/<locale>[+<attrs>].<ext>", where every
// '/' in the marker path is replaced by '_' so each marker gets one
// flat directory.
type FilesystemSink struct {
	Root string
	Ext  string

	mu sync.Mutex
}

// NewFilesystemSink creates a sink rooted at dir, writing files with
// the given extension (e.g. "postcard", "json").
func NewFilesystemSink(dir, ext string) *FilesystemSink {
	return &FilesystemSink{Root: dir, Ext: ext}
}

func (s *FilesystemSink) PutPayload(marker datakey.Marker, locale datakey.DataLocale, attrs datakey.AttributeString, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Join(s.Root, sanitizeMarkerPath(marker.Path))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("fs sink: mkdir %s: %w", dir, err)
	}

	name := locale.String()
	if attrs != datakey.Empty {
		name += "+" + string(attrs)
	}
	name += "." + s.Ext

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("fs sink: write %s: %w", path, err)
	}
	return nil
}

func (s *FilesystemSink) Flush(marker datakey.Marker) error { return nil }

func (s *FilesystemSink) Close() error { return nil }

// EmitFallbackDirective writes a zero-byte ".fallback" marker file that
// a loader can use to decide whether to wrap the directory provider in
// a fallback adapter at load time (spec §4.3 step 4, Internal
// placement).
func (s *FilesystemSink) EmitFallbackDirective(marker datakey.Marker) error {
	dir := filepath.Join(s.Root, sanitizeMarkerPath(marker.Path))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("fs sink: mkdir %s: %w", dir, err)
	}
	path := filepath.Join(dir, ".fallback")
	return os.WriteFile(path, nil, 0o644)
}

func sanitizeMarkerPath(path string) string {
	out := make([]byte, len(path))
	for i := 0; i < len(path); i++ {
		c := path[i]
		if c == '/' {
			out[i] = '_'
			continue
		}
		out[i] = c
	}
	return string(out)
}
