package export

import (
	"fmt"
	"io"
	"sync"

	"github.com/icu4x-go/corei18n/datakey"
	"github.com/icu4x-go/corei18n/provider/blob"
)

// BlobSink accumulates every marker's retained entries into a single
// blob.Builder and writes the finished container to Out on Close
// (spec §6 "Data-provider sink file format (blob)").
type BlobSink struct {
	mu      sync.Mutex
	builder *blob.Builder
	pending map[uint64]map[string][]byte
	out     io.Writer
}

// NewBlobSink creates a sink that writes one combined container of the
// given schema version to out.
func NewBlobSink(version uint32, out io.Writer) *BlobSink {
	return &BlobSink{
		builder: blob.NewBuilder(version),
		pending: make(map[uint64]map[string][]byte),
		out:     out,
	}
}

// PutPayload buffers one entry under its marker until Flush.
func (s *BlobSink) PutPayload(marker datakey.Marker, locale datakey.DataLocale, attrs datakey.AttributeString, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := s.pending[marker.Hash]
	if entries == nil {
		entries = make(map[string][]byte)
		s.pending[marker.Hash] = entries
	}
	entries[blob.EntryKey(locale, attrs)] = data
	return nil
}

// Flush commits one marker's accumulated entries into the builder.
func (s *BlobSink) Flush(marker datakey.Marker) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := s.pending[marker.Hash]
	if entries == nil {
		entries = map[string][]byte{}
	}
	s.builder.AddMarker(marker.Hash, entries)
	delete(s.pending, marker.Hash)
	return nil
}

// Close serializes the combined container and writes it to Out.
func (s *BlobSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	data := s.builder.Finish()
	n, err := s.out.Write(data)
	if err != nil {
		return fmt.Errorf("blob sink: write: %w", err)
	}
	if n != len(data) {
		return fmt.Errorf("blob sink: short write: %d of %d bytes", n, len(data))
	}
	return nil
}
