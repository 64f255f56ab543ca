// Package blob implements the self-describing, endian-tagged binary
// container described in spec.md §6 ("Data-provider sink file format
// (blob)"), plus a BufferProvider backend that reads it.
package blob

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/icu4x-go/corei18n/datakey"
	"github.com/icu4x-go/corei18n/provider"
)

const (
	magic       = "ICU4XDATA\x00"
	endianTag   = uint32(0xDEADBEEF)
	indexRecLen = 8 + 8 + 8 // hash + offset + length
)

// Builder accumulates marker payload tables and serializes them into
// the blob wire format. Builders are single-use: call Finish once all
// markers have been added.
type Builder struct {
	version uint32
	markers []markerRecord
}

type markerRecord struct {
	hash uint64
	data []byte
}

// entry is one (locale|attrs) -> payload pair within a marker.
type entry struct {
	key   string
	value []byte
}

// NewBuilder creates a Builder tagged with the given schema-container
// version (spec §6 "version: u32 (schema)").
func NewBuilder(version uint32) *Builder {
	return &Builder{version: version}
}

// AddMarker appends one marker's locale table. entries should already
// be deduplicated by the export driver (spec §4.3); AddMarker does not
// deduplicate.
func (b *Builder) AddMarker(markerHash uint64, entries map[string][]byte) {
	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sortStrings(keys)

	var body bytes.Buffer
	var countBuf [4]byte
	binary.NativeEndian.PutUint32(countBuf[:], uint32(len(keys)))
	body.Write(countBuf[:])

	var varintBuf [binary.MaxVarintLen64]byte
	for _, k := range keys {
		v := entries[k]
		n := binary.PutUvarint(varintBuf[:], uint64(len(k)))
		body.Write(varintBuf[:n])
		body.WriteString(k)
		n = binary.PutUvarint(varintBuf[:], uint64(len(v)))
		body.Write(varintBuf[:n])
		body.Write(v)
	}

	b.markers = append(b.markers, markerRecord{hash: markerHash, data: body.Bytes()})
}

// Finish serializes the accumulated markers into the wire format
// described in spec §6.
func (b *Builder) Finish() []byte {
	var out bytes.Buffer
	out.WriteString(magic)

	var u32 [4]byte
	binary.NativeEndian.PutUint32(u32[:], endianTag)
	out.Write(u32[:])
	binary.NativeEndian.PutUint32(u32[:], b.version)
	out.Write(u32[:])
	binary.NativeEndian.PutUint32(u32[:], uint32(len(b.markers)))
	out.Write(u32[:])

	type indexEnt struct {
		hash   uint64
		offset uint64
		length uint64
	}
	index := make([]indexEnt, 0, len(b.markers))
	for _, m := range b.markers {
		index = append(index, indexEnt{hash: m.hash, offset: uint64(out.Len()), length: uint64(len(m.data))})
		out.Write(m.data)
	}

	indexOffset := uint64(out.Len())
	var u64 [8]byte
	for _, e := range index {
		binary.NativeEndian.PutUint64(u64[:], e.hash)
		out.Write(u64[:])
		binary.NativeEndian.PutUint64(u64[:], e.offset)
		out.Write(u64[:])
		binary.NativeEndian.PutUint64(u64[:], e.length)
		out.Write(u64[:])
	}
	binary.NativeEndian.PutUint64(u64[:], indexOffset)
	out.Write(u64[:])

	return out.Bytes()
}

// Blob is a parsed, read-only view over a serialized container. Open
// validates the header eagerly; per-marker contents are parsed lazily
// by LoadBuffer.
type Blob struct {
	data    []byte
	order   binary.ByteOrder
	version uint32
	index   map[uint64][2]uint64 // hash -> [offset, length]
}

// Open validates and wraps a serialized blob. The endian tag is used
// to detect byte order and transparently swap reads; a tag that
// matches neither native nor swapped 0xDEADBEEF is reported as
// Corrupt, per spec §6 ("the endian tag allows the reader to detect and
// either swap or reject").
func Open(data []byte) (*Blob, error) {
	if len(data) < len(magic)+4+4+4+8 {
		return nil, corrupt("blob too short")
	}
	if string(data[:len(magic)]) != magic {
		return nil, corrupt("bad magic")
	}
	off := len(magic)

	tagLE := binary.LittleEndian.Uint32(data[off:])
	tagBE := binary.BigEndian.Uint32(data[off:])
	var order binary.ByteOrder
	switch endianTag {
	case tagLE:
		order = binary.LittleEndian
	case tagBE:
		order = binary.BigEndian
	default:
		return nil, corrupt("unrecognized endian tag")
	}
	off += 4

	version := order.Uint32(data[off:])
	off += 4
	markerCount := order.Uint32(data[off:])
	off += 4

	if len(data) < 8 {
		return nil, corrupt("missing index offset")
	}
	indexOffset := order.Uint64(data[len(data)-8:])
	if indexOffset > uint64(len(data)-8) {
		return nil, corrupt("index offset out of range")
	}
	indexBytes := data[indexOffset : len(data)-8]
	if uint64(len(indexBytes)) != uint64(markerCount)*indexRecLen {
		return nil, corrupt("index table size mismatch")
	}

	index := make(map[uint64][2]uint64, markerCount)
	for i := 0; i < int(markerCount); i++ {
		rec := indexBytes[i*indexRecLen:]
		hash := order.Uint64(rec)
		offset := order.Uint64(rec[8:])
		length := order.Uint64(rec[16:])
		if offset+length > indexOffset {
			return nil, corrupt("marker record out of range")
		}
		index[hash] = [2]uint64{offset, length}
	}

	return &Blob{data: data, order: order, version: version, index: index}, nil
}

// Version returns the container's schema version.
func (b *Blob) Version() uint32 { return b.version }

// LoadBuffer implements provider.BufferProvider.
func (b *Blob) LoadBuffer(markerHash uint64, marker datakey.Marker, req datakey.Request) ([]byte, error) {
	span, ok := b.index[markerHash]
	if !ok {
		return nil, &provider.Error{
			Kind:       provider.MissingMarker,
			MarkerPath: marker.Path,
			MarkerHash: markerHash,
			Locale:     req.Locale.String(),
			Attributes: string(req.Attributes),
		}
	}
	body := b.data[span[0] : span[0]+span[1]]
	if len(body) < 4 {
		return nil, corruptReq(marker, req, "truncated marker body")
	}
	count := b.order.Uint32(body)
	body = body[4:]

	wantKey := req.Locale.String() + "|" + string(req.Attributes)
	for i := uint32(0); i < count; i++ {
		klen, n := binary.Uvarint(body)
		if n <= 0 {
			return nil, corruptReq(marker, req, "bad key length varint")
		}
		body = body[n:]
		key := string(body[:klen])
		body = body[klen:]

		vlen, n := binary.Uvarint(body)
		if n <= 0 {
			return nil, corruptReq(marker, req, "bad value length varint")
		}
		body = body[n:]
		val := body[:vlen]
		body = body[vlen:]

		if key == wantKey {
			return val, nil
		}
	}
	return nil, &provider.Error{
		Kind:       provider.MissingLocale,
		MarkerPath: marker.Path,
		MarkerHash: markerHash,
		Locale:     req.Locale.String(),
		Attributes: string(req.Attributes),
	}
}

// SupportedLocales implements export.LocaleLister by scanning the
// marker's entry table for distinct locales. It lets a Blob opened
// from a previously exported container serve as the export driver's
// Source for re-exporting or reformatting already-baked data.
func (b *Blob) SupportedLocales(marker datakey.Marker) []datakey.DataLocale {
	span, ok := b.index[marker.Hash]
	if !ok {
		return nil
	}
	body := b.data[span[0] : span[0]+span[1]]
	if len(body) < 4 {
		return nil
	}
	count := b.order.Uint32(body)
	body = body[4:]

	seen := make(map[string]datakey.DataLocale, count)
	for i := uint32(0); i < count; i++ {
		klen, n := binary.Uvarint(body)
		if n <= 0 {
			return nil
		}
		body = body[n:]
		key := string(body[:klen])
		body = body[klen:]

		vlen, n := binary.Uvarint(body)
		if n <= 0 {
			return nil
		}
		body = body[n:]
		body = body[vlen:]

		localePart := key
		if idx := strings.IndexByte(key, '|'); idx >= 0 {
			localePart = key[:idx]
		}
		if _, ok := seen[localePart]; !ok {
			seen[localePart] = datakey.ParseDataLocale(localePart)
		}
	}

	out := make([]datakey.DataLocale, 0, len(seen))
	for _, loc := range seen {
		out = append(out, loc)
	}
	return out
}

func corrupt(msg string) error {
	return &provider.Error{Kind: provider.Corrupt, Cause: fmt.Errorf("blob: %s", msg)}
}

func corruptReq(marker datakey.Marker, req datakey.Request, msg string) error {
	return &provider.Error{
		Kind:       provider.Corrupt,
		MarkerPath: marker.Path,
		MarkerHash: marker.Hash,
		Locale:     req.Locale.String(),
		Attributes: string(req.Attributes),
		Cause:      fmt.Errorf("blob: %s", msg),
	}
}

// EntryKey builds the locale|attrs key used inside a marker's body, for
// callers (the export driver) writing entries through Builder.AddMarker.
func EntryKey(locale datakey.DataLocale, attrs datakey.AttributeString) string {
	return locale.String() + "|" + string(attrs)
}

func sortStrings(s []string) {
	// Small insertion sort: marker locale counts are in the hundreds at
	// most, and this avoids pulling in sort for a single call site.
	for i := 1; i < len(s); i++ {
		v := s[i]
		j := i - 1
		for j >= 0 && s[j] > v {
			s[j+1] = s[j]
			j--
		}
		s[j+1] = v
	}
}
