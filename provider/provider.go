// Package provider implements the C2 Data Provider Trait Layer: three
// polymorphic views over the same underlying store, as described in
// spec.md §4.1.
package provider

import "github.com/icu4x-go/corei18n/datakey"

// Deserializer decodes a marker-specific serialized payload into a
// value of type T. Implementations are supplied by the schema owner
// (the package that defines the marker), mirroring how the Rust
// original's `DataMarker::Yokeable` associated type encodes the
// decode step into the marker itself.
type Deserializer[T any] func(buf []byte) (*T, error)

// DataProvider resolves a request for a compile-time-known marker M
// into a typed, zero-copy Payload (spec §4.1 "Typed").
type DataProvider[T any] interface {
	Load(marker datakey.Marker, req datakey.Request) (Payload[T], error)
}

// AnyProvider resolves a request by marker hash into a type-erased
// payload that may be downcast (spec §4.1 "Any").
type AnyProvider interface {
	LoadAny(markerHash uint64, marker datakey.Marker, req datakey.Request) (ErasedPayload, error)
}

// BufferProvider resolves a request by marker hash into a serialized
// payload the caller deserializes itself (spec §4.1 "Buffer").
type BufferProvider interface {
	LoadBuffer(markerHash uint64, marker datakey.Marker, req datakey.Request) ([]byte, error)
}

// checkVersion enforces the C2 contract: "if a backend returns success
// for a request, the payload satisfies the marker's schema version;
// mismatched schema versions are reported as VersionMismatch, never
// ignored." Every adapter in this file calls it before returning a
// decoded payload.
func checkVersion(marker datakey.Marker, req datakey.Request, payloadVersion uint32) error {
	if payloadVersion != 0 && payloadVersion != marker.SchemaVersion {
		return &Error{
			Kind:       VersionMismatch,
			MarkerPath: marker.Path,
			MarkerHash: marker.Hash,
			Locale:     req.Locale.String(),
			Attributes: string(req.Attributes),
		}
	}
	return nil
}

// BufferToAny adapts a BufferProvider into an AnyProvider by
// deserializing each loaded buffer with the given Deserializer. The
// adapter holds no per-call state (spec §4.1: "Adapters must not box
// per-call" — no allocation beyond what Deserializer itself performs).
type BufferToAny[T any] struct {
	Buffer        BufferProvider
	Deserialize   Deserializer[T]
	SchemaVersion uint32
}

// LoadAny implements AnyProvider.
func (a BufferToAny[T]) LoadAny(markerHash uint64, marker datakey.Marker, req datakey.Request) (ErasedPayload, error) {
	buf, err := a.Buffer.LoadBuffer(markerHash, marker, req)
	if err != nil {
		return ErasedPayload{}, err
	}
	val, err := a.Deserialize(buf)
	if err != nil {
		return ErasedPayload{}, &Error{
			Kind:       Corrupt,
			MarkerPath: marker.Path,
			MarkerHash: marker.Hash,
			Locale:     req.Locale.String(),
			Attributes: string(req.Attributes),
			Cause:      err,
		}
	}
	if err := checkVersion(marker, req, a.SchemaVersion); err != nil {
		return ErasedPayload{}, err
	}
	return NewErasedPayload(markerHash, a.SchemaVersion, NewPayload(val)), nil
}

// AnyToTyped adapts an AnyProvider into a DataProvider[T] by
// downcasting each loaded ErasedPayload.
type AnyToTyped[T any] struct {
	Any AnyProvider
}

// Load implements DataProvider[T].
func (a AnyToTyped[T]) Load(marker datakey.Marker, req datakey.Request) (Payload[T], error) {
	erased, err := a.Any.LoadAny(marker.Hash, marker, req)
	if err != nil {
		return Payload[T]{}, err
	}
	p, ok := Downcast[T](erased)
	if !ok {
		return Payload[T]{}, &Error{
			Kind:       VersionMismatch,
			MarkerPath: marker.Path,
			MarkerHash: marker.Hash,
			Locale:     req.Locale.String(),
			Attributes: string(req.Attributes),
			Cause:      errDowncastFailed,
		}
	}
	if err := checkVersion(marker, req, erased.SchemaVersion()); err != nil {
		return Payload[T]{}, err
	}
	return p, nil
}

var errDowncastFailed = downcastError{}

type downcastError struct{}

func (downcastError) Error() string { return "payload type does not match requested marker type" }
