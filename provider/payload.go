package provider

// Payload is an immutable container for a zero-copy decoded value of
// type T (spec §3 "DataPayload").
//
// Rust's original holds either a 'static reference (baked data) or an
// owned backing buffer whose lifetime keeps the zero-copy view valid;
// Go's garbage collector already keeps any referenced backing array
// alive for as long as a slice or pointer into it survives, so Payload
// is simply a pointer wrapper. "Cheaply clonable; mutation is not
// exposed" is satisfied because Clone copies only the pointer and the
// exported accessor returns by value semantics (callers get a *T but
// are expected, as with the Rust original, not to mutate through it).
type Payload[T any] struct {
	value *T
}

// NewPayload wraps value in a Payload.
func NewPayload[T any](value *T) Payload[T] {
	return Payload[T]{value: value}
}

// Get returns the wrapped value. Callers must not mutate the pointee;
// Payload provides no mutable accessor because the underlying memory
// may be shared (e.g. 'static baked data shared across every caller).
func (p Payload[T]) Get() *T {
	return p.value
}

// Clone returns a Payload sharing the same backing value. The cost is
// one pointer copy, matching the "cheaply clonable" contract in spec
// §3 even though there is no explicit refcount to bump.
func (p Payload[T]) Clone() Payload[T] {
	return p
}

// IsZero reports whether this Payload wraps no value.
func (p Payload[T]) IsZero() bool {
	return p.value == nil
}

// ErasedPayload is a type-erased Payload for the Any provider view
// (spec §4.1: "load_any... may be downcast").
type ErasedPayload struct {
	markerHash    uint64
	schemaVersion uint32
	value         any
}

// NewErasedPayload erases a typed Payload for transport through the Any
// provider layer.
func NewErasedPayload[T any](markerHash uint64, schemaVersion uint32, p Payload[T]) ErasedPayload {
	return ErasedPayload{markerHash: markerHash, schemaVersion: schemaVersion, value: p}
}

// MarkerHash returns the marker hash this payload was loaded for.
func (e ErasedPayload) MarkerHash() uint64 { return e.markerHash }

// SchemaVersion returns the schema version the payload was tagged with
// at load time.
func (e ErasedPayload) SchemaVersion() uint32 { return e.schemaVersion }

// Downcast attempts to recover a typed Payload[T] from an ErasedPayload.
// It returns ok=false (never panics) when T does not match the value
// the payload was erased from, matching the "may be downcast" contract
// without introducing a reflection-based runtime type registry.
func Downcast[T any](e ErasedPayload) (Payload[T], bool) {
	p, ok := e.value.(Payload[T])
	return p, ok
}
