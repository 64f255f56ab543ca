package provider

import (
	"github.com/icu4x-go/corei18n/datakey"
	"github.com/icu4x-go/corei18n/fallback"
)

// FallbackAdapter wraps an AnyProvider so that a MissingLocale error
// triggers a fallback step instead of surfacing to the caller (spec §7
// Propagation: "Fallbackable errors... are caught by the fallback
// engine and converted to a step, never surfaced to the user").
//
// This is the "fallback adapter" named in spec §4.1's C2 component
// summary, and the "emit a fallback-adapter directive so the emitted
// provider performs fallback at load time" path from spec §4.3 step 4
// (Internal placement): an exported provider wraps its backend in
// exactly this adapter.
type FallbackAdapter struct {
	Inner      AnyProvider
	Fallbacker *fallback.Fallbacker
}

// NewFallbackAdapter builds a FallbackAdapter over inner using fb to
// compute fallback chains.
func NewFallbackAdapter(inner AnyProvider, fb *fallback.Fallbacker) *FallbackAdapter {
	return &FallbackAdapter{Inner: inner, Fallbacker: fb}
}

// LoadAny implements AnyProvider, stepping the fallback chain on
// MissingLocale until a backend load succeeds or the chain (and then
// the request itself) is exhausted.
func (a *FallbackAdapter) LoadAny(markerHash uint64, marker datakey.Marker, req datakey.Request) (ErasedPayload, error) {
	it := a.Fallbacker.Chain(req.Locale, marker.Fallback)
	var lastErr error
	for {
		loc, ok := it.Next()
		if !ok {
			break
		}
		stepReq := datakey.Request{Locale: loc, Attributes: req.Attributes}
		payload, err := a.Inner.LoadAny(markerHash, marker, stepReq)
		if err == nil {
			return payload, nil
		}
		var pErr *Error
		if !asProviderError(err, &pErr) || !pErr.Fallbackable() {
			return ErasedPayload{}, err
		}
		lastErr = err
	}
	if lastErr != nil {
		return ErasedPayload{}, lastErr
	}
	return ErasedPayload{}, &Error{
		Kind:       MissingLocale,
		MarkerPath: marker.Path,
		MarkerHash: marker.Hash,
		Locale:     req.Locale.String(),
		Attributes: string(req.Attributes),
	}
}

func asProviderError(err error, out **Error) bool {
	if pe, ok := err.(*Error); ok {
		*out = pe
		return true
	}
	return false
}
