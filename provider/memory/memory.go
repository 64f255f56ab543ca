// Package memory implements an in-memory data provider backend: the
// simplest of the pluggable backends named in spec.md §1
// ("pluggable in-memory/baked/blob/buffer backends").
package memory

import (
	"sync"

	"github.com/icu4x-go/corei18n/datakey"
	"github.com/icu4x-go/corei18n/provider"
)

// Provider is an AnyProvider backed by an in-memory map, built once and
// treated as immutable thereafter (spec §1 Non-goals: "no mutable
// global state at runtime (data providers are immutable after
// construction)").
type Provider struct {
	mu      sync.RWMutex // guards only the build phase; Load never writes
	entries map[string]provider.ErasedPayload
	// locales indexes the distinct locales registered per marker hash,
	// keyed by the locale's normalized string so duplicate attribute
	// entries under the same locale are only counted once.
	locales map[uint64]map[string]datakey.DataLocale
	sealed  bool
}

// New creates an empty, unsealed Provider. Call Put for every entry,
// then Seal before sharing the Provider across goroutines.
func New() *Provider {
	return &Provider{
		entries: make(map[string]provider.ErasedPayload),
		locales: make(map[uint64]map[string]datakey.DataLocale),
	}
}

// Put registers a payload for (marker, request). Panics if called
// after Seal, since providers are immutable once constructed.
func (p *Provider) Put(marker datakey.Marker, req datakey.Request, payload provider.ErasedPayload) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.sealed {
		panic("memory: Put called on a sealed Provider")
	}
	key := datakey.NewKey(marker, req)
	p.entries[key.CacheString()] = payload

	byLocale, ok := p.locales[marker.Hash]
	if !ok {
		byLocale = make(map[string]datakey.DataLocale)
		p.locales[marker.Hash] = byLocale
	}
	byLocale[req.Locale.String()] = req.Locale
}

// Seal freezes the provider. Subsequent Put calls panic.
func (p *Provider) Seal() *Provider {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sealed = true
	return p
}

// LoadAny implements provider.AnyProvider.
func (p *Provider) LoadAny(markerHash uint64, marker datakey.Marker, req datakey.Request) (provider.ErasedPayload, error) {
	key := datakey.NewKey(marker, req)
	p.mu.RLock()
	val, ok := p.entries[key.CacheString()]
	p.mu.RUnlock()
	if !ok {
		return provider.ErasedPayload{}, &provider.Error{
			Kind:       provider.MissingLocale,
			MarkerPath: marker.Path,
			MarkerHash: marker.Hash,
			Locale:     req.Locale.String(),
			Attributes: string(req.Attributes),
		}
	}
	return val, nil
}

// SupportedLocales returns every distinct locale this provider has an
// entry for under marker (ignoring attributes), used by the export
// driver's locale-selection step (spec §4.3 step 1).
func (p *Provider) SupportedLocales(marker datakey.Marker) []datakey.DataLocale {
	p.mu.RLock()
	defer p.mu.RUnlock()
	byLocale := p.locales[marker.Hash]
	locs := make([]datakey.DataLocale, 0, len(byLocale))
	for _, l := range byLocale {
		locs = append(locs, l)
	}
	return locs
}
