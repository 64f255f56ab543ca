// Package datakey implements the C1 Data Key & Locale Model: the
// fingerprints that identify a (marker, locale, attributes) data
// request, as described in spec.md §3 "Data Key".
package datakey

import "hash/fnv"

// FallbackPriority selects which locale component the fallback engine
// (package fallback) strips first when no more specific signal applies.
type FallbackPriority uint8

const (
	// PriorityLanguage drops region outright when no variant/extension
	// step applies.
	PriorityLanguage FallbackPriority = iota
	// PriorityRegion substitutes a parent region via the region-parents
	// table instead of dropping region outright.
	PriorityRegion
)

// String returns a human-readable priority name.
func (p FallbackPriority) String() string {
	switch p {
	case PriorityLanguage:
		return "Language"
	case PriorityRegion:
		return "Region"
	default:
		return "Unknown"
	}
}

// FallbackConfig is the per-marker fallback behavior declared by a
// marker's ahead-of-time registration (spec §3: "Marker... carries... a
// fallback configuration (priority = Language / Region / Script)").
type FallbackConfig struct {
	// Priority chooses the region-handling step (§4.2 step 3).
	Priority FallbackPriority
	// ExtensionAware marks this marker as caring about unicode
	// extension keywords (e.g. u-ca, u-co); non-aware markers strip all
	// keywords in a single step instead of stepping through them one at
	// a time (§4.2 step 1).
	ExtensionAware bool
	// ExtensionKeyword is the keyword this marker is sensitive to, e.g.
	// "ca" for calendar-bound markers. Only meaningful when
	// ExtensionAware is true.
	ExtensionKeyword string
}

// Marker is a process-wide unique identifier for one data schema.
//
// Markers are drawn from a closed, ahead-of-time registry: application
// code calls NewMarker once per schema (typically in a package-level
// var) and shares the resulting value; the registry itself is just the
// set of Marker values an application happens to construct; there is no
// dynamic registration step.
type Marker struct {
	// Hash is a stable 64-bit fingerprint of Path, used as the
	// over-the-wire / blob-format identifier (spec §6 blob format:
	// "marker_hash: u64").
	Hash uint64
	// Path is a human-readable schema path, e.g. "datetime/symbols@1".
	Path string
	// Singleton markers carry at most one payload regardless of locale
	// (e.g. process-wide constant tables); the provider layer skips
	// locale-keyed lookup for them.
	Singleton bool
	// Fallback is this marker's fallback configuration.
	Fallback FallbackConfig
	// SchemaVersion gates payload compatibility (spec §4.1 contract:
	// mismatched schema versions are reported as VersionMismatch, never
	// ignored).
	SchemaVersion uint32
}

// NewMarker constructs a Marker, deriving its Hash from path via FNV-1a.
// Two markers constructed from the same path always carry the same Hash.
func NewMarker(path string, singleton bool, fb FallbackConfig) Marker {
	return NewMarkerVersioned(path, singleton, fb, 1)
}

// NewMarkerVersioned is NewMarker with an explicit schema version.
func NewMarkerVersioned(path string, singleton bool, fb FallbackConfig, schemaVersion uint32) Marker {
	return Marker{
		Hash:          HashPath(path),
		Path:          path,
		Singleton:     singleton,
		Fallback:      fb,
		SchemaVersion: schemaVersion,
	}
}

// HashPath computes the stable 64-bit marker fingerprint for a schema
// path. Exposed so provider backends can index by hash without holding
// a live Marker value (spec §4.1: "load_any(marker_hash, request)").
func HashPath(path string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(path))
	return h.Sum64()
}
