// Package fallback implements the C3 Locale Fallback Engine: given a
// locale and a per-marker fallback config, produces the finite
// inheritance chain ending at "und" (spec.md §4.2).
package fallback

// LikelySubtagsTable answers whether a script is the one CLDR's
// likely-subtags data would infer for a language, used by fallback
// step 4 ("drop script only if the likely-subtags table confirms the
// script is implied by the language"). The full likely-subtags table
// is CLDR-derived data generated by an out-of-scope build-time process
// (spec §1 Non-goals); this interface lets the fallback engine consume
// whatever table a provider wires in without the engine depending on
// CLDR ingestion itself.
type LikelySubtagsTable interface {
	// ImpliedScript returns the script CLDR's maximization would add to
	// a bare language subtag, e.g. ("en", "Latn", true) or
	// ("zh", "Hans", true).
	ImpliedScript(language string) (script string, ok bool)
}

// ParentRegionsTable answers the UN M49-derived region parent used by
// fallback step 3 when a marker's priority is Region (e.g. "419" is
// the parent of most Latin-American country codes).
type ParentRegionsTable interface {
	Parent(region string) (parent string, ok bool)
}

// mapLikelySubtags is a small, explicitly-curated LikelySubtagsTable
// covering the languages exercised by this repo's tests and the spec's
// worked examples. A production deployment wires in the full
// CLDR-derived table generated by the (out-of-scope) datagen pipeline.
type mapLikelySubtags map[string]string

// ImpliedScript implements LikelySubtagsTable.
func (m mapLikelySubtags) ImpliedScript(language string) (string, bool) {
	s, ok := m[language]
	return s, ok
}

// DefaultLikelySubtags returns a small built-in likely-subtags table
// good enough for the engine to be exercised without an external data
// dependency.
func DefaultLikelySubtags() LikelySubtagsTable {
	return mapLikelySubtags{
		"en": "Latn",
		"fr": "Latn",
		"de": "Latn",
		"es": "Latn",
		"pt": "Latn",
		"ru": "Cyrl",
		"ar": "Arab",
		"he": "Hebr",
		"zh": "Hans",
		"ja": "Jpan",
		"ko": "Kore",
		"hi": "Deva",
		"th": "Thai",
		"el": "Grek",
		"sr": "Cyrl",
	}
}

// mapParentRegions is a small, explicitly-curated ParentRegionsTable.
type mapParentRegions map[string]string

// Parent implements ParentRegionsTable.
func (m mapParentRegions) Parent(region string) (string, bool) {
	p, ok := m[region]
	return p, ok
}

// DefaultParentRegions returns a small built-in UN M49 region-parent
// table covering common cases exercised by this repo's tests.
func DefaultParentRegions() ParentRegionsTable {
	return mapParentRegions{
		"US": "019", // Americas
		"CA": "019",
		"MX": "419", // Latin America and the Caribbean
		"BR": "419",
		"AR": "419",
		"GB": "154", // Northern Europe... simplified for test fixtures
		"IE": "154",
		"AU": "009", // Oceania
		"NZ": "009",
		"419": "019",
		"154": "150", // Europe
		"009": "001", // World
		"019": "001",
	}
}
