package fallback

import (
	"sort"

	"github.com/icu4x-go/corei18n/datakey"
)

// Fallbacker builds fallback Iterators for a fixed pair of reference
// tables. A single Fallbacker is shared across every marker; the
// per-marker behavior comes entirely from the datakey.FallbackConfig
// passed to Chain.
type Fallbacker struct {
	likely  LikelySubtagsTable
	parents ParentRegionsTable
}

// NewFallbacker builds a Fallbacker over the given reference tables.
// Either may be nil, in which case the corresponding steps (script
// confirmation, region-parent substitution) degrade to their
// conservative fallback (never drop an unconfirmed script; drop region
// outright instead of substituting a parent).
func NewFallbacker(likely LikelySubtagsTable, parents ParentRegionsTable) *Fallbacker {
	return &Fallbacker{likely: likely, parents: parents}
}

// NewDefaultFallbacker builds a Fallbacker over the small built-in
// reference tables (DefaultLikelySubtags, DefaultParentRegions).
func NewDefaultFallbacker() *Fallbacker {
	return NewFallbacker(DefaultLikelySubtags(), DefaultParentRegions())
}

// Chain returns an Iterator producing the inheritance chain for locale
// under cfg, starting at locale itself and ending at "und"
// (spec §4.2).
func (f *Fallbacker) Chain(locale datakey.DataLocale, cfg datakey.FallbackConfig) *Iterator {
	return &Iterator{f: f, cfg: cfg, current: locale}
}

// Steps materializes the full chain as a slice, for callers (export,
// tests) that want the whole sequence rather than stepping by hand.
// Guards against runaway chains with a hard cap well above the spec's
// documented "~8 steps for any real input".
func (f *Fallbacker) Steps(locale datakey.DataLocale, cfg datakey.FallbackConfig) []datakey.DataLocale {
	const maxSteps = 32
	it := f.Chain(locale, cfg)
	out := make([]datakey.DataLocale, 0, 8)
	for i := 0; i < maxSteps; i++ {
		loc, ok := it.Next()
		if !ok {
			break
		}
		out = append(out, loc)
	}
	return out
}

// Iterator walks the fallback chain for one locale under one
// FallbackConfig. Each call to Next produces a strictly more general
// locale than the last; the final call before exhaustion always
// produces "und" (spec §4.2 "Ordering guarantee").
type Iterator struct {
	f       *Fallbacker
	cfg     datakey.FallbackConfig
	current datakey.DataLocale
	started bool
	done    bool
}

// Next returns the next locale in the chain. The first call returns
// the starting locale unchanged. Returns ok=false once the chain is
// exhausted (the previous call returned "und").
func (it *Iterator) Next() (datakey.DataLocale, bool) {
	if it.done {
		return datakey.DataLocale{}, false
	}
	if !it.started {
		it.started = true
		if it.current.IsRoot() {
			it.done = true
		}
		return it.current, true
	}
	next, ok := it.step(it.current)
	if !ok {
		it.done = true
		return datakey.DataLocale{}, false
	}
	it.current = next
	if next.IsRoot() {
		it.done = true
		return next, true
	}
	return next, true
}

// step implements one iteration of the spec §4.2 algorithm.
func (it *Iterator) step(cur datakey.DataLocale) (datakey.DataLocale, bool) {
	// Step 1: extension keywords.
	if cur.HasExtensions() {
		if it.cfg.ExtensionAware {
			if next, ok := dropExtensionStep(cur, it.cfg.ExtensionKeyword); ok {
				return next, true
			}
		} else {
			return cur.WithoutExtensions(), true
		}
	}

	// Step 2: variants.
	if len(cur.Variants) > 0 {
		return cur.WithoutLastVariant(), true
	}

	// Step 3: region.
	if cur.Region != "" {
		if it.cfg.Priority == datakey.PriorityRegion && it.f.parents != nil {
			if parent, ok := it.f.parents.Parent(cur.Region); ok && parent != "" {
				return cur.WithRegion(parent), true
			}
		}
		return cur.WithoutRegion(), true
	}

	// Step 4: script, only if confirmed implied by the language.
	if cur.Script != "" {
		if it.f.likely != nil {
			if implied, ok := it.f.likely.ImpliedScript(cur.Language); ok && implied == cur.Script {
				return cur.WithoutScript(), true
			}
		}
		// Not confirmed: this step does not apply; fall through. The
		// script is still dropped implicitly by step 5's collapse to
		// "und", preserving the documented termination bound.
	}

	// Step 5: language.
	if cur.Language != "" && cur.Language != datakey.Und {
		return cur.AsLanguageRoot(), true
	}

	// Step 6: terminate.
	return datakey.DataLocale{}, false
}

// dropExtensionStep strips the rightmost non-primary extension
// keyword, or the primary keyword itself once it is the only one left
// (spec §4.2 step 1).
func dropExtensionStep(cur datakey.DataLocale, primary string) (datakey.DataLocale, bool) {
	var nonPrimary []string
	for k := range cur.Extensions {
		if k != primary {
			nonPrimary = append(nonPrimary, k)
		}
	}
	if len(nonPrimary) > 0 {
		sort.Strings(nonPrimary)
		return cur.WithoutExtensionKeyword(nonPrimary[len(nonPrimary)-1]), true
	}
	if _, ok := cur.Extensions[primary]; ok {
		return cur.WithoutExtensionKeyword(primary), true
	}
	return cur, false
}
