// Package export implements the C4 Export/Deduplication Driver: walks
// supported locales, loads payloads, deduplicates against parent, and
// writes to one or more sinks (spec.md §4.3).
package export

import (
	"fmt"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"

	"github.com/icu4x-go/corei18n/datakey"
	"github.com/icu4x-go/corei18n/fallback"
	"github.com/icu4x-go/corei18n/provider"
)

// FallbackPlacement chooses where runtime fallback is performed for
// the exported data (spec §4.3 inputs).
type FallbackPlacement uint8

const (
	// PlacementExternal means the exported provider carries no
	// fallback logic; callers wrap it in provider.FallbackAdapter
	// themselves.
	PlacementExternal FallbackPlacement = iota
	// PlacementInternal means the exported provider should perform
	// fallback at load time; sinks implementing FallbackDirectiveSink
	// are told to embed that behavior.
	PlacementInternal
)

// LocaleLister is implemented by providers that can enumerate their
// supported locales for a marker (spec §4.3 step 1).
type LocaleLister interface {
	SupportedLocales(marker datakey.Marker) []datakey.DataLocale
}

// Source is the provider view the export driver reads from: raw,
// marker-specific serialized payloads (so dedup can compare them
// byte-for-byte without knowing the marker's schema) plus locale
// enumeration.
type Source interface {
	provider.BufferProvider
	LocaleLister
}

// Report summarizes one Export call's outcome per marker (supplements
// spec.md per original_source/provider/datagen/src/driver.rs, which
// tracks dedup savings; see SPEC_FULL.md).
type Report struct {
	Markers []MarkerReport
}

// MarkerReport is one marker's export outcome.
type MarkerReport struct {
	Marker          datakey.Marker
	ExportedLocales int
	DroppedEntries  int
	BytesSaved      int64
	Err             error
}

// Driver runs the export algorithm in spec §4.3.
type Driver struct {
	Source     Source
	Fallbacker *fallback.Fallbacker
	Dedup      DedupStrategy
	Placement  FallbackPlacement
	Sinks      []Sink
	Logger     hclog.Logger
}

// NewDriver builds a Driver with a default logger and fallbacker.
func NewDriver(src Source, sinks ...Sink) *Driver {
	return &Driver{
		Source:     src,
		Fallbacker: fallback.NewDefaultFallbacker(),
		Dedup:      DedupMaximal,
		Placement:  PlacementExternal,
		Sinks:      sinks,
		Logger:     hclog.NewNullLogger(),
	}
}

// Export runs the full algorithm for every marker, in parallel, per
// spec §5 ("a data-parallel fold (one task per marker)"). One marker's
// failure does not abort others (spec §4.3 "Failure policy"); all
// per-marker errors are joined into the returned error via
// go-multierror, and a sink Close() failure aborts the whole export.
func (d *Driver) Export(markers []datakey.Marker, families []Family) (*Report, error) {
	reports := make([]MarkerReport, len(markers))

	var g errgroup.Group
	for i, marker := range markers {
		i, marker := i, marker
		g.Go(func() error {
			reports[i] = d.exportMarker(marker, families)
			return nil
		})
	}
	_ = g.Wait() // exportMarker never returns an error to the group; failures are recorded per-marker

	var merr *multierror.Error
	for _, r := range reports {
		if r.Err != nil {
			merr = multierror.Append(merr, fmt.Errorf("marker %s: %w", r.Marker.Path, r.Err))
		}
	}

	for _, s := range d.Sinks {
		if err := s.Close(); err != nil {
			return &Report{Markers: reports}, fmt.Errorf("export: sink close: %w", err)
		}
	}

	if merr != nil {
		return &Report{Markers: reports}, merr.ErrorOrNil()
	}
	return &Report{Markers: reports}, nil
}

func (d *Driver) exportMarker(marker datakey.Marker, families []Family) MarkerReport {
	report := MarkerReport{Marker: marker}

	supported := d.Source.SupportedLocales(marker)
	selected := d.selectLocales(marker, supported, families)

	entries, loadErrs := d.loadEntries(marker, selected)
	if loadErrs != nil {
		report.Err = loadErrs
		return report
	}

	retained, dropped, saved := dedupe(entries, d.Dedup)
	report.DroppedEntries = dropped
	report.BytesSaved = saved

	for _, e := range retained {
		loc, attrs := splitEntryKey(e.key)
		for _, sink := range d.Sinks {
			if err := sink.PutPayload(marker, loc, attrs, e.payload); err != nil {
				report.Err = fmt.Errorf("put payload for %s: %w", e.key, err)
				return report
			}
		}
	}
	report.ExportedLocales = len(retained)

	for _, sink := range d.Sinks {
		if err := sink.Flush(marker); err != nil {
			report.Err = fmt.Errorf("flush: %w", err)
			return report
		}
		if d.Placement == PlacementInternal {
			if fd, ok := sink.(FallbackDirectiveSink); ok {
				if err := fd.EmitFallbackDirective(marker); err != nil {
					report.Err = fmt.Errorf("emit fallback directive: %w", err)
					return report
				}
			}
		}
	}

	d.Logger.Debug("exported marker", "marker", marker.Path, "locales", report.ExportedLocales, "dropped", dropped, "bytes_saved", saved)
	return report
}

// selectLocales implements spec §4.3 step 1. The "full" family
// bypasses filtering entirely; otherwise locales are intersected with
// every requested family, expanded via the fallback engine.
func (d *Driver) selectLocales(marker datakey.Marker, supported []datakey.DataLocale, families []Family) []datakey.DataLocale {
	for _, f := range families {
		if f.Full {
			return supported
		}
	}

	selected := map[string]datakey.DataLocale{datakey.Und: datakey.RootLocale()}
	for _, loc := range supported {
		chain := d.Fallbacker.Steps(loc, marker.Fallback)
		for _, f := range families {
			if f.ExactOnly {
				if loc.Equal(f.Locale) {
					selected[loc.String()] = loc
				}
				continue
			}
			if f.IncludeDescendants {
				for _, anc := range chain {
					if anc.Equal(f.Locale) {
						selected[loc.String()] = loc
						break
					}
				}
			}
			if f.IncludeAncestors {
				famChain := d.Fallbacker.Steps(f.Locale, marker.Fallback)
				for _, anc := range famChain {
					if anc.Equal(loc) && !loc.Equal(f.Locale) {
						selected[loc.String()] = loc
						break
					}
				}
			}
		}
	}

	out := make([]datakey.DataLocale, 0, len(selected))
	for _, l := range selected {
		out = append(out, l)
	}
	return out
}

// loadEntries loads every selected locale's payload in parallel
// (spec §5: "within a marker, locale loads may also be parallelized"),
// silently attributing an unresolved locale to its first successful
// ancestor via the fallback engine (spec §4.3 step 2).
func (d *Driver) loadEntries(marker datakey.Marker, locales []datakey.DataLocale) ([]loadedEntry, error) {
	entries := make([]loadedEntry, len(locales))
	var g errgroup.Group
	for i, loc := range locales {
		i, loc := i, loc
		g.Go(func() error {
			payload, err := d.loadWithFallback(marker, loc)
			if err != nil {
				return fmt.Errorf("locale %s: %w", loc, err)
			}
			chain := d.Fallbacker.Steps(loc, marker.Fallback)
			ancestry := make([]string, 0, len(chain)-1)
			for _, anc := range chain[1:] { // exclude loc itself
				ancestry = append(ancestry, anc.String()+"|")
			}
			entries[i] = loadedEntry{
				key:     loc.String() + "|",
				locale:  ancestorLocale{selfKey: loc.String(), ancestry: ancestry, isRoot: loc.IsRoot()},
				payload: payload,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return entries, nil
}

// loadWithFallback loads marker's payload at loc, stepping the
// fallback chain on a MissingLocale error (spec §4.3 step 2).
func (d *Driver) loadWithFallback(marker datakey.Marker, loc datakey.DataLocale) ([]byte, error) {
	it := d.Fallbacker.Chain(loc, marker.Fallback)
	var lastErr error
	for {
		step, ok := it.Next()
		if !ok {
			break
		}
		data, err := d.Source.LoadBuffer(marker.Hash, marker, datakey.NewRequest(step, datakey.Empty))
		if err == nil {
			return data, nil
		}
		pe, ok := err.(*provider.Error)
		if !ok || !pe.Fallbackable() {
			return nil, err
		}
		lastErr = err
	}
	if lastErr != nil {
		return nil, lastErr
	}
	return nil, fmt.Errorf("no data for locale %s", loc)
}

func splitEntryKey(key string) (datakey.DataLocale, datakey.AttributeString) {
	for i := 0; i < len(key); i++ {
		if key[i] == '|' {
			attrs, _ := datakey.NewAttributeString(key[i+1:])
			return parseLangID(key[:i]), attrs
		}
	}
	return parseLangID(key), datakey.Empty
}
