package export

import (
	"bytes"
	"sync"
	"testing"

	"github.com/icu4x-go/corei18n/datakey"
	"github.com/icu4x-go/corei18n/provider"
)

// fakeSource is a minimal in-memory Source for driver tests: exact
// locale match only, no internal fallback, so the driver's own
// fallback-stepping in loadWithFallback is what's under test.
type fakeSource struct {
	mu        sync.Mutex
	data      map[uint64]map[string][]byte // markerHash -> locale string -> payload
	supported map[uint64][]string          // overrides SupportedLocales when set, independent of data
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		data:      make(map[uint64]map[string][]byte),
		supported: make(map[uint64][]string),
	}
}

func (f *fakeSource) put(markerHash uint64, locale datakey.DataLocale, payload []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m := f.data[markerHash]
	if m == nil {
		m = make(map[string][]byte)
		f.data[markerHash] = m
	}
	m[locale.String()] = payload
}

func (f *fakeSource) LoadBuffer(markerHash uint64, marker datakey.Marker, req datakey.Request) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.data[markerHash]
	if !ok {
		return nil, &provider.Error{Kind: provider.MissingMarker, MarkerPath: marker.Path, MarkerHash: markerHash}
	}
	payload, ok := m[req.Locale.String()]
	if !ok {
		return nil, &provider.Error{
			Kind:       provider.MissingLocale,
			MarkerPath: marker.Path,
			MarkerHash: markerHash,
			Locale:     req.Locale.String(),
		}
	}
	return payload, nil
}

func (f *fakeSource) SupportedLocales(marker datakey.Marker) []datakey.DataLocale {
	f.mu.Lock()
	defer f.mu.Unlock()
	if override, ok := f.supported[marker.Hash]; ok {
		out := make([]datakey.DataLocale, 0, len(override))
		for _, k := range override {
			out = append(out, parseLangID(k))
		}
		return out
	}
	m := f.data[marker.Hash]
	out := make([]datakey.DataLocale, 0, len(m))
	for k := range m {
		out = append(out, parseLangID(k))
	}
	return out
}

// collectingSink records every PutPayload call for assertions.
type collectingSink struct {
	mu      sync.Mutex
	puts    map[string][]byte // locale|attrs -> payload
	flushed []datakey.Marker
	closed  bool
}

func newCollectingSink() *collectingSink {
	return &collectingSink{puts: make(map[string][]byte)}
}

func (s *collectingSink) PutPayload(marker datakey.Marker, locale datakey.DataLocale, attrs datakey.AttributeString, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.puts[locale.String()+"|"+string(attrs)] = data
	return nil
}

func (s *collectingSink) Flush(marker datakey.Marker) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flushed = append(s.flushed, marker)
	return nil
}

func (s *collectingSink) Close() error {
	s.closed = true
	return nil
}

func testMarker() datakey.Marker {
	return datakey.NewMarker("test/greeting@1", false, datakey.FallbackConfig{Priority: datakey.PriorityLanguage})
}

// TestExportFallbackDedup exercises spec §8's "fallback export"
// scenario: {und, en, en-GB, en-US} with en-GB identical to en and
// en-US diverging, under the Maximal strategy.
func TestExportFallbackDedup(t *testing.T) {
	marker := testMarker()
	src := newFakeSource()
	src.put(marker.Hash, datakey.RootLocale(), []byte("hello"))
	src.put(marker.Hash, datakey.NewDataLocale("en", "", "", nil, nil), []byte("hello"))
	src.put(marker.Hash, datakey.NewDataLocale("en", "", "GB", nil, nil), []byte("hello"))
	src.put(marker.Hash, datakey.NewDataLocale("en", "", "US", nil, nil), []byte("howdy"))

	sink := newCollectingSink()
	d := NewDriver(src, sink)
	d.Dedup = DedupMaximal

	report, err := d.Export([]datakey.Marker{marker}, []Family{FullFamily()})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if len(report.Markers) != 1 {
		t.Fatalf("expected 1 marker report, got %d", len(report.Markers))
	}
	mr := report.Markers[0]
	if mr.Err != nil {
		t.Fatalf("marker export failed: %v", mr.Err)
	}

	// en and en-GB are byte-identical to their ancestor (und for en, en
	// for en-GB) and should be dropped; en-US diverges and is kept;
	// und is always kept (it has no ancestor to compare against).
	if _, ok := sink.puts["und|"]; !ok {
		t.Error("expected und to be retained")
	}
	if _, ok := sink.puts["en|"]; ok {
		t.Error("expected en to be dropped (identical to und)")
	}
	if _, ok := sink.puts["en-GB|"]; ok {
		t.Error("expected en-GB to be dropped (identical to en)")
	}
	if got, ok := sink.puts["en-US|"]; !ok || string(got) != "howdy" {
		t.Errorf("expected en-US to be retained with %q, got %q (ok=%v)", "howdy", got, ok)
	}
	if mr.DroppedEntries != 2 {
		t.Errorf("DroppedEntries = %d, want 2", mr.DroppedEntries)
	}
	if !sink.closed {
		t.Error("expected sink to be closed")
	}
}

// TestExportRetainBaseLanguages checks that the retain-base strategy
// keeps en's entry even when it is byte-identical to und.
func TestExportRetainBaseLanguages(t *testing.T) {
	marker := testMarker()
	src := newFakeSource()
	src.put(marker.Hash, datakey.RootLocale(), []byte("hello"))
	src.put(marker.Hash, datakey.NewDataLocale("en", "", "", nil, nil), []byte("hello"))

	sink := newCollectingSink()
	d := NewDriver(src, sink)
	d.Dedup = DedupRetainBaseLanguages

	_, err := d.Export([]datakey.Marker{marker}, []Family{FullFamily()})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if _, ok := sink.puts["en|"]; !ok {
		t.Error("expected en to be retained under retain-base strategy")
	}
}

// TestExportDedupNoneRetainsEverything checks the none strategy is a
// pure passthrough.
func TestExportDedupNoneRetainsEverything(t *testing.T) {
	marker := testMarker()
	src := newFakeSource()
	src.put(marker.Hash, datakey.RootLocale(), []byte("hello"))
	src.put(marker.Hash, datakey.NewDataLocale("en", "", "", nil, nil), []byte("hello"))

	sink := newCollectingSink()
	d := NewDriver(src, sink)
	d.Dedup = DedupNone

	report, err := d.Export([]datakey.Marker{marker}, []Family{FullFamily()})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if report.Markers[0].DroppedEntries != 0 {
		t.Errorf("DroppedEntries = %d, want 0", report.Markers[0].DroppedEntries)
	}
	if len(sink.puts) != 2 {
		t.Errorf("expected 2 retained entries, got %d", len(sink.puts))
	}
}

// TestExportFamilyFiltersLocales checks that a non-full family narrows
// the selected locale set to the family plus und.
func TestExportFamilyFiltersLocales(t *testing.T) {
	marker := testMarker()
	src := newFakeSource()
	src.put(marker.Hash, datakey.RootLocale(), []byte("root"))
	src.put(marker.Hash, datakey.NewDataLocale("en", "", "US", nil, nil), []byte("en-us"))
	src.put(marker.Hash, datakey.NewDataLocale("fr", "", "", nil, nil), []byte("fr"))

	sink := newCollectingSink()
	d := NewDriver(src, sink)
	d.Dedup = DedupNone

	fam, err := ParseFamily("en")
	if err != nil {
		t.Fatalf("ParseFamily: %v", err)
	}
	_, err = d.Export([]datakey.Marker{marker}, []Family{fam})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if _, ok := sink.puts["fr|"]; ok {
		t.Error("fr should have been filtered out by the en family")
	}
	if _, ok := sink.puts["en-US|"]; !ok {
		t.Error("en-US should be selected as a descendant of en")
	}
}

// TestExportMarkerFailureIsolated checks that one marker's load failure
// does not prevent another marker from exporting successfully.
func TestExportMarkerFailureIsolated(t *testing.T) {
	okMarker := datakey.NewMarker("ok@1", false, datakey.FallbackConfig{})
	badMarker := datakey.NewMarker("bad@1", false, datakey.FallbackConfig{})

	src := newFakeSource()
	src.put(okMarker.Hash, datakey.RootLocale(), []byte("ok"))
	// badMarker reports a supported locale via the override, but has no
	// loadable data at all, so every load in its fallback chain fails
	// with MissingMarker (not fallbackable).
	src.supported[badMarker.Hash] = []string{"fr"}

	sink := newCollectingSink()
	d := NewDriver(src, sink)

	report, err := d.Export([]datakey.Marker{okMarker, badMarker}, []Family{FullFamily()})
	if err == nil {
		t.Fatal("expected an aggregated error from the failing marker")
	}
	var okReport, badReport *MarkerReport
	for i := range report.Markers {
		switch report.Markers[i].Marker.Hash {
		case okMarker.Hash:
			okReport = &report.Markers[i]
		case badMarker.Hash:
			badReport = &report.Markers[i]
		}
	}
	if okReport == nil || okReport.Err != nil {
		t.Errorf("expected ok marker to succeed, report=%+v", okReport)
	}
	if badReport == nil || badReport.Err == nil {
		t.Error("expected bad marker to fail")
	}
}

func TestBlobSinkRoundTrip(t *testing.T) {
	marker := testMarker()
	var buf bytes.Buffer
	sink := NewBlobSink(1, &buf)

	loc := datakey.NewDataLocale("en", "", "", nil, nil)
	if err := sink.PutPayload(marker, loc, datakey.Empty, []byte("payload")); err != nil {
		t.Fatalf("PutPayload: %v", err)
	}
	if err := sink.Flush(marker); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if err := sink.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if buf.Len() == 0 {
		t.Fatal("expected non-empty blob output")
	}
}
