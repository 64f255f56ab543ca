package export

import "github.com/icu4x-go/corei18n/datakey"

// Sink receives the retained, deduplicated payloads for one marker at
// a time (spec §4.3 step 4 "Emit"). Implementations (FilesystemSink,
// BlobSink, BakedSink) must be internally thread-safe: the driver
// exports markers in parallel, one goroutine per marker, so PutPayload
// and Flush calls for different markers may run concurrently; each
// implementation serializes access itself "in a short-lived critical
// section per put_payload" (spec §5).
type Sink interface {
	PutPayload(marker datakey.Marker, locale datakey.DataLocale, attrs datakey.AttributeString, data []byte) error
	// Flush finalizes one marker's data. Called once per marker after
	// every retained PutPayload call for that marker has returned.
	Flush(marker datakey.Marker) error
	// Close finalizes the sink. A non-nil return aborts the whole
	// export (spec §4.3 "Failure policy").
	Close() error
}

// FallbackDirectiveSink is implemented by sinks that can embed a
// runtime-fallback marker in their output, used when
// FallbackPlacement is Internal (spec §4.3 step 4: "emit a
// fallback-adapter directive so the emitted provider performs
// fallback at load time").
type FallbackDirectiveSink interface {
	Sink
	EmitFallbackDirective(marker datakey.Marker) error
}
