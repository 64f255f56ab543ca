package export

import "bytes"

// DedupStrategy selects how export deduplicates a payload against its
// fallback ancestors (spec §4.3 step 3).
type DedupStrategy uint8

const (
	// DedupMaximal drops any entry whose payload byte-for-byte equals
	// some ancestor's payload, including "und" itself.
	DedupMaximal DedupStrategy = iota
	// DedupRetainBaseLanguages behaves like Maximal but never crosses
	// into "und": a language-root locale's entry is always retained.
	DedupRetainBaseLanguages
	// DedupNone retains every entry unconditionally.
	DedupNone
)

// String returns a human-readable strategy name, matching the CLI
// token spelling in spec §6 ("maximal|retain-base|none").
func (s DedupStrategy) String() string {
	switch s {
	case DedupMaximal:
		return "maximal"
	case DedupRetainBaseLanguages:
		return "retain-base"
	case DedupNone:
		return "none"
	default:
		return "unknown"
	}
}

// ParseDedupStrategy parses the CLI token for --dedup.
func ParseDedupStrategy(s string) (DedupStrategy, bool) {
	switch s {
	case "maximal":
		return DedupMaximal, true
	case "retain-base":
		return DedupRetainBaseLanguages, true
	case "none":
		return DedupNone, true
	default:
		return 0, false
	}
}

// loadedEntry is one locale's loaded, not-yet-deduplicated payload.
type loadedEntry struct {
	key     string // locale|attrs
	locale  ancestorLocale
	payload []byte
}

// ancestorLocale carries just enough to walk the fallback chain
// without re-importing datakey in this file's signature noise.
type ancestorLocale struct {
	selfKey  string
	ancestry []string // ordered ancestor keys, nearest first, ending at "und|<attrs>"
	isRoot   bool
}

// dedupe implements spec §4.3 step 3 over an already-loaded set of
// entries for one marker. It returns the retained subset plus stats.
func dedupe(entries []loadedEntry, strategy DedupStrategy) (retained []loadedEntry, dropped int, bytesSaved int64) {
	byKey := make(map[string][]byte, len(entries))
	for _, e := range entries {
		byKey[e.key] = e.payload
	}

	for _, e := range entries {
		if strategy == DedupNone {
			retained = append(retained, e)
			continue
		}
		drop := false
		for _, ancKey := range e.locale.ancestry {
			ancPayload, ok := byKey[ancKey]
			if !ok {
				continue
			}
			if strategy == DedupRetainBaseLanguages && ancKey == e.locale.ancestry[len(e.locale.ancestry)-1] {
				// The last ancestry entry is always "und"; retain-base
				// never compares against it (spec: "stop before
				// crossing into und").
				break
			}
			if bytes.Equal(ancPayload, e.payload) {
				drop = true
				break
			}
		}
		if drop {
			dropped++
			bytesSaved += int64(len(e.payload))
			continue
		}
		retained = append(retained, e)
	}
	return retained, dropped, bytesSaved
}
