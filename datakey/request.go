package datakey

// Request identifies one (marker, locale, attributes) data lookup
// (spec §3 "Data Key"). The Marker field is usually held out-of-band by
// the typed provider API (datakey.Marker is the compile-time-known `M`
// in spec §4.1); Request carries only the locale-keyed part of the key
// so it can be passed across the Buffer/Any provider boundary, which is
// keyed by marker hash rather than by type.
type Request struct {
	Locale     DataLocale
	Attributes AttributeString
}

// NewRequest builds a Request for the given locale and attributes.
func NewRequest(locale DataLocale, attrs AttributeString) Request {
	return Request{Locale: locale, Attributes: attrs}
}

// Key is the full fingerprint of a data lookup: a Marker plus a
// Request. Two Keys with equal Marker.Hash and Equal Requests must
// resolve to byte-identical payloads within one provider instance
// (spec §3 invariant).
type Key struct {
	Marker  Marker
	Request Request
}

// NewKey builds a Key.
func NewKey(marker Marker, request Request) Key {
	return Key{Marker: marker, Request: request}
}

// CacheString returns a canonical string suitable for use as a map key
// or dedup-cache key: "<markerHash>/<locale>/<attributes>".
func (k Key) CacheString() string {
	loc := k.Request.Locale.String()
	if k.Marker.Singleton {
		loc = Und
	}
	return formatCacheKey(k.Marker.Hash, loc, string(k.Request.Attributes))
}

func formatCacheKey(hash uint64, locale, attrs string) string {
	// Avoid fmt in a hot-path key builder; this runs once per lookup in
	// every provider adapter.
	buf := make([]byte, 0, 16+len(locale)+len(attrs)+2)
	buf = appendUint64Hex(buf, hash)
	buf = append(buf, '/')
	buf = append(buf, locale...)
	buf = append(buf, '/')
	buf = append(buf, attrs...)
	return string(buf)
}

func appendUint64Hex(buf []byte, v uint64) []byte {
	const hexDigits = "0123456789abcdef"
	var tmp [16]byte
	for i := 15; i >= 0; i-- {
		tmp[i] = hexDigits[v&0xF]
		v >>= 4
	}
	return append(buf, tmp[:]...)
}
