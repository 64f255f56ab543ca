package datakey

import "fmt"

// MaxAttributeLen bounds an AttributeString, per spec §3
// ("bounded length").
const MaxAttributeLen = 127

// AttributeString disambiguates entries within one marker, e.g. the era
// name inside a calendar schema or a segmenter dictionary name (spec §3
// "AttributeString").
//
// It is restricted to a printable-ASCII-safe alphabet so it can appear
// unescaped in on-disk paths and the blob key table (spec §6).
type AttributeString string

// NewAttributeString validates and returns an AttributeString.
func NewAttributeString(s string) (AttributeString, error) {
	if len(s) > MaxAttributeLen {
		return "", fmt.Errorf("datakey: attribute string exceeds %d bytes: %q", MaxAttributeLen, s)
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		ok := (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '-' || c == '_' || c == '/'
		if !ok {
			return "", fmt.Errorf("datakey: attribute string contains invalid byte %q at offset %d", c, i)
		}
	}
	return AttributeString(s), nil
}

// Empty is the zero-length attribute used by markers that do not
// disambiguate (the common case).
const Empty AttributeString = ""
