package export

import (
	"fmt"
	"strings"

	"github.com/icu4x-go/corei18n/datakey"
)

// Family is a locale-family selector for export, spec §3 "Locale
// Family (export-time only)": a locale plus which direction of the
// inheritance tree to include, or the special "Full" value.
type Family struct {
	Locale             datakey.DataLocale
	IncludeAncestors   bool
	IncludeDescendants bool
	ExactOnly          bool
	Full               bool
}

// FullFamily is the "full" family: every locale the provider supports,
// bypassing family filtering entirely (spec §4.3 step 1).
func FullFamily() Family {
	return Family{Full: true}
}

// ParseFamily parses one locale-family token from the CLI grammar in
// spec §6:
//
//	langid   -> locale + its descendants (and the locale itself)
//	^langid  -> ancestors of locale only (excluding the locale itself)
//	%langid  -> locale + its descendants (same selection as a bare langid)
//	@langid  -> exactly that locale
//	full     -> every supported locale
func ParseFamily(token string) (Family, error) {
	if strings.EqualFold(token, "full") {
		return FullFamily(), nil
	}
	if token == "" {
		return Family{}, fmt.Errorf("export: empty locale family token")
	}
	switch token[0] {
	case '^':
		return Family{Locale: parseLangID(token[1:]), IncludeAncestors: true}, nil
	case '%':
		return Family{Locale: parseLangID(token[1:]), IncludeDescendants: true}, nil
	case '@':
		return Family{Locale: parseLangID(token[1:]), ExactOnly: true}, nil
	default:
		return Family{Locale: parseLangID(token), IncludeDescendants: true}, nil
	}
}

// parseLangID parses a minimal BCP-47-ish "lang[-Script][-REGION]"
// subset sufficient for the CLI family grammar; full tag parsing
// (variants, extensions) is consumed only via datakey.NewDataLocale by
// callers who already hold a structured DataLocale.
func parseLangID(s string) datakey.DataLocale {
	parts := strings.Split(s, "-")
	if len(parts) == 0 || parts[0] == "" {
		return datakey.RootLocale()
	}
	lang := parts[0]
	var script, region string
	rest := parts[1:]
	if len(rest) > 0 && len(rest[0]) == 4 {
		script = rest[0]
		rest = rest[1:]
	}
	if len(rest) > 0 && (len(rest[0]) == 2 || len(rest[0]) == 3) {
		region = rest[0]
		rest = rest[1:]
	}
	return datakey.NewDataLocale(lang, script, region, rest, nil)
}
