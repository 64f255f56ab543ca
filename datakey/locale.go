package datakey

import (
	"sort"
	"strings"
)

// Und is the root "undetermined" language subtag that every fallback
// chain terminates at (spec §4.2 step 5, §3 "ending at und").
const Und = "und"

// DataLocale is a BCP-47 locale plus Unicode extension keywords, used
// as a data-lookup key (spec §3 "DataLocale").
//
// DataLocale is immutable by convention: all mutating-looking helpers
// (WithoutRegion, WithoutLastVariant, ...) return a modified copy.
type DataLocale struct {
	Language string
	Script   string // "" if absent
	Region   string // "" if absent
	Variants []string
	// Extensions holds Unicode locale extension keyword/value pairs,
	// e.g. {"ca": "hebrew", "co": "stroke"} for "u-ca-hebrew-co-stroke".
	Extensions map[string]string
}

// NewDataLocale builds a DataLocale, normalizing case (language/script/
// region casing per BCP-47 convention, lowercase variants) and sorting
// Variants for deterministic comparison.
func NewDataLocale(language, script, region string, variants []string, extensions map[string]string) DataLocale {
	vs := make([]string, len(variants))
	for i, v := range variants {
		vs[i] = strings.ToLower(v)
	}
	sort.Strings(vs)
	exts := make(map[string]string, len(extensions))
	for k, v := range extensions {
		exts[strings.ToLower(k)] = strings.ToLower(v)
	}
	return DataLocale{
		Language:   strings.ToLower(language),
		Script:     normalizeScript(script),
		Region:     strings.ToUpper(region),
		Variants:   vs,
		Extensions: exts,
	}
}

func normalizeScript(s string) string {
	if s == "" {
		return ""
	}
	s = strings.ToLower(s)
	return strings.ToUpper(s[:1]) + s[1:]
}

// RootLocale is the "und" locale every fallback chain ends at.
func RootLocale() DataLocale {
	return DataLocale{Language: Und}
}

// IsRoot reports whether this locale is exactly "und" with no script,
// region, variants, or extensions.
func (d DataLocale) IsRoot() bool {
	return d.Language == Und && d.Script == "" && d.Region == "" && len(d.Variants) == 0 && len(d.Extensions) == 0
}

// HasExtensions reports whether any u-extension keywords are present.
func (d DataLocale) HasExtensions() bool {
	return len(d.Extensions) > 0
}

// ExtensionKeywords returns the extension keys in sorted order, for
// deterministic "rightmost non-primary keyword" stripping (spec §4.2
// step 1). The "primary" keyword, if the marker declares one via
// FallbackConfig.ExtensionKeyword, sorts last so it is stripped last.
func (d DataLocale) ExtensionKeywords(primary string) []string {
	keys := make([]string, 0, len(d.Extensions))
	for k := range d.Extensions {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i] == primary {
			return false
		}
		if keys[j] == primary {
			return true
		}
		return keys[i] < keys[j]
	})
	return keys
}

// WithoutExtensionKeyword returns a copy with the given keyword removed.
func (d DataLocale) WithoutExtensionKeyword(keyword string) DataLocale {
	cp := d.clone()
	delete(cp.Extensions, keyword)
	return cp
}

// WithoutExtensions returns a copy with all extension keywords removed.
func (d DataLocale) WithoutExtensions() DataLocale {
	cp := d.clone()
	cp.Extensions = map[string]string{}
	return cp
}

// WithoutLastVariant returns a copy with the lexicographically-last
// variant subtag dropped (spec §4.2 step 2). Variants are kept sorted,
// so "last" is well-defined and deterministic.
func (d DataLocale) WithoutLastVariant() DataLocale {
	cp := d.clone()
	if len(cp.Variants) > 0 {
		cp.Variants = cp.Variants[:len(cp.Variants)-1]
	}
	return cp
}

// WithoutRegion returns a copy with Region cleared.
func (d DataLocale) WithoutRegion() DataLocale {
	cp := d.clone()
	cp.Region = ""
	return cp
}

// WithRegion returns a copy with Region replaced.
func (d DataLocale) WithRegion(region string) DataLocale {
	cp := d.clone()
	cp.Region = strings.ToUpper(region)
	return cp
}

// WithoutScript returns a copy with Script cleared.
func (d DataLocale) WithoutScript() DataLocale {
	cp := d.clone()
	cp.Script = ""
	return cp
}

// AsLanguageRoot returns the "und" locale, collapsing everything (spec
// §4.2 step 5: "replace with und").
func (d DataLocale) AsLanguageRoot() DataLocale {
	return RootLocale()
}

func (d DataLocale) clone() DataLocale {
	cp := d
	cp.Variants = append([]string(nil), d.Variants...)
	cp.Extensions = make(map[string]string, len(d.Extensions))
	for k, v := range d.Extensions {
		cp.Extensions[k] = v
	}
	return cp
}

// String renders the canonical BCP-47-with-u-extension form, e.g.
// "en-Latn-US-posix-u-ca-hebrew". This is the normalized form used for
// the "byte-identical resolution" invariant in spec §3.
func (d DataLocale) String() string {
	var b strings.Builder
	lang := d.Language
	if lang == "" {
		lang = Und
	}
	b.WriteString(lang)
	if d.Script != "" {
		b.WriteByte('-')
		b.WriteString(d.Script)
	}
	if d.Region != "" {
		b.WriteByte('-')
		b.WriteString(d.Region)
	}
	for _, v := range d.Variants {
		b.WriteByte('-')
		b.WriteString(v)
	}
	if len(d.Extensions) > 0 {
		keys := make([]string, 0, len(d.Extensions))
		for k := range d.Extensions {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteString("-u")
		for _, k := range keys {
			b.WriteByte('-')
			b.WriteString(k)
			if v := d.Extensions[k]; v != "" {
				b.WriteByte('-')
				b.WriteString(v)
			}
		}
	}
	return b.String()
}

// Equal reports whether two normalized DataLocale values are
// byte-identical for lookup purposes.
func (d DataLocale) Equal(o DataLocale) bool {
	return d.String() == o.String()
}

// ParseDataLocale parses the canonical form String produces:
// "lang[-Script][-REGION][-variant...][-u-key[-value]-key[-value]...]".
// It is the exact inverse of String for any DataLocale built through
// NewDataLocale, used by backends that persist locales as their string
// form (provider/blob's marker key table) and need them back as
// structured values for locale enumeration.
func ParseDataLocale(s string) DataLocale {
	parts := strings.Split(s, "-")
	if len(parts) == 0 || parts[0] == "" {
		return RootLocale()
	}

	lang := parts[0]
	rest := parts[1:]

	var script, region string
	if len(rest) > 0 && len(rest[0]) == 4 && isAlpha(rest[0]) {
		script = rest[0]
		rest = rest[1:]
	}
	if len(rest) > 0 && (len(rest[0]) == 2 || (len(rest[0]) == 3 && isDigit(rest[0]))) {
		region = rest[0]
		rest = rest[1:]
	}

	var variants []string
	extensions := map[string]string{}
	for i := 0; i < len(rest); i++ {
		if rest[i] == "u" {
			i++
			for i < len(rest) {
				key := rest[i]
				i++
				val := ""
				if i < len(rest) && len(rest[i]) > 0 && !isExtensionKey(rest[i]) {
					val = rest[i]
					i++
				}
				extensions[key] = val
			}
			break
		}
		variants = append(variants, rest[i])
	}

	return NewDataLocale(lang, script, region, variants, extensions)
}

// isExtensionKey reports whether s looks like a u-extension keyword
// (two alphanumeric chars) rather than that keyword's value.
func isExtensionKey(s string) bool {
	return len(s) == 2
}

func isAlpha(s string) bool {
	for _, c := range s {
		if !((c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')) {
			return false
		}
	}
	return true
}

func isDigit(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
