package fallback

import (
	"testing"

	"github.com/icu4x-go/corei18n/datakey"
)

func TestChainTerminatesAtUnd(t *testing.T) {
	f := NewDefaultFallbacker()
	loc := datakey.NewDataLocale("en", "Latn", "US", []string{"posix"}, map[string]string{"ca": "hebrew"})
	cfg := datakey.FallbackConfig{Priority: datakey.PriorityLanguage, ExtensionAware: true, ExtensionKeyword: "ca"}

	chain := f.Steps(loc, cfg)
	if len(chain) == 0 {
		t.Fatal("expected non-empty chain")
	}
	last := chain[len(chain)-1]
	if !last.IsRoot() {
		t.Fatalf("chain must terminate at und, got %q", last)
	}
	if len(chain) > 8 {
		t.Fatalf("chain length %d exceeds documented ~8 step bound", len(chain))
	}
	if chain[0].String() != loc.String() {
		t.Fatalf("chain must start at the input locale, got %q", chain[0])
	}
}

func TestChainStrictlyGeneralizes(t *testing.T) {
	f := NewDefaultFallbacker()
	loc := datakey.NewDataLocale("en", "", "GB", []string{"scotland"}, nil)
	cfg := datakey.FallbackConfig{Priority: datakey.PriorityLanguage}

	chain := f.Steps(loc, cfg)
	seen := map[string]bool{}
	for _, l := range chain {
		s := l.String()
		if seen[s] {
			t.Fatalf("locale %q repeated in chain: %v", s, chain)
		}
		seen[s] = true
	}
}

func TestRegionPriorityDropsViaParent(t *testing.T) {
	f := NewDefaultFallbacker()
	loc := datakey.NewDataLocale("es", "", "MX", nil, nil)
	cfg := datakey.FallbackConfig{Priority: datakey.PriorityRegion}

	chain := f.Steps(loc, cfg)
	found419 := false
	for _, l := range chain {
		if l.Region == "419" {
			found419 = true
		}
	}
	if !found419 {
		t.Fatalf("expected parent region 419 in chain, got %v", chain)
	}
}

func TestScriptDroppedOnlyWhenImplied(t *testing.T) {
	f := NewDefaultFallbacker()
	cfg := datakey.FallbackConfig{Priority: datakey.PriorityLanguage}

	implied := datakey.NewDataLocale("en", "Latn", "", nil, nil)
	chainImplied := f.Steps(implied, cfg)
	for _, l := range chainImplied {
		if l.Script == "Latn" && l.Language == "" {
			t.Fatal("implied script should have been dropped before language")
		}
	}

	notImplied := datakey.NewDataLocale("en", "Cyrl", "", nil, nil)
	chainNotImplied := f.Steps(notImplied, cfg)
	sawScriptWithLanguage := false
	for _, l := range chainNotImplied {
		if l.Script == "Cyrl" && l.Language == "en" {
			sawScriptWithLanguage = true
		}
	}
	if !sawScriptWithLanguage {
		t.Fatal("unimplied script should survive until the language step collapses it")
	}
}

func TestExtensionAwareStripsRightmostNonPrimaryFirst(t *testing.T) {
	f := NewDefaultFallbacker()
	loc := datakey.NewDataLocale("en", "", "", nil, map[string]string{"ca": "hebrew", "co": "stroke"})
	cfg := datakey.FallbackConfig{Priority: datakey.PriorityLanguage, ExtensionAware: true, ExtensionKeyword: "ca"}

	it := f.Chain(loc, cfg)
	first, _ := it.Next()
	if !first.Equal(loc) {
		t.Fatalf("first step should be input unchanged, got %q", first)
	}
	second, ok := it.Next()
	if !ok {
		t.Fatal("expected a second step")
	}
	if _, hasCo := second.Extensions["co"]; hasCo {
		t.Fatal("expected non-primary keyword 'co' to be dropped first")
	}
	if _, hasCa := second.Extensions["ca"]; !hasCa {
		t.Fatal("primary keyword 'ca' should survive the first extension step")
	}
}

func TestNonExtensionAwareMarkerStripsAllKeywordsAtOnce(t *testing.T) {
	f := NewDefaultFallbacker()
	loc := datakey.NewDataLocale("en", "", "", nil, map[string]string{"ca": "hebrew", "co": "stroke"})
	cfg := datakey.FallbackConfig{Priority: datakey.PriorityLanguage, ExtensionAware: false}

	it := f.Chain(loc, cfg)
	it.Next() // initial
	second, ok := it.Next()
	if !ok {
		t.Fatal("expected a second step")
	}
	if second.HasExtensions() {
		t.Fatalf("expected all extensions stripped in one step, got %q", second)
	}
}
