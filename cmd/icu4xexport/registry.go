package main

import "github.com/icu4x-go/corei18n/datakey"

// registry is the closed, ahead-of-time set of marker schemas this
// build of icu4xexport knows how to export, mirroring how a real
// icu4x datagen binary links in exactly the markers its component
// crates registered at compile time (datakey.Marker's own doc comment:
// "a closed, ahead-of-time registry"). --markers all exports every
// entry; --markers <list>/@file selects a subset by path.
var registry = []datakey.Marker{
	datakey.NewMarker("decimal/symbols@1", false, datakey.FallbackConfig{
		Priority: datakey.PriorityRegion,
	}),
	datakey.NewMarker("datetime/symbols@1", false, datakey.FallbackConfig{
		Priority: datakey.PriorityRegion,
	}),
	datakey.NewMarker("list/and@1", false, datakey.FallbackConfig{}),
	datakey.NewMarker("list/or@1", false, datakey.FallbackConfig{}),
	datakey.NewMarker("list/unit@1", false, datakey.FallbackConfig{}),
	datakey.NewMarker("plurals/cardinal@1", false, datakey.FallbackConfig{}),
	datakey.NewMarker("plurals/ordinal@1", false, datakey.FallbackConfig{}),
	datakey.NewMarker("fallback/likelysubtags@1", true, datakey.FallbackConfig{}),
	datakey.NewMarker("fallback/parents@1", true, datakey.FallbackConfig{}),
	datakey.NewMarkerVersioned("collator/data@1", false, datakey.FallbackConfig{
		ExtensionAware:   true,
		ExtensionKeyword: "co",
	}, 1),
}

// lookupMarker resolves a marker path against registry.
func lookupMarker(path string) (datakey.Marker, bool) {
	for _, m := range registry {
		if m.Path == path {
			return m, true
		}
	}
	return datakey.Marker{}, false
}
