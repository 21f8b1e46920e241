// Package region maps logical routing clusters to upstream hosts and infers
// the cluster a match was played on from its identifier.
package region

import (
	"maps"
	"strings"
)

type Region string

const (
	Americas Region = "americas"
	Europe   Region = "europe"
	Asia     Region = "asia"
	SEA      Region = "sea"
)

// Default is used whenever a region is missing or cannot be inferred.
const Default = Americas

var baseURLs = map[Region]string{
	Americas: "https://americas.api.riotgames.com",
	Europe:   "https://europe.api.riotgames.com",
	Asia:     "https://asia.api.riotgames.com",
	SEA:      "https://sea.api.riotgames.com",
}

var ordered = []Region{Americas, Europe, Asia, SEA}

// platform shard -> routing cluster
var prefixes = map[string]Region{
	"NA1": Americas,
	"BR1": Americas,
	"LA1": Americas, // LAN
	"LA2": Americas, // LAS

	"EUW1": Europe,
	"EUN1": Europe,
	"TR1":  Europe,
	"RU1":  Europe,

	"KR":  Asia,
	"JP1": Asia,

	"OC1": SEA,
	"PH2": SEA,
	"SG2": SEA,
	"TH2": SEA,
	"TW2": SEA,
	"VN2": SEA,
}

// Ordered returns the supported regions in probing order.
func Ordered() []Region {
	out := make([]Region, len(ordered))
	copy(out, ordered)
	return out
}

func Prefixes() map[string]Region {
	return maps.Clone(prefixes)
}

// Parse accepts any string; unknown values resolve to Default.
func Parse(s string) Region {
	r := Region(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := baseURLs[r]; ok {
		return r
	}
	return Default
}

func (r Region) Valid() bool {
	_, ok := baseURLs[r]
	return ok
}

func (r Region) String() string {
	return string(r)
}

func BaseURL(r Region) string {
	if base, ok := baseURLs[r]; ok {
		return base
	}
	return baseURLs[Default]
}

// FromMatchID reads the platform shard before the first '_' of a match id.
func FromMatchID(matchID string) Region {
	prefix, _, _ := strings.Cut(matchID, "_")
	if r, ok := prefixes[prefix]; ok {
		return r
	}
	return Default
}
