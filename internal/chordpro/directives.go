package chordpro

import (
	"sort"
	"strings"
)

// Canonical directive keys.
const (
	KeyTitle         = "title"
	KeySubtitle      = "subtitle"
	KeyArtist        = "artist"
	KeyKey           = "key"
	KeyCapo          = "capo"
	KeyTempo         = "tempo"
	KeyTranspose     = "transpose"
	KeyNotation      = "notation"
	KeyAltNotation   = "alt_notation"
	KeyComment       = "comment"
	KeyChorus        = "chorus"
	KeyStartOfChorus = "start_of_chorus"
	KeyEndOfChorus   = "end_of_chorus"
	KeyStartOfVerse  = "start_of_verse"
	KeyEndOfVerse    = "end_of_verse"
	KeyStartOfBridge = "start_of_bridge"
	KeyEndOfBridge   = "end_of_bridge"
	KeyStartOfTab    = "start_of_tab"
	KeyEndOfTab      = "end_of_tab"
)

var aliases = map[string]string{
	"t":   KeyTitle,
	"st":  KeySubtitle,
	"c":   KeyComment,
	"soc": KeyStartOfChorus,
	"eoc": KeyEndOfChorus,
	"sov": KeyStartOfVerse,
	"eov": KeyEndOfVerse,
	"sob": KeyStartOfBridge,
	"eob": KeyEndOfBridge,
	"sot": KeyStartOfTab,
	"eot": KeyEndOfTab,
}

var known = map[string]bool{
	KeyTitle: true, KeySubtitle: true, KeyArtist: true, KeyKey: true,
	KeyCapo: true, KeyTempo: true, KeyTranspose: true, KeyNotation: true,
	KeyAltNotation: true,
	KeyComment: true, KeyChorus: true,
	KeyStartOfChorus: true, KeyEndOfChorus: true,
	KeyStartOfVerse: true, KeyEndOfVerse: true,
	KeyStartOfBridge: true, KeyEndOfBridge: true,
	KeyStartOfTab: true, KeyEndOfTab: true,
}

// sectionStarts and sectionEnds map section directives to section names.
var (
	sectionStarts = map[string]string{
		KeyStartOfChorus: "chorus",
		KeyStartOfVerse:  "verse",
		KeyStartOfBridge: "bridge",
		KeyStartOfTab:    "tab",
	}
	sectionEnds = map[string]string{
		KeyEndOfChorus: "chorus",
		KeyEndOfVerse:  "verse",
		KeyEndOfBridge: "bridge",
		KeyEndOfTab:    "tab",
	}
)

// Canonical returns the canonical key for a directive name as written and
// whether it belongs to the recognized set.
func Canonical(name string) (string, bool) {
	key := strings.ToLower(strings.TrimSpace(name))
	if long, ok := aliases[key]; ok {
		key = long
	}
	return key, known[key]
}

// Known returns every recognized canonical directive key.
func Known() []string {
	out := make([]string, 0, len(known))
	for k := range known {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
