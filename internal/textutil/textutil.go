package textutil

import (
	"regexp"
	"strings"
)

var multiSpaceRE = regexp.MustCompile(`\s+`)

// NormalizeWhitespace collapses whitespace runs to a single space and trims the ends.
func NormalizeWhitespace(s string) string {
	return strings.TrimSpace(multiSpaceRE.ReplaceAllString(s, " "))
}

// artifactFixes is applied in order; earlier rules repair byte-level mojibake
// so later character-level rules never re-match already fixed text.
var artifactFixes = []struct {
	old string
	new string
}{
	{"â€”", "—"}, // em dash read as cp1252
	{"â€œ", `"`},      // left double quote read as cp1252
	{"â€", `"`},      // right double quote read as cp1252
	{"â€™", "'"},      // right single quote read as cp1252
	{"Õ", "—"},             // OCR artifact standing in for an em dash
	{"“", `"`},
	{"”", `"`},
	{"‘", "'"},
	{"’", "'"},
	{"–", "-"},
}

// FixTypographicArtifacts repairs known encoding and typography artifacts in free text.
func FixTypographicArtifacts(s string) string {
	for _, fix := range artifactFixes {
		s = strings.ReplaceAll(s, fix.old, fix.new)
	}
	return s
}
