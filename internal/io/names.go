package ioutils

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MaxModusNameLength is the longest file name, extension excluded, the
// instrument's file browser shows in full.
const MaxModusNameLength = 30

// modusFold strips accents, then drops everything the instrument cannot
// display or that only pads the name.
var modusFold = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	runes.Remove(runes.Predicate(func(r rune) bool {
		return r > unicode.MaxASCII || unicode.IsSpace(r) || r == ','
	})),
)

// ModusFileName shortens a file name (without extension) to a form the
// instrument lists correctly: ASCII only, accents folded, no whitespace or
// commas, invalid characters replaced as in SanitizeFileName, and at most
// MaxModusNameLength characters.
//
// Example:
//
//	ModusFileName("Goldberg Variations: Aria, 1955") // Returns "GoldbergVariations_Aria1955"
func ModusFileName(name string) string {
	folded, _, err := transform.String(modusFold, name)
	if err != nil {
		folded = name
	}
	folded = SanitizeFileName(folded)

	if len(folded) > MaxModusNameLength {
		folded = folded[:MaxModusNameLength]
	}
	folded = strings.TrimRight(folded, ".")
	if folded == "" {
		return "midi"
	}
	return folded
}
