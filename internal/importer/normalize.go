package importer

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripAccents decomposes characters and drops the combining marks, so
// "AÑO" and "ANO" or "OBSERVACIÓN" and "OBSERVACION" match each other.
var stripAccents = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))

// The planillas use dots, slashes, parens and dashes inconsistently in the
// same header across sheets; all of them collapse to a word separator.
var headerSymbols = strings.NewReplacer(
	".", " ",
	"/", " ",
	"(", " ",
	")", " ",
	"-", " ",
	"\n", " ",
	"\r", " ",
	"\t", " ",
)

// Normalize canonicalizes header or cell text for matching. The result is
// used only for lookups, never stored. Total: any input yields a string.
func Normalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if out, _, err := transform.String(stripAccents, s); err == nil {
		s = out
	}
	s = strings.ToUpper(s)
	s = headerSymbols.Replace(s)
	return strings.Join(strings.Fields(s), " ")
}
