// Package normalize provides text, code, and measurement canonicalization
// for the catalog search pipeline. Every value written to or looked up in
// a search index passes through these functions, so they must be pure and
// idempotent: applying any of them twice yields the same result as once.
package normalize

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// accentStripper decomposes characters and drops combining marks,
// so "pérez" becomes "perez" and "caño" becomes "cano".
var accentStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

var (
	punctRegex      = regexp.MustCompile("[.,/#!$%^&*;:{}=\\-_`~()]")
	whitespaceRegex = regexp.MustCompile(`\s+`)
	codeSepRegex    = regexp.MustCompile(`[\s\-_./]`)
	categorySep     = regexp.MustCompile(`[.\-_/\\]`)
)

// Text canonicalizes free text: lowercase, accents stripped, punctuation
// replaced by spaces, whitespace collapsed and trimmed.
func Text(s string) string {
	s = strings.ToLower(s)
	if stripped, _, err := transform.String(accentStripper, s); err == nil {
		s = stripped
	}
	s = punctRegex.ReplaceAllString(s, " ")
	s = whitespaceRegex.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Code canonicalizes a product code: uppercase with all separators removed,
// so "perfa-0192", "PERFA 0192", and "perfa_0192" all map to "PERFA0192".
func Code(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	return codeSepRegex.ReplaceAllString(s, "")
}

// Category canonicalizes a category label into an identifier-like key,
// e.g. "Herramientas Eléctricas" -> "herramientas_electricas".
func Category(s string) string {
	s = Text(s)
	s = categorySep.ReplaceAllString(s, " ")
	return whitespaceRegex.ReplaceAllString(s, "_")
}

// measurement rewrite rules, applied in order. Longer unit names come
// before their substrings so "milimetros" never partially matches "metros".
var measurementRules = []struct {
	re   *regexp.Regexp
	repl string
}{
	{regexp.MustCompile(`\s+`), ""},
	{regexp.MustCompile(`^0+(\d)`), "$1"},
	{regexp.MustCompile(`x0+(\d)`), "x$1"},
	{regexp.MustCompile(`(\d)[,.](\d)`), "$1.$2"},
	{regexp.MustCompile(`pulg(?:ada)?s?`), `"`},
	{regexp.MustCompile(`milimetros?`), "mm"},
	{regexp.MustCompile(`centimetros?`), "cm"},
	{regexp.MustCompile(`mililitros?`), "ml"},
	{regexp.MustCompile(`kilogramos?`), "kg"},
	{regexp.MustCompile(`gramos?`), "g"},
	{regexp.MustCompile(`litros?`), "l"},
	{regexp.MustCompile(`metros?`), "m"},
}

// Measurement canonicalizes a measurement expression: spaces removed,
// leading zeros dropped, decimal comma unified to a dot, and Spanish unit
// names reduced to their abbreviations. "08 mm" -> "8mm", "1/2 pulgada" -> `1/2"`.
func Measurement(s string) string {
	s = strings.ToLower(s)
	for _, rule := range measurementRules {
		s = rule.re.ReplaceAllString(s, rule.repl)
	}
	return s
}
