package normalize

import (
	"regexp"
	"strings"
)

var (
	leadingZeroRegex = regexp.MustCompile(`(\D)0+(\d)`)
	alphaNumBoundary = regexp.MustCompile(`([A-Z]+)(\d+)`)
)

// CodeVariants returns the alternate spellings a user might type for a
// product code, derived from its canonical form. The canonical code itself
// is always first; the remaining entries are deduplicated against it:
//
//	CodeVariants("PERFA0192") -> ["PERFA0192", "PERFA192", "PERFA 0192", "PERFA-0192"]
func CodeVariants(code string) []string {
	canonical := Code(code)
	variants := []string{canonical}
	seen := map[string]bool{canonical: true}

	add := func(v string) {
		if v != "" && !seen[v] {
			seen[v] = true
			variants = append(variants, v)
		}
	}

	add(leadingZeroRegex.ReplaceAllString(canonical, "${1}${2}"))
	add(alphaNumBoundary.ReplaceAllString(canonical, "${1} ${2}"))
	add(alphaNumBoundary.ReplaceAllString(canonical, "${1}-${2}"))

	return variants
}

var (
	singleDigitLead = regexp.MustCompile(`^[1-9]([^0-9]|$)`)
	dimensionSpace  = regexp.MustCompile(`(\d+)x(\d+)(\w+)`)
	numberUnitSpace = regexp.MustCompile(`(\d+)(\w+)`)
)

// MeasurementVariants returns the alternate spellings a user might type for
// a measurement, derived from its canonical form: a zero-padded value
// ("8mm" -> "08mm"), a spaced form ("8x10mm" -> "8 x 10 mm"), and spelled-out
// Spanish unit names for inches, millimeters, and centimeters.
func MeasurementVariants(m string) []string {
	canonical := Measurement(m)
	variants := []string{canonical}
	seen := map[string]bool{canonical: true}

	add := func(v string) {
		if v != "" && !seen[v] {
			seen[v] = true
			variants = append(variants, v)
		}
	}

	if singleDigitLead.MatchString(canonical) {
		add("0" + canonical)
	}

	// numberUnitSpace would re-match inside the digits of an already
	// spaced dimension, so only one of the two rewrites applies.
	if dimensionSpace.MatchString(canonical) {
		add(dimensionSpace.ReplaceAllString(canonical, "$1 x $2 $3"))
	} else {
		add(numberUnitSpace.ReplaceAllString(canonical, "$1 $2"))
	}

	if strings.Contains(canonical, `"`) {
		add(strings.Replace(canonical, `"`, "pulg", 1))
		add(strings.Replace(canonical, `"`, "pulgadas", 1))
	}
	if strings.Contains(canonical, "mm") {
		add(strings.Replace(canonical, "mm", "milimetros", 1))
	}
	if strings.Contains(canonical, "cm") {
		add(strings.Replace(canonical, "cm", "centimetros", 1))
	}

	return variants
}
