package normalize

import "regexp"

// measurementPatterns capture the measurement spellings that show up in
// product names, in decreasing specificity: dimensions (10x20mm), plain
// values with length units, inch fractions (1/2"), and weight/volume units.
var measurementPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(\d+)\s*x\s*(\d+)\s*(mm|cm|m|pulg|pulgadas|")`),
	regexp.MustCompile(`(?i)(\d+[.,]?\d*)\s*(mm|cm|m|pulg|pulgadas|")`),
	regexp.MustCompile(`(?i)(\d+)\s*/\s*(\d+)\s*(mm|cm|m|pulg|pulgadas|")`),
	regexp.MustCompile(`(?i)(\d+[.,]?\d*)\s*(kg|g|kgrs|gr|l|lt|litros?|ml)`),
	regexp.MustCompile(`(?i)(\d+[.,]?\d*)\s*(kgrs)`),
	regexp.MustCompile(`(?i)(\d+[.,]?\d*)\s*(grs)`),
}

// ExtractMeasurements finds every measurement expression in text and
// returns them normalized, deduplicated by canonical form, in pattern
// then positional order. "Broca 08 mm x 2" yields ["8mm"].
func ExtractMeasurements(text string) []string {
	if text == "" {
		return nil
	}

	var measures []string
	seen := map[string]bool{}
	for _, pattern := range measurementPatterns {
		for _, match := range pattern.FindAllString(text, -1) {
			canonical := Measurement(match)
			if canonical == "" || seen[canonical] {
				continue
			}
			seen[canonical] = true
			measures = append(measures, canonical)
		}
	}
	return measures
}
