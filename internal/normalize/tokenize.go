package normalize

import (
	"regexp"
	"sort"
	"strings"
)

// DefaultMinTokenLength is the shortest token kept by Tokenize.
const DefaultMinTokenLength = 3

// DefaultNGramSize is the n-gram width used for fuzzy matching.
const DefaultNGramSize = 3

// Tokenize splits text into normalized word tokens of at least minLength
// characters. A minLength of zero or less uses DefaultMinTokenLength.
func Tokenize(text string, minLength int) []string {
	if minLength <= 0 {
		minLength = DefaultMinTokenLength
	}
	var tokens []string
	for _, token := range strings.Fields(Text(text)) {
		if len(token) >= minLength {
			tokens = append(tokens, token)
		}
	}
	return tokens
}

// NGrams returns the sliding character n-grams of the normalized text,
// spaces included. A size of zero or less uses DefaultNGramSize. Text
// shorter than size yields nil.
func NGrams(text string, size int) []string {
	if size <= 0 {
		size = DefaultNGramSize
	}
	normalized := Text(text)
	if len(normalized) < size {
		return nil
	}
	ngrams := make([]string, 0, len(normalized)-size+1)
	for i := 0; i+size <= len(normalized); i++ {
		ngrams = append(ngrams, normalized[i:i+size])
	}
	return ngrams
}

// Expander rewrites known abbreviations in normalized text to their full
// spellings, so "taladro fte 13mm" expands to "taladro fuerte 13milimetros"
// and code-derived tokens line up with what users type.
type Expander struct {
	rules []expandRule
}

type expandRule struct {
	re   *regexp.Regexp
	full string
}

// NewExpander compiles an abbreviation table into an Expander. Longer
// abbreviations are applied first so overlapping entries behave predictably
// regardless of map order.
func NewExpander(abbreviations map[string]string) *Expander {
	abbrs := make([]string, 0, len(abbreviations))
	for abbr := range abbreviations {
		abbrs = append(abbrs, abbr)
	}
	sort.Slice(abbrs, func(i, j int) bool {
		if len(abbrs[i]) != len(abbrs[j]) {
			return len(abbrs[i]) > len(abbrs[j])
		}
		return abbrs[i] < abbrs[j]
	})

	e := &Expander{rules: make([]expandRule, 0, len(abbrs))}
	for _, abbr := range abbrs {
		e.rules = append(e.rules, expandRule{
			re:   regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(abbr) + `\b`),
			full: abbreviations[abbr],
		})
	}
	return e
}

// Expand normalizes text and substitutes every abbreviation it knows.
func (e *Expander) Expand(text string) string {
	expanded := Text(text)
	for _, rule := range e.rules {
		expanded = rule.re.ReplaceAllString(expanded, rule.full)
	}
	return expanded
}
