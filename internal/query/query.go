// Package query turns raw user input into an analyzed query: normalized
// text, significant tokens, candidate product codes, measurements, and a
// classification that steers scoring.
package query

import (
	"fmt"
	"regexp"

	"github.com/hwcatalog/hwsearch/internal/config"
	"github.com/hwcatalog/hwsearch/internal/errors"
	"github.com/hwcatalog/hwsearch/internal/normalize"
)

// Type classifies what a query is mostly asking for.
type Type string

const (
	TypeCode        Type = "code"
	TypeMeasurement Type = "measurement"
	TypeHardware    Type = "hardware"
	TypeGeneral     Type = "general"
)

// Query is the analyzed form of one search input.
type Query struct {
	Original      string
	Normalized    string
	Tokens        []string
	PossibleCodes []string
	Measurements  []string
	HardwareTerms []string
	Type          Type
}

// IsCode reports whether the query looks primarily like a product code.
func (q *Query) IsCode() bool { return q.Type == TypeCode }

// IsMeasurement reports whether the query contains a measurement.
func (q *Query) IsMeasurement() bool { return len(q.Measurements) > 0 }

var (
	// alphanumericCode matches letters immediately followed by digits,
	// the dominant catalog code shape.
	alphanumericCode = regexp.MustCompile(`(?i)[a-z]+\d+`)
	// separatorCode matches codes typed with a hyphen or dot separator.
	// Normalization turns both into spaces, so it only fires on inputs
	// that bypass text normalization.
	separatorCode = regexp.MustCompile(`(?i)[a-z]+[-.][0-9]+`)

	hasLetter    = regexp.MustCompile(`(?i)[a-z]`)
	hasDigit     = regexp.MustCompile(`\d`)
	allLetters   = regexp.MustCompile(`(?i)^[a-z]+$`)
	letterDigits = regexp.MustCompile(`(?i)^[a-z]+\d+$`)
)

// Processor analyzes queries against one search configuration.
type Processor struct {
	cfg       config.SearchConfig
	stopWords map[string]bool
	hardware  map[string]bool
}

// NewProcessor builds a Processor from the search configuration.
func NewProcessor(cfg config.SearchConfig) *Processor {
	p := &Processor{
		cfg:       cfg,
		stopWords: make(map[string]bool, len(cfg.StopWords)),
		hardware:  make(map[string]bool, len(cfg.HardwareTerms)),
	}
	for _, w := range cfg.StopWords {
		p.stopWords[w] = true
	}
	for _, t := range cfg.HardwareTerms {
		p.hardware[normalize.Text(t)] = true
	}
	return p
}

// Process analyzes raw input. Queries shorter than MinQueryLength after
// normalization are rejected.
func (p *Processor) Process(raw string) (*Query, error) {
	normalized := normalize.Text(raw)
	if len(normalized) < p.cfg.MinQueryLength {
		return nil, errors.New(errors.ErrCodeQueryTooShort,
			fmt.Sprintf("query must be at least %d characters", p.cfg.MinQueryLength), nil).
			WithDetail("query", raw)
	}

	tokens := make([]string, 0, p.cfg.MaxTokens)
	for _, token := range normalize.Tokenize(normalized, normalize.DefaultMinTokenLength) {
		if p.stopWords[token] {
			continue
		}
		tokens = append(tokens, token)
		if len(tokens) == p.cfg.MaxTokens {
			break
		}
	}
	// A query made only of stop words still has to match something.
	if len(tokens) == 0 {
		tokens = []string{normalized}
	}

	q := &Query{
		Original:      raw,
		Normalized:    normalized,
		Tokens:        tokens,
		PossibleCodes: p.extractCodes(normalized, tokens),
		Measurements:  normalize.ExtractMeasurements(normalized),
	}
	for _, token := range tokens {
		if p.hardware[token] {
			q.HardwareTerms = append(q.HardwareTerms, token)
		}
	}
	q.Type = p.classify(q)
	return q, nil
}

// classify picks the dominant query type. Code trumps measurement,
// measurement trumps hardware term, anything else is general.
func (p *Processor) classify(q *Query) Type {
	if len(q.PossibleCodes) > 0 {
		first := q.PossibleCodes[0]
		if len(first) >= 4 || letterDigits.MatchString(first) {
			return TypeCode
		}
	}
	if len(q.Measurements) > 0 {
		return TypeMeasurement
	}
	if len(q.HardwareTerms) > 0 {
		return TypeHardware
	}
	return TypeGeneral
}

// extractCodes collects candidate product codes from the normalized
// text and the token list, normalized to canonical code form.
func (p *Processor) extractCodes(normalized string, tokens []string) []string {
	var raw []string
	raw = append(raw, alphanumericCode.FindAllString(normalized, -1)...)
	raw = append(raw, separatorCode.FindAllString(normalized, -1)...)

	for _, token := range tokens {
		looksLikeCode := len(token) >= 4 &&
			hasLetter.MatchString(token) && hasDigit.MatchString(token)
		shortWord := len(token) >= 2 && allLetters.MatchString(token)
		if looksLikeCode || shortWord {
			raw = append(raw, token)
		}
	}

	seen := make(map[string]bool, len(raw))
	codes := make([]string, 0, len(raw))
	for _, c := range raw {
		code := normalize.Code(c)
		if code != "" && !seen[code] {
			seen[code] = true
			codes = append(codes, code)
		}
	}
	return codes
}
