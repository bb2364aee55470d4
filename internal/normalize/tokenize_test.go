package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		minLength int
		expected  []string
	}{
		{
			name:      "default minimum drops short words",
			text:      "Llave de paso 1/2",
			minLength: 0,
			expected:  []string{"llave", "paso"},
		},
		{
			name:      "explicit minimum",
			text:      "Llave de paso",
			minLength: 2,
			expected:  []string{"llave", "de", "paso"},
		},
		{
			name:      "normalizes before splitting",
			text:      "Cinta-Métrica",
			minLength: 0,
			expected:  []string{"cinta", "metrica"},
		},
		{
			name:      "empty text",
			text:      "",
			minLength: 0,
			expected:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Tokenize(tt.text, tt.minLength))
		})
	}
}

func TestNGrams(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		size     int
		expected []string
	}{
		{
			name:     "default size three",
			text:     "broca",
			size:     0,
			expected: []string{"bro", "roc", "oca"},
		},
		{
			name:     "ngrams span word boundaries",
			text:     "la ca",
			size:     3,
			expected: []string{"la ", "a c", " ca"},
		},
		{
			name:     "text shorter than size",
			text:     "ab",
			size:     3,
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NGrams(tt.text, tt.size))
		})
	}
}

func TestExpander(t *testing.T) {
	e := NewExpander(map[string]string{
		"fte":  "fuerte",
		"mm":   "milimetros",
		"pulg": "pulgadas",
		"kgrs": "kilogramos",
	})

	tests := []struct {
		name     string
		text     string
		expected string
	}{
		{
			name:     "expands whole words only",
			text:     "Candado fte 40 mm",
			expected: "candado fuerte 40 milimetros",
		},
		{
			name:     "abbreviation inside a word is untouched",
			text:     "ftecho", // not a word boundary match for fte
			expected: "ftecho",
		},
		{
			name:     "multiple abbreviations",
			text:     "llave 2 pulg bolsa 5 kgrs",
			expected: "llave 2 pulgadas bolsa 5 kilogramos",
		},
		{
			name:     "normalizes before expanding",
			text:     "CANDADO FTE",
			expected: "candado fuerte",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, e.Expand(tt.text))
		})
	}
}
