package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupeAndTrim(t *testing.T) {
	tests := []struct {
		name     string
		input    []string
		expected []string
	}{
		{
			name:     "nil slice",
			input:    nil,
			expected: nil,
		},
		{
			name:     "empty slice",
			input:    []string{},
			expected: []string{},
		},
		{
			name:     "trims whitespace",
			input:    []string{"  land ", "livestock  "},
			expected: []string{"land", "livestock"},
		},
		{
			name:     "drops duplicates keeping first-seen order",
			input:    []string{"land", "livestock", "land", "vehicle"},
			expected: []string{"land", "livestock", "vehicle"},
		},
		{
			name:     "drops empty and blank entries",
			input:    []string{"land", "", "   ", "livestock"},
			expected: []string{"land", "livestock"},
		},
		{
			name:     "case is preserved, so casing variants are distinct",
			input:    []string{"Land", "land"},
			expected: []string{"Land", "land"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DedupeAndTrim(tt.input))
		})
	}
}
