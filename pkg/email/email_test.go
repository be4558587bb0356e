package email

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveDisplayName(t *testing.T) {
	tests := []struct {
		email    string
		expected string
	}{
		{"asha.devi@example.com", "Asha Devi"},
		{"meena_kumari@example.com", "Meena Kumari"},
		{"radha-bai+portal@example.com", "Radha Bai Portal"},
		{"singleword@example.com", "Singleword"},
		{"no-at-sign", "No At Sign"},
		{"...@example.com", "User"},
		{"", "User"},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			assert.Equal(t, tt.expected, DeriveDisplayName(tt.email))
		})
	}
}
