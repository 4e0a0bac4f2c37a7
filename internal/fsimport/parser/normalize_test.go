package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLatin2Cyrillic(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"fond", "ФОНД"},
		{"cnp", "ЦНП"},
		{"д. 17", "Д. 17"},
		{"Vol", "ВОЛ"},
		{"опис", "ОПИС"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, Latin2Cyrillic(tt.input))
		})
	}
}

func TestParseCode(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"120", "120"},
		{" 120 ", "120"},
		{"120а", "120А"},
		{"120a", "120А"},
		{"Р-1", "Р1"},
		{"р–1", "Р1"},
		{"9.", "9"},
		{"5593 2", "55932"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseCode(tt.input))
		})
	}
}
