package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duckarchive/inspector-cli/internal/fsimport/parser"
)

func TestParseLine(t *testing.T) {
	parsers := parser.Chain(nil)

	assert.Equal(t, "ДАХмО-487-1-103",
		parseLine("Ф. 487, оп. 1, спр. 103", parsers, "ДАХмО", false))
	assert.Equal(t, "unparsed",
		parseLine("щось незрозуміле", parsers, "ДАХмО", false))
}

func TestParseLine_Meta(t *testing.T) {
	parsers := parser.Chain(nil)

	assert.Equal(t, "ДАХмО-240-1-24",
		parseLine("ф 240-1/24", parsers, "ДАХмО", true))
	assert.Equal(t, "ДАХмО-240-1-24..30",
		parseLine("Vol 240-1/24 (cont.)-30", parsers, "ДАХмО", true))
}

func TestParseLines(t *testing.T) {
	in := strings.NewReader("Ф. 487, оп. 1, спр. 103\n\nщось незрозуміле\n")
	var out strings.Builder

	require.NoError(t, parseLines(in, &out, parser.Chain(nil), "ДАХмО", false))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Ф. 487, оп. 1, спр. 103\tДАХмО-487-1-103", lines[0])
	assert.Equal(t, "щось незрозуміле\tunparsed", lines[1])
}
