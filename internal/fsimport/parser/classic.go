package parser

import (
	"regexp"
	"strings"
)

// Cyrillic and Latin spellings of the "опис" and "справа" markers that appear
// in manually typed references, including OCR confusions (on/оn, cnp/cn).
const (
	descMarkers = `о|o|оп|on|оn|oп`
	caseMarkers = `д|дел|c|спр|сп|cnp|cn|c|ekh|ex|ех`
)

var (
	classicSingleRe = regexp.MustCompile(
		`(?i)^ф\.\s*(\d+` + postfix + `)` + delimClass + `+(` + descMarkers + `)\.?` + delimClass + `+(\d+` + postfix + `)` + delimClass + `+(` + caseMarkers + `)\.?` + delimClass + `*(\d+[` + dashClass + `]*` + postfix + `)`)
	classicRangeRe = regexp.MustCompile(
		`(?i)^ф\.\s*(\d+` + postfix + `)` + delimClass + `+(` + descMarkers + `)\.?` + delimClass + `+(\d+` + postfix + `)` + delimClass + `+(` + caseMarkers + `)\.?` + delimClass + `*(\d+[` + dashClass + `]*` + postfix + `)` + delimClass + `+(\d+[` + dashClass + `]*` + postfix + `)`)
	classicTestRe = regexp.MustCompile(`(?i)^ф\.?.+(` + descMarkers + `)\.?.+(` + caseMarkers + `)`)

	hyphenSpacingRe = regexp.MustCompile(`\s?-\s?`)
)

// classicParser handles fully spelled references like "Ф. 2, о. 9, д. 120-123".
type classicParser struct{}

func (*classicParser) Name() string { return "classic" }

func (*classicParser) Test(item Item) string {
	return testItem(classicTestRe, item)
}

func (*classicParser) Parse(item Item) [][3]string {
	return parseWith(item, classicSingleRe, classicRangeRe, cleanHyphens, captureIndex{
		fund:      1,
		desc:      3,
		caseStart: 5,
		caseEnd:   6,
	})
}

func cleanHyphens(s string) string {
	return strings.TrimSpace(hyphenSpacingRe.ReplaceAllString(s, "-"))
}
