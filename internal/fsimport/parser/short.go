package parser

import (
	"regexp"
	"strings"
)

// shortNumber allows an optional fund-series prefix letter and a detached
// dash before the digits, as in "Р-1" or "П1".
const shortNumber = prefixClass + `{0,1}[` + dashClass + `]{0,1}`

var (
	shortSingleRe = regexp.MustCompile(
		`(?i)(` + shortNumber + `\d+` + postfix + `)[` + dashClass + `]+(\d+` + postfix + `)[` + dashClass + `]+(\d+` + postfix + `)`)
	shortRangeRe = regexp.MustCompile(
		`(?i)(` + shortNumber + `\d+` + postfix + `)[` + dashClass + `]+(\d+` + postfix + `)[` + dashClass + `]+(\d+` + postfix + `)[` + dashClass + `]+(\d+` + postfix + `)`)
	shortTestRe = regexp.MustCompile(
		`(?i)^(` + shortNumber + `\d+` + postfix + `)[` + dashClass + `]+(\d+` + postfix + `)[` + dashClass + `]+(\d+` + postfix + `)`)

	dashSpacingRe = regexp.MustCompile(`\s?[` + dashClass + `]\s?`)
)

// shortParser handles bare dash-separated references like "37-3-129".
type shortParser struct{}

func (*shortParser) Name() string { return "short" }

func (*shortParser) Test(item Item) string {
	return testItem(shortTestRe, item)
}

func (*shortParser) Parse(item Item) [][3]string {
	return parseWith(item, shortSingleRe, shortRangeRe, cleanDashes, captureIndex{
		fund:      1,
		desc:      2,
		caseStart: 3,
		caseEnd:   4,
	})
}

func cleanDashes(s string) string {
	return strings.TrimSpace(dashSpacingRe.ReplaceAllString(s, "-"))
}
