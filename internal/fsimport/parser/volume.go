package parser

import (
	"regexp"
)

var (
	volumeSingleRe = regexp.MustCompile(
		`(?i)^Vol\w{0,3}\s*(\d+` + postfix + `)` + delimClass + `(\d+` + postfix + `)` + delimClass + `(\d+` + postfix + `)`)
	volumeRangeRe = regexp.MustCompile(
		`(?i)^Vol\w{0,3}\s*(\d+` + postfix + `)` + delimClass + `(\d+` + postfix + `)` + delimClass + `(\d+` + postfix + `)` + delimClass + `(\d+` + postfix + `)`)
	// Anchor is case-sensitive: "Vol" and "Volume" headers are capitalized,
	// and a lowercase "vol" mid-reference must not steal items from the
	// classic parser.
	volumeTestRe = regexp.MustCompile(`^Vol`)

	contMarkerRe = regexp.MustCompile(`(?i)\s?\(cont\.\)?\s?`)
)

// volumeParser handles English microfilm headers like "Volume 5593-2/779".
type volumeParser struct{}

func (*volumeParser) Name() string { return "volume" }

func (*volumeParser) Test(item Item) string {
	return testItem(volumeTestRe, item)
}

func (*volumeParser) Parse(item Item) [][3]string {
	return parseWith(item, volumeSingleRe, volumeRangeRe, cleanVolume, captureIndex{
		fund:      1,
		desc:      2,
		caseStart: 3,
		caseEnd:   4,
	})
}

func cleanVolume(s string) string {
	s = contMarkerRe.ReplaceAllString(s, " ")
	return cleanHyphens(s)
}
