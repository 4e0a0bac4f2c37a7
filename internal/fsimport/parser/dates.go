package parser

import (
	"regexp"
	"strconv"
)

var yearRe = regexp.MustCompile(`\d{4}`)

// ParseDate extracts a year range from a free-text date: a single year, a
// "YYYY-YYYY" span, or a comma/space separated list. It returns the min and
// max of all 4-digit numbers found, or ok=false when there are none.
func ParseDate(s string) (startYear, endYear int, ok bool) {
	for _, m := range yearRe.FindAllString(s, -1) {
		y, err := strconv.Atoi(m)
		if err != nil {
			continue
		}
		if !ok || y < startYear {
			startYear = y
		}
		if !ok || y > endYear {
			endYear = y
		}
		ok = true
	}
	return startYear, endYear, ok
}
