package parser

import (
	"regexp"
	"strings"

	"go.uber.org/zap"
)

// Meta is one archival unit extracted from a manually curated meta line.
type Meta struct {
	Raw         string
	Fund        string
	Description string
	CaseStart   string
	CaseEnd     string
}

// Meta lines are typed by hand, so the delimiters and code suffixes are
// looser than in scanned references.
const (
	metaDel = `[., ]+`
	metaSub = `[абвдоп. ]{0,5}`
)

type metaTemplate struct {
	test  *regexp.Regexp
	match *regexp.Regexp
}

// Templates are tried in order; the test pattern picks the template by line
// shape and the match pattern extracts the codes from the transliterated
// line. Group order is fund, description, case start, optional case end.
var metaTemplates = []metaTemplate{
	{
		test: regexp.MustCompile(`(?i)^ф` + metaDel + `([рп]?-?\d+` + metaSub + `)-(\d+` + metaSub + `)`),
		match: regexp.MustCompile(
			`(?i)ф` + metaDel + `([рп]?-?\d+` + metaSub + `)-(\d+` + metaSub + `)/(\d+` + metaSub + `)`),
	},
	{
		test: regexp.MustCompile(`(?i)^ф` + metaDel),
		match: regexp.MustCompile(
			`(?i)ф` + metaDel + `([рп]?-?\d+` + metaSub + `)` + metaDel + `о` + metaDel + `(\d+` + metaSub + `)` + metaDel + `д` + metaDel + `(\d+` + metaSub + `)(?:-\d+` + metaSub + `)?` + metaDel),
	},
	{
		test: regexp.MustCompile(`(?i)^фонд` + metaDel),
		match: regexp.MustCompile(
			`(?i)фонд` + metaDel + `([рп]?-?\d+` + metaSub + `)` + metaDel + `опись?` + metaDel + `(\d+` + metaSub + `)` + metaDel + `дело` + metaDel + `(\d+` + metaSub + `)(?:-\d+` + metaSub + `)?` + metaDel),
	},
	{
		test: regexp.MustCompile(`(?i)^vol`),
		match: regexp.MustCompile(
			`(?i)вол[А-ЯҐЄІЇ]{0,4}` + metaDel + `([рп]?-?\d+` + metaSub + `)-(\d+` + metaSub + `)/(\d+` + metaSub + `)[ \(цонт\.\)]{0,8}(-\d+` + metaSub + `)?`),
	},
}

// ParseMeta splits a curated meta string on " -- " and extracts one Meta per
// part. Parts matching no template are logged and skipped.
func ParseMeta(s string) []Meta {
	var out []Meta
	for _, part := range strings.Split(s, " -- ") {
		var m []string
		for _, tpl := range metaTemplates {
			if !tpl.test.MatchString(part) {
				continue
			}
			m = tpl.match.FindStringSubmatch(Latin2Cyrillic(part))
			break
		}
		if m == nil {
			zap.L().Warn("unparseable meta part", zap.String("text", part))
			continue
		}

		meta := Meta{
			Raw:         part,
			Fund:        strings.TrimSpace(m[1]),
			Description: strings.TrimSpace(m[2]),
			CaseStart:   strings.TrimSpace(m[3]),
		}
		if len(m) > 4 && m[4] != "" {
			meta.CaseEnd = strings.TrimSpace(strings.TrimPrefix(m[4], "-"))
		}
		out = append(out, meta)
	}
	return out
}
