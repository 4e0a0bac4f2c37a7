// Package parser extracts normalized archive-fund-description-case codes
// from free-text FamilySearch archival references. Each reference convention
// is handled by one Parser; dispatch is first-match-wins over a fixed
// priority list.
package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Character classes shared by the reference templates. The dash family covers
// en/em/horizontal-bar dashes that OCR and manual typing produce.
const (
	prefixClass = "[РПН]"
	dashClass   = "–—―-"
	delimClass  = "[ ,;./_–—―-]"
	postfix     = "[A-ZА-ЯҐЄІЇ.]*"
)

// Item is one FamilySearch source record with its resolved project archive.
type Item struct {
	ID                uuid.UUID
	ProjectID         uuid.UUID
	ArchiveID         uuid.UUID // uuid.Nil when the project has no archive
	ArchiveCode       string
	DGS               string
	Volume            string
	Volumes           string
	ArchivalReference string
	Title             string
	DateRange         string
}

// Parser recognizes one archival reference convention.
type Parser interface {
	Name() string
	// Test returns the first reference field matching the parser's anchor
	// pattern, or "" when the item is not recognized.
	Test(item Item) string
	// Parse extracts [fund, description, case] triples from the item.
	// Call only after Test succeeded.
	Parse(item Item) [][3]string
}

// Chain returns the parser list in dispatch priority order. The first parser
// whose Test matches consumes the item, even when its Parse yields nothing.
// Archive-specific fixed rules, when configured, take precedence over the
// general templates.
func Chain(rules []Rule) []Parser {
	var parsers []Parser
	if len(rules) > 0 {
		parsers = append(parsers, NewFixedParser(rules))
	}
	return append(parsers, &volumeParser{}, &shortParser{}, &classicParser{})
}

// AutoParse resolves the item's archive code prefix, runs the first matching
// parser and returns normalized "archive-fund-description-case" strings.
// An empty result means the item needs manual triage, not that parsing failed.
func AutoParse(item Item, parsers []Parser) []string {
	for _, p := range parsers {
		if p.Test(item) == "" {
			continue
		}

		triples := p.Parse(item)
		codes := make([]string, 0, len(triples))
		for _, tr := range triples {
			codes = append(codes, strings.Join([]string{
				item.ArchiveCode,
				ParseCode(tr[0]),
				ParseCode(tr[1]),
				ParseCode(tr[2]),
			}, "-"))
		}
		return codes
	}
	return nil
}

var semicolonRe = regexp.MustCompile(";")

// testItem runs the anchor pattern against the item's reference fields in
// priority order: volume, then volumes, then archival_reference. The first
// field that matches is the one a parser extracts from.
func testItem(re *regexp.Regexp, item Item) string {
	if v := strings.TrimSpace(item.Volume); v != "" && re.MatchString(v) {
		return v
	}
	if v := strings.TrimSpace(item.Volumes); v != "" && re.MatchString(v) {
		return v
	}
	if v := strings.TrimSpace(item.ArchivalReference); v != "" && re.MatchString(v) {
		return v
	}
	return ""
}

// segments splits a multi-reference field on ";" into independently parsed
// parts. Composite scans (DGS containing "_") are never split: their
// semicolons separate pages of one unit, not distinct archival units.
func segments(item Item, single, rng *regexp.Regexp) []string {
	if multi := testItem(semicolonRe, item); multi != "" && !strings.Contains(item.DGS, "_") {
		parts := strings.Split(multi, ";")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			out = append(out, strings.TrimSpace(p))
		}
		return out
	}

	if s := testItem(single, item); s != "" {
		return []string{s}
	}
	if s := testItem(rng, item); s != "" {
		return []string{s}
	}
	return nil
}

// captureIndex names the submatch positions of fund, description and case
// numbers inside a parser's single/range patterns.
type captureIndex struct {
	fund, desc, caseStart, caseEnd int
}

// parseWith runs the shared segment loop: split the matched field, normalize
// each part, try the range pattern first and fall back to the single one.
func parseWith(item Item, single, rng *regexp.Regexp, clean func(string) string, idx captureIndex) [][3]string {
	var results [][3]string
	for _, part := range segments(item, single, rng) {
		part = strings.TrimSpace(clean(part))
		if m := rng.FindStringSubmatch(part); m != nil {
			results = append(results, expandCases(m[idx.fund], m[idx.desc], m[idx.caseStart], m[idx.caseEnd])...)
			continue
		}
		if m := single.FindStringSubmatch(part); m != nil {
			results = append(results, [3]string{m[idx.fund], m[idx.desc], m[idx.caseStart]})
		}
	}
	return results
}

// expandCases materializes a case range into individual case codes. A second
// number not greater than the first is a volume marker of the same case, not
// a range end: only the first case is emitted and the volume suffix dropped.
func expandCases(fund, desc, cStart, cEnd string) [][3]string {
	if cEnd == "" {
		return [][3]string{{fund, desc, cStart}}
	}

	start := digitsToInt(cStart)
	end := digitsToInt(cEnd)
	if end <= start {
		return [][3]string{{fund, desc, cStart}}
	}

	out := [][3]string{{fund, desc, cStart}}
	for i := start + 1; i < end; i++ {
		out = append(out, [3]string{fund, desc, strconv.Itoa(i)})
	}
	return append(out, [3]string{fund, desc, cEnd})
}

var nonDigitRe = regexp.MustCompile(`\D`)

func digitsToInt(s string) int {
	n, _ := strconv.Atoi(nonDigitRe.ReplaceAllString(s, ""))
	return n
}
