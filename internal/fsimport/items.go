// Package fsimport reconciles parsed FamilySearch references into the
// catalog hierarchy: funds first, then descriptions, then cases, then the
// cataloged stamp. Every write is a natural-key upsert, so a batch is safely
// re-runnable.
package fsimport

import (
	"strings"

	"github.com/google/uuid"

	"github.com/duckarchive/inspector-cli/internal/catalog"
	"github.com/duckarchive/inspector-cli/internal/fsimport/parser"
)

// ParsedItem is one source item with the normalized codes the auto-parser
// extracted from it. A range reference yields several codes for one item.
type ParsedItem struct {
	ItemID      uuid.UUID
	ArchiveID   uuid.UUID
	ArchiveCode string
	Title       string
	DGS         string
	DateRange   string
	Codes       []string
}

// ParseItems runs the auto-parser over fresh source items, splitting them
// into importable parsed items and a triage list. Items without a resolvable
// archive or with no recognized reference go to triage.
func ParseItems(items []catalog.SourceItem, parsers []parser.Parser) (parsed []ParsedItem, unparsed []catalog.SourceItem) {
	for _, it := range items {
		if it.ArchiveID == nil {
			unparsed = append(unparsed, it)
			continue
		}

		codes := parser.AutoParse(parser.Item{
			ID:                it.ID,
			ProjectID:         it.ProjectID,
			ArchiveID:         *it.ArchiveID,
			ArchiveCode:       it.ArchiveCode,
			DGS:               it.DGS,
			Volume:            it.Volume,
			Volumes:           it.Volumes,
			ArchivalReference: it.ArchivalReference,
			Title:             it.Title,
			DateRange:         it.DateRange,
		}, parsers)
		if len(codes) == 0 {
			unparsed = append(unparsed, it)
			continue
		}

		parsed = append(parsed, ParsedItem{
			ItemID:      it.ID,
			ArchiveID:   *it.ArchiveID,
			ArchiveCode: it.ArchiveCode,
			Title:       it.Title,
			DGS:         it.DGS,
			DateRange:   it.DateRange,
			Codes:       codes,
		})
	}
	return parsed, unparsed
}

// SplitCode breaks an "archive-fund-description[-case]" code into its fund,
// description and case parts. The archive prefix is stripped verbatim, not
// positionally: archive codes may themselves contain dashes, while fund and
// deeper codes have theirs folded away by normalization.
func SplitCode(code, archiveCode string) (fund, desc, caseCode string) {
	rest := strings.TrimPrefix(code, archiveCode)
	rest = strings.TrimPrefix(rest, "-")
	if rest == "" {
		return "", "", ""
	}

	parts := strings.Split(rest, "-")
	fund = parts[0]
	if len(parts) > 1 {
		desc = parts[1]
	}
	if len(parts) > 2 {
		caseCode = parts[2]
	}
	return fund, desc, caseCode
}
