// Package report produces the manual-triage export for source items the
// auto-parser could not handle.
package report

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/duckarchive/inspector-cli/internal/catalog"
)

var triageHeader = []string{
	"id", "project_id", "archive", "dgs",
	"volume", "volumes", "archival_reference", "title", "date_range",
}

// WriteTriageXLSX writes unparsed source items to an XLSX workbook so an
// operator can resolve their references by hand.
func WriteTriageXLSX(path string, items []catalog.SourceItem) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("unparsed")
	if err != nil {
		return eris.Wrap(err, "report: add sheet")
	}

	header := sheet.AddRow()
	for _, h := range triageHeader {
		header.AddCell().SetString(h)
	}

	for _, it := range items {
		row := sheet.AddRow()
		row.AddCell().SetString(it.ID.String())
		row.AddCell().SetString(it.ProjectID.String())
		row.AddCell().SetString(it.ArchiveCode)
		row.AddCell().SetString(it.DGS)
		row.AddCell().SetString(it.Volume)
		row.AddCell().SetString(it.Volumes)
		row.AddCell().SetString(it.ArchivalReference)
		row.AddCell().SetString(it.Title)
		row.AddCell().SetString(it.DateRange)
	}

	if err := f.Save(path); err != nil {
		return eris.Wrap(err, "report: save workbook")
	}
	return nil
}
