package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/duckarchive/inspector-cli/internal/catalog"
	"github.com/duckarchive/inspector-cli/internal/fsimport"
)

func TestImportRefs(t *testing.T) {
	parsed := []fsimport.ParsedItem{
		{ArchiveCode: "ДАХмО", Codes: []string{"ДАХмО-37-3-129", "ДАХмО-37-3"}},
		{ArchiveCode: "ЦДІАК-К", Codes: []string{"ЦДІАК-К-5593-2-779"}},
	}

	refs := importRefs(parsed)

	assert.Equal(t, []catalog.ImportRef{
		{ArchiveCode: "ДАХмО", FundCode: "37", DescriptionCode: "3", CaseCode: "129"},
		{ArchiveCode: "ДАХмО", FundCode: "37", DescriptionCode: "3"},
		{ArchiveCode: "ЦДІАК-К", FundCode: "5593", DescriptionCode: "2", CaseCode: "779"},
	}, refs)
}

func TestImportRefs_Empty(t *testing.T) {
	assert.Empty(t, importRefs(nil))
}
