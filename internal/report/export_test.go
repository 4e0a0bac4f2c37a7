package report

import (
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/duckarchive/inspector-cli/internal/catalog"
)

func TestWriteTriageXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "triage.xlsx")
	items := []catalog.SourceItem{
		{
			ID:          uuid.New(),
			ProjectID:   uuid.New(),
			ArchiveCode: "ДАХмО",
			DGS:         "105512345",
			Volume:      "Щоденник подорожі",
			Title:       "Без реквізитів",
			DateRange:   "1820",
		},
	}

	require.NoError(t, WriteTriageXLSX(path, items))

	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	require.Len(t, f.Sheets, 1)

	sheet := f.Sheets[0]
	assert.Equal(t, "unparsed", sheet.Name)
	require.Len(t, sheet.Rows, 2)
	assert.Equal(t, "id", sheet.Rows[0].Cells[0].String())
	assert.Equal(t, items[0].ID.String(), sheet.Rows[1].Cells[0].String())
	assert.Equal(t, "ДАХмО", sheet.Rows[1].Cells[2].String())
	assert.Equal(t, "Щоденник подорожі", sheet.Rows[1].Cells[4].String())
}

func TestWriteTriageXLSX_EmptyStillWritesHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "triage.xlsx")

	require.NoError(t, WriteTriageXLSX(path, nil))

	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	require.Len(t, f.Sheets[0].Rows, 1)
	assert.Equal(t, "archival_reference", f.Sheets[0].Rows[0].Cells[6].String())
}
