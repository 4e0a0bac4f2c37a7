package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMeta_ShortTemplate(t *testing.T) {
	metas := ParseMeta("ф 240-1/24")
	require.Len(t, metas, 1)
	assert.Equal(t, Meta{
		Raw:         "ф 240-1/24",
		Fund:        "240",
		Description: "1",
		CaseStart:   "24",
	}, metas[0])
}

func TestParseMeta_ClassicTemplate(t *testing.T) {
	metas := ParseMeta("Ф. 487, о. 1, д. 103, 1850 г.")
	require.Len(t, metas, 1)
	assert.Equal(t, "487", metas[0].Fund)
	assert.Equal(t, "1", metas[0].Description)
	assert.Equal(t, "103", metas[0].CaseStart)
	assert.Empty(t, metas[0].CaseEnd)
}

func TestParseMeta_FullWordsTemplate(t *testing.T) {
	metas := ParseMeta("Фонд 315, опись 2, дело 44, 1850 г.")
	require.Len(t, metas, 1)
	assert.Equal(t, "315", metas[0].Fund)
	assert.Equal(t, "2", metas[0].Description)
	assert.Equal(t, "44", metas[0].CaseStart)
}

func TestParseMeta_TransliteratedVolume(t *testing.T) {
	metas := ParseMeta("Vol 240-1/24 (cont.)-30")
	require.Len(t, metas, 1)
	assert.Equal(t, "240", metas[0].Fund)
	assert.Equal(t, "1", metas[0].Description)
	assert.Equal(t, "24", metas[0].CaseStart)
	assert.Equal(t, "30", metas[0].CaseEnd)
}

func TestParseMeta_MultiPart(t *testing.T) {
	metas := ParseMeta("ф 240-1/24 -- ф 240-1/25")
	require.Len(t, metas, 2)
	assert.Equal(t, "24", metas[0].CaseStart)
	assert.Equal(t, "25", metas[1].CaseStart)
}

func TestParseMeta_SkipsUnparseableParts(t *testing.T) {
	metas := ParseMeta("щось незрозуміле -- ф 240-1/24")
	require.Len(t, metas, 1)
	assert.Equal(t, "240", metas[0].Fund)
}

func TestParseMeta_FundSeriesPrefix(t *testing.T) {
	metas := ParseMeta("ф р-254-1/12")
	require.Len(t, metas, 1)
	assert.Equal(t, "Р-254", metas[0].Fund)
}
