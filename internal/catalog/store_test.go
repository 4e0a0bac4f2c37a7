package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockStore(t *testing.T) (pgxmock.PgxPoolIface, *Store) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock, NewStore(mock)
}

func TestArchiveByCode_Found(t *testing.T) {
	mock, store := newMockStore(t)
	id := uuid.New()

	mock.ExpectQuery("SELECT id, code, title FROM catalog.archives").
		WithArgs("ДАХмО").
		WillReturnRows(pgxmock.NewRows([]string{"id", "code", "title"}).
			AddRow(id, "ДАХмО", "Державний архів Хмельницької області"))

	a, err := store.ArchiveByCode(context.Background(), "ДАХмО")
	require.NoError(t, err)
	require.NotNil(t, a)
	assert.Equal(t, id, a.ID)
	assert.Equal(t, "ДАХмО", a.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestArchiveByCode_NotFound(t *testing.T) {
	mock, store := newMockStore(t)

	mock.ExpectQuery("SELECT id, code, title FROM catalog.archives").
		WithArgs("НЕМА").
		WillReturnError(pgx.ErrNoRows)

	a, err := store.ArchiveByCode(context.Background(), "НЕМА")
	require.NoError(t, err)
	assert.Nil(t, a)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListFreshItems(t *testing.T) {
	mock, store := newMockStore(t)
	itemID, projectID, archiveID := uuid.New(), uuid.New(), uuid.New()

	mock.ExpectQuery("FROM catalog.fs_items i").
		WithArgs(1000).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "project_id", "archive_id", "archive_code",
			"dgs", "volume", "volumes", "archival_reference",
			"title", "date_range", "cataloged_at",
		}).
			AddRow(itemID, projectID, &archiveID, "ДАХмО",
				"105512345", "37-3-129", "", "",
				"Метрична книга", "1820-1825", nil).
			AddRow(uuid.New(), projectID, nil, "",
				"105512346", "", "", "Ф. 2, о. 9, д. 1",
				"", "", nil))

	items, err := store.ListFreshItems(context.Background(), 1000)
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, itemID, items[0].ID)
	require.NotNil(t, items[0].ArchiveID)
	assert.Equal(t, archiveID, *items[0].ArchiveID)
	assert.Equal(t, "37-3-129", items[0].Volume)
	assert.Nil(t, items[0].CatalogedAt)

	// Project without an archive yields a nil archive id and empty code.
	assert.Nil(t, items[1].ArchiveID)
	assert.Empty(t, items[1].ArchiveCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertFund(t *testing.T) {
	mock, store := newMockStore(t)
	archiveID, fundID := uuid.New(), uuid.New()

	mock.ExpectQuery("INSERT INTO catalog.funds").
		WithArgs(pgxmock.AnyArg(), archiveID, "37").
		WillReturnRows(pgxmock.NewRows([]string{"id", "created"}).AddRow(fundID, true))

	up, err := store.UpsertFund(context.Background(), archiveID, "37")
	require.NoError(t, err)
	assert.Equal(t, fundID, up.ID)
	assert.True(t, up.Created)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertDescription_Existing(t *testing.T) {
	mock, store := newMockStore(t)
	fundID, descID := uuid.New(), uuid.New()

	mock.ExpectQuery("INSERT INTO catalog.descriptions").
		WithArgs(pgxmock.AnyArg(), fundID, "3").
		WillReturnRows(pgxmock.NewRows([]string{"id", "created"}).AddRow(descID, false))

	up, err := store.UpsertDescription(context.Background(), fundID, "3")
	require.NoError(t, err)
	assert.Equal(t, descID, up.ID)
	assert.False(t, up.Created)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertCase(t *testing.T) {
	mock, store := newMockStore(t)
	descID, caseID := uuid.New(), uuid.New()

	mock.ExpectQuery("INSERT INTO catalog.cases").
		WithArgs(pgxmock.AnyArg(), descID, "129", "Метрична книга", "ДАХмО/37/3/129").
		WillReturnRows(pgxmock.NewRows([]string{"id", "created"}).AddRow(caseID, true))

	up, err := store.UpsertCase(context.Background(), descID, "129", "Метрична книга", "ДАХмО/37/3/129")
	require.NoError(t, err)
	assert.Equal(t, caseID, up.ID)
	assert.True(t, up.Created)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindFund_NotFound(t *testing.T) {
	mock, store := newMockStore(t)
	archiveID := uuid.New()

	mock.ExpectQuery("SELECT id, archive_id, code, title FROM catalog.funds").
		WithArgs("37", archiveID).
		WillReturnError(pgx.ErrNoRows)

	f, err := store.FindFund(context.Background(), archiveID, "37")
	require.NoError(t, err)
	assert.Nil(t, f)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindCase_Found(t *testing.T) {
	mock, store := newMockStore(t)
	descID, caseID := uuid.New(), uuid.New()

	mock.ExpectQuery("SELECT id, description_id, code, title, full_code FROM catalog.cases").
		WithArgs("129", descID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "description_id", "code", "title", "full_code"}).
			AddRow(caseID, descID, "129", "Справа 129", "ДАХмО/37/3/129"))

	c, err := store.FindCase(context.Background(), descID, "129")
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, caseID, c.ID)
	assert.Equal(t, "ДАХмО/37/3/129", c.FullCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertCaseOnlineCopy(t *testing.T) {
	mock, store := newMockStore(t)
	resourceID, caseID, copyID := uuid.New(), uuid.New(), uuid.New()
	params := []byte(`{"dgs":"105512345"}`)

	mock.ExpectQuery("INSERT INTO catalog.case_online_copies").
		WithArgs(pgxmock.AnyArg(), resourceID, caseID, "https://api.example/v2/", params, "https://example/?dgs=105512345").
		WillReturnRows(pgxmock.NewRows([]string{"id", "created"}).AddRow(copyID, true))

	up, err := store.UpsertCaseOnlineCopy(context.Background(), resourceID, caseID,
		"https://api.example/v2/", params, "https://example/?dgs=105512345")
	require.NoError(t, err)
	assert.Equal(t, copyID, up.ID)
	assert.True(t, up.Created)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCountCaseYears(t *testing.T) {
	mock, store := newMockStore(t)
	caseID := uuid.New()

	mock.ExpectQuery(`SELECT count\(\*\) FROM catalog.case_years`).
		WithArgs(caseID).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(1))

	n, err := store.CountCaseYears(context.Background(), caseID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateCaseYear(t *testing.T) {
	mock, store := newMockStore(t)
	caseID := uuid.New()

	mock.ExpectExec("INSERT INTO catalog.case_years").
		WithArgs(pgxmock.AnyArg(), caseID, 1820, 1825).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, store.CreateCaseYear(context.Background(), caseID, 1820, 1825))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStampCataloged(t *testing.T) {
	mock, store := newMockStore(t)
	ids := []uuid.UUID{uuid.New(), uuid.New()}
	at := time.Now().Add(time.Minute)

	mock.ExpectExec("UPDATE catalog.fs_items SET cataloged_at").
		WithArgs(ids, at).
		WillReturnResult(pgxmock.NewResult("UPDATE", 2))

	require.NoError(t, store.StampCataloged(context.Background(), ids, at))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStampCataloged_NoIDs(t *testing.T) {
	mock, store := newMockStore(t)

	// No SQL is issued for an empty batch.
	require.NoError(t, store.StampCataloged(context.Background(), nil, time.Now()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreWithTx(t *testing.T) {
	mock, store := newMockStore(t)
	archiveID, fundID := uuid.New(), uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO catalog.funds").
		WithArgs(pgxmock.AnyArg(), archiveID, "37").
		WillReturnRows(pgxmock.NewRows([]string{"id", "created"}).AddRow(fundID, true))
	mock.ExpectCommit()

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	up, err := store.WithTx(tx).UpsertFund(context.Background(), archiveID, "37")
	require.NoError(t, err)
	assert.Equal(t, fundID, up.ID)

	require.NoError(t, tx.Commit(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
