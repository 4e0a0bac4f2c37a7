package catalog

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"

	"github.com/duckarchive/inspector-cli/internal/db"
)

// Store provides read/write operations over the catalog hierarchy.
type Store struct {
	q db.Querier
}

// NewStore creates a store over a pool or an open transaction.
func NewStore(q db.Querier) *Store {
	return &Store{q: q}
}

// WithTx returns a store bound to the given transaction.
func (s *Store) WithTx(tx pgx.Tx) *Store {
	return &Store{q: tx}
}

// Upserted reports the row id and whether the upsert inserted a new row.
type Upserted struct {
	ID      uuid.UUID
	Created bool
}

// ArchiveByCode looks up an archive by its public code. Returns (nil, nil)
// when no archive has that code.
func (s *Store) ArchiveByCode(ctx context.Context, code string) (*Archive, error) {
	a := &Archive{}
	err := s.q.QueryRow(ctx,
		`SELECT id, code, title FROM catalog.archives WHERE code = $1`,
		code,
	).Scan(&a.ID, &a.Code, &a.Title)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "catalog: archive by code %s", code)
	}
	return a, nil
}

// ListFreshItems returns source items never cataloged or updated upstream
// since their last cataloging, newest projects first.
func (s *Store) ListFreshItems(ctx context.Context, limit int) ([]SourceItem, error) {
	rows, err := s.q.Query(ctx, `
		SELECT i.id, i.project_id, a.id, COALESCE(a.code, ''),
		       i.dgs, i.volume, i.volumes, i.archival_reference,
		       i.title, i.date_range, i.cataloged_at
		FROM catalog.fs_items i
		JOIN catalog.projects p ON p.id = i.project_id
		LEFT JOIN catalog.archives a ON a.id = p.archive_id
		WHERE i.cataloged_at IS NULL OR i.updated_at > i.cataloged_at
		ORDER BY i.project_id DESC
		LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "catalog: query fresh items")
	}
	defer rows.Close()

	var items []SourceItem
	for rows.Next() {
		var it SourceItem
		if err := rows.Scan(
			&it.ID, &it.ProjectID, &it.ArchiveID, &it.ArchiveCode,
			&it.DGS, &it.Volume, &it.Volumes, &it.ArchivalReference,
			&it.Title, &it.DateRange, &it.CatalogedAt,
		); err != nil {
			return nil, eris.Wrap(err, "catalog: scan fresh item")
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// UpsertFund inserts a fund or returns the existing one by its natural key.
// A freshly created fund gets the default title "Фонд <code>".
func (s *Store) UpsertFund(ctx context.Context, archiveID uuid.UUID, code string) (Upserted, error) {
	var up Upserted
	err := s.q.QueryRow(ctx, `
		INSERT INTO catalog.funds (id, archive_id, code, title)
		VALUES ($1, $2, $3, 'Фонд ' || $3)
		ON CONFLICT (code, archive_id) DO UPDATE SET code = EXCLUDED.code
		RETURNING id, (xmax = 0) AS created`,
		uuid.New(), archiveID, code,
	).Scan(&up.ID, &up.Created)
	if err != nil {
		return up, eris.Wrapf(err, "catalog: upsert fund %s", code)
	}
	return up, nil
}

// UpsertDescription inserts a description or returns the existing one.
// A freshly created description gets the default title "Опис <code>".
func (s *Store) UpsertDescription(ctx context.Context, fundID uuid.UUID, code string) (Upserted, error) {
	var up Upserted
	err := s.q.QueryRow(ctx, `
		INSERT INTO catalog.descriptions (id, fund_id, code, title)
		VALUES ($1, $2, $3, 'Опис ' || $3)
		ON CONFLICT (code, fund_id) DO UPDATE SET code = EXCLUDED.code
		RETURNING id, (xmax = 0) AS created`,
		uuid.New(), fundID, code,
	).Scan(&up.ID, &up.Created)
	if err != nil {
		return up, eris.Wrapf(err, "catalog: upsert description %s", code)
	}
	return up, nil
}

// UpsertCase inserts a case or returns the existing one. On conflict only
// the title is touched, and only when a non-empty title is provided; an
// empty title on insert falls back to "Справа <code>".
func (s *Store) UpsertCase(ctx context.Context, descriptionID uuid.UUID, code, title, fullCode string) (Upserted, error) {
	var up Upserted
	err := s.q.QueryRow(ctx, `
		INSERT INTO catalog.cases (id, description_id, code, title, full_code)
		VALUES ($1, $2, $3, COALESCE(NULLIF($4, ''), 'Справа ' || $3), $5)
		ON CONFLICT (code, description_id)
		DO UPDATE SET title = COALESCE(NULLIF($4, ''), catalog.cases.title)
		RETURNING id, (xmax = 0) AS created`,
		uuid.New(), descriptionID, code, title, fullCode,
	).Scan(&up.ID, &up.Created)
	if err != nil {
		return up, eris.Wrapf(err, "catalog: upsert case %s", code)
	}
	return up, nil
}

// FindFund returns (nil, nil) when the fund does not exist under the archive.
func (s *Store) FindFund(ctx context.Context, archiveID uuid.UUID, code string) (*Fund, error) {
	f := &Fund{}
	err := s.q.QueryRow(ctx,
		`SELECT id, archive_id, code, title FROM catalog.funds WHERE code = $1 AND archive_id = $2`,
		code, archiveID,
	).Scan(&f.ID, &f.ArchiveID, &f.Code, &f.Title)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "catalog: find fund %s", code)
	}
	return f, nil
}

// FindDescription returns (nil, nil) when the description does not exist
// under the fund.
func (s *Store) FindDescription(ctx context.Context, fundID uuid.UUID, code string) (*Description, error) {
	d := &Description{}
	err := s.q.QueryRow(ctx,
		`SELECT id, fund_id, code, title FROM catalog.descriptions WHERE code = $1 AND fund_id = $2`,
		code, fundID,
	).Scan(&d.ID, &d.FundID, &d.Code, &d.Title)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "catalog: find description %s", code)
	}
	return d, nil
}

// FindCase returns (nil, nil) when the case does not exist under the
// description.
func (s *Store) FindCase(ctx context.Context, descriptionID uuid.UUID, code string) (*Case, error) {
	c := &Case{}
	err := s.q.QueryRow(ctx,
		`SELECT id, description_id, code, title, full_code FROM catalog.cases WHERE code = $1 AND description_id = $2`,
		code, descriptionID,
	).Scan(&c.ID, &c.DescriptionID, &c.Code, &c.Title, &c.FullCode)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "catalog: find case %s", code)
	}
	return c, nil
}

// UpsertCaseOnlineCopy links a digitized resource to a case; re-linking the
// same resource refreshes the stored URLs.
func (s *Store) UpsertCaseOnlineCopy(ctx context.Context, resourceID, caseID uuid.UUID, apiURL string, apiParams []byte, url string) (Upserted, error) {
	var up Upserted
	err := s.q.QueryRow(ctx, `
		INSERT INTO catalog.case_online_copies (id, resource_id, case_id, api_url, api_params, url)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (resource_id, case_id, api_params)
		DO UPDATE SET api_url = EXCLUDED.api_url, url = EXCLUDED.url
		RETURNING id, (xmax = 0) AS created`,
		uuid.New(), resourceID, caseID, apiURL, apiParams, url,
	).Scan(&up.ID, &up.Created)
	if err != nil {
		return up, eris.Wrap(err, "catalog: upsert case online copy")
	}
	return up, nil
}

// UpsertDescriptionOnlineCopy links a digitized resource to a description.
func (s *Store) UpsertDescriptionOnlineCopy(ctx context.Context, resourceID, descriptionID uuid.UUID, apiURL string, apiParams []byte, url string) (Upserted, error) {
	var up Upserted
	err := s.q.QueryRow(ctx, `
		INSERT INTO catalog.description_online_copies (id, resource_id, description_id, api_url, api_params, url)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (resource_id, description_id, api_params)
		DO UPDATE SET api_url = EXCLUDED.api_url, url = EXCLUDED.url
		RETURNING id, (xmax = 0) AS created`,
		uuid.New(), resourceID, descriptionID, apiURL, apiParams, url,
	).Scan(&up.ID, &up.Created)
	if err != nil {
		return up, eris.Wrap(err, "catalog: upsert description online copy")
	}
	return up, nil
}

// CountCaseYears returns the number of year ranges attached to a case.
func (s *Store) CountCaseYears(ctx context.Context, caseID uuid.UUID) (int, error) {
	var n int
	err := s.q.QueryRow(ctx,
		`SELECT count(*) FROM catalog.case_years WHERE case_id = $1`,
		caseID,
	).Scan(&n)
	if err != nil {
		return 0, eris.Wrap(err, "catalog: count case years")
	}
	return n, nil
}

// CountDescriptionYears returns the number of year ranges attached to a
// description.
func (s *Store) CountDescriptionYears(ctx context.Context, descriptionID uuid.UUID) (int, error) {
	var n int
	err := s.q.QueryRow(ctx,
		`SELECT count(*) FROM catalog.description_years WHERE description_id = $1`,
		descriptionID,
	).Scan(&n)
	if err != nil {
		return 0, eris.Wrap(err, "catalog: count description years")
	}
	return n, nil
}

// CreateCaseYear attaches a year range to a case.
func (s *Store) CreateCaseYear(ctx context.Context, caseID uuid.UUID, startYear, endYear int) error {
	_, err := s.q.Exec(ctx,
		`INSERT INTO catalog.case_years (id, case_id, start_year, end_year) VALUES ($1, $2, $3, $4)`,
		uuid.New(), caseID, startYear, endYear,
	)
	if err != nil {
		return eris.Wrap(err, "catalog: create case year")
	}
	return nil
}

// CreateDescriptionYear attaches a year range to a description.
func (s *Store) CreateDescriptionYear(ctx context.Context, descriptionID uuid.UUID, startYear, endYear int) error {
	_, err := s.q.Exec(ctx,
		`INSERT INTO catalog.description_years (id, description_id, start_year, end_year) VALUES ($1, $2, $3, $4)`,
		uuid.New(), descriptionID, startYear, endYear,
	)
	if err != nil {
		return eris.Wrap(err, "catalog: create description year")
	}
	return nil
}

// StampCataloged marks source items as reconciled. The timestamp is expected
// to carry a small forward skew so freshness queries comparing updated_at
// against cataloged_at do not immediately re-select the items.
func (s *Store) StampCataloged(ctx context.Context, ids []uuid.UUID, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := s.q.Exec(ctx,
		`UPDATE catalog.fs_items SET cataloged_at = $2 WHERE id = ANY($1)`,
		ids, at,
	)
	if err != nil {
		return eris.Wrap(err, "catalog: stamp cataloged")
	}
	return nil
}
