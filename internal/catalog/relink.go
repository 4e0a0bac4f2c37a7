package catalog

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/duckarchive/inspector-cli/internal/db"
)

// relinkChunkSize bounds one bulk upsert so the temp-table COPY stays small.
const relinkChunkSize = 500

type relinkRow struct {
	id        uuid.UUID
	caseID    uuid.UUID
	apiURL    string
	apiParams []byte
	dgs       string
}

// RelinkCaseOnlineCopies recomputes the public URL of every case online copy
// belonging to a resource from the current URL template, in bulk chunks.
// Returns the number of copies rewritten.
func RelinkCaseOnlineCopies(ctx context.Context, pool db.Pool, resourceID uuid.UUID, urlTemplate string) (int64, error) {
	log := zap.L().With(zap.String("component", "catalog.relink"))

	rows, err := pool.Query(ctx, `
		SELECT id, case_id, api_url, api_params, COALESCE(api_params->>'dgs', '')
		FROM catalog.case_online_copies
		WHERE resource_id = $1`,
		resourceID,
	)
	if err != nil {
		return 0, eris.Wrap(err, "catalog: query case online copies")
	}
	defer rows.Close()

	var copies []relinkRow
	for rows.Next() {
		var r relinkRow
		if err := rows.Scan(&r.id, &r.caseID, &r.apiURL, &r.apiParams, &r.dgs); err != nil {
			return 0, eris.Wrap(err, "catalog: scan case online copy")
		}
		copies = append(copies, r)
	}
	if err := rows.Err(); err != nil {
		return 0, eris.Wrap(err, "catalog: read case online copies")
	}

	cfg := db.UpsertConfig{
		Table:        "catalog.case_online_copies",
		Columns:      []string{"id", "resource_id", "case_id", "api_url", "api_params", "url"},
		ConflictKeys: []string{"id"},
		UpdateCols:   []string{"url"},
	}

	var total int64
	for start := 0; start < len(copies); start += relinkChunkSize {
		end := start + relinkChunkSize
		if end > len(copies) {
			end = len(copies)
		}

		chunk := make([][]any, 0, end-start)
		for _, r := range copies[start:end] {
			chunk = append(chunk, []any{
				r.id, resourceID, r.caseID, r.apiURL, r.apiParams,
				fmt.Sprintf(urlTemplate, r.dgs),
			})
		}

		n, err := db.BulkUpsert(ctx, pool, cfg, chunk)
		if err != nil {
			return total, eris.Wrap(err, "catalog: relink chunk")
		}
		total += n

		log.Info("relinked online copies", zap.Int("chunk", len(chunk)), zap.Int64("total", total))
	}

	return total, nil
}
