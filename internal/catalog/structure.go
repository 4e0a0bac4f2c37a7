package catalog

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
)

// Structure operations preview and apply manual hierarchy changes. The depth
// of a request is derived from the deepest code provided: 1 = archive only,
// 2 = fund, 3 = description, 4 = case.

// OriginalRefs optionally names the nodes a proposed structure replaces, so
// the preview can report how many relations a transfer would carry over.
type OriginalRefs struct {
	FundID        *uuid.UUID `json:"fund_id,omitempty"`
	DescriptionID *uuid.UUID `json:"description_id,omitempty"`
	CaseID        *uuid.UUID `json:"case_id,omitempty"`
}

// ProposedRefs is the structure to create, addressed by public codes.
type ProposedRefs struct {
	ArchiveCode     string `json:"archive_code"`
	FundCode        string `json:"fund_code,omitempty"`
	DescriptionCode string `json:"description_code,omitempty"`
	CaseCode        string `json:"case_code,omitempty"`
}

// RelationCounts summarizes what hangs off a node being replaced.
type RelationCounts struct {
	Children int `json:"children,omitempty"`
	Years    int `json:"years,omitempty"`
	Copies   int `json:"copies,omitempty"`
}

// DiffItem is one entity the apply step would create.
type DiffItem struct {
	Entity    string          `json:"entity"`
	Action    string          `json:"action"`
	Code      string          `json:"code"`
	Message   string          `json:"message"`
	Relations *RelationCounts `json:"relations,omitempty"`
}

// CheckResult is the structure preview: either a list of pending creations
// or the validation errors that block them.
type CheckResult struct {
	Valid     bool       `json:"valid"`
	DiffItems []DiffItem `json:"diff_items"`
	Errors    []string   `json:"errors,omitempty"`
	Deps      int        `json:"deps"`
}

func invalid(deps int, errs ...string) *CheckResult {
	return &CheckResult{Valid: false, DiffItems: []DiffItem{}, Errors: errs, Deps: deps}
}

func structureDeps(p ProposedRefs) int {
	deps := 1
	if p.FundCode != "" {
		deps = 2
	}
	if p.DescriptionCode != "" {
		deps = 3
	}
	if p.CaseCode != "" {
		deps = 4
	}
	return deps
}

// CheckStructure previews which hierarchy levels a proposed structure would
// create. The archive must already exist; a proposal whose deepest level
// already exists is rejected so manual edits never silently merge.
func (s *Store) CheckStructure(ctx context.Context, original OriginalRefs, proposed ProposedRefs) (*CheckResult, error) {
	deps := structureDeps(proposed)

	if proposed.ArchiveCode == "" {
		return invalid(deps, "Код архіву обов'язковий"), nil
	}

	archive, err := s.ArchiveByCode(ctx, proposed.ArchiveCode)
	if err != nil {
		return nil, err
	}
	if archive == nil {
		return invalid(deps, "Архів з таким кодом не існує"), nil
	}

	// Walk the existing hierarchy strictly: a child only counts as existing
	// under the exact parent chain being proposed.
	var fund *Fund
	var description *Description
	var caseNode *Case
	if deps >= 2 {
		if fund, err = s.FindFund(ctx, archive.ID, proposed.FundCode); err != nil {
			return nil, err
		}
	}
	if deps >= 3 && fund != nil {
		if description, err = s.FindDescription(ctx, fund.ID, proposed.DescriptionCode); err != nil {
			return nil, err
		}
	}
	if deps >= 4 && description != nil {
		if caseNode, err = s.FindCase(ctx, description.ID, proposed.CaseCode); err != nil {
			return nil, err
		}
	}

	result := &CheckResult{Valid: true, DiffItems: []DiffItem{}, Deps: deps}

	switch deps {
	case 1:
		// Archive exists, nothing to create.

	case 2:
		if fund != nil {
			return invalid(deps, "Фонд з такими реквізитами вже існує"), nil
		}
		item := DiffItem{
			Entity:  "фонд",
			Action:  "create",
			Code:    proposed.FundCode,
			Message: fmt.Sprintf("Фонд %q буде створено в архіві %q", proposed.FundCode, proposed.ArchiveCode),
		}
		if original.FundID != nil {
			rel, err := s.fundRelations(ctx, *original.FundID)
			if err != nil {
				return nil, err
			}
			item.Message += ". Зв'язки будуть перенесені зі старого фонду"
			item.Relations = rel
		}
		result.DiffItems = append(result.DiffItems, item)

	case 3:
		if fund != nil && description != nil {
			return invalid(deps, "Опис з такими реквізитами вже існує"), nil
		}
		if fund == nil {
			result.DiffItems = append(result.DiffItems, DiffItem{
				Entity:  "фонд",
				Action:  "create",
				Code:    proposed.FundCode,
				Message: fmt.Sprintf("Фонд %q буде створено в архіві %q", proposed.FundCode, proposed.ArchiveCode),
			}, DiffItem{
				Entity:  "опис",
				Action:  "create",
				Code:    proposed.DescriptionCode,
				Message: fmt.Sprintf("Опис %q буде створено в новому фонді %q", proposed.DescriptionCode, proposed.FundCode),
			})
			break
		}
		item := DiffItem{
			Entity:  "опис",
			Action:  "create",
			Code:    proposed.DescriptionCode,
			Message: fmt.Sprintf("Опис %q буде створено в фонді %q архіву %q", proposed.DescriptionCode, proposed.FundCode, proposed.ArchiveCode),
		}
		if original.DescriptionID != nil {
			rel, err := s.descriptionRelations(ctx, *original.DescriptionID)
			if err != nil {
				return nil, err
			}
			item.Message += ". Зв'язки будуть перенесені зі старого опису"
			item.Relations = rel
		}
		result.DiffItems = append(result.DiffItems, item)

	case 4:
		if fund != nil && description != nil && caseNode != nil {
			return invalid(deps, "Справа з такими реквізитами вже існує"), nil
		}
		switch {
		case fund == nil:
			result.DiffItems = append(result.DiffItems, DiffItem{
				Entity:  "фонд",
				Action:  "create",
				Code:    proposed.FundCode,
				Message: fmt.Sprintf("Фонд %q буде створено в архіві %q", proposed.FundCode, proposed.ArchiveCode),
			}, DiffItem{
				Entity:  "опис",
				Action:  "create",
				Code:    proposed.DescriptionCode,
				Message: fmt.Sprintf("Опис %q буде створено в новому фонді %q", proposed.DescriptionCode, proposed.FundCode),
			}, DiffItem{
				Entity:  "справа",
				Action:  "create",
				Code:    proposed.CaseCode,
				Message: fmt.Sprintf("Справа %q буде створена в новому описі %q", proposed.CaseCode, proposed.DescriptionCode),
			})
		case description == nil:
			result.DiffItems = append(result.DiffItems, DiffItem{
				Entity:  "опис",
				Action:  "create",
				Code:    proposed.DescriptionCode,
				Message: fmt.Sprintf("Опис %q буде створено в фонді %q архіву %q", proposed.DescriptionCode, proposed.FundCode, proposed.ArchiveCode),
			}, DiffItem{
				Entity:  "справа",
				Action:  "create",
				Code:    proposed.CaseCode,
				Message: fmt.Sprintf("Справа %q буде створена в новому описі %q", proposed.CaseCode, proposed.DescriptionCode),
			})
		default:
			item := DiffItem{
				Entity:  "справа",
				Action:  "create",
				Code:    proposed.CaseCode,
				Message: fmt.Sprintf("Справа %q буде створена в описі %q фонду %q архіву %q", proposed.CaseCode, proposed.DescriptionCode, proposed.FundCode, proposed.ArchiveCode),
			}
			if original.CaseID != nil {
				rel, err := s.caseRelations(ctx, *original.CaseID)
				if err != nil {
					return nil, err
				}
				item.Message += ". Зв'язки будуть перенесені зі старої справи"
				item.Relations = rel
			}
			result.DiffItems = append(result.DiffItems, item)
		}
	}

	return result, nil
}

// AppliedIDs reports the node ids touched by ApplyStructure.
type AppliedIDs struct {
	ArchiveID     uuid.UUID  `json:"archive_id"`
	FundID        *uuid.UUID `json:"fund_id,omitempty"`
	DescriptionID *uuid.UUID `json:"description_id,omitempty"`
	CaseID        *uuid.UUID `json:"case_id,omitempty"`
}

// ApplyStructure creates the proposed hierarchy down the ladder, reusing
// levels that already exist. The archive itself is never created.
func (s *Store) ApplyStructure(ctx context.Context, proposed ProposedRefs) (*AppliedIDs, error) {
	deps := structureDeps(proposed)

	if proposed.ArchiveCode == "" {
		return nil, eris.New("Код архіву обов'язковий")
	}
	if deps >= 3 && proposed.FundCode == "" {
		return nil, eris.New("Код фонду обов'язковий")
	}
	if deps >= 4 && proposed.DescriptionCode == "" {
		return nil, eris.New("Код опису обов'язковий")
	}

	archive, err := s.ArchiveByCode(ctx, proposed.ArchiveCode)
	if err != nil {
		return nil, err
	}
	if archive == nil {
		return nil, eris.Errorf("Архів з кодом %q не існує", proposed.ArchiveCode)
	}

	ids := &AppliedIDs{ArchiveID: archive.ID}

	if deps < 2 {
		return ids, nil
	}
	fund, err := s.UpsertFund(ctx, archive.ID, proposed.FundCode)
	if err != nil {
		return nil, err
	}
	ids.FundID = &fund.ID

	if deps < 3 {
		return ids, nil
	}
	description, err := s.UpsertDescription(ctx, fund.ID, proposed.DescriptionCode)
	if err != nil {
		return nil, err
	}
	ids.DescriptionID = &description.ID

	if deps < 4 {
		return ids, nil
	}
	fullCode := fmt.Sprintf("%s/%s/%s/%s",
		proposed.ArchiveCode, proposed.FundCode, proposed.DescriptionCode, proposed.CaseCode)
	caseNode, err := s.UpsertCase(ctx, description.ID, proposed.CaseCode, "", fullCode)
	if err != nil {
		return nil, err
	}
	ids.CaseID = &caseNode.ID

	return ids, nil
}

func (s *Store) fundRelations(ctx context.Context, fundID uuid.UUID) (*RelationCounts, error) {
	rel := &RelationCounts{}
	err := s.q.QueryRow(ctx,
		`SELECT count(*) FROM catalog.descriptions WHERE fund_id = $1`,
		fundID,
	).Scan(&rel.Children)
	if err != nil {
		return nil, eris.Wrap(err, "catalog: count fund relations")
	}
	return rel, nil
}

func (s *Store) descriptionRelations(ctx context.Context, descriptionID uuid.UUID) (*RelationCounts, error) {
	rel := &RelationCounts{}
	err := s.q.QueryRow(ctx, `
		SELECT
			(SELECT count(*) FROM catalog.cases WHERE description_id = $1),
			(SELECT count(*) FROM catalog.description_years WHERE description_id = $1),
			(SELECT count(*) FROM catalog.description_online_copies WHERE description_id = $1)`,
		descriptionID,
	).Scan(&rel.Children, &rel.Years, &rel.Copies)
	if err != nil {
		return nil, eris.Wrap(err, "catalog: count description relations")
	}
	return rel, nil
}

func (s *Store) caseRelations(ctx context.Context, caseID uuid.UUID) (*RelationCounts, error) {
	rel := &RelationCounts{}
	err := s.q.QueryRow(ctx, `
		SELECT
			(SELECT count(*) FROM catalog.case_years WHERE case_id = $1),
			(SELECT count(*) FROM catalog.case_online_copies WHERE case_id = $1)`,
		caseID,
	).Scan(&rel.Years, &rel.Copies)
	if err != nil {
		return nil, eris.Wrap(err, "catalog: count case relations")
	}
	return rel, nil
}
