package catalog

import (
	"context"
)

// ImportRef is one parsed reference addressed by public codes, as produced by
// the auto-parser ("archive-fund-description-case", case optional).
type ImportRef struct {
	ArchiveCode     string
	FundCode        string
	DescriptionCode string
	CaseCode        string
}

// Bucket splits code paths by the action an import would take on them.
type Bucket struct {
	Create []string `json:"create"`
	Update []string `json:"update"`
}

// CheckStats reports per level what an import batch would do, without
// writing anything. Paths are full "archive-fund[-description[-case]]" codes
// so same-named nodes under different parents stay distinct.
type CheckStats struct {
	ArchivesMissing []string `json:"archives_missing,omitempty"`
	Funds           Bucket   `json:"funds"`
	Descriptions    Bucket   `json:"descriptions"`
	Cases           Bucket   `json:"cases"`
}

// CheckImport walks each reference down the existing hierarchy and buckets
// which levels an import would create or refresh. A missing level implies
// creation of everything beneath it. Each path is reported once no matter
// how many batch entries share it.
func (s *Store) CheckImport(ctx context.Context, refs []ImportRef) (*CheckStats, error) {
	stats := &CheckStats{}

	archives := map[string]*Archive{}
	funds := map[string]*Fund{}
	descriptions := map[string]*Description{}
	seen := map[string]bool{}

	record := func(bucket *[]string, path string) {
		if !seen[path] {
			seen[path] = true
			*bucket = append(*bucket, path)
		}
	}

	for _, ref := range refs {
		archive, ok := archives[ref.ArchiveCode]
		if !ok {
			var err error
			if archive, err = s.ArchiveByCode(ctx, ref.ArchiveCode); err != nil {
				return nil, err
			}
			archives[ref.ArchiveCode] = archive
		}
		if archive == nil {
			record(&stats.ArchivesMissing, ref.ArchiveCode)
			continue
		}
		if ref.FundCode == "" || ref.DescriptionCode == "" {
			continue
		}

		fundPath := ref.ArchiveCode + "-" + ref.FundCode
		descPath := fundPath + "-" + ref.DescriptionCode
		casePath := descPath + "-" + ref.CaseCode

		fund, ok := funds[fundPath]
		if !ok {
			var err error
			if fund, err = s.FindFund(ctx, archive.ID, ref.FundCode); err != nil {
				return nil, err
			}
			funds[fundPath] = fund
		}
		if fund == nil {
			record(&stats.Funds.Create, fundPath)
			record(&stats.Descriptions.Create, descPath)
			if ref.CaseCode != "" {
				record(&stats.Cases.Create, casePath)
			}
			continue
		}
		record(&stats.Funds.Update, fundPath)

		description, ok := descriptions[descPath]
		if !ok {
			var err error
			if description, err = s.FindDescription(ctx, fund.ID, ref.DescriptionCode); err != nil {
				return nil, err
			}
			descriptions[descPath] = description
		}
		if description == nil {
			record(&stats.Descriptions.Create, descPath)
			if ref.CaseCode != "" {
				record(&stats.Cases.Create, casePath)
			}
			continue
		}
		record(&stats.Descriptions.Update, descPath)

		if ref.CaseCode == "" {
			continue
		}
		caseNode, err := s.FindCase(ctx, description.ID, ref.CaseCode)
		if err != nil {
			return nil, err
		}
		if caseNode == nil {
			record(&stats.Cases.Create, casePath)
		} else {
			record(&stats.Cases.Update, casePath)
		}
	}

	return stats, nil
}
