package main

import (
	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/duckarchive/inspector-cli/internal/catalog"
)

var (
	checkArchive     string
	checkFund        string
	checkDescription string
	checkCase        string
	checkOrigFund    string
	checkOrigDesc    string
	checkOrigCase    string
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Preview a manual structure change",
	Long: "Checks which hierarchy levels a proposed structure would create, " +
		"without writing. Pass original node ids to preview a relation transfer.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		pool, err := catalogPool(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		original, err := originalRefs(checkOrigFund, checkOrigDesc, checkOrigCase)
		if err != nil {
			return err
		}

		result, err := catalog.NewStore(pool).CheckStructure(ctx, original, catalog.ProposedRefs{
			ArchiveCode:     checkArchive,
			FundCode:        checkFund,
			DescriptionCode: checkDescription,
			CaseCode:        checkCase,
		})
		if err != nil {
			return err
		}
		return printJSON(cmd, result)
	},
}

func init() {
	checkCmd.Flags().StringVar(&checkArchive, "archive", "", "archive code (required)")
	checkCmd.Flags().StringVar(&checkFund, "fund", "", "fund code")
	checkCmd.Flags().StringVar(&checkDescription, "description", "", "description code")
	checkCmd.Flags().StringVar(&checkCase, "case", "", "case code")
	checkCmd.Flags().StringVar(&checkOrigFund, "original-fund", "", "id of the fund being replaced")
	checkCmd.Flags().StringVar(&checkOrigDesc, "original-description", "", "id of the description being replaced")
	checkCmd.Flags().StringVar(&checkOrigCase, "original-case", "", "id of the case being replaced")
	_ = checkCmd.MarkFlagRequired("archive")
	rootCmd.AddCommand(checkCmd)
}

func originalRefs(fund, desc, caseID string) (catalog.OriginalRefs, error) {
	var refs catalog.OriginalRefs
	parse := func(s, name string, dst **uuid.UUID) error {
		if s == "" {
			return nil
		}
		id, err := uuid.Parse(s)
		if err != nil {
			return eris.Wrapf(err, "parse %s id", name)
		}
		*dst = &id
		return nil
	}
	if err := parse(fund, "original fund", &refs.FundID); err != nil {
		return refs, err
	}
	if err := parse(desc, "original description", &refs.DescriptionID); err != nil {
		return refs, err
	}
	if err := parse(caseID, "original case", &refs.CaseID); err != nil {
		return refs, err
	}
	return refs, nil
}
