package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/duckarchive/inspector-cli/internal/catalog"
)

var (
	structureArchive     string
	structureFund        string
	structureDescription string
	structureCase        string
)

var structureCmd = &cobra.Command{
	Use:   "structure",
	Short: "Apply a manual structure change",
	Long: "Creates the proposed fund, description and case down the ladder, " +
		"reusing levels that already exist. The archive itself is never created.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		pool, err := catalogPool(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		ids, err := catalog.NewStore(pool).ApplyStructure(ctx, catalog.ProposedRefs{
			ArchiveCode:     structureArchive,
			FundCode:        structureFund,
			DescriptionCode: structureDescription,
			CaseCode:        structureCase,
		})
		if err != nil {
			return err
		}

		zap.L().Info("structure applied", zap.String("archive", structureArchive))
		return printJSON(cmd, ids)
	},
}

func init() {
	structureCmd.Flags().StringVar(&structureArchive, "archive", "", "archive code (required)")
	structureCmd.Flags().StringVar(&structureFund, "fund", "", "fund code")
	structureCmd.Flags().StringVar(&structureDescription, "description", "", "description code")
	structureCmd.Flags().StringVar(&structureCase, "case", "", "case code")
	_ = structureCmd.MarkFlagRequired("archive")
	rootCmd.AddCommand(structureCmd)
}
