package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/duckarchive/inspector-cli/internal/catalog"
	"github.com/duckarchive/inspector-cli/internal/fsimport"
	"github.com/duckarchive/inspector-cli/internal/report"
)

var (
	exportOut   string
	exportLimit int
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export unparsed fresh items to XLSX for manual triage",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		pool, err := catalogPool(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		parsers, err := loadParsers()
		if err != nil {
			return err
		}

		limit := exportLimit
		if limit <= 0 {
			limit = cfg.Import.FetchLimit
		}

		items, err := catalog.NewStore(pool).ListFreshItems(ctx, limit)
		if err != nil {
			return err
		}

		_, unparsed := fsimport.ParseItems(items, parsers)

		if err := report.WriteTriageXLSX(exportOut, unparsed); err != nil {
			return err
		}

		zap.L().Info("triage export written",
			zap.String("out", exportOut),
			zap.Int("fetched", len(items)),
			zap.Int("unparsed", len(unparsed)),
		)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportOut, "out", "triage.xlsx", "output XLSX path")
	exportCmd.Flags().IntVar(&exportLimit, "limit", 0, "max items to fetch (default from config)")
	rootCmd.AddCommand(exportCmd)
}
