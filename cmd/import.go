package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/duckarchive/inspector-cli/internal/catalog"
	"github.com/duckarchive/inspector-cli/internal/fsimport"
)

var (
	importDryRun bool
	importLimit  int
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Reconcile fresh source items into the catalog",
	Long: "Fetches fresh source items, parses their archival references and " +
		"upserts funds, descriptions, cases, online copies and year ranges. " +
		"With --dry-run, reports what the import would create without writing.",
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

		limit := importLimit
		if limit <= 0 {
			limit = cfg.Import.FetchLimit
		}

		store := catalog.NewStore(pool)
		items, err := store.ListFreshItems(ctx, limit)
		if err != nil {
			return err
		}

		parsed, unparsed := fsimport.ParseItems(items, parsers)
		zap.L().Info("batch parsed",
			zap.Int("fetched", len(items)),
			zap.Int("parsed", len(parsed)),
			zap.Int("unparsed", len(unparsed)),
		)

		if importDryRun {
			stats, err := store.CheckImport(ctx, importRefs(parsed))
			if err != nil {
				return err
			}
			return printJSON(cmd, stats)
		}

		opts, err := importOptions()
		if err != nil {
			return err
		}

		res, err := fsimport.NewReconciler(pool, opts).Reconcile(ctx, parsed)
		if err != nil {
			return err
		}

		zap.L().Info("import complete",
			zap.Int("processed", res.Processed),
			zap.Int("failed", res.Failed),
			zap.Int("cataloged", len(res.CatalogedIDs)),
		)
		return printJSON(cmd, res)
	},
}

func init() {
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "report pending changes without writing")
	importCmd.Flags().IntVar(&importLimit, "limit", 0, "max items to fetch (default from config)")
	rootCmd.AddCommand(importCmd)
}

// importRefs flattens parsed codes into per-level references for the import
// preview, splitting each code exactly the way the reconciler does.
func importRefs(parsed []fsimport.ParsedItem) []catalog.ImportRef {
	var refs []catalog.ImportRef
	for _, p := range parsed {
		for _, code := range p.Codes {
			fund, desc, caseCode := fsimport.SplitCode(code, p.ArchiveCode)
			refs = append(refs, catalog.ImportRef{
				ArchiveCode:     p.ArchiveCode,
				FundCode:        fund,
				DescriptionCode: desc,
				CaseCode:        caseCode,
			})
		}
	}
	return refs
}

func printJSON(cmd *cobra.Command, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(b))
	return nil
}
