package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/duckarchive/inspector-cli/internal/catalog"
)

var itemsLimit int

var itemsCmd = &cobra.Command{
	Use:   "items",
	Short: "List fresh source items",
	Long:  "Lists source items never cataloged or updated upstream since their last cataloging.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		pool, err := catalogPool(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		limit := itemsLimit
		if limit <= 0 {
			limit = cfg.Import.FetchLimit
		}

		items, err := catalog.NewStore(pool).ListFreshItems(ctx, limit)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, it := range items {
			fmt.Fprintf(out, "%s\t%s\t%s\t%s\t%s\n",
				it.ID, it.ArchiveCode, it.DGS, it.Volume, it.Title)
		}

		zap.L().Info("fresh items listed", zap.Int("count", len(items)))
		return nil
	},
}

func init() {
	itemsCmd.Flags().IntVar(&itemsLimit, "limit", 0, "max items to list (default from config)")
	rootCmd.AddCommand(itemsCmd)
}
