package main

import (
	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/duckarchive/inspector-cli/internal/catalog"
)

var relinkResource string

var relinkCmd = &cobra.Command{
	Use:   "relink",
	Short: "Recompute online copy URLs from the current URL template",
	Long: "Rewrites the public URL of every case online copy belonging to a " +
		"resource, in bulk chunks. Run after the URL template changes.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		resource := relinkResource
		if resource == "" {
			resource = cfg.Import.ResourceID
		}
		resourceID, err := uuid.Parse(resource)
		if err != nil {
			return eris.Wrap(err, "parse resource id")
		}

		pool, err := catalogPool(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		total, err := catalog.RelinkCaseOnlineCopies(ctx, pool, resourceID, cfg.Import.URLTemplate)
		if err != nil {
			return err
		}

		zap.L().Info("relink complete", zap.Int64("rewritten", total))
		return nil
	},
}

func init() {
	relinkCmd.Flags().StringVar(&relinkResource, "resource", "", "resource id (default from config)")
	rootCmd.AddCommand(relinkCmd)
}
