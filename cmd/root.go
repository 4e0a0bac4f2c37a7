package main

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/duckarchive/inspector-cli/internal/config"
	"github.com/duckarchive/inspector-cli/internal/db"
	"github.com/duckarchive/inspector-cli/internal/fsimport"
	"github.com/duckarchive/inspector-cli/internal/fsimport/parser"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "inspector",
	Short: "Archival catalog importer",
	Long:  "Parses FamilySearch archival references and reconciles them into the archive → fund → description → case catalog in PostgreSQL.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// catalogPool validates the store configuration and opens the pool.
func catalogPool(ctx context.Context) (*pgxpool.Pool, error) {
	if err := cfg.Validate("db"); err != nil {
		return nil, err
	}
	return db.Connect(ctx, cfg.Store.DatabaseURL)
}

// loadParsers builds the dispatch chain, including the archive-specific
// fixed rules when a rules file is configured.
func loadParsers() ([]parser.Parser, error) {
	rules, err := parser.LoadRules(cfg.Import.RulesPath)
	if err != nil {
		return nil, eris.Wrap(err, "load fixed rules")
	}
	return parser.Chain(rules), nil
}

// importOptions resolves reconciler options from config.
func importOptions() (fsimport.Options, error) {
	resourceID, err := uuid.Parse(cfg.Import.ResourceID)
	if err != nil {
		return fsimport.Options{}, eris.Wrap(err, "parse import.resource_id")
	}
	return fsimport.Options{
		ChunkSize:   cfg.Import.ChunkSize,
		ResourceID:  resourceID,
		APIURL:      cfg.Import.APIURL,
		URLTemplate: cfg.Import.URLTemplate,
	}, nil
}
