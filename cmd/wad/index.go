package main

import (
	"fmt"

	"github.com/Zuo-Peng/wa-digest/internal/index"
	"github.com/spf13/cobra"
)

func indexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "index",
		Short: "Scan and index the weekly summaries for search",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}

			db, err := index.OpenDB(cfg.DBPath)
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			defer db.Close()

			fmt.Fprintf(cmd.ErrOrStderr(), "Scanning %s...\n", cfg.SummariesDir)

			stats, err := index.IndexAll(db, cfg.SummariesDir, log)
			if err != nil {
				return fmt.Errorf("index: %w", err)
			}

			fmt.Fprintf(cmd.ErrOrStderr(), "Done. %s\n", stats)
			return nil
		},
	}
}

// openIndex opens the search index and brings it up to date.
func openIndex() (*index.DB, error) {
	cfg, log, err := loadConfig()
	if err != nil {
		return nil, err
	}
	db, err := index.OpenDB(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := index.IndexAll(db, cfg.SummariesDir, log); err != nil {
		log.Warn("index update failed", "err", err)
	}
	return db, nil
}
