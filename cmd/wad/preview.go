package main

import (
	"fmt"

	"github.com/Zuo-Peng/wa-digest/internal/apperr"
	"github.com/Zuo-Peng/wa-digest/internal/config"
	"github.com/Zuo-Peng/wa-digest/internal/index"
	"github.com/Zuo-Peng/wa-digest/internal/render"
	"github.com/spf13/cobra"
)

func previewCmd() *cobra.Command {
	var hitSectionID int
	var context int
	var query string
	var width int

	cmd := &cobra.Command{
		Use:   "preview <summaryKey>",
		Short: "Preview a summary with context around a hit section",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig()
			if err != nil {
				return err
			}

			db, err := openExistingIndex(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			out, _, err := render.RenderSummary(db, args[0], render.Options{
				HitSectionID: hitSectionID,
				Context:      context,
				Width:        width,
				Query:        query,
			})
			if err != nil {
				return apperr.NotFound(err.Error(), err)
			}

			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		},
	}

	cmd.Flags().IntVar(&hitSectionID, "hit", -1, "Section ID to highlight")
	cmd.Flags().IntVar(&context, "context", -1, "Sections before/after hit to show (-1 = all)")
	cmd.Flags().StringVar(&query, "query", "", "Search query for keyword highlighting")
	cmd.Flags().IntVar(&width, "width", 0, "Wrap width (0 = no wrap)")

	return cmd
}

// openExistingIndex opens the index without rescanning, for commands fzf
// calls on every keystroke.
func openExistingIndex(cfg *config.Config) (*index.DB, error) {
	db, err := index.OpenDB(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	return db, nil
}
