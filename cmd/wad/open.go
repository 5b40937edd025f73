package main

import (
	"github.com/Zuo-Peng/wa-digest/internal/open"
	"github.com/spf13/cobra"
)

func openCmd() *cobra.Command {
	var hitSectionID int

	cmd := &cobra.Command{
		Use:   "open <summaryKey>",
		Short: "Open the summary file in $EDITOR at the hit section",
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

			return open.OpenSummary(db, args[0], hitSectionID)
		},
	}

	cmd.Flags().IntVar(&hitSectionID, "hit", -1, "Section ID to jump to")

	return cmd
}
