package main

import (
	"fmt"

	"github.com/Zuo-Peng/wa-digest/internal/search"
	"github.com/Zuo-Peng/wa-digest/internal/tui"
	"github.com/spf13/cobra"
)

func listCmd() *cobra.Command {
	var since string
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Browse all weekly summaries, newest first",
		Long:  `Opens a TUI panel showing all indexed summaries (newest first). Type to search their sections. Without a terminal, prints one summary per line.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openIndex()
			if err != nil {
				return err
			}
			defer db.Close()

			opts := search.Options{
				Since: since,
				Limit: limit,
			}

			if stdoutIsTerminal() {
				return tui.RunList(db, opts)
			}
			results, err := search.ListAll(db, opts)
			if err != nil {
				return err
			}
			for _, r := range results {
				fmt.Printf("%s\t%s\t%s\n", r.SummaryKey, tsvField(r.Title), r.FilePath)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&since, "since", "", "Only weeks ending on or after date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&limit, "limit", 0, "Max results (0 = no limit)")

	return cmd
}
