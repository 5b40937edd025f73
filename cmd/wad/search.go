package main

import (
	"fmt"
	"strings"

	"github.com/Zuo-Peng/wa-digest/internal/search"
	"github.com/Zuo-Peng/wa-digest/internal/tui"
	"github.com/spf13/cobra"
)

const (
	sColorReset   = "\033[0m"
	sColorBoldRed = "\033[1;31m"
	sColorBlue    = "\033[1;34m"
	sColorDim     = "\033[2m"
)

func colorizeSnippet(snippet string) string {
	snippet = strings.ReplaceAll(snippet, ">>>", sColorBoldRed)
	snippet = strings.ReplaceAll(snippet, "<<<", sColorReset)
	return snippet
}

func tsvField(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func searchCmd() *cobra.Command {
	var since string
	var limit int

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Full-text search across the weekly summaries",
		Long: `Search indexed summaries using FTS5. On a terminal this opens the
interactive search; otherwise the output is TSV for fzf integration:
  summaryKey, sectionId, week, heading, snippet

Example shell function:
  wadf() {
    wad search "$*" | fzf \
      --ansi \
      --delimiter='\t' --with-nth=3.. \
      --preview 'wad preview {1} --hit {2} --context 1 --query {q}' \
      --preview-window=right:60%:wrap \
      --bind 'enter:execute(wad open {1} --hit {2})'
  }`,
		Args: cobra.ExactArgs(1),
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

			// Interactive TUI when stdout is a terminal; TSV output for pipes
			if stdoutIsTerminal() {
				return tui.Run(db, args[0], opts)
			}

			opts.Query = args[0]
			results, err := search.Search(db, opts)
			if err != nil {
				return err
			}

			if len(results) == 0 {
				fmt.Fprintln(cmd.ErrOrStderr(), "No results found.")
				return nil
			}

			for _, r := range results {
				heading := r.Heading
				if heading == "" {
					heading = r.Title
				}
				// first two fields (summaryKey, sectionID) stay plain for fzf {1} {2}
				fmt.Printf("%s\t%d\t%s%s → %s%s\t%s%s%s\t%s\n",
					r.SummaryKey,
					r.SectionID,
					sColorDim, r.StartDate, r.EndDate, sColorReset,
					sColorBlue, tsvField(heading), sColorReset,
					colorizeSnippet(tsvField(r.Snippet)),
				)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&since, "since", "", "Only weeks ending on or after date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&limit, "limit", 50, "Max results")

	return cmd
}
