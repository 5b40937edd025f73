package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/Zuo-Peng/wa-digest/internal/apperr"
	"github.com/Zuo-Peng/wa-digest/internal/config"
	"github.com/Zuo-Peng/wa-digest/internal/links"
	"github.com/Zuo-Peng/wa-digest/internal/parse"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func linksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "links",
		Short: "Extract, register and enrich links shared in the chat",
	}
	cmd.AddCommand(linksExtractCmd())
	cmd.AddCommand(linksUpdateCmd())
	cmd.AddCommand(linksEnrichCmd())
	return cmd
}

func linksExtractCmd() *cobra.Command {
	var output, format string
	var validate bool
	var concurrency, limit int

	cmd := &cobra.Command{
		Use:   "extract <input>",
		Short: "List the distinct links in a chat export or week file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}
			if format != "json" && format != "jsonl" {
				return apperr.Argumentf("--format must be json or jsonl, got %q", format)
			}
			msgs, err := loadMessages(args[0])
			if err != nil {
				return err
			}
			recs := links.Extract(msgs)
			if limit > 0 && len(recs) > limit {
				recs = recs[:limit]
			}
			log.Info("links extracted", "messages", len(msgs), "links", len(recs))

			if validate {
				ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
				defer stop()
				if concurrency <= 0 {
					concurrency = cfg.Links.Concurrency
				}
				err := links.Validate(ctx, recs, links.ValidateOptions{
					Concurrency: concurrency,
					Timeout:     time.Duration(cfg.Links.TimeoutSeconds) * time.Second,
					UserAgent:   cfg.Links.UserAgent,
				})
				if err != nil {
					return err
				}
				logStatusCounts(log, recs)
			}

			var buf bytes.Buffer
			if format == "jsonl" {
				enc := json.NewEncoder(&buf)
				enc.SetEscapeHTML(false)
				for _, r := range recs {
					if err := enc.Encode(r); err != nil {
						return err
					}
				}
			} else {
				enc := json.NewEncoder(&buf)
				enc.SetEscapeHTML(false)
				enc.SetIndent("", "  ")
				if recs == nil {
					recs = []links.Record{}
				}
				if err := enc.Encode(recs); err != nil {
					return err
				}
			}
			return writeOutput(cmd.OutOrStdout(), output, buf.Bytes())
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default stdout)")
	cmd.Flags().StringVar(&format, "format", "json", "Output format: json or jsonl")
	cmd.Flags().BoolVar(&validate, "validate", false, "Check each link with an HTTP request")
	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "Parallel requests (default from config)")
	cmd.Flags().IntVar(&limit, "limit", 0, "Keep only the first n links (0 = all)")

	return cmd
}

func linksUpdateCmd() *cobra.Command {
	var registry string
	var enrich, dryRun bool

	cmd := &cobra.Command{
		Use:   "update <week-file>...",
		Short: "Merge the links of week files into the registry",
		Long: `Extract links from each week transcript and prepend the ones the registry
does not know yet. Existing records are never modified.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}
			if registry == "" {
				registry = cfg.LinksPath
			}

			var msgs []parse.Message
			for _, path := range args {
				m, err := loadMessages(path)
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				msgs = append(msgs, m...)
			}

			existing, err := links.Load(registry)
			if err != nil {
				return err
			}
			merged, added := links.Merge(existing, links.Extract(msgs))
			fmt.Fprintf(cmd.ErrOrStderr(), "%s new links, %s already registered\n",
				humanize.Comma(int64(len(added))), humanize.Comma(int64(len(existing))))
			if dryRun {
				for _, r := range added {
					fmt.Println(r.URL)
				}
				return nil
			}

			if enrich && len(added) > 0 {
				ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
				defer stop()
				// new records sit at the front of merged
				report, err := links.Enrich(ctx, merged[:len(added)], enrichOptions(cfg, 0, 0, true, 0))
				if err != nil {
					return err
				}
				log.Info("enriched new links", "report", report.String())
			}

			if err := links.Save(registry, merged); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Registry saved: %s (%s links)\n", registry, humanize.Comma(int64(len(merged))))
			return nil
		},
	}

	cmd.Flags().StringVar(&registry, "registry", "", "Link registry JSON (default from config)")
	cmd.Flags().BoolVar(&enrich, "enrich", false, "Fetch titles for the new links")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the new links without saving")

	return cmd
}

func linksEnrichCmd() *cobra.Command {
	var registry string
	var start, limit, concurrency int
	var skipEnriched bool

	cmd := &cobra.Command{
		Use:   "enrich",
		Short: "Fetch page titles and descriptions for registry links",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}
			if registry == "" {
				registry = cfg.LinksPath
			}
			if _, err := os.Stat(registry); err != nil {
				return apperr.NotFound(fmt.Sprintf("registry %q not found", registry), err)
			}
			recs, err := links.Load(registry)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			opts := enrichOptions(cfg, start, limit, skipEnriched, concurrency)
			opts.OnProgress = func(done, total int) {
				if done%10 == 0 || done == total {
					fmt.Fprintf(cmd.ErrOrStderr(), "\r%s/%s", humanize.Comma(int64(done)), humanize.Comma(int64(total)))
					if done == total {
						fmt.Fprintln(cmd.ErrOrStderr())
					}
				}
			}
			report, err := links.Enrich(ctx, recs, opts)
			// save partial progress even when interrupted
			if saveErr := links.Save(registry, recs); saveErr != nil {
				return saveErr
			}
			if err != nil {
				return err
			}
			log.Info("enrich finished", "report", report.String())
			fmt.Fprintf(cmd.ErrOrStderr(), "Done. %s\n", report)
			return nil
		},
	}

	cmd.Flags().StringVar(&registry, "registry", "", "Link registry JSON (default from config)")
	cmd.Flags().IntVar(&start, "start", 0, "Index of the first record to process")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum records to process (0 = all)")
	cmd.Flags().BoolVar(&skipEnriched, "skip-enriched", true, "Skip records enriched before")
	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "Parallel requests (default from config)")

	return cmd
}

func enrichOptions(cfg *config.Config, start, limit int, skipEnriched bool, concurrency int) links.EnrichOptions {
	if concurrency <= 0 {
		concurrency = cfg.Links.Concurrency
	}
	return links.EnrichOptions{
		Start:        start,
		Limit:        limit,
		SkipEnriched: skipEnriched,
		Concurrency:  concurrency,
		Timeout:      time.Duration(cfg.Links.TimeoutSeconds) * time.Second,
		UserAgent:    cfg.Links.UserAgent,
	}
}

func logStatusCounts(log *slog.Logger, recs []links.Record) {
	counts := map[string]int{}
	for _, r := range recs {
		counts[r.Status]++
	}
	log.Info("links validated",
		"valid", counts[links.StatusValid],
		"invalid", counts[links.StatusInvalid],
		"timeout", counts[links.StatusTimeout],
		"error", counts[links.StatusError])
}
