package main

import (
	"fmt"
	"path/filepath"

	"github.com/Zuo-Peng/wa-digest/internal/open"
	"github.com/Zuo-Peng/wa-digest/internal/publish"
	"github.com/spf13/cobra"
)

func publishCmd() *cobra.Command {
	var inputDir, outputDir, weeksDir, baseURL, linksSource, linksJSON string
	var clean, browse bool

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Build the static site from the weekly summaries",
		Long: `Render every range-named summary (..._YYYY-MM-DD_YYYY-MM-DD.md) into a
static site: one page per week with navigation, an index with cards,
a links page and a client-side search index.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}
			if inputDir == "" {
				inputDir = cfg.SummariesDir
			}
			if outputDir == "" {
				outputDir = cfg.SiteDir
			}
			if weeksDir == "" {
				weeksDir = cfg.WeeksDir
			}
			if baseURL == "" {
				baseURL = cfg.Site.BaseURL
			}
			if linksSource == "" {
				linksSource = cfg.Site.LinksSource
			}
			if linksJSON == "" {
				linksJSON = cfg.LinksPath
			}

			report, err := publish.Publish(publish.Options{
				InputDir:    inputDir,
				OutputDir:   outputDir,
				WeeksDir:    weeksDir,
				BaseURL:     baseURL,
				Clean:       clean,
				LinksSource: linksSource,
				LinksJSON:   linksJSON,
				Group:       cfg.GroupName,
			}, log)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Done. %d weeks, %d links, %d files in %s\n",
				report.Posts, report.Links, len(report.Pages), outputDir)

			if browse {
				abs, err := filepath.Abs(filepath.Join(outputDir, "index.html"))
				if err != nil {
					return err
				}
				return open.URL("file://" + abs)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&inputDir, "input-dir", "", "Summaries directory (default from config, resumos)")
	cmd.Flags().StringVar(&outputDir, "output-dir", "", "Site output directory (default from config, docs)")
	cmd.Flags().StringVar(&weeksDir, "weeks-dir", "", "Week batches used for card stats (default from config)")
	cmd.Flags().StringVar(&baseURL, "base-url", "", "Public site URL for absolute links")
	cmd.Flags().BoolVar(&clean, "clean", false, "Empty the output directory first")
	cmd.Flags().StringVar(&linksSource, "links-source", "", "Links page source: resumos, full or both")
	cmd.Flags().StringVar(&linksJSON, "links-json", "", "Link registry JSON (default from config)")
	cmd.Flags().BoolVar(&browse, "open", false, "Open the site in the browser when done")

	return cmd
}
