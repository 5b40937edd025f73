package main

import (
	"fmt"
	"os"

	"github.com/Zuo-Peng/wa-digest/internal/cache"
	"github.com/Zuo-Peng/wa-digest/internal/config"
	"github.com/Zuo-Peng/wa-digest/internal/index"
	"github.com/Zuo-Peng/wa-digest/internal/llm"
	"github.com/Zuo-Peng/wa-digest/internal/scan"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var (
	docSection = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	docOK      = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	docBad     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

func doctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Self-check: verify directories, credentials, cache and index",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig()
			if err != nil {
				return err
			}

			fmt.Println(docSection.Render("=== Directories ==="))
			checkDir("Summaries", cfg.SummariesDir)
			checkDir("Weeks", cfg.WeeksDir)
			checkDir("Site", cfg.SiteDir)

			fmt.Println("\n" + docSection.Render("=== Files ==="))
			summaries, err := scan.Summaries(cfg.SummariesDir)
			if err != nil {
				fmt.Printf("  scan error: %v\n", err)
			} else {
				fmt.Printf("  Summaries: %d\n", len(summaries))
			}
			if weeks, err := scan.Files(cfg.WeeksDir, ".txt"); err == nil {
				fmt.Printf("  Week batches: %d\n", len(weeks))
			}
			checkFile("Link registry", cfg.LinksPath)

			fmt.Println("\n" + docSection.Render("=== Providers ==="))
			for _, p := range llm.Providers {
				if _, ok := config.APIKey(p); ok {
					fmt.Printf("  %-10s %s (default model %s)\n", p, docOK.Render("OK"), llm.DefaultModel(p))
				} else {
					fmt.Printf("  %-10s %s\n", p, docBad.Render("no key in "+fmt.Sprint(config.APIKeyEnv(p))))
				}
			}
			fmt.Printf("  Configured: %s\n", cfg.Summarize.Provider)

			fmt.Println("\n" + docSection.Render("=== Cache ==="))
			fmt.Printf("  Path: %s\n", cfg.CachePath)
			if _, err := os.Stat(cfg.CachePath); err != nil {
				fmt.Println("  Status: empty (created on first summary)")
			} else if c, err := cache.Open(cfg.CachePath); err != nil {
				fmt.Printf("  Status: %s\n", docBad.Render(err.Error()))
			} else {
				n, _ := c.Len()
				c.Close()
				fmt.Printf("  Entries: %d (%s)\n", n, fileSize(cfg.CachePath))
			}

			fmt.Println("\n" + docSection.Render("=== Database ==="))
			fmt.Printf("  Path: %s\n", cfg.DBPath)
			if _, err := os.Stat(cfg.DBPath); os.IsNotExist(err) {
				fmt.Println("  Status: NOT FOUND (run 'wad index' first)")
				return nil
			}

			db, err := index.OpenDB(cfg.DBPath)
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			defer db.Close()

			summaryCount, err := db.SummaryCount()
			if err != nil {
				return fmt.Errorf("count summaries: %w", err)
			}
			sectionCount, err := db.SectionCount()
			if err != nil {
				return fmt.Errorf("count sections: %w", err)
			}
			fmt.Printf("  Summaries: %d\n", summaryCount)
			fmt.Printf("  Sections:  %d\n", sectionCount)

			fmt.Println("\n" + docSection.Render("=== FTS5 ==="))
			var ftsCount int
			err = db.Raw().QueryRow("SELECT COUNT(*) FROM sections_fts").Scan(&ftsCount)
			if err != nil {
				fmt.Printf("  FTS5 error: %v\n", err)
			} else {
				fmt.Printf("  FTS5 entries: %d\n", ftsCount)
				if ftsCount == sectionCount {
					fmt.Println("  Status: " + docOK.Render("OK (synced)"))
				} else {
					fmt.Println("  Status: " + docBad.Render(fmt.Sprintf("MISMATCH (sections=%d, fts=%d)", sectionCount, ftsCount)))
				}
			}

			fmt.Printf("\n%s\n", docSection.Render("=== DB Size: "+fileSize(cfg.DBPath)+" ==="))
			return nil
		},
	}
}

func checkDir(name, path string) {
	if info, err := os.Stat(path); err != nil {
		fmt.Printf("  %s: %s (%s)\n", name, path, docBad.Render("NOT FOUND"))
	} else if !info.IsDir() {
		fmt.Printf("  %s: %s (%s)\n", name, path, docBad.Render("NOT A DIRECTORY"))
	} else {
		fmt.Printf("  %s: %s (%s)\n", name, path, docOK.Render("OK"))
	}
}

func checkFile(name, path string) {
	if _, err := os.Stat(path); err != nil {
		fmt.Printf("  %s: %s (%s)\n", name, path, docBad.Render("NOT FOUND"))
		return
	}
	fmt.Printf("  %s: %s (%s)\n", name, path, fileSize(path))
}

func fileSize(path string) string {
	info, err := os.Stat(path)
	if err != nil {
		return "?"
	}
	return humanize.Bytes(uint64(info.Size()))
}
