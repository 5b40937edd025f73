package main

import (
	"fmt"
	"path/filepath"

	"github.com/Zuo-Peng/wa-digest/internal/civil"
	"github.com/Zuo-Peng/wa-digest/internal/segment"
	"github.com/spf13/cobra"
)

func weeksCmd() *cobra.Command {
	var input, from, outDir, prefix string
	var days int

	cmd := &cobra.Command{
		Use:   "weeks",
		Short: "Cut a chat export into weekly batches",
		Long: `Write one transcript file per window of --days days, named
<prefix>_<start>_<end>.txt. Windows start at --from, or at the first
message's date. Windows without messages are skipped.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}
			var start civil.Date
			if from != "" {
				if start, err = dateFlag("from", from); err != nil {
					return err
				}
			}
			if outDir == "" {
				outDir = cfg.WeeksDir
			}

			msgs, err := loadMessages(input)
			if err != nil {
				return err
			}
			batches := segment.Weeks(msgs, start, days)
			if len(batches) == 0 {
				fmt.Fprintln(cmd.ErrOrStderr(), "warning: no messages on or after the start date")
				return nil
			}

			for _, b := range batches {
				path := filepath.Join(outDir, b.Name(prefix, ".txt"))
				if err := writeFile(path, []byte(segment.Serialize(b.Messages))); err != nil {
					return fmt.Errorf("write %s: %w", path, err)
				}
				log.Info("wrote batch", "path", path, "messages", len(b.Messages))
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Done. %d batches in %s\n", len(batches), outDir)
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "Chat export (.zip, .txt or - for stdin)")
	cmd.Flags().StringVar(&from, "from", "", "First day of the first window, dd/mm/yyyy")
	cmd.Flags().IntVar(&days, "days", segment.DefaultDays, "Window length in days")
	cmd.Flags().StringVar(&outDir, "out-dir", "", "Output directory (default from config, semanas)")
	cmd.Flags().StringVar(&prefix, "prefix", "semana", "File name prefix")

	return cmd
}
