package main

import (
	"encoding/json"

	"github.com/Zuo-Peng/wa-digest/internal/apperr"
	"github.com/Zuo-Peng/wa-digest/internal/stats"
	"github.com/spf13/cobra"
)

func statsCmd() *cobra.Command {
	var format string
	var top int

	cmd := &cobra.Command{
		Use:   "stats <input>",
		Short: "Message counts per author and hour, and the most used words",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, _, err := loadConfig(); err != nil {
				return err
			}
			if format != "text" && format != "json" {
				return apperr.Argumentf("--format must be text or json, got %q", format)
			}
			msgs, err := loadMessages(args[0])
			if err != nil {
				return err
			}
			s := stats.Compute(msgs, top)

			if format == "json" {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(s)
			}
			return stats.WriteText(cmd.OutOrStdout(), s, stdoutIsTerminal())
		},
	}

	cmd.Flags().StringVar(&format, "format", "text", "Output format: text or json")
	cmd.Flags().IntVar(&top, "top", stats.DefaultTop, "Number of top words")

	return cmd
}
