package main

import (
	"encoding/json"
	"fmt"

	"github.com/Zuo-Peng/wa-digest/internal/apperr"
	"github.com/Zuo-Peng/wa-digest/internal/segment"
	"github.com/spf13/cobra"
)

func segmentCmd() *cobra.Command {
	var input, start, end, format, output string

	cmd := &cobra.Command{
		Use:   "segment",
		Short: "Print the messages of a chat export within a date window",
		Long: `Print the messages dated between --start and --end (dd/mm/yyyy, both
inclusive) in their original order. An empty window is not an error.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, log, err := loadConfig()
			if err != nil {
				return err
			}
			if format != "text" && format != "json" {
				return apperr.Argumentf("--format must be text or json, got %q", format)
			}
			from, err := dateFlag("start", start)
			if err != nil {
				return err
			}
			to, err := dateFlag("end", end)
			if err != nil {
				return err
			}

			msgs, err := loadMessages(input)
			if err != nil {
				return err
			}
			seg := segment.Segment(msgs, from, to)
			log.Debug("segmented", "total", len(msgs), "selected", len(seg))
			if len(seg) == 0 {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: no messages between %s and %s\n", from, to)
			}

			var data []byte
			if format == "json" {
				data, err = json.MarshalIndent(segment.Records(seg), "", "  ")
				if err != nil {
					return err
				}
				data = append(data, '\n')
			} else {
				data = []byte(segment.Serialize(seg))
			}
			return writeOutput(cmd.OutOrStdout(), output, data)
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "Chat export (.zip, .txt or - for stdin)")
	cmd.Flags().StringVar(&start, "start", "", "First day, dd/mm/yyyy")
	cmd.Flags().StringVar(&end, "end", "", "Last day, dd/mm/yyyy")
	cmd.Flags().StringVar(&format, "format", "text", "Output format: text or json")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default stdout)")
	cmd.MarkFlagRequired("start")
	cmd.MarkFlagRequired("end")

	return cmd
}
