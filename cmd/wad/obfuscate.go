package main

import (
	"fmt"
	"os"

	"github.com/Zuo-Peng/wa-digest/internal/apperr"
	"github.com/Zuo-Peng/wa-digest/internal/obfuscate"
	"github.com/Zuo-Peng/wa-digest/internal/scan"
	"github.com/spf13/cobra"
)

func obfuscateCmd() *cobra.Command {
	var inPlace bool

	cmd := &cobra.Command{
		Use:   "obfuscate <path|->",
		Short: "Mask Brazilian phone numbers in summaries",
		Long: `Replace the middle block of +55 phone numbers with ` + obfuscate.Mask + `.
A file is written to stdout unless --in-place is set. A directory is
processed recursively (Markdown files) and requires --in-place.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, log, err := loadConfig()
			if err != nil {
				return err
			}
			target := args[0]

			if target == "-" {
				if inPlace {
					return apperr.Argumentf("--in-place cannot be used with stdin")
				}
				text, err := readText("-")
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), obfuscate.Phones(text))
				return nil
			}

			info, err := os.Stat(target)
			if err != nil {
				return apperr.NotFound(fmt.Sprintf("%q not found", target), err)
			}
			if !info.IsDir() {
				return obfuscateFile(target, inPlace)
			}

			if !inPlace {
				return apperr.Argumentf("%s is a directory: use --in-place", target)
			}
			files, err := scan.Files(target, ".md")
			if err != nil {
				return err
			}
			changed := 0
			for _, f := range files {
				n, err := obfuscateInPlace(f)
				if err != nil {
					return err
				}
				if n > 0 {
					changed++
					log.Info("masked phone numbers", "path", f, "count", n)
				}
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Done. %d of %d files changed\n", changed, len(files))
			return nil
		},
	}

	cmd.Flags().BoolVar(&inPlace, "in-place", false, "Rewrite files instead of printing")

	return cmd
}

func obfuscateFile(path string, inPlace bool) error {
	if inPlace {
		n, err := obfuscateInPlace(path)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "%s: %d phone numbers masked\n", path, n)
		return nil
	}
	text, err := readText(path)
	if err != nil {
		return err
	}
	fmt.Print(obfuscate.Phones(text))
	return nil
}

// obfuscateInPlace rewrites path when it has numbers to mask and returns
// how many there were.
func obfuscateInPlace(path string) (int, error) {
	text, err := readText(path)
	if err != nil {
		return 0, err
	}
	n := obfuscate.Count(text)
	if n == 0 {
		return 0, nil
	}
	return n, writeFile(path, []byte(obfuscate.Phones(text)))
}
