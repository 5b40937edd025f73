package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Zuo-Peng/wa-digest/internal/apperr"
	"github.com/Zuo-Peng/wa-digest/internal/intro"
	"github.com/Zuo-Peng/wa-digest/internal/scan"
	"github.com/spf13/cobra"
)

func introCmd() *cobra.Command {
	var inPlace, force bool
	var styleName, group, name string

	cmd := &cobra.Command{
		Use:   "intro <path|->",
		Short: "Add the group and week header to summaries",
		Long: `Prepend the "Resumos do grupo" header with the week taken from the file
name. Files that already have it are left alone unless --force is set.
A directory is processed recursively and requires --in-place. Reading
stdin needs --name to supply the week.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}
			style, err := intro.ParseStyle(styleName)
			if err != nil {
				return err
			}
			if group == "" {
				group = cfg.GroupName
			}
			target := args[0]

			if target == "-" {
				if inPlace {
					return apperr.Argumentf("--in-place cannot be used with stdin")
				}
				if name == "" {
					return apperr.Argumentf("--name is required when reading stdin")
				}
				h, err := intro.FromName(name, group, style)
				if err != nil {
					return err
				}
				text, err := readText("-")
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), intro.Add(text, h, force))
				return nil
			}

			info, err := os.Stat(target)
			if err != nil {
				return apperr.NotFound(fmt.Sprintf("%q not found", target), err)
			}
			if !info.IsDir() {
				if name == "" {
					name = filepath.Base(target)
				}
				h, err := intro.FromName(name, group, style)
				if err != nil {
					return err
				}
				text, err := readText(target)
				if err != nil {
					return err
				}
				out := intro.Add(text, h, force)
				if !inPlace {
					fmt.Fprint(cmd.OutOrStdout(), out)
					return nil
				}
				if out == text {
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: header already present\n", target)
					return nil
				}
				return writeFile(target, []byte(out))
			}

			if !inPlace {
				return apperr.Argumentf("%s is a directory: use --in-place", target)
			}
			files, err := scan.Summaries(target)
			if err != nil {
				return err
			}
			changed := 0
			for _, f := range files {
				h, err := intro.FromName(filepath.Base(f.Path), group, style)
				if err != nil {
					return err
				}
				text, err := readText(f.Path)
				if err != nil {
					return err
				}
				out := intro.Add(text, h, force)
				if out == text {
					continue
				}
				if err := writeFile(f.Path, []byte(out)); err != nil {
					return err
				}
				changed++
				log.Info("header added", "path", f.Path)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Done. %d of %d files changed\n", changed, len(files))
			return nil
		},
	}

	cmd.Flags().BoolVar(&inPlace, "in-place", false, "Rewrite files instead of printing")
	cmd.Flags().BoolVar(&force, "force", false, "Replace an existing header")
	cmd.Flags().StringVar(&styleName, "style", string(intro.Blockquote), "Header style: plain, blockquote, heading")
	cmd.Flags().StringVar(&group, "group", "", "Group name (default from config)")
	cmd.Flags().StringVar(&name, "name", "", "Range-named file name to take the week from")

	return cmd
}
