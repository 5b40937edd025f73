package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/Zuo-Peng/wa-digest/internal/apperr"
	"github.com/Zuo-Peng/wa-digest/internal/config"
	"github.com/spf13/cobra"
)

var version = "dev"

// global flags
var (
	configPath string
	logLevel   string
)

func main() {
	err := newRootCmd().Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
	}
	os.Exit(apperr.ExitCode(err))
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "wad",
		Short:         "WhatsApp digest - segment chat exports, summarize weeks and publish them",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.config/wad/config.toml, or $WAD_CONFIG)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return apperr.Argument(err.Error(), nil)
	})

	rootCmd.AddCommand(segmentCmd())
	rootCmd.AddCommand(weeksCmd())
	rootCmd.AddCommand(summarizeCmd())
	rootCmd.AddCommand(linksCmd())
	rootCmd.AddCommand(statsCmd())
	rootCmd.AddCommand(obfuscateCmd())
	rootCmd.AddCommand(introCmd())
	rootCmd.AddCommand(publishCmd())
	rootCmd.AddCommand(indexCmd())
	rootCmd.AddCommand(searchCmd())
	rootCmd.AddCommand(listCmd())
	rootCmd.AddCommand(previewCmd())
	rootCmd.AddCommand(openCmd())
	rootCmd.AddCommand(doctorCmd())
	return rootCmd
}

// loadConfig reads the config and installs the logger for the command.
func loadConfig() (*config.Config, *slog.Logger, error) {
	path := configPath
	if path == "" {
		path = os.Getenv("WAD_CONFIG")
	}
	cfg, err := config.LoadFrom(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil, apperr.NotFound(err.Error(), err)
		}
		return nil, nil, apperr.Argument(err.Error(), err)
	}
	level := cfg.LogLevel
	if logLevel != "" {
		level = logLevel
	}
	return cfg, setupLogging(level), nil
}

func setupLogging(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})
	log := slog.New(handler)
	slog.SetDefault(log)
	return log
}
