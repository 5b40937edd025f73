package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/Zuo-Peng/wa-digest/internal/apperr"
	"github.com/Zuo-Peng/wa-digest/internal/archive"
	"github.com/Zuo-Peng/wa-digest/internal/civil"
	"github.com/Zuo-Peng/wa-digest/internal/parse"
	"golang.org/x/term"
)

// loadMessages opens a chat export (ZIP, text file or "-") and parses it.
func loadMessages(input string) ([]parse.Message, error) {
	if input == "" {
		return nil, apperr.Argumentf("--input is required")
	}
	if input == "-" && stdinIsTerminal() {
		return nil, apperr.Argumentf("no input on stdin")
	}
	tr, err := archive.Open(input)
	if err != nil {
		return nil, err
	}
	return parse.ParseString(tr.Text)
}

// readText reads a file, or stdin for "" and "-".
func readText(path string) (string, error) {
	if path == "" || path == "-" {
		if stdinIsTerminal() {
			return "", apperr.Argumentf("no input: pass a file or pipe text on stdin")
		}
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", apperr.NotFound(fmt.Sprintf("file %q not found", path), err)
		}
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}

// writeOutput writes data to path, or to w for "" and "-".
func writeOutput(w io.Writer, path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := w.Write(data)
		return err
	}
	return writeFile(path, data)
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

func dateFlag(name, value string) (civil.Date, error) {
	d, err := civil.Parse(value)
	if err != nil {
		return civil.Date{}, apperr.Argument(fmt.Sprintf("--%s", name), err)
	}
	return d, nil
}

func stdinIsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

func stdoutIsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}
