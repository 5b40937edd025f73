package open

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/Zuo-Peng/wa-digest/internal/index"
)

// OpenSummary opens the summary file in $EDITOR at the hit section's
// heading, or at the top when hitSectionID is negative.
func OpenSummary(db *index.DB, key string, hitSectionID int) error {
	row, err := db.GetSummary(key)
	if err != nil {
		return fmt.Errorf("get summary: %w", err)
	}
	if row == nil {
		return fmt.Errorf("summary not found: %s", key)
	}

	filePath := row.FilePath
	if _, err := os.Stat(filePath); err != nil {
		return fmt.Errorf("file not found: %s", filePath)
	}

	// find line number for the hit section
	lineNum := 1
	if hitSectionID >= 0 {
		sections, err := db.GetSections(key)
		if err == nil {
			for _, s := range sections {
				if s.SectionID == hitSectionID {
					lineNum = s.LineNumber
					break
				}
			}
		}
	}

	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = "less"
	}
	return run(editorCommand(editor, filePath, lineNum))
}

// editorCommand builds the argv that opens filePath at lineNum. Editors
// without a known line flag just get the file.
func editorCommand(editor, filePath string, lineNum int) []string {
	args := strings.Fields(editor)
	if len(args) == 0 {
		args = []string{"less"}
	}
	switch base := filepath.Base(args[0]); {
	case strings.Contains(base, "vim"), base == "vi", base == "nano", base == "micro", strings.Contains(base, "less"):
		return append(args, "+"+strconv.Itoa(lineNum), filePath)
	case strings.Contains(base, "code"), base == "cursor":
		return append(args, "--goto", filePath+":"+strconv.Itoa(lineNum))
	case base == "hx", base == "subl", base == "zed":
		return append(args, filePath+":"+strconv.Itoa(lineNum))
	case strings.Contains(base, "emacs"):
		return append(args, "+"+strconv.Itoa(lineNum), filePath)
	default:
		return append(args, filePath)
	}
}

// URL opens a web page or local file in the default browser.
func URL(target string) error {
	var argv []string
	switch runtime.GOOS {
	case "darwin":
		argv = []string{"open", target}
	case "windows":
		argv = []string{"rundll32", "url.dll,FileProtocolHandler", target}
	default:
		argv = []string{"xdg-open", target}
	}
	cmd := exec.Command(argv[0], argv[1:]...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("open %s: %w", target, err)
	}
	return cmd.Process.Release()
}

func run(argv []string) error {
	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
