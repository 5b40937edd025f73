package render

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/Zuo-Peng/wa-digest/internal/index"
	"github.com/mattn/go-runewidth"
)

const (
	colorReset   = "\033[0m"
	colorHeading = "\033[1;34m" // bold blue
	colorTitle   = "\033[1;32m" // bold green
	colorLink    = "\033[4;36m" // underlined cyan
	colorDim     = "\033[2m"
	colorHit     = "\033[43m"   // yellow background
	colorBoldRed = "\033[1;31m" // bold red for keyword highlights
)

type Options struct {
	HitSectionID int    // -1 = no hit
	Context      int    // sections before/after hit to show
	Width        int    // wrap width (0 = no wrap)
	Query        string // search query for keyword highlighting
}

// fts5Operators are FTS5 operators that should not be highlighted as keywords.
var fts5Operators = map[string]bool{
	"AND": true, "OR": true, "NOT": true, "NEAR": true,
	"and": true, "or": true, "not": true, "near": true,
}

// highlightKeywords wraps case-insensitive matches of query terms in bold red ANSI codes.
func highlightKeywords(text, query string) string {
	if query == "" {
		return text
	}
	terms := strings.Fields(strings.NewReplacer(`"`, " ", "*", " ").Replace(query))
	var filtered []string
	for _, t := range terms {
		if !fts5Operators[t] {
			filtered = append(filtered, t)
		}
	}
	if len(filtered) == 0 {
		return text
	}
	for _, term := range filtered {
		lower := strings.ToLower(term)
		i := 0
		for i < len(text) {
			idx := strings.Index(strings.ToLower(text[i:]), lower)
			if idx < 0 {
				break
			}
			pos := i + idx
			orig := text[pos : pos+len(term)]
			replacement := colorBoldRed + orig + colorReset
			text = text[:pos] + replacement + text[pos+len(term):]
			i = pos + len(replacement)
		}
	}
	return text
}

// indentLines prepends each line of text with the given prefix.
func indentLines(text, prefix string) string {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n")
}

// wrapLine breaks a single line into multiple lines that fit within maxWidth
// visible columns, correctly skipping ANSI escape sequences when measuring width.
func wrapLine(line string, maxWidth int) []string {
	if maxWidth <= 0 {
		return []string{line}
	}

	var result []string
	var cur strings.Builder
	visW := 0

	i := 0
	for i < len(line) {
		// check for ANSI escape sequence: ESC[ ... m
		if i+1 < len(line) && line[i] == '\033' && line[i+1] == '[' {
			j := i + 2
			for j < len(line) && line[j] != 'm' {
				j++
			}
			if j < len(line) {
				j++ // include 'm'
			}
			cur.WriteString(line[i:j])
			i = j
			continue
		}

		r, size := utf8.DecodeRuneInString(line[i:])
		rw := runewidth.RuneWidth(r)

		if visW+rw > maxWidth {
			result = append(result, cur.String())
			cur.Reset()
			visW = 0
		}

		cur.WriteRune(r)
		visW += rw
		i += size
	}

	if cur.Len() > 0 {
		result = append(result, cur.String())
	}

	if len(result) == 0 {
		return []string{""}
	}
	return result
}

var mdLink = regexp.MustCompile(`\[([^\]]+)\]\((https?://[^)\s]+)\)`)

// styleLine colours Markdown markers a terminal cannot show.
func styleLine(line string) string {
	trim := strings.TrimSpace(line)
	switch {
	case strings.HasPrefix(trim, "# "):
		return colorTitle + strings.TrimPrefix(trim, "# ") + colorReset
	case strings.HasPrefix(trim, "### "):
		return colorHeading + strings.TrimPrefix(trim, "### ") + colorReset
	}
	return mdLink.ReplaceAllString(line, "$1 "+colorLink+"$2"+colorReset)
}

// RenderSummary renders a summary around a hit section and returns the
// content, the 0-based line number of the hit heading (-1 if no hit), and
// any error.
func RenderSummary(db *index.DB, key string, opts Options) (string, int, error) {
	if opts.Context == 0 {
		opts.Context = 2
	}

	row, err := db.GetSummary(key)
	if err != nil {
		return "", -1, fmt.Errorf("get summary: %w", err)
	}
	if row == nil {
		return "", -1, fmt.Errorf("summary not found: %s", key)
	}

	sections, hitIdx, startPos, total, err := db.GetSectionsWindow(key, opts.HitSectionID, opts.Context)
	if err != nil {
		return "", -1, fmt.Errorf("get sections: %w", err)
	}
	if total == 0 {
		return "(empty summary)", -1, nil
	}
	skipAfter := total - startPos - len(sections)

	var b strings.Builder
	hitLine := -1
	lineCount := 0
	wrapW := opts.Width

	// helper to track line count; wraps long lines if Width is set
	writeLine := func(s string) {
		for _, wl := range wrapLine(s, wrapW) {
			b.WriteString(wl)
			b.WriteString("\n")
			lineCount++
		}
	}

	writeLine(fmt.Sprintf("%s--- %s [%s → %s] %s ---%s", colorDim, row.Title, row.StartDate, row.EndDate, row.FilePath, colorReset))

	if startPos > 0 {
		writeLine(fmt.Sprintf("%s... (%d sections before) ...%s", colorDim, startPos, colorReset))
	}

	for i, sec := range sections {
		isHit := i == hitIdx
		if isHit {
			hitLine = lineCount
		}

		if sec.Heading != "" {
			if isHit {
				writeLine(fmt.Sprintf("%s>> %s <<%s", colorHit, sec.Heading, colorReset))
			} else {
				writeLine(fmt.Sprintf("%s## %s%s", colorHeading, sec.Heading, colorReset))
			}
		}

		for _, tl := range strings.Split(sec.Text, "\n") {
			tl = styleLine(highlightKeywords(tl, opts.Query))
			writeLine(indentLines(tl, "  "))
		}
		writeLine("") // blank line after section
	}

	if skipAfter > 0 {
		writeLine(fmt.Sprintf("%s... (%d sections after) ...%s", colorDim, skipAfter, colorReset))
	}

	return b.String(), hitLine, nil
}
