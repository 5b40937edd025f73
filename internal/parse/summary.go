package parse

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/Zuo-Peng/wa-digest/internal/civil"
)

const (
	defaultTitle   = "Resumo Semanal"
	defaultExcerpt = "Resumo semanal do grupo."
	executiveHead  = "Sumário Executivo"
)

// ParseSummaryFile reads a Markdown summary whose name embeds its week,
// e.g. resumo_semana_2026-01-06_2026-01-12.md.
func ParseSummaryFile(path string) (*Summary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	s, err := ParseSummary(filepath.Base(path), string(data))
	if err != nil {
		return nil, err
	}
	s.Path = path
	s.Mtime = info.ModTime()
	s.Size = info.Size()
	return s, nil
}

func ParseSummary(name, text string) (*Summary, error) {
	start, end, ok := civil.ParseRangeName(name)
	if !ok {
		return nil, fmt.Errorf("%s: name does not contain a YYYY-MM-DD_YYYY-MM-DD range", name)
	}
	text = strings.ReplaceAll(strings.TrimPrefix(text, "\ufeff"), "\r\n", "\n")

	s := &Summary{
		Name:  name,
		Start: start,
		End:   end,
		Title: defaultTitle,
		Text:  text,
	}

	var cur *Section
	var buf []string
	flush := func() {
		if cur == nil {
			return
		}
		cur.Text = strings.TrimSpace(strings.Join(buf, "\n"))
		if cur.Text != "" || cur.Heading != "" {
			cur.ID = len(s.Sections)
			s.Sections = append(s.Sections, *cur)
		}
		buf = buf[:0]
	}

	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	lineNum := 0
	cur = &Section{LineNumber: 1}
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "# ") && s.Title == defaultTitle:
			s.Title = strings.TrimSpace(strings.TrimPrefix(line, "# "))
			buf = append(buf, line)
		case strings.HasPrefix(line, "## "):
			flush()
			cur = &Section{Heading: strings.TrimSpace(strings.TrimPrefix(line, "## ")), LineNumber: lineNum}
		default:
			buf = append(buf, line)
		}
	}
	flush()
	return s, scanner.Err()
}

// Section returns the first section whose heading starts with prefix.
func (s *Summary) Section(prefix string) (Section, bool) {
	for _, sec := range s.Sections {
		if strings.HasPrefix(sec.Heading, prefix) {
			return sec, true
		}
	}
	return Section{}, false
}

// Excerpt is the executive summary flattened to one line, cut at a word
// boundary so it fits in max characters.
func (s *Summary) Excerpt(max int) string {
	sec, ok := s.Section(executiveHead)
	if !ok || sec.Text == "" {
		return defaultExcerpt
	}
	excerpt := strings.Join(strings.Fields(sec.Text), " ")
	r := []rune(excerpt)
	if len(r) <= max {
		return excerpt
	}
	cut := string(r[:max-3])
	if i := strings.LastIndex(cut, " "); i > 0 {
		cut = cut[:i]
	}
	return cut + "..."
}

// Body drops whatever precedes the first "## Sumário" heading (titles,
// intro lines), which the site renders itself.
func (s *Summary) Body() string {
	lines := strings.Split(s.Text, "\n")
	for i, line := range lines {
		if strings.HasPrefix(line, "## Sumário") {
			return strings.Join(lines[i:], "\n")
		}
	}
	return s.Text
}

type MarkdownLink struct {
	Title string
	URL   string
}

var mdLink = regexp.MustCompile(`\[([^\]]+)\]\(([^)\s]+)\)`)

// Links returns the http(s) Markdown links in document order.
func (s *Summary) Links() []MarkdownLink {
	var out []MarkdownLink
	for _, m := range mdLink.FindAllStringSubmatch(s.Text, -1) {
		u := strings.TrimSpace(m[2])
		if !strings.HasPrefix(u, "http") {
			continue
		}
		out = append(out, MarkdownLink{Title: strings.TrimSpace(m[1]), URL: u})
	}
	return out
}

var (
	markdownMarks = regexp.MustCompile("[*_`#>-]")
	spaces        = regexp.MustCompile(`\s+`)
)

// PlainText strips Markdown syntax, keeping link text.
func PlainText(md string) string {
	md = mdLink.ReplaceAllString(md, "$1")
	md = markdownMarks.ReplaceAllString(md, " ")
	return strings.TrimSpace(spaces.ReplaceAllString(md, " "))
}
