// Package intro prepends the "Resumos do grupo" header to weekly summaries.
package intro

import (
	"fmt"
	"strings"

	"github.com/Zuo-Peng/wa-digest/internal/apperr"
	"github.com/Zuo-Peng/wa-digest/internal/civil"
)

type Style string

const (
	Plain      Style = "plain"
	Blockquote Style = "blockquote"
	Heading    Style = "heading"
)

// detectLines is how far from the top an existing header is looked for.
const detectLines = 5

func ParseStyle(s string) (Style, error) {
	switch st := Style(s); st {
	case Plain, Blockquote, Heading:
		return st, nil
	}
	return "", apperr.Argumentf("unknown intro style %q (want plain, blockquote or heading)", s)
}

type Header struct {
	Group string
	Start civil.Date
	End   civil.Date
	Style Style
}

// Title is the first header line without styling.
func (h Header) Title() string {
	return fmt.Sprintf("Resumos do grupo %q", h.Group)
}

// String renders the header followed by a blank line.
func (h Header) String() string {
	week := fmt.Sprintf("Semana: %s - %s", h.Start, h.End)
	switch h.Style {
	case Blockquote:
		return "> " + h.Title() + "\n> " + week + "\n\n"
	case Heading:
		return "## " + h.Title() + "\n" + week + "\n\n"
	}
	return h.Title() + "\n" + week + "\n\n"
}

// Detect reports whether text already carries the header near the top.
func (h Header) Detect(text string) bool {
	lines := strings.SplitN(text, "\n", detectLines+1)
	if len(lines) > detectLines {
		lines = lines[:detectLines]
	}
	for _, l := range lines {
		if strings.Contains(l, h.Title()) {
			return true
		}
	}
	return false
}

// Add prepends the header. Text that already has one is returned unchanged
// unless force is set, in which case the old block (up to and including the
// first blank line after it) is replaced.
func Add(text string, h Header, force bool) string {
	if h.Detect(text) {
		if !force {
			return text
		}
		text = strip(text, h.Title())
	}
	return h.String() + strings.TrimPrefix(text, "\ufeff")
}

func strip(text, title string) string {
	lines := strings.Split(text, "\n")
	i := 0
	for i < len(lines) && !strings.Contains(lines[i], title) {
		i++
	}
	if i == len(lines) {
		return text
	}
	i++
	for i < len(lines) && strings.TrimSpace(lines[i]) != "" {
		i++
	}
	if i < len(lines) {
		i++
	}
	return strings.Join(lines[i:], "\n")
}

// FromName builds a header from a range-named summary file such as
// resumo_semana_2026-01-05_2026-01-11.md.
func FromName(name, group string, style Style) (Header, error) {
	start, end, ok := civil.ParseRangeName(name)
	if !ok {
		return Header{}, apperr.Argumentf("cannot read dates from file name %q", name)
	}
	return Header{Group: group, Start: start, End: end, Style: style}, nil
}
