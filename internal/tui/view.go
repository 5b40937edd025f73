package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

func (b browser) View() string {
	if b.width == 0 || b.chosen != nil {
		return ""
	}
	header := b.input.View() + "  " + periodStyle.Render(periods[b.period].label)

	h := b.bodyHeight()
	list := boxStyle.Width(b.listWidth()).Height(h).Render(b.renderRows())
	b.pane.Width, b.pane.Height = b.paneWidth(), h
	preview := boxStyle.Width(b.paneWidth()).Height(h).Render(b.pane.View())

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		lipgloss.JoinHorizontal(lipgloss.Top, list, preview),
		b.footer(),
	)
}

func (b browser) listWidth() int {
	return max(b.width*2/5-2, 24)
}

func (b browser) paneWidth() int {
	return max(b.width-b.listWidth()-4, 20)
}

// bodyHeight leaves room for the input, the footer and two borders.
func (b browser) bodyHeight() int {
	return max(b.height-4, 3)
}

func (b browser) renderRows() string {
	w, h := b.listWidth(), b.bodyHeight()
	if len(b.rows) == 0 {
		msg := "nenhuma semana encontrada"
		if b.query() == "" && !b.listing {
			msg = "digite para buscar"
		}
		return lipgloss.Place(w, h, lipgloss.Center, lipgloss.Center, mutedStyle.Render(msg))
	}
	lines := make([]string, 0, h)
	for i := b.top; i < len(b.rows) && len(lines) < h; i++ {
		r := b.rows[i]
		lines = append(lines, formatRow(b.groups[r.group], r.hit, w, i == b.sel))
	}
	return strings.Join(lines, "\n")
}

func (b browser) footer() string {
	if b.note != "" {
		return noteStyle.Render(b.note)
	}
	hits := 0
	for _, g := range b.groups {
		hits += len(g.hits)
	}
	count := fmt.Sprintf("%d semanas", len(b.groups))
	if hits > 0 {
		count += fmt.Sprintf(", %d trechos", hits)
	}
	return mutedStyle.Render(" "+count+"  ") + b.help.View(keys)
}

// formatRow renders one list line in width cells. Week headers carry the
// date range, the title and the hit count; hits are indented under them
// with their section heading and snippet.
func formatRow(g weekGroup, hit, width int, selected bool) string {
	marker := "  "
	if selected {
		marker = markerStyle.Render("▌ ")
	}
	avail := max(width-2, 0)

	if hit < 0 {
		label := weekLabel(g.summary.StartDate, g.summary.EndDate)
		count := ""
		if n := len(g.hits); n > 0 {
			count = fmt.Sprintf(" (%d)", n)
		}
		title := fit(g.summary.Title, avail-runewidth.StringWidth(label)-runewidth.StringWidth(count)-1)
		return marker + weekStyle.Render(label) + " " + titleStyle.Render(title) + mutedStyle.Render(count)
	}

	r := g.hits[hit]
	heading := r.Heading
	if heading == "" {
		heading = r.Title
	}
	heading = fit(heading, avail-2)
	line := marker + "  " + headingStyle.Render(heading)
	if snip := fit(plainSnippet(r.Snippet), avail-2-runewidth.StringWidth(heading)-1); snip != "" {
		line += " " + mutedStyle.Render(snip)
	}
	return line
}

// plainSnippet drops the hit markers and folds whitespace onto one line.
func plainSnippet(s string) string {
	s = strings.NewReplacer(">>>", "", "<<<", "").Replace(s)
	return strings.Join(strings.Fields(s), " ")
}

func fit(s string, width int) string {
	if width <= 0 {
		return ""
	}
	s = strings.Join(strings.Fields(s), " ")
	return runewidth.Truncate(s, width, "…")
}
