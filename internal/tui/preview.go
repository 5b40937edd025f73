package tui

import (
	"strconv"

	"github.com/Zuo-Peng/wa-digest/internal/render"
	"github.com/Zuo-Peng/wa-digest/internal/search"
	tea "github.com/charmbracelet/bubbletea"
)

type paneMsg struct {
	key     string
	content string
	line    int
	err     error
}

func paneKeyOf(r search.Result) string {
	return r.SummaryKey + "#" + strconv.Itoa(r.SectionID)
}

// loadPane renders the selected summary in the background, scrolled to the
// hit section. A week header previews the summary from the top.
func (b browser) loadPane() tea.Cmd {
	r, ok := b.current()
	if !ok {
		return nil
	}
	k := paneKeyOf(r)
	if k == b.paneKey {
		return nil
	}
	db, q, w := b.db, b.query(), b.paneWidth()
	return func() tea.Msg {
		out, line, err := render.RenderSummary(db, r.SummaryKey, render.Options{
			HitSectionID: r.SectionID,
			Context:      -1,
			Width:        w,
			Query:        q,
		})
		return paneMsg{key: k, content: out, line: line, err: err}
	}
}
