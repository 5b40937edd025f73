package tui

import (
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zuo-Peng/wa-digest/internal/civil"
	"github.com/Zuo-Peng/wa-digest/internal/search"
)

var hits = []search.Result{
	{SummaryKey: "2026-01-12_2026-01-18", SectionID: 2, Heading: "Principais Discussões", LineNumber: 14, Title: "Resumo da Semana",
		StartDate: "2026-01-12", EndDate: "2026-01-18", FilePath: "/r/b.md", Snippet: "uso de >>>IA<<< em\nprovas"},
	{SummaryKey: "2026-01-05_2026-01-11", SectionID: 1, Heading: "Sumário Executivo", LineNumber: 5, Title: "Resumo da Semana",
		StartDate: "2026-01-05", EndDate: "2026-01-11", FilePath: "/r/a.md", Snippet: ">>>IA<<< na formação"},
	{SummaryKey: "2026-01-12_2026-01-18", SectionID: 4, Heading: "Ferramentas e Recursos", LineNumber: 30, Title: "Resumo da Semana",
		StartDate: "2026-01-12", EndDate: "2026-01-18", FilePath: "/r/b.md", Snippet: "NotebookLM com >>>IA<<<"},
}

func today() civil.Date { return civil.Date{Year: 2026, Month: time.March, Day: 2} }

// loaded returns a sized browser showing hits for "ia".
func loaded(t *testing.T) browser {
	t.Helper()
	b := newBrowser(nil, "ia", search.Options{}, false)
	b.today = today
	next, _ := b.Update(tea.WindowSizeMsg{Width: 120, Height: 30})
	next, _ = next.(browser).Update(resultsMsg{gen: 0, results: hits})
	return next.(browser)
}

func press(t *testing.T, b browser, msgs ...tea.KeyMsg) (browser, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	var m tea.Model = b
	for _, msg := range msgs {
		m, cmd = m.(browser).Update(msg)
	}
	return m.(browser), cmd
}

func TestGroupByWeek(t *testing.T) {
	groups := groupByWeek(hits)
	require.Len(t, groups, 2)
	assert.Equal(t, "2026-01-12_2026-01-18", groups[0].summary.SummaryKey, "best-ranked week first")
	assert.Equal(t, -1, groups[0].summary.SectionID)
	assert.Empty(t, groups[0].summary.Heading)
	require.Len(t, groups[0].hits, 2)
	assert.Equal(t, 4, groups[0].hits[1].SectionID)
	assert.Len(t, groups[1].hits, 1)

	assert.Equal(t, []row{{0, -1}, {0, 0}, {0, 1}, {1, -1}, {1, 0}}, flatten(groups))
}

func TestGroupByWeekListing(t *testing.T) {
	listing := []search.Result{
		{SummaryKey: "2026-01-12_2026-01-18", SectionID: -1, Title: "Semana 3", StartDate: "2026-01-12", EndDate: "2026-01-18"},
		{SummaryKey: "2026-01-05_2026-01-11", SectionID: -1, Title: "Semana 2", StartDate: "2026-01-05", EndDate: "2026-01-11"},
	}
	groups := groupByWeek(listing)
	require.Len(t, groups, 2)
	assert.Empty(t, groups[0].hits)
	assert.Equal(t, []row{{0, -1}, {1, -1}}, flatten(groups))
}

func TestWeekNavigation(t *testing.T) {
	b := loaded(t)
	require.Len(t, b.rows, 5)
	assert.Equal(t, 0, b.sel)

	b, _ = press(t, b, tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, 0, b.sel, "stays on the first row")

	b, cmd := press(t, b, tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 1, b.sel)
	assert.NotNil(t, cmd, "selection change loads the preview")

	b, _ = press(t, b, tea.KeyMsg{Type: tea.KeyCtrlN})
	assert.Equal(t, 3, b.sel, "jumps to the next week header")
	b, _ = press(t, b, tea.KeyMsg{Type: tea.KeyCtrlN})
	assert.Equal(t, 3, b.sel, "no later week")

	b, _ = press(t, b, tea.KeyMsg{Type: tea.KeyDown}, tea.KeyMsg{Type: tea.KeyCtrlP})
	assert.Equal(t, 3, b.sel, "back to the header of its own week")
	b, _ = press(t, b, tea.KeyMsg{Type: tea.KeyCtrlP})
	assert.Equal(t, 0, b.sel)
}

func TestFollowKeepsHeaderInView(t *testing.T) {
	b := loaded(t)
	b.height = 7 // three rows
	b.sel, b.top = 4, 4
	b.follow()
	assert.Equal(t, 3, b.top, "week header shown above its hit")

	b.sel = 0
	b.follow()
	assert.Equal(t, 0, b.top)
}

func TestOpenChoosesRow(t *testing.T) {
	b := loaded(t)

	got, cmd := press(t, b, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, got.chosen)
	assert.Equal(t, "2026-01-12_2026-01-18", got.chosen.SummaryKey)
	assert.Equal(t, -1, got.chosen.SectionID, "a week header opens the whole summary")
	assert.NotNil(t, cmd)
	assert.Empty(t, got.View())

	got, _ = press(t, b, tea.KeyMsg{Type: tea.KeyDown}, tea.KeyMsg{Type: tea.KeyDown}, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, got.chosen)
	assert.Equal(t, 4, got.chosen.SectionID)
}

func TestCopyPath(t *testing.T) {
	b := loaded(t)
	var copied string
	b.copy = func(s string) error { copied = s; return nil }

	b, _ = press(t, b, tea.KeyMsg{Type: tea.KeyCtrlN}, tea.KeyMsg{Type: tea.KeyCtrlY})
	assert.Equal(t, "/r/a.md", copied)
	assert.Contains(t, b.footer(), "copiado: /r/a.md")

	b.copy = func(string) error { return errors.New("no clipboard") }
	b, _ = press(t, b, tea.KeyMsg{Type: tea.KeyCtrlY})
	assert.Contains(t, b.note, "no clipboard")

	b, _ = press(t, b, tea.KeyMsg{Type: tea.KeyUp})
	assert.Empty(t, b.note, "moving clears the note")
}

func TestPeriodCycle(t *testing.T) {
	b := loaded(t)

	b, cmd := press(t, b, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, 1, b.period)
	assert.Equal(t, 1, b.gen)
	assert.NotNil(t, cmd)
	assert.Contains(t, b.View(), "últimas 4 semanas")

	// an answer to the old period is dropped
	next, _ := b.Update(resultsMsg{gen: 0})
	assert.Len(t, next.(browser).groups, 2)
	next, _ = b.Update(resultsMsg{gen: 1})
	assert.Empty(t, next.(browser).groups)

	b, _ = press(t, b, tea.KeyMsg{Type: tea.KeyShiftTab}, tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.Equal(t, len(periods)-1, b.period, "wraps around")
}

func TestSince(t *testing.T) {
	assert.Equal(t, "", since(periods[0], "", today()))
	assert.Equal(t, "2025-06-01", since(periods[0], "2025-06-01", today()))
	assert.Equal(t, "2026-02-02", since(periods[1], "", today()))
	assert.Equal(t, "2026-02-02", since(periods[1], "2025-06-01", today()))
	assert.Equal(t, "2026-02-20", since(periods[3], "2026-02-20", today()), "a later --since wins")
}

func TestTypingRefetchesLatestOnly(t *testing.T) {
	b := loaded(t)

	b, cmd := press(t, b, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})
	assert.Equal(t, "iax", b.input.Value())
	assert.Equal(t, 1, b.gen)
	assert.NotNil(t, cmd)

	_, cmd = b.Update(typedMsg{gen: 0})
	assert.Nil(t, cmd, "superseded keystroke")
	_, cmd = b.Update(typedMsg{gen: 1})
	assert.NotNil(t, cmd)
}

func TestStalePaneIgnored(t *testing.T) {
	b := loaded(t)

	next, _ := b.Update(paneMsg{key: "2026-01-05_2026-01-11#-1", content: "outra"})
	assert.Empty(t, next.(browser).paneKey)

	next, _ = b.Update(paneMsg{key: "2026-01-12_2026-01-18#-1", content: "# Resumo"})
	assert.Equal(t, "2026-01-12_2026-01-18#-1", next.(browser).paneKey)
}

func TestWeekLabel(t *testing.T) {
	assert.Equal(t, "12/01 a 18/01/2026", weekLabel("2026-01-12", "2026-01-18"))
	assert.Equal(t, "29/12/2025 a 04/01/2026", weekLabel("2025-12-29", "2026-01-04"))
	assert.Equal(t, "x a y", weekLabel("x", "y"))
}

func TestFormatRow(t *testing.T) {
	groups := groupByWeek(hits)

	header := formatRow(groups[0], -1, 60, true)
	assert.Contains(t, header, "▌")
	assert.Contains(t, header, "12/01 a 18/01/2026")
	assert.Contains(t, header, "Resumo da Semana")
	assert.Contains(t, header, "(2)")

	line := formatRow(groups[0], 0, 60, false)
	assert.Contains(t, line, "Principais Discussões")
	assert.Contains(t, line, "uso de IA em provas")
	assert.NotContains(t, line, ">>>")
	assert.NotContains(t, line, "▌")

	narrow := formatRow(groups[0], 0, 12, false)
	assert.NotContains(t, narrow, "provas")
}
