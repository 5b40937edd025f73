// Package tui is the interactive summary browser: hits grouped under the
// week they belong to, a period filter, and a preview of the selection.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/Zuo-Peng/wa-digest/internal/civil"
	"github.com/Zuo-Peng/wa-digest/internal/index"
	"github.com/Zuo-Peng/wa-digest/internal/open"
	"github.com/Zuo-Peng/wa-digest/internal/search"
	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

const (
	typingPause = 150 * time.Millisecond
	hitsPerWeek = 3
)

// resultsMsg answers the fetch issued at generation gen.
type resultsMsg struct {
	gen     int
	results []search.Result
	err     error
}

type typedMsg struct{ gen int }

type browser struct {
	db      *index.DB
	base    search.Options
	listing bool // empty query lists every week

	input textinput.Model
	pane  viewport.Model
	help  help.Model

	period int
	today  func() civil.Date

	// gen grows on every query or period change; older answers are dropped.
	gen int

	groups []weekGroup
	rows   []row
	sel    int
	top    int

	paneKey string
	note    string
	width   int
	height  int

	chosen *search.Result
	copy   func(string) error
}

func newBrowser(db *index.DB, query string, opts search.Options, listing bool) browser {
	in := textinput.New()
	in.Prompt = "buscar: "
	in.PromptStyle = promptStyle
	in.Placeholder = "palavras dos resumos"
	if listing {
		in.Placeholder = "filtrar semanas"
	}
	in.CharLimit = 200
	in.SetValue(query)
	in.Focus()

	return browser{
		db:      db,
		base:    opts,
		listing: listing,
		input:   in,
		pane:    viewport.New(0, 0),
		help:    help.New(),
		today:   civil.Today,
		copy:    clipboard.WriteAll,
	}
}

// Run browses the hits for query. Choosing one opens it in $EDITOR.
func Run(db *index.DB, query string, opts search.Options) error {
	return run(db, newBrowser(db, query, opts, false))
}

// RunList browses every indexed week, newest first. Typing searches them.
func RunList(db *index.DB, opts search.Options) error {
	return run(db, newBrowser(db, "", opts, true))
}

func run(db *index.DB, b browser) error {
	final, err := tea.NewProgram(b, tea.WithAltScreen()).Run()
	if err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	if r := final.(browser).chosen; r != nil {
		return open.OpenSummary(db, r.SummaryKey, r.SectionID)
	}
	return nil
}

func (b browser) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, b.fetch())
}

func (b browser) query() string {
	return strings.TrimSpace(b.input.Value())
}

func (b browser) fetch() tea.Cmd {
	db, gen, q, listing := b.db, b.gen, b.query(), b.listing
	opts := b.base
	opts.Query = q
	opts.Since = since(periods[b.period], b.base.Since, b.today())
	opts.PerSummary = hitsPerWeek
	return func() tea.Msg {
		var res []search.Result
		var err error
		switch {
		case q != "":
			res, err = search.Search(db, opts)
		case listing:
			res, err = search.ListAll(db, opts)
		}
		return resultsMsg{gen: gen, results: res, err: err}
	}
}

func (b browser) current() (search.Result, bool) {
	if b.sel < 0 || b.sel >= len(b.rows) {
		return search.Result{}, false
	}
	r := b.rows[b.sel]
	return b.groups[r.group].result(r.hit), true
}

func (b browser) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		b.width, b.height = msg.Width, msg.Height
		b.help.Width = msg.Width
		b.pane = viewport.New(b.paneWidth(), b.bodyHeight())
		b.paneKey = ""
		return b, b.loadPane()

	case tea.KeyMsg:
		return b.handleKey(msg)

	case typedMsg:
		if msg.gen != b.gen {
			return b, nil
		}
		return b, b.fetch()

	case resultsMsg:
		if msg.gen != b.gen {
			return b, nil
		}
		b.note = ""
		b.sel, b.top, b.paneKey = 0, 0, ""
		if msg.err != nil {
			b.groups, b.rows = nil, nil
			b.pane.SetContent("erro: " + msg.err.Error())
			return b, nil
		}
		b.groups = groupByWeek(msg.results)
		b.rows = flatten(b.groups)
		if len(b.rows) == 0 {
			b.pane.SetContent("")
			return b, nil
		}
		return b, b.loadPane()

	case paneMsg:
		r, ok := b.current()
		if !ok || paneKeyOf(r) != msg.key {
			return b, nil
		}
		b.paneKey = msg.key
		if msg.err != nil {
			b.pane.SetContent("erro: " + msg.err.Error())
			return b, nil
		}
		b.pane.SetContent(msg.content)
		b.pane.SetYOffset(msg.line)
		return b, nil
	}
	return b, nil
}

func (b browser) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		return b, tea.Quit

	case key.Matches(msg, keys.Open):
		if r, ok := b.current(); ok {
			b.chosen = &r
			return b, tea.Quit
		}
		return b, nil

	case key.Matches(msg, keys.Copy):
		if r, ok := b.current(); ok {
			if err := b.copy(r.FilePath); err != nil {
				b.note = "não foi possível copiar: " + err.Error()
			} else {
				b.note = "copiado: " + r.FilePath
			}
		}
		return b, nil

	case key.Matches(msg, keys.Up):
		return b.moveTo(b.sel - 1)
	case key.Matches(msg, keys.Down):
		return b.moveTo(b.sel + 1)
	case key.Matches(msg, keys.NextWeek):
		return b.moveTo(b.weekRow(1))
	case key.Matches(msg, keys.PrevWeek):
		return b.moveTo(b.weekRow(-1))

	case key.Matches(msg, keys.Period):
		return b.setPeriod(b.period + 1)
	case key.Matches(msg, keys.PeriodBack):
		return b.setPeriod(b.period - 1)

	case key.Matches(msg, keys.ScrollUp):
		b.pane.LineUp(b.bodyHeight() / 2)
		return b, nil
	case key.Matches(msg, keys.ScrollDown):
		b.pane.LineDown(b.bodyHeight() / 2)
		return b, nil
	}

	before := b.input.Value()
	var cmd tea.Cmd
	b.input, cmd = b.input.Update(msg)
	if b.input.Value() == before {
		return b, cmd
	}
	b.gen++
	gen := b.gen
	return b, tea.Batch(cmd, tea.Tick(typingPause, func(time.Time) tea.Msg {
		return typedMsg{gen: gen}
	}))
}

func (b browser) moveTo(i int) (tea.Model, tea.Cmd) {
	if i < 0 || i >= len(b.rows) || i == b.sel {
		return b, nil
	}
	b.sel = i
	b.note = ""
	b.follow()
	return b, b.loadPane()
}

// weekRow is the next week header from the selection in direction dir, or
// the selection itself at either end.
func (b browser) weekRow(dir int) int {
	for i := b.sel + dir; i >= 0 && i < len(b.rows); i += dir {
		if b.rows[i].hit < 0 {
			return i
		}
	}
	return b.sel
}

func (b browser) setPeriod(p int) (tea.Model, tea.Cmd) {
	n := len(periods)
	b.period = (p%n + n) % n
	b.gen++
	return b, b.fetch()
}

// follow scrolls the list so the selection is visible, bringing its week
// header along when both fit.
func (b *browser) follow() {
	h := max(b.bodyHeight(), 1)
	if b.sel < b.top {
		b.top = b.sel
	}
	if b.sel >= b.top+h {
		b.top = b.sel - h + 1
	}
	if r := b.rows[b.sel]; r.hit >= 0 {
		header := b.sel - r.hit - 1
		if header < b.top && b.sel-header < h {
			b.top = header
		}
	}
}
