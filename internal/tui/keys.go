package tui

import "github.com/charmbracelet/bubbles/key"

// Letters go to the search box, so every action sits on a control key.
type keyMap struct {
	Up, Down           key.Binding
	NextWeek, PrevWeek key.Binding
	Period, PeriodBack key.Binding
	ScrollUp           key.Binding
	ScrollDown         key.Binding
	Open, Copy, Quit   key.Binding
}

var keys = keyMap{
	Up:         key.NewBinding(key.WithKeys("up", "ctrl+k"), key.WithHelp("↑", "subir")),
	Down:       key.NewBinding(key.WithKeys("down", "ctrl+j"), key.WithHelp("↓", "descer")),
	NextWeek:   key.NewBinding(key.WithKeys("ctrl+n", "pgdown"), key.WithHelp("C-n", "próxima semana")),
	PrevWeek:   key.NewBinding(key.WithKeys("ctrl+p", "pgup"), key.WithHelp("C-p", "semana anterior")),
	Period:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "período")),
	PeriodBack: key.NewBinding(key.WithKeys("shift+tab")),
	ScrollUp:   key.NewBinding(key.WithKeys("ctrl+u"), key.WithHelp("C-u/C-d", "rolar resumo")),
	ScrollDown: key.NewBinding(key.WithKeys("ctrl+d")),
	Open:       key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "abrir no editor")),
	Copy:       key.NewBinding(key.WithKeys("ctrl+y"), key.WithHelp("C-y", "copiar caminho")),
	Quit:       key.NewBinding(key.WithKeys("esc", "ctrl+c"), key.WithHelp("esc", "sair")),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.NextWeek, k.Period, k.ScrollUp, k.Open, k.Copy, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.NextWeek, k.PrevWeek},
		{k.Period, k.ScrollUp, k.Open, k.Copy, k.Quit},
	}
}
