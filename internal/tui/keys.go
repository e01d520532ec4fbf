package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up         key.Binding
	Down       key.Binding
	Left       key.Binding
	Right      key.Binding
	Pick       key.Binding
	Open       key.Binding
	Back       key.Binding
	Add        key.Binding
	New        key.Binding
	DeleteCard key.Binding
	DeleteList key.Binding
	Refresh    key.Binding
	Quit       key.Binding
	Yes        key.Binding
	No         key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:         key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:       key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Left:       key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "prev list")),
		Right:      key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next list")),
		Pick:       key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "pick up / drop")),
		Open:       key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
		Back:       key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		Add:        key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add card")),
		New:        key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new")),
		DeleteCard: key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "delete")),
		DeleteList: key.NewBinding(key.WithKeys("D"), key.WithHelp("D", "delete list")),
		Refresh:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Yes:        key.NewBinding(key.WithKeys("y", "Y"), key.WithHelp("y", "yes")),
		No:         key.NewBinding(key.WithKeys("n", "N", "esc"), key.WithHelp("n", "no")),
	}
}

// dashboardKeys and boardKeys feed the help line of each screen.
type dashboardKeys keyMap

func (k dashboardKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Open, k.New, k.DeleteCard, k.Refresh, k.Quit}
}

func (k dashboardKeys) FullHelp() [][]key.Binding { return [][]key.Binding{k.ShortHelp()} }

type boardKeys keyMap

func (k boardKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Left, k.Right, k.Pick, k.Open, k.Add, k.New, k.DeleteCard, k.DeleteList, k.Refresh, k.Back}
}

func (k boardKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right},
		{k.Pick, k.Open, k.Add, k.New},
		{k.DeleteCard, k.DeleteList, k.Refresh, k.Back, k.Quit},
	}
}
