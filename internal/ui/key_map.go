package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	up         key.Binding
	down       key.Binding
	nextTab    key.Binding
	prevTab    key.Binding
	enter      key.Binding
	back       key.Binding
	search     key.Binding
	watchlists key.Binding
	add        key.Binding
	remove     key.Binding
	create     key.Binding
	open       key.Binding
	session    key.Binding
	quit       key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:         key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:       key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		nextTab:    key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next row")),
		prevTab:    key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev row")),
		enter:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
		back:       key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		search:     key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		watchlists: key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "watchlists")),
		add:        key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add to current")),
		remove:     key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "remove")),
		create:     key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new watchlist")),
		open:       key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "open in browser")),
		session:    key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "sign in/out")),
		quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.enter, k.back},
		{k.nextTab, k.prevTab, k.search, k.watchlists},
		{k.add, k.remove, k.create, k.open},
		{k.session, k.quit},
	}
}
