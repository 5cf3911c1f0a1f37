package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	up        key.Binding
	down      key.Binding
	enter     key.Binding
	back      key.Binding
	nextTab   key.Binding
	prevTab   key.Binding
	focus     key.Binding
	playPause key.Binding
	next      key.Binding
	prev      key.Binding
	seekFwd   key.Binding
	seekBack  key.Binding
	volUp     key.Binding
	volDown   key.Binding
	shuffle   key.Binding
	repeat    key.Binding
	add       key.Binding
	create    key.Binding
	remove    key.Binding
	clear     key.Binding
	save      key.Binding
	open      key.Binding
	yes       key.Binding
	no        key.Binding
	help      key.Binding
	quit      key.Binding
	forceQuit key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		enter:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "play")),
		back:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		nextTab:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next tab")),
		prevTab:   key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev tab")),
		focus:     key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "type")),
		playPause: key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "play/pause")),
		next:      key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "next")),
		prev:      key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "previous")),
		seekFwd:   key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "+10s")),
		seekBack:  key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "-10s")),
		volUp:     key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "volume up")),
		volDown:   key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "volume down")),
		shuffle:   key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "shuffle")),
		repeat:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "repeat")),
		add:       key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add to playlist")),
		create:    key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "new playlist")),
		remove:    key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		clear:     key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "clear")),
		save:      key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save playlist")),
		open:      key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "open in browser")),
		yes:       key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "yes")),
		no:        key.NewBinding(key.WithKeys("n", "esc"), key.WithHelp("n", "no")),
		help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		quit:      key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
		forceQuit: key.NewBinding(key.WithKeys("ctrl+c")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.playPause, k.next, k.prev, k.nextTab, k.help, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.enter, k.back, k.focus},
		{k.playPause, k.next, k.prev, k.seekFwd, k.seekBack},
		{k.volUp, k.volDown, k.shuffle, k.repeat, k.open},
		{k.add, k.create, k.remove, k.clear, k.save},
		{k.nextTab, k.prevTab, k.help, k.quit},
	}
}
