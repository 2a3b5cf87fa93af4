package ui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Toggle   key.Binding
	Back     key.Binding
	Forward  key.Binding
	Faster   key.Binding
	Slower   key.Binding
	Restart  key.Binding
	Compose  key.Binding
	Pin      key.Binding
	Pick     key.Binding
	Context  key.Binding
	Copy     key.Binding
	Close    key.Binding
	Help     key.Binding
	Quit     key.Binding
	Send     key.Binding
	Leave    key.Binding
	Newline  key.Binding
	Select   key.Binding
	Cancel   key.Binding
	Up       key.Binding
	Down     key.Binding
	composed bool
}

func newKeyMap() keyMap {
	return keyMap{
		Toggle:  key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "play/pause")),
		Back:    key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←", "back")),
		Forward: key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→", "forward")),
		Faster:  key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "faster")),
		Slower:  key.NewBinding(key.WithKeys("-", "_"), key.WithHelp("-", "slower")),
		Restart: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "restart")),
		Compose: key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "reply")),
		Pin:     key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "read greeting"), key.WithDisabled()),
		Pick:    key.NewBinding(key.WithKeys("/", "o"), key.WithHelp("/", "pick message"), key.WithDisabled()),
		Context: key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "context")),
		Copy:    key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy")),
		Close:   key.NewBinding(key.WithKeys("esc", "x"), key.WithHelp("esc/x", "close")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Send:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "send")),
		Leave:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "keep reading")),
		Newline: key.NewBinding(key.WithKeys("alt+enter", "ctrl+j"), key.WithHelp("alt+enter", "newline")),
		Select:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "read")),
		Cancel:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		Up:      key.NewBinding(key.WithKeys("up", "ctrl+p"), key.WithHelp("↑", "up")),
		Down:    key.NewBinding(key.WithKeys("down", "ctrl+n"), key.WithHelp("↓", "down")),
	}
}

// setConversation enables the keys that only make sense for conversations.
func (k *keyMap) setConversation(ok bool) {
	k.Pin.SetEnabled(ok)
	k.Pick.SetEnabled(ok)
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	if k.composed {
		return []key.Binding{k.Send, k.Newline, k.Leave}
	}
	return []key.Binding{k.Toggle, k.Back, k.Forward, k.Faster, k.Slower, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	if k.composed {
		return [][]key.Binding{k.ShortHelp()}
	}
	return [][]key.Binding{
		{k.Toggle, k.Back, k.Forward, k.Restart},
		{k.Faster, k.Slower, k.Compose, k.Close},
		{k.Pick, k.Pin, k.Context, k.Copy},
		{k.Help, k.Quit},
	}
}
