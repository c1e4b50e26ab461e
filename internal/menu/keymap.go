// Copyright (c) 2026 SSHHub Team
// SSHHub - SSH connection hub
// This source code is licensed under the MIT license found in the LICENSE file.

package menu

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

type KeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Select key.Binding
	Back   key.Binding
	Jump   key.Binding
}

func (km KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{km.Up, km.Down, km.Select, km.Jump, km.Back}
}

func (km KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{km.Up, km.Down}, {km.Select, km.Jump, km.Back}}
}

// KeyMap implements help.KeyMap
var _ help.KeyMap = KeyMap{}

// ↑ ↓ ⏎ esc
var DefaultKeyMap = KeyMap{
	Up: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("↓/j", "down"),
	),
	Select: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "select"),
	),
	Back: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "back"),
	),
	Jump: key.NewBinding(
		key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9"),
		key.WithHelp("1-9", "jump"),
	),
}

// KeyFromMsg translates a bubbletea key message into a Selector key.
func KeyFromMsg(msg tea.KeyMsg) Key {
	switch {
	case key.Matches(msg, DefaultKeyMap.Up):
		return KeyUp
	case key.Matches(msg, DefaultKeyMap.Down):
		return KeyDown
	case key.Matches(msg, DefaultKeyMap.Select):
		return KeyEnter
	case key.Matches(msg, DefaultKeyMap.Back):
		return KeyEscape
	case key.Matches(msg, DefaultKeyMap.Jump):
		return Digit(int(msg.String()[0] - '0'))
	}
	return KeyOther
}
