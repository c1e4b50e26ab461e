// Copyright (c) 2026 SSHHub Team
// SSHHub - SSH connection hub
// This source code is licensed under the MIT license found in the LICENSE file.

package menu

import (
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/toeirei/sshhub/util/slicest"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#8655B1")).MarginBottom(1)
	itemStyle   = lipgloss.NewStyle().PaddingLeft(2)
	activeStyle = lipgloss.NewStyle().Reverse(true)
)

// Item is one selectable row. Status is rendered after the label as is, so
// callers may pre-style it.
type Item struct {
	Label  string
	Status string
}

// Model is a bubbletea component for a vertical menu.
type Model struct {
	Title string
	Items []Item

	sel  *Selector
	help help.Model
}

// New returns a menu over items.
func New(title string, shortcuts bool, items ...Item) *Model {
	return &Model{
		Title: title,
		Items: items,
		sel:   NewSelector(len(items), shortcuts),
		help:  help.New(),
	}
}

// Labels builds items without status from plain labels.
func Labels(labels ...string) []Item {
	return slicest.Map(labels, func(l string) Item { return Item{Label: l} })
}

// SetItems replaces the items and returns the menu to Displaying.
func (m *Model) SetItems(items ...Item) {
	m.Items = items
	m.sel.Reset(len(items))
}

// Reset returns the menu to Displaying, keeping the highlight.
func (m *Model) Reset() { m.sel.Reset(len(m.Items)) }

// Update feeds key messages to the selector and returns its state.
func (m *Model) Update(msg tea.Msg) State {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.sel.Handle(KeyFromMsg(msg))
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
	}
	return m.sel.State()
}

// State returns the selection state.
func (m *Model) State() State { return m.sel.State() }

// Index returns the highlighted or selected index.
func (m *Model) Index() int { return m.sel.Index() }

// SetIndex moves the highlight.
func (m *Model) SetIndex(i int) { m.sel.SetIndex(i) }

func (m *Model) View() string {
	rows := slicest.MapI(m.Items, func(i int, it Item) string {
		label := it.Label
		if m.sel.Shortcuts() && i < 9 {
			label = fmt.Sprintf("%d. %s", i+1, label)
		}
		if i == m.sel.Index() {
			label = "> " + activeStyle.Render(label)
		} else {
			label = "  " + label
		}
		if it.Status != "" {
			label += "  " + it.Status
		}
		return itemStyle.Render(label)
	})

	parts := []string{}
	if m.Title != "" {
		parts = append(parts, titleStyle.Render(m.Title))
	}
	parts = append(parts, rows...)
	parts = append(parts, "", m.help.View(m.keyMap()))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m *Model) keyMap() KeyMap {
	km := DefaultKeyMap
	km.Jump.SetEnabled(m.sel.Shortcuts())
	return km
}
