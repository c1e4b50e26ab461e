// Copyright (c) 2026 SSHHub Team
// SSHHub - SSH connection hub
// This source code is licensed under the MIT license found in the LICENSE file.

package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/toeirei/sshhub/internal/i18n"
	"github.com/toeirei/sshhub/internal/menu"
	"github.com/toeirei/sshhub/internal/model"
	"github.com/toeirei/sshhub/internal/store"
)

// textModel is a read-only page reached from the list menu.
type textModel struct {
	title string
	body  string
}

func (m *mainModel) updateListMenu(msg tea.Msg) tea.Cmd {
	switch m.listMenu.Update(msg) {
	case menu.Cancelled:
		m.toMainMenu()
	case menu.Selected:
		if m.listMenu.Index() == 0 {
			m.text = textModel{title: i18n.T("list.targets"), body: targetTable(m.sess.Registry.List())}
		} else {
			m.text = textModel{title: i18n.T("list.settings"), body: m.settingsJSON()}
		}
		m.listMenu.Reset()
		m.state = listTextView
	}
	return nil
}

func (m *mainModel) updateText(msg tea.Msg) tea.Cmd {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.String() {
		case "esc", "enter", "q":
			m.state = listMenuView
		}
	}
	return nil
}

func (m *mainModel) viewText() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(m.text.title),
		m.text.body,
		"",
		helpStyle.Render(i18n.T("list.back")),
	)
}

func (m *mainModel) settingsJSON() string {
	data, err := store.Marshal(m.sess.Registry.Snapshot())
	if err != nil {
		return errorStyle.Render(i18n.T("error.prefix", err))
	}
	return string(data)
}

// targetTable renders one line per target with every field.
func targetTable(targets []model.Target) string {
	if len(targets) == 0 {
		return helpStyle.Render(i18n.T("list.empty"))
	}
	var b strings.Builder
	b.WriteString(helpStyle.Render(i18n.T("list.header")))
	for _, t := range targets {
		scan := "n"
		if t.ScanOnline {
			scan = "y"
		}
		fmt.Fprintf(&b, "\n%-5d %-20s %-32s %s", t.ID, t.Name, t.String(), scan)
	}
	return b.String()
}
