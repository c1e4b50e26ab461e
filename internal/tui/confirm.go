// Copyright (c) 2026 SSHHub Team
// SSHHub - SSH connection hub
// This source code is licensed under the MIT license found in the LICENSE file.

package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/toeirei/sshhub/internal/editor"
	"github.com/toeirei/sshhub/internal/i18n"
	"github.com/toeirei/sshhub/internal/model"
)

// confirmModel is a yes/no question. Only "y" confirms; any other key
// returns to the main menu.
type confirmModel struct {
	prompt string
	onYes  func() tea.Cmd
}

func (m *mainModel) askExit() {
	m.confirm = confirmModel{
		prompt: i18n.T("confirm.exit"),
		onYes:  func() tea.Cmd { return tea.Quit },
	}
	m.state = confirmView
}

func (m *mainModel) askDelete(t model.Target) {
	m.confirm = confirmModel{
		prompt: specialStyle.Render(i18n.T("confirm.delete", t.String())),
		onYes: func() tea.Cmd {
			if err := m.sess.Remove(m.ctx, t.ID); err != nil {
				m.err = editor.Describe(err)
			} else {
				m.status = i18n.T("result.removed", t.ID)
			}
			return nil
		},
	}
	m.state = confirmView
}

func (m *mainModel) updateConfirm(msg tea.Msg) tea.Cmd {
	k, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	m.toMainMenu()
	if strings.EqualFold(k.String(), "y") {
		return m.confirm.onYes()
	}
	return nil
}
