// Copyright (c) 2026 SSHHub Team
// SSHHub - SSH connection hub
// This source code is licensed under the MIT license found in the LICENSE file.

package tui

import (
	"errors"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/toeirei/sshhub/internal/editor"
	"github.com/toeirei/sshhub/internal/i18n"
	"github.com/toeirei/sshhub/internal/validate"
)

// execModel edits the launch template.
type execModel struct {
	current string
	input   textinput.Model
	err     string
}

func (m *mainModel) openExec() {
	e := &execModel{current: m.sess.Registry.Exec(), input: textinput.New()}
	e.input.Prompt = "> "
	e.input.CharLimit = 1024
	e.input.Placeholder = e.current
	e.input.Focus()
	m.exec = e
	m.state = execView
}

func (m *mainModel) updateExec(msg tea.Msg) tea.Cmd {
	e := m.exec
	k, ok := msg.(tea.KeyMsg)
	if !ok || (k.Type != tea.KeyEnter && k.Type != tea.KeyEsc) {
		var cmd tea.Cmd
		e.input, cmd = e.input.Update(msg)
		return cmd
	}

	raw := e.input.Value()
	if k.Type == tea.KeyEsc {
		raw = validate.CancelSentinel
	}
	v, err := validate.String(raw, e.current, true)
	switch {
	case errors.Is(err, validate.ErrCancelled):
		m.toMainMenu()
		m.status = i18n.T("result.cancelled")
		return nil
	case err != nil:
		e.err = editor.Describe(err)
		e.input.Reset()
		return nil
	}

	m.toMainMenu()
	if err := m.sess.SetExec(m.ctx, v); err != nil {
		m.err = editor.Describe(err)
		return nil
	}
	m.status = i18n.T("result.exec_saved")
	return nil
}

func (m *mainModel) viewExec() string {
	e := m.exec
	lines := []string{
		titleStyle.Render(i18n.T("exec.title")),
		helpStyle.Render(i18n.T("exec.placeholders")),
		"",
		i18n.T("exec.prompt", e.current),
		e.input.View(),
	}
	if e.err != "" {
		lines = append(lines, errorStyle.Render(e.err))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
