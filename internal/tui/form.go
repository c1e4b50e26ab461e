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
	"github.com/toeirei/sshhub/internal/model"
	"github.com/toeirei/sshhub/internal/validate"
)

// formModel renders an editor.Form one field at a time.
type formModel struct {
	form  *editor.Form
	input textinput.Model
	err   string
}

func newFormModel(current *model.Target, taken func(int) bool) *formModel {
	f := &formModel{form: editor.New(current, taken), input: textinput.New()}
	f.input.Prompt = "> "
	f.input.CharLimit = 256
	f.nextField()
	return f
}

func (f *formModel) nextField() {
	f.input.Reset()
	f.input.Placeholder = f.form.Placeholder()
	f.input.Focus()
}

func (m *mainModel) openForm(current *model.Target) {
	m.form = newFormModel(current, m.sess.Registry.Has)
	m.state = formView
}

func (m *mainModel) updateForm(msg tea.Msg) tea.Cmd {
	f := m.form
	k, ok := msg.(tea.KeyMsg)
	if !ok || (k.Type != tea.KeyEnter && k.Type != tea.KeyEsc) {
		var cmd tea.Cmd
		f.input, cmd = f.input.Update(msg)
		return cmd
	}

	value := f.input.Value()
	if k.Type == tea.KeyEsc {
		value = validate.CancelSentinel
	}
	err := f.form.Submit(value)
	switch {
	case errors.Is(err, validate.ErrCancelled):
		m.toMainMenu()
		m.status = i18n.T("result.cancelled")
	case err != nil:
		f.err = editor.Describe(err)
		f.input.Reset()
	case f.form.Done():
		m.commitForm()
	default:
		f.err = ""
		f.nextField()
	}
	return nil
}

func (m *mainModel) commitForm() {
	f := m.form
	t, _ := f.form.Result()
	var err error
	if f.form.IsNew() {
		t, err = m.sess.Add(m.ctx, t)
	} else {
		t, err = m.sess.Replace(m.ctx, f.form.Original().ID, t)
	}
	isNew := f.form.IsNew()
	m.toMainMenu()
	if err != nil {
		m.err = editor.Describe(err)
		return
	}
	if isNew {
		m.status = i18n.T("result.added", t.ID)
	} else {
		m.status = i18n.T("result.updated", t.ID)
	}
}

func (m *mainModel) viewForm() string {
	f := m.form
	title := i18n.T("form.add_title")
	if !f.form.IsNew() {
		title = i18n.T("form.edit_title", f.form.Original().String())
	}
	lines := []string{
		titleStyle.Render(title),
		f.form.Prompt(),
		f.input.View(),
	}
	if f.err != "" {
		lines = append(lines, errorStyle.Render(f.err))
	}
	lines = append(lines, "", helpStyle.Render(i18n.T("form.cancel_hint")))
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
