// Copyright (c) 2026 SSHHub Team
// SSHHub - SSH connection hub
// This source code is licensed under the MIT license found in the LICENSE file.

package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/toeirei/sshhub/internal/i18n"
	"github.com/toeirei/sshhub/internal/menu"
	"github.com/toeirei/sshhub/internal/model"
	"github.com/toeirei/sshhub/internal/session"
)

type pickerPurpose int

const (
	pickConnect pickerPurpose = iota
	pickEdit
	pickDelete
)

// probeResultsMsg carries the outcome of one probe batch.
type probeResultsMsg struct {
	seq     int
	results map[int]model.ProbeStatus
}

// pickerModel selects one target. The connect picker also probes every
// target that has scanning enabled.
type pickerModel struct {
	purpose  pickerPurpose
	menu     *menu.Model
	targets  []model.Target
	statuses map[int]model.ProbeStatus

	seq      int
	scanning bool
	spinner  spinner.Model

	note string
}

func newPicker(purpose pickerPurpose, targets []model.Target) *pickerModel {
	title := i18n.T("picker.connect.title")
	switch purpose {
	case pickEdit:
		title = i18n.T("picker.edit.title")
	case pickDelete:
		title = i18n.T("picker.remove.title")
	}
	p := &pickerModel{
		purpose:  purpose,
		targets:  targets,
		statuses: map[int]model.ProbeStatus{},
		spinner:  spinner.New(spinner.WithSpinner(spinner.Dot)),
	}
	p.spinner.Style = helpStyle
	p.menu = menu.New(title, true, p.items()...)
	return p
}

func (p *pickerModel) items() []menu.Item {
	items := make([]menu.Item, 0, len(p.targets))
	for _, t := range p.targets {
		items = append(items, menu.Item{
			Label:  fmt.Sprintf("%-4d %-20s %s", t.ID, t.Name, t),
			Status: p.statusText(t),
		})
	}
	return items
}

func (p *pickerModel) statusText(t model.Target) string {
	if !t.ScanOnline || p.purpose != pickConnect {
		return ""
	}
	if p.scanning {
		return p.spinner.View()
	}
	switch p.statuses[t.ID] {
	case model.Online:
		return successStyle.Render(i18n.T("status.online"))
	case model.Offline:
		return errorStyle.Render(i18n.T("status.offline"))
	case model.Error:
		return specialStyle.Render(i18n.T("status.error"))
	}
	return ""
}

// reload replaces the targets, keeping the highlight where possible.
func (p *pickerModel) reload(targets []model.Target) {
	idx := p.menu.Index()
	p.targets = targets
	p.menu.SetItems(p.items()...)
	p.menu.SetIndex(idx)
}

func (p *pickerModel) refresh() {
	idx := p.menu.Index()
	p.menu.Items = p.items()
	p.menu.SetIndex(idx)
}

func (p *pickerModel) applyResults(msg probeResultsMsg) {
	if msg.seq != p.seq {
		return
	}
	p.statuses = msg.results
	p.scanning = false
	p.refresh()
}

func (p *pickerModel) tick(msg spinner.TickMsg) tea.Cmd {
	var cmd tea.Cmd
	p.spinner, cmd = p.spinner.Update(msg)
	p.refresh()
	return cmd
}

// probeCmd runs one probe batch off the UI goroutine.
func probeCmd(ctx context.Context, sess *session.Session, seq int, targets []model.Target) tea.Cmd {
	return func() tea.Msg {
		return probeResultsMsg{seq: seq, results: sess.Probe(ctx, targets)}
	}
}

func (m *mainModel) openPicker(purpose pickerPurpose) tea.Cmd {
	p := newPicker(purpose, m.sess.Registry.List())
	m.picker = p
	m.state = pickerView

	if purpose != pickConnect {
		return nil
	}
	scan := false
	for _, t := range p.targets {
		scan = scan || t.ScanOnline
	}
	if !scan {
		return nil
	}
	m.scanSeq++
	p.seq = m.scanSeq
	p.scanning = true
	p.refresh()
	return tea.Batch(p.spinner.Tick, probeCmd(m.ctx, m.sess, p.seq, p.targets))
}

func (m *mainModel) updatePicker(msg tea.Msg) tea.Cmd {
	p := m.picker
	if k, ok := msg.(tea.KeyMsg); ok && p.purpose == pickConnect && k.String() == "c" {
		m.copySelected()
		return nil
	}

	switch p.menu.Update(msg) {
	case menu.Cancelled:
		m.toMainMenu()
		return nil
	case menu.Selected:
	default:
		return nil
	}

	picked := p.targets[p.menu.Index()]
	// The registry may have changed since the picker was built.
	t, err := m.sess.Registry.Get(picked.ID)
	if err != nil {
		p.note = specialStyle.Render(i18n.T("picker.stale", picked.ID))
		p.reload(m.sess.Registry.List())
		return nil
	}
	p.note = ""

	switch p.purpose {
	case pickEdit:
		m.openForm(&t)
	case pickDelete:
		m.askDelete(t)
	default:
		return m.launch(t)
	}
	return nil
}

func (m *mainModel) copySelected() {
	p := m.picker
	if len(p.targets) == 0 {
		return
	}
	cmd, err := m.sess.Command(p.targets[p.menu.Index()])
	if err == nil {
		err = m.copyToClipboard(cmd.Line)
	}
	if err != nil {
		p.note = errorStyle.Render(i18n.T("picker.copy_failed", err))
		return
	}
	p.note = successStyle.Render(i18n.T("picker.copied", cmd.Line))
}

func (m *mainModel) viewPicker() string {
	p := m.picker
	lines := []string{}
	if len(p.targets) == 0 {
		lines = append(lines, titleStyle.Render(p.menu.Title), helpStyle.Render(i18n.T("picker.empty")))
	} else {
		lines = append(lines, p.menu.View())
	}
	if p.scanning {
		lines = append(lines, helpStyle.Render(p.spinner.View()+" "+i18n.T("picker.scanning")))
	}
	if p.note != "" {
		lines = append(lines, p.note)
	}
	right := ""
	if p.purpose == pickConnect {
		right = i18n.T("picker.help_copy")
	}
	lines = append(lines, "", m.footer(m.sess.Store.Location(), right))
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
