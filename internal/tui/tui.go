// Copyright (c) 2026 SSHHub Team
// SSHHub - SSH connection hub
// This source code is licensed under the MIT license found in the LICENSE file.

// Package tui provides the interactive terminal interface. The top-level
// model in this file routes messages to the active view.
package tui

import (
	"context"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/common-nighthawk/go-figure"

	"github.com/toeirei/sshhub/buildvars"
	"github.com/toeirei/sshhub/internal/i18n"
	"github.com/toeirei/sshhub/internal/logging"
	"github.com/toeirei/sshhub/internal/menu"
	"github.com/toeirei/sshhub/internal/session"
)

// viewState represents which part of the UI is currently active.
type viewState int

const (
	mainMenuView viewState = iota
	pickerView
	listMenuView
	listTextView
	formView
	execView
	confirmView
	pauseView
)

// Main menu entries, in display order.
const (
	itemConnect = iota
	itemList
	itemAdd
	itemEdit
	itemDelete
	itemExec
	itemExit
)

// mainModel is the top-level model. It owns the session and delegates to
// the view selected by state.
type mainModel struct {
	ctx   context.Context
	sess  *session.Session
	state viewState

	banner   string
	main     *menu.Model
	listMenu *menu.Model
	picker   *pickerModel
	form     *formModel
	exec     *execModel
	confirm  confirmModel
	text     textModel
	pause    string

	// scanSeq numbers probe batches; results carrying an older number are
	// dropped.
	scanSeq int

	status string
	err    string

	width  int
	height int

	copyToClipboard func(string) error
}

func newModel(ctx context.Context, sess *session.Session) *mainModel {
	m := &mainModel{
		ctx:             ctx,
		sess:            sess,
		state:           mainMenuView,
		banner:          figure.NewFigure("SSHHub", "", true).String(),
		copyToClipboard: clipboard.WriteAll,
	}
	m.main = menu.New(i18n.T("menu.main.title"), true, menu.Labels(
		i18n.T("menu.main.connect"),
		i18n.T("menu.main.list"),
		i18n.T("menu.main.add"),
		i18n.T("menu.main.edit"),
		i18n.T("menu.main.remove"),
		i18n.T("menu.main.exec"),
		i18n.T("menu.main.exit"),
	)...)
	m.listMenu = menu.New(i18n.T("list.title"), true, menu.Labels(
		i18n.T("list.targets"),
		i18n.T("list.settings"),
	)...)
	return m
}

// Init implements tea.Model.
func (m *mainModel) Init() tea.Cmd { return nil }

// Update is the main message loop.
func (m *mainModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.main.Update(msg)
		m.listMenu.Update(msg)
		return m, nil
	case probeResultsMsg:
		if m.state == pickerView && m.picker != nil {
			m.picker.applyResults(msg)
		} else {
			logging.Debugf("dropping results of scan %d", msg.seq)
		}
		return m, nil
	case spinner.TickMsg:
		if m.state == pickerView && m.picker != nil && m.picker.scanning {
			return m, m.picker.tick(msg)
		}
		return m, nil
	case sessionEndedMsg:
		return m, m.sessionEnded(msg)
	}

	switch m.state {
	case mainMenuView:
		return m, m.updateMainMenu(msg)
	case pickerView:
		return m, m.updatePicker(msg)
	case listMenuView:
		return m, m.updateListMenu(msg)
	case listTextView:
		return m, m.updateText(msg)
	case formView:
		return m, m.updateForm(msg)
	case execView:
		return m, m.updateExec(msg)
	case confirmView:
		return m, m.updateConfirm(msg)
	case pauseView:
		if _, ok := msg.(tea.KeyMsg); ok {
			m.toMainMenu()
		}
	}
	return m, nil
}

// View renders the active view.
func (m *mainModel) View() string {
	var body string
	switch m.state {
	case pickerView:
		body = m.viewPicker()
	case listMenuView:
		body = m.listMenu.View()
	case listTextView:
		body = m.viewText()
	case formView:
		body = m.viewForm()
	case execView:
		body = m.viewExec()
	case confirmView:
		body = dialogBoxStyle.Render(m.confirm.prompt)
	case pauseView:
		body = m.pause
	default:
		body = m.viewMainMenu()
	}
	return docStyle.Render(body)
}

func (m *mainModel) toMainMenu() {
	m.state = mainMenuView
	m.picker = nil
	m.form = nil
	m.exec = nil
	m.main.Reset()
}

func (m *mainModel) updateMainMenu(msg tea.Msg) tea.Cmd {
	switch m.main.Update(msg) {
	case menu.Cancelled:
		m.main.Reset()
		m.askExit()
		return nil
	case menu.Selected:
	default:
		return nil
	}

	choice := m.main.Index()
	m.main.Reset()
	m.status, m.err = "", ""

	switch choice {
	case itemConnect:
		return m.openPicker(pickConnect)
	case itemList:
		m.listMenu.Reset()
		m.state = listMenuView
	case itemAdd:
		m.openForm(nil)
	case itemEdit:
		return m.openPicker(pickEdit)
	case itemDelete:
		return m.openPicker(pickDelete)
	case itemExec:
		m.openExec()
	case itemExit:
		m.askExit()
	}
	return nil
}

func (m *mainModel) viewMainMenu() string {
	var lines []string
	for _, l := range strings.Split(m.banner, "\n") {
		if strings.TrimSpace(l) != "" {
			lines = append(lines, bannerStyle.Render(l))
		}
	}
	lines = append(lines, "")
	if err := m.sess.LoadErr; err != nil {
		lines = append(lines, warningBannerStyle.Render(i18n.T("error.load", m.sess.Store.Location(), err)), "")
	}
	lines = append(lines, m.main.View())
	if m.status != "" {
		lines = append(lines, successStyle.Render(m.status))
	}
	if m.err != "" {
		lines = append(lines, errorStyle.Render(m.err))
	}
	lines = append(lines, "", m.footer(m.sess.Store.Location(), buildvars.VersionOrDefault("dev")))
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// Run starts the interactive interface and blocks until the user exits.
func Run(ctx context.Context, sess *session.Session) error {
	p := tea.NewProgram(newModel(ctx, sess), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		logging.Errorf("TUI run error: %v", err)
		return err
	}
	return nil
}
