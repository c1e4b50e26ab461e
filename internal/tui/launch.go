// Copyright (c) 2026 SSHHub Team
// SSHHub - SSH connection hub
// This source code is licensed under the MIT license found in the LICENSE file.

package tui

import (
	"context"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/toeirei/sshhub/internal/editor"
	"github.com/toeirei/sshhub/internal/i18n"
	"github.com/toeirei/sshhub/internal/launch"
	"github.com/toeirei/sshhub/internal/model"
	"github.com/toeirei/sshhub/internal/session"
)

// sessionEndedMsg is sent when a launched command returns control.
type sessionEndedMsg struct {
	line string
	code int
	err  error
}

// runnerExec adapts a session launch to tea.ExecCommand so bubbletea can
// release the terminal while the command runs.
type runnerExec struct {
	ctx    context.Context
	sess   *session.Session
	target model.Target
	cmd    launch.Command
	stdio  launch.Stdio
	code   int
}

var _ tea.ExecCommand = (*runnerExec)(nil)

func (r *runnerExec) SetStdin(in io.Reader)   { r.stdio.Stdin = in }
func (r *runnerExec) SetStdout(out io.Writer) { r.stdio.Stdout = out }
func (r *runnerExec) SetStderr(out io.Writer) { r.stdio.Stderr = out }

func (r *runnerExec) Run() error {
	code, err := r.sess.Run(r.ctx, r.target, r.cmd, r.stdio)
	r.code = code
	return err
}

func (m *mainModel) launch(t model.Target) tea.Cmd {
	cmd, err := m.sess.Command(t)
	if err != nil {
		m.toMainMenu()
		m.err = editor.Describe(err)
		return nil
	}
	rx := &runnerExec{ctx: m.ctx, sess: m.sess, target: t, cmd: cmd}
	// Drop the picker so results of a scan still in flight are ignored.
	m.picker = nil
	m.state = pauseView
	m.pause = ""
	return tea.Exec(rx, func(err error) tea.Msg {
		return sessionEndedMsg{line: cmd.Line, code: rx.code, err: err}
	})
}

func (m *mainModel) sessionEnded(msg sessionEndedMsg) tea.Cmd {
	m.state = pauseView
	if msg.err != nil {
		m.pause = errorStyle.Render(i18n.T("session.failed", msg.line, msg.err))
	} else {
		m.pause = helpStyle.Render(i18n.T("session.ended", msg.code))
	}
	return nil
}
