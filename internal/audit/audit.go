// Copyright (c) 2026 SSHHub Team
// SSHHub - SSH connection hub
// This source code is licensed under the MIT license found in the LICENSE file.

// Package audit records launched sessions in an append-only access log.
package audit

import (
	"io"
	"os"
	"time"

	clog "github.com/charmbracelet/log"

	"github.com/toeirei/sshhub/internal/logging"
	"github.com/toeirei/sshhub/internal/model"
)

// Log writes one logfmt line per launch event. A nil *Log discards events.
type Log struct {
	l *clog.Logger
	c io.Closer
}

// New returns a Log writing to w.
func New(w io.Writer) *Log {
	return &Log{l: clog.NewWithOptions(w, clog.Options{
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Formatter:       clog.LogfmtFormatter,
	})}
}

// Open appends to the access log at path, creating it if needed.
func Open(path string) (*Log, error) {
	f, err := logging.OpenFile(path)
	if err != nil {
		return nil, err
	}
	a := New(f)
	a.c = f
	return a, nil
}

// Close closes the underlying file, if any.
func (a *Log) Close() error {
	if a == nil || a.c == nil {
		return nil
	}
	return a.c.Close()
}

// Start records that a session to t is being launched. It is written before
// the command blocks so a killed terminal still leaves a record.
func (a *Log) Start(t model.Target, command string) {
	if a == nil {
		return
	}
	a.l.Info("connect", "id", t.ID, "name", t.Name, "host", t.Host, "port", t.EffectivePort(),
		"user", t.Username, "command", command, "status", "started")
	a.sync()
}

// End records how the session to t finished.
func (a *Log) End(t model.Target, code int, err error) {
	if a == nil {
		return
	}
	kv := []any{"id", t.ID, "name", t.Name, "host", t.Host, "port", t.EffectivePort(),
		"user", t.Username, "exit", code}
	if err != nil {
		a.l.Error("connect", append(kv, "status", "failure", "err", err)...)
	} else {
		a.l.Info("connect", append(kv, "status", "ended")...)
	}
	a.sync()
}

func (a *Log) sync() {
	if f, ok := a.c.(*os.File); ok {
		_ = f.Sync()
	}
}
