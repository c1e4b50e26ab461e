// Copyright (c) 2026 SSHHub Team
// SSHHub - SSH connection hub
// This source code is licensed under the MIT license found in the LICENSE file.

package session

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/toeirei/sshhub/internal/audit"
	"github.com/toeirei/sshhub/internal/launch"
	"github.com/toeirei/sshhub/internal/model"
	"github.com/toeirei/sshhub/internal/registry"
	"github.com/toeirei/sshhub/internal/store"
)

// memStore is an in-memory store whose Save can be made to fail.
type memStore struct {
	data    *model.Registry
	loadErr error
	saveErr error
	saves   int
}

func (m *memStore) Load(context.Context) (*model.Registry, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	if m.data == nil {
		return model.NewRegistry(), nil
	}
	return m.data.Clone(), nil
}

func (m *memStore) Save(_ context.Context, r *model.Registry) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	m.data = r.Clone()
	return nil
}

func (m *memStore) Location() string { return "memory" }

type fakeRunner struct {
	executable string
	args       []string
	code       int
	err        error
}

func (f *fakeRunner) Run(_ context.Context, executable string, args []string, _ launch.Stdio) (int, error) {
	f.executable, f.args = executable, args
	return f.code, f.err
}

var web = model.Target{ID: 1, Name: "web", Host: "10.0.0.5", Port: 22, Username: "root"}

func TestSession_AddPersists(t *testing.T) {
	st := &memStore{}
	s := Open(context.Background(), st, nil, nil, nil)
	if _, err := s.Add(context.Background(), web); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if st.saves != 1 || len(st.data.Targets) != 1 {
		t.Fatalf("expected one save with one target, got %d saves, %+v", st.saves, st.data)
	}
	if _, err := s.Add(context.Background(), web); !errors.Is(err, registry.ErrDuplicateID) {
		t.Fatalf("expected ErrDuplicateID, got %v", err)
	}
	if st.saves != 1 {
		t.Fatalf("rejected add must not save, got %d saves", st.saves)
	}
}

func TestSession_SaveFailureRollsBack(t *testing.T) {
	st := &memStore{data: &model.Registry{Exec: model.DefaultExec, Targets: []model.Target{web}}}
	s := Open(context.Background(), st, nil, nil, nil)
	st.saveErr = store.ErrIO

	if err := s.Remove(context.Background(), 1); !errors.Is(err, store.ErrIO) {
		t.Fatalf("expected ErrIO, got %v", err)
	}
	if !s.Registry.Has(1) {
		t.Fatalf("remove was not rolled back")
	}
	if err := s.SetExec(context.Background(), "mosh {$IP}"); err == nil {
		t.Fatalf("expected SetExec to fail")
	}
	if s.Registry.Exec() != model.DefaultExec {
		t.Fatalf("exec was not rolled back: %q", s.Registry.Exec())
	}
}

func TestSession_LoadErrorStartsEmpty(t *testing.T) {
	st := &memStore{loadErr: store.ErrCorruptConfig}
	s := Open(context.Background(), st, nil, nil, nil)
	if !errors.Is(s.LoadErr, store.ErrCorruptConfig) {
		t.Fatalf("expected LoadErr to be set, got %v", s.LoadErr)
	}
	if s.Registry.Len() != 0 || s.Registry.Exec() != model.DefaultExec {
		t.Fatalf("expected empty registry")
	}
}

func TestSession_ReplaceChangesID(t *testing.T) {
	st := &memStore{data: &model.Registry{Exec: model.DefaultExec, Targets: []model.Target{web}}}
	s := Open(context.Background(), st, nil, nil, nil)
	moved := web
	moved.ID = 7
	if _, err := s.Replace(context.Background(), 1, moved); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	if s.Registry.Has(1) || !s.Registry.Has(7) || st.data.Targets[0].ID != 7 {
		t.Fatalf("replace did not move target: %+v", st.data.Targets)
	}
}

func TestSession_LaunchUsesTemplateAndAudits(t *testing.T) {
	st := &memStore{data: &model.Registry{Exec: model.DefaultExec, Targets: []model.Target{web}}}
	run := &fakeRunner{code: 255}
	var logBuf bytes.Buffer
	s := Open(context.Background(), st, nil, run, audit.New(&logBuf))

	code, err := s.Launch(context.Background(), 1, launch.Stdio{})
	if err != nil || code != 255 {
		t.Fatalf("Launch: %d, %v", code, err)
	}
	if run.executable != "ssh" || strings.Join(run.args, " ") != "root@10.0.0.5 -p 22" {
		t.Fatalf("unexpected command: %s %v", run.executable, run.args)
	}
	if !strings.Contains(logBuf.String(), "status=started") || !strings.Contains(logBuf.String(), "exit=255") {
		t.Fatalf("launch not audited: %s", logBuf.String())
	}

	if _, err := s.Launch(context.Background(), 42, launch.Stdio{}); !errors.Is(err, registry.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for stale id, got %v", err)
	}
}

func TestSession_ReplaceAllWithJSONStore(t *testing.T) {
	st := store.NewJSONStore(filepath.Join(t.TempDir(), "config.json"))
	s := Open(context.Background(), st, nil, nil, nil)
	next := &model.Registry{Exec: "ssh {$IP}", Targets: []model.Target{web}}
	if err := s.ReplaceAll(context.Background(), next); err != nil {
		t.Fatalf("ReplaceAll: %v", err)
	}
	loaded, err := st.Load(context.Background())
	if err != nil || loaded.Exec != "ssh {$IP}" || len(loaded.Targets) != 1 {
		t.Fatalf("unexpected stored registry: %+v, %v", loaded, err)
	}
}
