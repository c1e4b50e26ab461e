// Copyright (c) 2026 SSHHub Team
// SSHHub - SSH connection hub
// This source code is licensed under the MIT license found in the LICENSE file.

// Package session ties the registry to its store, the prober and the
// launcher for one run of the program. A Session is constructed once at
// startup and handed to every user interface component.
package session

import (
	"context"
	"fmt"

	"github.com/toeirei/sshhub/internal/audit"
	"github.com/toeirei/sshhub/internal/launch"
	"github.com/toeirei/sshhub/internal/logging"
	"github.com/toeirei/sshhub/internal/model"
	"github.com/toeirei/sshhub/internal/probe"
	"github.com/toeirei/sshhub/internal/registry"
	"github.com/toeirei/sshhub/internal/store"
)

// Session is the state shared by the interactive and command-line front
// ends.
type Session struct {
	Registry *registry.Registry
	Store    store.Store
	Prober   *probe.Prober
	Runner   launch.Runner
	Audit    *audit.Log

	// LoadErr is set when the stored registry could not be read and the
	// session fell back to an empty registry.
	LoadErr error
}

// Open loads the registry from st. A corrupt or unreadable store does not
// fail the session: it starts empty and LoadErr records why.
func Open(ctx context.Context, st store.Store, prober *probe.Prober, runner launch.Runner, log *audit.Log) *Session {
	s := &Session{Store: st, Prober: prober, Runner: runner, Audit: log}
	if s.Prober == nil {
		s.Prober = probe.New(probe.DefaultTimeout)
	}
	if s.Runner == nil {
		s.Runner = launch.ExecRunner{}
	}

	data, err := st.Load(ctx)
	if err == nil {
		s.Registry, err = registry.FromModel(data)
	}
	if err != nil {
		logging.Errorf("could not load registry from %s, starting empty: %v", st.Location(), err)
		s.LoadErr = err
		s.Registry, _ = registry.New("", nil)
	}
	return s
}

// commit runs mutate and persists the result. If either step fails the
// registry is rolled back to its previous state.
func (s *Session) commit(ctx context.Context, mutate func() error) error {
	before := s.Registry.Snapshot()
	if err := mutate(); err != nil {
		return err
	}
	if err := s.Store.Save(ctx, s.Registry.Snapshot()); err != nil {
		s.Registry.Restore(before)
		logging.Errorf("save to %s failed, change reverted: %v", s.Store.Location(), err)
		return fmt.Errorf("could not save registry: %w", err)
	}
	return nil
}

// Add stores a new target and persists the registry.
func (s *Session) Add(ctx context.Context, t model.Target) (model.Target, error) {
	var stored model.Target
	err := s.commit(ctx, func() (err error) {
		stored, err = s.Registry.Add(t)
		return err
	})
	if err == nil {
		logging.Infof("added target %d (%s)", stored.ID, stored)
	}
	return stored, err
}

// Replace overwrites the target with the given id by t and persists the
// registry. t may carry a different id.
func (s *Session) Replace(ctx context.Context, id int, t model.Target) (model.Target, error) {
	var stored model.Target
	err := s.commit(ctx, func() (err error) {
		stored, err = s.Registry.Update(id, func(cur *model.Target) { *cur = t })
		return err
	})
	if err == nil {
		logging.Infof("updated target %d -> %d (%s)", id, stored.ID, stored)
	}
	return stored, err
}

// Remove deletes a target and persists the registry.
func (s *Session) Remove(ctx context.Context, id int) error {
	err := s.commit(ctx, func() error { return s.Registry.Remove(id) })
	if err == nil {
		logging.Infof("removed target %d", id)
	}
	return err
}

// SetExec replaces the launch template and persists the registry.
func (s *Session) SetExec(ctx context.Context, exec string) error {
	return s.commit(ctx, func() error { return s.Registry.SetExec(exec) })
}

// ReplaceAll swaps in a whole registry (used by restore) and persists it.
func (s *Session) ReplaceAll(ctx context.Context, data *model.Registry) error {
	next, err := registry.FromModel(data)
	if err != nil {
		return err
	}
	return s.commit(ctx, func() error {
		s.Registry.Restore(next.Snapshot())
		return nil
	})
}

// Probe classifies every target in targets concurrently.
func (s *Session) Probe(ctx context.Context, targets []model.Target) map[int]model.ProbeStatus {
	return s.Prober.ProbeAll(ctx, targets)
}

// Command renders the launch command for a target.
func (s *Session) Command(t model.Target) (launch.Command, error) {
	return launch.Build(s.Registry.Exec(), t)
}

// Launch runs the launch command for the target with the given id and
// blocks until it exits. The target is looked up again so a stale
// selection cannot launch a removed target.
func (s *Session) Launch(ctx context.Context, id int, stdio launch.Stdio) (int, error) {
	t, err := s.Registry.Get(id)
	if err != nil {
		return -1, err
	}
	cmd, err := s.Command(t)
	if err != nil {
		return -1, err
	}
	return s.Run(ctx, t, cmd, stdio)
}

// Run executes an already rendered command for t, recording the launch in
// the audit log.
func (s *Session) Run(ctx context.Context, t model.Target, cmd launch.Command, stdio launch.Stdio) (int, error) {
	s.Audit.Start(t, cmd.Line)
	code, err := s.Runner.Run(ctx, cmd.Executable, cmd.Args, stdio)
	s.Audit.End(t, code, err)
	if err != nil {
		return code, err
	}
	logging.Infof("session to %s ended with status %d", t, code)
	return code, nil
}
