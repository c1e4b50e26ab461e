// Copyright (c) 2026 SSHHub Team
// SSHHub - SSH connection hub
// This source code is licensed under the MIT license found in the LICENSE file.

// package registry holds the session's set of SSH targets and the launch
// template. It is the only place targets are mutated, and it enforces that
// target ids stay unique.
package registry // import "github.com/toeirei/sshhub/internal/registry"

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/toeirei/sshhub/internal/model"
	"github.com/toeirei/sshhub/internal/validate"
)

var (
	ErrDuplicateID = errors.New("duplicate target id")
	ErrNotFound    = errors.New("target not found")
)

// Registry is a concurrency-safe, ordered collection of targets.
type Registry struct {
	mu      sync.RWMutex
	exec    string
	targets []model.Target
}

// New builds a registry from persisted data. Targets must already satisfy
// the registry invariants.
func New(exec string, targets []model.Target) (*Registry, error) {
	r := &Registry{exec: exec, targets: make([]model.Target, 0, len(targets))}
	if strings.TrimSpace(r.exec) == "" {
		r.exec = model.DefaultExec
	}
	seen := make(map[int]struct{}, len(targets))
	for _, t := range targets {
		if _, dup := seen[t.ID]; dup {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateID, t.ID)
		}
		if err := validate.CheckTarget(t); err != nil {
			return nil, err
		}
		seen[t.ID] = struct{}{}
		r.targets = append(r.targets, t)
	}
	model.SortTargets(r.targets)
	return r, nil
}

// FromModel is New over a persisted registry value.
func FromModel(m *model.Registry) (*Registry, error) {
	if m == nil {
		m = model.NewRegistry()
	}
	return New(m.Exec, m.Targets)
}

// indexOf returns the slice position of id, or -1. Caller holds the lock.
func (r *Registry) indexOf(id int) int {
	for i := range r.targets {
		if r.targets[i].ID == id {
			return i
		}
	}
	return -1
}

// Add stores a new target. It fails with ErrDuplicateID if the id is taken.
func (r *Registry) Add(candidate model.Target) (model.Target, error) {
	if err := validate.CheckTarget(candidate); err != nil {
		return model.Target{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.indexOf(candidate.ID) >= 0 {
		return model.Target{}, fmt.Errorf("%w: %d", ErrDuplicateID, candidate.ID)
	}
	r.targets = append(r.targets, candidate)
	model.SortTargets(r.targets)
	return candidate, nil
}

// Update applies mutator to a copy of the target with the given id and
// stores the result. Nothing changes when an error is returned.
func (r *Registry) Update(id int, mutator func(*model.Target)) (model.Target, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return model.Target{}, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	updated := r.targets[i]
	if mutator != nil {
		mutator(&updated)
	}
	if updated.ID != id {
		if j := r.indexOf(updated.ID); j >= 0 && j != i {
			return model.Target{}, fmt.Errorf("%w: %d", ErrDuplicateID, updated.ID)
		}
	}
	if err := validate.CheckTarget(updated); err != nil {
		return model.Target{}, err
	}
	r.targets[i] = updated
	model.SortTargets(r.targets)
	return updated, nil
}

// Remove deletes the target with the given id.
func (r *Registry) Remove(id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	r.targets = append(r.targets[:i], r.targets[i+1:]...)
	return nil
}

// Get returns the target with the given id.
func (r *Registry) Get(id int) (model.Target, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i := r.indexOf(id)
	if i < 0 {
		return model.Target{}, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	return r.targets[i], nil
}

// Has reports whether a target with the given id exists.
func (r *Registry) Has(id int) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.indexOf(id) >= 0
}

// List returns a copy of all targets sorted by id.
func (r *Registry) List() []model.Target {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.Target, len(r.targets))
	copy(out, r.targets)
	model.SortTargets(out)
	return out
}

// Len returns the number of targets.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.targets)
}

// Exec returns the launch template.
func (r *Registry) Exec() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.exec
}

// SetExec replaces the launch template.
func (r *Registry) SetExec(exec string) error {
	exec = strings.TrimSpace(exec)
	if exec == "" {
		return fmt.Errorf("exec template: %w", validate.ErrEmptyInput)
	}
	r.mu.Lock()
	r.exec = exec
	r.mu.Unlock()
	return nil
}

// Snapshot returns the persistable form of the registry.
func (r *Registry) Snapshot() *model.Registry {
	return &model.Registry{Exec: r.Exec(), Targets: r.List()}
}

// Restore replaces the whole state with a snapshot taken earlier.
func (r *Registry) Restore(snap *model.Registry) {
	if snap == nil {
		return
	}
	snap = snap.Clone()
	model.SortTargets(snap.Targets)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.exec = snap.Exec
	r.targets = snap.Targets
}
