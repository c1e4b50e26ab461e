// Copyright (c) 2026 SSHHub Team
// SSHHub - SSH connection hub
// This source code is licensed under the MIT license found in the LICENSE file.

package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/toeirei/sshhub/internal/logging"
	"github.com/toeirei/sshhub/internal/model"
)

// JSONStore keeps the registry in a single JSON file.
type JSONStore struct {
	path string

	mu      sync.Mutex
	corrupt bool // last Load failed to parse; preserve the file before overwriting
}

// NewJSONStore returns a store backed by the file at path.
func NewJSONStore(path string) *JSONStore {
	return &JSONStore{path: path}
}

// Location returns the file path.
func (s *JSONStore) Location() string { return s.path }

// Load reads the registry file. A missing file yields an empty registry.
func (s *JSONStore) Load(_ context.Context) (*model.Registry, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return model.NewRegistry(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: could not read %s: %v", ErrIO, s.path, err)
	}

	r, err := Unmarshal(data)

	s.mu.Lock()
	s.corrupt = err != nil
	s.mu.Unlock()

	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.path, err)
	}
	return r, nil
}

// Save writes the registry atomically: a temp file in the same directory is
// written, synced and renamed over the target.
func (s *JSONStore) Save(_ context.Context, r *model.Registry) error {
	data, err := Marshal(r)
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: could not create directory %s: %v", ErrIO, dir, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.corrupt {
		aside := s.path + ".corrupt"
		if err := os.Rename(s.path, aside); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: could not preserve unreadable %s: %v", ErrIO, s.path, err)
		}
		logging.Warnf("moved unreadable registry to %s", aside)
		s.corrupt = false
	}

	tmp, err := os.CreateTemp(dir, ".sshhub-*.json")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%w: could not write %s: %v", ErrIO, tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("%w: could not replace %s: %v", ErrIO, s.path, err)
	}
	return nil
}
