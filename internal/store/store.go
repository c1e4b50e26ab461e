// Copyright (c) 2026 SSHHub Team
// SSHHub - SSH connection hub
// This source code is licensed under the MIT license found in the LICENSE file.

// package store persists the target registry. It abstracts the storage
// backend (a JSON file or a SQL database) behind a small interface so the
// rest of the application loads and saves registries the same way.
package store // import "github.com/toeirei/sshhub/internal/store"

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/toeirei/sshhub/internal/model"
	"github.com/toeirei/sshhub/internal/registry"
)

var (
	// ErrCorruptConfig means stored data could not be turned into a registry.
	ErrCorruptConfig = errors.New("corrupt configuration")
	// ErrIO means the backend could not be read or written.
	ErrIO = errors.New("storage i/o failure")
)

// Store loads and saves registries.
type Store interface {
	// Load returns the stored registry, or an empty one when nothing has
	// been stored yet.
	Load(ctx context.Context) (*model.Registry, error)
	// Save replaces the stored registry.
	Save(ctx context.Context, r *model.Registry) error
	// Location describes where data is kept, for display.
	Location() string
}

// Closer is implemented by stores holding a connection.
type Closer interface {
	Close() error
}

// Open returns the store for the given kind ("json", "sqlite", "postgres",
// "mysql"). For json the location is a file path, otherwise a DSN.
func Open(kind, location string) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", "json":
		return NewJSONStore(location), nil
	case "sqlite", "postgres", "mysql":
		return OpenSQLStore(kind, location)
	default:
		return nil, fmt.Errorf("unsupported store type %q", kind)
	}
}

// Marshal produces the canonical serialization of a registry: two-space
// indented JSON with targets in ascending id order.
func Marshal(r *model.Registry) ([]byte, error) {
	out := normalize(r)
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("could not encode registry: %w", err)
	}
	return data, nil
}

// Unmarshal parses serialized registry data and checks the registry
// invariants. Any failure wraps ErrCorruptConfig.
func Unmarshal(data []byte) (*model.Registry, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return model.NewRegistry(), nil
	}
	var r model.Registry
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptConfig, err)
	}
	return check(&r)
}

// check applies defaults and validates a decoded registry.
func check(r *model.Registry) (*model.Registry, error) {
	for i := range r.Targets {
		if r.Targets[i].Port <= 0 {
			r.Targets[i].Port = model.DefaultPort
		}
	}
	reg, err := registry.FromModel(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptConfig, err)
	}
	return reg.Snapshot(), nil
}

func normalize(r *model.Registry) *model.Registry {
	if r == nil {
		return model.NewRegistry()
	}
	out := r.Clone()
	if out.Targets == nil {
		out.Targets = []model.Target{}
	}
	if strings.TrimSpace(out.Exec) == "" {
		out.Exec = model.DefaultExec
	}
	model.SortTargets(out.Targets)
	return out
}
