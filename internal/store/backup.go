// Copyright (c) 2026 SSHHub Team
// SSHHub - SSH connection hub
// This source code is licensed under the MIT license found in the LICENSE file.

package store

import (
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"

	"github.com/toeirei/sshhub/internal/model"
)

// WriteBackup streams the canonical serialization of r through a zstd
// encoder into w.
func WriteBackup(w io.Writer, r *model.Registry) error {
	data, err := Marshal(r)
	if err != nil {
		return err
	}
	zw, err := zstd.NewWriter(w)
	if err != nil {
		return fmt.Errorf("could not create zstd writer: %w", err)
	}
	if _, err := zw.Write(data); err != nil {
		_ = zw.Close()
		return fmt.Errorf("could not write backup: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("could not finish backup: %w", err)
	}
	return nil
}

// ReadBackup decodes a backup written by WriteBackup. The result passes the
// same checks as a registry loaded from a store.
func ReadBackup(rd io.Reader) (*model.Registry, error) {
	zr, err := zstd.NewReader(rd)
	if err != nil {
		return nil, fmt.Errorf("could not create zstd reader: %w", err)
	}
	defer zr.Close()

	data, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("%w: could not decompress backup: %v", ErrCorruptConfig, err)
	}
	return Unmarshal(data)
}
