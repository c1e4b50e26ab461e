// Copyright (c) 2026 SSHHub Team
// SSHHub - SSH connection hub
// This source code is licensed under the MIT license found in the LICENSE file.

package store

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/toeirei/sshhub/internal/model"
)

func sampleRegistry() *model.Registry {
	return &model.Registry{
		Exec: "ssh -l {$Username} {$IP} -p {$Port}",
		Targets: []model.Target{
			{ID: 9, Name: "db", Host: "db.internal", Port: 2222, Username: "admin", ScanOnline: true},
			{ID: 1, Name: "web", Host: "10.0.0.5", Port: 22, Username: "root"},
		},
	}
}

const sampleJSON = `{
  "Exec": "ssh -l {$Username} {$IP} -p {$Port}",
  "Targets": [
    {
      "id": 1,
      "Name": "web",
      "IP": "10.0.0.5",
      "Port": 22,
      "Username": "root",
      "ScanOnline": false
    },
    {
      "id": 9,
      "Name": "db",
      "IP": "db.internal",
      "Port": 2222,
      "Username": "admin",
      "ScanOnline": true
    }
  ]
}`

func TestMarshal_SortedAndDeterministic(t *testing.T) {
	data, err := Marshal(sampleRegistry())
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(data) != sampleJSON {
		t.Fatalf("unexpected serialization:\n%s", data)
	}
}

func TestJSONStore_MissingFileIsEmptyRegistry(t *testing.T) {
	s := NewJSONStore(filepath.Join(t.TempDir(), "config.json"))
	r, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if r.Exec != model.DefaultExec || len(r.Targets) != 0 {
		t.Fatalf("expected empty registry, got %+v", r)
	}
}

func TestJSONStore_SaveLoadRoundTripIsByteIdentical(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.json")
	s := NewJSONStore(path)
	ctx := context.Background()

	if err := s.Save(ctx, sampleRegistry()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	first, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	loaded, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := s.Save(ctx, loaded); err != nil {
		t.Fatalf("second Save: %v", err)
	}
	second, _ := os.ReadFile(path)
	if !bytes.Equal(first, second) {
		t.Fatalf("Save(Load()) changed the file:\n%s\n---\n%s", first, second)
	}
	if loaded.Targets[0].ID != 1 || loaded.Targets[1].ID != 9 {
		t.Fatalf("targets not in id order: %+v", loaded.Targets)
	}
}

func TestJSONStore_LoadsOriginalFormatAndDefaultsPort(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	legacy := `{"exec":"ssh {$IP}","targets":[{"id":3,"Name":"x","IP":"h","Username":"u"}]}`
	if err := os.WriteFile(path, []byte(legacy), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	r, err := NewJSONStore(path).Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if r.Exec != "ssh {$IP}" || len(r.Targets) != 1 || r.Targets[0].Port != model.DefaultPort {
		t.Fatalf("unexpected registry: %+v", r)
	}
}

func TestJSONStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	s := NewJSONStore(path)
	if _, err := s.Load(context.Background()); !errors.Is(err, ErrCorruptConfig) {
		t.Fatalf("expected ErrCorruptConfig, got %v", err)
	}

	// The unreadable file is kept aside before it is overwritten.
	if err := s.Save(context.Background(), model.NewRegistry()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	kept, err := os.ReadFile(path + ".corrupt")
	if err != nil || string(kept) != "{not json" {
		t.Fatalf("corrupt file not preserved: %q, %v", kept, err)
	}
}

func TestUnmarshal_DuplicateIDsAreCorrupt(t *testing.T) {
	data := []byte(`{"Exec":"ssh","Targets":[
		{"id":1,"Name":"a","IP":"h","Port":22,"Username":"u"},
		{"id":1,"Name":"b","IP":"h","Port":22,"Username":"u"}]}`)
	if _, err := Unmarshal(data); !errors.Is(err, ErrCorruptConfig) {
		t.Fatalf("expected ErrCorruptConfig, got %v", err)
	}
}

func TestJSONStore_SaveFailureIsIOError(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	if err := os.WriteFile(blocker, nil, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	// A path below a regular file cannot be created.
	s := NewJSONStore(filepath.Join(blocker, "config.json"))
	if err := s.Save(context.Background(), sampleRegistry()); !errors.Is(err, ErrIO) {
		t.Fatalf("expected ErrIO, got %v", err)
	}
}

func TestSQLStore_SQLiteRoundTrip(t *testing.T) {
	s, err := OpenSQLStore("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("OpenSQLStore: %v", err)
	}
	defer func() { _ = s.Close() }()
	ctx := context.Background()

	empty, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load empty: %v", err)
	}
	if empty.Exec != model.DefaultExec || len(empty.Targets) != 0 {
		t.Fatalf("expected empty registry, got %+v", empty)
	}

	if err := s.Save(ctx, sampleRegistry()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want, _ := Marshal(sampleRegistry())
	have, _ := Marshal(got)
	if !bytes.Equal(want, have) {
		t.Fatalf("round trip mismatch:\n%s\n---\n%s", want, have)
	}

	// Saving a smaller registry replaces the previous rows.
	smaller := sampleRegistry()
	smaller.Targets = smaller.Targets[:1]
	if err := s.Save(ctx, smaller); err != nil {
		t.Fatalf("Save smaller: %v", err)
	}
	got, _ = s.Load(ctx)
	if len(got.Targets) != 1 || got.Targets[0].ID != 9 {
		t.Fatalf("expected only target 9, got %+v", got.Targets)
	}
}

func TestOpen_UnknownKind(t *testing.T) {
	if _, err := Open("xml", "x"); err == nil {
		t.Fatalf("expected error for unknown store kind")
	}
	s, err := Open("json", "/tmp/x.json")
	if err != nil || s.Location() != "/tmp/x.json" {
		t.Fatalf("unexpected json store: %v, %v", s, err)
	}
}

func TestBackup_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteBackup(&buf, sampleRegistry()); err != nil {
		t.Fatalf("WriteBackup: %v", err)
	}
	got, err := ReadBackup(&buf)
	if err != nil {
		t.Fatalf("ReadBackup: %v", err)
	}
	if len(got.Targets) != 2 || got.Exec != sampleRegistry().Exec {
		t.Fatalf("unexpected restored registry: %+v", got)
	}

	if _, err := ReadBackup(bytes.NewReader([]byte("plain text"))); err == nil {
		t.Fatalf("expected error for non-zstd input")
	}
}
