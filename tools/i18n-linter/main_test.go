// Copyright (c) 2026 SSHHub Team
// SSHHub - SSH connection hub
// This source code is licensed under the MIT license found in the LICENSE file.

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestFlattenYAML(t *testing.T) {
	keys := make(map[string]struct{})
	flattenYAML("", map[string]any{
		"menu":  map[string]any{"main": map[string]any{"title": "Main"}},
		"list":  []any{"a"},
		"other": "v",
	}, keys)
	for _, want := range []string{"menu.main.title", "list[0]", "other"} {
		if _, ok := keys[want]; !ok {
			t.Errorf("missing %s in %v", want, keys)
		}
	}
}

func TestLint_FakeRepository(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "internal", "ui", "view.go"), `package ui
func view() {
	_ = i18n.T("menu.title")
	_ = i18n.T("menu.undefined")
	render("Press any key to go on")
	logging.Infof("opened store at %s")
}`)
	// Sources below tools are not scanned.
	writeFile(t, filepath.Join(root, "tools", "x", "main.go"), `package main
var _ = i18n.T("tools.only")`)
	writeFile(t, filepath.Join(root, localesDir, "en.yaml"), "menu:\n  title: Menu\n  unused: Unused\n")
	writeFile(t, filepath.Join(root, localesDir, "de.yaml"), "menu:\n  title: Menü\n")

	rep, err := lint(root)
	if err != nil {
		t.Fatalf("lint: %v", err)
	}
	if len(rep.Undefined) != 1 || rep.Undefined[0] != "menu.undefined" {
		t.Errorf("undefined = %v", rep.Undefined)
	}
	if len(rep.Orphaned) != 1 || rep.Orphaned[0] != "menu.unused" {
		t.Errorf("orphaned = %v", rep.Orphaned)
	}
	if got := rep.Missing["de.yaml"]; len(got) != 1 || got[0] != "menu.unused" {
		t.Errorf("missing from de.yaml = %v", got)
	}
	if _, ok := rep.Untranslated["Press any key to go on"]; !ok {
		t.Errorf("expected literal to be flagged, got %v", rep.Untranslated)
	}
	if _, ok := rep.Untranslated["opened store at %s"]; ok {
		t.Errorf("log message should not be flagged")
	}
	if !rep.Failed() {
		t.Errorf("expected failure")
	}

	var out bytes.Buffer
	printReport(&out, rep)
	if !strings.Contains(out.String(), "menu.undefined") || !strings.HasSuffix(out.String(), "FAIL\n") {
		t.Errorf("unexpected report:\n%s", out.String())
	}
}

func TestLint_Repository(t *testing.T) {
	root := filepath.Join("..", "..")
	if _, err := os.Stat(filepath.Join(root, localesDir, primaryLocale)); err != nil {
		t.Skip("locale files not found")
	}
	rep, err := lint(root)
	if err != nil {
		t.Fatalf("lint: %v", err)
	}
	if len(rep.Undefined) > 0 {
		t.Errorf("ids used but not defined: %v", rep.Undefined)
	}
	for name, ids := range rep.Missing {
		if len(ids) > 0 {
			t.Errorf("%s lacks %v", name, ids)
		}
	}
}
