// Copyright (c) 2026 SSHHub Team
// SSHHub - SSH connection hub
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/toeirei/sshhub/internal/i18n"
	"github.com/toeirei/sshhub/internal/launch"
	"github.com/toeirei/sshhub/internal/session"
)

// isolate points the user config dir at a fresh temp dir for the test.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("HOME", dir)
	t.Chdir(dir)
	i18n.Init("en")
	return dir
}

// executeCommand runs a fresh root command and captures its output.
func executeCommand(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	if args == nil {
		// cobra falls back to os.Args for a nil slice
		args = []string{}
	}
	root.SetArgs(args)
	err := root.Execute()
	_ = teardown(nil, nil)
	return out.String(), err
}

type fakeRunner struct {
	line string
	code int
}

func (f *fakeRunner) Run(_ context.Context, executable string, args []string, _ launch.Stdio) (int, error) {
	f.line = strings.Join(append([]string{executable}, args...), " ")
	return f.code, nil
}

const addWeb = "1\nweb\n10.0.0.5\n2200\nroot\ny\n"

func TestAddAndList(t *testing.T) {
	dir := isolate(t)

	out, err := executeCommand(t, addWeb, "add")
	if err != nil {
		t.Fatalf("add: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Enter Target ID") || !strings.Contains(out, "Target 1 added.") {
		t.Fatalf("unexpected add output:\n%s", out)
	}

	out, err = executeCommand(t, "", "list")
	if err != nil || !strings.Contains(out, "root@10.0.0.5:2200") {
		t.Fatalf("list: %v\n%s", err, out)
	}

	if _, err := os.Stat(filepath.Join(dir, "sshhub", "config.json")); err != nil {
		t.Fatalf("registry file not written: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "sshhub", "sshhub.yaml")); err != nil {
		t.Fatalf("default settings file not written: %v", err)
	}
}

func TestAdd_RepromptsAndCancels(t *testing.T) {
	isolate(t)
	if _, err := executeCommand(t, addWeb, "add"); err != nil {
		t.Fatalf("add: %v", err)
	}

	out, err := executeCommand(t, "1\n2\n!cancel\n", "add")
	if err != nil {
		t.Fatalf("cancelled add returned error: %v", err)
	}
	if !strings.Contains(out, "already in use") || !strings.Contains(out, "Cancelled.") {
		t.Fatalf("unexpected output:\n%s", out)
	}

	out, _ = executeCommand(t, "", "list", "--json")
	if strings.Count(out, `"id"`) != 1 {
		t.Fatalf("cancelled add changed the registry:\n%s", out)
	}

	if _, err := executeCommand(t, "3\nx\n", "add"); err == nil {
		t.Fatalf("expected error when input ends early")
	}
}

func TestEditAndRemove(t *testing.T) {
	isolate(t)
	if _, err := executeCommand(t, addWeb, "add"); err != nil {
		t.Fatalf("add: %v", err)
	}

	out, err := executeCommand(t, "7\n\n\n\nadmin\n\n", "edit", "1")
	if err != nil || !strings.Contains(out, "Current Username (root)") {
		t.Fatalf("edit: %v\n%s", err, out)
	}
	out, _ = executeCommand(t, "", "list")
	if !strings.Contains(out, "admin@10.0.0.5:2200") || !strings.HasPrefix(strings.Split(out, "\n")[1], "7 ") {
		t.Fatalf("edit not applied:\n%s", out)
	}

	out, _ = executeCommand(t, "n\n", "remove", "7")
	if !strings.Contains(out, "Cancelled.") {
		t.Fatalf("expected declined removal:\n%s", out)
	}
	if _, err := executeCommand(t, "y\n", "remove", "7"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := executeCommand(t, "", "remove", "--yes", "7"); err == nil {
		t.Fatalf("expected second removal to fail")
	}
	out, _ = executeCommand(t, "", "list")
	if !strings.Contains(out, "No targets configured.") {
		t.Fatalf("expected empty list:\n%s", out)
	}
}

func TestCommandAndExec(t *testing.T) {
	isolate(t)
	if _, err := executeCommand(t, addWeb, "add"); err != nil {
		t.Fatalf("add: %v", err)
	}

	var copied string
	old := copyToClipboard
	copyToClipboard = func(s string) error { copied = s; return nil }
	t.Cleanup(func() { copyToClipboard = old })

	out, err := executeCommand(t, "", "command", "1", "--copy")
	if err != nil || !strings.Contains(out, "ssh root@10.0.0.5 -p 2200") || copied != "ssh root@10.0.0.5 -p 2200" {
		t.Fatalf("command: %v, copied=%q\n%s", err, copied, out)
	}

	if _, err := executeCommand(t, "", "exec", "mosh", "{$Username}@{$IP}"); err != nil {
		t.Fatalf("exec set: %v", err)
	}
	out, _ = executeCommand(t, "", "exec")
	if !strings.Contains(out, "mosh {$Username}@{$IP}") {
		t.Fatalf("exec not stored:\n%s", out)
	}
	out, _ = executeCommand(t, "", "command", "1")
	if !strings.Contains(out, "mosh root@10.0.0.5") {
		t.Fatalf("template not applied:\n%s", out)
	}
}

func TestConnect_PropagatesExitCode(t *testing.T) {
	isolate(t)
	if _, err := executeCommand(t, addWeb, "add"); err != nil {
		t.Fatalf("add: %v", err)
	}
	fake := &fakeRunner{code: 2}
	old := runner
	runner = fake
	t.Cleanup(func() { runner = old })

	_, err := executeCommand(t, "", "connect", "1")
	var exit *ExitError
	if !errors.As(err, &exit) || exit.Code != 2 {
		t.Fatalf("expected exit status 2, got %v", err)
	}
	if fake.line != "ssh root@10.0.0.5 -p 2200" {
		t.Fatalf("unexpected command %q", fake.line)
	}

	fake.code = 0
	if _, err := executeCommand(t, "", "connect", "1"); err != nil {
		t.Fatalf("connect: %v", err)
	}
	if _, err := executeCommand(t, "", "connect", "9"); err == nil {
		t.Fatalf("expected error for unknown target")
	}
}

func TestBackupRestore(t *testing.T) {
	dir := isolate(t)
	if _, err := executeCommand(t, addWeb, "add"); err != nil {
		t.Fatalf("add: %v", err)
	}
	file := filepath.Join(dir, "hub-backup")
	out, err := executeCommand(t, "", "backup", file)
	if err != nil || !strings.Contains(out, file+".zst") {
		t.Fatalf("backup: %v\n%s", err, out)
	}

	if _, err := executeCommand(t, "", "remove", "-y", "1"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	out, err = executeCommand(t, "", "restore", file+".zst")
	if err != nil || !strings.Contains(out, "(1 targets)") {
		t.Fatalf("restore: %v\n%s", err, out)
	}
	out, _ = executeCommand(t, "", "list")
	if !strings.Contains(out, "root@10.0.0.5:2200") {
		t.Fatalf("target not restored:\n%s", out)
	}
}

func TestProbe(t *testing.T) {
	isolate(t)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer func() { _ = ln.Close() }()
	port := ln.Addr().(*net.TCPAddr).Port

	in := fmt.Sprintf("1\nlocal\n127.0.0.1\n%d\nme\ny\n", port)
	if _, err := executeCommand(t, in, "add"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := executeCommand(t, "2\nskipped\n127.0.0.1\n1\nme\nn\n", "add"); err != nil {
		t.Fatalf("add: %v", err)
	}

	out, err := executeCommand(t, "", "probe")
	if err != nil {
		t.Fatalf("probe: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	var first, second string
	for _, l := range lines {
		switch {
		case strings.HasPrefix(l, "1 "):
			first = l
		case strings.HasPrefix(l, "2 "):
			second = l
		}
	}
	if !strings.HasSuffix(first, "Online") || !strings.HasSuffix(second, "-") {
		t.Fatalf("unexpected probe output:\n%s", out)
	}
}

func TestRoot_RequiresTerminal(t *testing.T) {
	isolate(t)
	oldTTY, oldRun := isTTY, runTUI
	t.Cleanup(func() { isTTY, runTUI = oldTTY, oldRun })

	isTTY = func() bool { return false }
	if _, err := executeCommand(t, ""); err == nil || !strings.Contains(err.Error(), "terminal") {
		t.Fatalf("expected terminal error, got %v", err)
	}

	called := false
	isTTY = func() bool { return true }
	runTUI = func(_ context.Context, s *session.Session) error {
		called = s != nil
		return nil
	}
	if _, err := executeCommand(t, ""); err != nil || !called {
		t.Fatalf("TUI not started: %v", err)
	}
}

func TestSettingsSelectSQLiteStore(t *testing.T) {
	dir := isolate(t)
	dsn := filepath.Join(dir, "hub.db")
	if _, err := executeCommand(t, addWeb, "--registry.store", "sqlite", "--registry.dsn", dsn, "add"); err != nil {
		t.Fatalf("add: %v", err)
	}
	out, _ := executeCommand(t, "", "--registry.store", "sqlite", "--registry.dsn", dsn, "list")
	if !strings.Contains(out, "root@10.0.0.5:2200") {
		t.Fatalf("sqlite store did not keep the target:\n%s", out)
	}
	if _, err := os.Stat(filepath.Join(dir, "sshhub", "config.json")); err == nil {
		t.Fatalf("json registry written although sqlite was selected")
	}
}

func TestVersion(t *testing.T) {
	out, err := executeCommand(t, "", "version")
	if err != nil || !strings.Contains(out, "version: ") {
		t.Fatalf("version: %v\n%s", err, out)
	}
}
