// Copyright (c) 2026 SSHHub Team
// SSHHub - SSH connection hub
// This source code is licensed under the MIT license found in the LICENSE file.

// Package launch turns the exec template into a command line for a target
// and runs it in the foreground.
package launch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"

	"github.com/kballard/go-shellquote"

	"github.com/toeirei/sshhub/internal/model"
)

// Template placeholders.
const (
	PlaceholderIP       = "{$IP}"
	PlaceholderPort     = "{$Port}"
	PlaceholderUsername = "{$Username}"
)

// ErrEmptyCommand is returned when a rendered template has no executable.
var ErrEmptyCommand = errors.New("exec template produced an empty command")

// Render substitutes the target's fields into the template. Host and
// username are shell-quoted when needed, so a value holding spaces or quotes
// stays one argument after Split.
func Render(template string, t model.Target) string {
	return strings.NewReplacer(
		PlaceholderIP, shellquote.Join(t.Host),
		PlaceholderPort, strconv.Itoa(t.EffectivePort()),
		PlaceholderUsername, shellquote.Join(t.Username),
	).Replace(template)
}

// Command is a rendered command line split into its parts.
type Command struct {
	Line       string   // full rendered command line
	Executable string   // text before the first whitespace
	ArgString  string   // everything after the first whitespace
	Args       []string // ArgString tokenized with shell quoting rules
}

// Split separates a command line at the first whitespace into executable and
// argument string, then tokenizes the argument string.
func Split(line string) (Command, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return Command{}, ErrEmptyCommand
	}
	cmd := Command{Line: line, Executable: line}
	if i := strings.IndexAny(line, " \t"); i >= 0 {
		cmd.Executable = line[:i]
		cmd.ArgString = strings.TrimSpace(line[i+1:])
	}
	if cmd.ArgString != "" {
		args, err := shellquote.Split(cmd.ArgString)
		if err != nil {
			return Command{}, fmt.Errorf("could not parse arguments %q: %w", cmd.ArgString, err)
		}
		cmd.Args = args
	}
	return cmd, nil
}

// Build renders the template for t and splits the result.
func Build(template string, t model.Target) (Command, error) {
	return Split(Render(template, t))
}

// Stdio carries the streams handed to a launched process.
type Stdio struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Runner starts an external program and blocks until it exits.
type Runner interface {
	Run(ctx context.Context, executable string, args []string, stdio Stdio) (int, error)
}

// ExecRunner runs programs with os/exec.
type ExecRunner struct{}

// Run starts the program and returns its exit status. A non-zero exit is not
// an error; failing to start the program is.
func (ExecRunner) Run(ctx context.Context, executable string, args []string, stdio Stdio) (int, error) {
	c := exec.CommandContext(ctx, executable, args...)
	c.Stdin = stdio.Stdin
	c.Stdout = stdio.Stdout
	c.Stderr = stdio.Stderr

	err := c.Run()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	if err != nil {
		return -1, fmt.Errorf("could not run %s: %w", executable, err)
	}
	return 0, nil
}
