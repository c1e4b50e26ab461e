// Copyright (c) 2026 SSHHub Team
// SSHHub - SSH connection hub
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/toeirei/sshhub/internal/editor"
	"github.com/toeirei/sshhub/internal/i18n"
	"github.com/toeirei/sshhub/internal/launch"
	"github.com/toeirei/sshhub/internal/model"
	"github.com/toeirei/sshhub/internal/store"
	"github.com/toeirei/sshhub/internal/validate"
)

var copyToClipboard = clipboard.WriteAll

func parseID(arg string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", validate.ErrInvalidInteger, arg)
	}
	return id, nil
}

// readLine reads one line; io.EOF is only returned when nothing was read.
func readLine(in *bufio.Reader) (string, error) {
	line, err := in.ReadString('\n')
	if err != nil && (line == "" || !errors.Is(err, io.EOF)) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// promptForm drives f over line input until it is done or cancelled. It
// reports whether the form completed.
func promptForm(cmd *cobra.Command, f *editor.Form) (bool, error) {
	in := bufio.NewReader(cmd.InOrStdin())
	out := cmd.OutOrStdout()
	for !f.Done() {
		_, _ = fmt.Fprintf(out, "%s: ", f.Prompt())
		line, err := readLine(in)
		if err != nil {
			return false, fmt.Errorf("input ended before the form was complete: %w", err)
		}
		err = f.Submit(line)
		switch {
		case errors.Is(err, validate.ErrCancelled):
			_, _ = fmt.Fprintln(out, i18n.T("result.cancelled"))
			return false, nil
		case err != nil:
			_, _ = fmt.Fprintln(out, editor.Describe(err))
		}
	}
	return true, nil
}

func statusText(s model.ProbeStatus) string {
	switch s {
	case model.Online:
		return i18n.T("status.online")
	case model.Offline:
		return i18n.T("status.offline")
	case model.Error:
		return i18n.T("status.error")
	}
	return "-"
}

func newListCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all targets",
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			if asJSON {
				data, err := store.Marshal(sess.Registry.Snapshot())
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintln(out, string(data))
				return nil
			}
			targets := sess.Registry.List()
			if len(targets) == 0 {
				_, _ = fmt.Fprintln(out, i18n.T("cli.list_empty"))
				return nil
			}
			_, _ = fmt.Fprintln(out, i18n.T("list.header"))
			for _, t := range targets {
				scan := "n"
				if t.ScanOnline {
					scan = "y"
				}
				_, _ = fmt.Fprintf(out, "%-5d %-20s %-32s %s\n", t.ID, t.Name, t.String(), scan)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the stored JSON instead of a table")
	return cmd
}

func newAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add",
		Short: "Add a target (prompts for each field, !cancel aborts)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f := editor.New(nil, sess.Registry.Has)
			ok, err := promptForm(cmd, f)
			if err != nil || !ok {
				return err
			}
			t, _ := f.Result()
			if t, err = sess.Add(cmd.Context(), t); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), i18n.T("result.added", t.ID))
			return nil
		},
	}
}

func newEditCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a target (empty input keeps a field, !cancel aborts)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			cur, err := sess.Registry.Get(id)
			if err != nil {
				return err
			}
			f := editor.New(&cur, sess.Registry.Has)
			ok, err := promptForm(cmd, f)
			if err != nil || !ok {
				return err
			}
			t, _ := f.Result()
			if t, err = sess.Replace(cmd.Context(), id, t); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), i18n.T("result.updated", t.ID))
			return nil
		},
	}
}

func newRemoveCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:     "remove <id>",
		Aliases: []string{"delete", "rm"},
		Short:   "Delete a target",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			t, err := sess.Registry.Get(id)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !yes {
				_, _ = fmt.Fprintf(out, "%s ", i18n.T("confirm.delete", t.String()))
				answer, _ := readLine(bufio.NewReader(cmd.InOrStdin()))
				if !strings.EqualFold(strings.TrimSpace(answer), "y") {
					_, _ = fmt.Fprintln(out, i18n.T("result.cancelled"))
					return nil
				}
			}
			if err := sess.Remove(cmd.Context(), id); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(out, i18n.T("result.removed", id))
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

func newConnectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "connect <id>",
		Short: "Launch a session to a target",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			code, err := sess.Launch(cmd.Context(), id, launch.Stdio{
				Stdin:  cmd.InOrStdin(),
				Stdout: cmd.OutOrStdout(),
				Stderr: cmd.ErrOrStderr(),
			})
			if err != nil {
				return err
			}
			if code != 0 {
				return &ExitError{Code: code}
			}
			return nil
		},
	}
}

func newCommandCmd() *cobra.Command {
	var copyIt bool
	cmd := &cobra.Command{
		Use:   "command <id>",
		Short: "Print the launch command of a target",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			t, err := sess.Registry.Get(id)
			if err != nil {
				return err
			}
			c, err := sess.Command(t)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintln(out, c.Line)
			if copyIt {
				if err := copyToClipboard(c.Line); err != nil {
					return errors.New(i18n.T("picker.copy_failed", err))
				}
				_, _ = fmt.Fprintln(out, i18n.T("cli.copied"))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&copyIt, "copy", false, "also copy the command to the clipboard")
	return cmd
}

func newExecCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "exec [template]",
		Short: "Show or set the launch template ({$IP}, {$Port}, {$Username})",
		Long: `Without an argument the current launch template is printed. With one,
it replaces the template. Quote the template or put it after "--" so its
options are not read as flags:

  sshhub exec -- ssh -l {$Username} {$IP} -p {$Port}`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if len(args) == 0 {
				_, _ = fmt.Fprintln(out, sess.Registry.Exec())
				return nil
			}
			v, err := validate.String(strings.Join(args, " "), "", true)
			if err != nil {
				return err
			}
			if err := sess.SetExec(cmd.Context(), v); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(out, i18n.T("result.exec_saved"))
			return nil
		},
	}
}

func newProbeCmd() *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Check which targets accept TCP connections",
		RunE: func(cmd *cobra.Command, _ []string) error {
			targets := sess.Registry.List()
			if all {
				for i := range targets {
					targets[i].ScanOnline = true
				}
			}
			results := sess.Probe(cmd.Context(), targets)
			out := cmd.OutOrStdout()
			for _, t := range targets {
				_, _ = fmt.Fprintf(out, "%-5d %-20s %-32s %s\n", t.ID, t.Name, t.String(), statusText(results[t.ID]))
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&all, "all", "a", false, "also probe targets with scanning disabled")
	return cmd
}
