// Copyright (c) 2026 SSHHub Team
// SSHHub - SSH connection hub
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime/debug"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/toeirei/sshhub/buildvars"
	"github.com/toeirei/sshhub/internal/audit"
	"github.com/toeirei/sshhub/internal/config"
	"github.com/toeirei/sshhub/internal/i18n"
	"github.com/toeirei/sshhub/internal/launch"
	"github.com/toeirei/sshhub/internal/logging"
	"github.com/toeirei/sshhub/internal/probe"
	"github.com/toeirei/sshhub/internal/session"
	"github.com/toeirei/sshhub/internal/store"
	"github.com/toeirei/sshhub/internal/tui"
)

var (
	cfgFile   string
	verbose   bool
	appConfig config.Config

	// sess is opened by setupDefaultServices and closed by teardown.
	sess    *session.Session
	closers []io.Closer
	logFile *os.File

	// Overridable in tests.
	runner launch.Runner = launch.ExecRunner{}
	isTTY                = func() bool {
		return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
	}
	runTUI = tui.Run
)

// ExitError carries the exit status of a launched command.
type ExitError struct{ Code int }

func (e *ExitError) Error() string { return fmt.Sprintf("command exited with status %d", e.Code) }

func setupDefaultServices(cmd *cobra.Command, _ []string) error {
	optionalConfigPath, err := getConfigPathFromCli(cmd)
	if err != nil {
		return err
	}

	defaults := config.Defaults()
	appConfig, err = config.LoadConfig[config.Config](cmd, defaults, optionalConfigPath)
	var notFound viper.ConfigFileNotFoundError
	switch {
	case errors.As(err, &notFound):
		// First run: persist the defaults so the user has a file to edit.
		if writeErr := config.WriteConfigFile(&appConfig, false); writeErr != nil {
			logging.Warnf("could not write default settings file: %v", writeErr)
		}
	case err != nil:
		return fmt.Errorf("error loading settings: %w", err)
	}

	level := appConfig.Log.Level
	if verbose {
		level = "debug"
	}
	logging.Setup(cmd.ErrOrStderr(), level)
	i18n.Init(appConfig.Language)

	location := appConfig.Registry.Path
	if appConfig.Registry.Store != "" && appConfig.Registry.Store != "json" {
		location = appConfig.Registry.Dsn
	}
	st, err := store.Open(appConfig.Registry.Store, location)
	if err != nil {
		return err
	}
	if c, ok := st.(store.Closer); ok {
		closers = append(closers, c)
	}

	var accessLog *audit.Log
	if dir, derr := config.DefaultDir(); derr == nil {
		if accessLog, err = audit.Open(filepath.Join(dir, "access.log")); err != nil {
			logging.Warnf("could not open access log: %v", err)
		} else {
			closers = append(closers, accessLog)
		}
	}

	sess = session.Open(cmd.Context(), st, probe.New(appConfig.Probe.Timeout), runner, accessLog)
	logging.Debugf("using %s store at %s", appConfig.Registry.Store, st.Location())
	return nil
}

func teardown(*cobra.Command, []string) error {
	for i := len(closers) - 1; i >= 0; i-- {
		_ = closers[i].Close()
	}
	closers = nil
	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}
	sess = nil
	return nil
}

func getConfigPathFromCli(cmd *cobra.Command) (*string, error) {
	if !cmd.Flags().Changed("config") {
		return nil, nil
	}
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("could not read --config flag: %w", err)
	}
	if path == "" {
		return nil, nil
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("settings file given via --config not found or not accessible: %w", err)
	}
	return &path, nil
}

// runInteractive starts the menu. Logs go to a file while it owns the
// terminal.
func runInteractive(cmd *cobra.Command, _ []string) error {
	if !isTTY() {
		return errors.New(i18n.T("cli.not_terminal"))
	}
	if dir, err := config.DefaultDir(); err == nil {
		if f, err := logging.OpenFile(filepath.Join(dir, "sshhub.log")); err == nil {
			logFile = f
			level := appConfig.Log.Level
			if verbose {
				level = "debug"
			}
			logging.Setup(f, level)
		}
	}
	return runTUI(cmd.Context(), sess)
}

// NewRootCmd creates the root command with every subcommand attached. Each
// call returns a fresh tree, so tests can run commands in isolation.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:                "sshhub",
		Short:              i18n.T("cli.short"),
		Long:               i18n.T("cli.long"),
		SilenceUsage:       true,
		PersistentPreRunE:  setupDefaultServices,
		PersistentPostRunE: teardown,
		RunE:               runInteractive,
		Version:            compositeVersion(nil),
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "settings file")
	config.AddFlags(cmd.PersistentFlags())

	cmd.AddCommand(
		newListCmd(),
		newAddCmd(),
		newEditCmd(),
		newRemoveCmd(),
		newConnectCmd(),
		newCommandCmd(),
		newExecCmd(),
		newProbeCmd(),
		newBackupCmd(),
		newRestoreCmd(),
		newVersionCmd(),
	)
	return cmd
}

// Execute runs the CLI entrypoint. The main package handles process exit.
func Execute() error {
	return NewRootCmd().Execute()
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		// Printing the version needs no settings or store.
		PersistentPreRunE:  func(*cobra.Command, []string) error { return nil },
		PersistentPostRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, _ []string) {
			v, c, d := resolveBuildVersion(nil)
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "version: %s\n", v)
			_, _ = fmt.Fprintf(out, "commit: %s\n", c)
			if d != "" {
				_, _ = fmt.Fprintf(out, "built: %s\n", d)
			}
		},
	}
}

func compositeVersion(info *debug.BuildInfo) string {
	v, c, d := resolveBuildVersion(info)
	if c != "" && c != "dev" {
		v += " (" + c + ")"
	}
	if d != "" {
		v += " built: " + d
	}
	return v
}

// resolveBuildVersion computes the best-available version, commit and build
// date. If info is nil, it reads build info from the runtime.
func resolveBuildVersion(info *debug.BuildInfo) (versionOut, commitOut, dateOut string) {
	resolvedVersion := buildvars.VersionOrDefault("dev")
	resolvedCommit := buildvars.Commit
	if resolvedCommit == "" {
		resolvedCommit = "dev"
	}
	resolvedDate := buildvars.Date

	if info == nil {
		if local, ok := debug.ReadBuildInfo(); ok {
			info = local
		}
	}
	if info != nil {
		if resolvedVersion == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
			resolvedVersion = info.Main.Version
		}
		for _, s := range info.Settings {
			switch s.Key {
			case "vcs.revision":
				if s.Value != "" && resolvedCommit == "dev" {
					resolvedCommit = s.Value
				}
			case "vcs.time":
				if s.Value != "" && resolvedDate == "" {
					resolvedDate = s.Value
				}
			}
		}
	}
	return resolvedVersion, resolvedCommit, resolvedDate
}
