// Copyright (c) 2026 SSHHub Team
// SSHHub - SSH connection hub
// This source code is licensed under the MIT license found in the LICENSE file.
//
// Package cli implements the command-line interface for SSHHub using Cobra.
// It loads the settings, opens the configured store and hands a session to
// either the interactive menu or one of the subcommands. Subcommands stay
// thin and delegate to the session.
package cli
