// Copyright (c) 2026 SSHHub Team
// SSHHub - SSH connection hub
// This source code is licensed under the MIT license found in the LICENSE file.

// Command-line entrypoint for SSHHub.
//
// Usage:
//
//	go run . [flags]
//	./sshhub [flags] [command]
//
// Without a command the interactive menu starts. See --help for options.
package main

import (
	"errors"
	"os"

	"github.com/toeirei/sshhub/ui/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		var exit *cli.ExitError
		if errors.As(err, &exit) {
			os.Exit(exit.Code)
		}
		os.Exit(1)
	}
}
