// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - CLI parsing and command dispatch for parley.
package cli

import (
	"fmt"
	"runtime"
	"strings"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdChat
	CmdLogin
	CmdRegister
	CmdLogout
	CmdStatus
	CmdConfig
	CmdVersion
	CmdHelp
)

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	Quiet      bool
	Verbose    bool
	JSON       bool
	NoMarkdown bool
	Server     string // overrides the configured server URL

	// Command-specific
	Email      string
	Name       string
	Subcommand string

	// Raw args remaining after flag parsing
	Raw []string
}

const usageText = `parley - terminal chat client

Parley is a terminal client for a remote chat service. It keeps your
session between runs and shows message state optimistically while the
server confirms it.

Usage:
  parley                     Start TUI (default)
  parley chat                Interactive chat REPL
  parley login               Sign in and store the session
  parley register            Create an account and sign in
  parley logout              Forget the stored session
  parley status, s           Show session and server status
  parley config [show|path]  Configuration
  parley version, -v         Show version
  parley help, -h            Show this help

Flags:
  --server URL        Override the configured server URL
  --email ADDRESS     Email for login/register (prompted otherwise)
  --name NAME         Display name for register
  --no-markdown       Disable markdown rendering in the REPL
  --json              Machine-readable output for status
  -q, --quiet         Minimal output
  --verbose           Verbose output

Examples:
  parley login --email me@example.com
  parley chat
  parley status --json

Environment:
  PARLEY_SERVER_URL   Server base URL
  PARLEY_SESSION_DB   Session database path
  PARLEY_THEME        dark | light | auto
`

// Parse turns os.Args[1:] into a command and its arguments.
func Parse(argv []string) (Command, Args) {
	var args Args
	cmd := CmdTUI

	rest := make([]string, 0, len(argv))
	i := 0
	for i < len(argv) {
		arg := argv[i]
		switch {
		case arg == "-q" || arg == "--quiet":
			args.Quiet = true
		case arg == "--verbose":
			args.Verbose = true
		case arg == "--json":
			args.JSON = true
		case arg == "--no-markdown":
			args.NoMarkdown = true
		case arg == "--server" && i+1 < len(argv):
			i++
			args.Server = argv[i]
		case strings.HasPrefix(arg, "--server="):
			args.Server = strings.TrimPrefix(arg, "--server=")
		case arg == "--email" && i+1 < len(argv):
			i++
			args.Email = argv[i]
		case strings.HasPrefix(arg, "--email="):
			args.Email = strings.TrimPrefix(arg, "--email=")
		case arg == "--name" && i+1 < len(argv):
			i++
			args.Name = argv[i]
		case strings.HasPrefix(arg, "--name="):
			args.Name = strings.TrimPrefix(arg, "--name=")
		default:
			rest = append(rest, arg)
		}
		i++
	}

	if len(rest) > 0 {
		switch rest[0] {
		case "chat":
			cmd = CmdChat
		case "login":
			cmd = CmdLogin
		case "register":
			cmd = CmdRegister
		case "logout":
			cmd = CmdLogout
		case "status", "s":
			cmd = CmdStatus
		case "config":
			cmd = CmdConfig
		case "version", "-v", "--version":
			cmd = CmdVersion
		case "help", "-h", "--help":
			cmd = CmdHelp
		default:
			cmd = CmdHelp
		}
		if len(rest) > 1 {
			args.Subcommand = rest[1]
			args.Raw = rest[2:]
		}
	}

	return cmd, args
}

// PrintUsage writes the command reference to stdout.
func PrintUsage() {
	fmt.Print(usageText)
}

// PrintVersion prints build metadata.
func PrintVersion() {
	fmt.Printf("parley %s\n", Version)
	fmt.Printf("  commit:  %s\n", GitCommit)
	fmt.Printf("  built:   %s\n", BuildDate)
	fmt.Printf("  runtime: %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
