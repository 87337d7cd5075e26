// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// commands.go - Handlers for the non-REPL subcommands.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/jeranaias/parley-tui/internal/auth"
	"github.com/jeranaias/parley-tui/internal/chat"
	"github.com/jeranaias/parley-tui/internal/config"
)

// Env carries the wired application services into command handlers.
type Env struct {
	Config *config.Config
	Auth   *auth.Manager
	Chat   *chat.Manager
}

// opTimeout bounds a single CLI operation against the server.
const opTimeout = 60 * time.Second

// =============================================================================
// AUTH COMMANDS
// =============================================================================

// RunLogin signs in and persists the session.
func RunLogin(env *Env, args Args) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	if env.Auth.Authenticated() {
		user := env.Auth.CurrentUser()
		fmt.Println(infoStyle.Render("already signed in as " + user.Email))
		if !Confirm("Sign in as someone else?") {
			return nil
		}
	}

	email := args.Email
	if email == "" {
		var err error
		email, err = ReadLine("Email: ")
		if err != nil {
			return err
		}
	}

	password, err := ReadPassword("Password: ")
	if err != nil {
		return err
	}

	user, err := env.Auth.Login(ctx, email, password)
	if err != nil {
		fmt.Println(errorStyle.Render("login failed: " + err.Error()))
		return err
	}

	fmt.Println(successStyle.Render("signed in as " + user.Name))
	return nil
}

// RunRegister creates an account and signs in.
func RunRegister(env *Env, args Args) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	name := args.Name
	if name == "" {
		var err error
		name, err = ReadLine("Display name: ")
		if err != nil {
			return err
		}
	}

	email := args.Email
	if email == "" {
		var err error
		email, err = ReadLine("Email: ")
		if err != nil {
			return err
		}
	}

	password, err := ReadPassword("Password: ")
	if err != nil {
		return err
	}
	again, err := ReadPassword("Confirm password: ")
	if err != nil {
		return err
	}
	if password != again {
		fmt.Println(errorStyle.Render("passwords do not match"))
		return fmt.Errorf("passwords do not match")
	}

	user, err := env.Auth.Register(ctx, name, email, password)
	if err != nil {
		fmt.Println(errorStyle.Render("registration failed: " + err.Error()))
		return err
	}
	fmt.Println(successStyle.Render("account created for " + user.Name))

	// registering does not sign in; log in with the new credentials
	if _, err := env.Auth.Login(ctx, email, password); err != nil {
		fmt.Println(errorStyle.Render("sign-in failed: " + err.Error()))
		fmt.Println(infoStyle.Render("run 'parley login' to sign in"))
		return err
	}

	fmt.Println(successStyle.Render("signed in as " + user.Name))
	return nil
}

// RunLogout forgets the stored session. The server keeps the token; we just
// stop holding it.
func RunLogout(env *Env, args Args) error {
	if !env.Auth.Authenticated() {
		fmt.Println(infoStyle.Render("not signed in"))
		return nil
	}

	if err := env.Auth.Logout(); err != nil {
		fmt.Println(errorStyle.Render("logout failed: " + err.Error()))
		return err
	}

	fmt.Println(successStyle.Render("signed out"))
	return nil
}

// =============================================================================
// STATUS COMMAND
// =============================================================================

type statusReport struct {
	Version   string `json:"version"`
	Server    string `json:"server"`
	SignedIn  bool   `json:"signed_in"`
	UserName  string `json:"user_name,omitempty"`
	UserEmail string `json:"user_email,omitempty"`
	SessionDB string `json:"session_db"`
}

// RunStatus prints the current session and configuration.
func RunStatus(env *Env, args Args) error {
	dbPath, err := env.Config.SessionDBPath()
	if err != nil {
		dbPath = "(unavailable)"
	}

	report := statusReport{
		Version:   Version,
		Server:    env.Config.Server.BaseURL,
		SignedIn:  env.Auth.Authenticated(),
		SessionDB: dbPath,
	}
	if user := env.Auth.CurrentUser(); user != nil {
		report.UserName = user.Name
		report.UserEmail = user.Email
	}

	if args.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	fmt.Println(welcomeStyle.Render("parley " + Version))
	fmt.Println(infoStyle.Render("  server:   ") + report.Server)
	if report.SignedIn {
		fmt.Println(infoStyle.Render("  account:  ") + report.UserName + " <" + report.UserEmail + ">")
	} else {
		fmt.Println(infoStyle.Render("  account:  ") + "signed out")
	}
	fmt.Println(infoStyle.Render("  session:  ") + report.SessionDB)
	return nil
}

// =============================================================================
// CONFIG COMMAND
// =============================================================================

// RunConfig handles "parley config [show|path]".
func RunConfig(env *Env, args Args) error {
	switch args.Subcommand {
	case "", "show":
		fmt.Println(env.Config.String())
		return nil
	case "path":
		path, err := config.ConfigPathTOML()
		if err != nil {
			return err
		}
		fmt.Println(path)
		return nil
	default:
		fmt.Println(warningStyle.Render("unknown config subcommand: " + args.Subcommand))
		fmt.Println(infoStyle.Render("usage: parley config [show|path]"))
		return fmt.Errorf("unknown config subcommand %q", args.Subcommand)
	}
}

// requireSession ensures a command that talks to the chat endpoints has a
// signed-in user, offering an inline login on a terminal.
func requireSession(env *Env, args Args) error {
	if env.Auth.Authenticated() {
		return nil
	}
	if !IsTTY() {
		return fmt.Errorf("not signed in; run 'parley login' first")
	}
	fmt.Println(infoStyle.Render("you need to sign in first"))
	return RunLogin(env, args)
}
