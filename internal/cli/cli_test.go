// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import "testing"

func TestParse_DefaultIsTUI(t *testing.T) {
	cmd, args := Parse(nil)
	if cmd != CmdTUI {
		t.Errorf("expected CmdTUI, got %v", cmd)
	}
	if args.Quiet || args.JSON {
		t.Error("expected zero-value flags")
	}
}

func TestParse_Commands(t *testing.T) {
	tests := []struct {
		argv []string
		want Command
	}{
		{[]string{"chat"}, CmdChat},
		{[]string{"login"}, CmdLogin},
		{[]string{"register"}, CmdRegister},
		{[]string{"logout"}, CmdLogout},
		{[]string{"status"}, CmdStatus},
		{[]string{"s"}, CmdStatus},
		{[]string{"config"}, CmdConfig},
		{[]string{"version"}, CmdVersion},
		{[]string{"-v"}, CmdVersion},
		{[]string{"help"}, CmdHelp},
		{[]string{"-h"}, CmdHelp},
		{[]string{"bogus"}, CmdHelp},
	}

	for _, tt := range tests {
		cmd, _ := Parse(tt.argv)
		if cmd != tt.want {
			t.Errorf("Parse(%v) = %v, want %v", tt.argv, cmd, tt.want)
		}
	}
}

func TestParse_Flags(t *testing.T) {
	cmd, args := Parse([]string{"--server", "https://chat.example.com", "login", "--email=me@example.com", "-q"})
	if cmd != CmdLogin {
		t.Fatalf("expected CmdLogin, got %v", cmd)
	}
	if args.Server != "https://chat.example.com" {
		t.Errorf("server = %q", args.Server)
	}
	if args.Email != "me@example.com" {
		t.Errorf("email = %q", args.Email)
	}
	if !args.Quiet {
		t.Error("expected quiet flag")
	}
}

func TestParse_EqualsAndSpaceForms(t *testing.T) {
	_, a := Parse([]string{"register", "--name", "Ada", "--email=ada@example.com"})
	if a.Name != "Ada" {
		t.Errorf("name = %q", a.Name)
	}
	if a.Email != "ada@example.com" {
		t.Errorf("email = %q", a.Email)
	}
}

func TestParse_Subcommand(t *testing.T) {
	_, a := Parse([]string{"config", "path"})
	if a.Subcommand != "path" {
		t.Errorf("subcommand = %q", a.Subcommand)
	}
}

func TestParse_NoMarkdown(t *testing.T) {
	cmd, a := Parse([]string{"chat", "--no-markdown"})
	if cmd != CmdChat {
		t.Fatalf("expected CmdChat, got %v", cmd)
	}
	if !a.NoMarkdown {
		t.Error("expected NoMarkdown")
	}
}
