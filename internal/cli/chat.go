// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat.go - Interactive chat REPL for the parley CLI.
//
// Handles "parley chat", a readline-style loop against the same
// conversation manager the TUI uses.
//
// Interactive commands (during chat):
//   /help, /h           Show available commands
//   /history            Reprint the conversation
//   /new                Start a new chat locally
//   /clear              Delete the conversation on the server
//   /status             Show session info
//   /quit, /q           Exit chat
//   Ctrl+C, Ctrl+D      Exit chat
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/peterh/liner"

	"github.com/jeranaias/parley-tui/internal/config"
	"github.com/jeranaias/parley-tui/internal/model"
)

// =============================================================================
// INPUT HISTORY
// =============================================================================

// ChatCLI provides input history and line editing for interactive chat.
type ChatCLI struct {
	line        *liner.State
	historyFile string
}

// NewChatCLI creates a ChatCLI with input history loaded from the config
// directory.
func NewChatCLI() *ChatCLI {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	configDir, err := config.ConfigDir()
	if err != nil {
		configDir = os.TempDir()
	}

	c := &ChatCLI{
		line:        line,
		historyFile: filepath.Join(configDir, "chat_history"),
	}
	c.loadHistory()
	return c
}

func (c *ChatCLI) loadHistory() {
	if f, err := os.Open(c.historyFile); err == nil {
		c.line.ReadHistory(f)
		f.Close()
	}
}

// ReadInput reads a line with history navigation on the arrow keys.
func (c *ChatCLI) ReadInput(prompt string) (string, error) {
	input, err := c.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		c.line.AppendHistory(input)
	}
	return input, nil
}

// SaveHistory persists input history with owner-only permissions.
func (c *ChatCLI) SaveHistory() {
	if err := config.EnsureConfigDir(); err != nil {
		return
	}
	f, err := os.OpenFile(c.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return
	}
	defer f.Close()
	c.line.WriteHistory(f)
}

// Close saves history and restores the terminal.
func (c *ChatCLI) Close() {
	c.SaveHistory()
	c.line.Close()
}

// =============================================================================
// REPL
// =============================================================================

// RunChat runs the interactive chat loop.
func RunChat(env *Env, args Args) error {
	if err := requireSession(env, args); err != nil {
		return err
	}

	input := NewChatCLI()
	defer input.Close()

	renderer := newReplRenderer(args)

	if !args.Quiet {
		fmt.Println(welcomeStyle.Render("parley chat"))
		fmt.Println(infoStyle.Render("type /help for commands, /quit to exit"))
		fmt.Println()
	}

	// catch up on the server-side conversation before the first prompt
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	err := env.Chat.FetchHistory(ctx)
	cancel()
	if err != nil {
		fmt.Println(warningStyle.Render("could not load history: " + err.Error()))
	} else if env.Chat.Len() > 0 {
		printTranscript(env, renderer)
	}

	for {
		line, err := input.ReadInput(promptStyle.Render("you> "))
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) {
				fmt.Println()
				return nil
			}
			// Ctrl+D or closed stdin
			fmt.Println()
			return nil
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			if quit := runSlashCommand(env, renderer, line); quit {
				return nil
			}
			continue
		}

		sendAndPrint(env, renderer, line)
	}
}

// sendAndPrint sends one message and prints the assistant reply.
func sendAndPrint(env *Env, renderer *glamour.TermRenderer, text string) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	before := env.Chat.Len()
	if err := env.Chat.SendMessage(ctx, text); err != nil {
		fmt.Println(errorStyle.Render("send failed: " + err.Error()))
		return
	}

	msgs := env.Chat.Messages()
	for _, msg := range msgs[min(before+1, len(msgs)):] {
		if msg.Role == model.RoleAssistant {
			printAssistant(renderer, msg.Content)
		}
	}
}

func runSlashCommand(env *Env, renderer *glamour.TermRenderer, line string) (quit bool) {
	cmd := strings.Fields(line)[0]
	switch cmd {
	case "/help", "/h":
		fmt.Println(commandStyle.Render("/history") + infoStyle.Render("  reprint the conversation"))
		fmt.Println(commandStyle.Render("/new") + infoStyle.Render("      start a new chat locally"))
		fmt.Println(commandStyle.Render("/clear") + infoStyle.Render("    delete the conversation on the server"))
		fmt.Println(commandStyle.Render("/status") + infoStyle.Render("   show session info"))
		fmt.Println(commandStyle.Render("/quit") + infoStyle.Render("     exit"))

	case "/history":
		printTranscript(env, renderer)

	case "/new":
		env.Chat.NewChat()
		fmt.Println(infoStyle.Render("started a new chat"))

	case "/clear":
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		err := env.Chat.ClearChat(ctx)
		cancel()
		if err != nil {
			fmt.Println(errorStyle.Render("clear failed: " + err.Error()))
		} else {
			fmt.Println(infoStyle.Render("conversation cleared"))
		}

	case "/status":
		_ = RunStatus(env, Args{})

	case "/quit", "/q", "/exit":
		return true

	default:
		fmt.Println(warningStyle.Render("unknown command " + cmd + ", try /help"))
	}
	return false
}

// =============================================================================
// OUTPUT
// =============================================================================

// newReplRenderer builds a glamour renderer for REPL output, or nil when
// markdown is disabled or the output is not a terminal.
func newReplRenderer(args Args) *glamour.TermRenderer {
	if args.NoMarkdown || !ColorEnabled() {
		return nil
	}
	wrap := TerminalWidth() - 4
	if wrap < 20 {
		wrap = 20
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(wrap),
	)
	if err != nil {
		return nil
	}
	return renderer
}

func printAssistant(renderer *glamour.TermRenderer, content string) {
	if renderer != nil {
		if rendered, err := renderer.Render(content); err == nil {
			fmt.Print(rendered)
			return
		}
	}
	fmt.Println(content)
}

func printTranscript(env *Env, renderer *glamour.TermRenderer) {
	for _, msg := range env.Chat.Messages() {
		switch msg.Role {
		case model.RoleUser:
			fmt.Println(promptStyle.Render("you> ") + msg.Content)
		default:
			printAssistant(renderer, msg.Content)
		}
	}
}
