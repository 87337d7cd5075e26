// parley TUI - a terminal client for a remote chat service.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/parley-tui/internal/api"
	"github.com/jeranaias/parley-tui/internal/auth"
	"github.com/jeranaias/parley-tui/internal/chat"
	"github.com/jeranaias/parley-tui/internal/cli"
	"github.com/jeranaias/parley-tui/internal/config"
	"github.com/jeranaias/parley-tui/internal/storage"
	"github.com/jeranaias/parley-tui/internal/ui/chatview"
	"github.com/jeranaias/parley-tui/internal/ui/login"
	"github.com/jeranaias/parley-tui/internal/ui/styles"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args := cli.Parse(os.Args[1:])

	switch cmd {
	case cli.CmdHelp:
		cli.PrintUsage()
		return
	case cli.CmdVersion:
		cli.PrintVersion()
		return
	}

	env, cleanup, err := setup(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer cleanup()

	switch cmd {
	case cli.CmdTUI:
		runTUI(env, args)
	case cli.CmdChat:
		err = cli.RunChat(env, args)
	case cli.CmdLogin:
		err = cli.RunLogin(env, args)
	case cli.CmdRegister:
		err = cli.RunRegister(env, args)
	case cli.CmdLogout:
		err = cli.RunLogout(env, args)
	case cli.CmdStatus:
		err = cli.RunStatus(env, args)
	case cli.CmdConfig:
		err = cli.RunConfig(env, args)
	}

	if err != nil {
		os.Exit(1)
	}
}

// =============================================================================
// WIRING
// =============================================================================

// setup loads configuration and wires the service stack: HTTP client,
// session store, auth manager, conversation manager.
func setup(args cli.Args) (*cli.Env, func(), error) {
	cfg := config.Global()
	if args.Server != "" {
		cfg = cfg.Clone()
		cfg.Server.BaseURL = args.Server
		cfg.SetDefaults()
		if err := cfg.Validate(); err != nil {
			return nil, nil, fmt.Errorf("invalid --server: %w", err)
		}
		config.SetGlobal(cfg)
	}

	dbPath, err := cfg.SessionDBPath()
	if err != nil {
		return nil, nil, fmt.Errorf("resolve session path: %w", err)
	}
	store, err := storage.Open(dbPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open session store: %w", err)
	}

	client := api.NewClientWithConfig(&api.ClientConfig{
		BaseURL:           cfg.Server.BaseURL,
		Timeout:           time.Duration(cfg.Server.TimeoutSecs) * time.Second,
		RequestsPerSecond: float64(cfg.Server.RequestsPerSecond),
		Burst:             cfg.Server.Burst,
	})

	authMgr := auth.NewManager(client, store)

	initCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := authMgr.Initialize(initCtx); err != nil && !args.Quiet {
		fmt.Fprintf(os.Stderr, "warning: session check failed: %v\n", err)
	}

	chatMgr := chat.NewManager(client, authMgr)

	env := &cli.Env{
		Config: cfg,
		Auth:   authMgr,
		Chat:   chatMgr,
	}
	cleanup := func() {
		chatMgr.Close()
		store.Close()
	}
	return env, cleanup, nil
}

// =============================================================================
// TUI
// =============================================================================

func runTUI(env *cli.Env, args cli.Args) {
	theme := styles.NewTheme()

	m := newAppModel(theme, env, args)

	// reload the view when the config file changes on disk
	watcher, err := config.NewWatcher(func(cfg *config.Config) {
		env.Config = cfg
	})
	if err == nil {
		if err := watcher.Watch(); err == nil {
			defer watcher.Close()
		}
	}

	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running parley: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// APPLICATION MODEL
// =============================================================================

// State represents the current application screen.
type State int

const (
	StateLogin State = iota
	StateChat
)

// authDoneMsg reports a finished login or register attempt.
type authDoneMsg struct {
	user *api.User
	err  error
}

// appModel is the top-level Bubble Tea model: it owns the screen switch
// between the login form and the conversation view.
type appModel struct {
	state State
	theme *styles.Theme
	env   *cli.Env
	args  cli.Args

	loginModel login.Model
	chatModel  chatview.Model

	width  int
	height int
}

func newAppModel(theme *styles.Theme, env *cli.Env, args cli.Args) *appModel {
	m := &appModel{
		state:      StateLogin,
		theme:      theme,
		env:        env,
		args:       args,
		loginModel: login.New(theme),
	}
	if env.Auth.Authenticated() {
		m.enterChat()
	}
	return m
}

// enterChat builds the conversation screen for the signed-in user.
func (m *appModel) enterChat() {
	label := ""
	if user := m.env.Auth.CurrentUser(); user != nil {
		label = user.Name
	}
	m.chatModel = chatview.New(m.theme, m.env.Chat, chatview.Options{
		UserLabel:      label,
		Markdown:       m.env.Config.UI.Markdown && !m.args.NoMarkdown,
		ShowTimestamps: m.env.Config.UI.ShowTimestamps,
	})
	m.state = StateChat
}

// authCmd runs the login or register call off the UI goroutine. Register
// only creates the identity, so it is followed by a login with the same
// credentials to establish the session.
func (m *appModel) authCmd(msg login.SubmitMsg) tea.Cmd {
	authMgr := m.env.Auth
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()

		if msg.Register {
			if _, err := authMgr.Register(ctx, msg.Name, msg.Email, msg.Password); err != nil {
				return authDoneMsg{err: err}
			}
		}
		user, err := authMgr.Login(ctx, msg.Email, msg.Password)
		return authDoneMsg{user: user, err: err}
	}
}

func (m *appModel) Init() tea.Cmd {
	if m.state == StateChat {
		return m.chatModel.Init()
	}
	return m.loginModel.Init()
}

func (m *appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		// both screens track the size so the switch never renders stale
		var cmds []tea.Cmd
		var cmd tea.Cmd
		m.loginModel, cmd = m.loginModel.Update(msg)
		cmds = append(cmds, cmd)
		if m.state == StateChat {
			m.chatModel, cmd = m.chatModel.Update(msg)
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)

	case login.SubmitMsg:
		return m, m.authCmd(msg)

	case authDoneMsg:
		if msg.err != nil {
			m.loginModel.Fail(msg.err.Error())
			return m, nil
		}
		m.enterChat()
		var initCmd tea.Cmd = m.chatModel.Init()
		if m.width > 0 {
			var cmd tea.Cmd
			m.chatModel, cmd = m.chatModel.Update(tea.WindowSizeMsg{Width: m.width, Height: m.height})
			return m, tea.Batch(initCmd, cmd)
		}
		return m, initCmd

	case chatview.SessionExpiredMsg:
		_ = m.env.Auth.Invalidate()
		m.loginModel = login.New(m.theme)
		m.loginModel.Fail("session expired, sign in again")
		m.state = StateLogin
		if m.width > 0 {
			m.loginModel.SetSize(m.width, m.height)
		}
		return m, m.loginModel.Init()

	case chatview.LogoutRequestedMsg:
		_ = m.env.Auth.Logout()
		m.env.Chat.NewChat()
		m.loginModel = login.New(m.theme)
		m.state = StateLogin
		if m.width > 0 {
			m.loginModel.SetSize(m.width, m.height)
		}
		return m, m.loginModel.Init()

	case tea.KeyMsg:
		if m.state == StateLogin && msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	switch m.state {
	case StateLogin:
		m.loginModel, cmd = m.loginModel.Update(msg)
	case StateChat:
		m.chatModel, cmd = m.chatModel.Update(msg)
	}
	return m, cmd
}

func (m *appModel) View() string {
	switch m.state {
	case StateChat:
		return m.chatModel.View()
	default:
		return m.loginModel.View()
	}
}
