// Package tui is the interactive terminal client. It hosts one controller
// at a time (dashboard or board), turns key presses into controller calls
// and renders controller snapshots through the view units.
package tui

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gosuda/taskflow/internal/board"
	"github.com/gosuda/taskflow/internal/dashboard"
	"github.com/gosuda/taskflow/internal/dnd"
	"github.com/gosuda/taskflow/internal/domain"
	"github.com/gosuda/taskflow/internal/nav"
	"github.com/gosuda/taskflow/internal/remote"
	"github.com/gosuda/taskflow/internal/view"
)

// ErrSignedOut is returned by Run when a view required a signed-in user.
var ErrSignedOut = errors.New("tui: not signed in, run `taskflow login` first")

type Deps struct {
	Remote  remote.Service
	Watcher remote.Watcher // optional; enables live refresh of the open board
	User    *domain.UserRef
	Logger  zerolog.Logger
	Start   nav.Route
}

type screen int

const (
	screenDashboard screen = iota
	screenBoard
)

type model struct {
	ctx   context.Context
	deps  Deps
	log   zerolog.Logger
	send  func(tea.Msg)
	theme view.Theme
	keys  keyMap
	help  help.Model
	width int

	scr        screen
	sessCtx    context.Context
	cancelSess context.CancelFunc

	// dashboard
	dash       *dashboard.Controller
	dashCursor int

	// board
	board       *board.Controller
	unsubscribe func()
	snap        board.Snapshot
	tracker     dnd.Tracker
	listIdx     int
	cardIdx     int
	forms       map[uuid.UUID]*view.CardForm
	detail      *cardDetail
	renderer    *glamour.TermRenderer

	// shared text input for new boards and new lists
	input     *textinput.Model
	inputDesc *textinput.Model

	prompts   []confirmMsg
	status    string
	statusErr bool
	exitErr   error
}

func newModel(ctx context.Context, deps Deps) *model {
	m := &model{
		ctx:   ctx,
		deps:  deps,
		log:   deps.Logger.With().Str("component", "tui").Logger(),
		send:  func(tea.Msg) {},
		theme: view.DefaultTheme(),
		keys:  defaultKeyMap(),
		help:  help.New(),
		forms: make(map[uuid.UUID]*view.CardForm),
	}
	return m
}

// Run starts the terminal client and blocks until the user quits or ctx is
// done.
func Run(ctx context.Context, deps Deps) error {
	m := newModel(ctx, deps)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	m.send = p.Send

	_, err := p.Run()
	m.teardown()
	if err != nil && !(errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil) {
		return fmt.Errorf("tui.Run: %w", err)
	}
	return m.exitErr
}

func (m *model) Init() tea.Cmd {
	return func() tea.Msg { return navigateMsg{route: m.deps.Start} }
}

// Update recovers from panics so a rendering or controller bug surfaces in
// the status line instead of tearing the terminal down.
func (m *model) Update(msg tea.Msg) (next tea.Model, cmd tea.Cmd) {
	defer func() {
		if r := recover(); r != nil {
			m.log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("tui: recovered panic in update")
			m.setError(fmt.Errorf("internal error: %v", r))
			next, cmd = m, nil
		}
	}()
	return m, m.update(msg)
}

func (m *model) View() (out string) {
	defer func() {
		if r := recover(); r != nil {
			m.log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("tui: recovered panic in view")
			out = m.theme.Error.Render(fmt.Sprintf("render failed: %v", r))
		}
	}()

	var body string
	switch m.scr {
	case screenBoard:
		body = m.boardView()
	default:
		body = m.dashboardView()
	}

	footer := m.statusLine()
	if len(m.prompts) > 0 {
		footer = m.theme.Title.Render(m.prompts[0].prompt) + " " + m.theme.Help.Render("[y/n]")
	}
	return lipgloss.JoinVertical(lipgloss.Left, body, "", footer)
}

func (m *model) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		m.renderer = nil
		return nil

	case navigateMsg:
		return m.navigate(msg.route)

	case confirmMsg:
		if msg.ctx.Err() != nil {
			msg.reply <- false
			return nil
		}
		m.prompts = append(m.prompts, msg)
		return nil

	case resultMsg:
		m.report(msg.op, msg.err)
		return nil

	case tea.KeyMsg:
		if len(m.prompts) > 0 {
			m.answerPrompt(msg)
			return nil
		}
		if msg.Type == tea.KeyCtrlC {
			return tea.Quit
		}
	}

	switch m.scr {
	case screenBoard:
		return m.updateBoard(msg)
	default:
		return m.updateDashboard(msg)
	}
}

func (m *model) navigate(r nav.Route) tea.Cmd {
	switch r.Name {
	case nav.RouteBoard:
		return m.openBoard(r.BoardID)
	case nav.RouteLogin:
		m.exitErr = ErrSignedOut
		m.teardown()
		return tea.Quit
	default:
		return m.openDashboard()
	}
}

func (m *model) answerPrompt(k tea.KeyMsg) {
	p := m.prompts[0]
	switch {
	case key.Matches(k, m.keys.Yes):
		p.reply <- true
	case key.Matches(k, m.keys.No):
		p.reply <- false
	default:
		return
	}
	m.prompts = m.prompts[1:]
}

// newSession tears down the current controller and starts a fresh context
// for the next one.
func (m *model) newSession() context.Context {
	m.teardown()
	m.sessCtx, m.cancelSess = context.WithCancel(m.ctx)
	m.status, m.statusErr = "", false
	return m.sessCtx
}

// teardown closes the active controller. Prompts still waiting are declined.
func (m *model) teardown() {
	if m.cancelSess != nil {
		m.cancelSess()
		m.cancelSess = nil
	}
	for _, p := range m.prompts {
		p.reply <- false
	}
	m.prompts = nil

	if m.board != nil {
		if m.unsubscribe != nil {
			m.unsubscribe()
		}
		m.board.Close()
		m.board, m.unsubscribe = nil, nil
	}
	if m.dash != nil {
		m.dash.Close()
		m.dash = nil
	}
	m.tracker.Cancel()
	m.detail = nil
	m.input, m.inputDesc = nil, nil
}

func (m *model) report(op string, err error) {
	switch {
	case err == nil:
		if op != "" {
			m.status, m.statusErr = op, false
		}
	case errors.Is(err, domain.ErrEmptyTitle),
		errors.Is(err, board.ErrClosed),
		errors.Is(err, dashboard.ErrClosed),
		errors.Is(err, board.ErrUnauthenticated),
		errors.Is(err, dashboard.ErrUnauthenticated),
		errors.Is(err, context.Canceled):
	default:
		m.setError(err)
	}
}

func (m *model) setError(err error) {
	m.status, m.statusErr = describe(err), true
}

func (m *model) statusLine() string {
	if m.status == "" {
		return m.help.View(m.helpKeys())
	}
	if m.statusErr {
		return m.theme.Error.Render("✗ " + m.status)
	}
	return m.theme.Help.Render(m.status)
}

func (m *model) helpKeys() help.KeyMap {
	if m.scr == screenBoard {
		return boardKeys(m.keys)
	}
	return dashboardKeys(m.keys)
}

// describe turns a failed action into something a user can act on.
func describe(err error) string {
	switch {
	case errors.Is(err, domain.ErrForbidden):
		return "you are not allowed to change this board"
	case errors.Is(err, domain.ErrUnauthorized):
		return "session expired, run `taskflow login`"
	case errors.Is(err, domain.ErrNotFound):
		return "it no longer exists, press r to refresh"
	case errors.Is(err, domain.ErrConflict):
		return "conflicting change, press r to refresh"
	default:
		return err.Error()
	}
}
