package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/gosuda/taskflow/internal/dashboard"
	"github.com/gosuda/taskflow/internal/view"
)

func (m *model) openDashboard() tea.Cmd {
	ctx := m.newSession()
	m.scr = screenDashboard
	m.dashCursor = 0

	b := bridge{m: m}
	d := dashboard.New(dashboard.Deps{
		Remote:    m.deps.Remote,
		Confirmer: b,
		Navigator: b,
		User:      m.deps.User,
		Logger:    m.deps.Logger,
	})
	d.OnChange(func() { m.send(dashboardChangedMsg{ctrl: d}) })
	m.dash = d

	return func() tea.Msg {
		return result("", d.Load(ctx))
	}
}

func (m *model) updateDashboard(msg tea.Msg) tea.Cmd {
	d := m.dash
	if d == nil {
		return nil
	}

	switch msg := msg.(type) {
	case dashboardChangedMsg:
		if msg.ctrl == d {
			m.dashCursor = clamp(m.dashCursor, len(d.Boards()))
		}
		return nil

	case boardAddedMsg:
		if msg.err == nil {
			m.input, m.inputDesc = nil, nil
			m.dashCursor = max(len(d.Boards())-1, 0)
		}
		m.report("board created", msg.err)
		return nil

	case tea.KeyMsg:
		if m.input != nil {
			return m.updateBoardForm(msg)
		}
		return m.dashboardKey(msg)
	}
	return nil
}

func (m *model) dashboardKey(k tea.KeyMsg) tea.Cmd {
	d, ctx := m.dash, m.sessCtx
	boards := d.Boards()

	switch {
	case key.Matches(k, m.keys.Quit):
		return tea.Quit
	case key.Matches(k, m.keys.Up):
		m.dashCursor = clamp(m.dashCursor-1, len(boards))
	case key.Matches(k, m.keys.Down):
		m.dashCursor = clamp(m.dashCursor+1, len(boards))
	case key.Matches(k, m.keys.Refresh):
		return func() tea.Msg { return result("", d.Load(ctx)) }
	case key.Matches(k, m.keys.New):
		title := view.NewInput("Board title", 120)
		desc := view.NewInput("Description (optional)", 500)
		title.Focus()
		m.input, m.inputDesc = &title, &desc
	case key.Matches(k, m.keys.Open):
		if len(boards) == 0 {
			return nil
		}
		id := boards[m.dashCursor].ID
		return func() tea.Msg {
			d.Open(id)
			return nil
		}
	case key.Matches(k, m.keys.DeleteCard):
		if len(boards) == 0 || !d.CanDelete(boards[m.dashCursor]) {
			return nil
		}
		id := boards[m.dashCursor].ID
		return func() tea.Msg { return result("", d.Delete(ctx, id)) }
	}
	return nil
}

// updateBoardForm drives the two-field new board form.
func (m *model) updateBoardForm(k tea.KeyMsg) tea.Cmd {
	switch k.Type {
	case tea.KeyEsc:
		m.input, m.inputDesc = nil, nil
		return nil
	case tea.KeyTab, tea.KeyShiftTab:
		if m.input.Focused() {
			m.input.Blur()
			m.inputDesc.Focus()
		} else {
			m.inputDesc.Blur()
			m.input.Focus()
		}
		return nil
	case tea.KeyEnter:
		title, desc := m.input.Value(), m.inputDesc.Value()
		if strings.TrimSpace(title) == "" {
			return nil
		}
		d, ctx := m.dash, m.sessCtx
		return func() tea.Msg {
			_, err := d.Create(ctx, title, desc)
			return boardAddedMsg{err: err}
		}
	}

	var cmd tea.Cmd
	if m.input.Focused() {
		*m.input, cmd = m.input.Update(k)
	} else {
		*m.inputDesc, cmd = m.inputDesc.Update(k)
	}
	return cmd
}

func (m *model) dashboardView() string {
	var sb strings.Builder
	sb.WriteString(m.theme.Title.Render("Your boards"))
	if u := m.deps.User; u != nil {
		sb.WriteString("  " + m.theme.Subtitle.Render("signed in as "+u.Name))
	}
	sb.WriteString("\n\n")

	d := m.dash
	switch {
	case d == nil:
	case !d.Loaded() && m.statusErr && !d.Loading():
		sb.WriteString(m.theme.Subtitle.Render("Boards could not be loaded. Press r to retry."))
	case !d.Loaded():
		sb.WriteString(m.theme.Subtitle.Render("Loading boards…"))
	default:
		boards := d.Boards()
		if len(boards) == 0 {
			sb.WriteString(m.theme.Subtitle.Render("No boards yet. Press n to create one."))
		}
		for i, b := range boards {
			sb.WriteString(view.BoardRow(m.theme, b, i == m.dashCursor, d.CanDelete(b)))
			sb.WriteString("\n")
		}
	}

	if m.input != nil {
		sb.WriteString("\n" + m.theme.Form.Render(fmt.Sprintf("%s\n%s\n%s",
			m.input.View(), m.inputDesc.View(), m.theme.Help.Render("tab switch · enter create · esc cancel"))))
	}
	return sb.String()
}

func clamp(i, n int) int {
	if n <= 0 || i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
