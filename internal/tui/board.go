package tui

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/gosuda/taskflow/internal/board"
	"github.com/gosuda/taskflow/internal/dnd"
	"github.com/gosuda/taskflow/internal/domain"
	"github.com/gosuda/taskflow/internal/nav"
	"github.com/gosuda/taskflow/internal/view"
)

const listColumnWidth = 36

func (m *model) openBoard(id uuid.UUID) tea.Cmd {
	ctx := m.newSession()
	m.scr = screenBoard
	m.snap = board.Snapshot{}
	m.listIdx, m.cardIdx = 0, 0
	clear(m.forms)

	b := bridge{m: m}
	c := board.New(id, board.Deps{
		Remote:    m.deps.Remote,
		Confirmer: b,
		Navigator: b,
		User:      m.deps.User,
		Logger:    m.deps.Logger,
	})
	m.unsubscribe = c.Subscribe(func(s board.Snapshot) { m.send(snapshotMsg{ctrl: c, snap: s}) })
	m.board = c

	return func() tea.Msg {
		return boardLoadedMsg{ctrl: c, err: c.Load(ctx)}
	}
}

func (m *model) updateBoard(msg tea.Msg) tea.Cmd {
	c := m.board
	if c == nil {
		return nil
	}

	switch msg := msg.(type) {
	case snapshotMsg:
		if msg.ctrl == c && msg.snap.Version >= m.snap.Version {
			m.snap = msg.snap
			m.clampCursor()
		}
		return nil

	case boardLoadedMsg:
		if msg.ctrl != c {
			return nil
		}
		m.snap = c.Snapshot()
		m.clampCursor()
		if msg.err != nil {
			if !errors.Is(msg.err, domain.ErrNotFound) {
				m.report("", msg.err)
			}
			return nil
		}
		return m.follow(c)

	case followEndedMsg:
		if msg.ctrl == c && msg.err != nil && !errors.Is(msg.err, errFollowDone) {
			m.log.Debug().Err(msg.err).Msg("tui: live updates stopped")
		}
		return nil

	case cardAddedMsg:
		if msg.ctrl != c {
			return nil
		}
		form, ok := m.forms[msg.listID]
		if !ok {
			return nil
		}
		if err := form.Done(msg.err); err != nil {
			m.report("", err)
		}
		return nil

	case listAddedMsg:
		if msg.err == nil {
			m.input = nil
			m.listIdx = len(m.lists()) - 1
			m.cardIdx = 0
		}
		m.report("", msg.err)
		return nil

	case tea.KeyMsg:
		switch {
		case m.detail != nil:
			if key.Matches(msg, m.keys.Back) || key.Matches(msg, m.keys.Open) {
				m.detail = nil
			}
			return nil
		case m.input != nil:
			return m.updateListForm(msg)
		}
		if f := m.focusedForm(); f != nil && f.IsOpen() {
			return m.updateCardForm(f, msg)
		}
		return m.boardKey(msg)
	}
	return nil
}

var errFollowDone = errors.New("follow done")

// follow keeps the board in sync with other users while it is open.
func (m *model) follow(c *board.Controller) tea.Cmd {
	w := m.deps.Watcher
	if w == nil {
		return nil
	}
	ctx := m.sessCtx
	return func() tea.Msg {
		err := c.Follow(ctx, w)
		if err == nil || ctx.Err() != nil {
			err = errFollowDone
		}
		return followEndedMsg{ctrl: c, err: err}
	}
}

func (m *model) boardKey(k tea.KeyMsg) tea.Cmd {
	c, ctx := m.board, m.sessCtx
	lists := m.lists()
	_, dragging := m.tracker.Active()

	switch {
	case key.Matches(k, m.keys.Quit):
		return tea.Quit

	case key.Matches(k, m.keys.Back):
		if dragging {
			m.tracker.Cancel()
			return nil
		}
		return func() tea.Msg { return navigateMsg{route: nav.Dashboard()} }

	case key.Matches(k, m.keys.Left), key.Matches(k, m.keys.Right):
		if len(lists) == 0 {
			return nil
		}
		step := 1
		if key.Matches(k, m.keys.Left) {
			step = -1
		}
		m.listIdx = clamp(m.listIdx+step, len(lists))
		m.cardIdx = clamp(m.cardIdx, len(lists[m.listIdx].Cards))
		if dragging {
			m.tracker.Hover(lists[m.listIdx].ID)
		}

	case key.Matches(k, m.keys.Up):
		m.cardIdx = max(m.cardIdx-1, 0)
	case key.Matches(k, m.keys.Down):
		if len(lists) > 0 {
			m.cardIdx = clamp(m.cardIdx+1, len(lists[m.listIdx].Cards))
		}

	case key.Matches(k, m.keys.Pick):
		if dragging {
			return m.drop()
		}
		if u, ok := m.focusedCard(); ok && m.snap.CanEdit {
			m.tracker.Begin(u.Payload())
		}

	case key.Matches(k, m.keys.Open):
		if dragging {
			return m.drop()
		}
		if u, ok := m.focusedCard(); ok {
			m.detail = newCardDetail(u.Card, m.markdown())
		}

	case key.Matches(k, m.keys.Refresh):
		return func() tea.Msg { return result("", c.Refresh(ctx)) }

	case key.Matches(k, m.keys.New):
		if m.snap.Status == board.StatusReady && m.snap.CanEdit {
			in := view.NewInput("List title", 120)
			in.Focus()
			m.input = &in
		}

	case key.Matches(k, m.keys.Add):
		if u, ok := m.focusedList(); ok {
			u.OpenForm()
		}

	case key.Matches(k, m.keys.DeleteCard):
		var cmd tea.Cmd
		if u, ok := m.focusedList(); ok && m.cardIdx < len(u.List.Cards) {
			u.Intents.DeleteCard = func(id uuid.UUID) {
				cmd = func() tea.Msg { return result("", c.DeleteCard(ctx, id)) }
			}
			u.Card(m.cardIdx).Delete()
		}
		return cmd

	case key.Matches(k, m.keys.DeleteList):
		var cmd tea.Cmd
		if u, ok := m.focusedList(); ok {
			u.Intents.DeleteList = func(id uuid.UUID) {
				cmd = func() tea.Msg { return result("", c.DeleteList(ctx, id)) }
			}
			u.RequestDeleteList()
		}
		return cmd
	}
	return nil
}

// drop resolves the drag over the hovered list and hands the move to the
// controller. Nothing moves on screen until the service confirms.
func (m *model) drop() tea.Cmd {
	mv, ok := m.tracker.DropHovered()
	if !ok {
		return nil
	}
	c, ctx := m.board, m.sessCtx
	return func() tea.Msg {
		return result("", dnd.Dispatch(ctx, c, mv))
	}
}

func (m *model) updateCardForm(f *view.CardForm, k tea.KeyMsg) tea.Cmd {
	switch k.Type {
	case tea.KeyEsc:
		f.Close()
		return nil
	case tea.KeyEnter:
		u, ok := m.focusedList()
		if !ok {
			return nil
		}
		draft, ok := f.Pending()
		if !ok {
			return nil
		}
		c, ctx, listID := m.board, m.sessCtx, u.List.ID
		return func() tea.Msg {
			return cardAddedMsg{ctrl: c, listID: listID, err: c.CreateCard(ctx, listID, draft)}
		}
	}
	return f.Update(k)
}

func (m *model) updateListForm(k tea.KeyMsg) tea.Cmd {
	switch k.Type {
	case tea.KeyEsc:
		m.input = nil
		return nil
	case tea.KeyEnter:
		title := m.input.Value()
		if strings.TrimSpace(title) == "" {
			return nil
		}
		c, ctx := m.board, m.sessCtx
		return func() tea.Msg { return listAddedMsg{err: c.CreateList(ctx, title)} }
	}
	var cmd tea.Cmd
	*m.input, cmd = m.input.Update(k)
	return cmd
}

func (m *model) lists() []*domain.List {
	if m.snap.Board == nil {
		return nil
	}
	return m.snap.Board.Lists
}

func (m *model) clampCursor() {
	lists := m.lists()
	m.listIdx = clamp(m.listIdx, len(lists))
	if len(lists) == 0 {
		m.cardIdx = 0
		return
	}
	m.cardIdx = clamp(m.cardIdx, len(lists[m.listIdx].Cards))
}

// listUnit builds the unit of the i-th list from the current snapshot.
func (m *model) listUnit(i int) view.ListUnit {
	l := m.lists()[i]
	form, ok := m.forms[l.ID]
	if !ok {
		form = view.NewCardForm()
		m.forms[l.ID] = form
	}
	cursor := -1
	if i == m.listIdx {
		cursor = m.cardIdx
	}
	return view.ListUnit{
		List:    l,
		CanEdit: m.snap.CanEdit,
		Tracker: &m.tracker,
		Focused: i == m.listIdx,
		Cursor:  cursor,
		Form:    form,
	}
}

func (m *model) focusedList() (view.ListUnit, bool) {
	if m.listIdx >= len(m.lists()) {
		return view.ListUnit{}, false
	}
	return m.listUnit(m.listIdx), true
}

func (m *model) focusedCard() (view.CardUnit, bool) {
	u, ok := m.focusedList()
	if !ok || m.cardIdx >= len(u.List.Cards) {
		return view.CardUnit{}, false
	}
	return u.Card(m.cardIdx), true
}

func (m *model) focusedForm() *view.CardForm {
	u, ok := m.focusedList()
	if !ok {
		return nil
	}
	return u.Form
}

func (m *model) boardView() string {
	switch m.snap.Status {
	case board.StatusIdle, board.StatusLoading:
		return m.theme.Subtitle.Render("Loading board…")
	case board.StatusNotFound:
		return m.theme.Subtitle.Render("This board does not exist anymore.")
	case board.StatusLoadError:
		return m.theme.Error.Render("The board could not be loaded: "+describe(m.snap.Err)) +
			"\n" + m.theme.Help.Render("press r to retry, esc for the dashboard")
	}

	b := m.snap.Board
	header := view.BoardHeader(m.theme, b)
	if !m.snap.CanEdit {
		header += "  " + m.theme.Subtitle.Render("(read only)")
	}

	if m.detail != nil {
		return lipgloss.JoinVertical(lipgloss.Left, header, "", m.detail.View(m.theme))
	}

	lists := m.lists()
	first, last := m.visibleLists(len(lists))
	cols := make([]string, 0, last-first)
	for i := first; i < last; i++ {
		cols = append(cols, m.listUnit(i).Render(m.theme))
	}
	body := lipgloss.JoinHorizontal(lipgloss.Top, cols...)
	if len(lists) == 0 {
		body = m.theme.Subtitle.Render("No lists yet.")
		if m.snap.CanEdit {
			body += " " + m.theme.Subtitle.Render("Press n to add one.")
		}
	}

	parts := []string{header, "", body}
	if m.input != nil {
		parts = append(parts, "", m.theme.Form.Render(m.input.View()+"\n"+m.theme.Help.Render("enter add list · esc cancel")))
	}
	if p, ok := m.tracker.Active(); ok {
		parts = append(parts, m.theme.Help.Render("moving card "+shortID(p.CardID)+" · ←/→ choose list · space drop · esc cancel"))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// visibleLists returns the window of list columns that fits the terminal and
// contains the focused list.
func (m *model) visibleLists(n int) (int, int) {
	fit := n
	if m.width > 0 {
		fit = max(m.width/listColumnWidth, 1)
	}
	if fit >= n {
		return 0, n
	}
	first := max(m.listIdx-fit+1, 0)
	return first, first + fit
}

func shortID(id uuid.UUID) string {
	return id.String()[:8]
}
