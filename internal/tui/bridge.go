package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/gosuda/taskflow/internal/board"
	"github.com/gosuda/taskflow/internal/dashboard"
	"github.com/gosuda/taskflow/internal/nav"
)

type (
	navigateMsg struct{ route nav.Route }

	// confirmMsg asks the user a yes/no question on behalf of a controller
	// blocked in Confirm.
	confirmMsg struct {
		ctx    context.Context // session of the asking controller
		prompt string
		reply  chan<- bool
	}

	snapshotMsg struct {
		ctrl *board.Controller
		snap board.Snapshot
	}

	boardLoadedMsg struct {
		ctrl *board.Controller
		err  error
	}

	followEndedMsg struct {
		ctrl *board.Controller
		err  error
	}

	dashboardChangedMsg struct{ ctrl *dashboard.Controller }

	cardAddedMsg struct {
		ctrl   *board.Controller
		listID uuid.UUID
		err    error
	}

	listAddedMsg  struct{ err error }
	boardAddedMsg struct{ err error }

	// resultMsg reports the outcome of a fire-and-forget action.
	resultMsg struct {
		op  string
		err error
	}
)

// bridge lets controllers running in command goroutines reach the event
// loop. It implements nav.Navigator and nav.Confirmer.
type bridge struct {
	m *model
}

func (b bridge) Navigate(r nav.Route) {
	b.m.send(navigateMsg{route: r})
}

// Confirm blocks until the user answers the prompt. A done ctx declines.
func (b bridge) Confirm(ctx context.Context, prompt string) bool {
	reply := make(chan bool, 1)
	b.m.send(confirmMsg{ctx: ctx, prompt: prompt, reply: reply})
	select {
	case ok := <-reply:
		return ok
	case <-ctx.Done():
		return false
	}
}

func result(op string, err error) tea.Msg {
	return resultMsg{op: op, err: err}
}
