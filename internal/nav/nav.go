// Package nav holds the seams controllers use to leave a view and to ask the
// user before destructive actions. Both are injected so controllers stay free
// of any UI toolkit.
package nav

import (
	"context"

	"github.com/google/uuid"
)

type RouteName string

const (
	RouteLogin     RouteName = "login"
	RouteDashboard RouteName = "dashboard"
	RouteBoard     RouteName = "board"
)

type Route struct {
	Name    RouteName
	BoardID uuid.UUID // set for RouteBoard
}

func Login() Route     { return Route{Name: RouteLogin} }
func Dashboard() Route { return Route{Name: RouteDashboard} }

func Board(id uuid.UUID) Route { return Route{Name: RouteBoard, BoardID: id} }

// Navigator switches the active view.
type Navigator interface {
	Navigate(r Route)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(Route)

func (f NavigatorFunc) Navigate(r Route) { f(r) }

// Confirmer asks the user to approve a destructive action. It blocks until
// the user answers; a done ctx counts as a refusal.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, prompt string) bool

func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) bool { return f(ctx, prompt) }

// Always approves every prompt. For non-interactive callers.
var Always Confirmer = ConfirmFunc(func(context.Context, string) bool { return true })

// Never declines every prompt.
var Never Confirmer = ConfirmFunc(func(context.Context, string) bool { return false })

// Discard ignores navigation requests.
var Discard Navigator = NavigatorFunc(func(Route) {})
