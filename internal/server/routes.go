package server

import (
	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"

	v1 "github.com/gosuda/taskflow/internal/api/v1"
	"github.com/gosuda/taskflow/internal/api/ws"
)

func registerAuthRoutes(api huma.API, deps Deps) {
	v1.RegisterAuthRoutes(api, deps.Auth)
}

func registerAPIRoutes(api huma.API, deps Deps) {
	v1.RegisterMeRoutes(api, deps.Auth)
	v1.RegisterBoardRoutes(api, deps.Store, deps.Events)
	v1.RegisterListRoutes(api, deps.Store, deps.Events)
	v1.RegisterCardRoutes(api, deps.Store, deps.Events)
}

func registerWSRoutes(r chi.Router, hub *ws.Hub) {
	r.Get("/boards/{id}", hub.ServeBoard)
}
