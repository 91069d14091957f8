// internal/app/features/teams/routes.go
package teams

import (
	"github.com/go-chi/chi/v5"
	"github.com/takimhub/takimhub/internal/app/system/auth"
)

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)

	r.Get("/", h.ServeList)
	r.Get("/new", h.ServeNew)
	r.Post("/", h.HandleCreate)

	r.Get("/{id}", h.ServeDetail)
	r.Post("/{id}/rename", h.HandleRename)
	r.Post("/{id}/delete", h.HandleDelete)

	r.Post("/{id}/members", h.HandleAddMember)
	r.Post("/{id}/members/{userID}/remove", h.HandleRemoveMember)

	return r
}
