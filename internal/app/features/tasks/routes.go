// internal/app/features/tasks/routes.go
package tasks

import (
	"github.com/go-chi/chi/v5"
	"github.com/takimhub/takimhub/internal/app/system/auth"
)

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)

	r.Get("/", h.ServeList)
	r.Post("/", h.HandleCreate)

	r.Post("/{id}/status", h.HandleStatus)
	r.Post("/{id}/assign", h.HandleAssign)
	r.Post("/{id}/delete", h.HandleDelete)

	return r
}
