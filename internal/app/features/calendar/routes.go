// internal/app/features/calendar/routes.go
package calendar

import (
	"github.com/go-chi/chi/v5"
	"github.com/takimhub/takimhub/internal/app/system/auth"
)

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)

	r.Get("/", h.ServeList)
	r.Post("/", h.HandleCreate)

	r.Post("/{id}/delete", h.HandleDelete)

	return r
}
