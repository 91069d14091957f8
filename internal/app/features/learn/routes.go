// internal/app/features/learn/routes.go
package learn

import (
	"github.com/go-chi/chi/v5"
	"github.com/takimhub/takimhub/internal/app/system/auth"
)

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)

	r.Get("/", h.ServeList)
	r.Get("/new", h.ServeNew)
	r.Post("/", h.HandleUpload)

	r.Post("/{id}/complete", h.HandleComplete)
	r.Post("/{id}/publish", h.HandlePublish)
	r.Post("/{id}/delete", h.HandleDelete)

	return r
}
