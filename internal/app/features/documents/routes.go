// internal/app/features/documents/routes.go
package documents

import (
	"github.com/go-chi/chi/v5"
	"github.com/takimhub/takimhub/internal/app/system/auth"
)

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)

	r.Get("/", h.ServeList)
	r.Post("/", h.HandleUpload)
	r.Get("/{id}/download", h.HandleDownload)
	r.Post("/{id}/delete", h.HandleDelete)

	return r
}
