// internal/app/features/reports/routes.go
package reports

import (
	"github.com/go-chi/chi/v5"
	"github.com/takimhub/takimhub/internal/app/system/auth"
)

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(rr chi.Router) {
		rr.Use(auth.RequireSignedIn)

		// LIST (scope selected by query param, live search)
		rr.Get("/", h.ServeList)

		// UPLOAD
		rr.Get("/new", h.ServeNew)
		rr.Post("/", h.HandleUpload)

		// DOWNLOAD + DELETE (per-resource authorization in handlers)
		rr.Get("/{id}/download", h.HandleDownload)
		rr.Post("/{id}/delete", h.HandleDelete)
	})

	return r
}
