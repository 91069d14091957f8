// internal/app/features/profile/routes.go
package profile

import (
	"github.com/go-chi/chi/v5"
	"github.com/takimhub/takimhub/internal/app/system/auth"
)

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)

	r.Get("/", h.ServeProfile)
	r.Post("/", h.HandleUpdate)
	r.Post("/avatar", h.HandleAvatarUpload)
	r.Post("/password", h.HandleChangePassword)

	return r
}
