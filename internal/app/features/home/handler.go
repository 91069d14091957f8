package home

import (
	"net/http"

	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/takimhub/takimhub/internal/app/system/viewdata"
	"go.uber.org/zap"
)

// Handler holds dependencies needed to serve the landing page.
type Handler struct {
	Log *zap.Logger
}

func NewHandler(logger *zap.Logger) *Handler {
	return &Handler{Log: logger}
}

// ServeRoot handles GET /. Signed-in users go straight to their
// reports; visitors get the landing page.
func (h *Handler) ServeRoot(w http.ResponseWriter, r *http.Request) {
	data := struct {
		viewdata.BaseVM
	}{
		BaseVM: viewdata.NewBaseVM(r, "Welcome", "/"),
	}

	if data.IsLoggedIn {
		http.Redirect(w, r, "/reports", http.StatusSeeOther)
		return
	}

	templates.Render(w, r, "home", data)
}
