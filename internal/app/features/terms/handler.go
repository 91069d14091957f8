// internal/app/features/terms/handler.go
package terms

import (
	"net/http"

	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/takimhub/takimhub/internal/app/system/viewdata"
	"go.uber.org/zap"
)

type pageData struct {
	viewdata.BaseVM
}

type Handler struct {
	Log *zap.Logger
}

func NewHandler(logger *zap.Logger) *Handler {
	return &Handler{Log: logger}
}

func (h *Handler) ServeTerms(w http.ResponseWriter, r *http.Request) {
	data := pageData{
		BaseVM: viewdata.NewBaseVM(r, "Terms of Service", "/"),
	}
	templates.Render(w, r, "terms", data)
}
