// internal/app/features/calendar/actions.go
package calendar

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	uierrors "github.com/takimhub/takimhub/internal/app/features/errors"
	"github.com/takimhub/takimhub/internal/app/system/authz"
	"github.com/takimhub/takimhub/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// HandleDelete removes an event. Only its creator may delete it; a
// repeated delete lands back on the calendar. POST /calendar/{id}/delete
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	_, userID, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		uierrors.RenderBadRequest(w, r, "Invalid event ID.", "/calendar")
		return
	}

	switch err := h.events.Delete(ctx, id, userID); err {
	case nil, mongo.ErrNoDocuments:
		// A missing row means the event is gone or belongs to someone
		// else; either way there is nothing the viewer can delete.
	default:
		h.ErrLog.LogServerError(w, r, "event delete failed", err, "Could not delete the event.", "/calendar")
		return
	}
	http.Redirect(w, r, "/calendar", http.StatusSeeOther)
}
