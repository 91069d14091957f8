// internal/app/features/reports/delete.go
package reports

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	uierrors "github.com/takimhub/takimhub/internal/app/features/errors"
	"github.com/takimhub/takimhub/internal/app/system/authz"
	"github.com/takimhub/takimhub/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// HandleDelete removes a report through the lifecycle manager:
// uploader-only, storage removal best effort, record removal
// authoritative. Deleting an already-deleted report lands back on the
// listing without an error.
// POST /reports/{id}/delete
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	_, userID, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}

	oid, err := primitiveIDParam(r, "id")
	if err != nil {
		uierrors.RenderBadRequest(w, r, "Invalid report ID.", "/reports")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	rep, err := h.reports.GetByID(ctx, oid)
	if err == mongo.ErrNoDocuments {
		// Already gone; treat a repeated delete as success.
		http.Redirect(w, r, "/reports", http.StatusSeeOther)
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "failed to fetch report", err, "A database error occurred.", "/reports")
		return
	}

	deleted, dec, err := h.uploads.Delete(ctx, userID, rep.StoredFile, func(ctx context.Context) (int64, error) {
		return h.reports.Delete(ctx, oid)
	})
	if err != nil {
		h.ErrLog.LogServerError(w, r, "report delete failed", err, "Failed to delete report.", "/reports")
		return
	}
	if !dec.Allowed {
		if dec.Integrity() {
			h.ErrLog.LogIntegrityViolation(w, r, string(dec.Reason), "/reports")
			return
		}
		uierrors.RenderForbidden(w, r, dec.Message(), "/reports")
		return
	}

	if deleted {
		h.Log.Info("report deleted", zap.String("report_id", oid.Hex()))
	}
	http.Redirect(w, r, "/reports", http.StatusSeeOther)
}

// primitiveIDParam parses the {id} chi route parameter.
func primitiveIDParam(r *http.Request, name string) (primitive.ObjectID, error) {
	return primitive.ObjectIDFromHex(chi.URLParam(r, name))
}
