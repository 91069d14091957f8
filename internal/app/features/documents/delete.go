// internal/app/features/documents/delete.go
package documents

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

// HandleDelete removes a document through the lifecycle manager:
// uploader-only, storage removal best effort, record removal
// authoritative. A repeated delete lands back on the listing without
// an error.
// POST /documents/{id}/delete
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	_, userID, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}

	oid, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		uierrors.RenderBadRequest(w, r, "Invalid document ID.", "/projects")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	doc, err := h.documents.GetByID(ctx, oid)
	if err == mongo.ErrNoDocuments {
		http.Redirect(w, r, "/projects", http.StatusSeeOther)
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "failed to fetch document", err, "A database error occurred.", "/projects")
		return
	}
	back := "/documents?project=" + doc.ScopeID.Hex()

	deleted, dec, err := h.uploads.Delete(ctx, userID, doc.StoredFile, func(ctx context.Context) (int64, error) {
		return h.documents.Delete(ctx, oid)
	})
	if err != nil {
		h.ErrLog.LogServerError(w, r, "document delete failed", err, "Failed to delete document.", back)
		return
	}
	if !dec.Allowed {
		if dec.Integrity() {
			h.ErrLog.LogIntegrityViolation(w, r, string(dec.Reason), back)
			return
		}
		uierrors.RenderForbidden(w, r, dec.Message(), back)
		return
	}

	if deleted {
		h.Log.Info("document deleted", zap.String("document_id", oid.Hex()))
	}
	http.Redirect(w, r, back, http.StatusSeeOther)
}
