// internal/app/features/documents/download.go
package documents

import (
	"context"
	"net/http"
	"time"

	"github.com/dalemusser/waffle/pantry/storage"
	"github.com/go-chi/chi/v5"
	uierrors "github.com/takimhub/takimhub/internal/app/features/errors"
	"github.com/takimhub/takimhub/internal/app/policy/scopepolicy"
	"github.com/takimhub/takimhub/internal/app/system/authz"
	"github.com/takimhub/takimhub/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const downloadLinkTTL = 15 * time.Minute

// HandleDownload authorizes a read of the document and serves the
// file, directly from disk for local storage or via a time-bounded
// signed URL for object storage.
// GET /documents/{id}/download
func (h *Handler) HandleDownload(w http.ResponseWriter, r *http.Request) {
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

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	doc, err := h.documents.GetByID(ctx, oid)
	if err != nil {
		uierrors.RenderNotFound(w, r, "Document not found.", "/projects")
		return
	}
	back := "/documents?project=" + doc.ScopeID.Hex()

	dec, err := scopepolicy.Authorize(ctx, h.members, userID, scopepolicy.Ref(doc.StoredFile), scopepolicy.OpRead)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "authorization lookup failed", err, "A database error occurred.", "/projects")
		return
	}
	if !dec.Allowed {
		if dec.Integrity() {
			h.ErrLog.LogIntegrityViolation(w, r, string(dec.Reason), "/projects")
			return
		}
		uierrors.RenderForbidden(w, r, dec.Message(), "/projects")
		return
	}

	filename := doc.FileName
	if filename == "" {
		filename = "download"
	}
	contentDisposition := "attachment; filename=\"" + filename + "\""

	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.Header().Set("Pragma", "no-cache")
	w.Header().Set("Expires", "0")

	if localStorage, ok := h.Storage.(*storage.Local); ok {
		fullPath, err := localStorage.GetFullPath(doc.StoragePath)
		if err != nil {
			h.Log.Error("error getting file path",
				zap.Error(err),
				zap.String("path", doc.StoragePath))
			uierrors.RenderServerError(w, r, "Failed to locate file.", back)
			return
		}
		w.Header().Set("Content-Disposition", contentDisposition)
		http.ServeFile(w, r, fullPath)
		return
	}

	signedURL, err := h.Storage.PresignedURL(ctx, doc.StoragePath, &storage.PresignOptions{
		Expires:            downloadLinkTTL,
		ContentDisposition: contentDisposition,
	})
	if err != nil {
		h.Log.Error("error generating signed URL",
			zap.Error(err),
			zap.String("path", doc.StoragePath))
		uierrors.RenderServerError(w, r, "Failed to generate download link.", back)
		return
	}
	http.Redirect(w, r, signedURL, http.StatusSeeOther)
}
