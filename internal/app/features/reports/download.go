// internal/app/features/reports/download.go
package reports

import (
	"context"
	"net/http"
	"time"

	"github.com/dalemusser/waffle/pantry/storage"
	uierrors "github.com/takimhub/takimhub/internal/app/features/errors"
	"github.com/takimhub/takimhub/internal/app/policy/scopepolicy"
	"github.com/takimhub/takimhub/internal/app/system/authz"
	"github.com/takimhub/takimhub/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// downloadLinkTTL bounds how long an issued download link stays valid.
// Access is re-checked on every request for a fresh link, so revoking
// a membership takes effect within this window.
const downloadLinkTTL = 15 * time.Minute

// HandleDownload authorizes a read of the report and serves the file:
// directly from disk for local storage, via a time-bounded signed URL
// for object storage.
// GET /reports/{id}/download
func (h *Handler) HandleDownload(w http.ResponseWriter, r *http.Request) {
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

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	rep, err := h.reports.GetByID(ctx, oid)
	if err == mongo.ErrNoDocuments {
		uierrors.RenderNotFound(w, r, "Report not found.", "/reports")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "failed to fetch report", err, "A database error occurred.", "/reports")
		return
	}

	dec, err := scopepolicy.Authorize(ctx, h.members, userID, scopepolicy.Ref(rep.StoredFile), scopepolicy.OpRead)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "authorization lookup failed", err, "A database error occurred.", "/reports")
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

	filename := rep.FileName
	if filename == "" {
		filename = "download"
	}
	contentDisposition := "attachment; filename=\"" + filename + "\""

	// Downloads must never be cached; files can be replaced.
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.Header().Set("Pragma", "no-cache")
	w.Header().Set("Expires", "0")

	if localStorage, ok := h.Storage.(*storage.Local); ok {
		fullPath, err := localStorage.GetFullPath(rep.StoragePath)
		if err != nil {
			h.Log.Error("error getting file path",
				zap.Error(err),
				zap.String("path", rep.StoragePath))
			uierrors.RenderServerError(w, r, "Failed to locate file.", "/reports")
			return
		}
		w.Header().Set("Content-Disposition", contentDisposition)
		http.ServeFile(w, r, fullPath)
		return
	}

	signedURL, err := h.Storage.PresignedURL(ctx, rep.StoragePath, &storage.PresignOptions{
		Expires:            downloadLinkTTL,
		ContentDisposition: contentDisposition,
	})
	if err != nil {
		h.Log.Error("error generating signed URL",
			zap.Error(err),
			zap.String("path", rep.StoragePath))
		uierrors.RenderServerError(w, r, "Failed to generate download link.", "/reports")
		return
	}
	http.Redirect(w, r, signedURL, http.StatusSeeOther)
}
