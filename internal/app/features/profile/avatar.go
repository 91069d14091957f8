// internal/app/features/profile/avatar.go
package profile

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/dalemusser/waffle/pantry/storage"
	uierrors "github.com/takimhub/takimhub/internal/app/features/errors"
	"github.com/takimhub/takimhub/internal/app/system/authz"
	"github.com/takimhub/takimhub/internal/app/system/timeouts"
	"github.com/takimhub/takimhub/internal/app/uploads"
	"go.uber.org/zap"
)

// maxAvatarBytes caps avatar uploads at 5MB.
const maxAvatarBytes = 5 << 20

// HandleAvatarUpload stores an uploaded avatar image and points the
// profile at it. The previous uploaded avatar object, if any, is
// removed best effort; the profile update is what counts.
// POST /profile/avatar
func (h *Handler) HandleAvatarUpload(w http.ResponseWriter, r *http.Request) {
	_, uid, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}

	if err := r.ParseMultipartForm(maxAvatarBytes); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/profile")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	p, err := h.profiles.GetByID(ctx, uid)
	if err != nil {
		uierrors.RenderNotFound(w, r, "Profile not found.", "/")
		return
	}

	file, header, err := r.FormFile("avatar")
	if err != nil || header == nil || header.Size == 0 {
		h.renderWithError(w, r, p, "Choose an image to upload.")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		h.renderWithError(w, r, p, "Avatar must be an image file.")
		return
	}

	path := uploads.AvatarPath(uid, header.Filename, time.Now().UTC())
	if err := h.Storage.Put(ctx, path, file, &storage.PutOptions{ContentType: contentType}); err != nil {
		h.ErrLog.LogServerError(w, r, "avatar storage write failed", err, "Could not save your avatar.", "/profile")
		return
	}

	if err := h.profiles.SetAvatar(ctx, uid, h.Storage.URL(path), path); err != nil {
		// Compensate so no object outlives a failed profile update.
		if delErr := h.Storage.Delete(ctx, path); delErr != nil {
			h.Log.Error("compensating avatar delete failed; object orphaned",
				zap.String("path", path),
				zap.Error(delErr))
		}
		h.ErrLog.LogServerError(w, r, "avatar update failed", err, "Could not save your avatar.", "/profile")
		return
	}

	if p.AvatarPath != "" && p.AvatarPath != path {
		if err := h.Storage.Delete(ctx, p.AvatarPath); err != nil {
			h.Log.Warn("previous avatar removal failed",
				zap.String("path", p.AvatarPath),
				zap.Error(err))
		}
	}

	http.Redirect(w, r, "/profile?success=avatar", http.StatusSeeOther)
}
