// internal/app/features/learn/complete.go
package learn

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	uierrors "github.com/takimhub/takimhub/internal/app/features/errors"
	"github.com/takimhub/takimhub/internal/app/system/authz"
	"github.com/takimhub/takimhub/internal/app/system/timeouts"
	"github.com/takimhub/takimhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// HandleComplete marks a learning item done for the viewer. XP is
// credited exactly once; repeating the action is harmless.
// POST /learn/{id}/complete
func (h *Handler) HandleComplete(w http.ResponseWriter, r *http.Request) {
	_, userID, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}
	learningID, ok := learningIDParam(r)
	if !ok {
		uierrors.RenderBadRequest(w, r, "Invalid learning ID.", "/learn")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	l, err := h.learnings.GetByID(ctx, learningID)
	if err != nil {
		uierrors.RenderNotFound(w, r, "Learning item not found.", "/learn")
		return
	}
	if !l.IsPublished || l.ScopeID == nil {
		uierrors.RenderForbidden(w, r, "This item is not available.", "/learn")
		return
	}

	_, found, err := h.members.TeamRole(ctx, *l.ScopeID, userID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "failed to fetch team role", err, "A database error occurred.", "/learn")
		return
	}
	if !found {
		uierrors.RenderForbidden(w, r, "Only team members can complete this item.", "/learn")
		return
	}

	credited, err := h.progress.Complete(ctx, userID, learningID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "failed to record completion", err, "Could not record your progress.", "/learn")
		return
	}
	if credited && l.XP > 0 {
		totalXP, level, err := h.profiles.AddXP(ctx, userID, l.XP)
		if err != nil {
			// The completion stands; XP reconciliation can follow later.
			h.Log.Error("failed to credit XP for completion",
				zap.String("learning_id", learningID.Hex()),
				zap.String("user_id", userID.Hex()),
				zap.Error(err))
		} else {
			h.Log.Info("learning completed",
				zap.String("learning_id", learningID.Hex()),
				zap.Int("xp_awarded", l.XP),
				zap.Int("total_xp", totalXP),
				zap.Int("level", level))
		}
	}

	http.Redirect(w, r, "/learn", http.StatusSeeOther)
}

// HandlePublish toggles an item's published flag. Team owners and
// admins only. POST /learn/{id}/publish
func (h *Handler) HandlePublish(w http.ResponseWriter, r *http.Request) {
	_, userID, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}
	learningID, ok := learningIDParam(r)
	if !ok {
		uierrors.RenderBadRequest(w, r, "Invalid learning ID.", "/learn")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	l, err := h.learnings.GetByID(ctx, learningID)
	if err != nil {
		uierrors.RenderNotFound(w, r, "Learning item not found.", "/learn")
		return
	}
	if l.ScopeID == nil {
		h.ErrLog.LogIntegrityViolation(w, r, "learning item without team", "/learn")
		return
	}

	role, found, err := h.members.TeamRole(ctx, *l.ScopeID, userID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "failed to fetch team role", err, "A database error occurred.", "/learn")
		return
	}
	if !found || (role != models.TeamOwner && role != models.TeamAdmin) {
		uierrors.RenderForbidden(w, r, "Only team owners and admins can publish learning items.", "/learn")
		return
	}

	if err := h.learnings.SetPublished(ctx, learningID, !l.IsPublished); err != nil {
		h.ErrLog.LogServerError(w, r, "failed to toggle publish flag", err, "Could not update the item.", "/learn")
		return
	}
	http.Redirect(w, r, "/learn", http.StatusSeeOther)
}

// HandleDelete removes a learning item through the lifecycle manager:
// uploader-only, storage removal best effort, record removal
// authoritative. POST /learn/{id}/delete
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	_, userID, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}
	learningID, ok := learningIDParam(r)
	if !ok {
		uierrors.RenderBadRequest(w, r, "Invalid learning ID.", "/learn")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	l, err := h.learnings.GetByID(ctx, learningID)
	if err == mongo.ErrNoDocuments {
		http.Redirect(w, r, "/learn", http.StatusSeeOther)
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "failed to fetch learning item", err, "A database error occurred.", "/learn")
		return
	}

	deleted, dec, err := h.uploads.Delete(ctx, userID, l.StoredFile, func(ctx context.Context) (int64, error) {
		return h.learnings.Delete(ctx, learningID)
	})
	if err != nil {
		h.ErrLog.LogServerError(w, r, "learning delete failed", err, "Failed to delete the item.", "/learn")
		return
	}
	if !dec.Allowed {
		if dec.Integrity() {
			h.ErrLog.LogIntegrityViolation(w, r, string(dec.Reason), "/learn")
			return
		}
		uierrors.RenderForbidden(w, r, dec.Message(), "/learn")
		return
	}

	if deleted {
		h.Log.Info("learning item deleted", zap.String("learning_id", learningID.Hex()))
	}
	http.Redirect(w, r, "/learn", http.StatusSeeOther)
}

func learningIDParam(r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		return primitive.NilObjectID, false
	}
	return id, true
}
