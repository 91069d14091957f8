// internal/app/features/teams/members.go
package teams

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	uierrors "github.com/takimhub/takimhub/internal/app/features/errors"
	memberships "github.com/takimhub/takimhub/internal/app/store/memberships"
	"github.com/takimhub/takimhub/internal/app/system/authz"
	"github.com/takimhub/takimhub/internal/app/system/timeouts"
	"github.com/takimhub/takimhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// HandleAddMember adds a profile to the team by email. Owners and
// admins only; admins cannot grant the owner role.
// POST /teams/{id}/members
func (h *Handler) HandleAddMember(w http.ResponseWriter, r *http.Request) {
	_, userID, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}
	teamID, ok := teamIDParam(r)
	if !ok {
		uierrors.RenderBadRequest(w, r, "Invalid team ID.", "/teams")
		return
	}
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/teams")
		return
	}
	back := "/teams/" + teamID.Hex()

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	actorRole, found, err := h.members.TeamRole(ctx, teamID, userID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "failed to fetch team role", err, "A database error occurred.", back)
		return
	}
	if !found || (actorRole != models.TeamOwner && actorRole != models.TeamAdmin) {
		uierrors.RenderForbidden(w, r, "Only team owners and admins can add members.", back)
		return
	}

	role := models.TeamRole(r.FormValue("role"))
	if !role.Valid() {
		uierrors.RenderBadRequest(w, r, "Unknown team role.", back)
		return
	}
	if role == models.TeamOwner && actorRole != models.TeamOwner {
		uierrors.RenderForbidden(w, r, "Only an owner can grant ownership.", back)
		return
	}

	p, err := h.profiles.GetByEmail(ctx, r.FormValue("email"))
	if err == mongo.ErrNoDocuments {
		uierrors.RenderNotFound(w, r, "No account with that email.", back)
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "failed to look up profile", err, "A database error occurred.", back)
		return
	}

	switch err := h.members.AddTeamMember(ctx, teamID, p.ID, role); err {
	case nil:
	case memberships.ErrDuplicateMembership:
		uierrors.RenderBadRequest(w, r, "That person is already a member of this team.", back)
		return
	default:
		h.ErrLog.LogServerError(w, r, "failed to add team member", err, "Could not add the member.", back)
		return
	}

	http.Redirect(w, r, back, http.StatusSeeOther)
}

// HandleRemoveMember removes a member from the team. Owners and admins
// only; the last owner is protected by the membership store.
// POST /teams/{id}/members/{userID}/remove
func (h *Handler) HandleRemoveMember(w http.ResponseWriter, r *http.Request) {
	_, actorID, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}
	teamID, ok := teamIDParam(r)
	if !ok {
		uierrors.RenderBadRequest(w, r, "Invalid team ID.", "/teams")
		return
	}
	targetID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "userID"))
	if err != nil {
		uierrors.RenderBadRequest(w, r, "Invalid member ID.", "/teams/"+teamID.Hex())
		return
	}
	back := "/teams/" + teamID.Hex()

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	actorRole, found, err := h.members.TeamRole(ctx, teamID, actorID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "failed to fetch team role", err, "A database error occurred.", back)
		return
	}
	// Anyone may leave a team; removing someone else needs owner or admin.
	if !found {
		uierrors.RenderForbidden(w, r, "You are not a member of this team.", "/teams")
		return
	}
	if targetID != actorID && actorRole != models.TeamOwner && actorRole != models.TeamAdmin {
		uierrors.RenderForbidden(w, r, "Only team owners and admins can remove members.", back)
		return
	}

	switch err := h.members.RemoveTeamMember(ctx, teamID, targetID); err {
	case nil:
	case memberships.ErrLastOwner:
		uierrors.RenderForbidden(w, r, "A team must keep at least one owner.", back)
		return
	case mongo.ErrNoDocuments:
		// Already gone; treat as done.
	default:
		h.ErrLog.LogServerError(w, r, "failed to remove team member", err, "Could not remove the member.", back)
		return
	}

	if targetID == actorID {
		http.Redirect(w, r, "/teams", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, back, http.StatusSeeOther)
}
