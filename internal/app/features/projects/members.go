// internal/app/features/projects/members.go
package projects

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

// HandleAddMember adds a profile to the project by email. Owners and
// managers only; managers cannot grant ownership.
// POST /projects/{id}/members
func (h *Handler) HandleAddMember(w http.ResponseWriter, r *http.Request) {
	_, userID, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}
	projectID, ok := projectIDParam(r)
	if !ok {
		uierrors.RenderBadRequest(w, r, "Invalid project ID.", "/projects")
		return
	}
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/projects")
		return
	}
	back := "/projects/" + projectID.Hex()

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	actorRole, found, err := h.members.ProjectRole(ctx, projectID, userID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "failed to fetch project role", err, "A database error occurred.", back)
		return
	}
	if !found || (actorRole != models.ProjectOwner && actorRole != models.ProjectManager) {
		uierrors.RenderForbidden(w, r, "Only project owners and managers can add members.", back)
		return
	}

	role := models.ProjectRole(r.FormValue("role"))
	if !role.Valid() {
		uierrors.RenderBadRequest(w, r, "Unknown project role.", back)
		return
	}
	if role == models.ProjectOwner && actorRole != models.ProjectOwner {
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

	switch err := h.members.AddProjectMember(ctx, projectID, p.ID, role); err {
	case nil:
	case memberships.ErrDuplicateMembership:
		uierrors.RenderBadRequest(w, r, "That person is already a member of this project.", back)
		return
	default:
		h.ErrLog.LogServerError(w, r, "failed to add project member", err, "Could not add the member.", back)
		return
	}

	http.Redirect(w, r, back, http.StatusSeeOther)
}

// HandleRemoveMember removes a member from the project. Anyone may
// leave; removing someone else needs owner or manager.
// POST /projects/{id}/members/{userID}/remove
func (h *Handler) HandleRemoveMember(w http.ResponseWriter, r *http.Request) {
	_, actorID, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}
	projectID, ok := projectIDParam(r)
	if !ok {
		uierrors.RenderBadRequest(w, r, "Invalid project ID.", "/projects")
		return
	}
	targetID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "userID"))
	if err != nil {
		uierrors.RenderBadRequest(w, r, "Invalid member ID.", "/projects/"+projectID.Hex())
		return
	}
	back := "/projects/" + projectID.Hex()

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	actorRole, found, err := h.members.ProjectRole(ctx, projectID, actorID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "failed to fetch project role", err, "A database error occurred.", back)
		return
	}
	if !found {
		uierrors.RenderForbidden(w, r, "You are not a member of this project.", "/projects")
		return
	}
	if targetID != actorID && actorRole != models.ProjectOwner && actorRole != models.ProjectManager {
		uierrors.RenderForbidden(w, r, "Only project owners and managers can remove members.", back)
		return
	}

	switch err := h.members.RemoveProjectMember(ctx, projectID, targetID); err {
	case nil:
	case memberships.ErrLastOwner:
		uierrors.RenderForbidden(w, r, "A project must keep at least one owner.", back)
		return
	case mongo.ErrNoDocuments:
		// Already gone; treat as done.
	default:
		h.ErrLog.LogServerError(w, r, "failed to remove project member", err, "Could not remove the member.", back)
		return
	}

	if targetID == actorID {
		http.Redirect(w, r, "/projects", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, back, http.StatusSeeOther)
}
