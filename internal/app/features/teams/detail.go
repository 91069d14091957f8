// internal/app/features/teams/detail.go
package teams

import (
	"context"
	"net/http"

	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	uierrors "github.com/takimhub/takimhub/internal/app/features/errors"
	teamstore "github.com/takimhub/takimhub/internal/app/store/teams"
	"github.com/takimhub/takimhub/internal/app/system/authz"
	"github.com/takimhub/takimhub/internal/app/system/htmlsanitize"
	"github.com/takimhub/takimhub/internal/app/system/timeouts"
	"github.com/takimhub/takimhub/internal/app/system/viewdata"
	"github.com/takimhub/takimhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// ServeDetail renders one team with its members and projects.
// Only members can view a team. GET /teams/{id}
func (h *Handler) ServeDetail(w http.ResponseWriter, r *http.Request) {
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

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	t, err := h.teams.GetByID(ctx, teamID)
	if err != nil {
		uierrors.RenderNotFound(w, r, "Team not found.", "/teams")
		return
	}

	role, found, err := h.members.TeamRole(ctx, teamID, userID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "failed to fetch team role", err, "A database error occurred.", "/teams")
		return
	}
	if !found {
		uierrors.RenderForbidden(w, r, "You are not a member of this team.", "/teams")
		return
	}

	vm, err := h.detailVM(ctx, r, t, userID, role)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "failed to build team page", err, "A database error occurred.", "/teams")
		return
	}

	templates.Render(w, r, "team_detail", vm)
}

func (h *Handler) detailVM(ctx context.Context, r *http.Request, t *models.Team, viewerID primitive.ObjectID, viewerRole models.TeamRole) (detailVM, error) {
	mships, err := h.members.ListTeamMembers(ctx, t.ID)
	if err != nil {
		return detailVM{}, err
	}

	ids := make([]primitive.ObjectID, 0, len(mships))
	for _, m := range mships {
		ids = append(ids, m.UserID)
	}
	people, err := h.profiles.ListByIDs(ctx, ids)
	if err != nil {
		return detailVM{}, err
	}

	canManage := viewerRole == models.TeamOwner || viewerRole == models.TeamAdmin

	vm := detailVM{
		BaseVM:    viewdata.NewBaseVM(r, t.Name, "/teams"),
		ID:        t.ID.Hex(),
		Name:      t.Name,
		Slug:      t.Slug,
		Role:      viewerRole,
		CanManage: canManage,
		IsOwner:   viewerRole == models.TeamOwner,
	}

	for _, m := range mships {
		row := memberRow{
			UserID: m.UserID.Hex(),
			Role:   m.Role,
			// Owners cannot be removed from this page; ownership is
			// resolved by the membership store's last-owner rule.
			CanRemove: canManage && m.UserID != viewerID && m.Role != models.TeamOwner,
		}
		if p, ok := people[m.UserID]; ok {
			row.Name = p.FullName
			row.Email = p.Email
		}
		vm.Members = append(vm.Members, row)
	}

	projects, err := h.projects.ListByTeam(ctx, t.ID)
	if err != nil {
		return detailVM{}, err
	}
	for _, p := range projects {
		vm.Projects = append(vm.Projects, projectRow{
			ID:     p.ID.Hex(),
			Name:   p.Name,
			Status: p.Status,
		})
	}

	return vm, nil
}

// HandleRename renames a team. Owners and admins only.
// POST /teams/{id}/rename
func (h *Handler) HandleRename(w http.ResponseWriter, r *http.Request) {
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

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	role, found, err := h.members.TeamRole(ctx, teamID, userID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "failed to fetch team role", err, "A database error occurred.", "/teams")
		return
	}
	if !found || (role != models.TeamOwner && role != models.TeamAdmin) {
		uierrors.RenderForbidden(w, r, "Only team owners and admins can rename a team.", "/teams/"+teamID.Hex())
		return
	}

	name := htmlsanitize.StripAll(r.FormValue("name"))
	if err := h.teams.Rename(ctx, teamID, name); err != nil {
		if err == teamstore.ErrDuplicateSlug {
			uierrors.RenderBadRequest(w, r, "A team with this name already exists.", "/teams/"+teamID.Hex())
			return
		}
		h.ErrLog.LogBadRequest(w, r, "team rename failed", err, "Could not rename the team.", "/teams/"+teamID.Hex())
		return
	}

	http.Redirect(w, r, "/teams/"+teamID.Hex(), http.StatusSeeOther)
}

// HandleDelete deletes a team. Owners only, and only once the team has
// no projects, reports, or learning items left.
// POST /teams/{id}/delete
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
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

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	role, found, err := h.members.TeamRole(ctx, teamID, userID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "failed to fetch team role", err, "A database error occurred.", "/teams")
		return
	}
	if !found || role != models.TeamOwner {
		uierrors.RenderForbidden(w, r, "Only team owners can delete a team.", "/teams/"+teamID.Hex())
		return
	}

	nProjects, err := h.projects.CountByTeam(ctx, teamID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "failed to count team projects", err, "A database error occurred.", "/teams")
		return
	}
	nReports, err := h.reports.CountByScope(ctx, models.ScopeTeam, teamID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "failed to count team reports", err, "A database error occurred.", "/teams")
		return
	}
	nLearnings, err := h.learnings.CountByTeam(ctx, teamID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "failed to count team learnings", err, "A database error occurred.", "/teams")
		return
	}
	if nProjects > 0 || nReports > 0 || nLearnings > 0 {
		uierrors.RenderForbidden(w, r,
			"This team still has projects, reports, or learning items. Remove them first.",
			"/teams/"+teamID.Hex())
		return
	}

	if err := h.teams.Delete(ctx, teamID); err != nil {
		if err == mongo.ErrNoDocuments {
			http.Redirect(w, r, "/teams", http.StatusSeeOther)
			return
		}
		h.ErrLog.LogServerError(w, r, "team delete failed", err, "Could not delete the team.", "/teams")
		return
	}
	if _, err := h.members.RemoveAllForTeam(ctx, teamID); err != nil {
		h.Log.Error("failed to clear memberships of deleted team",
			zap.String("team_id", teamID.Hex()),
			zap.Error(err))
	}

	http.Redirect(w, r, "/teams", http.StatusSeeOther)
}

func teamIDParam(r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		return primitive.NilObjectID, false
	}
	return id, true
}
