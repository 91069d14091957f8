// internal/app/features/projects/detail.go
package projects

import (
	"context"
	"net/http"
	"time"

	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	uierrors "github.com/takimhub/takimhub/internal/app/features/errors"
	projectstore "github.com/takimhub/takimhub/internal/app/store/projects"
	"github.com/takimhub/takimhub/internal/app/system/authz"
	"github.com/takimhub/takimhub/internal/app/system/htmlsanitize"
	"github.com/takimhub/takimhub/internal/app/system/timeouts"
	"github.com/takimhub/takimhub/internal/app/system/viewdata"
	"github.com/takimhub/takimhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// ServeDetail renders one project. Members only. GET /projects/{id}
func (h *Handler) ServeDetail(w http.ResponseWriter, r *http.Request) {
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

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	p, err := h.projects.GetByID(ctx, projectID)
	if err != nil {
		uierrors.RenderNotFound(w, r, "Project not found.", "/projects")
		return
	}

	role, found, err := h.members.ProjectRole(ctx, projectID, userID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "failed to fetch project role", err, "A database error occurred.", "/projects")
		return
	}
	if !found {
		uierrors.RenderForbidden(w, r, "You are not a member of this project.", "/projects")
		return
	}

	vm, err := h.detailVM(ctx, r, p, userID, role)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "failed to build project page", err, "A database error occurred.", "/projects")
		return
	}
	templates.Render(w, r, "project_detail", vm)
}

func (h *Handler) detailVM(ctx context.Context, r *http.Request, p *models.Project, viewerID primitive.ObjectID, viewerRole models.ProjectRole) (detailVM, error) {
	canManage := viewerRole == models.ProjectOwner || viewerRole == models.ProjectManager

	vm := detailVM{
		BaseVM:      viewdata.NewBaseVM(r, p.Name, "/projects"),
		ID:          p.ID.Hex(),
		Name:        p.Name,
		Description: p.Description,
		Objective:   p.Objective,
		Status:      p.Status,
		Priority:    p.Priority,
		StartDate:   p.StartDate,
		DueDate:     p.DueDate,
		CompletedAt: p.CompletedAt,
		Role:        viewerRole,
		CanManage:   canManage,
		IsOwner:     viewerRole == models.ProjectOwner,
		Statuses: []string{
			models.ProjectPlanning,
			models.ProjectInProgress,
			models.ProjectOnHold,
			models.ProjectCompleted,
			models.ProjectCancelled,
		},
	}

	if p.TeamID != nil {
		if t, err := h.teams.GetByID(ctx, *p.TeamID); err == nil {
			vm.TeamName = t.Name
		}
	}

	mships, err := h.members.ListProjectMembers(ctx, p.ID)
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
	for _, m := range mships {
		row := memberRow{
			UserID:    m.UserID.Hex(),
			Role:      m.Role,
			CanRemove: canManage && m.UserID != viewerID && m.Role != models.ProjectOwner,
		}
		if pr, ok := people[m.UserID]; ok {
			row.Name = pr.FullName
			row.Email = pr.Email
		}
		vm.Members = append(vm.Members, row)
	}

	return vm, nil
}

// HandleUpdate edits project fields. Owners and managers only.
// POST /projects/{id}
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
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

	role, found, err := h.members.ProjectRole(ctx, projectID, userID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "failed to fetch project role", err, "A database error occurred.", back)
		return
	}
	if !found || (role != models.ProjectOwner && role != models.ProjectManager) {
		uierrors.RenderForbidden(w, r, "Only project owners and managers can edit a project.", back)
		return
	}

	upd := projectstore.ProjectUpdate{
		Description: htmlsanitize.StripAll(r.FormValue("description")),
		Objective:   htmlsanitize.StripAll(r.FormValue("objective")),
		Status:      r.FormValue("status"),
		Priority:    r.FormValue("priority"),
		StartDate:   parseDate(r.FormValue("start_date")),
		DueDate:     parseDate(r.FormValue("due_date")),
	}
	if err := h.projects.Update(ctx, projectID, upd); err != nil {
		h.ErrLog.LogBadRequest(w, r, "project update failed", err, "Could not save the project.", back)
		return
	}

	http.Redirect(w, r, back, http.StatusSeeOther)
}

// HandleDelete deletes a project. Owners only, and only once the
// project has no reports or documents left.
// POST /projects/{id}/delete
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
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
	back := "/projects/" + projectID.Hex()

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	role, found, err := h.members.ProjectRole(ctx, projectID, userID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "failed to fetch project role", err, "A database error occurred.", "/projects")
		return
	}
	if !found || role != models.ProjectOwner {
		uierrors.RenderForbidden(w, r, "Only project owners can delete a project.", back)
		return
	}

	nReports, err := h.reports.CountByScope(ctx, models.ScopeProject, projectID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "failed to count project reports", err, "A database error occurred.", back)
		return
	}
	nDocs, err := h.documents.CountByProject(ctx, projectID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "failed to count project documents", err, "A database error occurred.", back)
		return
	}
	if nReports > 0 || nDocs > 0 {
		uierrors.RenderForbidden(w, r,
			"This project still has reports or documents. Remove them first.", back)
		return
	}

	if err := h.projects.Delete(ctx, projectID); err != nil {
		if err == mongo.ErrNoDocuments {
			http.Redirect(w, r, "/projects", http.StatusSeeOther)
			return
		}
		h.ErrLog.LogServerError(w, r, "project delete failed", err, "Could not delete the project.", "/projects")
		return
	}
	if _, err := h.members.RemoveAllForProject(ctx, projectID); err != nil {
		h.Log.Error("failed to clear memberships of deleted project",
			zap.String("project_id", projectID.Hex()),
			zap.Error(err))
	}

	http.Redirect(w, r, "/projects", http.StatusSeeOther)
}

func projectIDParam(r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		return primitive.NilObjectID, false
	}
	return id, true
}

func parseDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil
	}
	return &t
}
