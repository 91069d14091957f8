// internal/app/features/projects/list.go
package projects

import (
	"context"
	"net/http"

	"github.com/dalemusser/waffle/pantry/templates"
	uierrors "github.com/takimhub/takimhub/internal/app/features/errors"
	projectstore "github.com/takimhub/takimhub/internal/app/store/projects"
	"github.com/takimhub/takimhub/internal/app/system/authz"
	"github.com/takimhub/takimhub/internal/app/system/htmlsanitize"
	"github.com/takimhub/takimhub/internal/app/system/timeouts"
	"github.com/takimhub/takimhub/internal/app/system/viewdata"
	"github.com/takimhub/takimhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// ServeList renders the viewer's projects. GET /projects
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	_, userID, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	ids, err := h.members.ProjectIDsFor(ctx, userID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "failed to fetch project memberships", err, "A database error occurred.", "/")
		return
	}
	rows, err := h.projects.ListByIDs(ctx, ids)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "failed to fetch projects", err, "A database error occurred.", "/")
		return
	}

	teamNames, err := h.teamNamesFor(ctx, rows)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "failed to fetch team names", err, "A database error occurred.", "/")
		return
	}

	vm := listVM{BaseVM: viewdata.NewBaseVM(r, "Projects", "/")}
	for _, p := range rows {
		role, _, err := h.members.ProjectRole(ctx, p.ID, userID)
		if err != nil {
			h.ErrLog.LogServerError(w, r, "failed to fetch project role", err, "A database error occurred.", "/")
			return
		}
		row := projectRow{
			ID:       p.ID.Hex(),
			Name:     p.Name,
			Status:   p.Status,
			Priority: p.Priority,
			DueDate:  p.DueDate,
			Role:     role,
		}
		if p.TeamID != nil {
			row.TeamName = teamNames[*p.TeamID]
		}
		vm.Rows = append(vm.Rows, row)
	}

	templates.Render(w, r, "projects_list", vm)
}

func (h *Handler) teamNamesFor(ctx context.Context, rows []models.Project) (map[primitive.ObjectID]string, error) {
	seen := map[primitive.ObjectID]bool{}
	var ids []primitive.ObjectID
	for _, p := range rows {
		if p.TeamID != nil && !seen[*p.TeamID] {
			seen[*p.TeamID] = true
			ids = append(ids, *p.TeamID)
		}
	}
	teams, err := h.teams.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make(map[primitive.ObjectID]string, len(teams))
	for _, t := range teams {
		out[t.ID] = t.Name
	}
	return out, nil
}

// ServeNew renders the project creation form. GET /projects/new
func (h *Handler) ServeNew(w http.ResponseWriter, r *http.Request) {
	_, userID, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	vm, err := h.newFormVM(ctx, r, userID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "failed to build project form", err, "A database error occurred.", "/projects")
		return
	}
	templates.Render(w, r, "project_new", vm)
}

func (h *Handler) newFormVM(ctx context.Context, r *http.Request, userID primitive.ObjectID) (newVM, error) {
	vm := newVM{BaseVM: viewdata.NewBaseVM(r, "New project", "/projects")}

	// A project may be attached to any team the viewer belongs to.
	ids, err := h.members.TeamIDsFor(ctx, userID)
	if err != nil {
		return newVM{}, err
	}
	teams, err := h.teams.ListByIDs(ctx, ids)
	if err != nil {
		return newVM{}, err
	}
	for _, t := range teams {
		vm.Teams = append(vm.Teams, teamOption{ID: t.ID.Hex(), Name: t.Name})
	}
	return vm, nil
}

// HandleCreate creates a project and grants the creator an owner
// membership. POST /projects
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	_, userID, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/projects")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	p := models.Project{
		Name:        htmlsanitize.StripAll(r.FormValue("name")),
		Description: htmlsanitize.StripAll(r.FormValue("description")),
		Objective:   htmlsanitize.StripAll(r.FormValue("objective")),
		Priority:    r.FormValue("priority"),
		OwnerID:     userID,
	}

	if teamHex := r.FormValue("team_id"); teamHex != "" {
		teamID, err := primitive.ObjectIDFromHex(teamHex)
		if err != nil {
			uierrors.RenderBadRequest(w, r, "Invalid team.", "/projects/new")
			return
		}
		_, found, err := h.members.TeamRole(ctx, teamID, userID)
		if err != nil {
			h.ErrLog.LogServerError(w, r, "failed to fetch team role", err, "A database error occurred.", "/projects/new")
			return
		}
		if !found {
			uierrors.RenderForbidden(w, r, "You can only attach projects to your own teams.", "/projects/new")
			return
		}
		p.TeamID = &teamID
	}

	created, err := h.projects.Create(ctx, p)
	if err == projectstore.ErrDuplicateSlug {
		vm, ferr := h.newFormVM(ctx, r, userID)
		if ferr != nil {
			h.ErrLog.LogServerError(w, r, "failed to build project form", ferr, "A database error occurred.", "/projects")
			return
		}
		vm.FormName = p.Name
		vm.Error = "A project with this name already exists."
		templates.Render(w, r, "project_new", vm)
		return
	}
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "project create failed", err, "Could not create the project.", "/projects/new")
		return
	}

	if err := h.members.AddProjectMember(ctx, created.ID, userID, models.ProjectOwner); err != nil {
		if derr := h.projects.Delete(ctx, created.ID); derr != nil {
			h.Log.Error("failed to roll back project after membership failure", zap.Error(derr))
		}
		h.ErrLog.LogServerError(w, r, "owner membership failed", err, "Could not create the project.", "/projects")
		return
	}

	http.Redirect(w, r, "/projects/"+created.ID.Hex(), http.StatusSeeOther)
}
