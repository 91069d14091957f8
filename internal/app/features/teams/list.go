// internal/app/features/teams/list.go
package teams

import (
	"context"
	"net/http"

	"github.com/dalemusser/waffle/pantry/templates"
	uierrors "github.com/takimhub/takimhub/internal/app/features/errors"
	teamstore "github.com/takimhub/takimhub/internal/app/store/teams"
	"github.com/takimhub/takimhub/internal/app/system/authz"
	"github.com/takimhub/takimhub/internal/app/system/htmlsanitize"
	"github.com/takimhub/takimhub/internal/app/system/timeouts"
	"github.com/takimhub/takimhub/internal/app/system/viewdata"
	"github.com/takimhub/takimhub/internal/domain/models"
	"go.uber.org/zap"
)

// ServeList renders the viewer's teams. GET /teams
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	_, userID, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	ids, err := h.members.TeamIDsFor(ctx, userID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "failed to fetch team memberships", err, "A database error occurred.", "/")
		return
	}
	rows, err := h.teams.ListByIDs(ctx, ids)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "failed to fetch teams", err, "A database error occurred.", "/")
		return
	}

	vm := listVM{BaseVM: viewdata.NewBaseVM(r, "Teams", "/")}
	for _, t := range rows {
		role, _, err := h.members.TeamRole(ctx, t.ID, userID)
		if err != nil {
			h.ErrLog.LogServerError(w, r, "failed to fetch team role", err, "A database error occurred.", "/")
			return
		}
		vm.Rows = append(vm.Rows, teamRow{
			ID:        t.ID.Hex(),
			Name:      t.Name,
			Slug:      t.Slug,
			Role:      role,
			CreatedAt: t.CreatedAt,
		})
	}

	templates.Render(w, r, "teams_list", vm)
}

// ServeNew renders the team creation form. GET /teams/new
func (h *Handler) ServeNew(w http.ResponseWriter, r *http.Request) {
	if _, ok := authz.UserID(r); !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}
	templates.Render(w, r, "team_new", newVM{BaseVM: viewdata.NewBaseVM(r, "New team", "/teams")})
}

// HandleCreate creates a team and grants the creator an owner
// membership. POST /teams
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	_, userID, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/teams")
		return
	}

	name := htmlsanitize.StripAll(r.FormValue("name"))

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	t, err := h.teams.Create(ctx, name, userID)
	if err == teamstore.ErrDuplicateSlug {
		vm := newVM{
			BaseVM:   viewdata.NewBaseVM(r, "New team", "/teams"),
			FormName: name,
			Error:    "A team with this name already exists.",
		}
		templates.Render(w, r, "team_new", vm)
		return
	}
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "team create failed", err, "Could not create the team.", "/teams/new")
		return
	}

	if err := h.members.AddTeamMember(ctx, t.ID, userID, models.TeamOwner); err != nil {
		if derr := h.teams.Delete(ctx, t.ID); derr != nil {
			h.Log.Error("failed to roll back team after membership failure", zap.Error(derr))
		}
		h.ErrLog.LogServerError(w, r, "owner membership failed", err, "Could not create the team.", "/teams")
		return
	}

	http.Redirect(w, r, "/teams/"+t.ID.Hex(), http.StatusSeeOther)
}
