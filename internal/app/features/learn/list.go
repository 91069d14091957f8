// internal/app/features/learn/list.go
package learn

import (
	"context"
	"net/http"

	"github.com/dalemusser/waffle/pantry/templates"
	uierrors "github.com/takimhub/takimhub/internal/app/features/errors"
	"github.com/takimhub/takimhub/internal/app/system/authz"
	"github.com/takimhub/takimhub/internal/app/system/timeouts"
	"github.com/takimhub/takimhub/internal/app/system/viewdata"
	"github.com/takimhub/takimhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// ServeList renders the published learning items of the viewer's
// teams, marking the ones already completed, plus unpublished drafts
// for teams the viewer administers. GET /learn
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	_, userID, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	teamIDs, err := h.members.TeamIDsFor(ctx, userID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "failed to fetch team memberships", err, "A database error occurred.", "/")
		return
	}
	adminIDs, err := h.members.TeamIDsFor(ctx, userID, models.TeamOwner, models.TeamAdmin)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "failed to fetch team roles", err, "A database error occurred.", "/")
		return
	}
	adminSet := make(map[primitive.ObjectID]bool, len(adminIDs))
	for _, id := range adminIDs {
		adminSet[id] = true
	}

	items, err := h.learnings.ListByTeams(ctx, teamIDs)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "failed to fetch learning items", err, "A database error occurred.", "/")
		return
	}
	drafts, err := h.learnings.ListDraftsByTeams(ctx, adminIDs)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "failed to fetch learning drafts", err, "A database error occurred.", "/")
		return
	}

	done, err := h.progress.CompletedSet(ctx, userID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "failed to fetch completion set", err, "A database error occurred.", "/")
		return
	}

	teamNames, err := h.teamNames(ctx, teamIDs)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "failed to fetch team names", err, "A database error occurred.", "/")
		return
	}

	vm := listVM{BaseVM: viewdata.NewBaseVM(r, "Learn", "/")}

	if p, err := h.profiles.GetByID(ctx, userID); err == nil {
		vm.TotalXP = p.TotalXP
		vm.Level = p.Level
	} else {
		h.Log.Warn("failed to load viewer profile for learn page", zap.Error(err))
	}

	for _, l := range items {
		vm.Rows = append(vm.Rows, h.row(l, teamNames, done, adminSet))
	}
	for _, l := range drafts {
		vm.Drafts = append(vm.Drafts, h.row(l, teamNames, done, adminSet))
	}

	templates.Render(w, r, "learn_list", vm)
}

func (h *Handler) row(l models.Learning, teamNames map[primitive.ObjectID]string, done map[primitive.ObjectID]bool, adminSet map[primitive.ObjectID]bool) learningRow {
	row := learningRow{
		ID:          l.ID.Hex(),
		Title:       l.Title,
		Category:    l.Category,
		XP:          l.XP,
		ContentType: l.ContentType,
		ContentURL:  l.ContentURL,
		Completed:   done[l.ID],
		Published:   l.IsPublished,
	}
	if l.ScopeID != nil {
		row.TeamName = teamNames[*l.ScopeID]
		row.CanManage = adminSet[*l.ScopeID]
	}
	return row
}

func (h *Handler) teamNames(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]string, error) {
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
