// internal/app/features/reports/list.go
package reports

import (
	"context"
	"net/http"

	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	uierrors "github.com/takimhub/takimhub/internal/app/features/errors"
	reportstore "github.com/takimhub/takimhub/internal/app/store/reports"
	"github.com/takimhub/takimhub/internal/app/system/authz"
	"github.com/takimhub/takimhub/internal/app/system/paging"
	"github.com/takimhub/takimhub/internal/app/system/timeouts"
	"github.com/takimhub/takimhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ServeList renders the report listing for one scope.
// GET /reports?scope=personal|team|project&q=...
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	name, userID, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}

	scope := models.Scope(query.Get(r, "scope"))
	if scope == "" {
		scope = models.ScopePersonal
	}
	if !scope.Valid() {
		uierrors.RenderBadRequest(w, r, "Unknown report scope.", "/reports")
		return
	}
	search := query.Get(r, "q")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	filter := reportstore.ListFilter{Scope: scope, Search: search}
	canUpload := false

	switch scope {
	case models.ScopePersonal:
		filter.OwnerID = userID
		canUpload = true
	case models.ScopeTeam:
		ids, err := h.members.TeamIDsFor(ctx, userID)
		if err != nil {
			h.ErrLog.LogServerError(w, r, "failed to fetch team memberships", err, "A database error occurred.", "/")
			return
		}
		filter.ScopeIDs = ids

		uploadable, err := h.members.TeamIDsFor(ctx, userID, models.TeamOwner, models.TeamAdmin)
		if err != nil {
			h.ErrLog.LogServerError(w, r, "failed to fetch team roles", err, "A database error occurred.", "/")
			return
		}
		canUpload = len(uploadable) > 0
	case models.ScopeProject:
		ids, err := h.members.ProjectIDsFor(ctx, userID)
		if err != nil {
			h.ErrLog.LogServerError(w, r, "failed to fetch project memberships", err, "A database error occurred.", "/")
			return
		}
		filter.ScopeIDs = ids

		uploadable, err := h.members.ProjectIDsFor(ctx, userID, models.ProjectOwner, models.ProjectManager)
		if err != nil {
			h.ErrLog.LogServerError(w, r, "failed to fetch project roles", err, "A database error occurred.", "/")
			return
		}
		canUpload = len(uploadable) > 0
	}

	rows, err := h.reports.List(ctx, filter, paging.LimitPlusOne())
	if err != nil {
		h.ErrLog.LogServerError(w, r, "failed to fetch reports", err, "A database error occurred.", "/")
		return
	}
	res := paging.TrimPage(&rows, "", "")

	vm := listVM{
		Title:      "Reports",
		IsLoggedIn: true,
		UserName:   name,
		Scope:      scope,
		Search:     search,
		Rows:       toRows(rows, userID),
		HasMore:    res.HasNext,
		CanUpload:  canUpload,
	}

	// HTMX live search swaps just the table.
	if r.Header.Get("HX-Request") == "true" {
		templates.Render(w, r, "reports_table", vm)
		return
	}
	templates.Render(w, r, "reports_list", vm)
}

func toRows(in []models.Report, viewer primitive.ObjectID) []reportRow {
	out := make([]reportRow, 0, len(in))
	for _, rep := range in {
		out = append(out, reportRow{
			ID:        rep.ID.Hex(),
			Title:     rep.Title,
			FileName:  rep.FileName,
			FileSize:  rep.FileSize,
			Tags:      rep.Tags,
			CreatedAt: rep.CreatedAt,
			CanDelete: rep.OwnerID == viewer,
		})
	}
	return out
}
