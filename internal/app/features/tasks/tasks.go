// internal/app/features/tasks/tasks.go
package tasks

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	uierrors "github.com/takimhub/takimhub/internal/app/features/errors"
	"github.com/takimhub/takimhub/internal/app/system/authz"
	"github.com/takimhub/takimhub/internal/app/system/htmlsanitize"
	"github.com/takimhub/takimhub/internal/app/system/timeouts"
	"github.com/takimhub/takimhub/internal/app/system/viewdata"
	"github.com/takimhub/takimhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type taskRow struct {
	ID           string
	Title        string
	Description  string
	Status       string
	Priority     string
	AssigneeName string
	DueDate      *time.Time
	CanDelete    bool
}

type teamOption struct {
	ID   string
	Name string
}

type memberOption struct {
	ID   string
	Name string
}

type listVM struct {
	viewdata.BaseVM
	TeamID   string
	TeamName string
	Teams    []teamOption
	Members  []memberOption
	Rows     []taskRow
	Statuses []string
}

// ServeList renders the personal task list, or a team's list when
// ?team=<id> names a team the viewer belongs to. GET /tasks
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	_, userID, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	vm := listVM{
		BaseVM:   viewdata.NewBaseVM(r, "Tasks", "/"),
		Statuses: []string{models.TaskTodo, models.TaskInProgress, models.TaskDone},
	}

	teamIDs, err := h.members.TeamIDsFor(ctx, userID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "failed to fetch team memberships", err, "A database error occurred.", "/")
		return
	}
	teams, err := h.teams.ListByIDs(ctx, teamIDs)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "failed to fetch teams", err, "A database error occurred.", "/")
		return
	}
	for _, t := range teams {
		vm.Teams = append(vm.Teams, teamOption{ID: t.ID.Hex(), Name: t.Name})
	}

	var rows []models.Task
	if teamHex := query.Get(r, "team"); teamHex != "" {
		teamID, err := primitive.ObjectIDFromHex(teamHex)
		if err != nil {
			uierrors.RenderBadRequest(w, r, "Invalid team.", "/tasks")
			return
		}
		_, found, err := h.members.TeamRole(ctx, teamID, userID)
		if err != nil {
			h.ErrLog.LogServerError(w, r, "failed to fetch team role", err, "A database error occurred.", "/tasks")
			return
		}
		if !found {
			uierrors.RenderForbidden(w, r, "You are not a member of this team.", "/tasks")
			return
		}
		rows, err = h.tasks.ListByTeam(ctx, teamID)
		if err != nil {
			h.ErrLog.LogServerError(w, r, "failed to fetch tasks", err, "A database error occurred.", "/tasks")
			return
		}
		vm.TeamID = teamID.Hex()
		for _, t := range teams {
			if t.ID == teamID {
				vm.TeamName = t.Name
			}
		}

		mships, err := h.members.ListTeamMembers(ctx, teamID)
		if err != nil {
			h.ErrLog.LogServerError(w, r, "failed to fetch team members", err, "A database error occurred.", "/tasks")
			return
		}
		ids := make([]primitive.ObjectID, 0, len(mships))
		for _, m := range mships {
			ids = append(ids, m.UserID)
		}
		people, err := h.profiles.ListByIDs(ctx, ids)
		if err != nil {
			h.ErrLog.LogServerError(w, r, "failed to fetch member profiles", err, "A database error occurred.", "/tasks")
			return
		}
		for _, m := range mships {
			if p, ok := people[m.UserID]; ok {
				vm.Members = append(vm.Members, memberOption{ID: p.ID.Hex(), Name: p.FullName})
			}
		}
		vm.Rows = h.taskRows(rows, userID, people)
	} else {
		rows, err = h.tasks.ListPersonal(ctx, userID)
		if err != nil {
			h.ErrLog.LogServerError(w, r, "failed to fetch tasks", err, "A database error occurred.", "/")
			return
		}
		vm.Rows = h.taskRows(rows, userID, nil)
	}

	templates.Render(w, r, "tasks_list", vm)
}

func (h *Handler) taskRows(in []models.Task, viewerID primitive.ObjectID, people map[primitive.ObjectID]models.Profile) []taskRow {
	out := make([]taskRow, 0, len(in))
	for _, t := range in {
		row := taskRow{
			ID:          t.ID.Hex(),
			Title:       t.Title,
			Description: t.Description,
			Status:      t.Status,
			Priority:    t.Priority,
			DueDate:     t.DueDate,
			CanDelete:   t.CreatedBy == viewerID,
		}
		if t.AssignedTo != nil && people != nil {
			if p, ok := people[*t.AssignedTo]; ok {
				row.AssigneeName = p.FullName
			}
		}
		out = append(out, row)
	}
	return out
}

// HandleCreate adds a task, personal by default or shared with a team
// the viewer belongs to. POST /tasks
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	_, userID, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/tasks")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	task := models.Task{
		Title:       htmlsanitize.StripAll(strings.TrimSpace(r.FormValue("title"))),
		Description: htmlsanitize.StripAll(strings.TrimSpace(r.FormValue("description"))),
		Priority:    r.FormValue("priority"),
		CreatedBy:   userID,
	}

	back := "/tasks"
	if teamHex := r.FormValue("team_id"); teamHex != "" {
		teamID, err := primitive.ObjectIDFromHex(teamHex)
		if err != nil {
			uierrors.RenderBadRequest(w, r, "Invalid team.", "/tasks")
			return
		}
		_, found, err := h.members.TeamRole(ctx, teamID, userID)
		if err != nil {
			h.ErrLog.LogServerError(w, r, "failed to fetch team role", err, "A database error occurred.", "/tasks")
			return
		}
		if !found {
			uierrors.RenderForbidden(w, r, "You can only add tasks to your own teams.", "/tasks")
			return
		}
		task.TeamID = &teamID
		back = "/tasks?team=" + teamID.Hex()
	}

	if due := r.FormValue("due_date"); due != "" {
		if d, err := time.Parse("2006-01-02", due); err == nil {
			task.DueDate = &d
		}
	}

	if _, err := h.tasks.Create(ctx, task); err != nil {
		h.ErrLog.LogBadRequest(w, r, "task create failed", err, "Could not create the task.", back)
		return
	}
	http.Redirect(w, r, back, http.StatusSeeOther)
}
