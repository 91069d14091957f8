// internal/app/features/calendar/calendar.go
package calendar

import (
	"context"
	"net/http"
	"sort"
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

// Entry kinds shown on the calendar. Events are created here; tasks
// and projects appear through their own dates.
const (
	kindEvent   = "event"
	kindTask    = "task"
	kindProject = "project"
)

type calendarItem struct {
	ID          string
	Title       string
	Description string
	Kind        string
	Label       string // event type, task status, or project status
	StartAt     time.Time
	EndAt       time.Time
	CanDelete   bool // events only, and only for their creator
}

type teamOption struct {
	ID   string
	Name string
}

type listVM struct {
	viewdata.BaseVM
	TeamID     string
	TeamName   string
	Teams      []teamOption
	Items      []calendarItem
	EventTypes []string
}

// ServeList renders the personal calendar, or a team's calendar when
// ?team=<id> names a team the viewer belongs to. Events, tasks with a
// due date, and projects with a schedule are merged into one list.
// GET /calendar
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	_, userID, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	vm := listVM{
		BaseVM:     viewdata.NewBaseVM(r, "Calendar", "/"),
		EventTypes: []string{models.EventMeeting, models.EventReminder, models.EventDeadline},
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

	var (
		events   []models.CalendarEvent
		tasks    []models.Task
		projects []models.Project
	)
	if teamHex := query.Get(r, "team"); teamHex != "" {
		teamID, err := primitive.ObjectIDFromHex(teamHex)
		if err != nil {
			uierrors.RenderBadRequest(w, r, "Invalid team.", "/calendar")
			return
		}
		_, found, err := h.members.TeamRole(ctx, teamID, userID)
		if err != nil {
			h.ErrLog.LogServerError(w, r, "failed to fetch team role", err, "A database error occurred.", "/calendar")
			return
		}
		if !found {
			uierrors.RenderForbidden(w, r, "You are not a member of this team.", "/calendar")
			return
		}
		vm.TeamID = teamID.Hex()
		for _, t := range teams {
			if t.ID == teamID {
				vm.TeamName = t.Name
			}
		}

		if events, err = h.events.ListByTeam(ctx, teamID); err != nil {
			h.ErrLog.LogServerError(w, r, "failed to fetch events", err, "A database error occurred.", "/calendar")
			return
		}
		if tasks, err = h.tasks.ListByTeam(ctx, teamID); err != nil {
			h.ErrLog.LogServerError(w, r, "failed to fetch tasks", err, "A database error occurred.", "/calendar")
			return
		}
		if projects, err = h.projects.ListByTeam(ctx, teamID); err != nil {
			h.ErrLog.LogServerError(w, r, "failed to fetch projects", err, "A database error occurred.", "/calendar")
			return
		}
	} else {
		if events, err = h.events.ListPersonal(ctx, userID); err != nil {
			h.ErrLog.LogServerError(w, r, "failed to fetch events", err, "A database error occurred.", "/")
			return
		}
		if tasks, err = h.tasks.ListPersonal(ctx, userID); err != nil {
			h.ErrLog.LogServerError(w, r, "failed to fetch tasks", err, "A database error occurred.", "/")
			return
		}
		if projects, err = h.projects.ListPersonalOwned(ctx, userID); err != nil {
			h.ErrLog.LogServerError(w, r, "failed to fetch projects", err, "A database error occurred.", "/")
			return
		}
	}

	vm.Items = mergeItems(events, tasks, projects, userID)
	templates.Render(w, r, "calendar_list", vm)
}

// mergeItems flattens the three sources into one chronological list.
// Tasks without a due date and projects without both schedule dates
// have no place on a calendar and are skipped.
func mergeItems(events []models.CalendarEvent, tasks []models.Task, projects []models.Project, viewerID primitive.ObjectID) []calendarItem {
	items := make([]calendarItem, 0, len(events)+len(tasks)+len(projects))
	for _, e := range events {
		items = append(items, calendarItem{
			ID:          e.ID.Hex(),
			Title:       e.Title,
			Description: e.Description,
			Kind:        kindEvent,
			Label:       e.EventType,
			StartAt:     e.StartAt,
			EndAt:       e.EndAt,
			CanDelete:   e.CreatedBy == viewerID,
		})
	}
	for _, t := range tasks {
		if t.DueDate == nil {
			continue
		}
		items = append(items, calendarItem{
			ID:          t.ID.Hex(),
			Title:       t.Title,
			Description: t.Description,
			Kind:        kindTask,
			Label:       t.Status,
			StartAt:     *t.DueDate,
			EndAt:       *t.DueDate,
		})
	}
	for _, p := range projects {
		if p.StartDate == nil || p.DueDate == nil {
			continue
		}
		items = append(items, calendarItem{
			ID:          p.ID.Hex(),
			Title:       p.Name,
			Description: p.Description,
			Kind:        kindProject,
			Label:       p.Status,
			StartAt:     *p.StartDate,
			EndAt:       *p.DueDate,
		})
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].StartAt.Before(items[j].StartAt)
	})
	return items
}

// HandleCreate adds an event, personal by default or shared with a
// team the viewer belongs to. POST /calendar
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	_, userID, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/calendar")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	event := models.CalendarEvent{
		Title:       htmlsanitize.StripAll(strings.TrimSpace(r.FormValue("title"))),
		Description: htmlsanitize.StripAll(strings.TrimSpace(r.FormValue("description"))),
		EventType:   r.FormValue("event_type"),
		CreatedBy:   userID,
	}

	back := "/calendar"
	if teamHex := r.FormValue("team_id"); teamHex != "" {
		teamID, err := primitive.ObjectIDFromHex(teamHex)
		if err != nil {
			uierrors.RenderBadRequest(w, r, "Invalid team.", "/calendar")
			return
		}
		_, found, err := h.members.TeamRole(ctx, teamID, userID)
		if err != nil {
			h.ErrLog.LogServerError(w, r, "failed to fetch team role", err, "A database error occurred.", "/calendar")
			return
		}
		if !found {
			uierrors.RenderForbidden(w, r, "You can only add events to your own teams.", "/calendar")
			return
		}
		event.TeamID = &teamID
		back = "/calendar?team=" + teamID.Hex()
	}

	start, err := time.Parse("2006-01-02", r.FormValue("start_date"))
	if err != nil {
		uierrors.RenderBadRequest(w, r, "A start date is required.", back)
		return
	}
	event.StartAt = start
	if end := r.FormValue("end_date"); end != "" {
		if d, err := time.Parse("2006-01-02", end); err == nil {
			event.EndAt = d
		}
	}

	if _, err := h.events.Create(ctx, event); err != nil {
		h.ErrLog.LogBadRequest(w, r, "event create failed", err, "Could not create the event.", back)
		return
	}
	http.Redirect(w, r, back, http.StatusSeeOther)
}
