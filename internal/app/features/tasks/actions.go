// internal/app/features/tasks/actions.go
package tasks

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	uierrors "github.com/takimhub/takimhub/internal/app/features/errors"
	"github.com/takimhub/takimhub/internal/app/system/authz"
	"github.com/takimhub/takimhub/internal/app/system/timeouts"
	"github.com/takimhub/takimhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// loadVisibleTask fetches the task and checks that the viewer can act
// on it: the creator for personal tasks, any team member for shared
// ones. On failure the error response has already been written.
func (h *Handler) loadVisibleTask(ctx context.Context, w http.ResponseWriter, r *http.Request, userID primitive.ObjectID) (*models.Task, string, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		uierrors.RenderBadRequest(w, r, "Invalid task ID.", "/tasks")
		return nil, "", false
	}

	task, err := h.tasks.GetByID(ctx, id)
	if err != nil {
		uierrors.RenderNotFound(w, r, "Task not found.", "/tasks")
		return nil, "", false
	}

	back := "/tasks"
	if task.TeamID == nil {
		if task.CreatedBy != userID {
			uierrors.RenderForbidden(w, r, "This is someone else's personal task.", "/tasks")
			return nil, "", false
		}
	} else {
		back = "/tasks?team=" + task.TeamID.Hex()
		_, found, err := h.members.TeamRole(ctx, *task.TeamID, userID)
		if err != nil {
			h.ErrLog.LogServerError(w, r, "failed to fetch team role", err, "A database error occurred.", "/tasks")
			return nil, "", false
		}
		if !found {
			uierrors.RenderForbidden(w, r, "You are not a member of this task's team.", "/tasks")
			return nil, "", false
		}
	}
	return task, back, true
}

// HandleStatus moves a task between todo, in progress, and done.
// POST /tasks/{id}/status
func (h *Handler) HandleStatus(w http.ResponseWriter, r *http.Request) {
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

	task, back, ok := h.loadVisibleTask(ctx, w, r, userID)
	if !ok {
		return
	}

	status := r.FormValue("status")
	if !models.ValidTaskStatus(status) {
		uierrors.RenderBadRequest(w, r, "Unknown task status.", back)
		return
	}
	if err := h.tasks.SetStatus(ctx, task.ID, status); err != nil {
		h.ErrLog.LogServerError(w, r, "task status update failed", err, "Could not update the task.", back)
		return
	}
	http.Redirect(w, r, back, http.StatusSeeOther)
}

// HandleAssign assigns a shared task to a team member, or clears the
// assignment when no assignee is chosen. POST /tasks/{id}/assign
func (h *Handler) HandleAssign(w http.ResponseWriter, r *http.Request) {
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

	task, back, ok := h.loadVisibleTask(ctx, w, r, userID)
	if !ok {
		return
	}
	if task.TeamID == nil {
		uierrors.RenderBadRequest(w, r, "Personal tasks cannot be assigned.", back)
		return
	}

	var assignee *primitive.ObjectID
	if hex := r.FormValue("assignee"); hex != "" {
		oid, err := primitive.ObjectIDFromHex(hex)
		if err != nil {
			uierrors.RenderBadRequest(w, r, "Invalid assignee.", back)
			return
		}
		_, found, err := h.members.TeamRole(ctx, *task.TeamID, oid)
		if err != nil {
			h.ErrLog.LogServerError(w, r, "failed to fetch team role", err, "A database error occurred.", back)
			return
		}
		if !found {
			uierrors.RenderBadRequest(w, r, "The assignee must be a member of the team.", back)
			return
		}
		assignee = &oid
	}

	if err := h.tasks.Assign(ctx, task.ID, assignee); err != nil {
		h.ErrLog.LogServerError(w, r, "task assignment failed", err, "Could not assign the task.", back)
		return
	}
	http.Redirect(w, r, back, http.StatusSeeOther)
}

// HandleDelete removes a task. Only its creator may delete it; a
// repeated delete lands back on the listing. POST /tasks/{id}/delete
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	_, userID, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		uierrors.RenderBadRequest(w, r, "Invalid task ID.", "/tasks")
		return
	}

	switch err := h.tasks.Delete(ctx, id, userID); err {
	case nil, mongo.ErrNoDocuments:
		// A missing row means the task is gone or belongs to someone
		// else; either way there is nothing the viewer can delete.
	default:
		h.ErrLog.LogServerError(w, r, "task delete failed", err, "Could not delete the task.", "/tasks")
		return
	}
	http.Redirect(w, r, "/tasks", http.StatusSeeOther)
}
