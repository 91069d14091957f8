// internal/app/features/reports/upload.go
package reports

import (
	"context"
	"net/http"
	"strings"

	"github.com/dalemusser/waffle/pantry/templates"
	uierrors "github.com/takimhub/takimhub/internal/app/features/errors"
	"github.com/takimhub/takimhub/internal/app/system/authz"
	"github.com/takimhub/takimhub/internal/app/system/htmlsanitize"
	"github.com/takimhub/takimhub/internal/app/system/timeouts"
	"github.com/takimhub/takimhub/internal/app/uploads"
	"github.com/takimhub/takimhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// maxUploadBytes caps report uploads at 32MB.
const maxUploadBytes = 32 << 20

// ServeNew renders the upload form with the viewer's available
// destinations: personal scope always, plus any teams or projects
// where their role permits uploading.
// GET /reports/new
func (h *Handler) ServeNew(w http.ResponseWriter, r *http.Request) {
	name, userID, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	vm, err := h.newFormVM(ctx, name, userID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "failed to fetch upload destinations", err, "A database error occurred.", "/reports")
		return
	}
	templates.Render(w, r, "reports_new", vm)
}

func (h *Handler) newFormVM(ctx context.Context, name string, userID primitive.ObjectID) (newVM, error) {
	vm := newVM{Title: "Upload report", IsLoggedIn: true, UserName: name}

	teamIDs, err := h.members.TeamIDsFor(ctx, userID, models.TeamOwner, models.TeamAdmin)
	if err != nil {
		return vm, err
	}
	teams, err := h.teams.ListByIDs(ctx, teamIDs)
	if err != nil {
		return vm, err
	}
	for _, t := range teams {
		vm.Teams = append(vm.Teams, scopeOption{ID: t.ID.Hex(), Name: t.Name})
	}

	projectIDs, err := h.members.ProjectIDsFor(ctx, userID, models.ProjectOwner, models.ProjectManager)
	if err != nil {
		return vm, err
	}
	projects, err := h.projects.ListByIDs(ctx, projectIDs)
	if err != nil {
		return vm, err
	}
	for _, p := range projects {
		vm.Projects = append(vm.Projects, scopeOption{ID: p.ID.Hex(), Name: p.Name})
	}
	return vm, nil
}

// HandleUpload accepts a multipart report upload and runs it through
// the lifecycle manager. A policy denial re-renders the form with the
// denial message; it is never treated as a server error.
// POST /reports
func (h *Handler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	name, userID, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/reports")
		return
	}

	title := strings.TrimSpace(r.FormValue("title"))
	description := htmlsanitize.StripAll(strings.TrimSpace(r.FormValue("description")))
	period := strings.TrimSpace(r.FormValue("report_period"))
	tagsRaw := r.FormValue("tags")
	scope := models.Scope(strings.TrimSpace(r.FormValue("scope")))
	scopeIDHex := strings.TrimSpace(r.FormValue("scope_id"))

	reRender := func(msg string) {
		ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
		defer cancel()
		vm, err := h.newFormVM(ctx, name, userID)
		if err != nil {
			h.ErrLog.LogServerError(w, r, "failed to fetch upload destinations", err, "A database error occurred.", "/reports")
			return
		}
		vm.FormTitle = title
		vm.FormDescription = description
		vm.FormPeriod = period
		vm.FormTags = tagsRaw
		vm.FormScope = string(scope)
		vm.FormScopeID = scopeIDHex
		vm.Message = msg
		templates.Render(w, r, "reports_new", vm)
	}

	if title == "" {
		reRender("Title is required.")
		return
	}
	if !scope.Valid() {
		reRender("Choose where to upload this report.")
		return
	}

	var scopeID *primitive.ObjectID
	if scope != models.ScopePersonal {
		oid, err := primitive.ObjectIDFromHex(scopeIDHex)
		if err != nil {
			reRender("Choose a team or project to upload into.")
			return
		}
		scopeID = &oid
	}

	file, header, err := r.FormFile("file")
	if err != nil || header == nil || header.Size == 0 {
		reRender("A file is required.")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	var created models.Report
	_, dec, err := h.uploads.Create(ctx, uploads.CreateInput{
		Actor:       userID,
		Scope:       scope,
		ScopeID:     scopeID,
		FileName:    header.Filename,
		Size:        header.Size,
		ContentType: contentType,
		Body:        file,
		IsPublic:    true,
	}, func(ctx context.Context, f models.StoredFile) error {
		rep, err := h.reports.Insert(ctx, models.Report{
			StoredFile:   f,
			Title:        title,
			Description:  description,
			FileType:     contentType,
			ReportPeriod: period,
			Tags:         splitTags(tagsRaw),
		})
		if err == nil {
			created = rep
		}
		return err
	})
	if err != nil {
		h.Log.Error("report upload failed", zap.Error(err))
		reRender("Failed to upload report. Please try again.")
		return
	}
	if !dec.Allowed {
		if dec.Integrity() {
			h.ErrLog.LogIntegrityViolation(w, r, string(dec.Reason), "/reports")
			return
		}
		reRender(dec.Message())
		return
	}

	h.Log.Info("report uploaded",
		zap.String("report_id", created.ID.Hex()),
		zap.String("scope", string(scope)))
	http.Redirect(w, r, "/reports?scope="+string(scope), http.StatusSeeOther)
}

// splitTags turns a comma-separated tag field into cleaned tags,
// dropping empties.
func splitTags(raw string) []string {
	var tags []string
	for _, t := range strings.Split(raw, ",") {
		t = htmlsanitize.StripAll(strings.TrimSpace(t))
		if t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
