// internal/app/features/learn/upload.go
package learn

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/dalemusser/waffle/pantry/templates"
	uierrors "github.com/takimhub/takimhub/internal/app/features/errors"
	"github.com/takimhub/takimhub/internal/app/system/authz"
	"github.com/takimhub/takimhub/internal/app/system/htmlsanitize"
	"github.com/takimhub/takimhub/internal/app/system/timeouts"
	"github.com/takimhub/takimhub/internal/app/system/viewdata"
	"github.com/takimhub/takimhub/internal/app/uploads"
	"github.com/takimhub/takimhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// maxUploadBytes caps learning content uploads at 32MB.
const maxUploadBytes = 32 << 20

// ServeNew renders the learning upload form for teams the viewer
// administers. GET /learn/new
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
		h.ErrLog.LogServerError(w, r, "failed to build learning form", err, "A database error occurred.", "/learn")
		return
	}
	if len(vm.Teams) == 0 {
		uierrors.RenderForbidden(w, r, "Only team owners and admins can add learning items.", "/learn")
		return
	}
	templates.Render(w, r, "learn_new", vm)
}

func (h *Handler) newFormVM(ctx context.Context, r *http.Request, userID primitive.ObjectID) (newVM, error) {
	vm := newVM{BaseVM: viewdata.NewBaseVM(r, "New learning item", "/learn")}

	ids, err := h.members.TeamIDsFor(ctx, userID, models.TeamOwner, models.TeamAdmin)
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

// HandleUpload accepts learning content (PDF or markdown file) for a
// team. New items start unpublished. POST /learn
func (h *Handler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	_, userID, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/learn")
		return
	}

	title := htmlsanitize.StripAll(strings.TrimSpace(r.FormValue("title")))
	category := htmlsanitize.StripAll(strings.TrimSpace(r.FormValue("category")))
	contentType := strings.TrimSpace(r.FormValue("content_type"))
	xpRaw := strings.TrimSpace(r.FormValue("xp"))
	teamHex := strings.TrimSpace(r.FormValue("team_id"))

	reRender := func(msg string) {
		ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
		defer cancel()
		vm, err := h.newFormVM(ctx, r, userID)
		if err != nil {
			h.ErrLog.LogServerError(w, r, "failed to build learning form", err, "A database error occurred.", "/learn")
			return
		}
		vm.FormTitle = title
		vm.FormCategory = category
		vm.FormXP = xpRaw
		vm.FormTeamID = teamHex
		vm.Error = msg
		templates.Render(w, r, "learn_new", vm)
	}

	if title == "" {
		reRender("Title is required.")
		return
	}
	if contentType != models.ContentPDF && contentType != models.ContentMarkdown {
		reRender("Choose PDF or markdown content.")
		return
	}
	teamID, err := primitive.ObjectIDFromHex(teamHex)
	if err != nil {
		reRender("Choose a team.")
		return
	}
	xp := 0
	if xpRaw != "" {
		xp, err = strconv.Atoi(xpRaw)
		if err != nil || xp < 0 {
			reRender("XP must be a non-negative number.")
			return
		}
	}

	file, header, err := r.FormFile("file")
	if err != nil || header == nil || header.Size == 0 {
		reRender("A content file is required.")
		return
	}
	defer file.Close()

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	var created models.Learning
	_, dec, err := h.uploads.Create(ctx, uploads.CreateInput{
		Actor:       userID,
		Scope:       models.ScopeTeam,
		ScopeID:     &teamID,
		FileName:    header.Filename,
		Size:        header.Size,
		ContentType: mimeType,
		Body:        file,
		IsPublic:    true,
	}, func(ctx context.Context, f models.StoredFile) error {
		l, err := h.learnings.Insert(ctx, models.Learning{
			StoredFile:  f,
			Title:       title,
			Category:    category,
			XP:          xp,
			ContentType: contentType,
			ContentURL:  h.uploads.PublicURL(f.StoragePath),
			IsPublished: false,
		})
		if err == nil {
			created = l
		}
		return err
	})
	if err != nil {
		h.Log.Error("learning upload failed", zap.Error(err))
		reRender("Failed to upload learning content. Please try again.")
		return
	}
	if !dec.Allowed {
		if dec.Integrity() {
			h.ErrLog.LogIntegrityViolation(w, r, string(dec.Reason), "/learn")
			return
		}
		reRender(dec.Message())
		return
	}

	h.Log.Info("learning item created",
		zap.String("learning_id", created.ID.Hex()),
		zap.Int("xp", created.XP))
	http.Redirect(w, r, "/learn", http.StatusSeeOther)
}
