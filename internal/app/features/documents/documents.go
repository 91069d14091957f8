// internal/app/features/documents/documents.go
package documents

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
	"github.com/takimhub/takimhub/internal/app/uploads"
	"github.com/takimhub/takimhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// maxUploadBytes caps document uploads at 32MB.
const maxUploadBytes = 32 << 20

type documentRow struct {
	ID          string
	FileName    string
	Description string
	Version     int
	FileSize    int64
	CreatedAt   time.Time
	CanDelete   bool
}

type listVM struct {
	viewdata.BaseVM
	ProjectID   string
	ProjectName string
	CanUpload   bool
	Rows        []documentRow
	Message     string
}

// ServeList renders the documents of one project. Members only.
// GET /documents?project=<id>
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	_, userID, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}
	projectID, err := primitive.ObjectIDFromHex(query.Get(r, "project"))
	if err != nil {
		uierrors.RenderBadRequest(w, r, "Choose a project to view documents for.", "/projects")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	vm, ok := h.listVM(ctx, w, r, projectID, userID)
	if !ok {
		return
	}
	templates.Render(w, r, "documents_list", vm)
}

// listVM loads the project, checks membership, and builds the listing.
// On failure it has already written the error response.
func (h *Handler) listVM(ctx context.Context, w http.ResponseWriter, r *http.Request, projectID, userID primitive.ObjectID) (listVM, bool) {
	p, err := h.projects.GetByID(ctx, projectID)
	if err != nil {
		uierrors.RenderNotFound(w, r, "Project not found.", "/projects")
		return listVM{}, false
	}

	role, found, err := h.members.ProjectRole(ctx, projectID, userID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "failed to fetch project role", err, "A database error occurred.", "/projects")
		return listVM{}, false
	}
	if !found {
		uierrors.RenderForbidden(w, r, "You are not a member of this project.", "/projects")
		return listVM{}, false
	}

	docs, err := h.documents.ListByProject(ctx, projectID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "failed to fetch documents", err, "A database error occurred.", "/projects")
		return listVM{}, false
	}

	vm := listVM{
		BaseVM:      viewdata.NewBaseVM(r, p.Name+" documents", "/projects/"+projectID.Hex()),
		ProjectID:   projectID.Hex(),
		ProjectName: p.Name,
		CanUpload:   role == models.ProjectOwner || role == models.ProjectManager,
	}
	for _, d := range docs {
		vm.Rows = append(vm.Rows, documentRow{
			ID:          d.ID.Hex(),
			FileName:    d.FileName,
			Description: d.Description,
			Version:     d.Version,
			FileSize:    d.FileSize,
			CreatedAt:   d.CreatedAt,
			CanDelete:   d.OwnerID == userID,
		})
	}
	return vm, true
}

// HandleUpload accepts a multipart document upload into a project.
// POST /documents
func (h *Handler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	_, userID, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/projects")
		return
	}

	projectID, err := primitive.ObjectIDFromHex(strings.TrimSpace(r.FormValue("project_id")))
	if err != nil {
		uierrors.RenderBadRequest(w, r, "Choose a project to upload into.", "/projects")
		return
	}
	back := "/documents?project=" + projectID.Hex()
	description := htmlsanitize.StripAll(strings.TrimSpace(r.FormValue("description")))

	file, header, err := r.FormFile("file")
	if err != nil || header == nil || header.Size == 0 {
		uierrors.RenderBadRequest(w, r, "A file is required.", back)
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	var created models.Document
	_, dec, err := h.uploads.Create(ctx, uploads.CreateInput{
		Actor:       userID,
		Scope:       models.ScopeProject,
		ScopeID:     &projectID,
		FileName:    header.Filename,
		Size:        header.Size,
		ContentType: contentType,
		Body:        file,
		IsPublic:    true,
	}, func(ctx context.Context, f models.StoredFile) error {
		doc, err := h.documents.Insert(ctx, models.Document{
			StoredFile:  f,
			FileType:    contentType,
			Description: description,
		})
		if err == nil {
			created = doc
		}
		return err
	})
	if err != nil {
		h.Log.Error("document upload failed", zap.Error(err))
		uierrors.RenderServerError(w, r, "Failed to upload document. Please try again.", back)
		return
	}
	if !dec.Allowed {
		if dec.Integrity() {
			h.ErrLog.LogIntegrityViolation(w, r, string(dec.Reason), back)
			return
		}
		uierrors.RenderForbidden(w, r, dec.Message(), back)
		return
	}

	h.Log.Info("document uploaded",
		zap.String("document_id", created.ID.Hex()),
		zap.Int("version", created.Version))
	http.Redirect(w, r, back, http.StatusSeeOther)
}
