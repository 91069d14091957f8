// internal/app/features/reports/types.go
package reports

import (
	"time"

	"github.com/takimhub/takimhub/internal/domain/models"
)

// reportRow is one row in the report listing.
type reportRow struct {
	ID        string
	Title     string
	FileName  string
	FileSize  int64
	Tags      []string
	CreatedAt time.Time
	CanDelete bool // viewer uploaded this report
}

// listVM is the view model for the report listing page.
type listVM struct {
	Title      string
	IsLoggedIn bool
	UserName   string

	Scope     models.Scope
	Search    string
	Rows      []reportRow
	HasMore   bool
	CanUpload bool
}

// scopeOption is one entry in the upload form's destination picker.
type scopeOption struct {
	ID   string
	Name string
}

// newVM is the view model for the upload form.
type newVM struct {
	Title      string
	IsLoggedIn bool
	UserName   string

	// Teams where the viewer is owner or admin, and projects where the
	// viewer is owner or manager. Personal scope is always available.
	Teams    []scopeOption
	Projects []scopeOption

	// Sticky form values on re-render.
	FormTitle       string
	FormDescription string
	FormPeriod      string
	FormTags        string
	FormScope       string
	FormScopeID     string
	Message         string
}
