// internal/app/features/projects/types.go
package projects

import (
	"time"

	"github.com/takimhub/takimhub/internal/app/system/viewdata"
	"github.com/takimhub/takimhub/internal/domain/models"
)

type projectRow struct {
	ID       string
	Name     string
	TeamName string
	Status   string
	Priority string
	DueDate  *time.Time
	Role     models.ProjectRole
}

type listVM struct {
	viewdata.BaseVM
	Rows []projectRow
}

type teamOption struct {
	ID   string
	Name string
}

type newVM struct {
	viewdata.BaseVM
	Teams    []teamOption
	FormName string
	Error    string
}

type memberRow struct {
	UserID    string
	Name      string
	Email     string
	Role      models.ProjectRole
	CanRemove bool
}

type detailVM struct {
	viewdata.BaseVM
	ID          string
	Name        string
	TeamName    string
	Description string
	Objective   string
	Status      string
	Priority    string
	StartDate   *time.Time
	DueDate     *time.Time
	CompletedAt *time.Time

	Role      models.ProjectRole
	CanManage bool
	IsOwner   bool

	Members  []memberRow
	Statuses []string
	Error    string
}
