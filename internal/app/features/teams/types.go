// internal/app/features/teams/types.go
package teams

import (
	"time"

	"github.com/takimhub/takimhub/internal/app/system/viewdata"
	"github.com/takimhub/takimhub/internal/domain/models"
)

type teamRow struct {
	ID        string
	Name      string
	Slug      string
	Role      models.TeamRole
	CreatedAt time.Time
}

type listVM struct {
	viewdata.BaseVM
	Rows []teamRow
}

type newVM struct {
	viewdata.BaseVM
	FormName string
	Error    string
}

type memberRow struct {
	UserID    string
	Name      string
	Email     string
	Role      models.TeamRole
	CanRemove bool
}

type projectRow struct {
	ID     string
	Name   string
	Status string
}

type detailVM struct {
	viewdata.BaseVM
	ID        string
	Name      string
	Slug      string
	Role      models.TeamRole
	CanManage bool
	IsOwner   bool
	Members   []memberRow
	Projects  []projectRow
	Error     string
}
