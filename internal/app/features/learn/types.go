// internal/app/features/learn/types.go
package learn

import (
	"github.com/takimhub/takimhub/internal/app/system/viewdata"
)

type learningRow struct {
	ID          string
	Title       string
	Category    string
	TeamName    string
	XP          int
	ContentType string
	ContentURL  string
	Completed   bool
	Published   bool
	CanManage   bool
}

type listVM struct {
	viewdata.BaseVM
	TotalXP int
	Level   int
	Rows    []learningRow
	Drafts  []learningRow
	Message string
}

type teamOption struct {
	ID   string
	Name string
}

type newVM struct {
	viewdata.BaseVM
	Teams []teamOption

	FormTitle    string
	FormCategory string
	FormXP       string
	FormTeamID   string
	Error        string
}
