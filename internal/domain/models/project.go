package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Project statuses.
const (
	ProjectPlanning   = "planning"
	ProjectInProgress = "in_progress"
	ProjectOnHold     = "on_hold"
	ProjectCompleted  = "completed"
	ProjectCancelled  = "cancelled"
)

// Priorities shared by projects and tasks.
const (
	PriorityLow      = "low"
	PriorityMedium   = "medium"
	PriorityHigh     = "high"
	PriorityCritical = "critical"
)

// ValidProjectStatus reports whether s is a defined project status.
func ValidProjectStatus(s string) bool {
	switch s {
	case ProjectPlanning, ProjectInProgress, ProjectOnHold, ProjectCompleted, ProjectCancelled:
		return true
	}
	return false
}

// ValidPriority reports whether p is a defined priority.
func ValidPriority(p string) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

// Project is a collective with its own role axis. TeamID is nil for
// personal projects that do not belong to any team.
type Project struct {
	ID      primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	TeamID  *primitive.ObjectID `bson:"team_id,omitempty" json:"team_id,omitempty"`
	OwnerID primitive.ObjectID  `bson:"owner_id" json:"owner_id"`
	Name    string              `bson:"name" json:"name"`
	NameCI  string              `bson:"name_ci" json:"name_ci"`
	Slug    string              `bson:"slug" json:"slug"`

	Description string `bson:"description,omitempty" json:"description,omitempty"`
	Objective   string `bson:"objective,omitempty" json:"objective,omitempty"`
	Status      string `bson:"status" json:"status"`
	Priority    string `bson:"priority" json:"priority"`

	StartDate   *time.Time `bson:"start_date,omitempty" json:"start_date,omitempty"`
	DueDate     *time.Time `bson:"due_date,omitempty" json:"due_date,omitempty"`
	CompletedAt *time.Time `bson:"completed_at,omitempty" json:"completed_at,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
