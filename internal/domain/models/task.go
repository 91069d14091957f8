package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Task statuses.
const (
	TaskTodo       = "todo"
	TaskInProgress = "in_progress"
	TaskDone       = "done"
)

// ValidTaskStatus reports whether s is a defined task status.
func ValidTaskStatus(s string) bool {
	switch s {
	case TaskTodo, TaskInProgress, TaskDone:
		return true
	}
	return false
}

// Task is a to-do item, either personal (TeamID nil) or shared with a
// team.
type Task struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	TeamID      *primitive.ObjectID `bson:"team_id,omitempty" json:"team_id,omitempty"`
	Title       string              `bson:"title" json:"title"`
	Description string              `bson:"description,omitempty" json:"description,omitempty"`
	Status      string              `bson:"status" json:"status"`
	Priority    string              `bson:"priority" json:"priority"`
	CreatedBy   primitive.ObjectID  `bson:"created_by" json:"created_by"`
	AssignedTo  *primitive.ObjectID `bson:"assigned_to,omitempty" json:"assigned_to,omitempty"`
	DueDate     *time.Time          `bson:"due_date,omitempty" json:"due_date,omitempty"`
	CreatedAt   time.Time           `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time           `bson:"updated_at" json:"updated_at"`
}
