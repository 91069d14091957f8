package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProjectRole is the closed set of roles inside a project, ordered
// owner > manager > contributor > viewer.
type ProjectRole string

const (
	ProjectOwner       ProjectRole = "owner"
	ProjectManager     ProjectRole = "manager"
	ProjectContributor ProjectRole = "contributor"
	ProjectViewer      ProjectRole = "viewer"
)

// Valid reports whether r is one of the defined project roles.
func (r ProjectRole) Valid() bool {
	switch r {
	case ProjectOwner, ProjectManager, ProjectContributor, ProjectViewer:
		return true
	}
	return false
}

// ProjectMembership joins a profile to a project. Exactly one document
// per (project_id, user_id) pair, enforced by a unique index.
type ProjectMembership struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ProjectID  primitive.ObjectID `bson:"project_id" json:"project_id"`
	UserID     primitive.ObjectID `bson:"user_id" json:"user_id"`
	Role       ProjectRole        `bson:"role" json:"role"`
	ColorLabel string             `bson:"color_label,omitempty" json:"color_label,omitempty"`
	CreatedAt  time.Time          `bson:"created_at" json:"created_at"`
}
