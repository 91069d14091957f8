package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Scope is the visibility domain of a stored file.
type Scope string

const (
	ScopePersonal Scope = "personal"
	ScopeTeam     Scope = "team"
	ScopeProject  Scope = "project"
)

// Valid reports whether s is one of the defined scopes.
func (s Scope) Valid() bool {
	switch s {
	case ScopePersonal, ScopeTeam, ScopeProject:
		return true
	}
	return false
}

// StoredFile carries the fields shared by every uploaded artifact
// (reports, project documents, learning content). It is embedded
// inline in the concrete models.
//
// Invariants:
//   - Scope == personal implies ScopeID == nil; otherwise ScopeID
//     references the owning team or project.
//   - OwnerID is the uploader and the only identity allowed to delete.
//   - StoragePath is written to object storage before the record that
//     references it exists, and removed (best effort) after the record
//     is gone.
type StoredFile struct {
	Scope       Scope               `bson:"scope" json:"scope"`
	ScopeID     *primitive.ObjectID `bson:"scope_id,omitempty" json:"scope_id,omitempty"`
	OwnerID     primitive.ObjectID  `bson:"owner_id" json:"owner_id"`
	StoragePath string              `bson:"storage_path" json:"storage_path"`
	FileName    string              `bson:"file_name" json:"file_name"`
	FileSize    int64               `bson:"file_size" json:"file_size"`
	IsPublic    bool                `bson:"is_public" json:"is_public"`
	CreatedAt   time.Time           `bson:"created_at" json:"created_at"`
}
