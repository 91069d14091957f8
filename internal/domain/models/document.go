package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Document is a project-scoped uploaded file with a per-project
// version counter. Scope is always "project" and ScopeID the project.
type Document struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	StoredFile `bson:",inline"`

	FileType    string `bson:"file_type,omitempty" json:"file_type,omitempty"`
	Version     int    `bson:"version" json:"version"`
	Description string `bson:"description,omitempty" json:"description,omitempty"`
}
