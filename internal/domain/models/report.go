package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Report is an uploaded report file in any of the three scopes.
type Report struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	StoredFile `bson:",inline"`

	Title        string   `bson:"title" json:"title"`
	TitleCI      string   `bson:"title_ci" json:"title_ci"`
	Description  string   `bson:"description,omitempty" json:"description,omitempty"`
	FileType     string   `bson:"file_type,omitempty" json:"file_type,omitempty"`
	ReportPeriod string   `bson:"report_period,omitempty" json:"report_period,omitempty"`
	Tags         []string `bson:"tags,omitempty" json:"tags,omitempty"`
}
