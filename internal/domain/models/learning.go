package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Learning content types.
const (
	ContentPDF      = "pdf"
	ContentMarkdown = "markdown"
)

// Learning is a team-scoped micro-learning item. Completing one awards
// XP to the member's profile. ContentURL is the public URL of the
// uploaded content object.
type Learning struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	StoredFile `bson:",inline"`

	Title       string `bson:"title" json:"title"`
	TitleCI     string `bson:"title_ci" json:"title_ci"`
	Category    string `bson:"category,omitempty" json:"category,omitempty"`
	XP          int    `bson:"xp" json:"xp"`
	ContentType string `bson:"content_type" json:"content_type"`
	ContentURL  string `bson:"content_url,omitempty" json:"content_url,omitempty"`
	IsPublished bool   `bson:"is_published" json:"is_published"`
}
