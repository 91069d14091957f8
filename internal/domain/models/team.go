package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Team is a collective with role-based membership. The creating user
// becomes its initial owner member; the memberships collection is the
// authoritative record, OwnerID on the team is informational.
type Team struct {
	ID      primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name    string             `bson:"name" json:"name"`
	NameCI  string             `bson:"name_ci" json:"name_ci"`
	Slug    string             `bson:"slug" json:"slug"`
	OwnerID primitive.ObjectID `bson:"owner_id" json:"owner_id"`
	LogoURL string             `bson:"logo_url,omitempty" json:"logo_url,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
