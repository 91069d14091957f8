package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TeamRole is the closed set of roles inside a team, ordered
// owner > admin > member. Only the scope policy interprets these
// values; everything else treats them as opaque.
type TeamRole string

const (
	TeamOwner  TeamRole = "owner"
	TeamAdmin  TeamRole = "admin"
	TeamMember TeamRole = "member"
)

// Valid reports whether r is one of the defined team roles.
func (r TeamRole) Valid() bool {
	switch r {
	case TeamOwner, TeamAdmin, TeamMember:
		return true
	}
	return false
}

// TeamMembership joins a profile to a team. Exactly one document per
// (team_id, user_id) pair, enforced by a unique index.
type TeamMembership struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TeamID   primitive.ObjectID `bson:"team_id" json:"team_id"`
	UserID   primitive.ObjectID `bson:"user_id" json:"user_id"`
	Role     TeamRole           `bson:"role" json:"role"`
	JoinedAt time.Time          `bson:"joined_at" json:"joined_at"`
}
