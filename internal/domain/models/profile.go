package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Profile represents an authenticated person. It is referenced (never
// owned) by every other entity: teams point at an owner profile,
// memberships join profiles to collectives, and uploaded files record
// the uploader's profile ID.
type Profile struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email      string             `bson:"email" json:"email"`
	EmailCI    string             `bson:"email_ci" json:"email_ci"` // lowercase, diacritics-stripped
	FullName   string             `bson:"full_name,omitempty" json:"full_name,omitempty"`
	FullNameCI string             `bson:"full_name_ci,omitempty" json:"full_name_ci,omitempty"`
	AvatarURL  string             `bson:"avatar_url,omitempty" json:"avatar_url,omitempty"`

	// AvatarPath is the storage key when the avatar was uploaded here
	// rather than linked; empty for external avatar URLs.
	AvatarPath string `bson:"avatar_path,omitempty" json:"-"`

	// AuthMethod is "password" or "google". PasswordHash is nil for
	// OAuth-only accounts.
	AuthMethod   string `bson:"auth_method" json:"auth_method"`
	PasswordHash []byte `bson:"password_hash,omitempty" json:"-"`

	TotalXP int `bson:"total_xp" json:"total_xp"`
	Level   int `bson:"level" json:"level"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Supported authentication methods.
const (
	AuthMethodPassword = "password"
	AuthMethodGoogle   = "google"
)
