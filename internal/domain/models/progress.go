package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Progress records a completed learning item. One document per
// (user_id, learning_id), enforced by a unique index; XP is credited
// only when the first document is inserted.
type Progress struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID      primitive.ObjectID `bson:"user_id" json:"user_id"`
	LearningID  primitive.ObjectID `bson:"learning_id" json:"learning_id"`
	CompletedAt time.Time          `bson:"completed_at" json:"completed_at"`
}
