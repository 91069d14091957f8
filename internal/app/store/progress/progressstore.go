// Package progressstore records learning completions. The unique
// (user_id, learning_id) index makes each completion count once, so XP
// can never be farmed by repeating an item.
package progressstore

import (
	"context"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/takimhub/takimhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("user_progress")}
}

// Complete records that the user finished a learning item. credited is
// false when the pair already existed, meaning the caller must not
// award XP again.
func (s *Store) Complete(ctx context.Context, userID, learningID primitive.ObjectID) (credited bool, err error) {
	_, err = s.c.InsertOne(ctx, models.Progress{
		ID:          primitive.NewObjectID(),
		UserID:      userID,
		LearningID:  learningID,
		CompletedAt: time.Now(),
	})
	if wafflemongo.IsDup(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// CompletedSet returns the learning IDs the user has finished, for
// marking items done in listings.
func (s *Store) CompletedSet(ctx context.Context, userID primitive.ObjectID) (map[primitive.ObjectID]bool, error) {
	cur, err := s.c.Find(ctx, bson.M{"user_id": userID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	done := make(map[primitive.ObjectID]bool)
	for cur.Next(ctx) {
		var row struct {
			LearningID primitive.ObjectID `bson:"learning_id"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		done[row.LearningID] = true
	}
	return done, cur.Err()
}

// CountFor reports how many items the user has completed.
func (s *Store) CountFor(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"user_id": userID})
}
