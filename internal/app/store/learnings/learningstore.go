// Package learningstore persists team-scoped micro-learning items.
package learningstore

import (
	"context"
	"errors"

	"github.com/dalemusser/waffle/pantry/text"
	"github.com/takimhub/takimhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("micro_learnings")}
}

var errBadContentType = errors.New(`content type must be "pdf"|"markdown"`)

// Insert writes a learning record. XP must be non-negative; zero is
// allowed for informational items.
func (s *Store) Insert(ctx context.Context, l models.Learning) (models.Learning, error) {
	switch l.ContentType {
	case models.ContentPDF, models.ContentMarkdown:
		// ok
	default:
		return models.Learning{}, errBadContentType
	}
	if l.XP < 0 {
		l.XP = 0
	}
	l.ID = primitive.NewObjectID()
	l.TitleCI = text.Fold(l.Title)

	if _, err := s.c.InsertOne(ctx, l); err != nil {
		return models.Learning{}, err
	}
	return l, nil
}

// GetByID loads a learning item by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Learning, error) {
	var l models.Learning
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&l); err != nil {
		return nil, err
	}
	return &l, nil
}

// Delete removes a learning record, reporting how many matched.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// ListByTeams returns the published learning items of the given teams,
// grouped by category then title.
func (s *Store) ListByTeams(ctx context.Context, teamIDs []primitive.ObjectID) ([]models.Learning, error) {
	if len(teamIDs) == 0 {
		return nil, nil
	}
	opts := options.Find().SetSort(bson.D{
		{Key: "category", Value: 1},
		{Key: "title_ci", Value: 1},
	})
	cur, err := s.c.Find(ctx, bson.M{
		"scope_id":     bson.M{"$in": teamIDs},
		"is_published": true,
	}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Learning
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListDraftsByTeams returns the unpublished items of the given teams,
// newest first. Meant for team owners and admins curating content.
func (s *Store) ListDraftsByTeams(ctx context.Context, teamIDs []primitive.ObjectID) ([]models.Learning, error) {
	if len(teamIDs) == 0 {
		return nil, nil
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := s.c.Find(ctx, bson.M{
		"scope_id":     bson.M{"$in": teamIDs},
		"is_published": false,
	}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Learning
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SetPublished toggles visibility of an item in member listings.
func (s *Store) SetPublished(ctx context.Context, id primitive.ObjectID, published bool) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"is_published": published}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// CountByTeam reports how many learning records reference a team. Used
// by the restrict rule on team deletion.
func (s *Store) CountByTeam(ctx context.Context, teamID primitive.ObjectID) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"scope_id": teamID})
}
