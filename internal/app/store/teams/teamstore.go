// Package teamstore persists teams. Membership rows live in the
// memberships store; this package only owns the team documents.
package teamstore

import (
	"context"
	"errors"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/takimhub/takimhub/internal/app/system/normalize"
	"github.com/takimhub/takimhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("teams")}
}

var (
	ErrDuplicateSlug = errors.New("a team with this name already exists")
	errEmptyName     = errors.New("team name is required")
)

// Create inserts a new team. The caller is responsible for granting
// the creating user an owner membership afterward; on membership
// failure it should call Delete to roll the team back.
func (s *Store) Create(ctx context.Context, name string, ownerID primitive.ObjectID) (models.Team, error) {
	name = normalize.Name(name)
	if name == "" {
		return models.Team{}, errEmptyName
	}

	t := models.Team{
		ID:        primitive.NewObjectID(),
		Name:      name,
		NameCI:    text.Fold(name),
		Slug:      normalize.Slug(name),
		OwnerID:   ownerID,
		CreatedAt: time.Now(),
	}
	if _, err := s.c.InsertOne(ctx, t); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Team{}, ErrDuplicateSlug
		}
		return models.Team{}, err
	}
	return t, nil
}

// GetByID loads a team by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Team, error) {
	var t models.Team
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&t); err != nil {
		return nil, err
	}
	return &t, nil
}

// GetBySlug loads a team by slug. Returns mongo.ErrNoDocuments if not
// found.
func (s *Store) GetBySlug(ctx context.Context, slug string) (*models.Team, error) {
	var t models.Team
	if err := s.c.FindOne(ctx, bson.M{"slug": slug}).Decode(&t); err != nil {
		return nil, err
	}
	return &t, nil
}

// ListByIDs returns the teams whose IDs are in ids, sorted by name.
func (s *Store) ListByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Team, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Team
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Rename updates the team's display name, folded name, and slug.
func (s *Store) Rename(ctx context.Context, id primitive.ObjectID, name string) error {
	name = normalize.Name(name)
	if name == "" {
		return errEmptyName
	}
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"name":    name,
		"name_ci": text.Fold(name),
		"slug":    normalize.Slug(name),
	}})
	if err != nil {
		if wafflemongo.IsDup(err) {
			return ErrDuplicateSlug
		}
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// Delete removes the team document. Callers enforce the restrict rule
// (no deletion while scoped resources exist) before calling this.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
