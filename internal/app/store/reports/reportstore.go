// Package reportstore persists report records. Object bytes live in
// blob storage under StoredFile.StoragePath; the lifecycle manager
// keeps the two in step.
package reportstore

import (
	"context"

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
	return &Store{c: db.Collection("reports")}
}

// Insert writes a new report record. The lifecycle manager calls this
// after the object bytes are in storage.
func (s *Store) Insert(ctx context.Context, r models.Report) (models.Report, error) {
	r.ID = primitive.NewObjectID()
	r.TitleCI = text.Fold(r.Title)
	if _, err := s.c.InsertOne(ctx, r); err != nil {
		return models.Report{}, err
	}
	return r, nil
}

// GetByID loads a report by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Report, error) {
	var r models.Report
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&r); err != nil {
		return nil, err
	}
	return &r, nil
}

// Delete removes a report record and reports how many documents
// matched. Zero with a nil error means the record was already gone,
// which the lifecycle manager treats as success.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// ListFilter narrows a report listing. Exactly one of the scope fields
// is typically set; Search matches the folded title prefix.
type ListFilter struct {
	Scope    models.Scope
	OwnerID  primitive.ObjectID   // personal scope: required
	ScopeIDs []primitive.ObjectID // team/project scopes: collectives the viewer belongs to
	Search   string
}

// List returns reports matching the filter, newest first, fetching up
// to limit rows. Callers pass page size + 1 for look-ahead pagination.
//
// The filter encodes the visibility rule for listings: personal rows
// are keyed by owner, collective rows by the viewer's memberships and
// the public flag. Per-row authorization still happens again before
// any download or delete.
func (s *Store) List(ctx context.Context, f ListFilter, limit int64) ([]models.Report, error) {
	filter := bson.M{"scope": f.Scope}
	switch f.Scope {
	case models.ScopePersonal:
		filter["owner_id"] = f.OwnerID
	default:
		if len(f.ScopeIDs) == 0 {
			return nil, nil
		}
		filter["scope_id"] = bson.M{"$in": f.ScopeIDs}
		filter["is_public"] = true
	}
	if f.Search != "" {
		filter["title_ci"] = bson.M{"$regex": "^" + text.Fold(f.Search)}
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(limit)
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Report
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CountByScope reports how many report records reference a collective.
// Used by the restrict rule on team and project deletion.
func (s *Store) CountByScope(ctx context.Context, scope models.Scope, scopeID primitive.ObjectID) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"scope": scope, "scope_id": scopeID})
}
