// Package documentstore persists project document records with a
// per-project version counter.
package documentstore

import (
	"context"

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
	return &Store{c: db.Collection("project_documents")}
}

// Insert writes a document record, assigning the next version number
// for its (project, file name) pair. Re-uploading a file with the same
// name bumps the version rather than replacing the old record.
func (s *Store) Insert(ctx context.Context, d models.Document) (models.Document, error) {
	n, err := s.c.CountDocuments(ctx, bson.M{
		"scope_id":  d.ScopeID,
		"file_name": d.FileName,
	})
	if err != nil {
		return models.Document{}, err
	}
	d.ID = primitive.NewObjectID()
	d.Version = int(n) + 1

	if _, err := s.c.InsertOne(ctx, d); err != nil {
		return models.Document{}, err
	}
	return d, nil
}

// GetByID loads a document by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Document, error) {
	var d models.Document
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&d); err != nil {
		return nil, err
	}
	return &d, nil
}

// Delete removes a document record, reporting how many matched.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// ListByProject returns a project's public documents, newest first.
func (s *Store) ListByProject(ctx context.Context, projectID primitive.ObjectID) ([]models.Document, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := s.c.Find(ctx, bson.M{"scope_id": projectID, "is_public": true}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Document
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CountByProject reports how many document records reference a project.
// Used by the restrict rule on project deletion.
func (s *Store) CountByProject(ctx context.Context, projectID primitive.ObjectID) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"scope_id": projectID})
}
