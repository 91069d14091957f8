// Package taskstore persists tasks, both personal and team-shared.
package taskstore

import (
	"context"
	"errors"
	"time"

	"github.com/takimhub/takimhub/internal/app/system/normalize"
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
	return &Store{c: db.Collection("tasks")}
}

var (
	errEmptyTitle  = errors.New("task title is required")
	errBadStatus   = errors.New("unknown task status")
	errBadPriority = errors.New("unknown priority")
)

// Create inserts a new task after normalizing and validating fields.
func (s *Store) Create(ctx context.Context, t models.Task) (models.Task, error) {
	t.ID = primitive.NewObjectID()
	t.Title = normalize.Name(t.Title)
	if t.Title == "" {
		return models.Task{}, errEmptyTitle
	}
	if t.Status == "" {
		t.Status = models.TaskTodo
	}
	if !models.ValidTaskStatus(t.Status) {
		return models.Task{}, errBadStatus
	}
	if t.Priority == "" {
		t.Priority = models.PriorityMedium
	}
	if !models.ValidPriority(t.Priority) {
		return models.Task{}, errBadPriority
	}

	now := time.Now()
	t.CreatedAt = now
	t.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, t); err != nil {
		return models.Task{}, err
	}
	return t, nil
}

// GetByID loads a task by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Task, error) {
	var t models.Task
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&t); err != nil {
		return nil, err
	}
	return &t, nil
}

// ListPersonal returns the user's own tasks (no team), oldest due
// first.
func (s *Store) ListPersonal(ctx context.Context, userID primitive.ObjectID) ([]models.Task, error) {
	return s.list(ctx, bson.M{"created_by": userID, "team_id": nil})
}

// ListByTeam returns a team's shared tasks.
func (s *Store) ListByTeam(ctx context.Context, teamID primitive.ObjectID) ([]models.Task, error) {
	return s.list(ctx, bson.M{"team_id": teamID})
}

func (s *Store) list(ctx context.Context, filter bson.M) ([]models.Task, error) {
	opts := options.Find().SetSort(bson.D{
		{Key: "due_date", Value: 1},
		{Key: "created_at", Value: -1},
	})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Task
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SetStatus moves a task between columns.
func (s *Store) SetStatus(ctx context.Context, id primitive.ObjectID, status string) error {
	if !models.ValidTaskStatus(status) {
		return errBadStatus
	}
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"status":     status,
		"updated_at": time.Now(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// Assign sets or clears the assignee.
func (s *Store) Assign(ctx context.Context, id primitive.ObjectID, assignee *primitive.ObjectID) error {
	update := bson.M{"$set": bson.M{"updated_at": time.Now()}}
	if assignee == nil {
		update["$unset"] = bson.M{"assigned_to": ""}
	} else {
		update["$set"].(bson.M)["assigned_to"] = *assignee
	}
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// Delete removes a task created by the given user. Creator-only, in
// line with uploader-only file deletion.
func (s *Store) Delete(ctx context.Context, id, createdBy primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id, "created_by": createdBy})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
