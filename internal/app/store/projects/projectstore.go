// Package projectstore persists projects. Project membership rows live
// in the memberships store.
package projectstore

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
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("projects")}
}

var (
	ErrDuplicateSlug = errors.New("a project with this name already exists")
	errEmptyName     = errors.New("project name is required")
	errBadStatus     = errors.New("unknown project status")
	errBadPriority   = errors.New("unknown priority")
)

// Create inserts a new project after normalizing and validating fields.
// The caller grants the creator an owner membership afterward and rolls
// the project back with Delete if that fails.
func (s *Store) Create(ctx context.Context, p models.Project) (models.Project, error) {
	p.ID = primitive.NewObjectID()
	p.Name = normalize.Name(p.Name)
	if p.Name == "" {
		return models.Project{}, errEmptyName
	}
	p.NameCI = text.Fold(p.Name)
	p.Slug = normalize.Slug(p.Name)

	if p.Status == "" {
		p.Status = models.ProjectPlanning
	}
	if !models.ValidProjectStatus(p.Status) {
		return models.Project{}, errBadStatus
	}
	if p.Priority == "" {
		p.Priority = models.PriorityMedium
	}
	if !models.ValidPriority(p.Priority) {
		return models.Project{}, errBadPriority
	}

	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, p); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Project{}, ErrDuplicateSlug
		}
		return models.Project{}, err
	}
	return p, nil
}

// GetByID loads a project by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Project, error) {
	var p models.Project
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

// GetBySlug loads a project by slug.
func (s *Store) GetBySlug(ctx context.Context, slug string) (*models.Project, error) {
	var p models.Project
	if err := s.c.FindOne(ctx, bson.M{"slug": slug}).Decode(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

// ListByIDs returns the projects whose IDs are in ids, newest first.
func (s *Store) ListByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Project, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Project
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListByTeam returns every project attached to a team.
func (s *Store) ListByTeam(ctx context.Context, teamID primitive.ObjectID) ([]models.Project, error) {
	cur, err := s.c.Find(ctx, bson.M{"team_id": teamID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Project
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListPersonalOwned returns the caller's standalone projects, the
// ones not attached to any team.
func (s *Store) ListPersonalOwned(ctx context.Context, ownerID primitive.ObjectID) ([]models.Project, error) {
	cur, err := s.c.Find(ctx, bson.M{"owner_id": ownerID, "team_id": nil})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Project
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CountByTeam reports how many projects reference a team. Used by the
// team delete restrict rule.
func (s *Store) CountByTeam(ctx context.Context, teamID primitive.ObjectID) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"team_id": teamID})
}

// ProjectUpdate holds the editable project fields.
type ProjectUpdate struct {
	Description string
	Objective   string
	Status      string
	Priority    string
	StartDate   *time.Time
	DueDate     *time.Time
}

// Update applies a project edit. Moving to completed stamps
// CompletedAt; moving away clears it.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, upd ProjectUpdate) error {
	if !models.ValidProjectStatus(upd.Status) {
		return errBadStatus
	}
	if !models.ValidPriority(upd.Priority) {
		return errBadPriority
	}

	set := bson.M{
		"description": upd.Description,
		"objective":   upd.Objective,
		"status":      upd.Status,
		"priority":    upd.Priority,
		"start_date":  upd.StartDate,
		"due_date":    upd.DueDate,
		"updated_at":  time.Now(),
	}
	update := bson.M{"$set": set}
	if upd.Status == models.ProjectCompleted {
		set["completed_at"] = time.Now()
	} else {
		update["$unset"] = bson.M{"completed_at": ""}
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

// Delete removes the project document. Callers enforce the restrict
// rule (no deletion while scoped resources exist) first.
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
