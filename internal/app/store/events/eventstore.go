// Package eventstore persists calendar events, both personal and
// team-shared.
package eventstore

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
	return &Store{c: db.Collection("calendar_events")}
}

var (
	errEmptyTitle = errors.New("event title is required")
	errNoStart    = errors.New("event start is required")
	errBadType    = errors.New("unknown event type")
	errEndsBefore = errors.New("event ends before it starts")
)

// Create inserts a new event after normalizing and validating fields.
// A missing end makes the event end when it starts.
func (s *Store) Create(ctx context.Context, e models.CalendarEvent) (models.CalendarEvent, error) {
	e.ID = primitive.NewObjectID()
	e.Title = normalize.Name(e.Title)
	if e.Title == "" {
		return models.CalendarEvent{}, errEmptyTitle
	}
	if e.StartAt.IsZero() {
		return models.CalendarEvent{}, errNoStart
	}
	if e.EndAt.IsZero() {
		e.EndAt = e.StartAt
	}
	if e.EndAt.Before(e.StartAt) {
		return models.CalendarEvent{}, errEndsBefore
	}
	if e.EventType == "" {
		e.EventType = models.EventMeeting
	}
	if !models.ValidEventType(e.EventType) {
		return models.CalendarEvent{}, errBadType
	}

	now := time.Now()
	e.CreatedAt = now
	e.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, e); err != nil {
		return models.CalendarEvent{}, err
	}
	return e, nil
}

// GetByID loads an event by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.CalendarEvent, error) {
	var e models.CalendarEvent
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&e); err != nil {
		return nil, err
	}
	return &e, nil
}

// ListPersonal returns the user's own events (no team), earliest
// first.
func (s *Store) ListPersonal(ctx context.Context, userID primitive.ObjectID) ([]models.CalendarEvent, error) {
	return s.list(ctx, bson.M{"created_by": userID, "team_id": nil})
}

// ListByTeam returns a team's shared events.
func (s *Store) ListByTeam(ctx context.Context, teamID primitive.ObjectID) ([]models.CalendarEvent, error) {
	return s.list(ctx, bson.M{"team_id": teamID})
}

func (s *Store) list(ctx context.Context, filter bson.M) ([]models.CalendarEvent, error) {
	opts := options.Find().SetSort(bson.D{{Key: "start_at", Value: 1}})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.CalendarEvent
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes an event created by the given user. Creator-only, in
// line with task deletion.
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
