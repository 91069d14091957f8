package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Calendar event types.
const (
	EventMeeting  = "meeting"
	EventReminder = "reminder"
	EventDeadline = "deadline"
)

// ValidEventType reports whether t is a defined event type.
func ValidEventType(t string) bool {
	switch t {
	case EventMeeting, EventReminder, EventDeadline:
		return true
	}
	return false
}

// CalendarEvent is a dated entry on the calendar, either personal
// (TeamID nil) or shared with a team. Tasks and projects also appear
// on the calendar through their own dates; events are the entries
// created directly on it.
type CalendarEvent struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	TeamID      *primitive.ObjectID `bson:"team_id,omitempty" json:"team_id,omitempty"`
	Title       string              `bson:"title" json:"title"`
	Description string              `bson:"description,omitempty" json:"description,omitempty"`
	EventType   string              `bson:"event_type" json:"event_type"`
	StartAt     time.Time           `bson:"start_at" json:"start_at"`
	EndAt       time.Time           `bson:"end_at" json:"end_at"`
	CreatedBy   primitive.ObjectID  `bson:"created_by" json:"created_by"`
	CreatedAt   time.Time           `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time           `bson:"updated_at" json:"updated_at"`
}
