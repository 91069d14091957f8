// internal/app/features/calendar/handler.go
package calendar

import (
	uierrors "github.com/takimhub/takimhub/internal/app/features/errors"
	eventstore "github.com/takimhub/takimhub/internal/app/store/events"
	membershipstore "github.com/takimhub/takimhub/internal/app/store/memberships"
	projectstore "github.com/takimhub/takimhub/internal/app/store/projects"
	taskstore "github.com/takimhub/takimhub/internal/app/store/tasks"
	teamstore "github.com/takimhub/takimhub/internal/app/store/teams"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler owns the calendar handlers: a merged view of events, dated
// tasks, and scheduled projects, plus event create and delete.
type Handler struct {
	DB     *mongo.Database
	Log    *zap.Logger
	ErrLog *uierrors.ErrorLogger

	events   *eventstore.Store
	tasks    *taskstore.Store
	projects *projectstore.Store
	members  *membershipstore.Store
	teams    *teamstore.Store
}

func NewHandler(db *mongo.Database, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:       db,
		Log:      logger,
		ErrLog:   errLog,
		events:   eventstore.New(db),
		tasks:    taskstore.New(db),
		projects: projectstore.New(db),
		members:  membershipstore.New(db),
		teams:    teamstore.New(db),
	}
}
