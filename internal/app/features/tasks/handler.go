// internal/app/features/tasks/handler.go
package tasks

import (
	uierrors "github.com/takimhub/takimhub/internal/app/features/errors"
	membershipstore "github.com/takimhub/takimhub/internal/app/store/memberships"
	profilestore "github.com/takimhub/takimhub/internal/app/store/profiles"
	taskstore "github.com/takimhub/takimhub/internal/app/store/tasks"
	teamstore "github.com/takimhub/takimhub/internal/app/store/teams"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler owns the task handlers: personal and team to-do lists with
// status moves and assignment.
type Handler struct {
	DB     *mongo.Database
	Log    *zap.Logger
	ErrLog *uierrors.ErrorLogger

	tasks    *taskstore.Store
	members  *membershipstore.Store
	teams    *teamstore.Store
	profiles *profilestore.Store
}

func NewHandler(db *mongo.Database, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:       db,
		Log:      logger,
		ErrLog:   errLog,
		tasks:    taskstore.New(db),
		members:  membershipstore.New(db),
		teams:    teamstore.New(db),
		profiles: profilestore.New(db),
	}
}
