// internal/app/features/projects/handler.go
package projects

import (
	uierrors "github.com/takimhub/takimhub/internal/app/features/errors"
	documentstore "github.com/takimhub/takimhub/internal/app/store/documents"
	memberships "github.com/takimhub/takimhub/internal/app/store/memberships"
	profilestore "github.com/takimhub/takimhub/internal/app/store/profiles"
	projectstore "github.com/takimhub/takimhub/internal/app/store/projects"
	reportstore "github.com/takimhub/takimhub/internal/app/store/reports"
	teamstore "github.com/takimhub/takimhub/internal/app/store/teams"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler owns all project management handlers.
type Handler struct {
	DB     *mongo.Database
	Log    *zap.Logger
	ErrLog *uierrors.ErrorLogger

	projects  *projectstore.Store
	members   *memberships.Store
	profiles  *profilestore.Store
	teams     *teamstore.Store
	reports   *reportstore.Store
	documents *documentstore.Store
}

func NewHandler(db *mongo.Database, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:        db,
		Log:       logger,
		ErrLog:    errLog,
		projects:  projectstore.New(db),
		members:   memberships.New(db),
		profiles:  profilestore.New(db),
		teams:     teamstore.New(db),
		reports:   reportstore.New(db),
		documents: documentstore.New(db),
	}
}
