// internal/app/features/teams/handler.go
package teams

import (
	uierrors "github.com/takimhub/takimhub/internal/app/features/errors"
	learningstore "github.com/takimhub/takimhub/internal/app/store/learnings"
	memberships "github.com/takimhub/takimhub/internal/app/store/memberships"
	profilestore "github.com/takimhub/takimhub/internal/app/store/profiles"
	projectstore "github.com/takimhub/takimhub/internal/app/store/projects"
	reportstore "github.com/takimhub/takimhub/internal/app/store/reports"
	teamstore "github.com/takimhub/takimhub/internal/app/store/teams"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler owns all team management handlers.
type Handler struct {
	DB     *mongo.Database
	Log    *zap.Logger
	ErrLog *uierrors.ErrorLogger

	teams     *teamstore.Store
	members   *memberships.Store
	profiles  *profilestore.Store
	projects  *projectstore.Store
	reports   *reportstore.Store
	learnings *learningstore.Store
}

func NewHandler(db *mongo.Database, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:        db,
		Log:       logger,
		ErrLog:    errLog,
		teams:     teamstore.New(db),
		members:   memberships.New(db),
		profiles:  profilestore.New(db),
		projects:  projectstore.New(db),
		reports:   reportstore.New(db),
		learnings: learningstore.New(db),
	}
}
