// internal/app/features/learn/handler.go
package learn

import (
	"github.com/dalemusser/waffle/pantry/storage"
	uierrors "github.com/takimhub/takimhub/internal/app/features/errors"
	learningstore "github.com/takimhub/takimhub/internal/app/store/learnings"
	membershipstore "github.com/takimhub/takimhub/internal/app/store/memberships"
	profilestore "github.com/takimhub/takimhub/internal/app/store/profiles"
	progressstore "github.com/takimhub/takimhub/internal/app/store/progress"
	teamstore "github.com/takimhub/takimhub/internal/app/store/teams"
	"github.com/takimhub/takimhub/internal/app/uploads"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler owns the micro-learning handlers: team-scoped published
// items, one-time completion, and XP crediting.
type Handler struct {
	DB      *mongo.Database
	Storage storage.Store
	Log     *zap.Logger
	ErrLog  *uierrors.ErrorLogger

	learnings *learningstore.Store
	members   *membershipstore.Store
	teams     *teamstore.Store
	profiles  *profilestore.Store
	progress  *progressstore.Store
	uploads   *uploads.Manager
}

func NewHandler(db *mongo.Database, store storage.Store, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	members := membershipstore.New(db)
	return &Handler{
		DB:        db,
		Storage:   store,
		Log:       logger,
		ErrLog:    errLog,
		learnings: learningstore.New(db),
		members:   members,
		teams:     teamstore.New(db),
		profiles:  profilestore.New(db),
		progress:  progressstore.New(db),
		uploads:   uploads.NewManager(members, store, logger),
	}
}
