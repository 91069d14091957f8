// internal/app/features/profile/handler.go
package profile

import (
	uierrors "github.com/takimhub/takimhub/internal/app/features/errors"
	profilestore "github.com/takimhub/takimhub/internal/app/store/profiles"
	progressstore "github.com/takimhub/takimhub/internal/app/store/progress"
	"github.com/takimhub/takimhub/internal/app/uploads"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler owns the profile page handlers.
type Handler struct {
	DB      *mongo.Database
	Storage uploads.BlobStore
	Log     *zap.Logger
	ErrLog  *uierrors.ErrorLogger

	profiles *profilestore.Store
	progress *progressstore.Store
}

func NewHandler(db *mongo.Database, store uploads.BlobStore, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:       db,
		Storage:  store,
		Log:      logger,
		ErrLog:   errLog,
		profiles: profilestore.New(db),
		progress: progressstore.New(db),
	}
}
