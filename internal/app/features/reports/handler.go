// internal/app/features/reports/handler.go
package reports

import (
	uierrors "github.com/takimhub/takimhub/internal/app/features/errors"
	membershipstore "github.com/takimhub/takimhub/internal/app/store/memberships"
	projectstore "github.com/takimhub/takimhub/internal/app/store/projects"
	reportstore "github.com/takimhub/takimhub/internal/app/store/reports"
	teamstore "github.com/takimhub/takimhub/internal/app/store/teams"
	"github.com/takimhub/takimhub/internal/app/uploads"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler owns the report handlers: scoped listings, upload, download,
// and delete. Authorization decisions are delegated to the scope
// policy via the uploads manager; the handlers only translate
// decisions into pages and redirects.
type Handler struct {
	DB      *mongo.Database
	Storage uploads.BlobStore
	Log     *zap.Logger
	ErrLog  *uierrors.ErrorLogger

	reports  *reportstore.Store
	members  *membershipstore.Store
	teams    *teamstore.Store
	projects *projectstore.Store
	uploads  *uploads.Manager
}

// NewHandler constructs a reports Handler bound to the given Mongo
// database, file storage, and logger.
func NewHandler(db *mongo.Database, store uploads.BlobStore, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	members := membershipstore.New(db)
	return &Handler{
		DB:       db,
		Storage:  store,
		Log:      logger,
		ErrLog:   errLog,
		reports:  reportstore.New(db),
		members:  members,
		teams:    teamstore.New(db),
		projects: projectstore.New(db),
		uploads:  uploads.NewManager(members, store, logger),
	}
}
