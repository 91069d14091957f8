// internal/app/features/documents/handler.go
package documents

import (
	"github.com/dalemusser/waffle/pantry/storage"
	uierrors "github.com/takimhub/takimhub/internal/app/features/errors"
	documentstore "github.com/takimhub/takimhub/internal/app/store/documents"
	membershipstore "github.com/takimhub/takimhub/internal/app/store/memberships"
	projectstore "github.com/takimhub/takimhub/internal/app/store/projects"
	"github.com/takimhub/takimhub/internal/app/uploads"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler owns the project document handlers. Documents always live in
// project scope; each upload of the same file name gets the next
// version number.
type Handler struct {
	DB      *mongo.Database
	Storage storage.Store
	Log     *zap.Logger
	ErrLog  *uierrors.ErrorLogger

	documents *documentstore.Store
	members   *membershipstore.Store
	projects  *projectstore.Store
	uploads   *uploads.Manager
}

func NewHandler(db *mongo.Database, store storage.Store, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	members := membershipstore.New(db)
	return &Handler{
		DB:        db,
		Storage:   store,
		Log:       logger,
		ErrLog:    errLog,
		documents: documentstore.New(db),
		members:   members,
		projects:  projectstore.New(db),
		uploads:   uploads.NewManager(members, store, logger),
	}
}
