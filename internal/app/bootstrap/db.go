// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/waffle/config"
	"github.com/takimhub/takimhub/internal/app/store/oauthstate"
	"github.com/takimhub/takimhub/internal/app/system/indexes"
	"go.uber.org/zap"
)

// EnsureSchema reconciles all collection indexes at startup.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if err := indexes.EnsureAll(ctx, deps.MongoDatabase); err != nil {
		return err
	}
	return oauthstate.New(deps.MongoDatabase).EnsureIndexes(ctx)
}
