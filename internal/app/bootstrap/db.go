// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"

	"github.com/fairwaylog/fairwaylog/internal/app/system/indexes"
)

// EnsureSchema creates the MongoDB indexes the app depends on.
// It runs after ConnectDB and before Startup.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if err := indexes.EnsureAll(ctx, deps.MongoDatabase); err != nil {
		logger.Error("index creation failed", zap.Error(err))
		return err
	}
	logger.Info("MongoDB indexes ensured")
	return nil
}
