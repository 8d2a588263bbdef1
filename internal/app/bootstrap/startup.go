// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"

	"github.com/fairwaylog/fairwaylog/internal/app/store/oauthstate"
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built.
//
// The TTL index on oauth_state removes expired entries on Mongo's own
// schedule; the sweep here clears anything left over from before the
// last shutdown so stale state never survives a restart.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	removed, err := oauthstate.New(deps.MongoDatabase).CleanupExpired(ctx)
	if err != nil {
		logger.Warn("oauth state cleanup failed", zap.Error(err))
		return nil
	}
	if removed > 0 {
		logger.Info("removed expired oauth state entries", zap.Int64("count", removed))
	}
	return nil
}
