// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	authfeature "github.com/fairwaylog/fairwaylog/internal/app/features/auth"
	authfacebookfeature "github.com/fairwaylog/fairwaylog/internal/app/features/authfacebook"
	authgooglefeature "github.com/fairwaylog/fairwaylog/internal/app/features/authgoogle"
	clubsfeature "github.com/fairwaylog/fairwaylog/internal/app/features/clubs"
	healthfeature "github.com/fairwaylog/fairwaylog/internal/app/features/health"
	scoresfeature "github.com/fairwaylog/fairwaylog/internal/app/features/scores"
	"github.com/fairwaylog/fairwaylog/internal/app/store/oauthstate"
	userstore "github.com/fairwaylog/fairwaylog/internal/app/store/users"
	"github.com/fairwaylog/fairwaylog/internal/app/system/auth"
	"github.com/fairwaylog/fairwaylog/internal/app/system/token"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. FairwayLog is a JSON API for a browser
// client on a separate origin, so the router applies CORS for the configured
// client origin, loads the session user (cookie or bearer token) on every
// request, and mounts the feature routers: auth, OAuth providers, clubs,
// scores, and health.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Create the session manager using app config.
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, appCfg.SessionTTL, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// LoadSessionUser fetches fresh user data on each request, so profile
	// updates and removed accounts take effect immediately.
	sessionMgr.SetUserFetcher(userstore.NewFetcher(deps.MongoDatabase))

	tokens, err := token.NewManager(appCfg.TokenSecret, appCfg.TokenTTL)
	if err != nil {
		logger.Error("token manager init failed", zap.Error(err))
		return nil, err
	}
	sessionMgr.SetTokenManager(tokens)

	users := userstore.New(deps.MongoDatabase)
	states := oauthstate.New(deps.MongoDatabase)

	r := chi.NewRouter()

	// The browser client lives on its own origin and sends both cookies
	// and Authorization headers.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{appCfg.ClientOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Global auth middleware: loads SessionUser into context if logged in.
	// This makes the current user available to all handlers via auth.CurrentUser(r).
	r.Use(sessionMgr.LoadSessionUser)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Local authentication: register, login, logout, current user
	authHandler := authfeature.NewHandler(users, sessionMgr, tokens, logger)
	r.Mount("/auth", authfeature.Routes(authHandler))

	// OAuth providers are mounted only when configured.
	googleHandler := authgooglefeature.NewHandler(users, sessionMgr, tokens, states,
		appCfg.GoogleClientID, appCfg.GoogleClientSecret, appCfg.BaseURL, appCfg.ClientOrigin, logger)
	if googleHandler.IsConfigured() {
		r.Mount("/auth/google", authgooglefeature.Routes(googleHandler))
	} else {
		logger.Info("Google OAuth not configured; /auth/google disabled")
	}

	facebookHandler := authfacebookfeature.NewHandler(users, sessionMgr, tokens, states,
		appCfg.FacebookAppID, appCfg.FacebookAppSecret, appCfg.BaseURL, appCfg.ClientOrigin, logger)
	if facebookHandler.IsConfigured() {
		r.Mount("/auth/facebook", authfacebookfeature.Routes(facebookHandler))
	} else {
		logger.Info("Facebook OAuth not configured; /auth/facebook disabled")
	}

	// Club membership, management, and statistics
	clubsHandler := clubsfeature.NewHandler(deps.MongoDatabase, logger)
	r.Mount("/clubs", clubsfeature.Routes(clubsHandler))

	// Golf score tracking
	scoresHandler := scoresfeature.NewHandler(deps.MongoDatabase, logger)
	r.Mount("/scores", scoresfeature.Routes(scoresHandler))

	return r, nil
}
