// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"time"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"

	"github.com/fairwaylog/fairwaylog/internal/app/system/token"
)

// appConfigKeys defines the configuration keys for FairwayLog.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, session_name, etc.
//   - Environment variables: FAIRWAYLOG_MONGO_URI, FAIRWAYLOG_SESSION_NAME, etc.
//   - Command-line flags: --mongo_uri, --session_name, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "fairwaylog", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},

	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "fairwaylog_session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},
	{Name: "session_ttl", Default: "24h", Desc: "Session cookie lifetime (e.g., 24h, 12h)"},

	{Name: "token_secret", Default: "", Desc: "HMAC secret for API bearer tokens (falls back to session_key when blank)"},
	{Name: "token_ttl", Default: "24h", Desc: "Bearer token lifetime (e.g., 24h, 1h)"},

	{Name: "base_url", Default: "http://localhost:8080", Desc: "Base URL of this API, used for OAuth callback URLs"},
	{Name: "client_origin", Default: "http://localhost:3000", Desc: "Origin of the browser client, used for CORS and OAuth redirects"},

	// Google OAuth configuration
	{Name: "google_client_id", Default: "", Desc: "Google OAuth2 client ID"},
	{Name: "google_client_secret", Default: "", Desc: "Google OAuth2 client secret"},

	// Facebook OAuth configuration
	{Name: "facebook_app_id", Default: "", Desc: "Facebook OAuth2 app ID"},
	{Name: "facebook_app_secret", Default: "", Desc: "Facebook OAuth2 app secret"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// It is called early in startup so that both WAFFLE and the app have
// access to configuration before any backends or handlers are built.
// CoreConfig comes from the shared WAFFLE layer; AppConfig is specific
// to this app and can be extended as the app grows.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, FAIRWAYLOG_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "FAIRWAYLOG", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		SessionKey:    appValues.String("session_key"),
		SessionName:   appValues.String("session_name"),
		SessionDomain: appValues.String("session_domain"),
		SessionTTL:    appValues.Duration("session_ttl", 24*time.Hour),

		TokenSecret: appValues.String("token_secret"),
		TokenTTL:    appValues.Duration("token_ttl", token.DefaultTTL),

		BaseURL:      appValues.String("base_url"),
		ClientOrigin: appValues.String("client_origin"),

		GoogleClientID:     appValues.String("google_client_id"),
		GoogleClientSecret: appValues.String("google_client_secret"),

		FacebookAppID:     appValues.String("facebook_app_id"),
		FacebookAppSecret: appValues.String("facebook_app_secret"),
	}

	// Bearer tokens piggyback on the session key unless a dedicated
	// secret is configured.
	if appCfg.TokenSecret == "" {
		appCfg.TokenSecret = appCfg.SessionKey
		logger.Info("token_secret not set; using session_key for bearer tokens")
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
// FairwayLog validates the MongoDB URI format to catch configuration
// errors early, before attempting to connect, and requires OAuth
// provider credentials to be set in pairs.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}

	if (appCfg.GoogleClientID == "") != (appCfg.GoogleClientSecret == "") {
		return fmt.Errorf("google_client_id and google_client_secret must be set together")
	}
	if (appCfg.FacebookAppID == "") != (appCfg.FacebookAppSecret == "") {
		return fmt.Errorf("facebook_app_id and facebook_app_secret must be set together")
	}

	return nil
}
