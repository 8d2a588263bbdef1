// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). They represent *app-level*
// configuration, not WAFFLE core configuration.
//
// WAFFLE's CoreConfig handles framework-level settings like HTTP/HTTPS
// ports, TLS, logging level, and request body size limits. AppConfig is
// where everything specific to FairwayLog lives: the MongoDB connection,
// session and bearer-token secrets, OAuth provider credentials, and the
// browser client origin.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64 // Max connection pool size
	MongoMinPoolSize uint64 // Min connection pool size

	// Session management configuration
	SessionKey    string        // Secret key for signing session cookies (must be strong in production)
	SessionName   string        // Cookie name for sessions (default: fairwaylog_session)
	SessionDomain string        // Cookie domain (blank means current host)
	SessionTTL    time.Duration // Session cookie lifetime

	// Bearer token configuration
	TokenSecret string        // HMAC secret for signing API bearer tokens
	TokenTTL    time.Duration // Bearer token lifetime

	// Base URL this API is reachable at, used to build OAuth callback URLs
	// (e.g., "https://api.fairwaylog.com" or "http://localhost:8080").
	BaseURL string

	// Origin of the browser client, used for CORS and OAuth redirects
	// (e.g., "https://fairwaylog.com" or "http://localhost:3000").
	ClientOrigin string

	// Google OAuth configuration (login is disabled when blank)
	GoogleClientID     string
	GoogleClientSecret string

	// Facebook OAuth configuration (login is disabled when blank)
	FacebookAppID     string
	FacebookAppSecret string
}
