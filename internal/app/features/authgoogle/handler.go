// internal/app/features/authgoogle/handler.go
package authgoogle

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/fairwaylog/fairwaylog/internal/app/store/oauthstate"
	userstore "github.com/fairwaylog/fairwaylog/internal/app/store/users"
	sysauth "github.com/fairwaylog/fairwaylog/internal/app/system/auth"
	"github.com/fairwaylog/fairwaylog/internal/app/system/timeouts"
	"github.com/fairwaylog/fairwaylog/internal/app/system/token"
)

const provider = "google"

// Handler handles Google OAuth authentication.
type Handler struct {
	Users      *userstore.Store
	Log        *zap.Logger
	SessionMgr *sysauth.SessionManager
	Tokens     *token.Manager
	StateStore *oauthstate.Store

	ClientID     string
	ClientSecret string
	RedirectURL  string // e.g. "https://api.fairwaylog.com/auth/google/callback"
	ClientOrigin string // SPA origin that receives ?token= on success
}

// NewHandler creates a new Google OAuth handler.
func NewHandler(
	users *userstore.Store,
	sessionMgr *sysauth.SessionManager,
	tokens *token.Manager,
	stateStore *oauthstate.Store,
	clientID, clientSecret, baseURL, clientOrigin string,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Users:        users,
		Log:          logger,
		SessionMgr:   sessionMgr,
		Tokens:       tokens,
		StateStore:   stateStore,
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  baseURL + "/auth/google/callback",
		ClientOrigin: clientOrigin,
	}
}

func (h *Handler) oauth2Config() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     h.ClientID,
		ClientSecret: h.ClientSecret,
		RedirectURL:  h.RedirectURL,
		Scopes: []string{
			"openid",
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		Endpoint: google.Endpoint,
	}
}

// IsConfigured returns true if Google OAuth is configured.
func (h *Handler) IsConfigured() bool {
	return h.ClientID != "" && h.ClientSecret != ""
}

// ServeLogin handles GET /auth/google by redirecting to Google's consent
// screen with a stored one-time state token.
func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	if !h.IsConfigured() {
		h.Log.Warn("Google OAuth not configured")
		h.redirectToClientLogin(w, r, "google_not_configured")
		return
	}

	state, err := generateState()
	if err != nil {
		h.Log.Error("failed to generate OAuth state", zap.Error(err))
		h.redirectToClientLogin(w, r, "internal")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	expiresAt := time.Now().UTC().Add(10 * time.Minute)
	if err := h.StateStore.Save(ctx, state, provider, expiresAt); err != nil {
		h.Log.Error("failed to save OAuth state", zap.Error(err))
		h.redirectToClientLogin(w, r, "internal")
		return
	}

	http.Redirect(w, r, h.oauth2Config().AuthCodeURL(state), http.StatusTemporaryRedirect)
}

// ServeCallback handles GET /auth/google/callback: validates state, exchanges
// the code, fetches the Google profile, resolves the account, and redirects
// to the client with a bearer token.
func (h *Handler) ServeCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if errParam := r.URL.Query().Get("error"); errParam != "" {
		h.Log.Warn("Google OAuth error",
			zap.String("error", errParam),
			zap.String("description", r.URL.Query().Get("error_description")))
		h.redirectToClientLogin(w, r, "google_denied")
		return
	}

	state := r.URL.Query().Get("state")
	if state == "" {
		h.Log.Warn("missing OAuth state parameter")
		h.redirectToClientLogin(w, r, "invalid_state")
		return
	}

	ctxTimeout, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()

	valid, err := h.StateStore.Validate(ctxTimeout, state, provider)
	if err != nil {
		h.Log.Error("failed to validate OAuth state", zap.Error(err))
		h.redirectToClientLogin(w, r, "internal")
		return
	}
	if !valid {
		h.Log.Warn("invalid or expired OAuth state")
		h.redirectToClientLogin(w, r, "invalid_state")
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		h.Log.Warn("missing OAuth code parameter")
		h.redirectToClientLogin(w, r, "invalid_code")
		return
	}

	tok, err := h.oauth2Config().Exchange(ctx, code)
	if err != nil {
		h.Log.Error("failed to exchange OAuth code", zap.Error(err))
		h.redirectToClientLogin(w, r, "token_exchange")
		return
	}

	googleUser, err := fetchGoogleUserInfo(ctx, tok)
	if err != nil {
		h.Log.Error("failed to fetch Google user info", zap.Error(err))
		h.redirectToClientLogin(w, r, "user_info")
		return
	}

	user, err := h.Users.ResolveGoogle(ctxTimeout, userstore.Profile{
		ProviderID: googleUser.ID,
		Name:       googleUser.Name,
		Email:      googleUser.Email,
	})
	if err != nil {
		h.Log.Error("failed to resolve Google user", zap.Error(err), zap.String("google_id", googleUser.ID))
		h.redirectToClientLogin(w, r, "internal")
		return
	}

	if err := h.SessionMgr.Establish(w, r, user.ID.Hex()); err != nil {
		h.Log.Warn("failed to establish session", zap.Error(err), zap.String("user_id", user.ID.Hex()))
	}

	bearer, err := h.Tokens.Mint(user.ID.Hex())
	if err != nil {
		h.Log.Error("failed to mint token", zap.Error(err), zap.String("user_id", user.ID.Hex()))
		h.redirectToClientLogin(w, r, "internal")
		return
	}

	h.Log.Info("user logged in via Google OAuth", zap.String("user_id", user.ID.Hex()))
	http.Redirect(w, r, h.ClientOrigin+"?token="+url.QueryEscape(bearer), http.StatusSeeOther)
}

func (h *Handler) redirectToClientLogin(w http.ResponseWriter, r *http.Request, errorCode string) {
	http.Redirect(w, r, h.ClientOrigin+"/login?error="+url.QueryEscape(errorCode), http.StatusSeeOther)
}

// googleUserInfo represents user info returned from Google.
type googleUserInfo struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

func fetchGoogleUserInfo(ctx context.Context, token *oauth2.Token) (*googleUserInfo, error) {
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(token))

	resp, err := client.Get("https://www.googleapis.com/oauth2/v2/userinfo")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to decode user info: %w", err)
	}
	return &info, nil
}

// generateState creates a cryptographically secure random state string.
func generateState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
