// internal/app/features/authfacebook/handler.go
package authfacebook

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
	"golang.org/x/oauth2/facebook"

	"github.com/fairwaylog/fairwaylog/internal/app/store/oauthstate"
	userstore "github.com/fairwaylog/fairwaylog/internal/app/store/users"
	sysauth "github.com/fairwaylog/fairwaylog/internal/app/system/auth"
	"github.com/fairwaylog/fairwaylog/internal/app/system/timeouts"
	"github.com/fairwaylog/fairwaylog/internal/app/system/token"
)

const provider = "facebook"

// Handler handles Facebook OAuth authentication. The flow mirrors the Google
// one; only the endpoint and the profile fetch differ.
type Handler struct {
	Users      *userstore.Store
	Log        *zap.Logger
	SessionMgr *sysauth.SessionManager
	Tokens     *token.Manager
	StateStore *oauthstate.Store

	AppID        string
	AppSecret    string
	RedirectURL  string
	ClientOrigin string
}

func NewHandler(
	users *userstore.Store,
	sessionMgr *sysauth.SessionManager,
	tokens *token.Manager,
	stateStore *oauthstate.Store,
	appID, appSecret, baseURL, clientOrigin string,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Users:        users,
		Log:          logger,
		SessionMgr:   sessionMgr,
		Tokens:       tokens,
		StateStore:   stateStore,
		AppID:        appID,
		AppSecret:    appSecret,
		RedirectURL:  baseURL + "/auth/facebook/callback",
		ClientOrigin: clientOrigin,
	}
}

func (h *Handler) oauth2Config() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     h.AppID,
		ClientSecret: h.AppSecret,
		RedirectURL:  h.RedirectURL,
		Scopes:       []string{"email", "public_profile"},
		Endpoint:     facebook.Endpoint,
	}
}

// IsConfigured returns true if Facebook OAuth is configured.
func (h *Handler) IsConfigured() bool {
	return h.AppID != "" && h.AppSecret != ""
}

// ServeLogin handles GET /auth/facebook.
func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	if !h.IsConfigured() {
		h.Log.Warn("Facebook OAuth not configured")
		h.redirectToClientLogin(w, r, "facebook_not_configured")
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

// ServeCallback handles GET /auth/facebook/callback.
func (h *Handler) ServeCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if errParam := r.URL.Query().Get("error"); errParam != "" {
		h.Log.Warn("Facebook OAuth error",
			zap.String("error", errParam),
			zap.String("description", r.URL.Query().Get("error_description")))
		h.redirectToClientLogin(w, r, "facebook_denied")
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

	fbUser, err := fetchFacebookProfile(ctx, tok)
	if err != nil {
		h.Log.Error("failed to fetch Facebook profile", zap.Error(err))
		h.redirectToClientLogin(w, r, "user_info")
		return
	}

	user, err := h.Users.ResolveFacebook(ctxTimeout, userstore.Profile{
		ProviderID: fbUser.ID,
		Name:       fbUser.Name,
		Email:      fbUser.Email,
	})
	if err != nil {
		h.Log.Error("failed to resolve Facebook user", zap.Error(err), zap.String("facebook_id", fbUser.ID))
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

	h.Log.Info("user logged in via Facebook OAuth", zap.String("user_id", user.ID.Hex()))
	http.Redirect(w, r, h.ClientOrigin+"?token="+url.QueryEscape(bearer), http.StatusSeeOther)
}

func (h *Handler) redirectToClientLogin(w http.ResponseWriter, r *http.Request, errorCode string) {
	http.Redirect(w, r, h.ClientOrigin+"/login?error="+url.QueryEscape(errorCode), http.StatusSeeOther)
}

// facebookProfile represents the fields requested from the Graph API.
type facebookProfile struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func fetchFacebookProfile(ctx context.Context, token *oauth2.Token) (*facebookProfile, error) {
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(token))

	resp, err := client.Get("https://graph.facebook.com/me?fields=id,name,email")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch profile: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var p facebookProfile
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return nil, fmt.Errorf("failed to decode profile: %w", err)
	}
	return &p, nil
}

func generateState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
