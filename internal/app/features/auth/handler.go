// internal/app/features/auth/handler.go
package auth

import (
	"context"
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	userstore "github.com/fairwaylog/fairwaylog/internal/app/store/users"
	sysauth "github.com/fairwaylog/fairwaylog/internal/app/system/auth"
	"github.com/fairwaylog/fairwaylog/internal/app/system/httpapi"
	"github.com/fairwaylog/fairwaylog/internal/app/system/ratelimit"
	"github.com/fairwaylog/fairwaylog/internal/app/system/timeouts"
	"github.com/fairwaylog/fairwaylog/internal/app/system/token"
	"github.com/fairwaylog/fairwaylog/internal/domain/models"
)

// Handler serves local (email + password) authentication.
type Handler struct {
	Users      *userstore.Store
	Log        *zap.Logger
	SessionMgr *sysauth.SessionManager
	Tokens     *token.Manager
	Limits     *ratelimit.LoginLimiter
}

func NewHandler(users *userstore.Store, sessionMgr *sysauth.SessionManager, tokens *token.Manager, logger *zap.Logger) *Handler {
	return &Handler{
		Users:      users,
		Log:        logger,
		SessionMgr: sessionMgr,
		Tokens:     tokens,
		Limits:     ratelimit.NewLoginLimiter(),
	}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// ServeRegister handles POST /auth/register.
func (h *Handler) ServeRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := httpapi.Decode(r, &req); err != nil {
		httpapi.BadRequest(w, "Invalid request body")
		return
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		httpapi.BadRequest(w, "Name, email, and password are required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	user, err := h.Users.Register(ctx, req.Name, req.Email, req.Password)
	if err != nil {
		if err == userstore.ErrDuplicateEmail {
			httpapi.BadRequest(w, err.Error())
			return
		}
		h.Log.Error("register failed", zap.Error(err))
		httpapi.Internal(w, "Could not create account")
		return
	}

	h.issue(w, r, user, http.StatusCreated)
}

// ServeLogin handles POST /auth/login. Unknown email, social-only account,
// and wrong password are indistinguishable to the caller.
func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpapi.Decode(r, &req); err != nil {
		httpapi.BadRequest(w, "Invalid request body")
		return
	}

	if ok, reason := h.Limits.Check(r, req.Email); !ok {
		httpapi.WriteMessage(w, http.StatusTooManyRequests, reason)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	user, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if err != mongo.ErrNoDocuments {
			h.Log.Error("login lookup failed", zap.Error(err))
		}
		httpapi.Unauthorized(w, "Invalid credentials")
		return
	}
	if err := h.Users.CheckPassword(user, req.Password); err != nil {
		httpapi.Unauthorized(w, "Invalid credentials")
		return
	}

	h.Limits.ResetEmail(req.Email)
	h.issue(w, r, *user, http.StatusOK)
}

// ServeMe handles GET /auth/me, returning the caller's full profile.
func (h *Handler) ServeMe(w http.ResponseWriter, r *http.Request) {
	su, ok := sysauth.CurrentUser(r)
	if !ok {
		httpapi.Unauthorized(w, "Not authenticated")
		return
	}

	oid, err := primitive.ObjectIDFromHex(su.ID)
	if err != nil {
		httpapi.Unauthorized(w, "Not authenticated")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	user, err := h.Users.GetByID(ctx, oid)
	if err != nil {
		if err != mongo.ErrNoDocuments {
			h.Log.Error("me lookup failed", zap.String("user_id", su.ID), zap.Error(err))
		}
		httpapi.NotFound(w, "User not found")
		return
	}

	httpapi.WriteJSON(w, http.StatusOK, user)
}

// ServeLogout handles POST /auth/logout by expiring the session cookie.
// Bearer tokens are stateless and simply age out.
func (h *Handler) ServeLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.SessionMgr.Clear(w, r); err != nil {
		h.Log.Warn("logout: clear session failed", zap.Error(err))
	}
	httpapi.WriteMessage(w, http.StatusOK, "Logged out")
}

// issue establishes the cookie session, mints a bearer token, and writes the
// auth payload.
func (h *Handler) issue(w http.ResponseWriter, r *http.Request, user models.User, status int) {
	if err := h.SessionMgr.Establish(w, r, user.ID.Hex()); err != nil {
		h.Log.Warn("failed to establish session", zap.Error(err), zap.String("user_id", user.ID.Hex()))
		// Bearer auth still works; keep going.
	}

	tok, err := h.Tokens.Mint(user.ID.Hex())
	if err != nil {
		h.Log.Error("failed to mint token", zap.Error(err), zap.String("user_id", user.ID.Hex()))
		httpapi.Internal(w, "Could not complete sign-in")
		return
	}

	httpapi.WriteJSON(w, status, authResponse{Token: tok, User: user})
}
