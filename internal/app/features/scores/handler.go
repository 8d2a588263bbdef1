// internal/app/features/scores/handler.go
package scores

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/fairwaylog/fairwaylog/internal/app/policy/clubpolicy"
	scorestore "github.com/fairwaylog/fairwaylog/internal/app/store/scores"
	sysauth "github.com/fairwaylog/fairwaylog/internal/app/system/auth"
	"github.com/fairwaylog/fairwaylog/internal/app/system/httpapi"
	"github.com/fairwaylog/fairwaylog/internal/app/system/timeouts"
	"github.com/fairwaylog/fairwaylog/internal/domain/models"
)

// Handler serves the score ledger endpoints.
type Handler struct {
	DB     *mongo.Database
	Log    *zap.Logger
	Scores *scorestore.Store
}

func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		DB:     db,
		Log:    logger,
		Scores: scorestore.New(db),
	}
}

type createRequest struct {
	HoleScores []int      `json:"hole_scores"`
	Date       *time.Time `json:"date"`
	ClubID     *string    `json:"club_id"`
	Notes      string     `json:"notes"`
}

type updateRequest struct {
	HoleScores *[]int     `json:"hole_scores"`
	Date       *time.Time `json:"date"`
	ClubID     *string    `json:"club_id"` // empty string detaches the round
	Notes      *string    `json:"notes"`
}

// ServeCreate handles POST /scores.
func (h *Handler) ServeCreate(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	var req createRequest
	if err := httpapi.Decode(r, &req); err != nil {
		httpapi.BadRequest(w, "Invalid request body")
		return
	}

	in := scorestore.NewScore{
		HoleScores: req.HoleScores,
		Notes:      req.Notes,
	}
	if req.Date != nil {
		in.Date = *req.Date
	}
	if req.ClubID != nil && *req.ClubID != "" {
		oid, err := primitive.ObjectIDFromHex(*req.ClubID)
		if err != nil {
			httpapi.BadRequest(w, "Invalid club id")
			return
		}
		in.ClubID = &oid
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	created, err := h.Scores.Create(ctx, userID, in)
	if err != nil {
		if err == scorestore.ErrInvalidHoleCount {
			httpapi.BadRequest(w, err.Error())
			return
		}
		h.Log.Error("create score failed", zap.Error(err))
		httpapi.Internal(w, "Could not record score")
		return
	}

	httpapi.WriteJSON(w, http.StatusCreated, created)
}

// ServeList handles GET /scores, returning the caller's rounds newest first.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	scores, err := h.Scores.ListByUser(ctx, userID)
	if err != nil {
		h.Log.Error("list scores failed", zap.Error(err))
		httpapi.Internal(w, "Could not list scores")
		return
	}
	if scores == nil {
		scores = []models.Score{}
	}
	httpapi.WriteJSON(w, http.StatusOK, scores)
}

// ServeDetail handles GET /scores/{scoreID}. Readable by the owner or the
// manager of the score's club.
func (h *Handler) ServeDetail(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	score, ok := h.loadScore(ctx, w, r)
	if !ok {
		return
	}

	allowed, err := clubpolicy.CanViewScore(ctx, h.DB, score, userID)
	if err != nil {
		h.Log.Error("score view check failed", zap.Error(err))
		httpapi.Internal(w, "Could not verify permissions")
		return
	}
	if !allowed {
		httpapi.Forbidden(w, "Not allowed to view this score")
		return
	}

	httpapi.WriteJSON(w, http.StatusOK, score)
}

// ServeUpdate handles PUT /scores/{scoreID}. Owner or the club's manager.
func (h *Handler) ServeUpdate(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	var req updateRequest
	if err := httpapi.Decode(r, &req); err != nil {
		httpapi.BadRequest(w, "Invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	score, ok := h.loadScore(ctx, w, r)
	if !ok {
		return
	}

	allowed, err := clubpolicy.CanEditScore(ctx, h.DB, score, userID)
	if err != nil {
		h.Log.Error("score edit check failed", zap.Error(err))
		httpapi.Internal(w, "Could not verify permissions")
		return
	}
	if !allowed {
		httpapi.Forbidden(w, "Not allowed to edit this score")
		return
	}

	upd := scorestore.ScoreUpdate{
		HoleScores: req.HoleScores,
		Date:       req.Date,
		Notes:      req.Notes,
	}
	if req.ClubID != nil {
		if *req.ClubID == "" {
			upd.ClearClub = true
		} else {
			oid, err := primitive.ObjectIDFromHex(*req.ClubID)
			if err != nil {
				httpapi.BadRequest(w, "Invalid club id")
				return
			}
			upd.ClubID = &oid
		}
	}

	updated, err := h.Scores.Update(ctx, score.ID, upd)
	if err != nil {
		switch err {
		case scorestore.ErrInvalidHoleCount:
			httpapi.BadRequest(w, err.Error())
		case mongo.ErrNoDocuments:
			httpapi.NotFound(w, "Score not found")
		default:
			h.Log.Error("update score failed", zap.Error(err))
			httpapi.Internal(w, "Could not update score")
		}
		return
	}

	httpapi.WriteJSON(w, http.StatusOK, updated)
}

// ServeDelete handles DELETE /scores/{scoreID}. Owner only; the club manager
// may view and correct a round but never erase it.
func (h *Handler) ServeDelete(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	score, ok := h.loadScore(ctx, w, r)
	if !ok {
		return
	}

	if !clubpolicy.CanDeleteScore(score, userID) {
		httpapi.Forbidden(w, "Not allowed to delete this score")
		return
	}

	if err := h.Scores.Delete(ctx, score.ID); err != nil {
		if err == mongo.ErrNoDocuments {
			httpapi.NotFound(w, "Score not found")
			return
		}
		h.Log.Error("delete score failed", zap.Error(err))
		httpapi.Internal(w, "Could not delete score")
		return
	}

	httpapi.WriteMessage(w, http.StatusOK, "Score deleted")
}

func (h *Handler) loadScore(ctx context.Context, w http.ResponseWriter, r *http.Request) (*models.Score, bool) {
	oid, err := primitive.ObjectIDFromHex(chi.URLParam(r, "scoreID"))
	if err != nil {
		httpapi.NotFound(w, "Score not found")
		return nil, false
	}

	score, err := h.Scores.GetByID(ctx, oid)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			httpapi.NotFound(w, "Score not found")
			return nil, false
		}
		h.Log.Error("load score failed", zap.Error(err))
		httpapi.Internal(w, "Could not load score")
		return nil, false
	}
	return score, true
}

func currentUserID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	su, ok := sysauth.CurrentUser(r)
	if !ok {
		httpapi.Unauthorized(w, "Not authenticated")
		return primitive.NilObjectID, false
	}
	oid, err := primitive.ObjectIDFromHex(su.ID)
	if err != nil {
		httpapi.Unauthorized(w, "Not authenticated")
		return primitive.NilObjectID, false
	}
	return oid, true
}
