// internal/app/features/clubs/handler.go
package clubs

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	clubstore "github.com/fairwaylog/fairwaylog/internal/app/store/clubs"
	scorestore "github.com/fairwaylog/fairwaylog/internal/app/store/scores"
	userstore "github.com/fairwaylog/fairwaylog/internal/app/store/users"
	sysauth "github.com/fairwaylog/fairwaylog/internal/app/system/auth"
	"github.com/fairwaylog/fairwaylog/internal/app/system/golfstats"
	"github.com/fairwaylog/fairwaylog/internal/app/system/httpapi"
	"github.com/fairwaylog/fairwaylog/internal/app/system/normalize"
	"github.com/fairwaylog/fairwaylog/internal/app/system/timeouts"
	"github.com/fairwaylog/fairwaylog/internal/domain/models"
)

// Handler serves club membership and management endpoints.
type Handler struct {
	DB     *mongo.Database
	Log    *zap.Logger
	Clubs  *clubstore.Store
	Users  *userstore.Store
	Scores *scorestore.Store
}

func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		DB:     db,
		Log:    logger,
		Clubs:  clubstore.New(db, logger),
		Users:  userstore.New(db),
		Scores: scorestore.New(db),
	}
}

type clubRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// memberSummary is the public projection of a member in club payloads.
type memberSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type clubResponse struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Manager     memberSummary   `json:"manager"`
	Members     []memberSummary `json:"members"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ServeCreate handles POST /clubs.
func (h *Handler) ServeCreate(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	var req clubRequest
	if err := httpapi.Decode(r, &req); err != nil {
		httpapi.BadRequest(w, "Invalid request body")
		return
	}
	if normalize.Name(req.Name) == "" {
		httpapi.BadRequest(w, "Club name is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	club, err := h.Clubs.Create(ctx, req.Name, req.Description, userID)
	if err != nil {
		if err == clubstore.ErrNameRequired {
			httpapi.BadRequest(w, err.Error())
			return
		}
		h.Log.Error("create club failed", zap.Error(err))
		httpapi.Internal(w, "Could not create club")
		return
	}

	resp, err := h.buildResponse(ctx, &club)
	if err != nil {
		h.Log.Error("build club response failed", zap.Error(err))
		httpapi.Internal(w, "Could not load club")
		return
	}
	httpapi.WriteJSON(w, http.StatusCreated, resp)
}

// ServeList handles GET /clubs, returning the caller's clubs.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	clubs, err := h.Clubs.ListForMember(ctx, userID)
	if err != nil {
		h.Log.Error("list clubs failed", zap.Error(err))
		httpapi.Internal(w, "Could not list clubs")
		return
	}

	resp := make([]clubResponse, 0, len(clubs))
	for i := range clubs {
		cr, err := h.buildResponse(ctx, &clubs[i])
		if err != nil {
			h.Log.Error("build club response failed", zap.Error(err))
			httpapi.Internal(w, "Could not list clubs")
			return
		}
		resp = append(resp, cr)
	}
	httpapi.WriteJSON(w, http.StatusOK, resp)
}

// ServeDetail handles GET /clubs/{clubID}.
func (h *Handler) ServeDetail(w http.ResponseWriter, r *http.Request) {
	if _, ok := currentUserID(w, r); !ok {
		return
	}
	clubID, ok := clubIDParam(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	club, err := h.Clubs.GetByID(ctx, clubID)
	if err != nil {
		h.respondLookupErr(w, err, "club")
		return
	}

	resp, err := h.buildResponse(ctx, club)
	if err != nil {
		h.Log.Error("build club response failed", zap.Error(err))
		httpapi.Internal(w, "Could not load club")
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, resp)
}

// ServeUpdate handles PUT /clubs/{clubID}. Manager only; the manager check
// is a live store read, never a cached session role.
func (h *Handler) ServeUpdate(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	clubID, ok := clubIDParam(w, r)
	if !ok {
		return
	}

	var req clubRequest
	if err := httpapi.Decode(r, &req); err != nil {
		httpapi.BadRequest(w, "Invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if !h.requireManager(ctx, w, clubID, userID) {
		return
	}

	if err := h.Clubs.UpdateInfo(ctx, clubID, req.Name, req.Description); err != nil {
		switch err {
		case clubstore.ErrNameRequired:
			httpapi.BadRequest(w, err.Error())
		case mongo.ErrNoDocuments:
			httpapi.NotFound(w, "Club not found")
		default:
			h.Log.Error("update club failed", zap.Error(err))
			httpapi.Internal(w, "Could not update club")
		}
		return
	}

	club, err := h.Clubs.GetByID(ctx, clubID)
	if err != nil {
		h.respondLookupErr(w, err, "club")
		return
	}
	resp, err := h.buildResponse(ctx, club)
	if err != nil {
		h.Log.Error("build club response failed", zap.Error(err))
		httpapi.Internal(w, "Could not load club")
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, resp)
}

// ServeJoin handles POST /clubs/{clubID}/join.
func (h *Handler) ServeJoin(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	clubID, ok := clubIDParam(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	if err := h.Clubs.Join(ctx, clubID, userID); err != nil {
		switch err {
		case clubstore.ErrAlreadyMember:
			httpapi.BadRequest(w, err.Error())
		case mongo.ErrNoDocuments:
			httpapi.NotFound(w, "Club not found")
		default:
			h.Log.Error("join club failed", zap.Error(err))
			httpapi.Internal(w, "Could not join club")
		}
		return
	}
	httpapi.WriteMessage(w, http.StatusOK, "Joined club")
}

// ServeLeave handles POST /clubs/{clubID}/leave.
func (h *Handler) ServeLeave(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	clubID, ok := clubIDParam(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	if err := h.Clubs.Leave(ctx, clubID, userID); err != nil {
		switch err {
		case clubstore.ErrManagerCannotLeave, clubstore.ErrNotAMember:
			httpapi.BadRequest(w, err.Error())
		case mongo.ErrNoDocuments:
			httpapi.NotFound(w, "Club not found")
		default:
			h.Log.Error("leave club failed", zap.Error(err))
			httpapi.Internal(w, "Could not leave club")
		}
		return
	}
	httpapi.WriteMessage(w, http.StatusOK, "Left club")
}

// ServeRemoveMember handles POST /clubs/{clubID}/remove/{memberID}.
// Manager only.
func (h *Handler) ServeRemoveMember(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	clubID, ok := clubIDParam(w, r)
	if !ok {
		return
	}
	memberID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "memberID"))
	if err != nil {
		httpapi.NotFound(w, "Member not found")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	if !h.requireManager(ctx, w, clubID, userID) {
		return
	}

	if err := h.Clubs.RemoveMember(ctx, clubID, memberID); err != nil {
		switch err {
		case clubstore.ErrCannotRemoveManager, clubstore.ErrNotAMember:
			httpapi.BadRequest(w, err.Error())
		case mongo.ErrNoDocuments:
			httpapi.NotFound(w, "Club not found")
		default:
			h.Log.Error("remove member failed", zap.Error(err))
			httpapi.Internal(w, "Could not remove member")
		}
		return
	}
	httpapi.WriteMessage(w, http.StatusOK, "Member removed")
}

// ServeTransfer handles POST /clubs/{clubID}/transfer/{newManagerID}.
// Manager only; the target must already be a member.
func (h *Handler) ServeTransfer(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	clubID, ok := clubIDParam(w, r)
	if !ok {
		return
	}
	newManagerID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "newManagerID"))
	if err != nil {
		httpapi.NotFound(w, "Member not found")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	if !h.requireManager(ctx, w, clubID, userID) {
		return
	}

	if err := h.Clubs.TransferManagement(ctx, clubID, newManagerID); err != nil {
		switch err {
		case clubstore.ErrNotAMember:
			httpapi.BadRequest(w, "New manager must be a club member")
		case mongo.ErrNoDocuments:
			httpapi.NotFound(w, "Club not found")
		default:
			h.Log.Error("transfer management failed", zap.Error(err))
			httpapi.Internal(w, "Could not transfer management")
		}
		return
	}
	httpapi.WriteMessage(w, http.StatusOK, "Management transferred")
}

// ServeStats handles GET /clubs/{clubID}/stats?date=YYYY-MM-DD. Any signed-in
// user may request any club's stats.
func (h *Handler) ServeStats(w http.ResponseWriter, r *http.Request) {
	if _, ok := currentUserID(w, r); !ok {
		return
	}
	clubID, ok := clubIDParam(w, r)
	if !ok {
		return
	}

	var day *time.Time
	if raw := normalize.QueryParam(r.URL.Query().Get("date")); raw != "" {
		parsed, err := time.ParseInLocation("2006-01-02", raw, time.UTC)
		if err != nil {
			httpapi.BadRequest(w, "Invalid date; expected YYYY-MM-DD")
			return
		}
		day = &parsed
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if _, err := h.Clubs.GetByID(ctx, clubID); err != nil {
		h.respondLookupErr(w, err, "club")
		return
	}

	scores, err := h.Scores.ListByClub(ctx, clubID, day)
	if err != nil {
		h.Log.Error("list club scores failed", zap.Error(err))
		httpapi.Internal(w, "Could not compute stats")
		return
	}

	totals := make([]int, 0, len(scores))
	for _, sc := range scores {
		totals = append(totals, sc.TotalScore)
	}
	httpapi.WriteJSON(w, http.StatusOK, golfstats.Summarize(totals))
}

/* ------------------------------- helpers -------------------------------- */

// requireManager loads the club and verifies the caller manages it. The
// load comes first so an unknown club id reads as 404, not 403.
func (h *Handler) requireManager(ctx context.Context, w http.ResponseWriter, clubID, userID primitive.ObjectID) bool {
	club, err := h.Clubs.GetByID(ctx, clubID)
	if err != nil {
		h.respondLookupErr(w, err, "club")
		return false
	}
	if club.ManagerID != userID {
		httpapi.Forbidden(w, "Only the club manager can do this")
		return false
	}
	return true
}

// buildResponse expands member IDs into name summaries.
func (h *Handler) buildResponse(ctx context.Context, club *models.Club) (clubResponse, error) {
	members, err := h.Users.GetManyByIDs(ctx, club.MemberIDs)
	if err != nil {
		return clubResponse{}, err
	}

	resp := clubResponse{
		ID:          club.ID.Hex(),
		Name:        club.Name,
		Description: club.Description,
		CreatedAt:   club.CreatedAt,
		UpdatedAt:   club.UpdatedAt,
		Members:     make([]memberSummary, 0, len(members)),
	}
	for _, m := range members {
		ms := memberSummary{ID: m.ID.Hex(), Name: m.Name}
		resp.Members = append(resp.Members, ms)
		if m.ID == club.ManagerID {
			resp.Manager = ms
		}
	}
	return resp, nil
}

func (h *Handler) respondLookupErr(w http.ResponseWriter, err error, what string) {
	if err == mongo.ErrNoDocuments {
		httpapi.NotFound(w, "Club not found")
		return
	}
	h.Log.Error("lookup failed", zap.String("entity", what), zap.Error(err))
	httpapi.Internal(w, "Could not load "+what)
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

func clubIDParam(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	oid, err := primitive.ObjectIDFromHex(chi.URLParam(r, "clubID"))
	if err != nil {
		httpapi.NotFound(w, "Club not found")
		return primitive.NilObjectID, false
	}
	return oid, true
}
