// internal/app/store/scores/scorestore.go
package scorestore

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/fairwaylog/fairwaylog/internal/app/system/htmlsanitize"
	"github.com/fairwaylog/fairwaylog/internal/domain/models"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("scores")}
}

// ErrInvalidHoleCount is returned when a round has no holes or more than 18.
var ErrInvalidHoleCount = errors.New("Must provide between 1 and 18 hole scores")

// NewScore carries the caller-supplied fields for a round.
type NewScore struct {
	HoleScores []int
	Date       time.Time // zero means "now"
	ClubID     *primitive.ObjectID
	Notes      string
}

// Create records a round for userID. Total and holes-played are always
// computed here, never trusted from the caller.
func (s *Store) Create(ctx context.Context, userID primitive.ObjectID, in NewScore) (models.Score, error) {
	if !models.ValidHoleCount(len(in.HoleScores)) {
		return models.Score{}, ErrInvalidHoleCount
	}

	date := in.Date
	if date.IsZero() {
		date = time.Now().UTC()
	}

	now := time.Now()
	sc := models.Score{
		ID:          primitive.NewObjectID(),
		UserID:      userID,
		Date:        date,
		HoleScores:  in.HoleScores,
		TotalScore:  models.SumHoleScores(in.HoleScores),
		HolesPlayed: len(in.HoleScores),
		ClubID:      in.ClubID,
		Notes:       htmlsanitize.Text(in.Notes),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if _, err := s.c.InsertOne(ctx, sc); err != nil {
		return models.Score{}, err
	}
	return sc, nil
}

// GetByID loads a round. Returns mongo.ErrNoDocuments if not found.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Score, error) {
	var sc models.Score
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&sc); err != nil {
		return nil, err
	}
	return &sc, nil
}

// ListByUser returns userID's rounds, newest first.
func (s *Store) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Score, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}})
	cur, err := s.c.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var scores []models.Score
	if err := cur.All(ctx, &scores); err != nil {
		return nil, err
	}
	return scores, nil
}

// ScoreUpdate carries a partial update for a round. Nil fields are left
// untouched.
type ScoreUpdate struct {
	HoleScores *[]int
	Date       *time.Time
	ClubID     *primitive.ObjectID
	ClearClub  bool
	Notes      *string
}

// Update applies a partial update. When HoleScores is present the hole count
// is revalidated and total/holes-played recomputed; a notes-only update
// leaves the hole data untouched.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, upd ScoreUpdate) (*models.Score, error) {
	set := bson.M{"updated_at": time.Now()}
	unset := bson.M{}

	if upd.HoleScores != nil {
		holes := *upd.HoleScores
		if !models.ValidHoleCount(len(holes)) {
			return nil, ErrInvalidHoleCount
		}
		set["hole_scores"] = holes
		set["total_score"] = models.SumHoleScores(holes)
		set["holes_played"] = len(holes)
	}
	if upd.Date != nil {
		set["date"] = *upd.Date
	}
	if upd.ClearClub {
		unset["club_id"] = ""
	} else if upd.ClubID != nil {
		set["club_id"] = *upd.ClubID
	}
	if upd.Notes != nil {
		set["notes"] = htmlsanitize.Text(*upd.Notes)
	}

	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}

	var sc models.Score
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	if err := s.c.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&sc); err != nil {
		return nil, err
	}
	return &sc, nil
}

// Delete removes a round. Returns mongo.ErrNoDocuments when nothing matched.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// ListByClub returns all rounds attached to clubID. When day is non-nil the
// result is limited to the UTC day window [00:00, next day 00:00).
func (s *Store) ListByClub(ctx context.Context, clubID primitive.ObjectID, day *time.Time) ([]models.Score, error) {
	filter := bson.M{"club_id": clubID}
	if day != nil {
		start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
		filter["date"] = bson.M{"$gte": start, "$lt": start.Add(24 * time.Hour)}
	}

	cur, err := s.c.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var scores []models.Score
	if err := cur.All(ctx, &scores); err != nil {
		return nil, err
	}
	return scores, nil
}
