// internal/app/policy/clubpolicy/clubpolicy.go
package clubpolicy

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/fairwaylog/fairwaylog/internal/domain/models"
)

// IsManager reports whether userID is the current manager of clubID
// according to the authoritative clubs collection. Session data is never
// consulted; a transfer takes effect on the next request.
func IsManager(ctx context.Context, db *mongo.Database, clubID, userID primitive.ObjectID) (bool, error) {
	n, err := db.Collection("clubs").CountDocuments(ctx, bson.M{
		"_id":        clubID,
		"manager_id": userID,
	})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// IsMember reports whether userID appears in clubID's member list.
func IsMember(ctx context.Context, db *mongo.Database, clubID, userID primitive.ObjectID) (bool, error) {
	n, err := db.Collection("clubs").CountDocuments(ctx, bson.M{
		"_id":        clubID,
		"member_ids": userID,
	})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// CanViewScore reports whether userID may read the score: the owner always
// can, and the manager of the score's club can when the round is attached to
// a club.
func CanViewScore(ctx context.Context, db *mongo.Database, score *models.Score, userID primitive.ObjectID) (bool, error) {
	if score.UserID == userID {
		return true, nil
	}
	if score.ClubID == nil {
		return false, nil
	}
	return IsManager(ctx, db, *score.ClubID, userID)
}

// CanEditScore mirrors CanViewScore: owner or the club's manager.
func CanEditScore(ctx context.Context, db *mongo.Database, score *models.Score, userID primitive.ObjectID) (bool, error) {
	return CanViewScore(ctx, db, score, userID)
}

// CanDeleteScore allows only the owner. Managers may view and correct a
// member's round but never erase it.
func CanDeleteScore(score *models.Score, userID primitive.ObjectID) bool {
	return score.UserID == userID
}
