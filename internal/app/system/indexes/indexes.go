// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

/*
EnsureAll is called at startup. Each ensure* function is idempotent.
We aggregate errors so any problem is visible and startup can fail fast.
*/
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	if err := ensureUsers(ctx, db); err != nil {
		problems = append(problems, "users: "+err.Error())
	}
	if err := ensureClubs(ctx, db); err != nil {
		problems = append(problems, "clubs: "+err.Error())
	}
	if err := ensureScores(ctx, db); err != nil {
		problems = append(problems, "scores: "+err.Error())
	}
	if err := ensureOAuthState(ctx, db); err != nil {
		problems = append(problems, "oauth_state: "+err.Error())
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

func ensureUsers(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("users"), []mongo.IndexModel{
		{
			// Partial so provider accounts without an email do not collide on "".
			Keys: bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetName("uniq_users_email").SetUnique(true).
				SetPartialFilterExpression(bson.M{"email": bson.M{"$gt": ""}}),
		},
		{
			Keys: bson.D{{Key: "google_id", Value: 1}},
			Options: options.Index().SetName("idx_users_google_id").
				SetPartialFilterExpression(bson.M{"google_id": bson.M{"$exists": true}}),
		},
		{
			Keys: bson.D{{Key: "facebook_id", Value: 1}},
			Options: options.Index().SetName("idx_users_facebook_id").
				SetPartialFilterExpression(bson.M{"facebook_id": bson.M{"$exists": true}}),
		},
	})
}

func ensureClubs(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("clubs"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "member_ids", Value: 1}},
			Options: options.Index().SetName("idx_clubs_member_ids"),
		},
		{
			Keys:    bson.D{{Key: "manager_id", Value: 1}},
			Options: options.Index().SetName("idx_clubs_manager_id"),
		},
	})
}

func ensureScores(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("scores"), []mongo.IndexModel{
		{
			// Owner listing is served newest-first.
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "date", Value: -1}},
			Options: options.Index().SetName("idx_scores_user_date"),
		},
		{
			// Club stats filter on club plus an optional date window.
			Keys:    bson.D{{Key: "club_id", Value: 1}, {Key: "date", Value: 1}},
			Options: options.Index().SetName("idx_scores_club_date"),
		},
	})
}

func ensureOAuthState(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("oauth_state"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "state", Value: 1}},
			Options: options.Index().SetName("uniq_oauth_state").SetUnique(true),
		},
		{
			// TTL cleanup; documents expire at their stored expires_at.
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetName("ttl_oauth_state").SetExpireAfterSeconds(0),
		},
	})
}

/* -------------------------------------------------------------------------- */
/* Helper: ensure a set of desired indexes for one collection                 */
/* -------------------------------------------------------------------------- */

func ensureIndexSet(ctx context.Context, coll *mongo.Collection, models []mongo.IndexModel) error {
	var errs []string

	for _, m := range models {
		name := ""
		if m.Options != nil && m.Options.Name != nil {
			name = *m.Options.Name
		}

		if _, err := coll.Indexes().CreateOne(ctx, m); err != nil {
			// Same name + same keys is a no-op for CreateOne, so any error
			// here is a real conflict or a data problem.
			if isDuplicateKeyErr(err) && coll.Name() == "users" {
				errs = append(errs, fmt.Sprintf("%s(%s): cannot create unique index (duplicate emails present)", coll.Name(), name))
				continue
			}
			errs = append(errs, fmt.Sprintf("%s(%s): %v", coll.Name(), name, err))
		}
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

// Best-effort duplicate-detector (works cross-vendors)
func isDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}
	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if e.Code == 11000 { // E11000 duplicate key error index
				return true
			}
		}
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && ce.Code == 11000 {
		return true
	}
	s := err.Error()
	return strings.Contains(s, "E11000") || strings.Contains(strings.ToLower(s), "duplicate key")
}
