// internal/app/store/oauthstate/store.go
package oauthstate

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// State is an OAuth2 state token stored for CSRF protection during the
// provider round trip.
type State struct {
	State     string    `bson:"state"`
	Provider  string    `bson:"provider"` // "google" or "facebook"
	ExpiresAt time.Time `bson:"expires_at"`
	CreatedAt time.Time `bson:"created_at"`
}

// Store manages OAuth2 state tokens in MongoDB. A TTL index on expires_at
// (see system/indexes) removes stale tokens automatically.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("oauth_state")}
}

// Save stores a state token for the given provider.
func (s *Store) Save(ctx context.Context, state, provider string, expiresAt time.Time) error {
	st := State{
		State:     state,
		Provider:  provider,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now().UTC(),
	}
	_, err := s.c.InsertOne(ctx, st)
	return err
}

// Validate checks that a state token exists for the provider and has not
// expired. A valid token is deleted so it cannot be replayed.
func (s *Store) Validate(ctx context.Context, state, provider string) (bool, error) {
	err := s.c.FindOneAndDelete(ctx, bson.M{
		"state":      state,
		"provider":   provider,
		"expires_at": bson.M{"$gt": time.Now().UTC()},
	}).Err()

	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// CleanupExpired removes expired state tokens. This is a backup for when
// TTL index cleanup is delayed.
func (s *Store) CleanupExpired(ctx context.Context) (int64, error) {
	result, err := s.c.DeleteMany(ctx, bson.M{
		"expires_at": bson.M{"$lt": time.Now().UTC()},
	})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}
