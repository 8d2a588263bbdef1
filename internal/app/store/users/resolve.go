package userstore

import (
	"context"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/fairwaylog/fairwaylog/internal/app/system/normalize"
	"github.com/fairwaylog/fairwaylog/internal/domain/models"
)

// Profile carries the identity fields returned by an OAuth provider.
type Profile struct {
	ProviderID string
	Name       string
	Email      string
}

// ResolveGoogle finds or creates the account for a Google identity.
func (s *Store) ResolveGoogle(ctx context.Context, p Profile) (*models.User, error) {
	return s.resolveProvider(ctx, "google_id", p)
}

// ResolveFacebook finds or creates the account for a Facebook identity.
func (s *Store) ResolveFacebook(ctx context.Context, p Profile) (*models.User, error) {
	return s.resolveProvider(ctx, "facebook_id", p)
}

// resolveProvider implements the provider sign-in rules: an existing account
// with this provider ID wins, then an existing account with the same email
// is linked to the provider, and otherwise a fresh social-only account is
// created.
func (s *Store) resolveProvider(ctx context.Context, idField string, p Profile) (*models.User, error) {
	var u models.User
	err := s.c.FindOne(ctx, bson.M{idField: p.ProviderID}).Decode(&u)
	if err == nil {
		return &u, nil
	}
	if err != mongo.ErrNoDocuments {
		return nil, err
	}

	email := normalize.Email(p.Email)
	if email != "" {
		err = s.c.FindOneAndUpdate(ctx,
			bson.M{"email": email},
			bson.M{"$set": bson.M{idField: p.ProviderID, "updated_at": time.Now()}},
		).Decode(&u)
		if err == nil {
			return &u, nil
		}
		if err != mongo.ErrNoDocuments {
			return nil, err
		}
	}

	name := normalize.Name(p.Name)
	now := time.Now()
	u = models.User{
		ID:        primitive.NewObjectID(),
		Name:      name,
		NameCI:    text.Fold(name),
		Email:     email,
		CreatedAt: now,
		UpdatedAt: now,
	}
	switch idField {
	case "google_id":
		u.GoogleID = p.ProviderID
	case "facebook_id":
		u.FacebookID = p.ProviderID
	}

	if _, err := s.c.InsertOne(ctx, u); err != nil {
		// A concurrent sign-in for the same email may have won the insert.
		if wafflemongo.IsDup(err) {
			return s.GetByEmail(ctx, email)
		}
		return nil, err
	}
	return &u, nil
}
