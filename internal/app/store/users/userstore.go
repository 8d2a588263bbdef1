package userstore

import (
	"context"
	"errors"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"github.com/fairwaylog/fairwaylog/internal/app/system/normalize"
	"github.com/fairwaylog/fairwaylog/internal/domain/models"
)

// BcryptCost is the work factor for local password hashes.
const BcryptCost = 12

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

var (
	// ErrDuplicateEmail is returned when attempting to create a user with an email that already exists.
	ErrDuplicateEmail = errors.New("a user with this email already exists")
	// ErrNoLocalPassword is returned when checking a password against a social-only account.
	ErrNoLocalPassword = errors.New("user has no local password credential")
	errNameRequired    = errors.New("name is required")
	errEmailRequired   = errors.New("email is required")
)

// Register inserts a new local-credential user. The plaintext password is
// hashed with bcrypt before storage and never retained.
func (s *Store) Register(ctx context.Context, name, email, password string) (models.User, error) {
	name = normalize.Name(name)
	email = normalize.Email(email)
	if name == "" {
		return models.User{}, errNameRequired
	}
	if email == "" {
		return models.User{}, errEmailRequired
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return models.User{}, err
	}

	now := time.Now()
	u := models.User{
		ID:           primitive.NewObjectID(),
		Name:         name,
		NameCI:       text.Fold(name),
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, ErrDuplicateEmail
		}
		return models.User{}, err
	}
	return u, nil
}

// CheckPassword compares a plaintext password against the user's stored hash.
// Returns nil on match, bcrypt.ErrMismatchedHashAndPassword on mismatch, and
// ErrNoLocalPassword for social-only accounts.
func (s *Store) CheckPassword(u *models.User, password string) error {
	if !u.HasPassword() {
		return ErrNoLocalPassword
	}
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
}

// GetByID loads a user by ObjectID. Returns mongo.ErrNoDocuments if not found.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByEmail looks up a user by case-insensitive email. Returns mongo.ErrNoDocuments if not found.
func (s *Store) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"email": normalize.Email(email)}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetManyByIDs loads the users whose IDs appear in ids, sorted by folded
// name. Missing IDs are silently skipped.
func (s *Store) GetManyByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var users []models.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// AddClubRefs mirrors a club membership onto the user document. When manager
// is true the club is also recorded in managed_club_ids.
func (s *Store) AddClubRefs(ctx context.Context, userID, clubID primitive.ObjectID, manager bool) error {
	add := bson.M{"club_ids": clubID}
	if manager {
		add["managed_club_ids"] = clubID
	}
	_, err := s.c.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{
		"$addToSet": add,
		"$set":      bson.M{"updated_at": time.Now()},
	})
	return err
}

// RemoveClubRefs removes the club from both of the user's club arrays.
func (s *Store) RemoveClubRefs(ctx context.Context, userID, clubID primitive.ObjectID) error {
	_, err := s.c.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{
		"$pull": bson.M{"club_ids": clubID, "managed_club_ids": clubID},
		"$set":  bson.M{"updated_at": time.Now()},
	})
	return err
}

// TransferManagedClub moves a managed_club_ids entry from one user to
// another. Both users keep their plain membership reference.
func (s *Store) TransferManagedClub(ctx context.Context, fromID, toID, clubID primitive.ObjectID) error {
	now := time.Now()
	if _, err := s.c.UpdateOne(ctx, bson.M{"_id": fromID}, bson.M{
		"$pull": bson.M{"managed_club_ids": clubID},
		"$set":  bson.M{"updated_at": now},
	}); err != nil {
		return err
	}
	_, err := s.c.UpdateOne(ctx, bson.M{"_id": toID}, bson.M{
		"$addToSet": bson.M{"managed_club_ids": clubID},
		"$set":      bson.M{"updated_at": now},
	})
	return err
}
