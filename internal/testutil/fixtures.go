// internal/testutil/fixtures.go
package testutil

import (
	"context"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/fairwaylog/fairwaylog/internal/domain/models"
)

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser inserts a test user with the given name and email.
func (f *Fixtures) CreateUser(ctx context.Context, name, email string) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	user := models.User{
		ID:        primitive.NewObjectID(),
		Name:      name,
		Email:     email,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := f.db.Collection("users").InsertOne(ctx, user); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateClub inserts a club managed by manager, with manager as the sole
// member, and updates the manager's club references to match.
func (f *Fixtures) CreateClub(ctx context.Context, name string, manager models.User) models.Club {
	f.t.Helper()

	now := time.Now().UTC()
	club := models.Club{
		ID:        primitive.NewObjectID(),
		Name:      name,
		ManagerID: manager.ID,
		MemberIDs: []primitive.ObjectID{manager.ID},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := f.db.Collection("clubs").InsertOne(ctx, club); err != nil {
		f.t.Fatalf("failed to create test club: %v", err)
	}

	_, err := f.db.Collection("users").UpdateByID(ctx, manager.ID, map[string]interface{}{
		"$addToSet": map[string]interface{}{
			"club_ids":         club.ID,
			"managed_club_ids": club.ID,
		},
	})
	if err != nil {
		f.t.Fatalf("failed to link manager to test club: %v", err)
	}

	return club
}

// AddMember appends a user to a club's member list and mirrors the
// reference on the user document.
func (f *Fixtures) AddMember(ctx context.Context, club models.Club, user models.User) {
	f.t.Helper()

	if _, err := f.db.Collection("clubs").UpdateByID(ctx, club.ID, map[string]interface{}{
		"$addToSet": map[string]interface{}{"member_ids": user.ID},
	}); err != nil {
		f.t.Fatalf("failed to add test member to club: %v", err)
	}
	if _, err := f.db.Collection("users").UpdateByID(ctx, user.ID, map[string]interface{}{
		"$addToSet": map[string]interface{}{"club_ids": club.ID},
	}); err != nil {
		f.t.Fatalf("failed to add test club to user: %v", err)
	}
}

// CreateScore inserts a score for user with the given holes, dated at date.
// Pass a nil clubID for an unattached round.
func (f *Fixtures) CreateScore(ctx context.Context, user models.User, holes []int, clubID *primitive.ObjectID, date time.Time) models.Score {
	f.t.Helper()

	now := time.Now().UTC()
	score := models.Score{
		ID:          primitive.NewObjectID(),
		UserID:      user.ID,
		Date:        date,
		HoleScores:  holes,
		TotalScore:  models.SumHoleScores(holes),
		HolesPlayed: len(holes),
		ClubID:      clubID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if _, err := f.db.Collection("scores").InsertOne(ctx, score); err != nil {
		f.t.Fatalf("failed to create test score: %v", err)
	}
	return score
}
