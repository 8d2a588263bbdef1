// internal/app/store/clubs/clubstore.go
package clubstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	userstore "github.com/fairwaylog/fairwaylog/internal/app/store/users"
	"github.com/fairwaylog/fairwaylog/internal/app/system/htmlsanitize"
	"github.com/fairwaylog/fairwaylog/internal/app/system/normalize"
	"github.com/fairwaylog/fairwaylog/internal/app/system/txn"
	"github.com/fairwaylog/fairwaylog/internal/domain/models"
)

type Store struct {
	c     *mongo.Collection
	users *userstore.Store
	db    *mongo.Database
	log   *zap.Logger
}

func New(db *mongo.Database, log *zap.Logger) *Store {
	return &Store{
		c:     db.Collection("clubs"),
		users: userstore.New(db),
		db:    db,
		log:   log,
	}
}

var (
	// ErrAlreadyMember is returned when a user tries to join a club they already belong to.
	ErrAlreadyMember = errors.New("Already a member")
	// ErrManagerCannotLeave is returned when the manager tries to leave their own club.
	ErrManagerCannotLeave = errors.New("Club manager cannot leave. Transfer management first.")
	// ErrNotAMember is returned when an operation targets a user outside the club.
	ErrNotAMember = errors.New("Not a member of this club")
	// ErrCannotRemoveManager is returned when a removal targets the club's manager.
	ErrCannotRemoveManager = errors.New("Cannot remove the club manager")
	// ErrNameRequired is returned when a create or update would leave the club
	// without a name (blank, or sanitized down to nothing).
	ErrNameRequired = errors.New("Club name is required")
)

// Create inserts a club with creator as manager and sole member, mirroring
// the references onto the creator's user document. Both writes run inside a
// transaction where the deployment supports one; otherwise the club document
// is removed again if the user update fails.
func (s *Store) Create(ctx context.Context, name, description string, creatorID primitive.ObjectID) (models.Club, error) {
	name = normalize.Name(htmlsanitize.Text(name))
	description = htmlsanitize.Text(description)
	if name == "" {
		return models.Club{}, ErrNameRequired
	}

	now := time.Now()
	club := models.Club{
		ID:          primitive.NewObjectID(),
		Name:        name,
		NameCI:      text.Fold(name),
		Description: description,
		ManagerID:   creatorID,
		MemberIDs:   []primitive.ObjectID{creatorID},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err := txn.Run(ctx, s.db.Client(), s.log, func(ctx context.Context) error {
		if _, err := s.c.InsertOne(ctx, club); err != nil {
			return err
		}
		if err := s.users.AddClubRefs(ctx, creatorID, club.ID, true); err != nil {
			_, _ = s.c.DeleteOne(ctx, bson.M{"_id": club.ID})
			return err
		}
		return nil
	})
	if err != nil {
		return models.Club{}, err
	}
	return club, nil
}

// GetByID loads a club. Returns mongo.ErrNoDocuments if not found.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Club, error) {
	var c models.Club
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		return nil, err
	}
	return &c, nil
}

// ListForMember returns the clubs that userID belongs to, sorted by folded name.
func (s *Store) ListForMember(ctx context.Context, userID primitive.ObjectID) ([]models.Club, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{"member_ids": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var clubs []models.Club
	if err := cur.All(ctx, &clubs); err != nil {
		return nil, err
	}
	return clubs, nil
}

// UpdateInfo replaces the club's name and description. Authorization is the
// caller's responsibility.
func (s *Store) UpdateInfo(ctx context.Context, clubID primitive.ObjectID, name, description string) error {
	name = normalize.Name(htmlsanitize.Text(name))
	description = htmlsanitize.Text(description)
	if name == "" {
		return ErrNameRequired
	}

	res, err := s.c.UpdateOne(ctx, bson.M{"_id": clubID}, bson.M{"$set": bson.M{
		"name":        name,
		"name_ci":     text.Fold(name),
		"description": description,
		"updated_at":  time.Now(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// Join adds userID to the club's member list and mirrors the reference on
// the user document.
func (s *Store) Join(ctx context.Context, clubID, userID primitive.ObjectID) error {
	club, err := s.GetByID(ctx, clubID)
	if err != nil {
		return err
	}
	if club.HasMember(userID) {
		return ErrAlreadyMember
	}

	return txn.Run(ctx, s.db.Client(), s.log, func(ctx context.Context) error {
		if err := s.addMember(ctx, clubID, userID); err != nil {
			return err
		}
		return s.users.AddClubRefs(ctx, userID, clubID, false)
	})
}

// Leave removes userID from the club. The manager must transfer management
// before leaving.
func (s *Store) Leave(ctx context.Context, clubID, userID primitive.ObjectID) error {
	club, err := s.GetByID(ctx, clubID)
	if err != nil {
		return err
	}
	if club.IsManagedBy(userID) {
		return ErrManagerCannotLeave
	}
	if !club.HasMember(userID) {
		return ErrNotAMember
	}

	return txn.Run(ctx, s.db.Client(), s.log, func(ctx context.Context) error {
		if err := s.pullMember(ctx, clubID, userID); err != nil {
			return err
		}
		return s.users.RemoveClubRefs(ctx, userID, clubID)
	})
}

// RemoveMember evicts memberID from the club. The manager cannot be removed;
// transfer management instead.
func (s *Store) RemoveMember(ctx context.Context, clubID, memberID primitive.ObjectID) error {
	club, err := s.GetByID(ctx, clubID)
	if err != nil {
		return err
	}
	if club.IsManagedBy(memberID) {
		return ErrCannotRemoveManager
	}
	if !club.HasMember(memberID) {
		return ErrNotAMember
	}

	return txn.Run(ctx, s.db.Client(), s.log, func(ctx context.Context) error {
		if err := s.pullMember(ctx, clubID, memberID); err != nil {
			return err
		}
		return s.users.RemoveClubRefs(ctx, memberID, clubID)
	})
}

// TransferManagement reassigns the club's manager to newManagerID, who must
// already be a member. Cross-references on both user documents are updated.
func (s *Store) TransferManagement(ctx context.Context, clubID, newManagerID primitive.ObjectID) error {
	club, err := s.GetByID(ctx, clubID)
	if err != nil {
		return err
	}
	if !club.HasMember(newManagerID) {
		return ErrNotAMember
	}
	if club.IsManagedBy(newManagerID) {
		return nil // already the manager
	}
	oldManagerID := club.ManagerID

	return txn.Run(ctx, s.db.Client(), s.log, func(ctx context.Context) error {
		res, err := s.c.UpdateOne(ctx,
			bson.M{"_id": clubID, "manager_id": oldManagerID},
			bson.M{"$set": bson.M{"manager_id": newManagerID, "updated_at": time.Now()}},
		)
		if err != nil {
			return err
		}
		if res.MatchedCount == 0 {
			// Lost a race with a concurrent transfer.
			return mongo.ErrNoDocuments
		}
		return s.users.TransferManagedClub(ctx, oldManagerID, newManagerID, clubID)
	})
}

func (s *Store) addMember(ctx context.Context, clubID, userID primitive.ObjectID) error {
	_, err := s.c.UpdateOne(ctx, bson.M{"_id": clubID}, bson.M{
		"$addToSet": bson.M{"member_ids": userID},
		"$set":      bson.M{"updated_at": time.Now()},
	})
	return err
}

func (s *Store) pullMember(ctx context.Context, clubID, userID primitive.ObjectID) error {
	_, err := s.c.UpdateOne(ctx, bson.M{"_id": clubID}, bson.M{
		"$pull": bson.M{"member_ids": userID},
		"$set":  bson.M{"updated_at": time.Now()},
	})
	return err
}
