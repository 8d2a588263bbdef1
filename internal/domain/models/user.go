// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is an account holder. A user may carry a local password credential,
// an external provider identity (Google/Facebook), or both.
//
// NOTE:
//   - PasswordHash is never serialized to JSON; social-only accounts have
//     no password hash at all.
//   - ClubIDs/ManagedClubIDs mirror clubs.member_ids/manager_id and are kept
//     in sync by the club store on every membership mutation.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	NameCI       string             `bson:"name_ci,omitempty" json:"-"` // case/diacritic-folded for sorting
	Email        string             `bson:"email" json:"email"`         // unique, normalized lowercase
	PasswordHash string             `bson:"password_hash,omitempty" json:"-"`
	GoogleID     string             `bson:"google_id,omitempty" json:"-"`
	FacebookID   string             `bson:"facebook_id,omitempty" json:"-"`

	ClubIDs        []primitive.ObjectID `bson:"club_ids,omitempty" json:"club_ids,omitempty"`
	ManagedClubIDs []primitive.ObjectID `bson:"managed_club_ids,omitempty" json:"managed_club_ids,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// HasPassword reports whether the user can log in with a local credential.
func (u *User) HasPassword() bool { return u.PasswordHash != "" }

// IsMemberOf reports whether clubID appears in the user's club list.
func (u *User) IsMemberOf(clubID primitive.ObjectID) bool {
	for _, id := range u.ClubIDs {
		if id == clubID {
			return true
		}
	}
	return false
}
