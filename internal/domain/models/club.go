// internal/domain/models/club.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Club is a golf club with exactly one manager and a member list.
//
// Invariant: ManagerID is always present in MemberIDs. The club store
// maintains this on create/join/leave/remove/transfer; no single stored
// constraint enforces it.
type Club struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name        string               `bson:"name" json:"name"`
	NameCI      string               `bson:"name_ci,omitempty" json:"-"` // case/diacritic-folded for sorting
	Description string               `bson:"description,omitempty" json:"description,omitempty"`
	ManagerID   primitive.ObjectID   `bson:"manager_id" json:"manager_id"`
	MemberIDs   []primitive.ObjectID `bson:"member_ids" json:"member_ids"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// HasMember reports whether userID is in the club's member list.
func (c *Club) HasMember(userID primitive.ObjectID) bool {
	for _, id := range c.MemberIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// IsManagedBy reports whether userID is the club's current manager.
func (c *Club) IsManagedBy(userID primitive.ObjectID) bool {
	return c.ManagerID == userID
}
