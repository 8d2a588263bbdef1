// internal/domain/models/score.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MaxHoles is the most holes a single round may record.
const MaxHoles = 18

// Score is one recorded round for a user.
//
// TotalScore and HolesPlayed are derived from HoleScores and recomputed by
// the score store on every create/update; caller-submitted totals are never
// trusted.
type Score struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserID      primitive.ObjectID  `bson:"user_id" json:"user_id"`
	Date        time.Time           `bson:"date" json:"date"`
	HoleScores  []int               `bson:"hole_scores" json:"hole_scores"`
	TotalScore  int                 `bson:"total_score" json:"total_score"`
	HolesPlayed int                 `bson:"holes_played" json:"holes_played"`
	ClubID      *primitive.ObjectID `bson:"club_id,omitempty" json:"club_id,omitempty"`
	Notes       string              `bson:"notes,omitempty" json:"notes,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// ValidHoleCount reports whether n hole entries make a recordable round.
func ValidHoleCount(n int) bool { return n >= 1 && n <= MaxHoles }

// SumHoleScores totals a hole sequence.
func SumHoleScores(holes []int) int {
	total := 0
	for _, h := range holes {
		total += h
	}
	return total
}
