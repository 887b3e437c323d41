package collection

import (
	"errors"
	"time"
)

var (
	ErrNotFound        = errors.New("collection entry not found")
	ErrConflict        = errors.New("book already in collection")
	ErrInvalidRating   = errors.New("rating must be between 0 and 5")
	ErrInvalidProvider = errors.New("unknown provider")
	ErrEmptyISBN       = errors.New("isbn is required")
)

const (
	MinRating = 0
	MaxRating = 5
)

// Entry is one book in a user's collection. At most one entry exists per
// (UserID, ISBN).
type Entry struct {
	ID        string    `json:"id" bson:"_id"`
	UserID    string    `json:"userId" bson:"userId"`
	ISBN      string    `json:"isbn" bson:"isbn"`
	Provider  string    `json:"provider" bson:"provider"`
	Read      bool      `json:"read" bson:"read"`
	Rating    *int      `json:"rating,omitempty" bson:"rating,omitempty"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// Patch lists the fields of an update; nil fields are left unchanged.
type Patch struct {
	Read   *bool `json:"read"`
	Rating *int  `json:"rating"`
}

func (p Patch) validate() error {
	if p.Rating != nil && (*p.Rating < MinRating || *p.Rating > MaxRating) {
		return ErrInvalidRating
	}
	return nil
}

func (p Patch) apply(e *Entry) {
	if p.Read != nil {
		e.Read = *p.Read
	}
	if p.Rating != nil {
		r := *p.Rating
		e.Rating = &r
	}
}
