package profile

import (
	"time"

	"bookshelf/internal/collection"
)

type Stats struct {
	Books         int     `json:"books"`
	BooksRead     int     `json:"books_read"`
	RatingsCount  int     `json:"ratings_count"`
	AverageRating float64 `json:"average_rating"`
}

// Profile is the authenticated user with their raw collection entries.
type Profile struct {
	ID         string             `json:"id"`
	Username   string             `json:"username"`
	Email      string             `json:"email"`
	CreatedAt  time.Time          `json:"createdAt"`
	Stats      Stats              `json:"stats"`
	Collection []collection.Entry `json:"collection"`
}

func computeStats(entries []collection.Entry) Stats {
	s := Stats{Books: len(entries)}
	sum := 0
	for _, e := range entries {
		if e.Read {
			s.BooksRead++
		}
		if e.Rating != nil {
			s.RatingsCount++
			sum += *e.Rating
		}
	}
	if s.RatingsCount > 0 {
		s.AverageRating = float64(sum) / float64(s.RatingsCount)
	}
	return s
}
