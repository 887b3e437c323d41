package client

import (
	"bookshelf/internal/collection"
	"bookshelf/internal/metadata"
)

// Item is a collection entry enriched with resolved metadata.
type Item struct {
	collection.Entry
	BookData metadata.CanonicalBook `json:"bookData"`
}

// Profile is the client side view of the user and their collection.
type Profile struct {
	ID         string `json:"id"`
	Username   string `json:"username"`
	Email      string `json:"email"`
	Collection []Item `json:"collection"`
}

func emptyProfile() Profile {
	return Profile{Collection: []Item{}}
}

// Find returns the item for isbn.
func (p Profile) Find(isbn string) (Item, bool) {
	for _, it := range p.Collection {
		if it.ISBN == isbn {
			return it, true
		}
	}
	return Item{}, false
}

func (p Profile) clone() Profile {
	out := p
	out.Collection = make([]Item, len(p.Collection))
	for i, it := range p.Collection {
		out.Collection[i] = it.clone()
	}
	return out
}

func (it Item) clone() Item {
	if it.Rating != nil {
		r := *it.Rating
		it.Rating = &r
	}
	authors := make([]metadata.Author, len(it.BookData.Authors))
	copy(authors, it.BookData.Authors)
	it.BookData.Authors = authors
	return it
}
