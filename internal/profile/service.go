package profile

import (
	"context"
	"fmt"

	"bookshelf/internal/collection"
	"bookshelf/internal/user"
)

type Service struct {
	userService       *user.Service
	collectionService *collection.Service
}

func NewService(userService *user.Service, collectionService *collection.Service) *Service {
	return &Service{
		userService:       userService,
		collectionService: collectionService,
	}
}

func (s *Service) Get(ctx context.Context, userID string) (Profile, error) {
	u, err := s.userService.GetByID(ctx, userID)
	if err != nil {
		return Profile{}, err
	}

	entries, err := s.collectionService.List(ctx, userID)
	if err != nil {
		return Profile{}, fmt.Errorf("load collection: %w", err)
	}

	return Profile{
		ID:         u.ID,
		Username:   u.Username,
		Email:      u.Email,
		CreatedAt:  u.CreatedAt,
		Stats:      computeStats(entries),
		Collection: entries,
	}, nil
}
