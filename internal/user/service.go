package user

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Register creates an account. Email and username must both be unused.
func (s *Service) Register(ctx context.Context, email, username, hashedPassword string) (User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	username = strings.TrimSpace(username)

	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return User{}, ErrAlreadyExists
	} else if !errors.Is(err, ErrNotFound) {
		return User{}, err
	}
	if _, err := s.repo.GetByUsername(ctx, username); err == nil {
		return User{}, ErrAlreadyExists
	} else if !errors.Is(err, ErrNotFound) {
		return User{}, err
	}

	now := time.Now().UTC()
	newUser := &User{
		ID:        uuid.NewString(),
		Email:     email,
		Username:  username,
		Password:  hashedPassword,
		Role:      RoleUser,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, newUser); err != nil {
		return User{}, err
	}

	return *newUser, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (User, error) {
	return s.repo.GetByID(ctx, id)
}

// GetByIdentifier looks a user up by email when identifier contains "@",
// otherwise by username.
func (s *Service) GetByIdentifier(ctx context.Context, identifier string) (User, error) {
	identifier = strings.TrimSpace(identifier)
	if strings.Contains(identifier, "@") {
		return s.repo.GetByEmail(ctx, strings.ToLower(identifier))
	}
	return s.repo.GetByUsername(ctx, identifier)
}
