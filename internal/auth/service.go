package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"bookshelf/internal/platform/crypto"
	"bookshelf/internal/user"

	"github.com/google/uuid"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrUserExists   = errors.New("user already exists")
)

// Session is what register and login hand back to the client.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      user.User `json:"user"`
}

type Service struct {
	secret      string
	tokenTTL    time.Duration
	userService *user.Service
}

func NewService(secret string, tokenTTL time.Duration, userService *user.Service) *Service {
	return &Service{
		secret:      secret,
		tokenTTL:    tokenTTL,
		userService: userService,
	}
}

// Register creates the account and logs it in.
func (s *Service) Register(ctx context.Context, username, email, password string) (Session, error) {
	hashed, err := crypto.HashPassword(password)
	if err != nil {
		return Session{}, err
	}

	u, err := s.userService.Register(ctx, email, username, hashed)
	if err != nil {
		if errors.Is(err, user.ErrAlreadyExists) {
			return Session{}, ErrUserExists
		}
		return Session{}, err
	}
	return s.issue(u)
}

// Login authenticates by email or username.
func (s *Service) Login(ctx context.Context, identifier, password string) (Session, error) {
	u, err := s.userService.GetByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			// compare anyway so unknown users cost the same as bad passwords
			crypto.VerifyPassword(dummyHash(), password)
			return Session{}, ErrUnauthorized
		}
		return Session{}, err
	}
	if !crypto.VerifyPassword(u.Password, password) {
		return Session{}, ErrUnauthorized
	}
	return s.issue(u)
}

func (s *Service) issue(u user.User) (Session, error) {
	tok, err := crypto.GenerateToken(s.secret, u.ID, u.Role, s.tokenTTL)
	if err != nil {
		return Session{}, err
	}
	return Session{Token: tok.Value, ExpiresAt: tok.ExpiresAt, User: u}, nil
}

var dummyHash = sync.OnceValue(func() string {
	h, _ := crypto.HashPassword(uuid.NewString())
	return h
})
