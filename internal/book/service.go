package book

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Service provides book-related business logic.
type Service struct {
	repo       Repository
	maxPerUser int
}

// NewService creates a new book service. maxPerUser <= 0 disables the
// per-user creation cap.
func NewService(repo Repository, maxPerUser int) *Service {
	return &Service{repo: repo, maxPerUser: maxPerUser}
}

// Search returns one page of local books matching q.
func (s *Service) Search(ctx context.Context, q Query) (Page, error) {
	q = q.Normalize()
	if len([]rune(q.Q)) < MinQueryLength {
		return Page{}, ErrQueryTooShort
	}
	books, total, err := s.repo.Search(ctx, q)
	if err != nil {
		return Page{}, fmt.Errorf("search books: %w", err)
	}
	return newPage(books, total, q), nil
}

// GetByID returns a book by its id.
func (s *Service) GetByID(ctx context.Context, id string) (Book, error) {
	return s.repo.GetByID(ctx, id)
}

// Create adds a book owned by userID, enforcing the per-user cap.
func (s *Service) Create(ctx context.Context, userID string, cmd CreateCommand) (Book, error) {
	if s.maxPerUser > 0 {
		n, err := s.repo.CountByCreator(ctx, userID)
		if err != nil {
			return Book{}, fmt.Errorf("count books: %w", err)
		}
		if n >= s.maxPerUser {
			return Book{}, ErrLimitReached
		}
	}

	now := time.Now().UTC()
	b := &Book{
		ID:            uuid.NewString(),
		ISBN:          strings.NewReplacer("-", "", " ", "").Replace(cmd.ISBN),
		Title:         strings.TrimSpace(cmd.Title),
		Author:        strings.TrimSpace(cmd.Author),
		Description:   strings.TrimSpace(cmd.Description),
		Cover:         strings.TrimSpace(cmd.Cover),
		PublishedDate: strings.TrimSpace(cmd.PublishedDate),
		PageCount:     cmd.PageCount,
		CreatedBy:     userID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.repo.Create(ctx, b); err != nil {
		return Book{}, fmt.Errorf("create book: %w", err)
	}
	return *b, nil
}
