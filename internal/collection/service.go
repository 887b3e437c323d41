package collection

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"bookshelf/internal/metadata"
	"bookshelf/internal/metrics"

	"github.com/google/uuid"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns the user's entries, oldest first.
func (s *Service) List(ctx context.Context, userID string) ([]Entry, error) {
	entries, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list collection: %w", err)
	}
	if entries == nil {
		entries = []Entry{}
	}
	return entries, nil
}

// Add creates an unread, unrated entry.
func (s *Service) Add(ctx context.Context, userID, provider, isbn string) (e Entry, err error) {
	defer func() { metrics.RecordCollectionMutation("add", err) }()

	p, err := metadata.ParseProvider(provider)
	if err != nil {
		return Entry{}, ErrInvalidProvider
	}
	isbn = strings.TrimSpace(isbn)
	if isbn == "" {
		return Entry{}, ErrEmptyISBN
	}

	_, err = s.repo.Get(ctx, userID, isbn)
	switch {
	case err == nil:
		return Entry{}, ErrConflict
	case !errors.Is(err, ErrNotFound):
		return Entry{}, fmt.Errorf("lookup entry: %w", err)
	}

	now := time.Now().UTC()
	e = Entry{
		ID:        uuid.NewString(),
		UserID:    userID,
		ISBN:      isbn,
		Provider:  p.String(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err = s.repo.Create(ctx, &e); err != nil {
		if errors.Is(err, ErrConflict) {
			return Entry{}, err
		}
		return Entry{}, fmt.Errorf("create entry: %w", err)
	}
	return e, nil
}

// Update applies the non-nil fields of patch to the user's entry for isbn.
func (s *Service) Update(ctx context.Context, userID, isbn string, patch Patch) (e Entry, err error) {
	defer func() { metrics.RecordCollectionMutation("update", err) }()

	if err = patch.validate(); err != nil {
		return Entry{}, err
	}

	e, err = s.repo.Get(ctx, userID, strings.TrimSpace(isbn))
	if err != nil {
		return Entry{}, err
	}
	patch.apply(&e)
	e.UpdatedAt = time.Now().UTC()

	if err = s.repo.Update(ctx, &e); err != nil {
		return Entry{}, err
	}
	return e, nil
}

// Remove deletes the user's entry for isbn.
func (s *Service) Remove(ctx context.Context, userID, isbn string) (err error) {
	defer func() { metrics.RecordCollectionMutation("remove", err) }()
	return s.repo.Delete(ctx, userID, strings.TrimSpace(isbn))
}
