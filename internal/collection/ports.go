package collection

import (
	"context"
)

//go:generate mockgen -source=ports.go -destination=mock_repository.go -package=collection

// Repository defines the contract for collection entry storage. Get, Update
// and Delete return ErrNotFound for a missing (userID, isbn) pair.
type Repository interface {
	Create(ctx context.Context, e *Entry) error
	Get(ctx context.Context, userID, isbn string) (Entry, error)
	ListByUser(ctx context.Context, userID string) ([]Entry, error)
	Update(ctx context.Context, e *Entry) error
	Delete(ctx context.Context, userID, isbn string) error
}
