package collection

import (
	"context"
	"errors"
	"time"

	"bookshelf/internal/platform/database"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresRepo struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

func NewPostgresRepo(db *pgxpool.Pool, timeout time.Duration) *PostgresRepo {
	return &PostgresRepo{db: db, timeout: timeout}
}

func (r *PostgresRepo) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

const selectEntry = `SELECT id, user_id, isbn, provider, read, rating, created_at, updated_at FROM collection_entries`

func (r *PostgresRepo) Create(ctx context.Context, e *Entry) error {
	const query = `
	INSERT INTO collection_entries (id, user_id, isbn, provider, read, rating, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	_, err := r.db.Exec(timeoutCtx, query, e.ID, e.UserID, e.ISBN, e.Provider, e.Read, e.Rating, e.CreatedAt, e.UpdatedAt)
	if database.IsUniqueViolation(err) {
		return ErrConflict
	}
	return err
}

func (r *PostgresRepo) Get(ctx context.Context, userID, isbn string) (Entry, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	var e Entry
	err := r.db.QueryRow(timeoutCtx, selectEntry+` WHERE user_id = $1 AND isbn = $2`, userID, isbn).Scan(
		&e.ID, &e.UserID, &e.ISBN, &e.Provider, &e.Read, &e.Rating, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Entry{}, ErrNotFound
		}
		return Entry{}, err
	}
	return e, nil
}

func (r *PostgresRepo) ListByUser(ctx context.Context, userID string) ([]Entry, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.Query(timeoutCtx, selectEntry+` WHERE user_id = $1 ORDER BY created_at ASC, id ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.UserID, &e.ISBN, &e.Provider, &e.Read, &e.Rating, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) Update(ctx context.Context, e *Entry) error {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	tag, err := r.db.Exec(timeoutCtx,
		`UPDATE collection_entries SET read = $1, rating = $2, updated_at = $3 WHERE user_id = $4 AND isbn = $5`,
		e.Read, e.Rating, e.UpdatedAt, e.UserID, e.ISBN,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepo) Delete(ctx context.Context, userID, isbn string) error {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	tag, err := r.db.Exec(timeoutCtx, `DELETE FROM collection_entries WHERE user_id = $1 AND isbn = $2`, userID, isbn)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
