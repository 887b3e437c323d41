package collection

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"bookshelf/internal/platform/database"
)

type SQLiteRepo struct {
	db      *sql.DB
	timeout time.Duration
}

func NewSQLiteRepo(db *sql.DB, timeout time.Duration) *SQLiteRepo {
	return &SQLiteRepo{db: db, timeout: timeout}
}

func (r *SQLiteRepo) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

func (r *SQLiteRepo) Create(ctx context.Context, e *Entry) error {
	const query = `
	INSERT INTO collection_entries (id, user_id, isbn, provider, read, rating, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	_, err := r.db.ExecContext(timeoutCtx, query, e.ID, e.UserID, e.ISBN, e.Provider, e.Read, e.Rating, e.CreatedAt, e.UpdatedAt)
	if database.IsUniqueViolation(err) {
		return ErrConflict
	}
	return err
}

func (r *SQLiteRepo) Get(ctx context.Context, userID, isbn string) (Entry, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	var e Entry
	err := r.db.QueryRowContext(timeoutCtx, selectEntry+` WHERE user_id = ? AND isbn = ?`, userID, isbn).Scan(
		&e.ID, &e.UserID, &e.ISBN, &e.Provider, &e.Read, &e.Rating, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Entry{}, ErrNotFound
		}
		return Entry{}, err
	}
	return e, nil
}

func (r *SQLiteRepo) ListByUser(ctx context.Context, userID string) ([]Entry, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.QueryContext(timeoutCtx, selectEntry+` WHERE user_id = ? ORDER BY created_at ASC, id ASC`, userID)
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

func (r *SQLiteRepo) Update(ctx context.Context, e *Entry) error {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	res, err := r.db.ExecContext(timeoutCtx,
		`UPDATE collection_entries SET read = ?, rating = ?, updated_at = ? WHERE user_id = ? AND isbn = ?`,
		e.Read, e.Rating, e.UpdatedAt, e.UserID, e.ISBN,
	)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *SQLiteRepo) Delete(ctx context.Context, userID, isbn string) error {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	res, err := r.db.ExecContext(timeoutCtx, `DELETE FROM collection_entries WHERE user_id = ? AND isbn = ?`, userID, isbn)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
