package user

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

func (r *SQLiteRepo) Create(ctx context.Context, u *User) error {
	const query = `
	INSERT INTO users (id, username, email, password_hash, role, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	_, err := r.db.ExecContext(timeoutCtx, query, u.ID, u.Username, u.Email, u.Password, u.Role, u.CreatedAt, u.UpdatedAt)
	if database.IsUniqueViolation(err) {
		return ErrAlreadyExists
	}
	return err
}

func (r *SQLiteRepo) getOne(ctx context.Context, where string, arg string) (User, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	var u User
	err := r.db.QueryRowContext(timeoutCtx, selectUser+" WHERE "+where+" LIMIT 1", arg).Scan(
		&u.ID, &u.Username, &u.Email, &u.Password, &u.Role, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	return u, nil
}

func (r *SQLiteRepo) GetByID(ctx context.Context, id string) (User, error) {
	return r.getOne(ctx, "id = ?", id)
}

func (r *SQLiteRepo) GetByEmail(ctx context.Context, email string) (User, error) {
	return r.getOne(ctx, "email = ?", email)
}

func (r *SQLiteRepo) GetByUsername(ctx context.Context, username string) (User, error) {
	return r.getOne(ctx, "username = ?", username)
}
