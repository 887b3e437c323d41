package book

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
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

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func (r *SQLiteRepo) Search(ctx context.Context, q Query) ([]Book, int, error) {
	const where = `WHERE (b.title LIKE ? ESCAPE '\' OR b.author LIKE ? ESCAPE '\' OR b.isbn LIKE ? ESCAPE '\' OR b.description LIKE ? ESCAPE '\')`
	pattern := "%" + escapeLike(q.Q) + "%"
	args := []any{pattern, pattern, pattern, pattern}

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	var total int
	if err := r.db.QueryRowContext(timeoutCtx, "SELECT COUNT(*) FROM books b "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	join := ""
	if q.Sort == SortRating {
		join = ratingJoin
	}
	dataSQL := fmt.Sprintf(`
		SELECT %s
		FROM books b
		%s
		%s
		ORDER BY %s
		LIMIT ? OFFSET ?`,
		bookColumns, join, where, orderBy(q))

	rows, err := r.db.QueryContext(timeoutCtx, dataSQL, append(args, q.Limit, q.Offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Book
	for rows.Next() {
		var b Book
		if err := rows.Scan(
			&b.ID, &b.ISBN, &b.Title, &b.Author, &b.Description, &b.Cover,
			&b.PublishedDate, &b.PageCount, &b.CreatedBy, &b.CreatedAt, &b.UpdatedAt,
		); err != nil {
			return nil, 0, err
		}
		out = append(out, b)
	}
	return out, total, rows.Err()
}

func (r *SQLiteRepo) GetByID(ctx context.Context, id string) (Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books b WHERE b.id = ? LIMIT 1`

	var b Book
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	err := r.db.QueryRowContext(timeoutCtx, query, id).Scan(
		&b.ID, &b.ISBN, &b.Title, &b.Author, &b.Description, &b.Cover,
		&b.PublishedDate, &b.PageCount, &b.CreatedBy, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Book{}, ErrNotFound
		}
		return Book{}, err
	}
	return b, nil
}

func (r *SQLiteRepo) Create(ctx context.Context, b *Book) error {
	const query = `
		INSERT INTO books (id, isbn, title, author, description, cover_url,
		                   published_date, page_count, created_by, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	_, err := r.db.ExecContext(timeoutCtx, query,
		b.ID, b.ISBN, b.Title, b.Author, b.Description, b.Cover,
		b.PublishedDate, b.PageCount, b.CreatedBy, b.CreatedAt, b.UpdatedAt,
	)
	return err
}

func (r *SQLiteRepo) CountByCreator(ctx context.Context, userID string) (int, error) {
	var n int
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	err := r.db.QueryRowContext(timeoutCtx, `SELECT COUNT(*) FROM books WHERE created_by = ?`, userID).Scan(&n)
	return n, err
}
