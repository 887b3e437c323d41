package book

import (
	"context"
	"errors"
	"fmt"
	"time"

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

const bookColumns = `b.id, b.isbn, b.title, b.author, b.description, b.cover_url,
	b.published_date, b.page_count, b.created_by, b.created_at, b.updated_at`

// ratingJoin averages the ratings of collection entries pointing at a local book.
const ratingJoin = `LEFT JOIN (
	SELECT isbn, AVG(rating) AS avg_rating
	FROM collection_entries
	WHERE provider = 'local' AND rating IS NOT NULL
	GROUP BY isbn
) r ON r.isbn = b.id`

func orderBy(q Query) string {
	dir := "ASC"
	if q.Desc() {
		dir = "DESC"
	}
	return fmt.Sprintf("%s %s, b.title ASC, b.id ASC", sortColumns[q.Sort], dir)
}

func (r *PostgresRepo) Search(ctx context.Context, q Query) ([]Book, int, error) {
	const where = `WHERE (b.title ILIKE $1 OR b.author ILIKE $1 OR b.isbn ILIKE $1 OR b.description ILIKE $1)`
	pattern := "%" + escapeLike(q.Q) + "%"

	var total int
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	if err := r.db.QueryRow(timeoutCtx, "SELECT COUNT(*) FROM books b "+where, pattern).Scan(&total); err != nil {
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
		LIMIT $2 OFFSET $3`,
		bookColumns, join, where, orderBy(q))

	rows, err := r.db.Query(timeoutCtx, dataSQL, pattern, q.Limit, q.Offset)
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

func (r *PostgresRepo) GetByID(ctx context.Context, id string) (Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books b WHERE b.id = $1 LIMIT 1`

	var b Book
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	err := r.db.QueryRow(timeoutCtx, query, id).Scan(
		&b.ID, &b.ISBN, &b.Title, &b.Author, &b.Description, &b.Cover,
		&b.PublishedDate, &b.PageCount, &b.CreatedBy, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Book{}, ErrNotFound
		}
		return Book{}, err
	}
	return b, nil
}

func (r *PostgresRepo) Create(ctx context.Context, b *Book) error {
	const sql = `
		INSERT INTO books (id, isbn, title, author, description, cover_url,
		                   published_date, page_count, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	_, err := r.db.Exec(timeoutCtx, sql,
		b.ID, b.ISBN, b.Title, b.Author, b.Description, b.Cover,
		b.PublishedDate, b.PageCount, b.CreatedBy, b.CreatedAt, b.UpdatedAt,
	)
	return err
}

func (r *PostgresRepo) CountByCreator(ctx context.Context, userID string) (int, error) {
	var n int
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	err := r.db.QueryRow(timeoutCtx, `SELECT COUNT(*) FROM books WHERE created_by = $1`, userID).Scan(&n)
	return n, err
}
