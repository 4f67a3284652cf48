package repository

import (
	"book-catalog/internal/domains/book/model"
	"book-catalog/pkg/database"
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const pgUniqueViolation = "23505"

var booksSchema = []string{
	`CREATE TABLE IF NOT EXISTS books (
		id             UUID PRIMARY KEY,
		book_name      TEXT NOT NULL,
		isbn           TEXT NOT NULL,
		price          NUMERIC NOT NULL,
		rating         DOUBLE PRECISION NOT NULL DEFAULT 0,
		quantity       INTEGER NOT NULL DEFAULT 0,
		author_name    TEXT NOT NULL,
		author_country TEXT NOT NULL DEFAULT '',
		CONSTRAINT books_book_name_key UNIQUE (book_name),
		CONSTRAINT books_isbn_key UNIQUE (isbn)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_books_author_name ON books (author_name)`,
	// Tables created with NUMERIC(12, 2) rounded prices to cents.
	`ALTER TABLE books ALTER COLUMN price TYPE NUMERIC`,
}

const bookColumns = `id, book_name, isbn, price, rating, quantity, author_name, author_country`

// postgresRepository - raw SQL with pgxpool
type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) Repository {
	return &postgresRepository{pool: pool}
}

// EnsureSchema creates the books table and its indexes in one transaction.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	return database.WithTransaction(ctx, pool, func(tx pgx.Tx) error {
		for _, stmt := range booksSchema {
			if _, err := tx.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("failed to apply books schema: %w", err)
			}
		}
		return nil
	})
}

func (r *postgresRepository) FindByISBN(ctx context.Context, isbn string) (*model.Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books WHERE isbn = $1`
	return r.findOne(ctx, query, isbn)
}

func (r *postgresRepository) FindByISBNForUpdate(ctx context.Context, isbn string) (*model.Book, error) {
	return r.FindByISBN(ctx, isbn)
}

func (r *postgresRepository) FindByBookName(ctx context.Context, bookName string) (*model.Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books WHERE book_name = $1`
	return r.findOne(ctx, query, bookName)
}

func (r *postgresRepository) FindByAuthorName(ctx context.Context, authorName string) ([]model.Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books WHERE author_name = $1 ORDER BY book_name`

	rows, err := r.pool.Query(ctx, query, authorName)
	if err != nil {
		return nil, fmt.Errorf("failed to query books by author: %w", err)
	}
	defer rows.Close()

	books := make([]model.Book, 0)
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return books, nil
}

func (r *postgresRepository) Save(ctx context.Context, book *model.Book) (*model.Book, error) {
	saved := *book
	if saved.ID == "" {
		saved.ID = uuid.NewString()
	}

	query := `
		INSERT INTO books (` + bookColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			book_name      = EXCLUDED.book_name,
			isbn           = EXCLUDED.isbn,
			price          = EXCLUDED.price,
			rating         = EXCLUDED.rating,
			quantity       = EXCLUDED.quantity,
			author_name    = EXCLUDED.author_name,
			author_country = EXCLUDED.author_country
	`

	_, err := r.pool.Exec(ctx, query,
		saved.ID, saved.BookName, saved.ISBN, priceToNumeric(saved.Price),
		saved.Rating, saved.Quantity, saved.Author.AuthorName, saved.Author.Country,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, model.NewConflict(duplicateDetail(pgErr.ConstraintName), err)
		}
		return nil, fmt.Errorf("failed to save book: %w", err)
	}

	return &saved, nil
}

func (r *postgresRepository) Delete(ctx context.Context, book *model.Book) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM books WHERE id = $1`, book.ID); err != nil {
		return fmt.Errorf("failed to delete book: %w", err)
	}
	return nil
}

func (r *postgresRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func (r *postgresRepository) findOne(ctx context.Context, query string, arg string) (*model.Book, error) {
	b, err := scanBook(r.pool.QueryRow(ctx, query, arg))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrBookNotFound
	}
	return b, err
}

func scanBook(row pgx.Row) (*model.Book, error) {
	var (
		b     model.Book
		id    uuid.UUID
		price decimal.Decimal
	)
	err := row.Scan(
		&id, &b.BookName, &b.ISBN, &price, &b.Rating, &b.Quantity,
		&b.Author.AuthorName, &b.Author.Country,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan book: %w", err)
	}
	b.ID = id.String()
	b.Price = numericToPrice(price)
	return &b, nil
}

// priceToNumeric keeps every digit of the float's shortest representation.
func priceToNumeric(price float64) decimal.Decimal {
	return decimal.NewFromFloat(price)
}

func numericToPrice(d decimal.Decimal) float64 {
	return d.InexactFloat64()
}
