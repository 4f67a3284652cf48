package repository

import (
	"book-catalog/internal/domains/book/model"
	"context"
	"errors"
)

// ErrBookNotFound is returned by the single-book lookups when nothing matches.
var ErrBookNotFound = errors.New("book not found")

// Conflict details, one per unique field.
const (
	DuplicateBookName = "Book name already exists"
	DuplicateISBN     = "ISBN already exists"
	DuplicateBook     = "Book already exists"
)

// Repository - data access for the books collection.
// Save inserts when book.ID is empty and replaces the stored book otherwise.
// Unique violations come back as a conflict *model.BookError.
type Repository interface {
	FindByISBN(ctx context.Context, isbn string) (*model.Book, error)
	// FindByISBNForUpdate always reads the store, never a cache. Mutations
	// start from it so they never build on a stale copy.
	FindByISBNForUpdate(ctx context.Context, isbn string) (*model.Book, error)
	FindByBookName(ctx context.Context, bookName string) (*model.Book, error)
	FindByAuthorName(ctx context.Context, authorName string) ([]model.Book, error)
	Save(ctx context.Context, book *model.Book) (*model.Book, error)
	Delete(ctx context.Context, book *model.Book) error
	Ping(ctx context.Context) error
}

// duplicateDetail picks the conflict detail from a driver message or index name.
func duplicateDetail(text string) string {
	switch {
	case containsAny(text, "isbn"):
		return DuplicateISBN
	case containsAny(text, "book_name", "bookname"):
		return DuplicateBookName
	default:
		return DuplicateBook
	}
}
