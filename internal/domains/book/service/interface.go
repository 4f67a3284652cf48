package service

import (
	"book-catalog/internal/domains/book/model"
	"context"
)

// ServiceInterface - catalog operations.
// Lookups fail with a not-found BookError, writes may also fail with a
// validation or conflict BookError.
type ServiceInterface interface {
	CreateBook(ctx context.Context, req model.CreateBookRequest) (*model.BookResponse, error)
	GetByBookName(ctx context.Context, bookName string) (*model.BookResponse, error)
	GetByAuthorName(ctx context.Context, authorName string) ([]model.BookResponse, error)
	GetByISBN(ctx context.Context, isbn string) (*model.BookResponse, error)
	DeleteBook(ctx context.Context, isbn string) error

	UpdateBook(ctx context.Context, req model.UpdateBookRequest) (*model.BookResponse, error)
	UpdateBookDetails(ctx context.Context, isbn string, req model.UpdateDetailsRequest) (*model.BookResponse, error)
	UpdateISBN(ctx context.Context, newISBN, oldISBN string) (*model.BookResponse, error)
	UpdateRating(ctx context.Context, rating float64, isbn string) (*model.BookResponse, error)
	UpdateQuantity(ctx context.Context, count int, isbn string) (*model.BookResponse, error)

	Health(ctx context.Context) error
}
