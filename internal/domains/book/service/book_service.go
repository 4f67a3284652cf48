package service

import (
	"book-catalog/internal/domains/book/model"
	"book-catalog/internal/domains/book/repository"
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Lookup fields reported in not-found errors.
const (
	FieldISBN       = "isbn"
	FieldBookName   = "book_name"
	FieldAuthorName = "author_name"
)

type BookService struct {
	repo   repository.Repository
	tracer trace.Tracer
}

// NewService - Constructor with DI
func NewService(repo repository.Repository) ServiceInterface {
	return &BookService{
		repo:   repo,
		tracer: otel.Tracer("book-catalog/book"),
	}
}

// CreateBook validates the request and stores a new book with a zero rating.
// Duplicate names or ISBNs surface as a conflict from the store.
func (s *BookService) CreateBook(ctx context.Context, req model.CreateBookRequest) (resp *model.BookResponse, err error) {
	ctx, span := s.tracer.Start(ctx, "book.create", trace.WithAttributes(attribute.String("book.isbn", req.ISBN)))
	defer func() { endSpan(span, err) }()

	if err := model.ValidateRequest(req); err != nil {
		return nil, err
	}

	log.Info().Str("isbn", req.ISBN).Str("book_name", req.BookName).Msg("Creating book")

	saved, err := s.save(ctx, model.NewBookFromRequest(req))
	if err != nil {
		return nil, err
	}
	return saved.ToResponse(), nil
}

func (s *BookService) GetByBookName(ctx context.Context, bookName string) (resp *model.BookResponse, err error) {
	ctx, span := s.tracer.Start(ctx, "book.get_by_name", trace.WithAttributes(attribute.String("book.name", bookName)))
	defer func() { endSpan(span, err) }()

	book, err := s.repo.FindByBookName(ctx, bookName)
	if err != nil {
		return nil, lookupError(err, FieldBookName, bookName)
	}
	return book.ToResponse(), nil
}

// GetByAuthorName treats an empty result as not found.
func (s *BookService) GetByAuthorName(ctx context.Context, authorName string) (resp []model.BookResponse, err error) {
	ctx, span := s.tracer.Start(ctx, "book.get_by_author", trace.WithAttributes(attribute.String("author.name", authorName)))
	defer func() { endSpan(span, err) }()

	books, err := s.repo.FindByAuthorName(ctx, authorName)
	if err != nil {
		return nil, fmt.Errorf("find books by author: %w", err)
	}
	if len(books) == 0 {
		return nil, model.NewNotFound(FieldAuthorName, authorName)
	}

	span.SetAttributes(attribute.Int("books.found", len(books)))
	return model.ToResponseList(books), nil
}

func (s *BookService) GetByISBN(ctx context.Context, isbn string) (resp *model.BookResponse, err error) {
	ctx, span := s.tracer.Start(ctx, "book.get_by_isbn", trace.WithAttributes(attribute.String("book.isbn", isbn)))
	defer func() { endSpan(span, err) }()

	book, err := s.findByISBN(ctx, isbn)
	if err != nil {
		return nil, err
	}
	return book.ToResponse(), nil
}

func (s *BookService) DeleteBook(ctx context.Context, isbn string) (err error) {
	ctx, span := s.tracer.Start(ctx, "book.delete", trace.WithAttributes(attribute.String("book.isbn", isbn)))
	defer func() { endSpan(span, err) }()

	book, err := s.findForUpdate(ctx, isbn)
	if err != nil {
		return err
	}

	log.Info().Str("isbn", isbn).Str("id", book.ID).Msg("Deleting book")

	if err := s.repo.Delete(ctx, book); err != nil {
		return fmt.Errorf("delete book %s: %w", isbn, err)
	}
	return nil
}

func (s *BookService) Health(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

// ========================================
// HELPERS
// ========================================

func (s *BookService) findByISBN(ctx context.Context, isbn string) (*model.Book, error) {
	isbn = model.NormalizeISBN(isbn)
	book, err := s.repo.FindByISBN(ctx, isbn)
	if err != nil {
		return nil, lookupError(err, FieldISBN, isbn)
	}
	return book, nil
}

// findForUpdate is findByISBN for mutations, it reads past any cache.
func (s *BookService) findForUpdate(ctx context.Context, isbn string) (*model.Book, error) {
	isbn = model.NormalizeISBN(isbn)
	book, err := s.repo.FindByISBNForUpdate(ctx, isbn)
	if err != nil {
		return nil, lookupError(err, FieldISBN, isbn)
	}
	return book, nil
}

func (s *BookService) save(ctx context.Context, book *model.Book) (*model.Book, error) {
	saved, err := s.repo.Save(ctx, book)
	if err != nil {
		var be *model.BookError
		if errors.As(err, &be) {
			return nil, err
		}
		return nil, fmt.Errorf("save book %s: %w", book.ISBN, err)
	}
	return saved, nil
}

func lookupError(err error, field, key string) error {
	if errors.Is(err, repository.ErrBookNotFound) {
		return model.NewNotFound(field, key)
	}
	return fmt.Errorf("find book by %s: %w", field, err)
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
