package service

import (
	"book-catalog/internal/domains/book/model"
	"context"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Every update is lookup by ISBN, change in memory, save. The lookup always
// reads the store. There is no version check so two concurrent updates of one
// book keep the last write.

// UpdateBook replaces name, price and author of the book identified by req.ISBN.
func (s *BookService) UpdateBook(ctx context.Context, req model.UpdateBookRequest) (resp *model.BookResponse, err error) {
	ctx, span := s.tracer.Start(ctx, "book.update", trace.WithAttributes(attribute.String("book.isbn", req.ISBN)))
	defer func() { endSpan(span, err) }()

	if err := model.ValidateRequest(req); err != nil {
		return nil, err
	}

	var author model.Author
	if req.Author != nil {
		author = *req.Author
	}
	return s.applyFieldUpdate(ctx, req.ISBN, req.BookName, req.Price, author)
}

// UpdateBookDetails is UpdateBook for the flat payload of the update routes.
func (s *BookService) UpdateBookDetails(ctx context.Context, isbn string, req model.UpdateDetailsRequest) (resp *model.BookResponse, err error) {
	ctx, span := s.tracer.Start(ctx, "book.update_details", trace.WithAttributes(attribute.String("book.isbn", isbn)))
	defer func() { endSpan(span, err) }()

	if err := model.ValidateISBNParam(isbn); err != nil {
		return nil, err
	}
	if err := model.ValidateRequest(req); err != nil {
		return nil, err
	}

	return s.applyFieldUpdate(ctx, isbn, req.BookName, req.Price, req.ToAuthor())
}

func (s *BookService) UpdateISBN(ctx context.Context, newISBN, oldISBN string) (resp *model.BookResponse, err error) {
	ctx, span := s.tracer.Start(ctx, "book.update_isbn", trace.WithAttributes(
		attribute.String("book.isbn", oldISBN),
		attribute.String("book.new_isbn", newISBN),
	))
	defer func() { endSpan(span, err) }()

	if err := model.ValidateISBNChangeParams(newISBN, oldISBN); err != nil {
		return nil, err
	}

	log.Info().Str("old_isbn", oldISBN).Str("new_isbn", newISBN).Msg("Updating book ISBN")

	book, err := s.findForUpdate(ctx, oldISBN)
	if err != nil {
		return nil, err
	}
	book.ISBN = model.NormalizeISBN(newISBN)

	saved, err := s.save(ctx, book)
	if err != nil {
		return nil, err
	}
	return saved.ToResponse(), nil
}

// UpdateRating folds rating into the stored one: (old + rating) / 2.
func (s *BookService) UpdateRating(ctx context.Context, rating float64, isbn string) (resp *model.BookResponse, err error) {
	ctx, span := s.tracer.Start(ctx, "book.update_rating", trace.WithAttributes(
		attribute.String("book.isbn", isbn),
		attribute.Float64("book.rating_input", rating),
	))
	defer func() { endSpan(span, err) }()

	log.Info().Str("isbn", isbn).Float64("rating", rating).Msg("Updating book rating")

	book, err := s.findForUpdate(ctx, isbn)
	if err != nil {
		return nil, err
	}
	book.ApplyRating(rating)

	saved, err := s.save(ctx, book)
	if err != nil {
		return nil, err
	}
	return saved.ToResponse(), nil
}

// UpdateQuantity adds count to the stock, count may be negative.
func (s *BookService) UpdateQuantity(ctx context.Context, count int, isbn string) (resp *model.BookResponse, err error) {
	ctx, span := s.tracer.Start(ctx, "book.update_quantity", trace.WithAttributes(
		attribute.String("book.isbn", isbn),
		attribute.Int("book.quantity_delta", count),
	))
	defer func() { endSpan(span, err) }()

	log.Info().Str("isbn", isbn).Int("count", count).Msg("Updating book quantity")

	book, err := s.findForUpdate(ctx, isbn)
	if err != nil {
		return nil, err
	}
	book.ApplyQuantityDelta(count)

	saved, err := s.save(ctx, book)
	if err != nil {
		return nil, err
	}
	return saved.ToResponse(), nil
}

func (s *BookService) applyFieldUpdate(ctx context.Context, isbn, bookName string, price float64, author model.Author) (*model.BookResponse, error) {
	log.Info().Str("isbn", isbn).Str("book_name", bookName).Msg("Updating book details")

	book, err := s.findForUpdate(ctx, isbn)
	if err != nil {
		return nil, err
	}
	book.ApplyFieldUpdate(bookName, price, author)

	saved, err := s.save(ctx, book)
	if err != nil {
		return nil, err
	}
	return saved.ToResponse(), nil
}
