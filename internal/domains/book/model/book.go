package model

import (
	"strings"
	"unicode"
)

// Book is the catalog aggregate root.
// BookName and ISBN are each unique across the catalog; the store enforces both
// constraints at save time.
type Book struct {
	ID       string  `json:"id"`
	BookName string  `json:"book_name"`
	Price    float64 `json:"price"`
	ISBN     string  `json:"isbn"`
	Rating   float64 `json:"rating"`
	Quantity int     `json:"quantity"`
	Author   Author  `json:"author"`
}

// Author is embedded in Book, it has no identity of its own.
type Author struct {
	AuthorName string `json:"author_name"`
	Country    string `json:"country,omitempty"`
}

// NormalizeISBN drops the hyphens and spaces an ISBN may be written with, so
// "978-0-441-01359-3" and "9780441013593" name the same book.
func NormalizeISBN(isbn string) string {
	return strings.Map(func(r rune) rune {
		if r == '-' || unicode.IsSpace(r) {
			return -1
		}
		return r
	}, isbn)
}

// NewBookFromRequest builds a new, unsaved Book from a create request.
// Rating always starts at 0.0 regardless of the request.
func NewBookFromRequest(req CreateBookRequest) *Book {
	b := &Book{
		BookName: req.BookName,
		Price:    req.Price,
		ISBN:     NormalizeISBN(req.ISBN),
		Quantity: req.Quantity,
		Rating:   0.0,
	}
	if req.Author != nil {
		b.Author = *req.Author
	}
	return b
}

// ApplyFieldUpdate replaces name, price and author. ISBN, quantity and rating
// are left untouched.
func (b *Book) ApplyFieldUpdate(bookName string, price float64, author Author) {
	b.BookName = bookName
	b.Price = price
	b.Author = author
}

// ApplyRating folds a newly supplied rating into the current one:
// new = (old + rating) / 2.
func (b *Book) ApplyRating(rating float64) {
	b.Rating = (b.Rating + rating) / 2
}

// ApplyQuantityDelta adds count to the stock. Negative results are kept as is.
func (b *Book) ApplyQuantityDelta(count int) {
	b.Quantity += count
}

// ToResponse converts Book to BookResponse
func (b *Book) ToResponse() *BookResponse {
	return &BookResponse{
		ID:       b.ID,
		BookName: b.BookName,
		Price:    b.Price,
		ISBN:     b.ISBN,
		Rating:   b.Rating,
		Quantity: b.Quantity,
		Author: AuthorResponse{
			AuthorName: b.Author.AuthorName,
			Country:    b.Author.Country,
		},
	}
}

// ToResponseList converts a slice of books, never returning nil.
func ToResponseList(books []Book) []BookResponse {
	out := make([]BookResponse, 0, len(books))
	for i := range books {
		out = append(out, *books[i].ToResponse())
	}
	return out
}
