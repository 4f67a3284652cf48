package model

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// Violation messages. Clients match on these strings, keep them stable.
const (
	MsgBookNameBlank    = "Book name can not be blank"
	MsgPricePositive    = "Price must be a positive number"
	MsgISBNBlank        = "ISBN can not be blank"
	MsgISBNInvalid      = "Invalid ISBN"
	MsgQuantityNegative = "Quantity can not be less than 0"
	MsgAuthorRequired   = "Author details are required"
	MsgAuthorNameEmpty  = "Author name can not be empty"
	MsgAuthorNameBlank  = "Author name can not be blank"
	MsgNewISBNBlank     = "New ISBN can not be blank"
	MsgOldISBNBlank     = "Old ISBN can not be blank"
	MsgRatingPositive   = "Rating must be a positive number"
	MsgCountWholeNumber = "Count must be a whole number"
	MsgMalformedBody    = "Malformed request body"
)

// ========================================
// REQUEST DTOs
// ========================================

// CreateBookRequest - POST /v1/books
type CreateBookRequest struct {
	BookName string  `json:"book_name"`
	Price    float64 `json:"price"`
	ISBN     string  `json:"isbn"`
	Quantity int     `json:"quantity"`
	Author   *Author `json:"author"`
}

func (r CreateBookRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.BookName, notBlank(MsgBookNameBlank)),
		validation.Field(&r.Price, positivePrice()...),
		validation.Field(&r.ISBN,
			notBlank(MsgISBNBlank),
			is.ISBN13.Error(MsgISBNInvalid),
		),
		validation.Field(&r.Quantity, validation.Min(0).Error(MsgQuantityNegative)),
		validation.Field(&r.Author, validation.Required.Error(MsgAuthorRequired)),
	)
}

// UpdateBookRequest - PUT /v1/books
// The ISBN identifies the book to update, it is never written.
type UpdateBookRequest struct {
	ISBN     string  `json:"isbn"`
	BookName string  `json:"book_name"`
	Price    float64 `json:"price"`
	Author   *Author `json:"author"`
}

func (r UpdateBookRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ISBN, notBlank(MsgISBNBlank)),
		validation.Field(&r.BookName, notBlank(MsgBookNameBlank)),
		validation.Field(&r.Price, positivePrice()...),
		validation.Field(&r.Author, validation.Required.Error(MsgAuthorRequired)),
	)
}

// UpdateDetailsRequest - PUT /v1/books/update/book/:isbn
// Flat author fields, as sent by the update clients.
type UpdateDetailsRequest struct {
	BookName      string  `json:"book_name"`
	Price         float64 `json:"price"`
	AuthorName    string  `json:"author_name"`
	AuthorCountry string  `json:"author_country"`
}

func (r UpdateDetailsRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.BookName, notBlank(MsgBookNameBlank)),
		validation.Field(&r.Price, positivePrice()...),
		validation.Field(&r.AuthorName, notBlank(MsgAuthorNameBlank)),
	)
}

// ToAuthor builds the replacement author value.
func (r UpdateDetailsRequest) ToAuthor() Author {
	return Author{AuthorName: r.AuthorName, Country: r.AuthorCountry}
}

// Validate is picked up by ValidateStruct for the nested author object.
func (a Author) Validate() error {
	return validation.ValidateStruct(&a,
		validation.Field(&a.AuthorName, notBlank(MsgAuthorNameEmpty)),
	)
}

// ========================================
// RESPONSE DTOs
// ========================================

type AuthorResponse struct {
	AuthorName string `json:"author_name"`
	Country    string `json:"country,omitempty"`
}

type BookResponse struct {
	ID       string         `json:"id"`
	BookName string         `json:"book_name"`
	Price    float64        `json:"price"`
	ISBN     string         `json:"isbn"`
	Rating   float64        `json:"rating"`
	Quantity int            `json:"quantity"`
	Author   AuthorResponse `json:"author"`
}
