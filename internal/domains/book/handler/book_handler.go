package handler

import (
	"net/http"

	"book-catalog/internal/domains/book/model"
	service "book-catalog/internal/domains/book/service"
	"book-catalog/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// Handler - HTTP Handler for the books resource
type Handler struct {
	service service.ServiceInterface
}

// NewHandler - Constructor with DI
func NewHandler(service service.ServiceInterface) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts every book route on the /books group.
func (h *Handler) RegisterRoutes(books *gin.RouterGroup) {
	books.POST("", h.CreateBook)
	books.PUT("", h.UpdateBook)
	books.GET("/book/:bookName", h.GetByBookName)
	books.GET("/author/:authorName", h.GetByAuthorName)
	books.GET("/isbn/:isbn", h.GetByISBN)
	books.DELETE("/:isbn", h.DeleteBook)

	update := books.Group("/update")
	{
		update.PUT("/book/:isbn", h.UpdateBookDetails)
		update.PATCH("/isbn/:newIsbn/:oldIsbn", h.UpdateISBN)
		update.PATCH("/rating/:rating/:isbn", h.UpdateRating)
		update.PATCH("/quantity/:count/:isbn", h.UpdateQuantity)
		update.PATCH("/quantity/:count", h.UpdateQuantity)
	}
}

// CreateBook - POST /v1/books
func (h *Handler) CreateBook(c *gin.Context) {
	var req model.CreateBookRequest
	if !bindJSON(c, &req) {
		return
	}

	book, err := h.service.CreateBook(c.Request.Context(), req)
	if model.HandleBookError(c, err) {
		return
	}

	response.Created(c, book)
}

// GetByBookName - GET /v1/books/book/:bookName
func (h *Handler) GetByBookName(c *gin.Context) {
	book, err := h.service.GetByBookName(c.Request.Context(), c.Param("bookName"))
	if model.HandleBookError(c, err) {
		return
	}
	response.Success(c, http.StatusOK, book)
}

// GetByAuthorName - GET /v1/books/author/:authorName
func (h *Handler) GetByAuthorName(c *gin.Context) {
	books, err := h.service.GetByAuthorName(c.Request.Context(), c.Param("authorName"))
	if model.HandleBookError(c, err) {
		return
	}
	response.Success(c, http.StatusOK, books)
}

// GetByISBN - GET /v1/books/isbn/:isbn
func (h *Handler) GetByISBN(c *gin.Context) {
	isbn := c.Param("isbn")
	if model.HandleBookError(c, model.ValidateISBNParam(isbn)) {
		return
	}

	book, err := h.service.GetByISBN(c.Request.Context(), isbn)
	if model.HandleBookError(c, err) {
		return
	}
	response.Success(c, http.StatusOK, book)
}

// DeleteBook - DELETE /v1/books/:isbn
// Answers 200 with an empty body.
func (h *Handler) DeleteBook(c *gin.Context) {
	isbn := c.Param("isbn")
	if model.HandleBookError(c, model.ValidateISBNParam(isbn)) {
		return
	}

	if model.HandleBookError(c, h.service.DeleteBook(c.Request.Context(), isbn)) {
		return
	}
	response.Empty(c, http.StatusOK)
}

// bindJSON decodes the body into dst and answers 400 when it cannot.
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		log.Debug().Err(err).Str("path", c.Request.URL.Path).Msg("Malformed request body")
		model.HandleBookError(c, model.NewValidationFailed([]string{model.MsgMalformedBody}))
		return false
	}
	return true
}
