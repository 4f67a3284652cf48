package handler

import (
	"net/http"

	"book-catalog/internal/domains/book/model"
	"book-catalog/internal/shared/response"

	"github.com/gin-gonic/gin"
)

// UpdateBook - PUT /v1/books
// The ISBN in the body selects the book.
func (h *Handler) UpdateBook(c *gin.Context) {
	var req model.UpdateBookRequest
	if !bindJSON(c, &req) {
		return
	}

	book, err := h.service.UpdateBook(c.Request.Context(), req)
	if model.HandleBookError(c, err) {
		return
	}
	response.Success(c, http.StatusOK, book)
}

// UpdateBookDetails - PUT /v1/books/update/book/:isbn
func (h *Handler) UpdateBookDetails(c *gin.Context) {
	var req model.UpdateDetailsRequest
	if !bindJSON(c, &req) {
		return
	}

	book, err := h.service.UpdateBookDetails(c.Request.Context(), c.Param("isbn"), req)
	if model.HandleBookError(c, err) {
		return
	}
	response.Success(c, http.StatusOK, book)
}

// UpdateISBN - PATCH /v1/books/update/isbn/:newIsbn/:oldIsbn
func (h *Handler) UpdateISBN(c *gin.Context) {
	book, err := h.service.UpdateISBN(c.Request.Context(), c.Param("newIsbn"), c.Param("oldIsbn"))
	if model.HandleBookError(c, err) {
		return
	}
	response.Success(c, http.StatusOK, book)
}

// UpdateRating - PATCH /v1/books/update/rating/:rating/:isbn
func (h *Handler) UpdateRating(c *gin.Context) {
	isbn := c.Param("isbn")
	rating, err := model.ParseRatingParams(c.Param("rating"), isbn)
	if model.HandleBookError(c, err) {
		return
	}

	book, err := h.service.UpdateRating(c.Request.Context(), rating, isbn)
	if model.HandleBookError(c, err) {
		return
	}
	response.Success(c, http.StatusOK, book)
}

// UpdateQuantity - PATCH /v1/books/update/quantity/:count/:isbn
// The ISBN may also come as ?isbn= on /update/quantity/:count.
func (h *Handler) UpdateQuantity(c *gin.Context) {
	isbn := c.Param("isbn")
	if isbn == "" {
		isbn = c.Query("isbn")
	}

	count, err := model.ParseQuantityParams(c.Param("count"), isbn)
	if model.HandleBookError(c, err) {
		return
	}

	book, err := h.service.UpdateQuantity(c.Request.Context(), count, isbn)
	if model.HandleBookError(c, err) {
		return
	}
	response.Success(c, http.StatusOK, book)
}
