package response

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// ErrorMessage is one entry of an error body.
type ErrorMessage struct {
	Message  string `json:"message"`
	MoreInfo string `json:"moreInfo"`
	Status   int    `json:"status"`
}

// ExceptionResponse is the body of every failed request.
type ExceptionResponse struct {
	Errors []ErrorMessage `json:"errors"`
}

// fallbackBody is written when the real error body cannot be encoded.
const fallbackBody = `{"errors":[{"message":"Internal Server Error","moreInfo":"Internal Server Error","status":500}]}`

// Errors writes the error envelope and aborts the chain.
func Errors(c *gin.Context, status int, entries []ErrorMessage) {
	if entries == nil {
		entries = []ErrorMessage{}
	}
	body, err := json.Marshal(ExceptionResponse{Errors: entries})
	if err != nil {
		log.Error().Err(err).Msg("Failed to encode error response")
		status = http.StatusInternalServerError
		body = []byte(fallbackBody)
	}
	c.Data(status, "application/json; charset=utf-8", body)
	c.Abort()
}

// Error writes a single-entry error envelope.
func Error(c *gin.Context, status int, message, moreInfo string) {
	Errors(c, status, []ErrorMessage{{Message: message, MoreInfo: moreInfo, Status: status}})
}

// Success responses
func Success(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, data)
}

// Created answers 201 with Location pointing at the request path.
func Created(c *gin.Context, data interface{}) {
	c.Header("Location", c.Request.URL.Path)
	c.JSON(http.StatusCreated, data)
}

// Empty answers with a status and no body.
func Empty(c *gin.Context, statusCode int) {
	c.Status(statusCode)
}

// Common error responses
func InternalServerError(c *gin.Context, moreInfo string) {
	Error(c, http.StatusInternalServerError, "Internal Server Error", moreInfo)
}

func TooManyRequests(c *gin.Context, moreInfo string) {
	Error(c, http.StatusTooManyRequests, "Too Many Requests", moreInfo)
}

func ServiceUnavailable(c *gin.Context, moreInfo string) {
	Error(c, http.StatusServiceUnavailable, "Service Unavailable", moreInfo)
}
