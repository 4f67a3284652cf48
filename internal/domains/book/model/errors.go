package model

import (
	"book-catalog/internal/shared/response"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// Response messages shared with existing clients.
const (
	MsgNoBookExists        = "No book exists for: "
	MsgInternalServerError = "Internal Server Error"
	MsgInvalidParameter    = "Invalid Mandatory Parameter"
)

// ErrorKind is the closed set of failures the book domain reports.
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindValidation
	KindConflict
	KindNotFound
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindNotFound:
		return "not_found"
	default:
		return "internal"
	}
}

// BookError carries one failure kind plus the data the classifier needs for it.
//
//	Validation: Messages
//	Conflict:   Detail
//	NotFound:   Field, Key
//	Internal:   Err
type BookError struct {
	Kind     ErrorKind
	Messages []string
	Detail   string
	Field    string
	Key      string
	Err      error
}

func (e *BookError) Error() string {
	switch e.Kind {
	case KindValidation:
		return "validation failed: " + strings.Join(e.Messages, "; ")
	case KindConflict:
		return "conflict: " + e.Detail
	case KindNotFound:
		return fmt.Sprintf("book not found by %s: %s", e.Field, e.Key)
	default:
		if e.Err != nil {
			return e.Err.Error()
		}
		return "internal error"
	}
}

func (e *BookError) Unwrap() error { return e.Err }

func NewValidationFailed(messages []string) *BookError {
	return &BookError{Kind: KindValidation, Messages: messages}
}

func NewConflict(detail string, err error) *BookError {
	return &BookError{Kind: KindConflict, Detail: detail, Err: err}
}

func NewNotFound(field, key string) *BookError {
	return &BookError{Kind: KindNotFound, Field: field, Key: key}
}

func NewInternal(err error) *BookError {
	return &BookError{Kind: KindInternal, Err: err}
}

// IsKind reports whether err is a BookError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var be *BookError
	return errors.As(err, &be) && be.Kind == kind
}

// Classify maps any error to an HTTP status and the entries of the error body.
// Errors that are not a *BookError are treated as internal.
func Classify(err error) (int, []response.ErrorMessage) {
	var be *BookError
	if !errors.As(err, &be) {
		be = NewInternal(err)
	}

	switch be.Kind {
	case KindValidation:
		entries := make([]response.ErrorMessage, 0, len(be.Messages))
		for _, m := range be.Messages {
			entries = append(entries, response.ErrorMessage{
				Message:  MsgInvalidParameter,
				MoreInfo: m,
				Status:   http.StatusBadRequest,
			})
		}
		return http.StatusBadRequest, entries
	case KindConflict:
		return http.StatusBadRequest, []response.ErrorMessage{{
			Message:  MsgInvalidParameter,
			MoreInfo: be.Detail,
			Status:   http.StatusBadRequest,
		}}
	case KindNotFound:
		return http.StatusUnprocessableEntity, []response.ErrorMessage{{
			Message:  MsgNoBookExists + be.Key,
			MoreInfo: "No book found with " + be.Field + ": " + be.Key,
			Status:   http.StatusUnprocessableEntity,
		}}
	default:
		info := MsgInternalServerError
		if err != nil {
			info = err.Error()
		}
		return http.StatusInternalServerError, []response.ErrorMessage{{
			Message:  MsgInternalServerError,
			MoreInfo: info,
			Status:   http.StatusInternalServerError,
		}}
	}
}

// HandleBookError classifies err, logs it and writes the error envelope.
// Returns false when err is nil so handlers can continue.
func HandleBookError(c *gin.Context, err error) bool {
	if err == nil {
		return false
	}

	status, entries := Classify(err)

	event := log.Warn()
	if status >= http.StatusInternalServerError {
		event = log.Error()
	}
	event.
		Str("request_id", c.GetString("request_id")).
		Str("path", c.Request.URL.Path).
		Int("status", status).
		Err(err).
		Msg("Book request failed")

	response.Errors(c, status, entries)
	return true
}
