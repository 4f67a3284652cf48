package model

import (
	"errors"
	"math"
	"sort"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// notBlank rejects empty and whitespace-only strings.
// validation.Required alone lets "   " through.
func notBlank(message string) validation.Rule {
	return validation.By(func(value interface{}) error {
		s, _ := value.(string)
		if strings.TrimSpace(s) == "" {
			return errors.New(message)
		}
		return nil
	})
}

// positivePrice: Required catches 0 (Min skips empty values), Min catches negatives.
func positivePrice() []validation.Rule {
	return []validation.Rule{
		validation.Required.Error(MsgPricePositive),
		validation.Min(0.0).Exclusive().Error(MsgPricePositive),
	}
}

// ValidateRequest runs the request's rules and turns every violation into a
// single ValidationFailed error. Returns nil when the request is valid.
func ValidateRequest(req validation.Validatable) error {
	err := req.Validate()
	if err == nil {
		return nil
	}
	var internal validation.InternalError
	if errors.As(err, &internal) {
		return NewInternal(internal)
	}
	return NewValidationFailed(Violations(err))
}

// Violations flattens ozzo errors into an ordered list of messages.
// Keys are visited in sorted order at every nesting level so the output is
// stable between calls.
func Violations(err error) []string {
	if err == nil {
		return nil
	}
	var errs validation.Errors
	if errors.As(err, &errs) {
		return flatten(errs)
	}
	return []string{err.Error()}
}

func flatten(errs validation.Errors) []string {
	keys := make([]string, 0, len(errs))
	for k := range errs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]string, 0, len(keys))
	for _, k := range keys {
		switch e := errs[k].(type) {
		case nil:
		case validation.Errors:
			out = append(out, flatten(e)...)
		default:
			out = append(out, e.Error())
		}
	}
	return out
}

// ========================================
// PATH PARAMETERS
// ========================================

func validateParams(errs validation.Errors) error {
	if err := errs.Filter(); err != nil {
		return NewValidationFailed(Violations(err))
	}
	return nil
}

// ValidateISBNParam checks a single {isbn} path segment.
func ValidateISBNParam(isbn string) error {
	return validateParams(validation.Errors{
		"isbn": validation.Validate(isbn, notBlank(MsgISBNBlank)),
	})
}

// ValidateISBNChangeParams checks {newIsbn}/{oldIsbn}. The new value must also
// be a well formed ISBN-13 since it becomes the book's key.
func ValidateISBNChangeParams(newISBN, oldISBN string) error {
	return validateParams(validation.Errors{
		"newIsbn": validation.Validate(newISBN, notBlank(MsgNewISBNBlank), is.ISBN13.Error(MsgISBNInvalid)),
		"oldIsbn": validation.Validate(oldISBN, notBlank(MsgOldISBNBlank)),
	})
}

// ParseRatingParams parses {rating}/{isbn}. Both are checked before failing.
func ParseRatingParams(rawRating, isbn string) (float64, error) {
	rating, err := strconv.ParseFloat(strings.TrimSpace(rawRating), 64)
	var ratingErr error
	if err != nil || math.IsNaN(rating) || math.IsInf(rating, 0) || rating <= 0 {
		ratingErr = errors.New(MsgRatingPositive)
	}
	if err := validateParams(validation.Errors{
		"rating": ratingErr,
		"isbn":   validation.Validate(isbn, notBlank(MsgISBNBlank)),
	}); err != nil {
		return 0, err
	}
	return rating, nil
}

// ParseQuantityParams parses {count}/{isbn}. count may be negative.
func ParseQuantityParams(rawCount, isbn string) (int, error) {
	count, err := strconv.Atoi(strings.TrimSpace(rawCount))
	var countErr error
	if err != nil {
		countErr = errors.New(MsgCountWholeNumber)
	}
	if err := validateParams(validation.Errors{
		"count": countErr,
		"isbn":  validation.Validate(isbn, notBlank(MsgISBNBlank)),
	}); err != nil {
		return 0, err
	}
	return count, nil
}
