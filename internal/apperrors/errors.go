package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrConflict indicates that a concurrent change prevented the operation from committing.
var ErrConflict = errors.New("conflicting concurrent update")

// ErrInvalidAmount indicates a negative or empty tendered amount.
var ErrInvalidAmount = errors.New("invalid amount")

// ErrInvalidQuantity indicates a non-positive return quantity.
var ErrInvalidQuantity = errors.New("invalid quantity")

// ErrRecordAlreadySettled indicates a mutation attempted on a record that already has paid_at set.
var ErrRecordAlreadySettled = errors.New("record already settled")

// ErrQuantityExceedsAvailable indicates a return quantity larger than what remains on the line.
var ErrQuantityExceedsAvailable = errors.New("quantity exceeds available")

// ErrMissingExchangeRate indicates that neither a frozen nor a live rate is available.
// Conversions never fall back to 1:1.
var ErrMissingExchangeRate = errors.New("missing exchange rate")

// ErrNegativeBalance indicates that an adjustment would drive a cash balance below zero.
var ErrNegativeBalance = errors.New("cash balance would become negative")

// AppError carries an HTTP-ish status code alongside a wrapped cause.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError wraps err with a status code and message.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// NewValidationError returns an AppError that matches ErrValidation.
func NewValidationError(message string) *AppError {
	return &AppError{Code: http.StatusBadRequest, Message: message, Err: ErrValidation}
}

// NewNotFoundError returns an AppError that matches ErrNotFound.
func NewNotFoundError(message string) *AppError {
	return &AppError{Code: http.StatusNotFound, Message: message, Err: ErrNotFound}
}

// HTTPStatus maps an error from the core onto a response status code.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrValidation), errors.Is(err, ErrInvalidAmount), errors.Is(err, ErrInvalidQuantity):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrRecordAlreadySettled), errors.Is(err, ErrQuantityExceedsAvailable),
		errors.Is(err, ErrConflict), errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, ErrNegativeBalance), errors.Is(err, ErrMissingExchangeRate):
		return http.StatusUnprocessableEntity
	}
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Code != 0 {
		return appErr.Code
	}
	return http.StatusInternalServerError
}
