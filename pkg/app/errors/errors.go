// Package errors contains the error categories the HTTP API reports
package errors

import (
	"errors"
	"net/http"
)

// Category classifies a ServiceError and decides its HTTP status.
type Category int

const (
	// CategoryDataError is invalid input: malformed addresses, bad JSON,
	// arguments a contract rejects.
	CategoryDataError Category = iota + 1
	// CategoryUnauthorized is a request without valid credentials.
	CategoryUnauthorized
	// CategoryForbidden is an authenticated caller that may not do this.
	CategoryForbidden
	// CategoryResourceNotFound is an unknown snapshot, holder or route.
	CategoryResourceNotFound
	// CategoryDataConflict is an operation the crowdfund's phase does not allow.
	CategoryDataConflict
	// CategoryLocked is a transfer of tokens that are still locked.
	CategoryLocked
	// CategoryGeneralError is anything unexpected.
	CategoryGeneralError
	// CategoryConnectionTimeout is a request that ran out of time.
	CategoryConnectionTimeout
)

var categories = map[Category]struct {
	name   string
	status int
}{
	CategoryDataError:         {"CategoryDataError", http.StatusBadRequest},
	CategoryUnauthorized:      {"CategoryUnauthorized", http.StatusUnauthorized},
	CategoryForbidden:         {"CategoryForbidden", http.StatusForbidden},
	CategoryResourceNotFound:  {"CategoryResourceNotFound", http.StatusNotFound},
	CategoryDataConflict:      {"CategoryDataConflict", http.StatusConflict},
	CategoryLocked:            {"CategoryLocked", http.StatusLocked},
	CategoryGeneralError:      {"CategoryGeneralError", http.StatusInternalServerError},
	CategoryConnectionTimeout: {"CategoryConnectionTimeout", http.StatusGatewayTimeout},
}

func (c Category) String() string {
	if v, ok := categories[c]; ok {
		return v.name
	}
	return "CategoryGeneralError"
}

// ServiceError is returned by services and rendered by the HTTP layer.
// Message goes to the client; Err is kept for logs.
type ServiceError struct {
	Category Category
	Message  string
	Err      error
}

// Error method to comply with error interface
func (err ServiceError) Error() string {
	if err.Err != nil {
		return err.Err.Error()
	}
	return err.Message
}

// Unwrap returns the underlying error
func (err ServiceError) Unwrap() error {
	return err.Err
}

// StatusCode returns the HTTP status code for the error category
func (err ServiceError) StatusCode() int {
	if v, ok := categories[err.Category]; ok {
		return v.status
	}
	return http.StatusInternalServerError
}

// Is checks that provided error is a ServiceError with desired Category
func Is(err error, cat Category) bool {
	var svcErr *ServiceError
	return errors.As(err, &svcErr) && svcErr.Category == cat
}

// New wraps err in category, reporting err's text to the client.
func New(cat Category, err error) error {
	return &ServiceError{Category: cat, Message: err.Error(), Err: err}
}

func newError(cat Category, err error, message, fallback string) error {
	if err == nil {
		err = errors.New(fallback + ": " + message)
	}
	return &ServiceError{Category: cat, Message: message, Err: err}
}

// GeneralError hides err behind "Internal Server Error".
func GeneralError(err error) error {
	if err == nil {
		err = errors.New("internal server error")
	}
	return &ServiceError{Category: CategoryGeneralError, Message: "Internal Server Error", Err: err}
}

// ResourceNotFoundError returns an error with category ResourceNotFound
func ResourceNotFoundError(err error, message string) error {
	return newError(CategoryResourceNotFound, err, message, "resource not found")
}

// BadRequestError returns an error with category DataError
func BadRequestError(err error, message string) error {
	return newError(CategoryDataError, err, message, "bad request")
}

// ForbiddenError returns an error with category Forbidden
func ForbiddenError(err error, message string) error {
	return newError(CategoryForbidden, err, message, "request forbidden")
}

// UnAuthorizedError returns an error with category Unauthorized
func UnAuthorizedError(err error, message string) error {
	return newError(CategoryUnauthorized, err, message, "unauthorized")
}

// ConflictError returns an error with category DataConflict
func ConflictError(err error, message string) error {
	return newError(CategoryDataConflict, err, message, "conflict")
}
