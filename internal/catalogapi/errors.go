package catalogapi

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotFound is returned when the API answers 404.
	ErrNotFound = errors.New("catalogapi: not found")
	// ErrValidation is returned when the API rejects a payload.
	ErrValidation = errors.New("catalogapi: validation failed")
	// ErrConflict is returned for 409 answers.
	ErrConflict = errors.New("catalogapi: conflict")
)

// APIError is a non-2xx answer decoded from the problem body.
type APIError struct {
	Status int
	Title  string
	Detail string
	Fields map[string]string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("catalogapi: %d %s: %s", e.Status, e.Title, e.Detail)
	}
	return fmt.Sprintf("catalogapi: %d %s", e.Status, e.Title)
}

// Is maps HTTP statuses onto the package sentinels.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	case ErrValidation:
		return e.Status == http.StatusBadRequest || e.Status == http.StatusUnprocessableEntity
	case ErrConflict:
		return e.Status == http.StatusConflict
	}
	return false
}
