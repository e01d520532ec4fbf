package remote

import (
	"fmt"
	"net/http"

	"github.com/gosuda/taskflow/internal/domain"
)

// StatusError is a non-2xx response. It unwraps to the domain sentinel that
// matches the status code so callers can classify it with errors.Is.
type StatusError struct {
	Status int    `json:"status"`
	Title  string `json:"title"`
	Detail string `json:"detail"`
}

func (e *StatusError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("remote: %d %s: %s", e.Status, e.Title, e.Detail)
	}
	return fmt.Sprintf("remote: %d %s", e.Status, e.Title)
}

func (e *StatusError) Unwrap() error {
	switch e.Status {
	case http.StatusNotFound:
		return domain.ErrNotFound
	case http.StatusUnauthorized:
		return domain.ErrUnauthorized
	case http.StatusForbidden:
		return domain.ErrForbidden
	case http.StatusConflict:
		return domain.ErrConflict
	default:
		return nil
	}
}
