package catalog

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNetwork marks requests that never produced an HTTP response.
	ErrNetwork = errors.New("network failure")
	// ErrMalformedResponse marks 2xx bodies that match no known shape.
	ErrMalformedResponse = errors.New("malformed response")
	// ErrNotFound is returned when the service has no record for an id.
	ErrNotFound = errors.New("book not found")
	// ErrEmptyTitle is returned before sending a create or update without a title.
	ErrEmptyTitle = errors.New("title must not be empty")
)

// HTTPError is a non-2xx response from the catalog service.
type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("catalog returned status %d", e.Status)
}

// Is makes a 404 match ErrNotFound.
func (e *HTTPError) Is(target error) bool {
	return target == ErrNotFound && e.Status == http.StatusNotFound
}

// Message extracts the text worth showing to a user from any client error.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Error()
	}
	return err.Error()
}
