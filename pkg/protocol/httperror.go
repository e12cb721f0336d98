package protocol

import (
	"fmt"
	"net/http"
)

// HTTPError reports a response with a non-success status.
type HTTPError struct {
	Method string
	URL    string
	Status int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%s %s: status %d %s", e.Method, e.URL, e.Status, http.StatusText(e.Status))
}

// OK reports whether status is a success status.
func OK(status int) bool {
	return status >= 200 && status < 300
}
