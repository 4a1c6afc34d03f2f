package fetch

import (
	"errors"
	"fmt"
	"net/url"
)

// HTTPError is returned when the server answers with a non-2xx status.
type HTTPError struct {
	// URL is the resolved request URL.
	URL string

	// StatusCode is the numeric HTTP status.
	StatusCode int

	// Status is the status line text, e.g. "404 Not Found".
	Status string
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	status := e.Status
	if status == "" {
		status = fmt.Sprintf("%d", e.StatusCode)
	}
	return fmt.Sprintf("http error: %s for url: %s", status, redact(e.URL))
}

// IsHTTPStatus reports whether err is an *HTTPError with the given status code.
func IsHTTPStatus(err error, code int) bool {
	var httpErr *HTTPError
	return errors.As(err, &httpErr) && httpErr.StatusCode == code
}

// redact hides a password embedded in the URL, if any.
func redact(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	return u.Redacted()
}
