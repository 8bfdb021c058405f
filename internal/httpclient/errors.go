package httpclient

import (
	"fmt"
)

// HTTPError represents an HTTP-level error (a retryable status that never cleared).
type HTTPError struct {
	StatusCode int
	Body       string
	URL        string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("http error for URL '%s': status %d, body: %s", e.URL, e.StatusCode, e.Body)
}

// NewHTTPErrorWithURL creates a new HTTPError.
func NewHTTPErrorWithURL(statusCode int, body string, url string) error {
	if len(body) > 512 {
		body = body[:512]
	}
	return &HTTPError{StatusCode: statusCode, Body: body, URL: url}
}
