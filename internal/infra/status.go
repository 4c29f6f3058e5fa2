package infra

import (
	"fmt"
	"io"
	"net/http"
)

// Error bodies are cut to this size before they end up in messages.
const maxErrorBody = 4096

// StatusError is a non-200 answer from an upstream API.
type StatusError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Retryable() {
		return fmt.Sprintf("%s API error %d: %s (retryable)", e.Provider, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("%s API error %d: %s", e.Provider, e.StatusCode, e.Body)
}

// Retryable tells a caller the failure was on the server side. Nothing in
// this module retries on it, it only shapes the diagnostic.
func (e *StatusError) Retryable() bool {
	return IsRetryableHTTPStatus(e.StatusCode)
}

// CheckResponse returns a *StatusError for any status other than 200.
func CheckResponse(provider string, resp *http.Response) error {
	if resp.StatusCode == http.StatusOK {
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &StatusError{Provider: provider, StatusCode: resp.StatusCode, Body: string(body)}
}

// IsRetryableHTTPStatus returns true if the HTTP status code is retryable
func IsRetryableHTTPStatus(statusCode int) bool {
	return statusCode == http.StatusTooManyRequests ||
		statusCode == http.StatusServiceUnavailable ||
		statusCode == http.StatusGatewayTimeout ||
		statusCode >= 500
}
