package authsdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// APIError is the decoded error envelope of a non-2xx response.
type APIError struct {
	StatusCode       int               `json:"code"`
	Message          string            `json:"message"`
	Status           string            `json:"status"`
	Timestamp        int64             `json:"timestamp"`
	Path             string            `json:"path"`
	ValidationErrors map[string]string `json:"validationErrors,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d: %s", e.StatusCode, e.Message)
}

// StatusCode returns the HTTP status of err if it is an *APIError, else 0.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

func IsUnauthorized(err error) bool { return StatusCode(err) == http.StatusUnauthorized }
func IsForbidden(err error) bool    { return StatusCode(err) == http.StatusForbidden }
func IsConflict(err error) bool     { return StatusCode(err) == http.StatusConflict }
func IsNotFound(err error) bool     { return StatusCode(err) == http.StatusNotFound }
func IsTooManyRequests(err error) bool {
	return StatusCode(err) == http.StatusTooManyRequests
}

// parseErrorResponse turns a non-2xx response into an *APIError. Bodies that
// are not an error envelope still produce one, built from the status line.
func parseErrorResponse(resp *http.Response, body []byte) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	var apiErr APIError
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Message != "" {
		apiErr.StatusCode = resp.StatusCode
		return &apiErr
	}

	return &APIError{
		StatusCode: resp.StatusCode,
		Message:    fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
		Status:     "ERROR",
		Path:       resp.Request.URL.Path,
	}
}
