package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	StatusSuccess = "SUCCESS"
	StatusError   = "ERROR"
)

// MaxBodyBytes caps JSON request bodies.
const MaxBodyBytes = 1 << 20

// SuccessResponse is the envelope for every 2xx JSON body.
type SuccessResponse struct {
	Code      int    `json:"code"`
	Message   string `json:"message"`
	Status    string `json:"status"`
	Timestamp int64  `json:"timestamp"` // unix millis
	Data      any    `json:"data,omitempty"`
}

// ErrorResponse is the envelope for every error body.
type ErrorResponse struct {
	Code             int               `json:"code"`
	Message          string            `json:"message"`
	Status           string            `json:"status"`
	Timestamp        int64             `json:"timestamp"` // unix millis
	Path             string            `json:"path"`
	ValidationErrors map[string]string `json:"validationErrors,omitempty"`
}

// WriteJSON writes a JSON response with the given status code.
// It automatically sets the Content-Type header and Cache-Control headers.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	NoCache(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// NoCache sets the Cache-Control and Pragma headers to prevent caching.
// This is commonly required for sensitive responses like tokens.
func NoCache(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
}

// WriteSuccess wraps data in a SuccessResponse.
func WriteSuccess(w http.ResponseWriter, code int, message string, data any) {
	WriteJSON(w, code, SuccessResponse{
		Code:      code,
		Message:   message,
		Status:    StatusSuccess,
		Timestamp: time.Now().UnixMilli(),
		Data:      data,
	})
}

// WriteError writes an ErrorResponse for the request path.
func WriteError(w http.ResponseWriter, r *http.Request, code int, message string) {
	WriteJSON(w, code, NewErrorResponse(r, code, message))
}

// WriteValidationError writes a 400 listing the offending fields.
func WriteValidationError(w http.ResponseWriter, r *http.Request, fields map[string]string) {
	resp := NewErrorResponse(r, http.StatusBadRequest, "Validation failed")
	resp.ValidationErrors = fields
	WriteJSON(w, http.StatusBadRequest, resp)
}

func NewErrorResponse(r *http.Request, code int, message string) ErrorResponse {
	return ErrorResponse{
		Code:      code,
		Message:   message,
		Status:    StatusError,
		Timestamp: time.Now().UnixMilli(),
		Path:      r.URL.Path,
	}
}

// ErrEmptyBody is returned by DecodeJSON when the request has no body.
var ErrEmptyBody = errors.New("httpx: empty request body")

// DecodeJSON decodes a single JSON object from the request body into dst,
// rejecting unknown fields and bodies over MaxBodyBytes.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return ErrEmptyBody
		}
		return fmt.Errorf("httpx: decode body: %w", err)
	}
	if dec.More() {
		return errors.New("httpx: body must contain a single JSON object")
	}
	return nil
}
