package dataverse

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/Veraticus/budgets/internal/common"
)

// APIError is a non-success response from the Web API. Error returns the
// server-provided message unchanged.
type APIError struct {
	Code       string
	Message    string
	StatusCode int
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("dataverse request failed with status %d", e.StatusCode)
}

// Unwrap maps the status code onto the shared store errors.
func (e *APIError) Unwrap() error {
	switch {
	case e.StatusCode == http.StatusUnauthorized, e.StatusCode == http.StatusForbidden:
		return common.ErrUnauthorized
	case e.StatusCode == http.StatusNotFound:
		return common.ErrNotFound
	case e.StatusCode == http.StatusTooManyRequests:
		return common.ErrRateLimit
	case e.StatusCode >= 500:
		return common.ErrStoreUnavailable
	default:
		return nil
	}
}

// errorBody is the OData error envelope.
type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// retryAfter parses a Retry-After header given in seconds.
func retryAfter(h http.Header) time.Duration {
	secs, err := strconv.Atoi(h.Get("Retry-After"))
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
