package client

import (
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
)

var (
	// ErrUnauthorized is returned when the API rejected the session (401/403)
	ErrUnauthorized = errors.New("session expired or not authorized")
	// ErrNotAuthenticated is returned for requests made after the session was logged out
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrUnexpectedShape is returned when a response body is not what the endpoint promises
	ErrUnexpectedShape = errors.New("unexpected response shape")
)

// APIError is a non-2xx answer from the admin API
type APIError struct {
	Status  int
	Message string
	Details string
}

func (e *APIError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("API error %d: %s (%s)", e.Status, e.Message, e.Details)
	}
	return fmt.Sprintf("API error %d: %s", e.Status, e.Message)
}

// newAPIError reads {error, message, details} from body, falling back to a
// generic message when the body carries none.
func newAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{Status: status}

	if gjson.ValidBytes(body) {
		parsed := gjson.ParseBytes(body)
		for _, key := range []string{"error", "message", "msg"} {
			if v := parsed.Get(key); v.Type == gjson.String && v.String() != "" {
				apiErr.Message = v.String()
				break
			}
		}
		if details := parsed.Get("details"); details.Exists() {
			if details.Type == gjson.String {
				apiErr.Details = details.String()
			} else {
				apiErr.Details = details.Raw
			}
		}
	}

	if apiErr.Message == "" {
		apiErr.Message = fmt.Sprintf("request failed with status %d", status)
	}
	return apiErr
}

// DecodeError is returned when a response parsed but failed validation
type DecodeError struct {
	Resource string
	Index    int
	Err      error
}

func (e *DecodeError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("invalid %s at index %d: %v", e.Resource, e.Index, e.Err)
	}
	return fmt.Sprintf("invalid %s: %v", e.Resource, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
