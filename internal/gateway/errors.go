package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	jmespath "github.com/jmespath-community/go-jmespath"
)

// APIError is the one failure shape the gateway produces. Transport
// failures carry Status 0; application failures carry the upstream status
// and a best-effort decoded Payload.
type APIError struct {
	Status  int
	Message string
	Payload any

	cause error
}

func (e *APIError) Error() string {
	if e.Status == 0 {
		return "gateway: " + e.Message
	}
	return fmt.Sprintf("gateway: %s (HTTP %d)", e.Message, e.Status)
}

func (e *APIError) Unwrap() error { return e.cause }

// newAPIError decodes the failed response body and derives the message.
// The payload is the JSON body when the content type says so, the raw text
// otherwise, and nil when nothing useful could be parsed.
func newAPIError(status int, contentType string, body []byte) *APIError {
	var payload any
	switch {
	case len(body) == 0:
		payload = nil
	case isJSONContentType(contentType):
		if err := json.Unmarshal(body, &payload); err != nil {
			payload = nil
		}
	default:
		payload = string(body)
	}

	return &APIError{
		Status:  status,
		Message: deriveMessage(status, payload),
		Payload: payload,
	}
}

// deriveMessage picks the message in priority order: a non-empty string
// payload, then a `message` field of an object payload, then a generic
// fallback built from the status.
func deriveMessage(status int, payload any) string {
	if s, ok := payload.(string); ok {
		if trimmed := strings.TrimSpace(s); trimmed != "" {
			return trimmed
		}
	}
	if payload != nil {
		if v, err := jmespath.Search("message", payload); err == nil {
			if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
				return strings.TrimSpace(s)
			}
		}
	}
	return fmt.Sprintf("request failed (HTTP %d)", status)
}

// DescribeError maps known statuses to fixed user-facing strings. The
// mapping takes precedence over any server-supplied message; unknown
// statuses fall back to the error's own message, then to the supplied
// default.
func DescribeError(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Status {
		case http.StatusUnauthorized:
			return "authentication required"
		case http.StatusForbidden:
			return "access denied"
		case http.StatusNotFound:
			return "resource not found"
		case http.StatusInternalServerError:
			return "server error, retry later"
		}
		if apiErr.Message != "" {
			return apiErr.Message
		}
	} else if err != nil && err.Error() != "" {
		return err.Error()
	}
	return fallback
}
