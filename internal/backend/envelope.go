package backend

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrMalformedPayload reports a successful response whose shape is unexpected.
var ErrMalformedPayload = errors.New("backend: malformed payload")

// Envelope is the response convention shared by every endpoint.
type Envelope struct {
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message,omitempty"`
}

// APIError normalises non-2xx responses.
type APIError struct {
	Method  string
	Path    string
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend: %s %s: %d %s", e.Method, e.Path, e.Status, e.Message)
	}
	return fmt.Sprintf("backend: %s %s: %d %s", e.Method, e.Path, e.Status, http.StatusText(e.Status))
}

// NotFound reports whether the backend answered 404.
func (e *APIError) NotFound() bool {
	return e != nil && e.Status == http.StatusNotFound
}

// Unauthorized reports whether the backend rejected the credentials.
func (e *APIError) Unauthorized() bool {
	return e != nil && (e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden)
}

func newAPIError(method, path string, status int, body []byte) *APIError {
	apiErr := &APIError{Method: method, Path: path, Status: status}
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		apiErr.Message = strings.TrimSpace(payload.Message)
		if apiErr.Message == "" {
			apiErr.Message = strings.TrimSpace(payload.Error)
		}
	}
	return apiErr
}

// DecodeList requires data to be a JSON array and decodes it.
func DecodeList[T any](env *Envelope) ([]T, error) {
	if env == nil {
		return nil, fmt.Errorf("%w: empty response", ErrMalformedPayload)
	}
	raw := bytes.TrimSpace(env.Data)
	if len(raw) == 0 || raw[0] != '[' {
		return nil, fmt.Errorf("%w: expected an array under \"data\", got %s", ErrMalformedPayload, describe(raw))
	}
	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("%w: decode list: %v", ErrMalformedPayload, err)
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// DecodeObject requires data to be a JSON object and decodes it.
func DecodeObject[T any](env *Envelope) (T, error) {
	var out T
	if env == nil {
		return out, fmt.Errorf("%w: empty response", ErrMalformedPayload)
	}
	raw := bytes.TrimSpace(env.Data)
	if len(raw) == 0 || raw[0] != '{' {
		return out, fmt.Errorf("%w: expected an object under \"data\", got %s", ErrMalformedPayload, describe(raw))
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("%w: decode object: %v", ErrMalformedPayload, err)
	}
	return out, nil
}

func describe(raw []byte) string {
	if len(raw) == 0 {
		return "nothing"
	}
	switch raw[0] {
	case '{':
		return "an object"
	case '[':
		return "an array"
	case '"':
		return "a string"
	case 'n':
		return "null"
	case 't', 'f':
		return "a boolean"
	default:
		return "a number"
	}
}

// UserMessage picks the text shown to the user for err: the server-provided
// message, then the error text, then fallback.
func UserMessage(err error, fallback string) string {
	if err == nil {
		return fallback
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	if msg := strings.TrimSpace(err.Error()); msg != "" {
		return msg
	}
	return fallback
}
