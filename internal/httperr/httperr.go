// Package httperr provides the error returned when a Trovi or identity
// provider endpoint answers with an unexpected HTTP status.
package httperr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// APIError describes a response whose status did not match the expected code.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Expected   int
	// Detail is a best-effort message extracted from the response body.
	Detail string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("%s %s %d returned, expected %d: %s",
		e.Method, e.Path, e.StatusCode, e.Expected, e.Detail)
}

// HTTPCode returns the status code the server actually returned.
func (e *APIError) HTTPCode() int {
	return e.StatusCode
}

// Check compares the response status against expected and returns an
// *APIError on mismatch. An expected code of zero disables the check.
// body is the already-read response body.
func Check(resp *http.Response, body []byte, expected int) error {
	if expected == 0 || resp.StatusCode == expected {
		return nil
	}

	apiErr := &APIError{
		StatusCode: resp.StatusCode,
		Expected:   expected,
		Detail:     Detail(resp.StatusCode, body),
	}
	if req := resp.Request; req != nil {
		apiErr.Method = req.Method
		if req.URL != nil {
			apiErr.Path = req.URL.Path
		}
	}
	return apiErr
}

// Detail extracts an error message from a response body. JSON objects yield
// their "detail" field, then "error_description", then the raw text. Bodies
// that are not JSON yield the raw text, except for 500 responses which yield
// an empty string since they usually carry an HTML error page.
func Detail(status int, body []byte) string {
	var decoded any
	if err := json.Unmarshal(body, &decoded); err != nil {
		if status == http.StatusInternalServerError {
			return ""
		}
		return string(body)
	}

	obj, ok := decoded.(map[string]any)
	if !ok {
		return string(body)
	}
	if v, ok := obj["detail"]; ok {
		return stringify(v)
	}
	if v, ok := obj["error_description"]; ok {
		return stringify(v)
	}
	return string(body)
}

func stringify(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(data)
	}
}

// Code extracts the HTTP status code from an error chain.
// It returns zero when err does not wrap an *APIError.
func Code(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}
