package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// RequestError is returned for every non-2xx response.
type RequestError struct {
	Method     string
	Path       string
	StatusCode int
	Message    string
}

func (e *RequestError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.StatusCode, e.Message)
}

// IsStatus reports whether err is a RequestError with the given status.
func IsStatus(err error, status int) bool {
	var reqErr *RequestError
	return errors.As(err, &reqErr) && reqErr.StatusCode == status
}

func newRequestError(method, path string, status int, body []byte) *RequestError {
	var msg struct {
		Message string `json:"message"`
	}
	_ = json.Unmarshal(body, &msg)
	return &RequestError{
		Method:     method,
		Path:       path,
		StatusCode: status,
		Message:    msg.Message,
	}
}
