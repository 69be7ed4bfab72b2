package derivative

import (
	"encoding/json"
	"net/http"
	"strings"
)

// Kind classifies a pipeline failure; each kind maps to one status code.
type Kind int

const (
	KindClient Kind = iota + 1
	KindAuthorization
	KindUpstreamFetch
	KindTransform
	KindStorageWrite
	KindUnexpected
)

// Error is a terminal pipeline failure. Message is what the caller sees.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func statusFor(kind Kind) int {
	switch kind {
	case KindAuthorization:
		return http.StatusForbidden
	case KindClient, KindUpstreamFetch, KindTransform:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func newError(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Status: statusFor(kind), Message: message, Err: err}
}

// withStatus overrides the default status of a client error, e.g. a
// missing key is answered with 403.
func (e *Error) withStatus(status int) *Error {
	e.Status = status
	return e
}

// Response is a transport-neutral reply.
type Response struct {
	StatusCode int
	Headers    map[string]string
	Body       []byte
}

func redirectResponse(location string) *Response {
	return &Response{
		StatusCode: http.StatusMovedPermanently,
		Headers:    map[string]string{"Location": location},
		Body:       []byte{},
	}
}

func jsonResponse(status int, v interface{}) *Response {
	body, err := json.Marshal(v)
	if err != nil {
		return textResponse(http.StatusInternalServerError, err.Error())
	}
	return &Response{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       body,
	}
}

func textResponse(status int, message string) *Response {
	return &Response{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "text/plain; charset=utf-8"},
		Body:       []byte(message),
	}
}

// errorResponse renders client-facing failures as a JSON string and
// server failures as the raw message.
func errorResponse(e *Error) *Response {
	if e.Status >= http.StatusInternalServerError {
		msg := e.Message
		if e.Err != nil {
			msg = e.Err.Error()
		}
		return textResponse(e.Status, msg)
	}
	return jsonResponse(e.Status, e.Message)
}

// ParseFlag reads a boolean query flag. Any non-empty value other than
// 0, false, no or off is true.
func ParseFlag(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "0", "false", "no", "off":
		return false
	}
	return true
}
