package api

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNoIdentity is returned when a 2xx auth response has no user id.
var ErrNoIdentity = errors.New("response carried no user identity")

// StatusError is a non-2xx answer passed through as-is. The client does not
// interpret status codes; callers decide what a 401 or 403 means.
type StatusError struct {
	Method string
	Path   string
	Status int
	Body   []byte
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Status, http.StatusText(e.Status))
	if len(e.Body) > 0 {
		body := e.Body
		if len(body) > 200 {
			body = body[:200]
		}
		msg += ": " + string(body)
	}
	return msg
}

// TransportError is a request that never got an HTTP answer.
type TransportError struct {
	Method string
	Path   string
	err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.err)
}

func (e *TransportError) Unwrap() error { return e.err }

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Status
	}
	return 0
}

// IsStatus reports whether err is a StatusError with the given code.
func IsStatus(err error, code int) bool {
	return StatusOf(err) == code
}

// IsTransport reports whether err is a network-level failure.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
