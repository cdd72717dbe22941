package auth

import (
	"errors"
	"net/http"
)

var (
	// ErrUnauthenticated means the request carried no valid credentials.
	ErrUnauthenticated = errors.New("auth: unauthenticated")
	// ErrForbidden means the credentials were valid but not allowed.
	ErrForbidden = errors.New("auth: forbidden")
)

// HTTPError is an error that knows its HTTP status code.
type HTTPError interface {
	error
	StatusCode() int
}

// StatusError pairs an error with the HTTP status it maps to.
type StatusError struct {
	Code int
	Err  error
}

func (e StatusError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return http.StatusText(e.Code)
}

func (e StatusError) Unwrap() error { return e.Err }

func (e StatusError) StatusCode() int {
	if e.Code <= 0 {
		return http.StatusInternalServerError
	}
	return e.Code
}

// StatusCode maps an error to an HTTP status. Errors implementing HTTPError
// win; the auth sentinels map to 401 and 403; anything else is 500.
func StatusCode(err error) int {
	var httpErr HTTPError
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &httpErr):
		return httpErr.StatusCode()
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	}
	return http.StatusInternalServerError
}
