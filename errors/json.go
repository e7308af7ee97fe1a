package errors

import (
	"context"
	"net/http"
)

// Response is the JSON body written for a failed request.
type Response struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Status  int    `json:"status,omitempty"`
}

// ToError converts a Response read by an API client back into an Error.
func (e Response) ToError() error {
	switch e.Status {
	case http.StatusOK:
		return nil
	case http.StatusUnauthorized:
		return E(NotLoggedIn, e.Error)
	case http.StatusForbidden:
		return E(Permission, e.Error)
	case http.StatusBadRequest:
		return E(Invalid, e.Error)
	case http.StatusConflict:
		return E(Exist, e.Error)
	case http.StatusNotFound:
		return E(NotExist, e.Error)
	}
	return Errorf("status %d: %s", e.Status, e.Error)
}

// ResponseForError constructs a Response for err. Validation errors report
// their innermost message; everything else gets a fixed message so store
// internals never leak to clients.
func ResponseForError(err error) Response {
	return Response{
		Success: false,
		Error:   errText(err),
		Status:  errStatus(err),
	}
}

func errText(err error) string {
	if e, ok := err.(*Error); ok {
		switch kindOf(e) {
		case Invalid:
			return message(e)
		case NotLoggedIn:
			return "access token required: send an identity provider token as an Authorization: Bearer header"
		case Permission:
			return "invalid or expired token"
		case NotExist:
			return "not found"
		}
	}
	return http.StatusText(errStatus(err))
}

// message returns the innermost message of an error chain, without the ops
// and user ids of the layers above it.
func message(e *Error) string {
	for {
		next, ok := e.Err.(*Error)
		if !ok {
			break
		}
		e = next
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Kind.String()
}

func kindOf(e *Error) Kind {
	for _, k := range []Kind{Invalid, NotLoggedIn, Permission, NotExist, Exist, Internal} {
		if Is(k, e) {
			return k
		}
	}
	return Other
}

func errStatus(err error) int {
	if err == context.Canceled {
		return http.StatusBadRequest
	}

	e, ok := err.(*Error)
	if !ok {
		return http.StatusInternalServerError
	}

	switch kindOf(e) {
	case Invalid:
		return http.StatusBadRequest
	case NotLoggedIn:
		return http.StatusUnauthorized
	case Permission:
		return http.StatusForbidden
	case NotExist:
		return http.StatusNotFound
	case Exist:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
