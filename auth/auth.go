// Package auth verifies identity provider tokens and carries the verified
// identity through request contexts.
package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

// ErrExpired is returned when the user tries to authenticate with an expired token.
var ErrExpired = errors.New("token expired")

// Provider parses requests to extract authorization info. A request without
// credentials yields a zero Info and a nil error.
type Provider interface {
	FromRequest(r *http.Request) (Info, error)
}

// Info is the identity asserted by a verified token.
type Info struct {
	ID      string
	Email   string
	Name    string
	Picture string
}

// WithContext decorates a context with this auth.Info object. Use auth.User
// to retrieve the auth.Info from the context.
func (i Info) WithContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, ctxMarkerKey, i)
}

// bearerToken extracts the token from an "Authorization: Bearer <token>"
// header. It returns "" if the header is absent or has no token.
func bearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", nil
	}

	parts := strings.Fields(header)
	if len(parts) == 0 || (len(parts) == 1 && strings.EqualFold(parts[0], "Bearer")) {
		// The scheme without a token carries no credentials.
		return "", nil
	}
	if len(parts) != 2 {
		return "", errors.New("malformed Authorization header")
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return "", errors.New("unknown auth type " + parts[0])
	}

	return parts[1], nil
}

func claimString(claims map[string]interface{}, key string) string {
	s, _ := claims[key].(string)
	return s
}
