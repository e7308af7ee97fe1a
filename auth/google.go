package auth

import (
	"context"
	"net/http"
	"strings"

	"google.golang.org/api/idtoken"
)

// GoogleProvider verifies Google Sign-In ID tokens issued for a single OAuth
// client.
type GoogleProvider struct {
	// Audience is the OAuth client ID the tokens must be issued for.
	Audience string

	// Validate checks a token and returns its payload. It defaults to
	// idtoken.Validate and can be replaced in tests.
	Validate func(ctx context.Context, token, audience string) (*idtoken.Payload, error)
}

// FromRequest verifies a Bearer token as a Google ID token.
func (g *GoogleProvider) FromRequest(r *http.Request) (Info, error) {
	tokenStr, err := bearerToken(r)
	if err != nil {
		return Info{}, err
	}
	if tokenStr == "" {
		return Info{}, nil
	}

	validate := g.Validate
	if validate == nil {
		validate = idtoken.Validate
	}

	payload, err := validate(r.Context(), tokenStr, g.Audience)
	if err != nil && strings.Contains(err.Error(), "token expired") {
		return Info{}, ErrExpired
	} else if err != nil {
		return Info{}, err
	}

	return Info{
		ID:      payload.Subject,
		Email:   claimString(payload.Claims, "email"),
		Name:    claimString(payload.Claims, "name"),
		Picture: claimString(payload.Claims, "picture"),
	}, nil
}
