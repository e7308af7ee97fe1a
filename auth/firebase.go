package auth

import (
	"net/http"

	"firebase.google.com/go/v4/auth"
)

// FirebaseProvider is an auth provider backed by Firebase Authentication.
type FirebaseProvider struct {
	AuthClient *auth.Client
}

// FromRequest verifies a Bearer token as a Firebase ID token.
func (f *FirebaseProvider) FromRequest(r *http.Request) (Info, error) {
	tokenStr, err := bearerToken(r)
	if err != nil {
		return Info{}, err
	}
	if tokenStr == "" {
		return Info{}, nil
	}

	token, err := f.AuthClient.VerifyIDToken(r.Context(), tokenStr)
	if auth.IsIDTokenExpired(err) {
		return Info{}, ErrExpired
	} else if err != nil {
		return Info{}, err
	}

	return Info{
		ID:      token.UID,
		Email:   claimString(token.Claims, "email"),
		Name:    claimString(token.Claims, "name"),
		Picture: claimString(token.Claims, "picture"),
	}, nil
}
