package todocal

import (
	"time"
)

// UserID identifies a User. It's the subject claim of the identity provider's
// token, so it's stable across sessions.
type UserID string

// User is the locally stored profile for an authenticated user.
type User struct {
	ID    UserID `json:"userId"`
	Email string `json:"email"`
	Name  string `json:"name"`

	// ProfileImage is the mirrored copy of the provider's avatar. Nil means
	// no image has been stored, either because there is no avatar or because
	// the last download failed.
	ProfileImage *ProfileImage `json:"profileImage,omitempty"`

	// GooglePictureURL is the avatar URL the identity provider reported the
	// last time the image was refreshed.
	GooglePictureURL string `json:"googlePictureUrl"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// HasImage reports whether the user has a stored profile image.
func (u User) HasImage() bool {
	return u.ProfileImage != nil && len(u.ProfileImage.Data) > 0
}

// ProfileImage is an avatar downloaded from the identity provider.
type ProfileImage struct {
	Data        []byte `json:"-"`
	ContentType string `json:"contentType"`
	// Hash is the hex SHA-256 digest of Data. It doubles as the ETag.
	Hash string `json:"hash"`
	Size int64  `json:"size"`
}

// UserView is the identity exposed to API clients.
type UserView struct {
	ID    UserID `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	// Picture points at the locally served image when one is stored, and at
	// the provider's URL otherwise.
	Picture        string `json:"picture"`
	HasStoredImage bool   `json:"hasStoredImage"`
}

// VerifyReply is returned by the auth verification endpoint.
type VerifyReply struct {
	Success bool     `json:"success"`
	User    UserView `json:"user"`
}
