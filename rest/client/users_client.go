package client

import (
	"context"
	"io"
	"net/http"
	"net/url"

	todocal "github.com/Binwin6724/todo-calender-be"
)

// UsersClient provides access to the /api/user endpoint
type UsersClient struct {
	client *Client
}

// Image downloads a user's stored profile image.
func (c *UsersClient) Image(ctx context.Context, userID todocal.UserID) (todocal.ProfileImage, error) {
	var img todocal.ProfileImage

	w, err := c.client.do(ctx, "GET", "/api/user/image/"+url.PathEscape(string(userID)), nil, nil)
	if err != nil {
		return img, err
	}
	defer w.Body.Close()

	if w.StatusCode != http.StatusOK {
		return img, readError(w)
	}

	img.Data, err = io.ReadAll(w.Body)
	if err != nil {
		return img, err
	}
	img.ContentType = w.Header.Get("Content-Type")
	img.Size = int64(len(img.Data))
	return img, nil
}
