package client

import (
	"context"

	todocal "github.com/Binwin6724/todo-calender-be"
)

// AuthClient provides access to the /api/auth endpoint
type AuthClient struct {
	client *Client
}

// Verify checks the client's token and returns the resolved identity.
func (c *AuthClient) Verify(ctx context.Context) (todocal.VerifyReply, error) {
	var resp todocal.VerifyReply
	if err := c.client.doJSON(ctx, "POST", "/api/auth/verify", nil, &resp); err != nil {
		return resp, err
	}
	return resp, nil
}
