package client

import (
	"context"

	todocal "github.com/Binwin6724/todo-calender-be"
)

// CompletionsClient provides access to the /api/completions endpoint
type CompletionsClient struct {
	client *Client
}

// Save replaces the user's completion state.
func (c *CompletionsClient) Save(ctx context.Context, completions todocal.Completions) (todocal.MutationReply, error) {
	var resp todocal.MutationReply
	req := todocal.CompletionsSaveRequest{Completions: completions}
	if err := c.client.doJSON(ctx, "POST", "/api/completions", req, &resp); err != nil {
		return resp, err
	}
	return resp, nil
}
