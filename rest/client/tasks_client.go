package client

import (
	"context"

	todocal "github.com/Binwin6724/todo-calender-be"
)

// TasksClient provides access to the /api/tasks endpoint
type TasksClient struct {
	client *Client
}

// List returns the user's tasks grouped by date key.
func (c *TasksClient) List(ctx context.Context) (todocal.TaskList, error) {
	var resp todocal.TaskList
	if err := c.client.doJSON(ctx, "GET", "/api/tasks", nil, &resp); err != nil {
		return resp, err
	}
	return resp, nil
}

// Create adds a task to a date bucket.
func (c *TasksClient) Create(ctx context.Context, req todocal.TaskCreateRequest) (todocal.MutationReply, error) {
	var resp todocal.MutationReply
	if err := c.client.doJSON(ctx, "POST", "/api/tasks", req, &resp); err != nil {
		return resp, err
	}
	return resp, nil
}

// Update replaces a task, matched by its id.
func (c *TasksClient) Update(ctx context.Context, req todocal.TaskUpdateRequest) (todocal.MutationReply, error) {
	var resp todocal.MutationReply
	if err := c.client.doJSON(ctx, "PUT", "/api/tasks", req, &resp); err != nil {
		return resp, err
	}
	return resp, nil
}

// Delete removes a task by position, or by task id when req.TaskID is set.
func (c *TasksClient) Delete(ctx context.Context, req todocal.TaskDeleteRequest) (todocal.MutationReply, error) {
	var resp todocal.MutationReply
	if err := c.client.doJSON(ctx, "DELETE", "/api/tasks", req, &resp); err != nil {
		return resp, err
	}
	return resp, nil
}
