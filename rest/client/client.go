// Package client provides a Go client for the task backend's REST API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/Binwin6724/todo-calender-be/errors"
)

// Client provides a client to the task backend's REST API.
//
// Don't construct a Client directly. Use New() instead.
type Client struct {
	// HTTP is the underlying HTTP client used send requests.
	HTTP *http.Client
	// BaseURL is the HTTP endpoint for the REST API. Can be overridden for tests.
	// It defaults to http://localhost:5000
	BaseURL string
	// Token is the identity provider token sent as a bearer credential.
	Token string

	Tasks       *TasksClient
	Completions *CompletionsClient
	Auth        *AuthClient
	Users       *UsersClient
}

// New constructs a new Client
func New(token string) *Client {
	client := &Client{
		HTTP:    http.DefaultClient,
		BaseURL: "http://localhost:5000",
		Token:   token,
	}

	client.Tasks = &TasksClient{client}
	client.Completions = &CompletionsClient{client}
	client.Auth = &AuthClient{client}
	client.Users = &UsersClient{client}

	return client
}

func (c Client) do(ctx context.Context, method, path string, body io.Reader, header http.Header) (*http.Response, error) {
	r, err := http.NewRequest(method, c.BaseURL+path, body)
	if err != nil {
		return nil, err
	}
	r = r.WithContext(ctx)

	for k, v := range header {
		r.Header[k] = v
	}
	if c.Token != "" {
		r.Header.Set("Authorization", "Bearer "+c.Token)
	}

	return c.HTTP.Do(r)
}

func (c Client) doJSON(ctx context.Context, method, path string, req interface{}, resp interface{}) error {
	var reqBody io.Reader
	header := http.Header{}
	if req != nil {
		reqJS, err := json.Marshal(req)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(reqJS)
		header.Set("Content-Type", "application/json")
	}

	w, err := c.do(ctx, method, path, reqBody, header)
	if err != nil {
		return err
	}
	defer w.Body.Close()

	if w.StatusCode != http.StatusOK {
		return readError(w)
	}

	if resp != nil {
		if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
			return err
		}
	}

	return nil
}

func readError(w *http.Response) error {
	var resp errors.Response
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		return errors.Errorf("status %d", w.StatusCode)
	}
	if resp.Status == 0 {
		resp.Status = w.StatusCode
	}
	return resp.ToError()
}
