// Package todocal holds the data types shared by the calendar task backend:
// tasks bucketed by date, completion state and user profiles.
package todocal

import (
	"encoding/json"
	"time"
)

// Task is a client-defined task record. The server treats it as an opaque
// JSON object except for its "id" field, which is used to find the task again
// for updates and to sort a date bucket.
type Task map[string]interface{}

// ID returns the task's client-assigned id, and false if it doesn't have one.
func (t Task) ID() (interface{}, bool) {
	id, ok := t["id"]
	if !ok || id == nil {
		return nil, false
	}
	return id, true
}

// IDJSON returns the JSON encoding of the task id. Stores that keep tasks as
// JSON documents compare ids in this form.
func (t Task) IDJSON() (string, bool) {
	id, ok := t.ID()
	if !ok {
		return "", false
	}
	js, err := json.Marshal(id)
	if err != nil {
		return "", false
	}
	return string(js), true
}

// TaskDocument is a stored Task. Every task belongs to exactly one
// (UserID, DateKey) bucket.
type TaskDocument struct {
	ID      string `json:"id"`
	UserID  UserID `json:"userId"`
	DateKey string `json:"dateKey"`
	Task    Task   `json:"task"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TaskCreateRequest adds a task to a date bucket.
type TaskCreateRequest struct {
	DateKey string `json:"dateKey"`
	Task    Task   `json:"task"`
}

// TaskUpdateRequest replaces the task with the same id in a date bucket.
type TaskUpdateRequest struct {
	DateKey string `json:"dateKey"`
	// TaskIndex is required for compatibility with existing clients but isn't
	// used to find the task. Task.ID() is.
	TaskIndex *int `json:"taskIndex"`
	Task      Task `json:"task"`
}

// TaskDeleteRequest removes a task from a date bucket.
type TaskDeleteRequest struct {
	DateKey string `json:"dateKey"`
	// TaskIndex is a position in the bucket sorted by task id.
	TaskIndex *int `json:"taskIndex"`
	// TaskID, when set, selects the task by id instead of by position.
	TaskID interface{} `json:"taskId,omitempty"`
}

// TaskList maps date keys to the tasks stored under them. The user's
// completions are merged in under CompletionsKey.
type TaskList map[string]interface{}

// CompletionsKey is the reserved TaskList key holding completion state.
const CompletionsKey = "completions"

// MutationReply is returned by the task and completion write endpoints.
type MutationReply struct {
	Success bool   `json:"success"`
	ID      string `json:"id,omitempty"`
	Message string `json:"message"`
}
