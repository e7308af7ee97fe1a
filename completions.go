package todocal

import "time"

// Completions is the client-defined structure tracking which tasks are done.
// It's stored as-is and replaced wholesale on every save.
type Completions map[string]interface{}

// CompletionsDocument is a user's stored completion state. There's at most one
// per user.
type CompletionsDocument struct {
	Type      string      `json:"type"`
	UserID    UserID      `json:"userId"`
	Data      Completions `json:"data"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

// CompletionsType is the Type of every CompletionsDocument.
const CompletionsType = "completions"

// CompletionsSaveRequest replaces the user's completion state.
type CompletionsSaveRequest struct {
	Completions Completions `json:"completions"`
}
