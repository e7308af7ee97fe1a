package todocal

import "time"

// HealthReply reports whether the server and its database are reachable.
type HealthReply struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Database  string    `json:"database"`
}
