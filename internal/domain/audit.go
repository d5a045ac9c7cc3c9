package domain

import "time"

// AuditLogEntry is an append-only record of a state change.
type AuditLogEntry struct {
	ID          int64     `json:"id"`
	AuthorID    int64     `json:"authorId"`
	TargetID    *int64    `json:"targetId,omitempty"`
	Description string    `json:"description"`
	ChangeTime  time.Time `json:"changeTime"`
}
