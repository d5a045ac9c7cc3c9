package fas

import (
	"time"
)

const (
	EventTypeAudit = "audit"
)

// MailJob is the message handed to the mail queue. Key identifies the
// content and is used to drop duplicates.
type MailJob struct {
	ID       string            `json:"id"`
	Key      string            `json:"key"`
	From     string            `json:"from"`
	To       string            `json:"to"`
	Subject  string            `json:"subject"`
	Body     string            `json:"body"`
	Fields   map[string]string `json:"fields,omitempty"`
	QueuedAt time.Time         `json:"queuedAt"`
}

// AuditEvent is published on the realtime channel and the audit stream
// after an audit entry commits.
type AuditEvent struct {
	Type        string    `json:"type"`
	ID          int64     `json:"id,omitempty"`
	AuthorID    int64     `json:"authorId"`
	TargetID    *int64    `json:"targetId,omitempty"`
	Description string    `json:"description"`
	ChangeTime  time.Time `json:"changeTime"`
}

// Session is what the session store keeps for a bearer token.
type Session struct {
	PersonID int64     `json:"personId"`
	Username string    `json:"username"`
	IssuedAt time.Time `json:"issuedAt"`
}
