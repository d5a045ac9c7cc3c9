package domain

import "time"

// Notification is a mail message handed to the mail collaborator. At is the
// time of the change that triggered it.
type Notification struct {
	From    string            `json:"from"`
	To      string            `json:"to"`
	Subject string            `json:"subject"`
	Body    string            `json:"body"`
	Fields  map[string]string `json:"fields,omitempty"`
	At      time.Time         `json:"at"`
}
