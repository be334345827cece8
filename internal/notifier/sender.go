package notifier

import "context"

// Priority is the ntfy message priority.
type Priority string

const (
	PriorityDefault Priority = "default"
	PriorityHigh    Priority = "high"
)

// Sender delivers a titled message to a push channel. Implementations never
// return delivery errors to the caller; failures are logged.
type Sender interface {
	Notify(ctx context.Context, title, body string, priority Priority)
}
