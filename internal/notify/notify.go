// Package notify carries the fire-and-forget event contract used for
// downstream delivery (push fan-out, dashboards).  Publish failures must
// never fail the operation that produced the event; callers log and move on.
package notify

import (
	"context"
	"time"
)

const (
	EventPassCreated  = "pass.created"
	EventPassVerified = "pass.verified"
)

// Event payloads never include the access code itself.
type Event struct {
	Name   string
	At     time.Time
	Fields map[string]any
}

type Sink interface {
	Publish(ctx context.Context, ev Event) error
}
