// Package events publishes viewer session activity.
package events

import (
	"context"
	"time"
)

// Event types, appended to the configured subject prefix.
const (
	TypeSessionOpened = "session.opened"
	TypePageViewed    = "page.viewed"
	TypeSessionClosed = "session.closed"
)

// Event is a single piece of viewer activity.
type Event struct {
	Type       string    `json:"type"`
	SessionID  string    `json:"session_id"`
	DocumentID string    `json:"document_id"`
	Page       int       `json:"page,omitempty"`
	At         time.Time `json:"at"`
}

// Publisher delivers events. Implementations must not block on slow consumers.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Noop discards events. It is used when no event bus is configured.
type Noop struct{}

func (Noop) Publish(context.Context, Event) error { return nil }
