package domain

import "time"

// NotificationEvent is a validated inbound event as produced by ingestion.
// Immutable once created — the pipeline never writes back into it.
type NotificationEvent struct {
	EventID    string       `json:"event_id" validate:"required"`
	Source     string       `json:"source" validate:"required"`
	OccurredAt time.Time    `json:"occurred_at"`
	User       EventUser    `json:"user" validate:"required"`
	Content    EventContent `json:"content" validate:"required"`
}

// EventUser identifies the recipient. Channels is the user's ordered channel
// preference; the first entry wins when a message is ranked.
type EventUser struct {
	ID       string   `json:"id" validate:"required"`
	Segment  string   `json:"segment,omitempty"`
	Channels []string `json:"channels,omitempty"`
}

// EventContent carries the renderable payload of an event.
type EventContent struct {
	Title    string            `json:"title" validate:"required"`
	Body     string            `json:"body"`
	CTA      string            `json:"cta,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
}
