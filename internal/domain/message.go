package domain

import "time"

// Delivery channel names understood by the provider registry.
const (
	ChannelEmail   = "email"
	ChannelSMS     = "sms"
	ChannelPush    = "push"
	ChannelWebhook = "webhook"
)

// Scoring is the result of scoring an event. Score is in [0,1]; Priority is
// 1–10 with 1 the most urgent. A nil SendAfter means "send immediately".
type Scoring struct {
	Score     float64    `json:"score"`
	Priority  int        `json:"priority"`
	SendAfter *time.Time `json:"send_after,omitempty"`
}

// Preferences holds per-message delivery preferences.
type Preferences struct {
	// RateLimitKey scopes rate limiting, typically "user:<id>".
	// Empty disables rate limiting for this message.
	RateLimitKey string `json:"rate_limit_key,omitempty"`
}

// RankedMessage is a scored event bound to a delivery channel. It is the
// queue payload consumed by the dispatch controller. Retry attempt counts are
// tracked by the transport, never stored on the message.
type RankedMessage struct {
	Event       NotificationEvent `json:"event"`
	Channel     string            `json:"channel"`
	Priority    int               `json:"priority"`
	Score       float64           `json:"score"`
	SendAfter   *time.Time        `json:"send_after,omitempty"`
	Preferences Preferences       `json:"preferences"`
}
