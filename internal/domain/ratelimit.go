package domain

// RateLimitState is the fixed-window send counter for one rate-limit key.
// Created on first admission, reset in place when the window goes stale,
// never explicitly deleted — stale rows expire via the table's TTL.
type RateLimitState struct {
	Key         string `json:"key" dynamodbav:"rate_key"`
	WindowStart int64  `json:"window_start" dynamodbav:"window_start"` // epoch millis
	Count       int    `json:"count" dynamodbav:"send_count"`
	ExpiresAt   int64  `json:"-" dynamodbav:"expires_at"` // epoch seconds, TTL attribute
}
