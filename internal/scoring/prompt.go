package scoring

import (
	"encoding/json"
	"fmt"

	"github.com/go-notify-dispatch/internal/domain"
)

const promptInstruction = `You score notification events for delivery priority.
Respond with strict JSON only, no prose, with exactly these fields:
  "score": number between 0 and 1 (higher = more urgent),
  "priority": integer between 1 and 10 (1 = most urgent),
  "sendAfter": ISO-8601 timestamp or null.
Time-sensitive, critical or error-related content scores higher. Marketing or
otherwise non-urgent content may set a future sendAfter to defer delivery.
Event:
%s`

// promptEvent is the subset of the event shown to the scoring service.
type promptEvent struct {
	ID       string   `json:"id"`
	Source   string   `json:"source"`
	UserID   string   `json:"user_id"`
	Segment  string   `json:"segment,omitempty"`
	Channels []string `json:"channels,omitempty"`
	Title    string   `json:"title"`
	Body     string   `json:"body"`
}

// BuildPrompt renders the scoring request for one event.
func BuildPrompt(ev *domain.NotificationEvent) string {
	raw, err := json.Marshal(promptEvent{
		ID:       ev.EventID,
		Source:   ev.Source,
		UserID:   ev.User.ID,
		Segment:  ev.User.Segment,
		Channels: ev.User.Channels,
		Title:    ev.Content.Title,
		Body:     ev.Content.Body,
	})
	if err != nil {
		// Only unmarshalable types can fail here; the struct has none.
		raw = []byte("{}")
	}
	return fmt.Sprintf(promptInstruction, raw)
}
