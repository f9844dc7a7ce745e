package dispatch

import (
	"context"
	"fmt"
	"time"

	"github.com/go-notify-dispatch/internal/domain"
)

// Status is the disposition of a single dispatch attempt.
type Status string

const (
	StatusSent        Status = "sent"
	StatusDeferred    Status = "deferred"
	StatusRateLimited Status = "rate_limited"
	StatusFailed      Status = "failed"
)

// Outcome tells the transport what to do with the message next. A Deferred
// outcome carries ResumeAt; RateLimited and Failed carry RetryIn. Sent ends
// processing for the message.
type Outcome struct {
	Status   Status
	ResumeAt time.Time
	RetryIn  time.Duration
}

// Controller runs the per-attempt decision state machine. It holds no
// per-message state: the attempt count comes in with every call and all
// cross-worker coordination lives in the rate-limit store. The controller
// deliberately has no give-up threshold — the transport's redrive policy
// owns dead-lettering once attempts are exhausted.
type Controller struct {
	guard    *Guard
	provider Provider
	now      func() time.Time
}

func NewController(guard *Guard, provider Provider) *Controller {
	return &Controller{guard: guard, provider: provider, now: time.Now}
}

// Dispatch runs one attempt for msg.
//
//   - sendAfter strictly in the future: Deferred, no rate-limit slot and no
//     provider call; the message stays with the transport until ResumeAt.
//   - rate limit denied: RateLimited with a backoff delay; not a failure.
//   - admitted: exactly one provider call. Success is Sent. A provider error
//     is returned alongside a Failed outcome so the transport's own
//     retry/dead-letter policy governs final disposition.
//
// Neither msg nor its event is ever mutated.
func (c *Controller) Dispatch(ctx context.Context, msg *domain.RankedMessage, attempt int) (Outcome, error) {
	if msg.SendAfter != nil && msg.SendAfter.After(c.now()) {
		return Outcome{Status: StatusDeferred, ResumeAt: *msg.SendAfter}, nil
	}

	admitted, err := c.guard.Admit(ctx, msg.Preferences.RateLimitKey)
	if err != nil {
		return Outcome{Status: StatusFailed, RetryIn: Delay(attempt)},
			fmt.Errorf("rate limit admit %q: %w", msg.Preferences.RateLimitKey, err)
	}
	if !admitted {
		return Outcome{Status: StatusRateLimited, RetryIn: Delay(attempt)}, nil
	}

	if err := c.provider.Send(ctx, msg); err != nil {
		return Outcome{Status: StatusFailed, RetryIn: Delay(attempt)},
			fmt.Errorf("send event %s via %s: %w", msg.Event.EventID, msg.Channel, err)
	}
	return Outcome{Status: StatusSent}, nil
}
