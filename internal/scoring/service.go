package scoring

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/go-notify-dispatch/internal/domain"
	"golang.org/x/time/rate"
)

// Backend is one request/response call against the external scoring service.
// A rate-limit-class failure must be reported as domain.ErrRateLimited.
type Backend interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Service assigns a score, priority and optional deferred send time to
// events. Score is total: it degrades to the heuristic fallback instead of
// returning an error.
type Service interface {
	Score(ctx context.Context, ev *domain.NotificationEvent) domain.Scoring
	Rank(ctx context.Context, ev *domain.NotificationEvent) *domain.RankedMessage
}

type service struct {
	backend   Backend // nil when no external scorer is configured
	limiter   *rate.Limiter
	retryMax  int
	retryBase time.Duration
	sleep     func(ctx context.Context, d time.Duration) bool
}

// NewService builds the scoring service. backend may be nil; every call then
// delegates straight to FallbackScore. rps throttles outbound backend calls.
func NewService(backend Backend, retryMax int, retryBase time.Duration, rps float64) Service {
	s := &service{
		backend:   backend,
		retryMax:  retryMax,
		retryBase: retryBase,
		sleep:     sleepCtx,
	}
	if rps > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
	return s
}

// Score returns the scoring result for one event. On rate-limit failures the
// backend call is retried up to retryMax times, waiting retryBase × 2^(n-1)
// before retry n; the waits suspend only this call, never other events being
// scored concurrently. Any other failure, retry exhaustion or cancellation
// falls back to the heuristic.
func (s *service) Score(ctx context.Context, ev *domain.NotificationEvent) domain.Scoring {
	if s.backend == nil {
		return FallbackScore(ev)
	}

	prompt := BuildPrompt(ev)
	for retry := 0; ; retry++ {
		if s.limiter != nil {
			if err := s.limiter.Wait(ctx); err != nil {
				return FallbackScore(ev)
			}
		}
		raw, err := s.backend.Complete(ctx, prompt)
		if err == nil {
			return parseScoring(raw)
		}
		if !errors.Is(err, domain.ErrRateLimited) {
			log.Printf("scoring: backend failed for event %s, using fallback: %v", ev.EventID, err)
			return FallbackScore(ev)
		}
		if retry >= s.retryMax {
			log.Printf("scoring: backend still rate limited after %d retries for event %s, using fallback", s.retryMax, ev.EventID)
			return FallbackScore(ev)
		}
		if !s.sleep(ctx, s.retryBase*(1<<retry)) {
			return FallbackScore(ev)
		}
	}
}

// Rank scores the event and binds it to a delivery channel: the first entry
// of the user's ordered channel list, defaulting to email.
func (s *service) Rank(ctx context.Context, ev *domain.NotificationEvent) *domain.RankedMessage {
	sc := s.Score(ctx, ev)

	channel := domain.ChannelEmail
	if len(ev.User.Channels) > 0 {
		channel = ev.User.Channels[0]
	}

	return &domain.RankedMessage{
		Event:     *ev,
		Channel:   channel,
		Priority:  sc.Priority,
		Score:     sc.Score,
		SendAfter: sc.SendAfter,
		Preferences: domain.Preferences{
			RateLimitKey: fmt.Sprintf("user:%s", ev.User.ID),
		},
	}
}

// scoringResponse mirrors the strict-JSON contract asked of the backend.
// Pointer fields let missing values be told apart from zero values.
type scoringResponse struct {
	Score     *float64 `json:"score"`
	Priority  *int     `json:"priority"`
	SendAfter *string  `json:"sendAfter"`
}

// parseScoring decodes the backend response, correcting any missing or
// malformed field to a safe default instead of failing the call.
func parseScoring(raw string) domain.Scoring {
	out := domain.Scoring{Score: 0.5, Priority: 5}

	var resp scoringResponse
	if err := json.Unmarshal([]byte(stripFences(raw)), &resp); err != nil {
		log.Printf("scoring: unparsable backend response, using defaults: %v", err)
		return out
	}

	if resp.Score != nil && *resp.Score >= 0 && *resp.Score <= 1 {
		out.Score = *resp.Score
	}
	if resp.Priority != nil && *resp.Priority >= 1 && *resp.Priority <= 10 {
		out.Priority = *resp.Priority
	}
	if resp.SendAfter != nil {
		if t, err := time.Parse(time.RFC3339, *resp.SendAfter); err == nil {
			out.SendAfter = &t
		}
	}
	return out
}

// stripFences removes a markdown code fence some models wrap JSON in.
func stripFences(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSuffix(strings.TrimSpace(raw), "```")
	}
	return strings.TrimSpace(raw)
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
