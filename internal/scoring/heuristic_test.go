package scoring

import (
	"testing"

	"github.com/go-notify-dispatch/internal/domain"
	"github.com/stretchr/testify/assert"
)

func event(title, body string) *domain.NotificationEvent {
	return &domain.NotificationEvent{
		EventID: "evt-1",
		Source:  "test",
		User:    domain.EventUser{ID: "42"},
		Content: domain.EventContent{Title: title, Body: body},
	}
}

func TestFallbackScore_NeutralText(t *testing.T) {
	sc := FallbackScore(event("Weekly digest", "Here is what happened this week"))
	assert.Equal(t, 0.5, sc.Score)
	assert.Equal(t, 5, sc.Priority)
	assert.Nil(t, sc.SendAfter)
}

func TestFallbackScore_UrgentError_ClampsToOne(t *testing.T) {
	sc := FallbackScore(event("URGENT: payment error", "please check immediately"))
	assert.Equal(t, 1.0, sc.Score)
	assert.Equal(t, 1, sc.Priority)
}

func TestFallbackScore_UrgencyOnly(t *testing.T) {
	sc := FallbackScore(event("Urgent maintenance window", "starts tonight"))
	assert.InDelta(t, 0.8, sc.Score, 1e-9)
	// 0.8 is not strictly above the 0.8 threshold, so priority 3.
	assert.Equal(t, 3, sc.Priority)
}

func TestFallbackScore_IncidentOnly(t *testing.T) {
	sc := FallbackScore(event("Incident report", "service degradation observed"))
	assert.InDelta(t, 0.7, sc.Score, 1e-9)
	assert.Equal(t, 3, sc.Priority)
}

func TestFallbackScore_CaseInsensitive(t *testing.T) {
	lower := FallbackScore(event("critical outage", ""))
	upper := FallbackScore(event("CRITICAL OUTAGE", ""))
	assert.Equal(t, lower, upper)
}

func TestFallbackScore_IsPure(t *testing.T) {
	ev := event("Urgent: disk failure", "array degraded")
	first := FallbackScore(ev)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, FallbackScore(ev))
	}
	assert.GreaterOrEqual(t, first.Score, 0.0)
	assert.LessOrEqual(t, first.Score, 1.0)
}

func TestFallbackScore_NeverDefers(t *testing.T) {
	for _, title := range []string{"hello", "urgent", "error", "urgent error"} {
		assert.Nil(t, FallbackScore(event(title, "")).SendAfter)
	}
}
