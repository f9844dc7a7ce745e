package scoring

import (
	"strings"

	"github.com/go-notify-dispatch/internal/domain"
)

// Keyword classes for the fallback scorer. Matching is substring-based over
// the lowercased title+body, so keep entries short and unambiguous.
var (
	urgencyKeywords  = []string{"urgent", "critical", "asap", "immediately"}
	incidentKeywords = []string{"error", "incident", "outage", "failure"}
)

// FallbackScore scores an event without any I/O. It is the scorer of record
// whenever the external service is unconfigured or unavailable, so it must
// stay pure: identical input always yields identical output.
//
// Base score 0.5; +0.3 for urgency keywords, +0.2 for incident keywords,
// clamped to [0,1]. Priority: >0.8 → 1, >0.6 → 3, else 5. Never defers.
func FallbackScore(ev *domain.NotificationEvent) domain.Scoring {
	text := strings.ToLower(ev.Content.Title + " " + ev.Content.Body)

	// Tenths, so 0.5+0.3+0.2 clamps to exactly 1.0 instead of drifting
	// through float addition.
	tenths := 5
	if containsAny(text, urgencyKeywords) {
		tenths += 3
	}
	if containsAny(text, incidentKeywords) {
		tenths += 2
	}
	if tenths > 10 {
		tenths = 10
	}

	priority := 5
	switch {
	case tenths > 8:
		priority = 1
	case tenths > 6:
		priority = 3
	}

	return domain.Scoring{Score: float64(tenths) / 10, Priority: priority}
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
