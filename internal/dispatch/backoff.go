package dispatch

import "time"

// Backoff bounds. The exponent is clamped before shifting so large attempt
// counts from the transport cannot overflow the duration math.
const (
	backoffBase = 200 * time.Millisecond
	backoffCap  = 30 * time.Second
	maxExponent = 10
)

// Delay returns the backoff delay for a retry: min(200ms × 2^min(n,10), 30s).
// Pure function, used for both rate-limit deferrals and provider failures.
func Delay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	if attempt > maxExponent {
		attempt = maxExponent
	}
	d := backoffBase * time.Duration(1<<attempt)
	if d > backoffCap {
		d = backoffCap
	}
	return d
}
