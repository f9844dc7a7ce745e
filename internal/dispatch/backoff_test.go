package dispatch

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDelay(t *testing.T) {
	cases := []struct {
		attempt int
		want    time.Duration
	}{
		{0, 200 * time.Millisecond},
		{1, 400 * time.Millisecond},
		{5, 6400 * time.Millisecond},
		{7, 25600 * time.Millisecond},
		{8, 30 * time.Second},  // 51.2s, capped
		{10, 30 * time.Second}, // exponent clamp boundary
		{20, 30 * time.Second},
		{-3, 200 * time.Millisecond},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, Delay(c.attempt), "attempt %d", c.attempt)
	}
}

func TestDelay_MonotonicUpToCap(t *testing.T) {
	prev := Delay(0)
	for n := 1; n < 15; n++ {
		d := Delay(n)
		assert.GreaterOrEqual(t, d, prev)
		prev = d
	}
}
