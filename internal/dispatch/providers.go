package dispatch

import (
	"context"
	"fmt"

	"github.com/go-notify-dispatch/internal/domain"
)

// Provider delivers a ranked message over one channel.
type Provider interface {
	Send(ctx context.Context, msg *domain.RankedMessage) error
}

// Registry routes messages to the provider registered for their channel.
// It implements Provider itself so the controller stays channel-agnostic.
type Registry struct {
	providers map[string]Provider
}

func NewRegistry() *Registry {
	return &Registry{providers: make(map[string]Provider)}
}

func (r *Registry) Register(channel string, p Provider) {
	r.providers[channel] = p
}

func (r *Registry) Send(ctx context.Context, msg *domain.RankedMessage) error {
	p, ok := r.providers[msg.Channel]
	if !ok {
		return fmt.Errorf("channel %q: %w", msg.Channel, domain.ErrNoProvider)
	}
	return p.Send(ctx, msg)
}
