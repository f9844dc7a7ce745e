package dispatch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-notify-dispatch/internal/domain"
	"github.com/go-notify-dispatch/internal/infrastructure/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockProvider struct{ mock.Mock }

func (m *mockProvider) Send(ctx context.Context, msg *domain.RankedMessage) error {
	return m.Called(ctx, msg).Error(0)
}

// --- helpers ---

var fixedNow = time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)

func rankedMessage(key string) *domain.RankedMessage {
	return &domain.RankedMessage{
		Event: domain.NotificationEvent{
			EventID: "evt-1",
			Source:  "test",
			User:    domain.EventUser{ID: "42"},
			Content: domain.EventContent{Title: "hello"},
		},
		Channel:     domain.ChannelEmail,
		Priority:    5,
		Score:       0.5,
		Preferences: domain.Preferences{RateLimitKey: key},
	}
}

func testController(p Provider, capacity int) (*Controller, *memory.RateLimitStore) {
	store := memory.NewRateLimitStore()
	g := NewGuard(store, time.Minute, capacity)
	g.now = func() time.Time { return fixedNow }
	c := NewController(g, p)
	c.now = func() time.Time { return fixedNow }
	return c, store
}

func TestDispatch_FutureSendAfter_DefersWithoutProviderCall(t *testing.T) {
	p := &mockProvider{}
	c, store := testController(p, 30)

	msg := rankedMessage("user:42")
	later := fixedNow.Add(2 * time.Hour)
	msg.SendAfter = &later

	out, err := c.Dispatch(context.Background(), msg, 0)

	require.NoError(t, err)
	assert.Equal(t, StatusDeferred, out.Status)
	assert.Equal(t, later, out.ResumeAt)
	p.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)

	// Deferral must not consume a rate-limit slot.
	_, err = store.Get(context.Background(), "user:42")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDispatch_PastSendAfter_Sends(t *testing.T) {
	p := &mockProvider{}
	p.On("Send", mock.Anything, mock.Anything).Return(nil).Once()
	c, _ := testController(p, 30)

	msg := rankedMessage("user:42")
	past := fixedNow.Add(-time.Minute)
	msg.SendAfter = &past

	out, err := c.Dispatch(context.Background(), msg, 0)

	require.NoError(t, err)
	assert.Equal(t, StatusSent, out.Status)
	p.AssertExpectations(t)
}

func TestDispatch_NoSendAfter_SendsImmediately(t *testing.T) {
	p := &mockProvider{}
	p.On("Send", mock.Anything, mock.Anything).Return(nil).Once()
	c, _ := testController(p, 30)

	out, err := c.Dispatch(context.Background(), rankedMessage("user:42"), 0)

	require.NoError(t, err)
	assert.Equal(t, StatusSent, out.Status)
	p.AssertExpectations(t)
}

func TestDispatch_RateLimited_SignalsRetryWithBackoff(t *testing.T) {
	p := &mockProvider{}
	p.On("Send", mock.Anything, mock.Anything).Return(nil).Once()
	c, _ := testController(p, 1)

	msg := rankedMessage("user:42")
	out, err := c.Dispatch(context.Background(), msg, 0)
	require.NoError(t, err)
	require.Equal(t, StatusSent, out.Status)

	out, err = c.Dispatch(context.Background(), msg, 3)
	require.NoError(t, err, "rate limiting is not an error")
	assert.Equal(t, StatusRateLimited, out.Status)
	assert.Equal(t, Delay(3), out.RetryIn)
	p.AssertNumberOfCalls(t, "Send", 1)
}

func TestDispatch_ProviderFailure_PropagatesErrorWithBackoff(t *testing.T) {
	sendErr := errors.New("smtp: connection reset")
	p := &mockProvider{}
	p.On("Send", mock.Anything, mock.Anything).Return(sendErr).Once()
	c, _ := testController(p, 30)

	out, err := c.Dispatch(context.Background(), rankedMessage("user:42"), 2)

	require.Error(t, err)
	assert.ErrorIs(t, err, sendErr)
	assert.Equal(t, StatusFailed, out.Status)
	assert.Equal(t, Delay(2), out.RetryIn)
}

func TestDispatch_MessageNeverMutated(t *testing.T) {
	p := &mockProvider{}
	p.On("Send", mock.Anything, mock.Anything).Return(nil)
	c, _ := testController(p, 30)

	msg := rankedMessage("user:42")
	before := *msg
	_, err := c.Dispatch(context.Background(), msg, 5)
	require.NoError(t, err)
	assert.Equal(t, before, *msg)
}

func TestDispatch_ThirtyOneAttempts_ExactlyThirtySends(t *testing.T) {
	p := &mockProvider{}
	p.On("Send", mock.Anything, mock.Anything).Return(nil)
	c, _ := testController(p, 30)

	msg := rankedMessage("user:42")
	var sent, limited int
	for i := 0; i < 31; i++ {
		out, err := c.Dispatch(context.Background(), msg, 0)
		require.NoError(t, err)
		switch out.Status {
		case StatusSent:
			sent++
		case StatusRateLimited:
			limited++
		}
	}

	assert.Equal(t, 30, sent)
	assert.Equal(t, 1, limited)
	p.AssertNumberOfCalls(t, "Send", 30)
}

func TestRegistry_UnknownChannel(t *testing.T) {
	r := NewRegistry()
	err := r.Send(context.Background(), rankedMessage(""))
	assert.ErrorIs(t, err, domain.ErrNoProvider)
}

func TestRegistry_RoutesByChannel(t *testing.T) {
	email := &mockProvider{}
	push := &mockProvider{}
	push.On("Send", mock.Anything, mock.Anything).Return(nil).Once()

	r := NewRegistry()
	r.Register(domain.ChannelEmail, email)
	r.Register(domain.ChannelPush, push)

	msg := rankedMessage("")
	msg.Channel = domain.ChannelPush
	require.NoError(t, r.Send(context.Background(), msg))

	email.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
	push.AssertExpectations(t)
}
