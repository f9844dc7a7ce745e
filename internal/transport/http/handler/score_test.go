package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-notify-dispatch/internal/domain"
	"github.com/go-notify-dispatch/internal/scoring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScore_ValidEvent(t *testing.T) {
	h := NewScoreHandler(scoring.NewService(nil, 3, 0, 0))
	body := `{"source":"billing","user":{"id":"42"},"content":{"title":"urgent error","body":"invoice failed"}}`
	req := httptest.NewRequest(http.MethodPost, "/v1/score", strings.NewReader(body))
	rec := httptest.NewRecorder()

	h.Score(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var msg domain.RankedMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &msg))
	assert.Equal(t, 1.0, msg.Score)
	assert.Equal(t, 1, msg.Priority)
	assert.Equal(t, domain.ChannelEmail, msg.Channel)
	assert.Equal(t, "user:42", msg.Preferences.RateLimitKey)
	assert.NotEmpty(t, msg.Event.EventID, "event id is assigned when absent")
}

func TestScore_InvalidJSON(t *testing.T) {
	h := NewScoreHandler(scoring.NewService(nil, 3, 0, 0))
	req := httptest.NewRequest(http.MethodPost, "/v1/score", strings.NewReader("{"))
	rec := httptest.NewRecorder()

	h.Score(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestScore_MissingRequiredFields(t *testing.T) {
	h := NewScoreHandler(scoring.NewService(nil, 3, 0, 0))
	req := httptest.NewRequest(http.MethodPost, "/v1/score", strings.NewReader(`{"source":"x"}`))
	rec := httptest.NewRecorder()

	h.Score(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

type stubRateLimits struct{ st *domain.RateLimitState }

func (s stubRateLimits) Get(_ context.Context, key string) (*domain.RateLimitState, error) {
	if s.st == nil || s.st.Key != key {
		return nil, domain.ErrNotFound
	}
	return s.st, nil
}

func TestRateLimitGet_UnknownKey_Returns404(t *testing.T) {
	h := NewRateLimitHandler(stubRateLimits{})
	req := httptest.NewRequest(http.MethodGet, "/v1/rate-limits/user:1", nil)
	rec := httptest.NewRecorder()

	h.Get(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
