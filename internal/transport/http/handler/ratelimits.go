package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-notify-dispatch/internal/domain"
)

// RateLimitReader reads window state for one rate-limit key.
type RateLimitReader interface {
	Get(ctx context.Context, key string) (*domain.RateLimitState, error)
}

// RateLimitHandler exposes rate-limit window state for inspection.
type RateLimitHandler struct {
	store RateLimitReader
}

func NewRateLimitHandler(store RateLimitReader) *RateLimitHandler {
	return &RateLimitHandler{store: store}
}

func (h *RateLimitHandler) Get(w http.ResponseWriter, r *http.Request) {
	st, err := h.store.Get(r.Context(), chi.URLParam(r, "key"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}
