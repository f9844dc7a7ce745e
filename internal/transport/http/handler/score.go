package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-notify-dispatch/internal/domain"
	"github.com/go-notify-dispatch/internal/pkg/id"
	"github.com/go-notify-dispatch/internal/pkg/validate"
	"github.com/go-notify-dispatch/internal/scoring"
)

// ScoreHandler scores a posted event ad hoc, without enqueuing it.
// Useful for tuning the scoring prompt and inspecting heuristic output.
type ScoreHandler struct {
	svc scoring.Service
}

func NewScoreHandler(svc scoring.Service) *ScoreHandler {
	return &ScoreHandler{svc: svc}
}

func (h *ScoreHandler) Score(w http.ResponseWriter, r *http.Request) {
	var ev domain.NotificationEvent
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if ev.EventID == "" {
		ev.EventID = id.New()
	}
	if err := validate.Struct(&ev); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, h.svc.Rank(r.Context(), &ev))
}
