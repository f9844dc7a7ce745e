package handler

import (
	"context"
	"encoding/json"
	"net/http"
)

// BatchIngester triggers a batch load from object storage.
type BatchIngester interface {
	IngestBatch(ctx context.Context, key string) (int, error)
}

// BatchHandler triggers ingestion of a JSON-lines event batch.
type BatchHandler struct {
	loader BatchIngester
}

func NewBatchHandler(loader BatchIngester) *BatchHandler {
	return &BatchHandler{loader: loader}
}

type batchRequest struct {
	Key string `json:"key"`
}

func (h *BatchHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Key == "" {
		writeError(w, http.StatusBadRequest, "body must be {\"key\": \"<object key>\"}")
		return
	}
	n, err := h.loader.IngestBatch(r.Context(), req.Key)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, BatchEnvelope{Key: req.Key, Enqueued: n})
}
