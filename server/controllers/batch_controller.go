package controllers

// BatchController implements POST /batches, the façade's write path (C4),
// following walletserver/controllers' json-in/json-out handler shape.

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"provenance-chain/internal/batcher"
	"provenance-chain/internal/perr"
	"provenance-chain/server/services"
)

type BatchController struct {
	svc *services.BatchService
}

func NewBatchController(svc *services.BatchService) *BatchController {
	return &BatchController{svc: svc}
}

type submitBatchRequest struct {
	Transactions []batcher.Transaction `json:"transactions"`
	Wait         bool                  `json:"wait"`
	TimeoutMS    int                   `json:"timeoutMs"`
}

type submitBatchResponse struct {
	RequestID string `json:"requestId"`
	BatchID   string `json:"batchId"`
	Status    string `json:"status"`
}

// Submit handles POST /batches. requestId is a fresh google/uuid generated
// for each response; the façade does not deduplicate on it (no persisted
// idempotency store is in scope), and a retried request gets a new one.
func (c *BatchController) Submit(w http.ResponseWriter, r *http.Request) {
	var req submitBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	timeout := time.Duration(req.TimeoutMS) * time.Millisecond
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	result, err := c.svc.Submit(r.Context(), req.Transactions, req.Wait, timeout)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := submitBatchResponse{
		RequestID: uuid.NewString(),
		BatchID:   result.BatchID,
		Status:    result.Status.String(),
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func writeError(w http.ResponseWriter, err error) {
	var ve *perr.ValidationError
	var nf *perr.NotFoundError
	switch {
	case errors.As(err, &ve):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.As(err, &nf):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
	}
}
