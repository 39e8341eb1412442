package services

import (
	"context"
	"time"

	"provenance-chain/internal/batcher"
)

// BatchService is a thin pass-through to internal/batcher, kept separate so
// the controller layer never touches signing keys directly.
type BatchService struct {
	batcher *batcher.Batcher
}

func NewBatchService(b *batcher.Batcher) *BatchService {
	return &BatchService{batcher: b}
}

func (s *BatchService) Submit(ctx context.Context, txns []batcher.Transaction, wait bool, timeout time.Duration) (batcher.Result, error) {
	return s.batcher.SubmitBatch(ctx, txns, wait, timeout)
}
