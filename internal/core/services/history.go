package services

import (
	"context"
	"fmt"

	"github.com/Victor-GX-Rocha/mercado-livre-auto-pecas/internal/core/domain"
	"github.com/Victor-GX-Rocha/mercado-livre-auto-pecas/internal/core/ports/driven"
	"github.com/Victor-GX-Rocha/mercado-livre-auto-pecas/internal/core/ports/driving"
)

// Ensure HistoryService implements the interface.
var _ driving.HistoryService = (*HistoryService)(nil)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = historyKeep
)

// HistoryService reads the history of queue passes.
type HistoryService struct {
	store driven.BatchHistoryStore
}

// NewHistoryService creates a history service.
func NewHistoryService(store driven.BatchHistoryStore) *HistoryService {
	return &HistoryService{store: store}
}

// Recent returns up to limit passes of a queue, most recent first. An empty
// queue returns every queue. A non-positive limit uses the default.
func (s *HistoryService) Recent(ctx context.Context, queue string, limit int) ([]domain.BatchSummary, error) {
	switch queue {
	case "", domain.QueueProducts, domain.QueueCategories, domain.QueueStatus:
	default:
		return nil, fmt.Errorf("%w: unknown queue %q", domain.ErrInvalidInput, queue)
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	summaries, err := s.store.RecentBatches(ctx, queue, limit)
	if err != nil {
		return nil, fmt.Errorf("recent batches: %w", err)
	}
	return summaries, nil
}
