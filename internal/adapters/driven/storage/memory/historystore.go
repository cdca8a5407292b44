package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/Victor-GX-Rocha/mercado-livre-auto-pecas/internal/core/domain"
	"github.com/Victor-GX-Rocha/mercado-livre-auto-pecas/internal/core/ports/driven"
)

// Ensure HistoryStore implements the interface.
var _ driven.BatchHistoryStore = (*HistoryStore)(nil)

// HistoryStore is an in-memory implementation of driven.BatchHistoryStore.
type HistoryStore struct {
	mu      sync.RWMutex
	batches map[string]domain.BatchSummary
}

// NewHistoryStore creates a new in-memory history store.
func NewHistoryStore() *HistoryStore {
	return &HistoryStore{batches: make(map[string]domain.BatchSummary)}
}

// RecordBatch stores or replaces a pass.
func (s *HistoryStore) RecordBatch(_ context.Context, summary *domain.BatchSummary) error {
	if summary == nil || summary.RunID == "" {
		return domain.ErrInvalidInput
	}
	cp := *summary
	cp.Counts = make(map[domain.OutcomeCode]int, len(summary.Counts))
	for k, v := range summary.Counts {
		cp.Counts[k] = v
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.batches[cp.RunID] = cp
	return nil
}

// RecentBatches returns recent passes, most recent first.
func (s *HistoryStore) RecentBatches(_ context.Context, queue string, limit int) ([]domain.BatchSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.BatchSummary, 0, len(s.batches))
	for _, b := range s.batches {
		if queue == "" || b.Queue == queue {
			out = append(out, b)
		}
	}
	sortNewestFirst(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// PruneHistory keeps the newest 'keep' passes of each queue.
func (s *HistoryStore) PruneHistory(_ context.Context, keep int) error {
	if keep < 0 {
		keep = 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	byQueue := make(map[string][]domain.BatchSummary)
	for _, b := range s.batches {
		byQueue[b.Queue] = append(byQueue[b.Queue], b)
	}
	for _, list := range byQueue {
		sortNewestFirst(list)
		for i := keep; i < len(list); i++ {
			delete(s.batches, list[i].RunID)
		}
	}
	return nil
}

func sortNewestFirst(list []domain.BatchSummary) {
	sort.Slice(list, func(i, j int) bool {
		if list[i].StartedAt.Equal(list[j].StartedAt) {
			return list[i].RunID > list[j].RunID
		}
		return list[i].StartedAt.After(list[j].StartedAt)
	})
}
