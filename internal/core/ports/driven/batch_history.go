package driven

import (
	"context"

	"github.com/Victor-GX-Rocha/mercado-livre-auto-pecas/internal/core/domain"
)

// BatchHistoryStore keeps a history of queue passes.
type BatchHistoryStore interface {
	// RecordBatch logs a finished pass.
	RecordBatch(ctx context.Context, summary *domain.BatchSummary) error

	// RecentBatches returns recent passes, most recent first.
	// An empty queue name returns passes of every queue.
	RecentBatches(ctx context.Context, queue string, limit int) ([]domain.BatchSummary, error)

	// PruneHistory keeps only the most recent 'keep' passes per queue.
	PruneHistory(ctx context.Context, keep int) error
}
