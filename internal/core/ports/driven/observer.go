package driven

import (
	"context"

	"github.com/Victor-GX-Rocha/mercado-livre-auto-pecas/internal/core/domain"
)

// OutcomeObserver is notified of terminal outcomes and finished passes.
// Observers are optional and must not block; their failures are logged,
// never propagated to a record.
type OutcomeObserver interface {
	// OutcomeRecorded is called after a terminal outcome was persisted.
	OutcomeRecorded(ctx context.Context, outcome domain.Outcome)

	// BatchFinished is called after a pass over a queue ends.
	BatchFinished(ctx context.Context, summary domain.BatchSummary)
}
