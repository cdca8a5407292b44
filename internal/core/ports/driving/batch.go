package driving

import (
	"context"

	"github.com/Victor-GX-Rocha/mercado-livre-auto-pecas/internal/core/domain"
)

// BatchProcessor runs one pass over the queues.
type BatchProcessor interface {
	// ProcessProducts processes every pending product row.
	ProcessProducts(ctx context.Context) (*domain.BatchSummary, error)

	// ProcessCategoryLookups processes every pending category lookup row.
	ProcessCategoryLookups(ctx context.Context) (*domain.BatchSummary, error)

	// ProcessStatusChecks processes every pending status check row.
	ProcessStatusChecks(ctx context.Context) (*domain.BatchSummary, error)

	// RunOnce processes every enabled queue once.
	RunOnce(ctx context.Context) ([]domain.BatchSummary, error)
}

// Runner repeats passes while the operator's switch is on.
type Runner interface {
	// Start runs passes until the switch is turned off, Stop is called or
	// the context is cancelled.
	Start(ctx context.Context) error

	// Stop gracefully stops the loop after the current pass.
	Stop() error
}

// CategoryFinder resolves categories on demand.
type CategoryFinder interface {
	// FindByPath walks the category tree along a "A > B > C" path.
	FindByPath(ctx context.Context, token domain.AccessToken, path string) (*domain.Category, error)
}

// HistoryService exposes the history of passes.
type HistoryService interface {
	// Recent returns recent passes, most recent first.
	Recent(ctx context.Context, queue string, limit int) ([]domain.BatchSummary, error)
}
