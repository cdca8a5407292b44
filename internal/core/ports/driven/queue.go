package driven

import (
	"context"

	"github.com/Victor-GX-Rocha/mercado-livre-auto-pecas/internal/core/domain"
)

// ProductQueue reads pending rows of the product queue.
type ProductQueue interface {
	// PendingProducts returns every row whose return code is pending,
	// ordered by id.
	PendingProducts(ctx context.Context) ([]domain.ProductRecord, error)
}

// OutcomeRecorder persists per-record outcomes of the product queue.
// Every call is an idempotent column update.
type OutcomeRecorder interface {
	// MarkExecuting flags a row as in progress.
	MarkExecuting(ctx context.Context, id int64) error

	// MarkSuccess flags a row as done and writes the remote state.
	MarkSuccess(ctx context.Context, id int64, update domain.SuccessUpdate) error

	// MarkFailure flags a row as failed and writes its causes.
	MarkFailure(ctx context.Context, id int64, code domain.OutcomeCode, causes []string) error

	// MarkAsleep parks a row.
	MarkAsleep(ctx context.Context, id int64) error
}

// CategoryLookupStore reads and updates the category lookup queue.
type CategoryLookupStore interface {
	// PendingLookups returns every pending lookup row, ordered by id.
	PendingLookups(ctx context.Context) ([]domain.CategoryLookupRecord, error)

	// MarkLookupExecuting flags a row as in progress.
	MarkLookupExecuting(ctx context.Context, id int64) error

	// MarkLookupSuccess writes the lookup result.
	MarkLookupSuccess(ctx context.Context, id int64, result domain.CategoryLookupResult) error

	// MarkLookupFailure flags a row as failed.
	MarkLookupFailure(ctx context.Context, id int64, code domain.OutcomeCode, causes []string) error
}

// StatusCheckStore reads and updates the status check queue.
type StatusCheckStore interface {
	// PendingStatusChecks returns every pending status row, ordered by id.
	PendingStatusChecks(ctx context.Context) ([]domain.StatusCheckRecord, error)

	// MarkStatusExecuting flags a row as in progress.
	MarkStatusExecuting(ctx context.Context, id int64) error

	// MarkStatusSuccess writes the remote status.
	MarkStatusSuccess(ctx context.Context, id int64, status string) error

	// MarkStatusFailure flags a row as failed.
	MarkStatusFailure(ctx context.Context, id int64, code domain.OutcomeCode, causes []string) error
}
