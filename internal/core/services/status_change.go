package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Victor-GX-Rocha/mercado-livre-auto-pecas/internal/core/domain"
)

// statusChangeOperation pauses or activates a listing.
type statusChangeOperation struct {
	kind   domain.OperationKind
	target string
	deps   OperationDeps
}

func newStatusChangeOperation(kind domain.OperationKind, target string, deps OperationDeps) *statusChangeOperation {
	return &statusChangeOperation{kind: kind, target: target, deps: deps}
}

func (o *statusChangeOperation) Kind() domain.OperationKind { return o.kind }

// Run issues one status edit and confirms the status the marketplace reports.
func (o *statusChangeOperation) Run(ctx context.Context, rec domain.ProductRecord, token domain.AccessToken) domain.OperationResult {
	log := recordLogger(o.deps.Logger, rec)

	if f := validateRecord(rec, columnMarketplaceID); f != nil {
		return domain.Failed(f)
	}

	itemID := rec.Identifiers.MarketplaceID
	item, err := o.deps.Items.UpdateItem(ctx, token, itemID, map[string]any{"status": o.target})
	if err != nil {
		log.Warn("status change failed", zap.String("target", o.target), zap.Error(err))
		return domain.Failed(classify(err))
	}

	if item.Status != o.target {
		f := domain.NewFailure(domain.RemoteRequestFailure,
			fmt.Sprintf("Status inválido: %s. (Esperado: %s)", item.Status, o.target))
		log.Warn("unexpected status after change", zap.String("status", item.Status), zap.String("target", o.target))
		return domain.Failed(f)
	}

	log.Info("listing status changed", zap.String("status", item.Status))
	return domain.Succeeded(&domain.RemoteState{
		MarketplaceID: itemID,
		Status:        item.Status,
		Permalink:     item.Permalink,
	})
}
