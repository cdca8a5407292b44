package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Victor-GX-Rocha/mercado-livre-auto-pecas/internal/core/domain"
)

// deletedStatuses are the statuses a listing may report after deletion.
var deletedStatuses = []string{domain.StatusClosed, domain.StatusDeleted}

// deleteOperation closes a listing and then deletes it.
type deleteOperation struct {
	deps OperationDeps
}

func newDeleteOperation(deps OperationDeps) *deleteOperation {
	return &deleteOperation{deps: deps}
}

func (o *deleteOperation) Kind() domain.OperationKind { return domain.OperationDelete }

// Run closes the listing on a best-effort basis, then deletes it. Only the
// delete edit is fatal.
func (o *deleteOperation) Run(ctx context.Context, rec domain.ProductRecord, token domain.AccessToken) domain.OperationResult {
	log := recordLogger(o.deps.Logger, rec)

	if f := validateRecord(rec, columnMarketplaceID); f != nil {
		return domain.Failed(f)
	}
	itemID := rec.Identifiers.MarketplaceID

	var causes []string
	if _, err := o.deps.Items.UpdateItem(ctx, token, itemID, map[string]any{"status": domain.StatusClosed}); err != nil {
		log.Warn("close before delete failed", zap.Error(err))
		causes = append(causes, fmt.Sprintf("Erro de fechamento: %v", err))
	}

	item, err := o.deps.Items.UpdateItem(ctx, token, itemID, map[string]any{"deleted": "true"})
	if err != nil {
		f := classify(err)
		for _, c := range causes {
			f = f.WithCause(c)
		}
		log.Warn("delete failed", zap.Error(err))
		return domain.Failed(f)
	}

	if !isDeletedStatus(item.Status) {
		causes = append(causes, fmt.Sprintf("Status inválido: %s. (Esperado: %s)",
			item.Status, strings.Join(deletedStatuses, ", ")))
		log.Warn("unexpected status after delete", zap.String("status", item.Status))
		return domain.Failed(domain.NewFailure(domain.RemoteRequestFailure, causes...))
	}

	log.Info("listing deleted", zap.String("status", item.Status))
	return domain.Succeeded(&domain.RemoteState{
		MarketplaceID: itemID,
		Status:        item.Status,
		Permalink:     item.Permalink,
	}, causes...)
}

func isDeletedStatus(status string) bool {
	for _, s := range deletedStatuses {
		if s == status {
			return true
		}
	}
	return false
}
