package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Victor-GX-Rocha/mercado-livre-auto-pecas/internal/core/domain"
	"github.com/Victor-GX-Rocha/mercado-livre-auto-pecas/internal/core/ports/driven"
)

// StatusCheckService reads the remote status of listings.
type StatusCheckService struct {
	items  driven.ItemGateway
	logger *zap.Logger
}

// NewStatusCheckService creates a status check service.
func NewStatusCheckService(items driven.ItemGateway, logger *zap.Logger) *StatusCheckService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatusCheckService{items: items, logger: logger}
}

// Check returns the status the marketplace reports for the row's listing.
func (s *StatusCheckService) Check(ctx context.Context, rec domain.StatusCheckRecord, token domain.AccessToken) (string, *domain.Failure) {
	if rec.Operation != domain.StatusCheckOperation {
		return "", domain.NewFailure(domain.ValidationFailure, fmt.Sprintf("Operação inválida: %d", rec.Operation))
	}

	var causes []string
	if missing := rec.Credentials.MissingFields(); len(missing) > 0 {
		causes = append(causes, fmt.Sprintf("Colunas de credencial vazias!: [%s]", strings.Join(missing, ", ")))
	}
	if strings.TrimSpace(rec.MarketplaceID) == "" {
		causes = append(causes, "Colunas obrigatórias vazias: [mercado_livre_id]")
	}
	if len(causes) > 0 {
		return "", domain.NewFailure(domain.ValidationFailure, causes...)
	}

	item, err := s.items.GetItem(ctx, token, strings.TrimSpace(rec.MarketplaceID))
	if err != nil {
		s.logger.Warn("status check failed", zap.Int64("record_id", rec.ID), zap.Error(err))
		return "", classify(err)
	}
	s.logger.Debug("status checked",
		zap.Int64("record_id", rec.ID),
		zap.String("item_id", item.ID),
		zap.String("status", item.Status))
	return item.Status, nil
}
