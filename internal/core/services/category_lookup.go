package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Victor-GX-Rocha/mercado-livre-auto-pecas/internal/core/domain"
	"github.com/Victor-GX-Rocha/mercado-livre-auto-pecas/internal/core/ports/driven"
)

// CategoryLookupService answers rows of the category lookup queue.
type CategoryLookupService struct {
	categories driven.CategoryGateway
	resolver   *CategoryResolver
	logger     *zap.Logger
}

// NewCategoryLookupService creates a lookup service.
func NewCategoryLookupService(categories driven.CategoryGateway, resolver *CategoryResolver, logger *zap.Logger) *CategoryLookupService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CategoryLookupService{categories: categories, resolver: resolver, logger: logger}
}

// Lookup resolves one row. Failures are classified.
func (s *CategoryLookupService) Lookup(ctx context.Context, rec domain.CategoryLookupRecord, token domain.AccessToken) (domain.CategoryLookupResult, *domain.Failure) {
	if f := validateLookup(rec); f != nil {
		return domain.CategoryLookupResult{}, f
	}

	var (
		result domain.CategoryLookupResult
		err    error
	)
	switch rec.Operation {
	case domain.LookupIDByPath:
		result, err = s.idByPath(ctx, rec, token)
	case domain.LookupIDByTitle:
		result, err = s.idByTitle(ctx, rec, token)
	case domain.LookupPathByID:
		result, err = s.pathByID(ctx, rec, token)
	}
	if err != nil {
		s.logger.Warn("category lookup failed",
			zap.Int64("record_id", rec.ID),
			zap.Stringer("operation", rec.Operation),
			zap.Error(err))
		return domain.CategoryLookupResult{}, classify(err)
	}
	return result, nil
}

func (s *CategoryLookupService) idByPath(ctx context.Context, rec domain.CategoryLookupRecord, token domain.AccessToken) (domain.CategoryLookupResult, error) {
	id, err := s.resolver.walkPath(ctx, token, rec.CategoryPath)
	if err != nil {
		return domain.CategoryLookupResult{}, err
	}
	return domain.CategoryLookupResult{CategoryID: id}, nil
}

// idByTitle takes the first prediction of the domain discovery search.
func (s *CategoryLookupService) idByTitle(ctx context.Context, rec domain.CategoryLookupRecord, token domain.AccessToken) (domain.CategoryLookupResult, error) {
	predictions, err := s.categories.DiscoverCategory(ctx, token, rec.Title)
	if err != nil {
		return domain.CategoryLookupResult{}, err
	}
	if len(predictions) == 0 {
		return domain.CategoryLookupResult{}, domain.NewFailure(domain.BusinessRuleFailure, "Nenhuma categoria sugerida para o título.")
	}

	first := predictions[0]
	category, err := s.categories.GetCategory(ctx, token, first.CategoryID)
	if err != nil {
		return domain.CategoryLookupResult{}, err
	}
	path := category.Path()
	if path == "" {
		path = first.CategoryName
	}
	return domain.CategoryLookupResult{CategoryID: first.CategoryID, CategoryPath: path}, nil
}

func (s *CategoryLookupService) pathByID(ctx context.Context, rec domain.CategoryLookupRecord, token domain.AccessToken) (domain.CategoryLookupResult, error) {
	id := strings.TrimSpace(rec.CategoryID)
	category, err := s.categories.GetCategory(ctx, token, id)
	if err != nil {
		return domain.CategoryLookupResult{}, err
	}
	path := category.Path()
	if path == "" {
		return domain.CategoryLookupResult{}, domain.NewFailure(domain.BusinessRuleFailure, "Categoria sem hierarquia definida.")
	}
	return domain.CategoryLookupResult{CategoryID: id, CategoryPath: path}, nil
}

// validateLookup checks credentials, the operation code and the column the
// operation reads.
func validateLookup(rec domain.CategoryLookupRecord) *domain.Failure {
	if !rec.Operation.IsValid() {
		return domain.NewFailure(domain.ValidationFailure, fmt.Sprintf("Operação inválida: %d", int(rec.Operation)))
	}

	var causes []string
	if missing := rec.Credentials.MissingFields(); len(missing) > 0 {
		causes = append(causes, fmt.Sprintf("Colunas de credencial vazias!: [%s]", strings.Join(missing, ", ")))
	}

	column, value := "", ""
	switch rec.Operation {
	case domain.LookupIDByPath:
		column, value = "nome_categoria", rec.CategoryPath
	case domain.LookupIDByTitle:
		column, value = "titulo_produto", rec.Title
	case domain.LookupPathByID:
		column, value = "categoria_id", rec.CategoryID
	}
	if strings.TrimSpace(value) == "" {
		causes = append(causes, fmt.Sprintf("Colunas obrigatórias vazias: [%s]", column))
	}

	if len(causes) == 0 {
		return nil
	}
	return domain.NewFailure(domain.ValidationFailure, causes...)
}
