package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Victor-GX-Rocha/mercado-livre-auto-pecas/internal/core/domain"
	"github.com/Victor-GX-Rocha/mercado-livre-auto-pecas/internal/core/ports/driven"
	"github.com/Victor-GX-Rocha/mercado-livre-auto-pecas/internal/core/ports/driving"
)

// Ensure CategoryResolver implements the interface.
var _ driving.CategoryFinder = (*CategoryResolver)(nil)

// Category columns, in resolution priority.
const (
	columnCategory     = "categoria"
	columnCategoryID   = "categoria_id"
	columnCategoryPath = "categoria_caminho"
)

// LevelNotFoundError reports a path segment that matched no category.
type LevelNotFoundError struct {
	Level string
}

func (e *LevelNotFoundError) Error() string {
	return fmt.Sprintf("Nível '%s' não encontrado.", e.Level)
}

// Unwrap allows errors.Is(err, domain.ErrCategoryNotFound).
func (e *LevelNotFoundError) Unwrap() error {
	return domain.ErrCategoryNotFound
}

// CategoryResolution is a validated category and the causes of every
// strategy rejected before it.
type CategoryResolution struct {
	Category *domain.Category
	// Column names the column that produced the category.
	Column string
	// Rejected holds the causes of the strategies tried before the winner.
	Rejected domain.ValidationOutcome
}

// CategoryResolver turns a record's category columns into one validated leaf
// category. Nothing is cached: every call fetches what it needs.
type CategoryResolver struct {
	categories driven.CategoryGateway
	validator  *CategoryValidator
	logger     *zap.Logger
}

// NewCategoryResolver creates a resolver.
func NewCategoryResolver(categories driven.CategoryGateway, validator *CategoryValidator, logger *zap.Logger) *CategoryResolver {
	return &CategoryResolver{
		categories: categories,
		validator:  validator,
		logger:     logger,
	}
}

type categoryStrategy struct {
	column string
	value  string
	find   func(ctx context.Context, token domain.AccessToken, value string) (string, error)
}

// Resolve tries the category column, the category id column and the category
// path, in that order, and returns the first candidate that passes
// validation. When every strategy fails it returns a BusinessRuleFailure
// holding every cause.
func (r *CategoryResolver) Resolve(ctx context.Context, rec domain.ProductRecord, token domain.AccessToken) (*CategoryResolution, error) {
	literal := func(_ context.Context, _ domain.AccessToken, value string) (string, error) {
		return value, nil
	}
	strategies := []categoryStrategy{
		{column: columnCategory, value: rec.Category.CategoryID, find: literal},
		{column: columnCategoryID, value: rec.Category.CategoryIDColumn, find: literal},
		{column: columnCategoryPath, value: rec.Category.CategoryPath, find: r.walkPath},
	}

	var rejected domain.ValidationOutcome
	for _, s := range strategies {
		prefix := fmt.Sprintf("Coluna %s: ", s.column)
		value := strings.TrimSpace(s.value)
		if value == "" {
			rejected.Add(prefix + "vazia")
			continue
		}

		id, err := s.find(ctx, token, value)
		if err != nil {
			addCause(&rejected, prefix, err)
			continue
		}

		category, outcome, err := r.check(ctx, rec, token, id)
		if err != nil {
			addCause(&rejected, prefix, err)
			continue
		}
		if !outcome.IsValid() {
			rejected.Merge(prefix+id+": ", outcome)
			r.logger.Debug("category candidate rejected",
				zap.String("column", s.column),
				zap.String("category_id", id),
				zap.Strings("causes", outcome.Messages()))
			continue
		}

		return &CategoryResolution{Category: category, Column: s.column, Rejected: rejected}, nil
	}

	f := domain.NewFailure(domain.BusinessRuleFailure,
		"Nenhuma das colunas de categoria apresentou uma categoria válida")
	f.Causes = append(f.Causes, rejected.Messages()...)
	return nil, f
}

// check fetches a candidate and validates its settings.
func (r *CategoryResolver) check(ctx context.Context, rec domain.ProductRecord, token domain.AccessToken, id string) (*domain.Category, domain.ValidationOutcome, error) {
	category, err := r.categories.GetCategory(ctx, token, id)
	if err != nil {
		return nil, domain.ValidationOutcome{}, fmt.Errorf("Falha ao obter a categoria %s: %w", id, err)
	}
	settings := category.Settings
	settings.IsLeaf = category.IsLeaf()
	return category, r.validator.Validate(rec, settings), nil
}

// FindByPath walks the category tree along a path and fetches the last node.
func (r *CategoryResolver) FindByPath(ctx context.Context, token domain.AccessToken, path string) (*domain.Category, error) {
	id, err := r.walkPath(ctx, token, path)
	if err != nil {
		return nil, err
	}
	category, err := r.categories.GetCategory(ctx, token, id)
	if err != nil {
		return nil, fmt.Errorf("get category: %w", err)
	}
	return category, nil
}

// walkPath matches each segment, case-insensitively and by trimmed exact name,
// against the current level, starting at the site roots. Children are only
// fetched for segments that are not the last one.
func (r *CategoryResolver) walkPath(ctx context.Context, token domain.AccessToken, path string) (string, error) {
	segments := domain.SplitCategoryPath(path)
	if len(segments) == 0 {
		return "", fmt.Errorf("Caminho de categoria inválido: %q: %w", path, domain.ErrInvalidInput)
	}

	level, err := r.categories.RootCategories(ctx, token)
	if err != nil {
		return "", fmt.Errorf("Erro ao buscar as categorias raízes: %w", err)
	}

	for i, segment := range segments {
		node, ok := matchNode(level, segment)
		if !ok {
			return "", &LevelNotFoundError{Level: segment}
		}
		if i == len(segments)-1 {
			return node.ID, nil
		}

		category, err := r.categories.GetCategory(ctx, token, node.ID)
		if err != nil {
			return "", fmt.Errorf("Falha ao buscar dados da categoria %s (%s): %w", node.ID, node.Name, err)
		}
		level = category.Children
	}

	return "", &LevelNotFoundError{Level: path}
}

func matchNode(nodes []domain.CategoryNode, name string) (domain.CategoryNode, bool) {
	want := strings.ToLower(strings.TrimSpace(name))
	for _, n := range nodes {
		if strings.ToLower(strings.TrimSpace(n.Name)) == want {
			return n, true
		}
	}
	return domain.CategoryNode{}, false
}

// addCause records err as a remote cause when it came from the marketplace
// and as a rule cause otherwise.
func addCause(o *domain.ValidationOutcome, prefix string, err error) {
	var remote *domain.RemoteError
	if errors.As(err, &remote) {
		o.AddRemote(prefix + err.Error())
		return
	}
	o.Add(prefix + err.Error())
}
