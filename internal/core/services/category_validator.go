package services

import (
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/Victor-GX-Rocha/mercado-livre-auto-pecas/internal/core/domain"
)

// categoryRule checks one category setting against a record.
// It returns a cause and false when the rule is violated.
type categoryRule func(rec domain.ProductRecord, s domain.CategorySettings) (string, bool)

// CategoryValidator checks a resolved category's settings against listing data.
// Every rule runs; violations are collected into one outcome.
type CategoryValidator struct {
	rules []categoryRule
}

// NewCategoryValidator creates a validator with every category rule.
func NewCategoryValidator() *CategoryValidator {
	return &CategoryValidator{
		rules: []categoryRule{
			leafOnly,
			buyingModeAllowed,
			conditionAllowed,
			shippingModeAllowed,
			descriptionLength,
			titleLength,
			pictureCount,
			priceRange,
			priceRequired,
			categoryEnabled,
		},
	}
}

// Validate runs every rule and returns all violations.
func (v *CategoryValidator) Validate(rec domain.ProductRecord, settings domain.CategorySettings) domain.ValidationOutcome {
	var outcome domain.ValidationOutcome
	for _, rule := range v.rules {
		if cause, ok := rule(rec, settings); !ok {
			outcome.Add(cause)
		}
	}
	return outcome
}

func leafOnly(_ domain.ProductRecord, s domain.CategorySettings) (string, bool) {
	if !s.IsLeaf {
		return "Apenas categorias sem subcategorias são permitidas.", false
	}
	return "", true
}

func buyingModeAllowed(rec domain.ProductRecord, s domain.CategorySettings) (string, bool) {
	return membership(rec.Sale.BuyingMode, s.BuyingModes, "Modo de venda '%s' não aceito. Apenas os modos de venda (%s) são aceitos")
}

func conditionAllowed(rec domain.ProductRecord, s domain.CategorySettings) (string, bool) {
	return membership(rec.Technical.Condition, s.ItemConditions, "Condição '%s' não permitida. Apenas as condições (%s) são permitidas")
}

func shippingModeAllowed(rec domain.ProductRecord, s domain.CategorySettings) (string, bool) {
	return membership(rec.Shipping.Mode, s.ShippingModes, "Modo de envio '%s' não aceito. Apenas os modos de envio (%s) são aceitos")
}

func membership(value string, allowed []string, format string) (string, bool) {
	if len(allowed) == 0 || slices.Contains(allowed, value) {
		return "", true
	}
	return fmt.Sprintf(format, value, strings.Join(allowed, ", ")), false
}

func descriptionLength(rec domain.ProductRecord, s domain.CategorySettings) (string, bool) {
	if s.MaxDescriptionLength == nil {
		return "", true
	}
	if n := utf8.RuneCountInString(rec.Sale.Description); n > *s.MaxDescriptionLength {
		return fmt.Sprintf("Tamanho da descrição (%d) excede o máximo permitido (%d)", n, *s.MaxDescriptionLength), false
	}
	return "", true
}

func titleLength(rec domain.ProductRecord, s domain.CategorySettings) (string, bool) {
	if s.MaxTitleLength == nil {
		return "", true
	}
	if n := utf8.RuneCountInString(rec.Sale.Title); n > *s.MaxTitleLength {
		return fmt.Sprintf("Tamanho do título (%d) excede o máximo permitido (%d)", n, *s.MaxTitleLength), false
	}
	return "", true
}

func pictureCount(rec domain.ProductRecord, s domain.CategorySettings) (string, bool) {
	if s.MaxPictures == nil {
		return "", true
	}
	if n := len(rec.Sale.PicturePaths()); n > *s.MaxPictures {
		return fmt.Sprintf("Quantidade de imagens (%d) excede o máximo permitido (%d)", n, *s.MaxPictures), false
	}
	return "", true
}

func priceRange(rec domain.ProductRecord, s domain.CategorySettings) (string, bool) {
	var causes []string
	if s.MinPriceCents != nil && rec.Sale.PriceCents < *s.MinPriceCents {
		causes = append(causes, fmt.Sprintf("Preço (%s) é menor que o mínimo permitido (%s)",
			formatCents(rec.Sale.PriceCents), formatCents(*s.MinPriceCents)))
	}
	if s.MaxPriceCents != nil && rec.Sale.PriceCents > *s.MaxPriceCents {
		causes = append(causes, fmt.Sprintf("Preço (%s) excede o máximo permitido (%s)",
			formatCents(rec.Sale.PriceCents), formatCents(*s.MaxPriceCents)))
	}
	if len(causes) > 0 {
		return strings.Join(causes, "; "), false
	}
	return "", true
}

func priceRequired(rec domain.ProductRecord, s domain.CategorySettings) (string, bool) {
	if s.PriceRequired && rec.Sale.PriceCents <= 0 {
		return "Preço não informado (obrigatório para a categoria)", false
	}
	return "", true
}

func categoryEnabled(_ domain.ProductRecord, s domain.CategorySettings) (string, bool) {
	if s.Status != "" && s.Status != domain.CategoryStatusEnabled {
		return fmt.Sprintf("Categoria descontinuada pelo mercado livre (status: %s)", s.Status), false
	}
	return "", true
}

// formatCents renders integer cents as "123.45".
func formatCents(cents int64) string {
	return decimal.New(cents, -2).StringFixed(2)
}
