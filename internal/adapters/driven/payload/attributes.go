package payload

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Victor-GX-Rocha/mercado-livre-auto-pecas/internal/core/domain"
	"github.com/Victor-GX-Rocha/mercado-livre-auto-pecas/internal/core/ports/driven"
)

// Ensure AttributeGenerator implements the interface.
var _ driven.AttributeGenerator = (*AttributeGenerator)(nil)

// Attribute defaults and sentinels used by the queue.
const (
	DefaultBrand       = "Genérico"
	DefaultModel       = "Peça Automotiva"
	DefaultVehicleType = "Carro/Caminhonete"
	NoGTIN             = "SEM GTIN"
	DefaultGTINReason  = "O produto não tem código cadastrado"
)

// AttributeGenerator derives listing attributes and checks them against the
// category's required attributes.
type AttributeGenerator struct {
	categories driven.CategoryGateway
	logger     *zap.Logger
}

// NewAttributeGenerator creates a generator.
func NewAttributeGenerator(categories driven.CategoryGateway, logger *zap.Logger) *AttributeGenerator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttributeGenerator{categories: categories, logger: logger}
}

// Generate returns the row's attributes. Required category attributes missing
// from the list are a BusinessRuleFailure listing "ID (Name) | hint".
func (g *AttributeGenerator) Generate(ctx context.Context, token domain.AccessToken, rec domain.ProductRecord, categoryID string) ([]domain.Attribute, error) {
	attrs := Attributes(rec)

	known, err := g.categories.CategoryAttributes(ctx, token, categoryID)
	if err != nil {
		return nil, fmt.Errorf("category attributes: %w", err)
	}

	have := make(map[string]bool, len(attrs))
	for _, a := range attrs {
		have[a.ID] = true
	}

	var missing []string
	for _, k := range known {
		if !k.Required || have[k.ID] {
			continue
		}
		cause := fmt.Sprintf("%s (%s)", k.ID, k.Name)
		if hint := k.Guidance(); hint != "" {
			cause += " | " + hint
		}
		missing = append(missing, cause)
	}
	if len(missing) > 0 {
		g.logger.Debug("required attributes missing",
			zap.Int64("record_id", rec.ID),
			zap.String("category_id", categoryID),
			zap.Strings("missing", missing))
		f := domain.NewFailure(domain.BusinessRuleFailure, "Atributos obrigatórios ausentes:")
		f.Causes = append(f.Causes, missing...)
		return nil, f
	}
	return attrs, nil
}

// Attributes derives the attributes of a row, in a stable order.
func Attributes(rec domain.ProductRecord) []domain.Attribute {
	t := rec.Technical
	var out []domain.Attribute
	add := func(id, value string) {
		if v := strings.TrimSpace(value); v != "" {
			out = append(out, domain.Attribute{ID: id, ValueName: v})
		}
	}

	add("ORIGIN", t.Origin)
	add("FUEL_TYPE", t.FuelType)
	add("HAS_COMPATIBILITIES", t.HasCompatibilities)
	add("OEM", t.OEM)
	add("PART_NUMBER", t.PartNumber)
	add("INMETRO_CERTIFICATION_REGISTRATION_NUMBER", t.Inmetro)

	switch gtin := strings.TrimSpace(t.GTIN); {
	case strings.EqualFold(gtin, NoGTIN):
		reason := strings.TrimSpace(t.EmptyGTINReason)
		if reason == "" {
			reason = DefaultGTINReason
		}
		add("EMPTY_GTIN_REASON", reason)
	default:
		add("GTIN", gtin)
	}

	add("BRAND", orDefault(t.Brand, DefaultBrand))
	add("MODEL", orDefault(t.Model, DefaultModel))
	if vt := strings.TrimSpace(t.VehicleType); vt != DefaultVehicleType {
		add("VEHICLE_TYPE", vt)
	}
	return out
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
