package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Victor-GX-Rocha/mercado-livre-auto-pecas/internal/core/domain"
)

func intPtr(v int) *int       { return &v }
func int64Ptr(v int64) *int64 { return &v }

func validSettings() domain.CategorySettings {
	return domain.CategorySettings{Status: domain.CategoryStatusEnabled, IsLeaf: true}
}

func TestCategoryValidator_AbsentSettingsAcceptEverything(t *testing.T) {
	v := NewCategoryValidator()
	rec := testProduct(1, domain.OperationPublish)
	rec.Sale.Pictures = "1.jpg;2.jpg;3.jpg;4.jpg;5.jpg;6.jpg;7.jpg"

	outcome := v.Validate(rec, validSettings())

	assert.True(t, outcome.IsValid(), outcome.Messages())

	settings := validSettings()
	settings.Status = ""
	outcome = v.Validate(rec, settings)

	assert.True(t, outcome.IsValid(), outcome.Messages())
}

func TestCategoryValidator_MaxPictures(t *testing.T) {
	v := NewCategoryValidator()
	rec := testProduct(1, domain.OperationPublish)
	rec.Sale.Pictures = "1.jpg;2.jpg;3.jpg;4.jpg;5.jpg;6.jpg"

	settings := validSettings()
	settings.MaxPictures = intPtr(5)
	outcome := v.Validate(rec, settings)

	assert.False(t, outcome.IsValid())
	msgs := outcome.Messages()
	assert.Len(t, msgs, 1)
	assert.Contains(t, msgs[0], "6")
	assert.Contains(t, msgs[0], "5")

	settings.MaxPictures = nil
	assert.True(t, v.Validate(rec, settings).IsValid())
}

func TestCategoryValidator_CollectsEveryViolation(t *testing.T) {
	v := NewCategoryValidator()
	rec := testProduct(1, domain.OperationPublish)
	rec.Sale.Title = "Pastilha de freio dianteira cerâmica"
	rec.Sale.Description = "descrição longa"
	rec.Sale.BuyingMode = "auction"
	rec.Technical.Condition = "used"
	rec.Shipping.Mode = "custom"
	rec.Sale.PriceCents = 0

	settings := domain.CategorySettings{
		BuyingModes:          []string{"buy_it_now"},
		ItemConditions:       []string{"new"},
		ShippingModes:        []string{"me2"},
		MaxDescriptionLength: intPtr(5),
		MaxTitleLength:       intPtr(10),
		MinPriceCents:        int64Ptr(100),
		PriceRequired:        true,
		Status:               "disabled",
		IsLeaf:               false,
	}
	outcome := v.Validate(rec, settings)

	msgs := outcome.Messages()
	assert.Len(t, msgs, 9)
	assert.Contains(t, msgs[0], "sem subcategorias")
	assert.Contains(t, msgs[1], "buy_it_now")
	assert.Contains(t, msgs[2], "new")
	assert.Contains(t, msgs[3], "me2")
	assert.Contains(t, msgs[4], "(15)")
	assert.Contains(t, msgs[5], "(36)")
	assert.Contains(t, msgs[6], "mínimo permitido (1.00)")
	assert.Contains(t, msgs[7], "obrigatório")
	assert.Contains(t, msgs[8], "disabled")
}

func TestCategoryValidator_PriceRange(t *testing.T) {
	v := NewCategoryValidator()
	rec := testProduct(1, domain.OperationPublish)
	rec.Sale.PriceCents = 150000

	settings := validSettings()
	settings.MaxPriceCents = int64Ptr(100000)
	outcome := v.Validate(rec, settings)
	assert.Equal(t, []string{"Preço (1500.00) excede o máximo permitido (1000.00)"}, outcome.Messages())

	settings.MaxPriceCents = int64Ptr(150000)
	assert.True(t, v.Validate(rec, settings).IsValid())
}

func TestFormatCents(t *testing.T) {
	assert.Equal(t, "0.05", formatCents(5))
	assert.Equal(t, "12.30", formatCents(1230))
	assert.Equal(t, "-1.01", formatCents(-101))
	assert.Equal(t, "1234.56", formatCents(123456))
	assert.Equal(t, "0.00", formatCents(0))
}
