package payload

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Victor-GX-Rocha/mercado-livre-auto-pecas/internal/core/domain"
	"github.com/Victor-GX-Rocha/mercado-livre-auto-pecas/internal/core/ports/driven"
)

// Ensure Builder implements the interface.
var _ driven.PayloadBuilder = (*Builder)(nil)

const (
	// DefaultSiteID is the Brazilian site.
	DefaultSiteID = "MLB"

	// DefaultCurrency is used when the row has no currency.
	DefaultCurrency = "BRL"
)

// Builder composes item payloads.
type Builder struct {
	siteID string
}

// NewBuilder creates a builder for a marketplace site.
func NewBuilder(siteID string) *Builder {
	if siteID == "" {
		siteID = DefaultSiteID
	}
	return &Builder{siteID: siteID}
}

// Shipping builds {mode, dimensions, local_pick_up, free_shipping,
// logistic_type}. Dimensions are "LxWxH,weight".
func (b *Builder) Shipping(rec domain.ProductRecord) (map[string]any, error) {
	mode := strings.TrimSpace(rec.Shipping.Mode)
	if mode == "" {
		return nil, fmt.Errorf("%w: modo de envio vazio", domain.ErrInvalidInput)
	}

	shipping := map[string]any{
		"mode":          mode,
		"local_pick_up": rec.Shipping.LocalPickUp,
		"free_shipping": rec.Shipping.FreeShipping,
	}
	if !rec.Dimensions.IsEmpty() {
		d := rec.Dimensions
		shipping["dimensions"] = fmt.Sprintf("%dx%dx%s,%d", d.Length, d.Width, strings.TrimSpace(d.Height), d.Weight)
	}
	if logistic := logisticType(rec.Shipping); logistic != "" {
		shipping["logistic_type"] = logistic
	}
	return shipping, nil
}

// logisticType prefers the explicit logistic mode column.
func logisticType(s domain.ShippingInfo) string {
	if v := strings.TrimSpace(s.LogisticMode); v != "" {
		return v
	}
	return strings.TrimSpace(s.Logistic)
}

// Publication builds the body of POST /items.
func (b *Builder) Publication(rec domain.ProductRecord, parts domain.PublicationParts) (map[string]any, error) {
	if parts.CategoryID == "" {
		return nil, fmt.Errorf("%w: categoria vazia", domain.ErrInvalidInput)
	}
	if len(parts.PictureIDs) == 0 {
		return nil, fmt.Errorf("%w: nenhuma imagem", domain.ErrInvalidInput)
	}

	pictures := make([]map[string]string, 0, len(parts.PictureIDs))
	for _, id := range parts.PictureIDs {
		pictures = append(pictures, map[string]string{"id": id})
	}

	payload := map[string]any{
		"site_id":             b.siteID,
		"title":               rec.Sale.Title,
		"category_id":         parts.CategoryID,
		"price":               Price(rec.Sale.PriceCents),
		"currency_id":         currency(rec.Sale.Currency),
		"available_quantity":  rec.Sale.Stock,
		"buying_mode":         rec.Sale.BuyingMode,
		"listing_type_id":     rec.Sale.ListingType,
		"condition":           rec.Technical.Condition,
		"seller_custom_field": rec.Identifiers.SKU,
		"accepts_mercadopago": true,
		"attributes":          parts.Attributes,
		"shipping":            parts.Shipping,
		"pictures":            pictures,
	}
	if w := strings.TrimSpace(rec.Sale.Warranty); w != "" {
		payload["warranty"] = w
	}
	return payload, nil
}

// EditPatch returns only the fields whose local value differs from the
// remote listing. Empty local values never overwrite remote ones.
func (b *Builder) EditPatch(rec domain.ProductRecord, remote domain.RemoteItem) (map[string]any, error) {
	patch := make(map[string]any)

	if t := strings.TrimSpace(rec.Sale.Title); t != "" && t != remote.Title {
		patch["title"] = t
	}
	if rec.Sale.PriceCents > 0 && rec.Sale.PriceCents != remote.PriceCents {
		patch["price"] = Price(rec.Sale.PriceCents)
	}
	if rec.Sale.Stock != remote.Stock {
		patch["available_quantity"] = rec.Sale.Stock
	}
	if c := strings.TrimSpace(rec.Technical.Condition); c != "" && c != remote.Condition {
		patch["condition"] = c
	}
	if w := strings.TrimSpace(rec.Sale.Warranty); w != "" && w != remote.Warranty {
		patch["warranty"] = w
	}

	if attrs := changedAttributes(Attributes(rec), remote.Attributes); len(attrs) > 0 {
		patch["attributes"] = attrs
	}

	shipping, changed, err := b.changedShipping(rec, remote.Shipping)
	if err != nil {
		return nil, fmt.Errorf("envio: %w", err)
	}
	if changed {
		patch["shipping"] = shipping
	}
	return patch, nil
}

// changedShipping rebuilds the shipping object when one of the fields the
// row controls differs from the remote one.
func (b *Builder) changedShipping(rec domain.ProductRecord, remote map[string]any) (map[string]any, bool, error) {
	local, err := b.Shipping(rec)
	if err != nil {
		return nil, false, err
	}
	for _, key := range []string{"mode", "local_pick_up", "free_shipping", "logistic_type"} {
		want, ok := local[key]
		if !ok {
			continue
		}
		if got, ok := remote[key]; !ok || fmt.Sprint(got) != fmt.Sprint(want) {
			return local, true, nil
		}
	}
	return nil, false, nil
}

func changedAttributes(local []domain.Attribute, remote map[string]string) []domain.Attribute {
	var out []domain.Attribute
	for _, a := range local {
		if got, ok := remote[a.ID]; !ok || !strings.EqualFold(strings.TrimSpace(got), strings.TrimSpace(a.ValueName)) {
			out = append(out, a)
		}
	}
	return out
}

// Price converts cents to an exact JSON number.
func Price(cents int64) json.Number {
	return json.Number(decimal.New(cents, -2).String())
}

func currency(c string) string {
	if c = strings.TrimSpace(c); c != "" {
		return strings.ToUpper(c)
	}
	return DefaultCurrency
}
