package services

import (
	"fmt"
	"strings"

	"github.com/Victor-GX-Rocha/mercado-livre-auto-pecas/internal/core/domain"
)

// requiredColumn names a mandatory column and how to tell it is empty.
type requiredColumn struct {
	name  string
	empty func(rec domain.ProductRecord) bool
}

var (
	columnPictures = requiredColumn{"imagens", func(r domain.ProductRecord) bool {
		return len(r.Sale.PicturePaths()) == 0
	}}
	columnPrice = requiredColumn{"preco", func(r domain.ProductRecord) bool {
		return r.Sale.PriceCents <= 0
	}}
	columnListingType = requiredColumn{"tipo_anuncio", func(r domain.ProductRecord) bool {
		return strings.TrimSpace(r.Sale.ListingType) == ""
	}}
	columnMarketplaceID = requiredColumn{"ml_id_produto", func(r domain.ProductRecord) bool {
		return strings.TrimSpace(r.Identifiers.MarketplaceID) == ""
	}}
)

// validateRecord checks credentials and mandatory columns. It returns a
// ValidationFailure listing every empty column, or nil.
func validateRecord(rec domain.ProductRecord, columns ...requiredColumn) *domain.Failure {
	var causes []string
	if missing := rec.Credentials.MissingFields(); len(missing) > 0 {
		causes = append(causes, fmt.Sprintf("Colunas de credencial vazias!: [%s]", strings.Join(missing, ", ")))
	}

	var empty []string
	for _, c := range columns {
		if c.empty(rec) {
			empty = append(empty, c.name)
		}
	}
	if len(empty) > 0 {
		causes = append(causes, fmt.Sprintf("Colunas obrigatórias vazias: [%s]", strings.Join(empty, ", ")))
	}

	if len(causes) == 0 {
		return nil
	}
	return domain.NewFailure(domain.ValidationFailure, causes...)
}
