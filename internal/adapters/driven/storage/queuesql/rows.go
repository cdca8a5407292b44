package queuesql

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Victor-GX-Rocha/mercado-livre-auto-pecas/internal/core/domain"
)

// Table names.
const (
	TableProducts   = "produtos"
	TableCategories = "produtos_categoria"
	TableStatus     = "produtos_status"
	TableBatchRuns  = "batch_runs"
)

// ProductColumns is the SELECT list matching ScanProduct.
const ProductColumns = `id, client_id, client_secret, redirect_uri, refresh_token, operacao,
	cod_produto, sku, ml_id_produto, link_publicacao,
	titulo, descricao, imagens, estoque, preco, moeda, tipo_anuncio, modo_compra, termo_garantia,
	modo_envio, logistica, modo_envio_logistica, retirada_local, frete_gratis,
	categoria, categoria_id, categoria_caminho,
	marca, condicao_produto, gtin, gtin_ausencia_motivo, numero_peca, num_inmetro, cod_oem,
	modelo, tipo_veiculo, tipo_combustivel, tem_compatibilidade, origem,
	marcas_ids, modelos_ids, anos_ids,
	altura, largura, comprimento, peso, produto_status`

// LookupColumns is the SELECT list matching ScanLookup.
const LookupColumns = `id, client_id, client_secret, redirect_uri, refresh_token, operacao,
	categoria_id, nome_categoria, titulo_produto, cod_produto`

// StatusColumns is the SELECT list matching ScanStatus.
const StatusColumns = `id, client_id, client_secret, redirect_uri, refresh_token, operacao,
	mercado_livre_id, status_produto`

// Scanner is satisfied by *sql.Row, *sql.Rows and pgx.Rows.
type Scanner interface {
	Scan(dest ...any) error
}

type credentialCols struct {
	clientID, clientSecret, redirectURI, refreshToken sql.NullString
}

func (c *credentialCols) dest() []any {
	return []any{&c.clientID, &c.clientSecret, &c.redirectURI, &c.refreshToken}
}

func (c *credentialCols) value() domain.Credentials {
	return domain.Credentials{
		ClientID:     strings.TrimSpace(c.clientID.String),
		ClientSecret: strings.TrimSpace(c.clientSecret.String),
		RedirectURI:  strings.TrimSpace(c.redirectURI.String),
		RefreshToken: strings.TrimSpace(c.refreshToken.String),
	}
}

// ScanProduct reads one row selected with ProductColumns.
func ScanProduct(s Scanner) (domain.ProductRecord, error) {
	var (
		rec   domain.ProductRecord
		creds credentialCols
		op    sql.NullInt64

		code, sku, mlID, link                              sql.NullString
		title, desc, pictures, currency, listing, buying   sql.NullString
		warranty, mode, logistic, logisticMode             sql.NullString
		category, categoryID, categoryPath                 sql.NullString
		brand, condition, gtin, gtinReason, partNumber     sql.NullString
		inmetro, oem, model, vehicle, fuel, compat, origin sql.NullString
		brandIDs, modelIDs, yearIDs, height, status        sql.NullString
		stock, width, length, weight                       sql.NullInt64
		pickUp, freeShipping                               sql.NullBool
		price                                              decimal.NullDecimal
	)

	dest := []any{&rec.ID}
	dest = append(dest, creds.dest()...)
	dest = append(dest, &op,
		&code, &sku, &mlID, &link,
		&title, &desc, &pictures, &stock, &price, &currency, &listing, &buying, &warranty,
		&mode, &logistic, &logisticMode, &pickUp, &freeShipping,
		&category, &categoryID, &categoryPath,
		&brand, &condition, &gtin, &gtinReason, &partNumber, &inmetro, &oem,
		&model, &vehicle, &fuel, &compat, &origin,
		&brandIDs, &modelIDs, &yearIDs,
		&height, &width, &length, &weight, &status)

	if err := s.Scan(dest...); err != nil {
		return domain.ProductRecord{}, fmt.Errorf("scanning product: %w", err)
	}

	rec.Credentials = creds.value()
	rec.Operation = domain.OperationKind(op.Int64)
	rec.Identifiers = domain.Identifiers{
		InternalCode:  trim(code),
		SKU:           trim(sku),
		MarketplaceID: trim(mlID),
		Permalink:     trim(link),
	}
	rec.Sale = domain.SaleInfo{
		Title:       trim(title),
		Description: desc.String,
		Pictures:    pictures.String,
		Stock:       int(stock.Int64),
		PriceCents:  PriceCents(price),
		Currency:    trim(currency),
		ListingType: trim(listing),
		BuyingMode:  trim(buying),
		Warranty:    trim(warranty),
	}
	rec.Shipping = domain.ShippingInfo{
		Mode:         trim(mode),
		Logistic:     trim(logistic),
		LogisticMode: trim(logisticMode),
		LocalPickUp:  pickUp.Bool,
		FreeShipping: freeShipping.Bool,
	}
	rec.Category = domain.CategoryInfo{
		CategoryID:       trim(category),
		CategoryIDColumn: trim(categoryID),
		CategoryPath:     trim(categoryPath),
	}
	rec.Technical = domain.TechnicalInfo{
		Brand:              trim(brand),
		Condition:          trim(condition),
		GTIN:               trim(gtin),
		EmptyGTINReason:    trim(gtinReason),
		PartNumber:         trim(partNumber),
		Inmetro:            trim(inmetro),
		OEM:                trim(oem),
		Model:              trim(model),
		VehicleType:        trim(vehicle),
		FuelType:           trim(fuel),
		HasCompatibilities: trim(compat),
		Origin:             trim(origin),
		BrandIDs:           brandIDs.String,
		ModelIDs:           modelIDs.String,
		YearIDs:            yearIDs.String,
	}
	rec.Dimensions = domain.Dimensions{
		Height: trim(height),
		Width:  int(width.Int64),
		Length: int(length.Int64),
		Weight: int(weight.Int64),
	}
	rec.RemoteStatus = trim(status)
	return rec, nil
}

// ScanLookup reads one row selected with LookupColumns.
func ScanLookup(s Scanner) (domain.CategoryLookupRecord, error) {
	var (
		rec                     domain.CategoryLookupRecord
		creds                   credentialCols
		op                      sql.NullInt64
		categoryID, path, title sql.NullString
		code                    sql.NullString
	)
	dest := []any{&rec.ID}
	dest = append(dest, creds.dest()...)
	dest = append(dest, &op, &categoryID, &path, &title, &code)
	if err := s.Scan(dest...); err != nil {
		return domain.CategoryLookupRecord{}, fmt.Errorf("scanning category lookup: %w", err)
	}
	rec.Credentials = creds.value()
	rec.Operation = domain.LookupKind(op.Int64)
	rec.CategoryID = trim(categoryID)
	rec.CategoryPath = trim(path)
	rec.Title = trim(title)
	rec.InternalCode = trim(code)
	return rec, nil
}

// ScanStatus reads one row selected with StatusColumns.
func ScanStatus(s Scanner) (domain.StatusCheckRecord, error) {
	var (
		rec          domain.StatusCheckRecord
		creds        credentialCols
		op           sql.NullInt64
		mlID, status sql.NullString
	)
	dest := []any{&rec.ID}
	dest = append(dest, creds.dest()...)
	dest = append(dest, &op, &mlID, &status)
	if err := s.Scan(dest...); err != nil {
		return domain.StatusCheckRecord{}, fmt.Errorf("scanning status check: %w", err)
	}
	rec.Credentials = creds.value()
	rec.Operation = int(op.Int64)
	rec.MarketplaceID = trim(mlID)
	rec.Status = trim(status)
	return rec, nil
}

// PriceCents converts a numeric(10,2) column to cents. NULL is zero.
func PriceCents(d decimal.NullDecimal) int64 {
	if !d.Valid {
		return 0
	}
	return d.Decimal.Shift(2).Round(0).IntPart()
}

// JoinCauses renders causes for the log_erro column. Empty is NULL.
func JoinCauses(causes []string) sql.NullString {
	if len(causes) == 0 {
		return sql.NullString{}
	}
	return sql.NullString{String: strings.Join(causes, "\n"), Valid: true}
}

// EncodeCounts renders outcome counts as a JSON object keyed by code.
func EncodeCounts(counts map[domain.OutcomeCode]int) (string, error) {
	m := make(map[string]int, len(counts))
	for code, n := range counts {
		m[strconv.Itoa(int(code))] = n
	}
	b, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("marshalling counts: %w", err)
	}
	return string(b), nil
}

// DecodeCounts parses EncodeCounts output. Empty input gives an empty map.
func DecodeCounts(raw string) (map[domain.OutcomeCode]int, error) {
	out := make(map[domain.OutcomeCode]int)
	if strings.TrimSpace(raw) == "" {
		return out, nil
	}
	var m map[string]int
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return nil, fmt.Errorf("unmarshalling counts: %w", err)
	}
	for k, n := range m {
		code, err := strconv.Atoi(k)
		if err != nil {
			return nil, fmt.Errorf("outcome code %q: %w", k, err)
		}
		out[domain.OutcomeCode(code)] = n
	}
	return out, nil
}

func trim(s sql.NullString) string {
	return strings.TrimSpace(s.String)
}
