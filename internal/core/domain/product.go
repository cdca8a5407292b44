package domain

import "strings"

// ProductRecord is one row of the product queue.
// It is read once per batch, handed to exactly one operation and then
// flushed through the OutcomeRecorder. Operation never changes during a run.
type ProductRecord struct {
	// ID is the queue row id.
	ID int64

	// Credentials are the seller credentials the row is processed with.
	Credentials Credentials

	// Operation is the requested lifecycle operation.
	Operation OperationKind

	// Identifiers link the row to the seller's catalogue and the marketplace.
	Identifiers Identifiers

	// Sale holds the commercial data of the listing.
	Sale SaleInfo

	// Shipping holds the shipping preferences.
	Shipping ShippingInfo

	// Category holds the three ways a category can be designated.
	Category CategoryInfo

	// Technical holds the attributes used to build marketplace attributes.
	Technical TechnicalInfo

	// Dimensions holds the package dimensions.
	Dimensions Dimensions

	// RemoteStatus is the last confirmed remote status (e.g. "active").
	RemoteStatus string
}

// Identifiers groups the ids of a product.
type Identifiers struct {
	// InternalCode is the seller's internal product code.
	InternalCode string
	// SKU is sent as seller_custom_field.
	SKU string
	// MarketplaceID is the listing id (e.g. "MLB123") once published.
	MarketplaceID string
	// Permalink is the public listing URL once published.
	Permalink string
}

// SaleInfo groups the commercial data of a product.
type SaleInfo struct {
	Title       string
	Description string
	// Pictures is the raw pictures column: paths separated by ',' or ';'.
	Pictures    string
	Stock       int
	PriceCents  int64
	Currency    string
	ListingType string
	BuyingMode  string
	Warranty    string
}

// PicturePaths returns the picture paths of the raw pictures column with
// surrounding quotes removed.
func (s SaleInfo) PicturePaths() []string {
	items := SplitList(s.Pictures)
	out := make([]string, 0, len(items))
	for _, item := range items {
		if p := strings.TrimSpace(strings.Trim(item, `"'`)); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ShippingInfo groups the shipping preferences of a product.
type ShippingInfo struct {
	Mode         string
	Logistic     string
	LogisticMode string
	LocalPickUp  bool
	FreeShipping bool
}

// CategoryInfo holds the category designations, in resolution priority.
type CategoryInfo struct {
	// CategoryID is the canonical category column. Resolution writes the
	// chosen id back here.
	CategoryID string
	// CategoryIDColumn is the secondary id column.
	CategoryIDColumn string
	// CategoryPath is a "Root > Child > Leaf" name path.
	CategoryPath string
}

// TechnicalInfo groups the technical data of an auto part.
type TechnicalInfo struct {
	Brand              string
	Condition          string
	GTIN               string
	EmptyGTINReason    string
	PartNumber         string
	Inmetro            string
	OEM                string
	Model              string
	VehicleType        string
	FuelType           string
	HasCompatibilities string
	Origin             string

	// BrandIDs, ModelIDs and YearIDs are delimited catalogue id lists used to
	// search compatible vehicles.
	BrandIDs string
	ModelIDs string
	YearIDs  string
}

// Dimensions holds package dimensions in centimetres and grams.
type Dimensions struct {
	Height string
	Width  int
	Length int
	Weight int
}

// IsEmpty returns true if no dimension is set.
func (d Dimensions) IsEmpty() bool {
	return d.Height == "" && d.Width == 0 && d.Length == 0 && d.Weight == 0
}

// SplitList splits a column holding values separated by ',' or ';'.
// Items are trimmed and empty items dropped.
func SplitList(raw string) []string {
	parts := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ';'
	})
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// CompatibilityQuery is the vehicle filter used to search compatible vehicles.
type CompatibilityQuery struct {
	BrandIDs []string
	ModelIDs []string
	YearIDs  []string
}

// IsEmpty returns true if any of the three lists is empty. A search needs all
// three.
func (q CompatibilityQuery) IsEmpty() bool {
	return len(q.BrandIDs) == 0 || len(q.ModelIDs) == 0 || len(q.YearIDs) == 0
}

// CompatibilityQuery parses the brand, model and year id columns.
func (t TechnicalInfo) CompatibilityQuery() CompatibilityQuery {
	return CompatibilityQuery{
		BrandIDs: SplitList(t.BrandIDs),
		ModelIDs: SplitList(t.ModelIDs),
		YearIDs:  SplitList(t.YearIDs),
	}
}

// Attribute is one listing attribute sent to the marketplace.
type Attribute struct {
	ID        string `json:"id"`
	ValueName string `json:"value_name"`
}

// PublicationParts are the sub-payloads composed before a listing is created.
type PublicationParts struct {
	CategoryID string
	Shipping   map[string]any
	Attributes []Attribute
	PictureIDs []string
}

// Receipt is the audit entry written after a listing is created.
type Receipt struct {
	InternalCode  string
	MarketplaceID string
	Permalink     string
}
