package mercadolivre

import (
	"context"
	"fmt"
	"net/url"

	"github.com/Victor-GX-Rocha/mercado-livre-auto-pecas/internal/core/domain"
)

// carsAndVansDomain is the catalogue domain searched for compatible vehicles.
const carsAndVansDomain = "CARS_AND_VANS"

type knownAttribute struct {
	ID       string   `json:"id"`
	ValueIDs []string `json:"value_ids"`
}

type compatibilitySearch struct {
	DomainID        string           `json:"domain_id"`
	SiteID          string           `json:"site_id"`
	KnownAttributes []knownAttribute `json:"known_attributes"`
	Sort            struct {
		AttributeID string `json:"attribute_id"`
		Order       string `json:"order"`
	} `json:"sort"`
}

type compatibilityResults struct {
	Total   int `json:"total"`
	Results []struct {
		ID string `json:"id"`
	} `json:"results"`
}

type compatibilityProduct struct {
	ID             string `json:"id"`
	CreationSource string `json:"creation_source"`
	Restrictions   []any  `json:"restrictions"`
}

// SearchCompatibilities returns the catalogue ids of the vehicles matching the
// brand, model and year ids.
func (c *Client) SearchCompatibilities(ctx context.Context, token domain.AccessToken, query domain.CompatibilityQuery) ([]string, error) {
	search := compatibilitySearch{
		DomainID: c.siteID + "-" + carsAndVansDomain,
		SiteID:   c.siteID,
		KnownAttributes: []knownAttribute{
			{ID: "BRAND", ValueIDs: query.BrandIDs},
			{ID: "MODEL", ValueIDs: query.ModelIDs},
			{ID: "VEHICLE_YEAR", ValueIDs: query.YearIDs},
		},
	}
	search.Sort.AttributeID = "BRAND"
	search.Sort.Order = "desc"

	var res compatibilityResults
	err := c.Post(ctx, "/catalog_compatibilities/products_search/chunks", "get_compatibilities", token, search, &res)
	if err != nil {
		return nil, fmt.Errorf("search compatibilities: %w", err)
	}
	if res.Total <= 0 || len(res.Results) == 0 {
		return nil, domain.ErrNoCompatibilities
	}

	ids := make([]string, 0, len(res.Results))
	for _, r := range res.Results {
		if r.ID != "" {
			ids = append(ids, r.ID)
		}
	}
	return ids, nil
}

// AddCompatibilities attaches catalogue vehicles to a listing.
func (c *Client) AddCompatibilities(ctx context.Context, token domain.AccessToken, itemID string, productIDs []string) error {
	products := make([]compatibilityProduct, 0, len(productIDs))
	for _, id := range productIDs {
		products = append(products, compatibilityProduct{ID: id, CreationSource: "DEFAULT", Restrictions: []any{}})
	}
	body := map[string]any{"products": products}

	endpoint := "/items/" + url.PathEscape(itemID) + "/compatibilities"
	if err := c.Post(ctx, endpoint, "item_add_compatibilities", token, body, nil); err != nil {
		return fmt.Errorf("add compatibilities: %w", err)
	}
	return nil
}
