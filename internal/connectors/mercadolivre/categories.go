package mercadolivre

import (
	"context"
	"fmt"
	"net/url"

	"github.com/shopspring/decimal"

	"github.com/Victor-GX-Rocha/mercado-livre-auto-pecas/internal/core/domain"
)

// discoveryLimit is the number of predictions requested per title.
const discoveryLimit = 8

type categoryNode struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type categorySettings struct {
	BuyingModes          []string            `json:"buying_modes"`
	ItemConditions       []string            `json:"item_conditions"`
	ShippingModes        []string            `json:"shipping_modes"`
	ShippingOptions      []string            `json:"shipping_options"`
	MaxDescriptionLength *int                `json:"max_description_length"`
	MaxPicturesPerItem   *int                `json:"max_pictures_per_item"`
	MaxTitleLength       *int                `json:"max_title_length"`
	MinimumPrice         decimal.NullDecimal `json:"minimum_price"`
	MaximumPrice         decimal.NullDecimal `json:"maximum_price"`
	Price                string              `json:"price"`
	Status               string              `json:"status"`
}

type category struct {
	ID                 string           `json:"id"`
	Name               string           `json:"name"`
	PathFromRoot       []categoryNode   `json:"path_from_root"`
	ChildrenCategories []categoryNode   `json:"children_categories"`
	Settings           categorySettings `json:"settings"`
}

func (c category) toDomain() *domain.Category {
	out := &domain.Category{
		Node:         domain.CategoryNode{ID: c.ID, Name: c.Name},
		Children:     toNodes(c.ChildrenCategories),
		PathFromRoot: toNodes(c.PathFromRoot),
	}
	for _, child := range out.Children {
		out.Node.ChildIDs = append(out.Node.ChildIDs, child.ID)
	}

	s := c.Settings
	shipping := s.ShippingModes
	if len(shipping) == 0 {
		shipping = s.ShippingOptions
	}
	out.Settings = domain.CategorySettings{
		BuyingModes:          s.BuyingModes,
		ItemConditions:       s.ItemConditions,
		ShippingModes:        shipping,
		MaxDescriptionLength: s.MaxDescriptionLength,
		MaxPictures:          s.MaxPicturesPerItem,
		MaxTitleLength:       s.MaxTitleLength,
		MinPriceCents:        centsOrNil(s.MinimumPrice),
		MaxPriceCents:        centsOrNil(s.MaximumPrice),
		PriceRequired:        s.Price == "required",
		Status:               s.Status,
		IsLeaf:               out.IsLeaf(),
	}
	return out
}

func centsOrNil(d decimal.NullDecimal) *int64 {
	if !d.Valid {
		return nil
	}
	cents := PriceToCents(d.Decimal)
	return &cents
}

func toNodes(in []categoryNode) []domain.CategoryNode {
	if len(in) == 0 {
		return nil
	}
	out := make([]domain.CategoryNode, 0, len(in))
	for _, n := range in {
		out = append(out, domain.CategoryNode{ID: n.ID, Name: n.Name})
	}
	return out
}

// RootCategories lists the top-level categories of the site.
func (c *Client) RootCategories(ctx context.Context, token domain.AccessToken) ([]domain.CategoryNode, error) {
	var nodes []categoryNode
	if err := c.Get(ctx, "/sites/"+url.PathEscape(c.siteID)+"/categories", "category_root_types", token, &nodes); err != nil {
		return nil, fmt.Errorf("root categories: %w", err)
	}
	return toNodes(nodes), nil
}

// GetCategory fetches a category with its children, ancestry and settings.
func (c *Client) GetCategory(ctx context.Context, token domain.AccessToken, categoryID string) (*domain.Category, error) {
	var cat category
	if err := c.Get(ctx, "/categories/"+url.PathEscape(categoryID), "category_data", token, &cat); err != nil {
		return nil, fmt.Errorf("get category: %w", err)
	}
	return cat.toDomain(), nil
}

type categoryAttribute struct {
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	Hint    string          `json:"hint"`
	Tooltip string          `json:"tooltip"`
	Tags    map[string]bool `json:"tags"`
}

// CategoryAttributes lists the attributes of a category.
func (c *Client) CategoryAttributes(ctx context.Context, token domain.AccessToken, categoryID string) ([]domain.CategoryAttribute, error) {
	var attrs []categoryAttribute
	endpoint := "/categories/" + url.PathEscape(categoryID) + "/attributes"
	if err := c.Get(ctx, endpoint, "category_attributes", token, &attrs); err != nil {
		return nil, fmt.Errorf("category attributes: %w", err)
	}

	out := make([]domain.CategoryAttribute, 0, len(attrs))
	for _, a := range attrs {
		out = append(out, domain.CategoryAttribute{
			ID:       a.ID,
			Name:     a.Name,
			Required: a.Tags["required"],
			Hint:     a.Hint,
			Tooltip:  a.Tooltip,
		})
	}
	return out, nil
}

type prediction struct {
	DomainID     string `json:"domain_id"`
	DomainName   string `json:"domain_name"`
	CategoryID   string `json:"category_id"`
	CategoryName string `json:"category_name"`
}

// DiscoverCategory predicts categories for a product title.
func (c *Client) DiscoverCategory(ctx context.Context, token domain.AccessToken, title string) ([]domain.CategoryPrediction, error) {
	q := url.Values{}
	q.Set("limit", fmt.Sprint(discoveryLimit))
	q.Set("q", title)
	endpoint := "/sites/" + url.PathEscape(c.siteID) + "/domain_discovery/search?" + q.Encode()

	var preds []prediction
	if err := c.Get(ctx, endpoint, "domain_discovery", token, &preds); err != nil {
		return nil, fmt.Errorf("discover category: %w", err)
	}

	out := make([]domain.CategoryPrediction, 0, len(preds))
	for _, p := range preds {
		out = append(out, domain.CategoryPrediction{
			CategoryID:   p.CategoryID,
			CategoryName: p.CategoryName,
			DomainID:     p.DomainID,
			DomainName:   p.DomainName,
		})
	}
	return out, nil
}
