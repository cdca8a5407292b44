package mercadolivre

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Victor-GX-Rocha/mercado-livre-auto-pecas/internal/core/domain"
)

// item is the subset of the /items resource the gateway reads.
type item struct {
	ID                string          `json:"id"`
	Status            string          `json:"status"`
	Permalink         string          `json:"permalink"`
	CategoryID        string          `json:"category_id"`
	Title             string          `json:"title"`
	Price             decimal.Decimal `json:"price"`
	AvailableQuantity int             `json:"available_quantity"`
	Condition         string          `json:"condition"`
	BuyingMode        string          `json:"buying_mode"`
	ListingTypeID     string          `json:"listing_type_id"`
	Warranty          string          `json:"warranty"`
	LastUpdated       string          `json:"last_updated"`
	Shipping          map[string]any  `json:"shipping"`
	Attributes        []struct {
		ID        string `json:"id"`
		ValueName string `json:"value_name"`
	} `json:"attributes"`
}

func (it item) toDomain() *domain.RemoteItem {
	ri := &domain.RemoteItem{
		ID:          it.ID,
		Status:      it.Status,
		Permalink:   it.Permalink,
		CategoryID:  it.CategoryID,
		Title:       it.Title,
		PriceCents:  PriceToCents(it.Price),
		Stock:       it.AvailableQuantity,
		Condition:   it.Condition,
		BuyingMode:  it.BuyingMode,
		ListingType: it.ListingTypeID,
		Warranty:    it.Warranty,
		Shipping:    it.Shipping,
	}
	if it.LastUpdated != "" {
		if t, err := time.Parse(time.RFC3339, it.LastUpdated); err == nil {
			ri.LastUpdated = t
		}
	}
	if len(it.Attributes) > 0 {
		ri.Attributes = make(map[string]string, len(it.Attributes))
		for _, a := range it.Attributes {
			ri.Attributes[a.ID] = a.ValueName
		}
	}
	return ri
}

// PriceToCents converts an API price to integer cents, rounding half away
// from zero.
func PriceToCents(price decimal.Decimal) int64 {
	return price.Shift(2).Round(0).IntPart()
}

type description struct {
	PlainText string `json:"plain_text"`
}

// GetItem fetches a listing.
func (c *Client) GetItem(ctx context.Context, token domain.AccessToken, itemID string) (*domain.RemoteItem, error) {
	var it item
	if err := c.Get(ctx, "/items/"+url.PathEscape(itemID), "get_item_info", token, &it); err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	return it.toDomain(), nil
}

// UpdateItem applies a partial update to a listing.
func (c *Client) UpdateItem(ctx context.Context, token domain.AccessToken, itemID string, patch map[string]any) (*domain.RemoteItem, error) {
	var it item
	if err := c.Put(ctx, "/items/"+url.PathEscape(itemID), "item_editation", token, patch, &it); err != nil {
		return nil, fmt.Errorf("update item: %w", err)
	}
	return it.toDomain(), nil
}

// PublishItem creates a listing.
func (c *Client) PublishItem(ctx context.Context, token domain.AccessToken, payload map[string]any) (*domain.RemoteItem, error) {
	var it item
	if err := c.Post(ctx, "/items", "item_publication", token, payload, &it); err != nil {
		return nil, fmt.Errorf("publish item: %w", err)
	}
	return it.toDomain(), nil
}

// GetDescription returns the plain text description. A listing without a
// description returns an empty string.
func (c *Client) GetDescription(ctx context.Context, token domain.AccessToken, itemID string) (string, error) {
	var d description
	err := c.Get(ctx, "/items/"+url.PathEscape(itemID)+"/description", "item_description", token, &d)
	if err != nil {
		if IsNotFound(err) {
			return "", nil
		}
		return "", fmt.Errorf("get description: %w", err)
	}
	return d.PlainText, nil
}

// SetDescription adds a description, or replaces the existing one.
func (c *Client) SetDescription(ctx context.Context, token domain.AccessToken, itemID, text string, overwrite bool) error {
	endpoint := "/items/" + url.PathEscape(itemID) + "/description"
	body := description{PlainText: text}

	var err error
	if overwrite {
		err = c.Put(ctx, endpoint+"?api_version=2", "item_description", token, body, nil)
	} else {
		err = c.Post(ctx, endpoint, "item_description", token, body, nil)
	}
	if err != nil {
		return fmt.Errorf("set description: %w", err)
	}
	return nil
}
