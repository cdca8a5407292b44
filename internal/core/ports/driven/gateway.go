package driven

import (
	"context"
	"io"

	"github.com/Victor-GX-Rocha/mercado-livre-auto-pecas/internal/core/domain"
)

// ItemGateway reads and writes marketplace listings.
// Failed calls return a *domain.RemoteError.
type ItemGateway interface {
	// GetItem fetches the current remote state of a listing.
	GetItem(ctx context.Context, token domain.AccessToken, itemID string) (*domain.RemoteItem, error)

	// UpdateItem applies a partial update and returns the listing as reported
	// after the update.
	UpdateItem(ctx context.Context, token domain.AccessToken, itemID string, patch map[string]any) (*domain.RemoteItem, error)

	// PublishItem creates a new listing.
	PublishItem(ctx context.Context, token domain.AccessToken, payload map[string]any) (*domain.RemoteItem, error)

	// GetDescription returns the plain text description of a listing.
	// An empty string means the listing has no description.
	GetDescription(ctx context.Context, token domain.AccessToken, itemID string) (string, error)

	// SetDescription adds the description, or replaces it when overwrite is set.
	SetDescription(ctx context.Context, token domain.AccessToken, itemID, text string, overwrite bool) error
}

// CategoryGateway reads the marketplace category tree.
type CategoryGateway interface {
	// RootCategories returns the top-level categories of the site.
	RootCategories(ctx context.Context, token domain.AccessToken) ([]domain.CategoryNode, error)

	// GetCategory fetches a category with its children, ancestry and settings.
	GetCategory(ctx context.Context, token domain.AccessToken, categoryID string) (*domain.Category, error)

	// CategoryAttributes lists the attributes a category knows about.
	CategoryAttributes(ctx context.Context, token domain.AccessToken, categoryID string) ([]domain.CategoryAttribute, error)

	// DiscoverCategory predicts categories for a product title.
	DiscoverCategory(ctx context.Context, token domain.AccessToken, title string) ([]domain.CategoryPrediction, error)
}

// CompatibilityGateway searches and attaches compatible vehicles.
type CompatibilityGateway interface {
	// SearchCompatibilities returns the catalogue product ids of the vehicles
	// matching the query. No match is domain.ErrNoCompatibilities.
	SearchCompatibilities(ctx context.Context, token domain.AccessToken, query domain.CompatibilityQuery) ([]string, error)

	// AddCompatibilities attaches vehicles to a listing.
	AddCompatibilities(ctx context.Context, token domain.AccessToken, itemID string, productIDs []string) error
}

// PictureGateway registers pictures with the marketplace.
type PictureGateway interface {
	// UploadPicture uploads picture bytes and returns the marketplace picture id.
	UploadPicture(ctx context.Context, token domain.AccessToken, filename string, r io.Reader) (string, error)

	// RegisterPictureURL registers a publicly reachable picture and returns its id.
	RegisterPictureURL(ctx context.Context, token domain.AccessToken, url string) (string, error)
}

// MarketplaceGateway is the full typed marketplace API.
type MarketplaceGateway interface {
	ItemGateway
	CategoryGateway
	CompatibilityGateway
	PictureGateway
}
