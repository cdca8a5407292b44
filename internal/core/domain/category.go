package domain

import "strings"

// CategoryPathSeparator joins category names in a human-readable path.
const CategoryPathSeparator = " > "

// CategoryNode is one node of the marketplace category tree.
// Nodes are fetched per resolution attempt and never cached across records.
type CategoryNode struct {
	// ID is the marketplace category id (e.g. "MLB1747").
	ID string `json:"id"`
	// Name is the display name of the category.
	Name string `json:"name"`
	// ChildIDs lists the ids of the direct children, when known.
	ChildIDs []string `json:"-"`
}

// Category is a fully fetched category: node, children, ancestry and settings.
type Category struct {
	Node         CategoryNode
	Children     []CategoryNode
	PathFromRoot []CategoryNode
	Settings     CategorySettings
}

// IsLeaf returns true if the category has no children.
func (c Category) IsLeaf() bool {
	return len(c.Children) == 0
}

// Path returns the names from root to this category joined with " > ".
func (c Category) Path() string {
	names := make([]string, 0, len(c.PathFromRoot))
	for _, n := range c.PathFromRoot {
		names = append(names, n.Name)
	}
	return strings.Join(names, CategoryPathSeparator)
}

// CategorySettings are the business rules a category imposes on listings.
// A nil pointer or an empty list means the setting is absent and its rule
// passes.
type CategorySettings struct {
	BuyingModes          []string
	ItemConditions       []string
	ShippingModes        []string
	MaxDescriptionLength *int
	MaxPictures          *int
	MaxTitleLength       *int
	MinPriceCents        *int64
	MaxPriceCents        *int64
	// PriceRequired is set when the category settings carry price "required".
	PriceRequired bool
	// Status is the category status; only "enabled" categories accept listings.
	Status string
	// IsLeaf mirrors Category.IsLeaf so the validator can work on settings alone.
	IsLeaf bool
}

// CategoryStatusEnabled is the only status that accepts new listings.
const CategoryStatusEnabled = "enabled"

// CategoryAttribute describes one attribute a category knows about.
type CategoryAttribute struct {
	ID       string
	Name     string
	Required bool
	Hint     string
	Tooltip  string
}

// Guidance returns the hint, falling back to the tooltip.
func (a CategoryAttribute) Guidance() string {
	if a.Hint != "" {
		return a.Hint
	}
	return a.Tooltip
}

// CategoryPrediction is a category suggested by domain discovery for a title.
type CategoryPrediction struct {
	CategoryID   string
	CategoryName string
	DomainID     string
	DomainName   string
}

// SplitCategoryPath splits a "A > B > C" (or "A;B;C") path into trimmed,
// non-empty segments.
func SplitCategoryPath(path string) []string {
	parts := strings.FieldsFunc(path, func(r rune) bool {
		return r == '>' || r == ';'
	})
	segments := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			segments = append(segments, s)
		}
	}
	return segments
}
