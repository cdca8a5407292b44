package domain

import "fmt"

// LookupKind is the operation requested by a category lookup row.
type LookupKind int

// Category lookup operations.
const (
	// LookupIDByPath resolves a "A > B > C" path to a category id.
	LookupIDByPath LookupKind = 1
	// LookupIDByTitle predicts a category from a product title.
	LookupIDByTitle LookupKind = 2
	// LookupPathByID expands a category id into its path from root.
	LookupPathByID LookupKind = 3
)

// IsValid returns true if the lookup kind is recognised.
func (k LookupKind) IsValid() bool {
	return k >= LookupIDByPath && k <= LookupPathByID
}

// String returns the lookup name.
func (k LookupKind) String() string {
	switch k {
	case LookupIDByPath:
		return "id_by_path"
	case LookupIDByTitle:
		return "id_by_title"
	case LookupPathByID:
		return "path_by_id"
	default:
		return fmt.Sprintf("unsupported(%d)", int(k))
	}
}

// CategoryLookupRecord is one row of the category lookup queue.
type CategoryLookupRecord struct {
	ID           int64
	Credentials  Credentials
	Operation    LookupKind
	CategoryID   string
	CategoryPath string
	Title        string
	InternalCode string
}

// CategoryLookupResult is what a lookup writes back.
type CategoryLookupResult struct {
	CategoryID   string
	CategoryPath string
}

// StatusCheckRecord is one row of the status check queue.
type StatusCheckRecord struct {
	ID            int64
	Credentials   Credentials
	Operation     int
	MarketplaceID string
	Status        string
}

// StatusCheckOperation is the only operation the status queue supports.
const StatusCheckOperation = 1
