package domain

import "time"

// RemoteItem is the subset of a remote listing the operations read and diff.
type RemoteItem struct {
	ID          string
	Status      string
	Permalink   string
	CategoryID  string
	Title       string
	PriceCents  int64
	Stock       int
	Condition   string
	BuyingMode  string
	ListingType string
	Warranty    string
	LastUpdated time.Time
	// Shipping is the raw shipping object as reported by the marketplace.
	Shipping map[string]any
	// Attributes maps attribute id to its value name.
	Attributes map[string]string
}

// Remote listing statuses.
const (
	StatusActive  = "active"
	StatusPaused  = "paused"
	StatusClosed  = "closed"
	StatusDeleted = "deleted"
)

// RemoteState is the terminal state of a listing after a successful operation.
type RemoteState struct {
	MarketplaceID string
	Status        string
	Permalink     string
	CategoryID    string
}

// SuccessUpdate holds the columns written on success. Empty fields are left
// untouched.
type SuccessUpdate struct {
	MarketplaceID string
	Permalink     string
	Status        string
	CategoryID    string
	// Causes are non-fatal notes (e.g. a skipped description step).
	Causes []string
}

// OperationResult is the outcome of one record. It is written exactly once per
// record per batch.
type OperationResult struct {
	Success     bool
	Failure     *Failure
	RemoteState *RemoteState
	// Asleep marks a parked record.
	Asleep bool
	// Notes are non-fatal causes recorded alongside a success.
	Notes []string
}

// Succeeded builds a successful result.
func Succeeded(state *RemoteState, notes ...string) OperationResult {
	return OperationResult{Success: true, RemoteState: state, Notes: notes}
}

// Failed builds a failed result.
func Failed(f *Failure) OperationResult {
	return OperationResult{Failure: f}
}

// Update converts a successful result into the columns to write.
func (r OperationResult) Update() SuccessUpdate {
	u := SuccessUpdate{Causes: r.Notes}
	if r.RemoteState != nil {
		u.MarketplaceID = r.RemoteState.MarketplaceID
		u.Permalink = r.RemoteState.Permalink
		u.Status = r.RemoteState.Status
		u.CategoryID = r.RemoteState.CategoryID
	}
	return u
}

// Outcome is one terminal outcome, as published to observers.
type Outcome struct {
	// Queue names the queue the record belongs to.
	Queue    string
	RecordID int64
	ClientID string
	// Operation is the name of the requested operation (e.g. "edit").
	Operation string
	Code      OutcomeCode
	Causes    []string
	At        time.Time
}
