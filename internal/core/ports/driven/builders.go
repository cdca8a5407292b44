package driven

import (
	"context"

	"github.com/Victor-GX-Rocha/mercado-livre-auto-pecas/internal/core/domain"
)

// PayloadBuilder composes marketplace request bodies.
type PayloadBuilder interface {
	// Shipping builds the shipping sub-payload.
	Shipping(rec domain.ProductRecord) (map[string]any, error)

	// Publication builds the body of a new listing.
	Publication(rec domain.ProductRecord, parts domain.PublicationParts) (map[string]any, error)

	// EditPatch builds a patch holding only the fields whose local value
	// differs from the remote one. An empty patch means nothing changed.
	EditPatch(rec domain.ProductRecord, remote domain.RemoteItem) (map[string]any, error)
}

// AttributeGenerator derives listing attributes from a record.
type AttributeGenerator interface {
	// Generate returns the attributes of the record and checks that every
	// attribute the category requires is present. Missing required
	// attributes are a *domain.Failure of kind BusinessRuleFailure.
	Generate(ctx context.Context, token domain.AccessToken, rec domain.ProductRecord, categoryID string) ([]domain.Attribute, error)
}

// PictureUploader turns the raw pictures column into marketplace picture ids.
type PictureUploader interface {
	// Upload uploads every picture and returns the ids that succeeded.
	// Zero ids is an error.
	Upload(ctx context.Context, token domain.AccessToken, rawPictures string) ([]string, error)
}

// ReceiptLog appends publication receipts to a local audit log.
type ReceiptLog interface {
	Append(ctx context.Context, receipt domain.Receipt) error
}
