package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Victor-GX-Rocha/mercado-livre-auto-pecas/internal/core/domain"
)

// Publish step names.
const (
	stepPublishPayload       = "Construir o payload de publicação"
	stepPublishItem          = "Publicar o produto"
	stepPublishDescription   = "Adicionar a descrição do produto"
	stepPublishCompatibility = "Adicionar as compatibilidades do produto"
)

// MaxCompatibilities is the most vehicles attached to one listing.
const MaxCompatibilities = 180

// FulfillmentNotAllowedMarker identifies the marketplace error returned when the
// seller is not enabled for fulfillment.
const FulfillmentNotAllowedMarker = `"message":"Client not allowed to update item null logistic_type."`

// FulfillmentRemediation is recorded when the seller is not enabled for fulfillment.
const FulfillmentRemediation = `Seu perfil ainda não é autorizado a publicar no modo "fulfillment". ` +
	`Este modo só é liberado após o registro que pode ser realizado através desse link: ` +
	`https://envios.mercadolivre.com.br/vender-com-full/contato?openSea=true. ` +
	`Caso queira mais informação sobre o que é modo fulfillment: ` +
	`[O que é o full: https://www.mercadolivre.com.br/ajuda/O-que-e-o-Mercado-Envios-Full_5162, ` +
	`Como vender com o full: https://envios.mercadolivre.com.br/vender-com-full].`

// publishState is the position of a record in the publish flow.
type publishState int

const (
	publishValidated publishState = iota
	publishPayloadBuilt
	publishPublished
	publishDescriptionAdded
	publishCompatibilityAdded
	publishRecorded
	publishFailed
)

func (s publishState) String() string {
	switch s {
	case publishValidated:
		return "validated"
	case publishPayloadBuilt:
		return "payload_built"
	case publishPublished:
		return "published"
	case publishDescriptionAdded:
		return "description_added"
	case publishCompatibilityAdded:
		return "compatibility_added"
	case publishRecorded:
		return "recorded"
	default:
		return "failed"
	}
}

// publishOperation creates a new listing.
type publishOperation struct {
	deps OperationDeps
}

func newPublishOperation(deps OperationDeps) *publishOperation {
	return &publishOperation{deps: deps}
}

func (o *publishOperation) Kind() domain.OperationKind { return domain.OperationPublish }

// Run validates, composes the payload, creates the listing, then adds the
// description and compatibilities. Failures after creation never remove the
// listing; its id is kept in the recorded causes.
func (o *publishOperation) Run(ctx context.Context, rec domain.ProductRecord, token domain.AccessToken) domain.OperationResult {
	log := recordLogger(o.deps.Logger, rec)
	state := publishValidated

	fail := func(f *domain.Failure) domain.OperationResult {
		log.Warn("publish failed",
			zap.Stringer("state", state),
			zap.String("step", f.Step),
			zap.Strings("causes", f.Causes))
		state = publishFailed
		return domain.Failed(f)
	}

	if f := validateRecord(rec, columnPictures, columnPrice, columnListingType); f != nil {
		return fail(f)
	}

	rec, payload, err := o.buildPayload(ctx, rec, token)
	if err != nil {
		return fail(stepFailure(stepPublishPayload, err))
	}
	state = publishPayloadBuilt

	item, err := o.deps.Items.PublishItem(ctx, token, payload)
	if err != nil {
		return fail(publicationFailure(err))
	}
	state = publishPublished
	rec.Identifiers.MarketplaceID = item.ID
	rec.Identifiers.Permalink = item.Permalink
	log.Info("listing created", zap.String("item_id", item.ID), zap.String("permalink", item.Permalink))

	if o.deps.Receipts != nil {
		receipt := domain.Receipt{
			InternalCode:  rec.Identifiers.InternalCode,
			MarketplaceID: item.ID,
			Permalink:     item.Permalink,
		}
		if err := o.deps.Receipts.Append(ctx, receipt); err != nil {
			log.Warn("receipt not written", zap.Error(err))
		}
	}

	created := fmt.Sprintf("Anúncio criado: %s (%s)", item.ID, item.Permalink)

	if strings.TrimSpace(rec.Sale.Description) != "" {
		if err := o.deps.Items.SetDescription(ctx, token, item.ID, rec.Sale.Description, false); err != nil {
			f := stepFailure(stepPublishDescription, err)
			f.Causes = append([]string{created}, f.Causes...)
			return fail(f)
		}
	}
	state = publishDescriptionAdded

	if err := o.addCompatibilities(ctx, log, rec, token, item.ID); err != nil {
		f := stepFailure(stepPublishCompatibility, err)
		f.Causes = append([]string{created}, f.Causes...)
		return fail(f)
	}
	state = publishCompatibilityAdded

	remote := &domain.RemoteState{
		MarketplaceID: item.ID,
		Status:        item.Status,
		Permalink:     item.Permalink,
		CategoryID:    item.CategoryID,
	}
	if remote.CategoryID == "" {
		remote.CategoryID = rec.Category.CategoryID
	}
	state = publishRecorded
	log.Debug("publish finished", zap.Stringer("state", state))

	return domain.Succeeded(remote)
}

// buildPayload composes shipping, category, attributes and pictures, in that
// order. The returned record carries the resolved category id.
func (o *publishOperation) buildPayload(ctx context.Context, rec domain.ProductRecord, token domain.AccessToken) (domain.ProductRecord, map[string]any, error) {
	shipping, err := o.deps.Payloads.Shipping(rec)
	if err != nil {
		return rec, nil, fmt.Errorf("shipping: %w", err)
	}

	resolution, err := o.deps.Resolver.Resolve(ctx, rec, token)
	if err != nil {
		return rec, nil, err
	}
	rec.Category.CategoryID = resolution.Category.Node.ID

	attributes, err := o.deps.Attributes.Generate(ctx, token, rec, rec.Category.CategoryID)
	if err != nil {
		return rec, nil, err
	}

	pictureIDs, err := o.deps.Pictures.Upload(ctx, token, rec.Sale.Pictures)
	if err != nil {
		return rec, nil, err
	}

	payload, err := o.deps.Payloads.Publication(rec, domain.PublicationParts{
		CategoryID: rec.Category.CategoryID,
		Shipping:   shipping,
		Attributes: attributes,
		PictureIDs: pictureIDs,
	})
	if err != nil {
		return rec, nil, fmt.Errorf("publication payload: %w", err)
	}
	return rec, payload, nil
}

// addCompatibilities attaches compatible vehicles. Records with any empty id
// list skip the step.
func (o *publishOperation) addCompatibilities(ctx context.Context, log *zap.Logger, rec domain.ProductRecord, token domain.AccessToken, itemID string) error {
	query := rec.Technical.CompatibilityQuery()
	if query.IsEmpty() {
		log.Debug("compatibility columns empty, step skipped")
		return nil
	}

	productIDs, err := o.deps.Compatibility.SearchCompatibilities(ctx, token, query)
	if err != nil {
		return err
	}
	if len(productIDs) > MaxCompatibilities {
		productIDs = productIDs[:MaxCompatibilities]
	}
	return o.deps.Compatibility.AddCompatibilities(ctx, token, itemID, productIDs)
}

// publicationFailure classifies a failed listing creation, replacing the
// fulfillment error with its remediation message.
func publicationFailure(err error) *domain.Failure {
	var remote *domain.RemoteError
	if errors.As(err, &remote) && strings.Contains(remote.Details, FulfillmentNotAllowedMarker) {
		f := domain.NewFailure(domain.BusinessRuleFailure, FulfillmentRemediation)
		f.Err = err
		f.Step = stepPublishItem
		return f
	}
	return stepFailure(stepPublishItem, err)
}
