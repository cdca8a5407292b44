package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Victor-GX-Rocha/mercado-livre-auto-pecas/internal/core/domain"
	"github.com/Victor-GX-Rocha/mercado-livre-auto-pecas/internal/core/ports/driven"
)

// Operation drives one record through a lifecycle operation.
// Run never returns an error: every failure is classified into the result.
type Operation interface {
	// Kind returns the operation implemented.
	Kind() domain.OperationKind

	// Run executes the operation's remote call sequence for one record.
	Run(ctx context.Context, rec domain.ProductRecord, token domain.AccessToken) domain.OperationResult
}

// OperationDeps are the collaborators shared by every operation.
type OperationDeps struct {
	Items          driven.ItemGateway
	Compatibility  driven.CompatibilityGateway
	Resolver       *CategoryResolver
	Payloads       driven.PayloadBuilder
	Attributes     driven.AttributeGenerator
	Pictures       driven.PictureUploader
	Receipts       driven.ReceiptLog
	Logger         *zap.Logger
	OptimisticEdit bool
}

// NewOperation returns the driver for an operation code. Unknown codes return
// an operation that fails every record with a ValidationFailure, together
// with an error wrapping domain.ErrUnsupportedOperation.
func NewOperation(kind domain.OperationKind, deps OperationDeps) (Operation, error) {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	switch kind {
	case domain.OperationPublish:
		return newPublishOperation(deps), nil
	case domain.OperationEdit:
		return newEditOperation(deps), nil
	case domain.OperationPause:
		return newStatusChangeOperation(kind, domain.StatusPaused, deps), nil
	case domain.OperationActivate:
		return newStatusChangeOperation(kind, domain.StatusActive, deps), nil
	case domain.OperationDelete:
		return newDeleteOperation(deps), nil
	case domain.OperationSleep:
		return sleepOperation{}, nil
	default:
		return unsupportedOperation{kind: kind}, fmt.Errorf("%w: %d", domain.ErrUnsupportedOperation, int(kind))
	}
}

// unsupportedOperation fails every record it receives.
type unsupportedOperation struct {
	kind domain.OperationKind
}

func (o unsupportedOperation) Kind() domain.OperationKind { return o.kind }

func (o unsupportedOperation) Run(_ context.Context, _ domain.ProductRecord, _ domain.AccessToken) domain.OperationResult {
	f := domain.NewFailure(domain.ValidationFailure, fmt.Sprintf("Operação inválida: %d", int(o.kind)))
	f.Err = domain.ErrUnsupportedOperation
	return domain.Failed(f)
}

// sleepOperation parks a record without touching the marketplace.
type sleepOperation struct{}

func (sleepOperation) Kind() domain.OperationKind { return domain.OperationSleep }

func (sleepOperation) Run(_ context.Context, _ domain.ProductRecord, _ domain.AccessToken) domain.OperationResult {
	return domain.OperationResult{Success: true, Asleep: true}
}

// classify turns any error into a failure of the canonical taxonomy.
func classify(err error) *domain.Failure {
	var f *domain.Failure
	if errors.As(err, &f) {
		return f
	}
	var remote *domain.RemoteError
	switch {
	case errors.As(err, &remote):
		return domain.WrapFailure(domain.RemoteRequestFailure, err)
	case errors.Is(err, domain.ErrMissingCredentials), errors.Is(err, domain.ErrInvalidInput):
		return domain.WrapFailure(domain.ValidationFailure, err)
	case errors.Is(err, domain.ErrTokenRefreshFailed), errors.Is(err, domain.ErrRateLimited):
		return domain.WrapFailure(domain.RemoteRequestFailure, err)
	case errors.Is(err, domain.ErrCategoryNotFound), errors.Is(err, domain.ErrNoCompatibilities):
		return domain.WrapFailure(domain.BusinessRuleFailure, err)
	case errors.Is(err, domain.ErrRemoteChanged):
		return domain.WrapFailure(domain.AbortedStepFailure, err)
	default:
		return domain.WrapFailure(domain.UnexpectedFailure, err)
	}
}

// stepFailure classifies err and tags it with the step it aborted.
func stepFailure(step string, err error) *domain.Failure {
	f := classify(err)
	cp := *f
	cp.Causes = append([]string(nil), f.Causes...)
	cp.Step = step
	return &cp
}

// recordLogger returns a logger annotated with the record's identity.
func recordLogger(logger *zap.Logger, rec domain.ProductRecord) *zap.Logger {
	return logger.With(
		zap.Int64("record_id", rec.ID),
		zap.Stringer("operation", rec.Operation),
		zap.String("client", rec.Credentials.ClientID),
		zap.String("item_id", rec.Identifiers.MarketplaceID),
	)
}
