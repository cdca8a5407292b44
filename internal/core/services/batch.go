package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Victor-GX-Rocha/mercado-livre-auto-pecas/internal/core/domain"
	"github.com/Victor-GX-Rocha/mercado-livre-auto-pecas/internal/core/ports/driven"
	"github.com/Victor-GX-Rocha/mercado-livre-auto-pecas/internal/core/ports/driving"
)

// Ensure BatchService implements the interface.
var _ driving.BatchProcessor = (*BatchService)(nil)

// BatchConfig wires a BatchService. Lookups, Statuses, History and Observers
// are optional.
type BatchConfig struct {
	Products       driven.ProductQueue
	Recorder       driven.OutcomeRecorder
	Lookups        driven.CategoryLookupStore
	Statuses       driven.StatusCheckStore
	Broker         driven.CredentialBroker
	Operations     OperationDeps
	CategoryLookup *CategoryLookupService
	StatusCheck    *StatusCheckService
	History        driven.BatchHistoryStore
	Observers      []driven.OutcomeObserver
	Queues         domain.ProcessorSettings
	Logger         *zap.Logger
}

// BatchService processes the pending rows of every queue. Rows are grouped by
// client id, a token is fetched once per group and rows run strictly one at a
// time. Every row ends in exactly one terminal outcome.
type BatchService struct {
	cfg    BatchConfig
	logger *zap.Logger
}

// NewBatchService creates a batch processor.
func NewBatchService(cfg BatchConfig) *BatchService {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Operations.Logger == nil {
		cfg.Operations.Logger = cfg.Logger
	}
	return &BatchService{cfg: cfg, logger: cfg.Logger}
}

// RunOnce processes every enabled queue once, products first.
func (s *BatchService) RunOnce(ctx context.Context) ([]domain.BatchSummary, error) {
	type pass struct {
		enabled bool
		run     func(context.Context) (*domain.BatchSummary, error)
	}
	passes := []pass{
		{s.cfg.Queues.Products && s.cfg.Products != nil, s.ProcessProducts},
		{s.cfg.Queues.Categories && s.cfg.Lookups != nil, s.ProcessCategoryLookups},
		{s.cfg.Queues.Status && s.cfg.Statuses != nil, s.ProcessStatusChecks},
	}

	var (
		summaries []domain.BatchSummary
		errs      []error
	)
	for _, p := range passes {
		if !p.enabled {
			continue
		}
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		summary, err := p.run(ctx)
		if summary != nil {
			summaries = append(summaries, *summary)
		}
		if err != nil {
			errs = append(errs, err)
		}
	}
	return summaries, errors.Join(errs...)
}

// ProcessProducts runs the lifecycle operation of every pending product row.
func (s *BatchService) ProcessProducts(ctx context.Context) (*domain.BatchSummary, error) {
	summary := s.begin(domain.QueueProducts)

	records, err := s.cfg.Products.PendingProducts(ctx)
	if err != nil {
		return s.finish(ctx, summary, fmt.Errorf("pending products: %w", err))
	}

	clients, groups := groupBy(records, func(r domain.ProductRecord) string { return r.Credentials.ClientID })
	for _, client := range clients {
		group := groups[client]
		summary.Groups++

		token, f := s.fetchToken(ctx, group[0].Credentials)
		if f != nil {
			s.logger.Warn("token unavailable, group failed",
				zap.String("client", client),
				zap.Int("records", len(group)),
				zap.Strings("causes", f.Causes))
			for _, rec := range group {
				s.recordProduct(context.WithoutCancel(ctx), summary, rec, domain.Failed(f))
			}
			continue
		}

		kinds, byKind := groupBy(group, func(r domain.ProductRecord) domain.OperationKind { return r.Operation })
		for _, kind := range kinds {
			op, err := NewOperation(kind, s.cfg.Operations)
			if err != nil {
				s.logger.Warn("unsupported operation", zap.Int("operation", int(kind)), zap.Error(err))
			}
			for _, rec := range byKind[kind] {
				if err := ctx.Err(); err != nil {
					return s.finish(ctx, summary, err)
				}
				// A started record runs to its outcome even if the pass is cancelled.
				s.processProduct(context.WithoutCancel(ctx), summary, op, rec, token)
			}
		}
	}
	return s.finish(ctx, summary, nil)
}

func (s *BatchService) processProduct(ctx context.Context, summary *domain.BatchSummary, op Operation, rec domain.ProductRecord, token domain.AccessToken) {
	if rec.Operation != domain.OperationSleep {
		if err := s.cfg.Recorder.MarkExecuting(ctx, rec.ID); err != nil {
			recordLogger(s.logger, rec).Warn("mark executing failed", zap.Error(err))
		}
	}
	s.recordProduct(ctx, summary, rec, runOperation(ctx, recordLogger(s.logger, rec), op, rec, token))
}

// runOperation runs op, turning a panic into an UnexpectedFailure.
func runOperation(ctx context.Context, log *zap.Logger, op Operation, rec domain.ProductRecord, token domain.AccessToken) (result domain.OperationResult) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("operation panicked", zap.Any("panic", r), zap.Stack("stack"))
			result = domain.Failed(domain.NewFailure(domain.UnexpectedFailure, fmt.Sprintf("Falha inesperada: %v", r)))
		}
	}()
	return op.Run(ctx, rec, token)
}

// recordProduct writes the single terminal outcome of a product row.
func (s *BatchService) recordProduct(ctx context.Context, summary *domain.BatchSummary, rec domain.ProductRecord, result domain.OperationResult) {
	log := recordLogger(s.logger, rec)

	var (
		code   domain.OutcomeCode
		causes []string
		err    error
	)
	switch {
	case result.Asleep:
		code = domain.CodeAsleep
		err = s.cfg.Recorder.MarkAsleep(ctx, rec.ID)
	case result.Success:
		code = domain.CodeSuccess
		update := result.Update()
		causes = update.Causes
		err = s.cfg.Recorder.MarkSuccess(ctx, rec.ID, update)
	default:
		f := result.Failure
		if f == nil {
			f = domain.NewFailure(domain.UnexpectedFailure, "Operação terminou sem resultado.")
		}
		if f.Kind == domain.UnexpectedFailure {
			log.Error("unexpected failure", zap.Error(f))
		}
		code = f.Code()
		causes = f.RecordedCauses()
		err = s.cfg.Recorder.MarkFailure(ctx, rec.ID, code, causes)
	}
	if err != nil {
		log.Error("outcome not recorded", zap.Stringer("code", code), zap.Error(err))
	}

	summary.Count(code)
	s.notify(ctx, domain.Outcome{
		Queue:     domain.QueueProducts,
		RecordID:  rec.ID,
		ClientID:  rec.Credentials.ClientID,
		Operation: rec.Operation.String(),
		Code:      code,
		Causes:    causes,
		At:        time.Now(),
	})
}

// ProcessCategoryLookups answers every pending category lookup row.
func (s *BatchService) ProcessCategoryLookups(ctx context.Context) (*domain.BatchSummary, error) {
	summary := s.begin(domain.QueueCategories)
	if s.cfg.Lookups == nil || s.cfg.CategoryLookup == nil {
		return s.finish(ctx, summary, nil)
	}

	records, err := s.cfg.Lookups.PendingLookups(ctx)
	if err != nil {
		return s.finish(ctx, summary, fmt.Errorf("pending lookups: %w", err))
	}

	clients, groups := groupBy(records, func(r domain.CategoryLookupRecord) string { return r.Credentials.ClientID })
	for _, client := range clients {
		group := groups[client]
		summary.Groups++
		token, tokenFailure := s.fetchToken(ctx, group[0].Credentials)

		for _, rec := range group {
			if err := ctx.Err(); err != nil {
				return s.finish(ctx, summary, err)
			}
			log := s.logger.With(zap.Int64("record_id", rec.ID), zap.Stringer("operation", rec.Operation))
			recCtx := context.WithoutCancel(ctx)

			f := tokenFailure
			var result domain.CategoryLookupResult
			if f == nil {
				if err := s.cfg.Lookups.MarkLookupExecuting(recCtx, rec.ID); err != nil {
					log.Warn("mark executing failed", zap.Error(err))
				}
				result, f = s.cfg.CategoryLookup.Lookup(recCtx, rec, token)
			}

			code := domain.CodeSuccess
			var causes []string
			if f != nil {
				code, causes = f.Code(), f.RecordedCauses()
				err = s.cfg.Lookups.MarkLookupFailure(recCtx, rec.ID, code, causes)
			} else {
				err = s.cfg.Lookups.MarkLookupSuccess(recCtx, rec.ID, result)
			}
			if err != nil {
				log.Error("outcome not recorded", zap.Stringer("code", code), zap.Error(err))
			}

			summary.Count(code)
			s.notify(recCtx, domain.Outcome{
				Queue:     domain.QueueCategories,
				RecordID:  rec.ID,
				ClientID:  client,
				Operation: rec.Operation.String(),
				Code:      code,
				Causes:    causes,
				At:        time.Now(),
			})
		}
	}
	return s.finish(ctx, summary, nil)
}

// ProcessStatusChecks stores the remote status of every pending status row.
func (s *BatchService) ProcessStatusChecks(ctx context.Context) (*domain.BatchSummary, error) {
	summary := s.begin(domain.QueueStatus)
	if s.cfg.Statuses == nil || s.cfg.StatusCheck == nil {
		return s.finish(ctx, summary, nil)
	}

	records, err := s.cfg.Statuses.PendingStatusChecks(ctx)
	if err != nil {
		return s.finish(ctx, summary, fmt.Errorf("pending status checks: %w", err))
	}

	clients, groups := groupBy(records, func(r domain.StatusCheckRecord) string { return r.Credentials.ClientID })
	for _, client := range clients {
		group := groups[client]
		summary.Groups++
		token, tokenFailure := s.fetchToken(ctx, group[0].Credentials)

		for _, rec := range group {
			if err := ctx.Err(); err != nil {
				return s.finish(ctx, summary, err)
			}
			log := s.logger.With(zap.Int64("record_id", rec.ID), zap.String("item_id", rec.MarketplaceID))
			recCtx := context.WithoutCancel(ctx)

			f := tokenFailure
			var status string
			if f == nil {
				if err := s.cfg.Statuses.MarkStatusExecuting(recCtx, rec.ID); err != nil {
					log.Warn("mark executing failed", zap.Error(err))
				}
				status, f = s.cfg.StatusCheck.Check(recCtx, rec, token)
			}

			code := domain.CodeSuccess
			var causes []string
			if f != nil {
				code, causes = f.Code(), f.RecordedCauses()
				err = s.cfg.Statuses.MarkStatusFailure(recCtx, rec.ID, code, causes)
			} else {
				err = s.cfg.Statuses.MarkStatusSuccess(recCtx, rec.ID, status)
			}
			if err != nil {
				log.Error("outcome not recorded", zap.Stringer("code", code), zap.Error(err))
			}

			summary.Count(code)
			s.notify(recCtx, domain.Outcome{
				Queue:     domain.QueueStatus,
				RecordID:  rec.ID,
				ClientID:  client,
				Operation: "status_check",
				Code:      code,
				Causes:    causes,
				At:        time.Now(),
			})
		}
	}
	return s.finish(ctx, summary, nil)
}

// fetchToken obtains the access token of a credential group. Empty
// credentials are a ValidationFailure; a refused refresh is a
// RemoteRequestFailure.
func (s *BatchService) fetchToken(ctx context.Context, creds domain.Credentials) (domain.AccessToken, *domain.Failure) {
	token, err := s.cfg.Broker.FetchToken(ctx, creds)
	if err == nil {
		return token, nil
	}
	if !errors.Is(err, domain.ErrMissingCredentials) && !errors.Is(err, domain.ErrTokenRefreshFailed) {
		err = fmt.Errorf("%w: %w", domain.ErrTokenRefreshFailed, err)
	}
	return domain.AccessToken{}, classify(err)
}

func (s *BatchService) begin(queue string) *domain.BatchSummary {
	summary := domain.NewBatchSummary(uuid.NewString(), queue)
	s.logger.Debug("pass started", zap.String("queue", queue), zap.String("run_id", summary.RunID))
	return summary
}

// finish closes the summary, stores it and notifies observers.
func (s *BatchService) finish(ctx context.Context, summary *domain.BatchSummary, err error) (*domain.BatchSummary, error) {
	summary.EndedAt = time.Now()
	if err != nil {
		summary.Error = err.Error()
	}

	if summary.Total() > 0 || err != nil {
		s.logger.Info("pass finished",
			zap.String("queue", summary.Queue),
			zap.String("run_id", summary.RunID),
			zap.Int("groups", summary.Groups),
			zap.Int("records", summary.Total()),
			zap.Int("failures", summary.Failures()),
			zap.Duration("duration", summary.Duration()),
			zap.Error(err))

		if s.cfg.History != nil {
			// Store with a context that survives cancellation of the pass.
			if herr := s.cfg.History.RecordBatch(context.WithoutCancel(ctx), summary); herr != nil {
				s.logger.Warn("batch history not recorded", zap.Error(herr))
			}
		}
	}

	for _, o := range s.cfg.Observers {
		o.BatchFinished(ctx, *summary)
	}
	return summary, err
}

func (s *BatchService) notify(ctx context.Context, outcome domain.Outcome) {
	for _, o := range s.cfg.Observers {
		o.OutcomeRecorded(ctx, outcome)
	}
}

// groupBy splits items by key, keeping the order in which keys first appear.
func groupBy[T any, K comparable](items []T, key func(T) K) ([]K, map[K][]T) {
	var order []K
	groups := make(map[K][]T)
	for _, item := range items {
		k := key(item)
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], item)
	}
	return order, groups
}
