package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/Victor-GX-Rocha/mercado-livre-auto-pecas/internal/adapters/driven/auth"
	"github.com/Victor-GX-Rocha/mercado-livre-auto-pecas/internal/adapters/driven/config/env"
	"github.com/Victor-GX-Rocha/mercado-livre-auto-pecas/internal/adapters/driven/config/file"
	"github.com/Victor-GX-Rocha/mercado-livre-auto-pecas/internal/adapters/driven/events"
	"github.com/Victor-GX-Rocha/mercado-livre-auto-pecas/internal/adapters/driven/metrics"
	"github.com/Victor-GX-Rocha/mercado-livre-auto-pecas/internal/adapters/driven/payload"
	"github.com/Victor-GX-Rocha/mercado-livre-auto-pecas/internal/adapters/driven/pictures"
	"github.com/Victor-GX-Rocha/mercado-livre-auto-pecas/internal/adapters/driven/receipts"
	"github.com/Victor-GX-Rocha/mercado-livre-auto-pecas/internal/adapters/driven/storage/postgres"
	"github.com/Victor-GX-Rocha/mercado-livre-auto-pecas/internal/adapters/driven/storage/sqlite"
	"github.com/Victor-GX-Rocha/mercado-livre-auto-pecas/internal/adapters/driving/cli"
	"github.com/Victor-GX-Rocha/mercado-livre-auto-pecas/internal/connectors/mercadolivre"
	"github.com/Victor-GX-Rocha/mercado-livre-auto-pecas/internal/core/domain"
	"github.com/Victor-GX-Rocha/mercado-livre-auto-pecas/internal/core/ports/driven"
	"github.com/Victor-GX-Rocha/mercado-livre-auto-pecas/internal/core/services"
	"github.com/Victor-GX-Rocha/mercado-livre-auto-pecas/internal/logger"
)

// shutdownTimeout bounds the metrics server shutdown.
const shutdownTimeout = 5 * time.Second

// queueStore is implemented by every database backend.
type queueStore interface {
	Products() driven.ProductQueue
	Recorder() driven.OutcomeRecorder
	Lookups() driven.CategoryLookupStore
	Statuses() driven.StatusCheckStore
	History() driven.BatchHistoryStore
	Close() error
}

// closers releases resources in reverse order of acquisition.
type closers []func() error

func (c *closers) add(fn func() error) {
	*c = append(*c, fn)
}

func (c closers) close() error {
	var errs []error
	for i := len(c) - 1; i >= 0; i-- {
		if err := c[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// bootstrap builds every service from the config file.
//
//nolint:funlen // composition root
func bootstrap(ctx context.Context, opts cli.Options) (_ *cli.Services, err error) {
	configStore, err := file.NewConfigStore(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	settingsService := services.NewSettingsService(configStore)
	settings, err := settingsService.Get()
	if err != nil {
		return nil, err
	}
	if err := settingsService.Validate(); err != nil {
		return nil, err
	}

	log := logger.New(logger.Options{
		Level:   settings.Log.Level,
		Format:  settings.Log.Format,
		Verbose: opts.Verbose,
	})

	var cleanup closers
	cleanup.add(func() error {
		_ = log.Sync()
		return nil
	})
	defer func() {
		if err != nil {
			_ = cleanup.close()
		}
	}()

	store, err := openStore(ctx, settings.Database, log)
	if err != nil {
		return nil, err
	}
	cleanup.add(store.Close)

	client := mercadolivre.NewClient(mercadolivre.Config{
		BaseURL:           settings.Marketplace.BaseURL,
		SiteID:            settings.Marketplace.SiteID,
		Timeout:           settings.Marketplace.Timeout,
		RequestsPerSecond: settings.Marketplace.RequestsPerSecond,
	}, log)
	broker := auth.NewBroker(settings.Marketplace.TokenURL, &http.Client{Timeout: settings.Marketplace.Timeout}, log)

	var stager pictures.Stager
	if settings.Pictures.StagingEnabled() {
		minioStager, stagerErr := pictures.NewMinioStager(settings.Pictures)
		if stagerErr != nil {
			return nil, stagerErr
		}
		if err = minioStager.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		stager = minioStager
	}

	observers := startObservers(settings, log, &cleanup)

	resolver := services.NewCategoryResolver(client, services.NewCategoryValidator(), log)
	batch := services.NewBatchService(services.BatchConfig{
		Products: store.Products(),
		Recorder: store.Recorder(),
		Lookups:  store.Lookups(),
		Statuses: store.Statuses(),
		Broker:   broker,
		Operations: services.OperationDeps{
			Items:          client,
			Compatibility:  client,
			Resolver:       resolver,
			Payloads:       payload.NewBuilder(settings.Marketplace.SiteID),
			Attributes:     payload.NewAttributeGenerator(client, log),
			Pictures:       pictures.NewUploader(client, settings.Pictures.BaseDir, stager, log),
			Receipts:       receipts.NewFileLog(settings.ReceiptsDir),
			Logger:         log,
			OptimisticEdit: settings.Marketplace.OptimisticEdits,
		},
		CategoryLookup: services.NewCategoryLookupService(client, resolver, log),
		StatusCheck:    services.NewStatusCheckService(client, log),
		History:        store.History(),
		Observers:      observers,
		Queues:         settings.Processors,
		Logger:         log,
	})

	control := env.NewControlFile(settings.Runner.ControlFile, log)
	if err := control.Watch(); err != nil {
		log.Warn("control file not watched, changes apply after the timer", zap.Error(err))
	}
	cleanup.add(control.Close)

	runner := services.NewRunner(control, batch, store.History(), settings.Runner.FallbackInterval, log)

	return &cli.Services{
		Settings:   settingsService,
		Batch:      batch,
		Runner:     runner,
		Categories: resolver,
		History:    services.NewHistoryService(store.History()),
		Close:      cleanup.close,
	}, nil
}

func openStore(ctx context.Context, cfg domain.DatabaseSettings, log *zap.Logger) (queueStore, error) {
	switch cfg.Driver {
	case domain.DatabaseDriverSQLite:
		store, err := sqlite.NewStore(cfg.SQLiteDir)
		if err != nil {
			return nil, fmt.Errorf("opening sqlite store: %w", err)
		}
		log.Debug("sqlite store opened", zap.String("dir", cfg.SQLiteDir))
		return store, nil
	case domain.DatabaseDriverPostgres:
		store, err := postgres.Connect(ctx, cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("connecting to postgres: %w", err)
		}
		if err := store.Migrate(); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("migrating postgres: %w", err)
		}
		log.Debug("postgres store opened")
		return store, nil
	default:
		return nil, fmt.Errorf("%w: unknown database driver %q", domain.ErrInvalidInput, cfg.Driver)
	}
}

// startObservers wires the optional outcome observers.
func startObservers(settings *domain.Settings, log *zap.Logger, cleanup *closers) []driven.OutcomeObserver {
	var observers []driven.OutcomeObserver

	if settings.MetricsAddr != "" {
		observers = append(observers, metrics.NewRecorder(nil))
		server := metrics.NewServer(settings.MetricsAddr, nil, log)
		server.Start()
		cleanup.add(func() error {
			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return server.Shutdown(ctx)
		})
	}

	if settings.Kafka.Enabled() {
		publisher := events.NewPublisher(settings.Kafka, log)
		observers = append(observers, publisher)
		cleanup.add(publisher.Close)
	}

	return observers
}
