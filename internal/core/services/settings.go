package services

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Victor-GX-Rocha/mercado-livre-auto-pecas/internal/core/domain"
	"github.com/Victor-GX-Rocha/mercado-livre-auto-pecas/internal/core/ports/driven"
	"github.com/Victor-GX-Rocha/mercado-livre-auto-pecas/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyDatabaseDriver    = "database.driver"
	keyDatabaseDSN       = "database.dsn"
	keyDatabaseSQLiteDir = "database.sqlite_dir"
	keyBaseURL           = "marketplace.base_url"
	keyTokenURL          = "marketplace.token_url"
	keySiteID            = "marketplace.site_id"
	keyRequestsPerSecond = "marketplace.requests_per_second"
	keyTimeout           = "marketplace.timeout"
	keyOptimisticEdits   = "marketplace.optimistic_edits"
	keyControlFile       = "runner.control_file"
	keyFallbackInterval  = "runner.fallback_interval"
	keyLogLevel          = "log.level"
	keyLogFormat         = "log.format"
	keyKafkaBrokers      = "kafka.brokers"
	keyKafkaTopic        = "kafka.topic"
	keyPicturesBaseDir   = "pictures.base_dir"
	keyPicturesEndpoint  = "pictures.endpoint"
	keyPicturesAccessKey = "pictures.access_key"
	keyPicturesSecretKey = "pictures.secret_key"
	keyPicturesBucket    = "pictures.bucket"
	keyPicturesUseSSL    = "pictures.use_ssl"
	keyProcessProducts   = "processors.products"
	keyProcessCategories = "processors.categories"
	keyProcessStatus     = "processors.status"
	keyReceiptsDir       = "receipts.dir"
	keyMetricsAddr       = "metrics.addr"
)

// EnvDatabaseDSN overrides database.dsn.
const EnvDatabaseDSN = "AUTOPECAS_DATABASE_DSN"

// SettingsService reads application settings from a config store.
type SettingsService struct {
	configStore driven.ConfigStore
	lookupEnv   func(string) (string, bool)
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		lookupEnv:   os.LookupEnv,
	}
}

// Get returns the stored settings merged over domain.DefaultSettings.
// Malformed values fall back to the default.
func (s *SettingsService) Get() (*domain.Settings, error) {
	defaults := domain.DefaultSettings()

	settings := &domain.Settings{
		Database: domain.DatabaseSettings{
			Driver:    s.getDriver(defaults.Database.Driver),
			DSN:       s.getString(keyDatabaseDSN, defaults.Database.DSN),
			SQLiteDir: s.getString(keyDatabaseSQLiteDir, defaults.Database.SQLiteDir),
		},
		Marketplace: domain.MarketplaceSettings{
			BaseURL:           strings.TrimRight(s.getString(keyBaseURL, defaults.Marketplace.BaseURL), "/"),
			TokenURL:          s.getString(keyTokenURL, defaults.Marketplace.TokenURL),
			SiteID:            s.getString(keySiteID, defaults.Marketplace.SiteID),
			RequestsPerSecond: s.getFloat(keyRequestsPerSecond, defaults.Marketplace.RequestsPerSecond),
			Timeout:           s.getDuration(keyTimeout, defaults.Marketplace.Timeout),
			OptimisticEdits:   s.getBool(keyOptimisticEdits, defaults.Marketplace.OptimisticEdits),
		},
		Runner: domain.RunnerSettings{
			ControlFile:      s.getString(keyControlFile, defaults.Runner.ControlFile),
			FallbackInterval: s.getDuration(keyFallbackInterval, defaults.Runner.FallbackInterval),
		},
		Log: domain.LogSettings{
			Level:  s.getString(keyLogLevel, defaults.Log.Level),
			Format: s.getString(keyLogFormat, defaults.Log.Format),
		},
		Kafka: domain.KafkaSettings{
			Brokers: s.configStore.GetStringSlice(keyKafkaBrokers),
			Topic:   s.configStore.GetString(keyKafkaTopic),
		},
		Pictures: domain.PictureSettings{
			BaseDir:   s.configStore.GetString(keyPicturesBaseDir),
			Endpoint:  s.configStore.GetString(keyPicturesEndpoint),
			AccessKey: s.configStore.GetString(keyPicturesAccessKey),
			SecretKey: s.configStore.GetString(keyPicturesSecretKey),
			Bucket:    s.configStore.GetString(keyPicturesBucket),
			UseSSL:    s.getBool(keyPicturesUseSSL, defaults.Pictures.UseSSL),
		},
		Processors: domain.ProcessorSettings{
			Products:   s.getBool(keyProcessProducts, defaults.Processors.Products),
			Categories: s.getBool(keyProcessCategories, defaults.Processors.Categories),
			Status:     s.getBool(keyProcessStatus, defaults.Processors.Status),
		},
		ReceiptsDir: s.getString(keyReceiptsDir, defaults.ReceiptsDir),
		MetricsAddr: s.configStore.GetString(keyMetricsAddr),
	}

	if dsn, ok := s.lookupEnv(EnvDatabaseDSN); ok && dsn != "" {
		settings.Database.DSN = dsn
	}

	return settings, nil
}

// Validate checks the configuration is usable.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	switch settings.Database.Driver {
	case domain.DatabaseDriverPostgres:
		if settings.Database.DSN == "" {
			return fmt.Errorf("%w: %s is required for the postgres driver (or set %s)",
				domain.ErrInvalidInput, keyDatabaseDSN, EnvDatabaseDSN)
		}
	case domain.DatabaseDriverSQLite:
		if settings.Database.SQLiteDir == "" {
			return fmt.Errorf("%w: %s is required for the sqlite driver", domain.ErrInvalidInput, keyDatabaseSQLiteDir)
		}
	}

	if settings.Marketplace.BaseURL == "" || settings.Marketplace.TokenURL == "" {
		return fmt.Errorf("%w: marketplace base_url and token_url are required", domain.ErrInvalidInput)
	}
	if settings.Marketplace.RequestsPerSecond < 0 {
		return fmt.Errorf("%w: %s must not be negative", domain.ErrInvalidInput, keyRequestsPerSecond)
	}
	if len(settings.Kafka.Brokers) > 0 && settings.Kafka.Topic == "" {
		return fmt.Errorf("%w: %s is required when brokers are set", domain.ErrInvalidInput, keyKafkaTopic)
	}
	if settings.Pictures.Endpoint != "" && settings.Pictures.Bucket == "" {
		return fmt.Errorf("%w: %s is required when an endpoint is set", domain.ErrInvalidInput, keyPicturesBucket)
	}
	return nil
}

func (s *SettingsService) getString(key, defaultVal string) string {
	if val := s.configStore.GetString(key); val != "" {
		return val
	}
	return defaultVal
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

// getDuration reads a duration string ("30s", "2m"). A bare number is seconds.
func (s *SettingsService) getDuration(key string, defaultVal time.Duration) time.Duration {
	val, exists := s.configStore.Get(key)
	if !exists {
		return defaultVal
	}
	switch v := val.(type) {
	case string:
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	case int, int64, float64:
		if secs := s.configStore.GetFloat(key); secs > 0 {
			return time.Duration(secs * float64(time.Second))
		}
	}
	return defaultVal
}

func (s *SettingsService) getDriver(defaultVal domain.DatabaseDriver) domain.DatabaseDriver {
	val := s.configStore.GetString(keyDatabaseDriver)
	if val == "" {
		return defaultVal
	}
	driver := domain.DatabaseDriver(strings.ToLower(val))
	if !driver.IsValid() {
		return defaultVal
	}
	return driver
}
