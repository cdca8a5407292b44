package domain

import "time"

// DatabaseDriver selects the queue store backend.
type DatabaseDriver string

// Supported database drivers.
const (
	// DatabaseDriverPostgres is the production queue database.
	DatabaseDriverPostgres DatabaseDriver = "postgres"

	// DatabaseDriverSQLite is a local single-file queue database.
	DatabaseDriverSQLite DatabaseDriver = "sqlite"
)

// IsValid returns true if the driver is recognised.
func (d DatabaseDriver) IsValid() bool {
	return d == DatabaseDriverPostgres || d == DatabaseDriverSQLite
}

// String returns the string representation.
func (d DatabaseDriver) String() string {
	return string(d)
}

// DatabaseSettings configures the queue store.
type DatabaseSettings struct {
	// Driver selects postgres or sqlite.
	Driver DatabaseDriver

	// DSN is the Postgres connection string.
	DSN string

	// SQLiteDir is the directory holding the sqlite database file.
	SQLiteDir string
}

// MarketplaceSettings configures the marketplace API client.
type MarketplaceSettings struct {
	// BaseURL is the API root (https://api.mercadolibre.com).
	BaseURL string

	// TokenURL is the OAuth token endpoint.
	TokenURL string

	// SiteID is the marketplace site (MLB).
	SiteID string

	// RequestsPerSecond paces outgoing requests. Zero disables pacing.
	RequestsPerSecond float64

	// Timeout bounds a single HTTP request.
	Timeout time.Duration

	// OptimisticEdits aborts an edit when the listing changed remotely
	// between reading it and applying the patch.
	OptimisticEdits bool
}

// RunnerSettings configures the outer loop.
type RunnerSettings struct {
	// ControlFile is the .env file holding STILL_ON and TIMER.
	ControlFile string

	// FallbackInterval is used when TIMER is missing.
	FallbackInterval time.Duration
}

// LogSettings configures the logger.
type LogSettings struct {
	// Level is debug, info, warn or error.
	Level string

	// Format is auto, json or console.
	Format string
}

// KafkaSettings configures the outcome event publisher.
// Publishing is disabled when Brokers is empty.
type KafkaSettings struct {
	Brokers []string
	Topic   string
}

// Enabled returns true if events should be published.
func (k KafkaSettings) Enabled() bool {
	return len(k.Brokers) > 0 && k.Topic != ""
}

// PictureSettings configures picture staging.
// When Endpoint is empty pictures are uploaded directly to the marketplace.
type PictureSettings struct {
	// BaseDir is prepended to relative picture paths.
	BaseDir   string
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// StagingEnabled returns true if pictures are staged in object storage.
func (p PictureSettings) StagingEnabled() bool {
	return p.Endpoint != "" && p.Bucket != ""
}

// ProcessorSettings toggles the queues processed by each pass.
type ProcessorSettings struct {
	Products   bool
	Categories bool
	Status     bool
}

// Settings holds the whole application configuration.
type Settings struct {
	Database    DatabaseSettings
	Marketplace MarketplaceSettings
	Runner      RunnerSettings
	Log         LogSettings
	Kafka       KafkaSettings
	Pictures    PictureSettings
	Processors  ProcessorSettings

	// ReceiptsDir holds the publication receipt files.
	ReceiptsDir string

	// MetricsAddr is the listen address of the /metrics server.
	// Empty disables it.
	MetricsAddr string
}

// DefaultSettings returns the settings used when nothing is configured.
func DefaultSettings() Settings {
	return Settings{
		Database: DatabaseSettings{
			Driver: DatabaseDriverPostgres,
		},
		Marketplace: MarketplaceSettings{
			BaseURL:           "https://api.mercadolibre.com",
			TokenURL:          "https://api.mercadolibre.com/oauth/token",
			SiteID:            "MLB",
			RequestsPerSecond: 5,
			Timeout:           30 * time.Second,
			OptimisticEdits:   true,
		},
		Runner: RunnerSettings{
			ControlFile:      ".env",
			FallbackInterval: DefaultRunInterval,
		},
		Log: LogSettings{
			Level:  "info",
			Format: "auto",
		},
		Processors: ProcessorSettings{
			Products:   true,
			Categories: true,
			Status:     true,
		},
		ReceiptsDir: "retorno",
	}
}
