package cli

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Victor-GX-Rocha/mercado-livre-auto-pecas/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show application settings",
	Long: `Shows the configuration merged over the defaults and checks it is usable.

Settings are read from the TOML file given by --config (config.toml by
default). The database DSN may also come from AUTOPECAS_DATABASE_DSN.`,
	RunE: runSettingsShow,
}

func init() {
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return notConfigured("settings service")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Database]")
	cmd.Printf("  Driver: %s\n", settings.Database.Driver)
	switch settings.Database.Driver {
	case domain.DatabaseDriverSQLite:
		cmd.Printf("  Directory: %s\n", orNotSet(settings.Database.SQLiteDir))
	default:
		cmd.Printf("  DSN: %s\n", orNotSet(maskDSN(settings.Database.DSN)))
	}
	cmd.Println()

	cmd.Println("[Marketplace]")
	cmd.Printf("  Base URL: %s\n", settings.Marketplace.BaseURL)
	cmd.Printf("  Token URL: %s\n", settings.Marketplace.TokenURL)
	cmd.Printf("  Site: %s\n", settings.Marketplace.SiteID)
	cmd.Printf("  Requests per second: %g\n", settings.Marketplace.RequestsPerSecond)
	cmd.Printf("  Timeout: %s\n", settings.Marketplace.Timeout)
	cmd.Printf("  Optimistic edits: %s\n", yesNo(settings.Marketplace.OptimisticEdits))
	cmd.Println()

	cmd.Println("[Runner]")
	cmd.Printf("  Control file: %s\n", settings.Runner.ControlFile)
	cmd.Printf("  Fallback interval: %s\n", settings.Runner.FallbackInterval)
	cmd.Printf("  Queues: %s\n", enabledQueues(settings.Processors))
	cmd.Println()

	cmd.Println("[Pictures]")
	cmd.Printf("  Base dir: %s\n", orNotSet(settings.Pictures.BaseDir))
	if settings.Pictures.StagingEnabled() {
		cmd.Printf("  Staging: %s/%s\n", settings.Pictures.Endpoint, settings.Pictures.Bucket)
		cmd.Printf("  Access key: %s\n", maskSecret(settings.Pictures.AccessKey))
	} else {
		cmd.Println("  Staging: disabled")
	}
	cmd.Println()

	cmd.Println("[Outputs]")
	cmd.Printf("  Receipts dir: %s\n", settings.ReceiptsDir)
	if settings.Kafka.Enabled() {
		cmd.Printf("  Kafka: %s (%s)\n", settings.Kafka.Topic, strings.Join(settings.Kafka.Brokers, ","))
	} else {
		cmd.Println("  Kafka: disabled")
	}
	cmd.Printf("  Metrics: %s\n", orNotSet(settings.MetricsAddr))
	cmd.Printf("  Log: %s, %s\n", settings.Log.Level, settings.Log.Format)
	cmd.Println()

	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
	} else {
		cmd.Println("Configuration is valid.")
	}

	return nil
}

func enabledQueues(p domain.ProcessorSettings) string {
	var queues []string
	if p.Products {
		queues = append(queues, domain.QueueProducts)
	}
	if p.Categories {
		queues = append(queues, domain.QueueCategories)
	}
	if p.Status {
		queues = append(queues, domain.QueueStatus)
	}
	if len(queues) == 0 {
		return "(none)"
	}
	return strings.Join(queues, ", ")
}

func orNotSet(s string) string {
	if s == "" {
		return "(not set)"
	}
	return s
}

// maskSecret masks a secret for display.
func maskSecret(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

// maskDSN hides the password of a URL-style DSN.
func maskDSN(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil || u.Scheme == "" {
		return dsn
	}
	return u.Redacted()
}
