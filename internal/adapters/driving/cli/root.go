// Package cli implements the autopecas command line.
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Victor-GX-Rocha/mercado-livre-auto-pecas/internal/core/ports/driving"
)

// skipBootstrap marks commands that run without services.
const skipBootstrap = "skip-bootstrap"

// Options are the global flags handed to the bootstrap function.
type Options struct {
	ConfigPath string
	Verbose    bool
}

// Services are the core services the commands drive.
type Services struct {
	Settings   driving.SettingsService
	Batch      driving.BatchProcessor
	Runner     driving.Runner
	Categories driving.CategoryFinder
	History    driving.HistoryService

	// Close releases the resources behind the services. May be nil.
	Close func() error
}

// BootstrapFunc builds the services once flags are parsed.
type BootstrapFunc func(ctx context.Context, opts Options) (*Services, error)

var (
	version = "dev"

	configPath string
	verbose    bool

	bootstrap     BootstrapFunc
	closeServices func() error

	settingsService driving.SettingsService
	batchProcessor  driving.BatchProcessor
	loopRunner      driving.Runner
	categoryFinder  driving.CategoryFinder
	historyService  driving.HistoryService
)

var rootCmd = &cobra.Command{
	Use:   "autopecas",
	Short: "Mercado Livre listing manager for auto parts",
	Long: `autopecas processes the pending rows of the product, category lookup
and status check queues against the Mercado Livre API.

Each row carries the seller credentials and an operation code. Every row ends
with a return code and, on failure, the causes that explain it.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to the TOML config file (default config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// SetBootstrap sets the function that builds the services.
func SetBootstrap(fn BootstrapFunc) {
	bootstrap = fn
}

// Execute runs the root command and releases the services it built.
func Execute(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	if cerr := teardown(); cerr != nil && err == nil {
		err = fmt.Errorf("shutdown failed: %w", cerr)
	}
	return err
}

func setup(cmd *cobra.Command, _ []string) error {
	if bootstrap == nil || cmd.Annotations[skipBootstrap] != "" {
		return nil
	}
	svc, err := bootstrap(cmd.Context(), Options{ConfigPath: configPath, Verbose: verbose})
	if err != nil {
		return fmt.Errorf("startup failed: %w", err)
	}
	useServices(svc)
	return nil
}

func teardown() error {
	if closeServices == nil {
		return nil
	}
	fn := closeServices
	closeServices = nil
	return fn()
}

func useServices(svc *Services) {
	if svc == nil {
		return
	}
	settingsService = svc.Settings
	batchProcessor = svc.Batch
	loopRunner = svc.Runner
	categoryFinder = svc.Categories
	historyService = svc.History
	closeServices = svc.Close
}

var errNotConfigured = errors.New("not configured")

func notConfigured(name string) error {
	return fmt.Errorf("%s %w", name, errNotConfigured)
}
