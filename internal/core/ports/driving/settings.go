package driving

import "github.com/Victor-GX-Rocha/mercado-livre-auto-pecas/internal/core/domain"

// SettingsService exposes the application configuration.
type SettingsService interface {
	// Get returns the configuration merged over the defaults.
	Get() (*domain.Settings, error)

	// Validate checks the configuration is usable.
	Validate() error
}
