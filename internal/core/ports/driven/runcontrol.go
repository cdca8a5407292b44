package driven

import "github.com/Victor-GX-Rocha/mercado-livre-auto-pecas/internal/core/domain"

// RunControlSource reads the operator's loop switch.
type RunControlSource interface {
	// Load re-reads the control values.
	Load() (domain.RunControl, error)

	// Changes signals when the control source was modified.
	// Returns nil when change notification is unavailable.
	Changes() <-chan struct{}

	// Close releases any watcher.
	Close() error
}
