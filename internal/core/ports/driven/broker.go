package driven

import (
	"context"

	"github.com/Victor-GX-Rocha/mercado-livre-auto-pecas/internal/core/domain"
)

// CredentialBroker exchanges stored seller credentials for an access token.
type CredentialBroker interface {
	// FetchToken returns a short-lived access token.
	// Returns domain.ErrMissingCredentials when a credential field is empty
	// and domain.ErrTokenRefreshFailed when the exchange fails.
	FetchToken(ctx context.Context, creds domain.Credentials) (domain.AccessToken, error)
}
