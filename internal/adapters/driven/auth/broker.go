package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/Victor-GX-Rocha/mercado-livre-auto-pecas/internal/core/domain"
	"github.com/Victor-GX-Rocha/mercado-livre-auto-pecas/internal/core/ports/driven"
)

// Ensure Broker implements the interface.
var _ driven.CredentialBroker = (*Broker)(nil)

// DefaultTokenURL is the marketplace OAuth token endpoint.
const DefaultTokenURL = "https://api.mercadolibre.com/oauth/token"

// defaultTimeout bounds one token exchange.
const defaultTimeout = 30 * time.Second

// Broker exchanges a seller's refresh token for an access token.
// Tokens are not cached: callers fetch one per credential group and batch.
type Broker struct {
	tokenURL   string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewBroker creates a broker. An empty tokenURL uses DefaultTokenURL and a
// nil httpClient uses a client with a 30s timeout.
func NewBroker(tokenURL string, httpClient *http.Client, logger *zap.Logger) *Broker {
	if tokenURL == "" {
		tokenURL = DefaultTokenURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Broker{
		tokenURL:   tokenURL,
		httpClient: httpClient,
		logger:     logger.Named("auth"),
	}
}

// FetchToken refreshes an access token for the credentials.
//
// Missing credential fields return a ValidationFailure wrapping
// domain.ErrMissingCredentials. A failed exchange returns a
// RemoteRequestFailure wrapping domain.ErrTokenRefreshFailed.
func (b *Broker) FetchToken(ctx context.Context, creds domain.Credentials) (domain.AccessToken, error) {
	if missing := creds.MissingFields(); len(missing) > 0 {
		return domain.AccessToken{}, &domain.Failure{
			Kind:   domain.ValidationFailure,
			Causes: []string{fmt.Sprintf("Colunas de credencial vazias!: [%s]", strings.Join(missing, ", "))},
			Err:    domain.ErrMissingCredentials,
		}
	}

	cfg := oauth2.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		RedirectURL:  creds.RedirectURI,
		Endpoint: oauth2.Endpoint{
			TokenURL:  b.tokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, b.httpClient)
	tok, err := cfg.TokenSource(ctx, &oauth2.Token{RefreshToken: creds.RefreshToken}).Token()
	if err != nil {
		b.logger.Warn("token refresh failed", zap.Stringer("credentials", creds), zap.Error(err))
		return domain.AccessToken{}, refreshFailure(err)
	}

	b.logger.Debug("token refreshed", zap.Stringer("credentials", creds), zap.Time("expiry", tok.Expiry))
	return domain.AccessToken{Value: tok.AccessToken, Expiry: tok.Expiry}, nil
}

// refreshFailure turns an exchange error into a classified failure. The
// token endpoint's response body is kept as a cause.
func refreshFailure(err error) *domain.Failure {
	causes := []string{"Falha ao obter o token de acesso."}
	wrapped := fmt.Errorf("%w: %w", domain.ErrTokenRefreshFailed, err)

	var re *oauth2.RetrieveError
	if errors.As(err, &re) {
		status := 0
		if re.Response != nil {
			status = re.Response.StatusCode
		}
		remote := &domain.RemoteError{
			Message:    fmt.Sprintf("Erro HTTP %d", status),
			Code:       status,
			HTTPStatus: status,
			Context:    "auth",
			Details:    string(re.Body),
		}
		causes = append(causes, remote.Error())
		wrapped = fmt.Errorf("%w: %w", domain.ErrTokenRefreshFailed, remote)
	} else {
		causes = append(causes, err.Error())
	}

	return &domain.Failure{Kind: domain.RemoteRequestFailure, Causes: causes, Err: wrapped}
}
