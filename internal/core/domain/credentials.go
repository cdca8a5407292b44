package domain

import (
	"fmt"
	"time"
)

// Credentials stores a seller's marketplace application credentials.
// Every queue row carries its own copy; rows sharing a ClientID form one
// credential group and are processed under one access token.
type Credentials struct {
	// ClientID is the marketplace application id. It is also the grouping key.
	ClientID string `json:"client_id"`
	// ClientSecret is the marketplace application secret.
	ClientSecret string `json:"client_secret"`
	// RedirectURI is the redirect URI registered with the application.
	RedirectURI string `json:"redirect_uri"`
	// RefreshToken is the long-lived token exchanged for access tokens.
	RefreshToken string `json:"refresh_token"`
}

// MissingFields returns the names of empty credential fields, in column order.
func (c Credentials) MissingFields() []string {
	var missing []string
	if c.ClientID == "" {
		missing = append(missing, "client_id")
	}
	if c.ClientSecret == "" {
		missing = append(missing, "client_secret")
	}
	if c.RedirectURI == "" {
		missing = append(missing, "redirect_uri")
	}
	if c.RefreshToken == "" {
		missing = append(missing, "refresh_token")
	}
	return missing
}

// IsComplete returns true if every credential field is set.
func (c Credentials) IsComplete() bool {
	return len(c.MissingFields()) == 0
}

// String masks the secret parts so credentials are safe to log.
func (c Credentials) String() string {
	return fmt.Sprintf("Credentials{ClientID: %s, ClientSecret: %s, RefreshToken: %s}",
		c.ClientID, mask(c.ClientSecret), mask(c.RefreshToken))
}

// GoString masks the secret parts for %#v.
func (c Credentials) GoString() string {
	return c.String()
}

func mask(s string) string {
	if len(s) <= 4 {
		if s == "" {
			return ""
		}
		return "****"
	}
	return s[:4] + "****"
}

// AccessToken is a short-lived bearer token scoped to one batch.
// It is never persisted.
type AccessToken struct {
	// Value is the bearer token.
	Value string
	// Expiry is when the token expires. Zero means unknown.
	Expiry time.Time
}

// IsExpired returns true if the token has a known expiry in the past.
func (t AccessToken) IsExpired() bool {
	if t.Expiry.IsZero() {
		return false
	}
	return time.Now().After(t.Expiry)
}

// String masks the token value.
func (t AccessToken) String() string {
	return "AccessToken{" + mask(t.Value) + "}"
}
