package mercadolivre

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/Victor-GX-Rocha/mercado-livre-auto-pecas/internal/core/domain"
)

// errorBody is the error envelope returned by the API.
type errorBody struct {
	Message   string          `json:"message"`
	Error     string          `json:"error"`
	ErrorCode json.RawMessage `json:"error_code"`
}

// newHTTPError builds the error for a non-2xx response.
func newHTTPError(callContext string, status int, body []byte) *domain.RemoteError {
	return &domain.RemoteError{
		Message:    fmt.Sprintf("Erro HTTP %d", status),
		Code:       errorCode(status, body),
		HTTPStatus: status,
		Context:    callContext,
		Details:    string(body),
	}
}

// newNetworkError builds the error for a request that got no response.
func newNetworkError(callContext string, err error) *domain.RemoteError {
	return &domain.RemoteError{
		Message: "Falha na comunicação com a API",
		Code:    domain.RemoteCodeNetwork,
		Context: callContext,
		Details: err.Error(),
	}
}

// newUnexpectedError builds the error for anything else.
func newUnexpectedError(callContext string, status int, err error, body []byte) *domain.RemoteError {
	details := err.Error()
	if len(body) > 0 {
		details = string(body)
	}
	return &domain.RemoteError{
		Message:    "Erro de requisição inesperado: " + err.Error(),
		Code:       domain.RemoteCodeUnexpected,
		HTTPStatus: status,
		Context:    callContext,
		Details:    details,
	}
}

// errorCode returns the body's error_code when it is a number (or a numeric
// string), else the HTTP status.
func errorCode(status int, body []byte) int {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil || len(eb.ErrorCode) == 0 {
		return status
	}
	var n int
	if err := json.Unmarshal(eb.ErrorCode, &n); err == nil {
		return n
	}
	var s string
	if err := json.Unmarshal(eb.ErrorCode, &s); err == nil {
		if n, err := strconv.Atoi(s); err == nil {
			return n
		}
	}
	return status
}

// IsNotFound checks if the error indicates a resource was not found.
func IsNotFound(err error) bool {
	return hasStatus(err, http.StatusNotFound)
}

// IsUnauthorized checks if the error indicates an invalid or expired token.
func IsUnauthorized(err error) bool {
	return hasStatus(err, http.StatusUnauthorized) || hasStatus(err, http.StatusForbidden)
}

// IsRateLimited checks if the error indicates rate limiting.
func IsRateLimited(err error) bool {
	return hasStatus(err, http.StatusTooManyRequests) || errors.Is(err, domain.ErrRateLimited)
}

// IsRetryable checks if the transport would retry the error.
func IsRetryable(err error) bool {
	var remote *domain.RemoteError
	if !errors.As(err, &remote) {
		return false
	}
	if remote.Code == domain.RemoteCodeNetwork && remote.HTTPStatus == 0 {
		return true
	}
	return retryableStatus(remote.HTTPStatus)
}

func retryableStatus(status int) bool {
	switch status {
	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}

func hasStatus(err error, status int) bool {
	var remote *domain.RemoteError
	if errors.As(err, &remote) {
		return remote.HTTPStatus == status
	}
	return false
}
