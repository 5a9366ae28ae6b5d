package llm

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/satriahrh/cocoa-fruit/playground/domain"
)

// classify maps a provider failure to a BackendError. statusCode is the HTTP
// status reported by the provider SDK, or 0 when there was none.
func classify(ctx context.Context, model string, statusCode int, err error) *domain.BackendError {
	berr := &domain.BackendError{Model: model, Detail: err.Error(), Err: err}

	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded):
		berr.Reason = domain.BackendTimeout
	case errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled):
		berr.Reason = domain.BackendUnavailable
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		berr.Reason = domain.BackendInvalidCredentials
	case statusCode == http.StatusTooManyRequests:
		berr.Reason = domain.BackendRateLimited
	case statusCode == http.StatusRequestTimeout || statusCode >= 500:
		berr.Reason = domain.BackendUnavailable
	case statusCode == 0 && errors.As(err, &netErr):
		berr.Reason = domain.BackendUnavailable
	default:
		berr.Reason = domain.BackendProviderError
	}
	return berr
}
