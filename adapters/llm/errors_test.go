package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/satriahrh/cocoa-fruit/playground/domain"
)

func TestClassify(t *testing.T) {
	base := errors.New("provider said no")

	tests := []struct {
		name   string
		status int
		err    error
		want   domain.BackendErrorReason
	}{
		{"unauthorized", 401, base, domain.BackendInvalidCredentials},
		{"forbidden", 403, base, domain.BackendInvalidCredentials},
		{"rate limited", 429, base, domain.BackendRateLimited},
		{"server error", 503, base, domain.BackendUnavailable},
		{"request timeout", 408, base, domain.BackendUnavailable},
		{"bad request", 400, base, domain.BackendProviderError},
		{"deadline", 0, context.DeadlineExceeded, domain.BackendTimeout},
		{"canceled", 0, context.Canceled, domain.BackendUnavailable},
		{"canceled wrapped", 0, fmt.Errorf("post: %w", context.Canceled), domain.BackendUnavailable},
		{"network", 0, &net.OpError{Op: "dial", Err: errors.New("connection refused")}, domain.BackendUnavailable},
		{"unknown", 0, base, domain.BackendProviderError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classify(context.Background(), "Gemini", tt.status, tt.err)
			assert.Equal(t, tt.want, got.Reason)
			assert.Equal(t, "Gemini", got.Model)
			assert.ErrorIs(t, got, tt.err)
		})
	}
}

func TestClassify_ExpiredContext(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 0)
	defer cancel()
	<-ctx.Done()

	got := classify(ctx, "Mock", 0, errors.New("request aborted"))
	assert.Equal(t, domain.BackendTimeout, got.Reason)
}

func TestClassify_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got := classify(ctx, "Mock", 0, errors.New("request aborted"))
	assert.Equal(t, domain.BackendUnavailable, got.Reason)
}
