package domain

import (
	"context"
	"errors"
	"fmt"
)

// Backend generates text for one named model.
type Backend interface {
	// Generate either returns a fully populated response or an error,
	// usually a *BackendError.
	Generate(ctx context.Context, req PromptRequest) (ModelResponse, error)
	// ModelName is the identifier stamped into every response.
	ModelName() string
}

// BackendFactory resolves a backend for a model identifier.
type BackendFactory interface {
	Create(modelID string) (Backend, error)
}

type BackendErrorReason string

const (
	BackendUnavailable        BackendErrorReason = "unavailable"
	BackendInvalidCredentials BackendErrorReason = "invalid_credentials"
	BackendRateLimited        BackendErrorReason = "rate_limited"
	BackendProviderError      BackendErrorReason = "provider_error"
	BackendTimeout            BackendErrorReason = "timeout"
)

// BackendError is a provider problem. The user may retry.
type BackendError struct {
	Reason BackendErrorReason
	Model  string
	Detail string
	Err    error
}

func (e *BackendError) Error() string {
	msg := fmt.Sprintf("backend %s: %s", e.Model, e.Reason)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

func (e *BackendError) Unwrap() error { return e.Err }

// ConfigurationError means a backend could not be constructed, typically
// because credentials are missing.
type ConfigurationError struct {
	Model    string
	Provider string
	Detail   string
}

func (e *ConfigurationError) Error() string {
	if e.Provider == "" {
		return fmt.Sprintf("configuration: model %q: %s", e.Model, e.Detail)
	}
	return fmt.Sprintf("configuration: model %q (%s): %s", e.Model, e.Provider, e.Detail)
}

// ErrSubmitInProgress is returned when a submit arrives while another one is
// still waiting on its backend for the same session.
var ErrSubmitInProgress = errors.New("a submit is already in progress for this session")
