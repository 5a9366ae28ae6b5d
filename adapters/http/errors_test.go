package http

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/satriahrh/cocoa-fruit/playground/domain"
)

func TestToErrorResponse(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", &domain.ValidationError{Reason: domain.ReasonTooLong, Limit: 10000}, http.StatusUnprocessableEntity, "validation_error"},
		{"index", &domain.IndexError{Index: 3, Len: 1}, http.StatusNotFound, "response_not_found"},
		{"unknown level", domain.ErrUnknownLevel, http.StatusUnprocessableEntity, "unknown_level"},
		{"unknown view", domain.ErrUnknownViewMode, http.StatusUnprocessableEntity, "invalid_request"},
		{"busy", domain.ErrSubmitInProgress, http.StatusConflict, "submit_in_progress"},
		{"rate limited", &domain.BackendError{Reason: domain.BackendRateLimited, Model: "Gemini"}, http.StatusBadGateway, "backend_rate_limited"},
		{"timeout", &domain.BackendError{Reason: domain.BackendTimeout, Model: "Gemini"}, http.StatusGatewayTimeout, "backend_timeout"},
		{"wrapped backend", fmt.Errorf("submit: %w", &domain.BackendError{Reason: domain.BackendUnavailable}), http.StatusBadGateway, "backend_unavailable"},
		{"configuration", &domain.ConfigurationError{Model: "Gemini", Detail: "no key"}, http.StatusServiceUnavailable, "backend_not_configured"},
		{"echo", echo.NewHTTPError(http.StatusUnauthorized, "Invalid token"), http.StatusUnauthorized, "unauthorized"},
		{"not found route", echo.ErrNotFound, http.StatusNotFound, "not_found"},
		{"other", errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := toErrorResponse(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, body.Code)
			assert.NotEmpty(t, body.Message)
		})
	}
}

func TestToErrorResponse_ValidationDetails(t *testing.T) {
	_, body := toErrorResponse(&domain.ValidationError{Reason: domain.ReasonEmptyPrompt})
	assert.Equal(t, "empty_prompt", body.Details)

	type sample struct {
		Mode string `validate:"required,oneof=playground engage"`
	}
	err := NewRequestValidator().Validate(&sample{Mode: "chat"})
	status, body := toErrorResponse(err)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Mode: oneof", body.Details)
}
