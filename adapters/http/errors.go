package http

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/satriahrh/cocoa-fruit/playground/domain"
	"github.com/satriahrh/cocoa-fruit/playground/utils/log"
)

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// toErrorResponse maps an error to its status code and body.
func toErrorResponse(err error) (int, ErrorResponse) {
	var (
		validationErr *domain.ValidationError
		indexErr      *domain.IndexError
		backendErr    *domain.BackendError
		configErr     *domain.ConfigurationError
		fieldErrs     validator.ValidationErrors
		httpErr       *echo.HTTPError
	)

	switch {
	case errors.As(err, &validationErr):
		return http.StatusUnprocessableEntity, ErrorResponse{Code: "validation_error", Message: validationErr.Error(), Details: string(validationErr.Reason)}
	case errors.As(err, &fieldErrs):
		return http.StatusBadRequest, ErrorResponse{Code: "invalid_request", Message: "Request body failed validation", Details: describeFieldErrors(fieldErrs)}
	case errors.As(err, &indexErr):
		return http.StatusNotFound, ErrorResponse{Code: "response_not_found", Message: indexErr.Error()}
	case errors.Is(err, domain.ErrUnknownLevel):
		return http.StatusUnprocessableEntity, ErrorResponse{Code: "unknown_level", Message: err.Error()}
	case errors.Is(err, domain.ErrUnknownDisplayField), errors.Is(err, domain.ErrUnknownViewMode):
		return http.StatusUnprocessableEntity, ErrorResponse{Code: "invalid_request", Message: err.Error()}
	case errors.Is(err, domain.ErrSubmitInProgress):
		return http.StatusConflict, ErrorResponse{Code: "submit_in_progress", Message: err.Error()}
	case errors.As(err, &backendErr):
		status := http.StatusBadGateway
		if backendErr.Reason == domain.BackendTimeout {
			status = http.StatusGatewayTimeout
		}
		return status, ErrorResponse{Code: "backend_" + string(backendErr.Reason), Message: fmt.Sprintf("Model %s failed, please retry", backendErr.Model), Details: backendErr.Detail}
	case errors.As(err, &configErr):
		return http.StatusServiceUnavailable, ErrorResponse{Code: "backend_not_configured", Message: configErr.Error()}
	case errors.Is(err, ErrInvalidToken):
		return http.StatusUnauthorized, ErrorResponse{Code: "unauthorized", Message: "Invalid token"}
	case errors.As(err, &httpErr):
		return httpErr.Code, ErrorResponse{Code: strings.ToLower(strings.ReplaceAll(http.StatusText(httpErr.Code), " ", "_")), Message: fmt.Sprint(httpErr.Message)}
	default:
		return http.StatusInternalServerError, ErrorResponse{Code: "internal_error", Message: "Internal server error"}
	}
}

func describeFieldErrors(errs validator.ValidationErrors) string {
	parts := make([]string, 0, len(errs))
	for _, fe := range errs {
		parts = append(parts, fmt.Sprintf("%s: %s", fe.Field(), fe.Tag()))
	}
	return strings.Join(parts, "; ")
}

// ErrorHandler is echo's HTTPErrorHandler for the playground API.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status, body := toErrorResponse(err)
	logger := log.WithCtx(c.Request().Context())
	if status >= http.StatusInternalServerError {
		logger.Warn("request failed", zap.Int("status", status), zap.Error(err))
	} else {
		logger.Debug("request rejected", zap.Int("status", status), zap.Error(err))
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, body)
	}
	if err != nil {
		logger.Error("write error response", zap.Error(err))
	}
}
