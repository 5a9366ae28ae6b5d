package http

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/satriahrh/cocoa-fruit/playground/adapters/llm"
	"github.com/satriahrh/cocoa-fruit/playground/domain"
	"github.com/satriahrh/cocoa-fruit/playground/usecase"
	"github.com/satriahrh/cocoa-fruit/playground/utils/log"
)

// SessionRegistry is the part of the session registry the API needs.
type SessionRegistry interface {
	Create(ctx context.Context) *usecase.Orchestrator
	Get(id string) (*usecase.Orchestrator, bool)
	End(id string) bool
}

// ModelCatalog lists the models offered to the UI.
type ModelCatalog interface {
	Models() []llm.ModelSpec
}

type PlaygroundHandler struct {
	sessions     SessionRegistry
	models       ModelCatalog
	tokens       *TokenSigner
	defaultModel string
}

type CreateSessionResponse struct {
	SessionID string                 `json:"session_id"`
	Token     string                 `json:"token"`
	Type      string                 `json:"type"`
	Snapshot  domain.SessionSnapshot `json:"snapshot"`
}

type DraftRequest struct {
	SystemPrompt string `json:"system_prompt"`
	UserPrompt   string `json:"user_prompt"`
}

type ModelRequest struct {
	Model string `json:"model" validate:"required,notblank,max=200"`
}

type ToggleRequest struct {
	Field string `json:"field" validate:"required,oneof=show_prompt show_system_prompt"`
}

type ViewRequest struct {
	Mode string `json:"mode" validate:"required,oneof=playground engage"`
}

type LevelRequest struct {
	Level int `json:"level" validate:"required,min=1"`
}

type EngagePromptRequest struct {
	Prompt string `json:"prompt"`
}

type GuessRequest struct {
	Guess string `json:"guess"`
}

type SubmitResponse struct {
	Response domain.ModelResponse   `json:"response"`
	Snapshot domain.SessionSnapshot `json:"snapshot"`
}

type ToggleResponse struct {
	Index int                 `json:"index"`
	Flags domain.DisplayFlags `json:"flags"`
}

type CheckPasswordResponse struct {
	Level   int    `json:"level"`
	Correct bool   `json:"correct"`
	Message string `json:"message"`
}

const (
	passwordCorrectMsg   = "Congratulations! You guessed the password correctly!"
	passwordIncorrectMsg = "Wrong password. Keep trying!"
)

func NewPlaygroundHandler(sessions SessionRegistry, models ModelCatalog, tokens *TokenSigner, defaultModel string) *PlaygroundHandler {
	return &PlaygroundHandler{
		sessions:     sessions,
		models:       models,
		tokens:       tokens,
		defaultModel: defaultModel,
	}
}

// Register mounts the API under /api/v1.
func (h *PlaygroundHandler) Register(e *echo.Echo) {
	api := e.Group("/api/v1")

	// Public endpoints (no auth required)
	api.GET("/health", h.HealthCheck)
	api.GET("/models", h.ListModels)
	api.POST("/sessions", h.CreateSession)

	session := api.Group("/session", h.SessionMiddleware)
	session.GET("", h.GetSession)
	session.DELETE("", h.EndSession)
	session.PUT("/draft", h.SetDraft)
	session.PUT("/model", h.ChangeModel)
	session.POST("/submit", h.Submit)
	session.POST("/reset", h.Reset)
	session.POST("/responses/:index/toggle", h.ToggleDisplay)
	session.PUT("/view", h.ChangeView)

	engage := session.Group("/engage")
	engage.PUT("/level", h.ChangeEngageLevel)
	engage.PUT("/prompt", h.SetEngagePrompt)
	engage.PUT("/guess", h.SetEngageGuess)
	engage.POST("/submit", h.EngageSubmit)
	engage.POST("/reset", h.EngageReset)
	engage.POST("/toggle", h.ToggleEngageUserPrompt)
	engage.POST("/check", h.CheckPassword)
}

// SessionMiddleware resolves the bearer token to a live session.
func (h *PlaygroundHandler) SessionMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token, err := bearerToken(c)
		if err != nil {
			return err
		}

		sessionID, err := h.tokens.Parse(token)
		if err != nil {
			log.WithCtx(c.Request().Context()).Debug("token rejected", zap.Error(err))
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
		}

		o, ok := h.sessions.Get(sessionID)
		if !ok {
			return echo.NewHTTPError(http.StatusUnauthorized, "Session expired")
		}

		c.Set(sessionContextKey, o)
		c.SetRequest(c.Request().WithContext(log.WithSession(c.Request().Context(), sessionID)))
		return next(c)
	}
}

// SessionFrom returns the session resolved by SessionMiddleware.
func SessionFrom(c echo.Context) *usecase.Orchestrator {
	o, _ := c.Get(sessionContextKey).(*usecase.Orchestrator)
	return o
}

func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return err
	}
	return c.Validate(req)
}

func (h *PlaygroundHandler) HealthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"service":   "prompt-playground",
	})
}

func (h *PlaygroundHandler) ListModels(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"default_model": h.defaultModel,
		"models":        h.models.Models(),
	})
}

func (h *PlaygroundHandler) CreateSession(c echo.Context) error {
	o := h.sessions.Create(c.Request().Context())

	token, err := h.tokens.Issue(o.SessionID())
	if err != nil {
		h.sessions.End(o.SessionID())
		return err
	}

	return c.JSON(http.StatusCreated, CreateSessionResponse{
		SessionID: o.SessionID(),
		Token:     token,
		Type:      "Bearer",
		Snapshot:  o.Snapshot(),
	})
}

func (h *PlaygroundHandler) GetSession(c echo.Context) error {
	return c.JSON(http.StatusOK, SessionFrom(c).Snapshot())
}

func (h *PlaygroundHandler) EndSession(c echo.Context) error {
	h.sessions.End(SessionFrom(c).SessionID())
	return c.NoContent(http.StatusNoContent)
}

func (h *PlaygroundHandler) SetDraft(c echo.Context) error {
	var req DraftRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	o := SessionFrom(c)
	o.SetDraft(c.Request().Context(), req.SystemPrompt, req.UserPrompt)
	return c.JSON(http.StatusOK, o.Snapshot())
}

func (h *PlaygroundHandler) ChangeModel(c echo.Context) error {
	var req ModelRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	o := SessionFrom(c)
	if err := o.OnModelChange(c.Request().Context(), req.Model); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, o.Snapshot())
}

func (h *PlaygroundHandler) Submit(c echo.Context) error {
	o := SessionFrom(c)
	resp, err := o.OnSubmit(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, SubmitResponse{Response: resp, Snapshot: o.Snapshot()})
}

func (h *PlaygroundHandler) Reset(c echo.Context) error {
	o := SessionFrom(c)
	o.OnReset(c.Request().Context())
	return c.JSON(http.StatusOK, o.Snapshot())
}

func (h *PlaygroundHandler) ToggleDisplay(c echo.Context) error {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Response index must be an integer")
	}
	var req ToggleRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	flags, err := SessionFrom(c).ToggleDisplay(c.Request().Context(), index, domain.DisplayField(req.Field))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ToggleResponse{Index: index, Flags: flags})
}

func (h *PlaygroundHandler) ChangeView(c echo.Context) error {
	var req ViewRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	o := SessionFrom(c)
	if err := o.OnViewChange(c.Request().Context(), domain.ViewMode(req.Mode)); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, o.Snapshot())
}

func (h *PlaygroundHandler) ChangeEngageLevel(c echo.Context) error {
	var req LevelRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	o := SessionFrom(c)
	if err := o.OnEngageLevelChange(c.Request().Context(), req.Level); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, o.Snapshot())
}

func (h *PlaygroundHandler) SetEngagePrompt(c echo.Context) error {
	var req EngagePromptRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	o := SessionFrom(c)
	o.SetEngagePrompt(c.Request().Context(), req.Prompt)
	return c.JSON(http.StatusOK, o.Snapshot())
}

func (h *PlaygroundHandler) SetEngageGuess(c echo.Context) error {
	var req GuessRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	o := SessionFrom(c)
	o.SetEngageGuess(c.Request().Context(), req.Guess)
	return c.JSON(http.StatusOK, o.Snapshot())
}

func (h *PlaygroundHandler) EngageSubmit(c echo.Context) error {
	o := SessionFrom(c)
	resp, err := o.OnEngageSubmit(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, SubmitResponse{Response: resp, Snapshot: o.Snapshot()})
}

func (h *PlaygroundHandler) EngageReset(c echo.Context) error {
	o := SessionFrom(c)
	o.OnEngageReset(c.Request().Context())
	return c.JSON(http.StatusOK, o.Snapshot())
}

func (h *PlaygroundHandler) ToggleEngageUserPrompt(c echo.Context) error {
	shown := SessionFrom(c).ToggleEngageUserPrompt(c.Request().Context())
	return c.JSON(http.StatusOK, map[string]bool{"show_user_prompt": shown})
}

func (h *PlaygroundHandler) CheckPassword(c echo.Context) error {
	o := SessionFrom(c)
	level, ok, err := o.OnCheckPassword(c.Request().Context())
	if err != nil {
		return err
	}
	msg := passwordIncorrectMsg
	if ok {
		msg = passwordCorrectMsg
	}
	return c.JSON(http.StatusOK, CheckPasswordResponse{Level: level, Correct: ok, Message: msg})
}
