package usecase

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/satriahrh/cocoa-fruit/playground/domain"
	"github.com/satriahrh/cocoa-fruit/playground/utils/log"
)

// Orchestrator drives one session: every inbound UI event goes through it.
// Transitions are serialized; a second submit while one is waiting on its
// backend fails with domain.ErrSubmitInProgress.
type Orchestrator struct {
	sessionID string
	store     *SessionStore
	validator PromptValidator
	backends  domain.BackendFactory
	broker    domain.MessageBroker

	mu         sync.Mutex
	submitting atomic.Bool
}

// NewOrchestrator binds the orchestrator to store for its whole lifetime.
// broker may be nil when nobody renders session events.
func NewOrchestrator(sessionID string, store *SessionStore, validator PromptValidator, backends domain.BackendFactory, broker domain.MessageBroker) *Orchestrator {
	return &Orchestrator{
		sessionID: sessionID,
		store:     store,
		validator: validator,
		backends:  backends,
		broker:    broker,
	}
}

func (o *Orchestrator) SessionID() string { return o.sessionID }

// Snapshot returns the state to render.
func (o *Orchestrator) Snapshot() domain.SessionSnapshot {
	snap := o.store.Snapshot()
	snap.SessionID = o.sessionID
	return snap
}

func (o *Orchestrator) SetDraft(ctx context.Context, system, user string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.store.SetDraft(system, user)
	o.publish(ctx, domain.EventDraftChanged)
}

// OnSubmit validates the drafts, generates with the selected model and
// appends the exchange. On any error the history is left as it was and the
// drafts are kept so the user can fix them and retry.
func (o *Orchestrator) OnSubmit(ctx context.Context) (domain.ModelResponse, error) {
	if !o.submitting.CompareAndSwap(false, true) {
		return domain.ModelResponse{}, domain.ErrSubmitInProgress
	}
	defer o.submitting.Store(false)

	o.mu.Lock()
	defer o.mu.Unlock()

	draft := o.store.Draft()
	model := o.store.SelectedModel()
	ctx = o.logCtx(ctx, model)
	log.WithCtx(ctx).Debug("submit received")

	req, err := o.validator.Validate(draft.SystemPrompt, draft.UserPrompt)
	if err != nil {
		log.WithCtx(ctx).Info("submit rejected", zap.Error(err))
		return domain.ModelResponse{}, err
	}

	resp, err := o.generate(ctx, model, req)
	if err != nil {
		return domain.ModelResponse{}, err
	}

	if err := o.store.AppendResponse(req, resp); err != nil {
		log.WithCtx(ctx).Error("append response", zap.Error(err))
		return domain.ModelResponse{}, err
	}

	log.WithCtx(ctx).Info("response appended",
		zap.Int("history_len", o.store.Len()),
		zap.Int("token_count", resp.TokenCount))
	o.publish(ctx, domain.EventResponseAdded)
	return resp, nil
}

func (o *Orchestrator) generate(ctx context.Context, model string, req domain.PromptRequest) (domain.ModelResponse, error) {
	backend, err := o.backends.Create(model)
	if err != nil {
		log.WithCtx(ctx).Warn("backend unavailable", zap.Error(err))
		return domain.ModelResponse{}, err
	}

	started := time.Now()
	resp, err := backend.Generate(ctx, req)
	if err != nil {
		log.WithCtx(ctx).Warn("generate failed", zap.Error(err), zap.Duration("elapsed", time.Since(started)))
		return domain.ModelResponse{}, err
	}
	log.WithCtx(ctx).Debug("generated", zap.Duration("elapsed", time.Since(started)))
	return resp, nil
}

// OnReset clears the playground history and drafts. The selected model stays.
func (o *Orchestrator) OnReset(ctx context.Context) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.store.Reset()
	log.WithCtx(o.logCtx(ctx, "")).Info("session reset")
	o.publish(ctx, domain.EventReset)
}

// OnModelChange selects another model. Existing responses keep the model
// name that produced them. A blank identifier is rejected and the selection
// stays as it was.
func (o *Orchestrator) OnModelChange(ctx context.Context, modelID string) error {
	modelID = strings.TrimSpace(modelID)
	if modelID == "" {
		return &domain.ValidationError{Reason: domain.ReasonEmptyModel}
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	o.store.SetSelectedModel(modelID)
	log.WithCtx(o.logCtx(ctx, modelID)).Info("model changed")
	o.publish(ctx, domain.EventModelChanged)
	return nil
}

func (o *Orchestrator) ToggleDisplay(ctx context.Context, index int, field domain.DisplayField) (domain.DisplayFlags, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	flags, err := o.store.ToggleDisplay(index, field)
	if err != nil {
		return flags, err
	}
	o.publish(ctx, domain.EventDisplayToggled)
	return flags, nil
}

func (o *Orchestrator) OnViewChange(ctx context.Context, mode domain.ViewMode) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if err := o.store.SetViewMode(mode); err != nil {
		return err
	}
	o.publish(ctx, domain.EventViewChanged)
	return nil
}

func (o *Orchestrator) logCtx(ctx context.Context, model string) context.Context {
	ctx = log.WithSession(ctx, o.sessionID)
	if model != "" {
		ctx = context.WithValue(ctx, log.ModelKey, model)
	}
	return ctx
}

// publish notifies renderers. Failures are logged and never undo the
// transition that triggered them.
func (o *Orchestrator) publish(ctx context.Context, kind domain.SessionEventKind) {
	if o.broker == nil {
		return
	}
	payload, err := json.Marshal(domain.SessionEvent{SessionID: o.sessionID, Kind: kind, At: time.Now()})
	if err != nil {
		log.WithCtx(ctx).Error("marshal session event", zap.Error(err))
		return
	}
	if err := o.broker.Publish(context.WithoutCancel(ctx), domain.SessionTopic, o.sessionID, payload); err != nil {
		log.WithCtx(ctx).Warn("publish session event", zap.String("kind", string(kind)), zap.Error(err))
	}
}
