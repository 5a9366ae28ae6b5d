package usecase

import (
	"context"

	"go.uber.org/zap"

	"github.com/satriahrh/cocoa-fruit/playground/domain"
	"github.com/satriahrh/cocoa-fruit/playground/utils/log"
)

// Engage is a password game: the level's system prompt hides a password the
// player tries to make the model reveal. It uses the selected model and keeps
// its own history, separate from the playground.

func (o *Orchestrator) engageCtx(ctx context.Context, model string) context.Context {
	return context.WithValue(o.logCtx(ctx, model), log.ViewKey, string(domain.ViewEngage))
}

// OnEngageSubmit sends the engage draft under the current level's system
// prompt. Failure semantics match OnSubmit.
func (o *Orchestrator) OnEngageSubmit(ctx context.Context) (domain.ModelResponse, error) {
	if !o.submitting.CompareAndSwap(false, true) {
		return domain.ModelResponse{}, domain.ErrSubmitInProgress
	}
	defer o.submitting.Store(false)

	o.mu.Lock()
	defer o.mu.Unlock()

	model := o.store.SelectedModel()
	ctx = o.engageCtx(ctx, model)

	level, cfg, err := o.store.EngageLevel()
	if err != nil {
		return domain.ModelResponse{}, err
	}
	req, err := o.validator.Validate(cfg.SystemPrompt, o.store.EngagePrompt())
	if err != nil {
		log.WithCtx(ctx).Info("engage submit rejected", zap.Error(err))
		return domain.ModelResponse{}, err
	}

	resp, err := o.generate(ctx, model, req)
	if err != nil {
		return domain.ModelResponse{}, err
	}
	if err := o.store.AppendEngageResponse(req, resp); err != nil {
		log.WithCtx(ctx).Error("append engage response", zap.Error(err))
		return domain.ModelResponse{}, err
	}

	log.WithCtx(ctx).Info("engage response appended", zap.Int("level", level))
	o.publish(ctx, domain.EventEngageResponse)
	return resp, nil
}

func (o *Orchestrator) OnEngageLevelChange(ctx context.Context, level int) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if err := o.store.SetEngageLevel(level); err != nil {
		return err
	}
	log.WithCtx(o.engageCtx(ctx, "")).Info("engage level changed", zap.Int("level", level))
	o.publish(ctx, domain.EventEngageChanged)
	return nil
}

func (o *Orchestrator) SetEngagePrompt(ctx context.Context, prompt string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.store.SetEngagePrompt(prompt)
	o.publish(ctx, domain.EventEngageChanged)
}

func (o *Orchestrator) SetEngageGuess(ctx context.Context, guess string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.store.SetEngageGuess(guess)
	o.publish(ctx, domain.EventEngageChanged)
}

func (o *Orchestrator) OnEngageReset(ctx context.Context) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.store.ResetEngage()
	o.publish(ctx, domain.EventEngageChanged)
}

func (o *Orchestrator) ToggleEngageUserPrompt(ctx context.Context) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	shown := o.store.ToggleEngageUserPrompt()
	o.publish(ctx, domain.EventEngageChanged)
	return shown
}

// OnCheckPassword checks the stored guess against the current level and
// reports which level that was.
func (o *Orchestrator) OnCheckPassword(ctx context.Context) (int, bool, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	level, ok, err := o.store.CheckPassword(o.store.EngageGuess())
	if err != nil {
		return level, false, err
	}
	log.WithCtx(o.engageCtx(ctx, "")).Info("password checked", zap.Int("level", level), zap.Bool("correct", ok))
	return level, ok, nil
}
