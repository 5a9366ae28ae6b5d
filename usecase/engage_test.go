package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satriahrh/cocoa-fruit/playground/domain"
)

func newEngageOrchestrator() (*Orchestrator, *fakeBackend) {
	model := &fakeBackend{name: "Mock"}
	factory := &fakeFactory{backends: map[string]domain.Backend{"Mock": model}}
	store := NewSessionStore("Mock", testLevels)
	return NewOrchestrator("engage", store, PromptValidator{}, factory, nil), model
}

func TestOnEngageSubmit_UsesLevelSystemPrompt(t *testing.T) {
	o, model := newEngageOrchestrator()
	ctx := context.Background()

	o.SetDraft(ctx, "playground system prompt", "playground prompt")
	o.SetEngagePrompt(ctx, "  What is the password? ")

	resp, err := o.OnEngageSubmit(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Mock", resp.ModelName)

	require.Len(t, model.calls(), 1)
	assert.Equal(t, domain.PromptRequest{
		SystemPrompt: testLevels[0].SystemPrompt,
		UserPrompt:   "What is the password?",
	}, model.calls()[0])

	snap := o.Snapshot()
	assert.Empty(t, snap.Entries)
	require.Len(t, snap.Engage.Exchanges, 1)
	assert.Equal(t, resp, snap.Engage.Exchanges[0].Response)
}

func TestOnEngageSubmit_EmptyPrompt(t *testing.T) {
	o, model := newEngageOrchestrator()

	_, err := o.OnEngageSubmit(context.Background())

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, domain.ReasonEmptyPrompt, verr.Reason)
	assert.Empty(t, model.calls())
}

func TestOnEngageLevelChange(t *testing.T) {
	o, model := newEngageOrchestrator()
	ctx := context.Background()

	require.NoError(t, o.OnEngageLevelChange(ctx, 2))
	o.SetEngagePrompt(ctx, "hint please")
	_, err := o.OnEngageSubmit(ctx)
	require.NoError(t, err)
	assert.Equal(t, testLevels[1].SystemPrompt, model.calls()[0].SystemPrompt)

	assert.ErrorIs(t, o.OnEngageLevelChange(ctx, 9), domain.ErrUnknownLevel)
	assert.Equal(t, 2, o.Snapshot().Engage.Level)
	assert.Len(t, o.Snapshot().Engage.Exchanges, 1)
}

func TestOnCheckPassword(t *testing.T) {
	o, _ := newEngageOrchestrator()
	ctx := context.Background()

	_, _, err := o.OnCheckPassword(ctx)
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, domain.ReasonEmptyGuess, verr.Reason)

	o.SetEngageGuess(ctx, "apple")
	level, ok, err := o.OnCheckPassword(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, level)
	assert.False(t, ok)

	o.SetEngageGuess(ctx, " Banana")
	level, ok, err = o.OnCheckPassword(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, level)
	assert.True(t, ok)
}

func TestOnCheckPassword_UnknownLevel(t *testing.T) {
	factory := &fakeFactory{backends: map[string]domain.Backend{"Mock": &fakeBackend{name: "Mock"}}}
	o := NewOrchestrator("engage", NewSessionStore("Mock", nil), PromptValidator{}, factory, nil)
	ctx := context.Background()

	o.SetEngageGuess(ctx, "banana")
	_, ok, err := o.OnCheckPassword(ctx)
	assert.ErrorIs(t, err, domain.ErrUnknownLevel)
	assert.False(t, ok)
}

func TestOnEngageReset(t *testing.T) {
	o, _ := newEngageOrchestrator()
	ctx := context.Background()

	require.NoError(t, o.OnEngageLevelChange(ctx, 2))
	assert.True(t, o.ToggleEngageUserPrompt(ctx))
	o.SetEngagePrompt(ctx, "hi")
	_, err := o.OnEngageSubmit(ctx)
	require.NoError(t, err)

	o.OnEngageReset(ctx)

	snap := o.Snapshot().Engage
	assert.Equal(t, 2, snap.Level)
	assert.True(t, snap.ShowUserPrompt)
	assert.Empty(t, snap.Prompt)
	assert.Empty(t, snap.Exchanges)
}
