package usecase

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/satriahrh/cocoa-fruit/playground/domain"
)

type fakeBackend struct {
	name  string
	err   error
	delay chan struct{}

	mu       sync.Mutex
	requests []domain.PromptRequest
}

func (b *fakeBackend) ModelName() string { return b.name }

func (b *fakeBackend) Generate(ctx context.Context, req domain.PromptRequest) (domain.ModelResponse, error) {
	if b.delay != nil {
		select {
		case <-b.delay:
		case <-ctx.Done():
			return domain.ModelResponse{}, &domain.BackendError{Reason: domain.BackendTimeout, Model: b.name, Err: ctx.Err()}
		}
	}

	b.mu.Lock()
	b.requests = append(b.requests, req)
	b.mu.Unlock()

	if b.err != nil {
		return domain.ModelResponse{}, b.err
	}
	return domain.NewModelResponse(b.name, "reply from "+b.name+" to "+req.UserPrompt, time.Now()), nil
}

func (b *fakeBackend) calls() []domain.PromptRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]domain.PromptRequest(nil), b.requests...)
}

// fakeFactory hands out fixed backends, and a fresh one named after unknown
// ids.
type fakeFactory struct {
	backends map[string]domain.Backend
	err      error
}

func (f *fakeFactory) Create(id string) (domain.Backend, error) {
	if f.err != nil {
		return nil, f.err
	}
	if b, ok := f.backends[id]; ok {
		return b, nil
	}
	return &fakeBackend{name: id}, nil
}

type recordingBroker struct {
	mu     sync.Mutex
	events []domain.SessionEvent
	err    error
}

func (b *recordingBroker) Publish(_ context.Context, topic, routingKey string, message []byte) error {
	var ev domain.SessionEvent
	if err := json.Unmarshal(message, &ev); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if topic == domain.SessionTopic && routingKey == ev.SessionID {
		b.events = append(b.events, ev)
	}
	return b.err
}

func (b *recordingBroker) Subscribe(context.Context, string, string) (<-chan domain.Message, error) {
	return nil, nil
}

func (b *recordingBroker) Close() error { return nil }

func (b *recordingBroker) kinds() []domain.SessionEventKind {
	b.mu.Lock()
	defer b.mu.Unlock()
	kinds := make([]domain.SessionEventKind, len(b.events))
	for i, ev := range b.events {
		kinds[i] = ev.Kind
	}
	return kinds
}
