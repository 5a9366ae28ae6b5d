package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/satriahrh/cocoa-fruit/playground/adapters/hasher"
	"github.com/satriahrh/cocoa-fruit/playground/domain"
)

// MockBackend answers with a templated echo of the request. The text depends
// only on the model name and the prompts, so equal requests get equal text.
type MockBackend struct {
	modelName string
	hasher    domain.Hasher
	now       func() time.Time
}

var _ domain.Backend = (*MockBackend)(nil)

func NewMockBackend(modelName string) *MockBackend {
	return &MockBackend{
		modelName: modelName,
		hasher:    hasher.New(),
		now:       time.Now,
	}
}

func (m *MockBackend) ModelName() string { return m.modelName }

// Generate never fails for a validated request.
func (m *MockBackend) Generate(_ context.Context, req domain.PromptRequest) (domain.ModelResponse, error) {
	return domain.NewModelResponse(m.modelName, m.render(req), m.now()), nil
}

func (m *MockBackend) render(req domain.PromptRequest) string {
	system := req.SystemPrompt
	if system == "" {
		system = "(none)"
	}
	ref := hasher.Fingerprint(m.hasher, 12, m.modelName, req.SystemPrompt, req.UserPrompt)
	return fmt.Sprintf("[%s] mock response %s\nSystem prompt: %s\nPrompt: %s", m.modelName, ref, system, req.UserPrompt)
}
