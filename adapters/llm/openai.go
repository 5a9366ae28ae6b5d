package llm

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"go.uber.org/zap"

	"github.com/satriahrh/cocoa-fruit/playground/domain"
	"github.com/satriahrh/cocoa-fruit/playground/utils/log"
)

// OpenAIBackend uses the chat completions API.
type OpenAIBackend struct {
	modelName     string
	providerModel string
	client        openai.Client
	timeout       time.Duration
}

var _ domain.Backend = (*OpenAIBackend)(nil)

func NewOpenAIBackend(modelName, providerModel, apiKey, baseURL string, timeout time.Duration) (*OpenAIBackend, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, &domain.ConfigurationError{Model: modelName, Provider: ProviderOpenAI, Detail: "OPENAI_API_KEY environment variable is not set"}
	}

	opts := []option.RequestOption{option.WithAPIKey(strings.TrimSpace(apiKey))}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	return &OpenAIBackend{
		modelName:     modelName,
		providerModel: providerModel,
		client:        openai.NewClient(opts...),
		timeout:       timeout,
	}, nil
}

func (b *OpenAIBackend) ModelName() string { return b.modelName }

func (b *OpenAIBackend) Generate(ctx context.Context, req domain.PromptRequest) (domain.ModelResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, 2)
	if req.HasSystemPrompt() {
		messages = append(messages, openai.SystemMessage(req.SystemPrompt))
	}
	messages = append(messages, openai.UserMessage(req.UserPrompt))

	completion, err := b.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(b.providerModel),
		Messages: messages,
	})
	if err != nil {
		status := 0
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			status = apiErr.StatusCode
		}
		return domain.ModelResponse{}, classify(ctx, b.modelName, status, err)
	}
	if len(completion.Choices) == 0 {
		return domain.ModelResponse{}, &domain.BackendError{
			Reason: domain.BackendProviderError,
			Model:  b.modelName,
			Detail: "completion has no choices",
		}
	}

	log.WithCtx(ctx).Debug("openai usage",
		zap.Int64("prompt_tokens", completion.Usage.PromptTokens),
		zap.Int64("total_tokens", completion.Usage.TotalTokens))

	msg := completion.Choices[0].Message
	text := msg.Content
	if text == "" {
		text = msg.Refusal
	}
	return domain.NewModelResponse(b.modelName, text, time.Now()), nil
}
