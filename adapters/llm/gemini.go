package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/satriahrh/cocoa-fruit/playground/domain"
	"github.com/satriahrh/cocoa-fruit/playground/utils/log"
)

type GeminiBackend struct {
	modelName     string
	providerModel string
	client        *genai.Client
	timeout       time.Duration
}

var _ domain.Backend = (*GeminiBackend)(nil)

// NewGeminiBackend fails fast with a ConfigurationError when apiKey is empty.
func NewGeminiBackend(ctx context.Context, modelName, providerModel, apiKey string, timeout time.Duration) (*GeminiBackend, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, &domain.ConfigurationError{Model: modelName, Provider: ProviderGemini, Detail: "GEMINI_API_KEY environment variable is not set"}
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, &domain.ConfigurationError{Model: modelName, Provider: ProviderGemini, Detail: fmt.Sprintf("creating genai client: %v", err)}
	}

	return &GeminiBackend{
		modelName:     modelName,
		providerModel: providerModel,
		client:        client,
		timeout:       timeout,
	}, nil
}

func (g *GeminiBackend) ModelName() string { return g.modelName }

func (g *GeminiBackend) Generate(ctx context.Context, req domain.PromptRequest) (domain.ModelResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	var config *genai.GenerateContentConfig
	if req.HasSystemPrompt() {
		config = &genai.GenerateContentConfig{
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: req.SystemPrompt}}},
		}
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.providerModel, genai.Text(req.UserPrompt), config)
	if err != nil {
		status := 0
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			status = apiErr.Code
		}
		return domain.ModelResponse{}, classify(ctx, g.modelName, status, err)
	}

	if resp.UsageMetadata != nil {
		log.WithCtx(ctx).Debug("gemini usage",
			zap.Int32("prompt_tokens", resp.UsageMetadata.PromptTokenCount),
			zap.Int32("total_tokens", resp.UsageMetadata.TotalTokenCount))
	}

	return domain.NewModelResponse(g.modelName, geminiText(resp), time.Now()), nil
}

// geminiText pulls the text out of a response. Blocked or empty answers
// become a bracketed explanation instead of an error.
func geminiText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil {
		return "[No response generated. The model may have blocked this request.]"
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return finishReasonMessage(candidate.FinishReason)
	}

	var sb strings.Builder
	for _, part := range candidate.Content.Parts {
		if part != nil && !part.Thought {
			sb.WriteString(part.Text)
		}
	}
	return sb.String()
}

func finishReasonMessage(reason genai.FinishReason) string {
	r := strings.ToUpper(string(reason))
	switch {
	case strings.Contains(r, "SAFETY"):
		return "[Response blocked by safety filters. Try rephrasing your prompt.]"
	case strings.Contains(r, "RECITATION"):
		return "[Response blocked due to potential recitation of training data.]"
	case strings.Contains(r, "MAX_TOKENS"):
		return "[Response was truncated due to token limit.]"
	default:
		return "[No text was returned. The model may have declined to respond.]"
	}
}
