package domain

import (
	"strings"
	"time"
)

// ModelResponse is what a backend produced for one PromptRequest.
type ModelResponse struct {
	ModelName    string    `json:"model_name"`
	ResponseText string    `json:"response_text"`
	CreatedAt    time.Time `json:"created_at"`
	TokenCount   int       `json:"token_count"`
}

// NewModelResponse stamps text with the model name, the creation time and the
// token count derived from the text.
func NewModelResponse(modelName, text string, createdAt time.Time) ModelResponse {
	return ModelResponse{
		ModelName:    modelName,
		ResponseText: text,
		CreatedAt:    createdAt,
		TokenCount:   CountTokens(text),
	}
}

// CountTokens returns the number of whitespace separated tokens in text, using
// the unicode definition of white space (strings.Fields). It is not a model
// tokenizer; it only has to be reproducible.
func CountTokens(text string) int {
	return len(strings.Fields(text))
}
