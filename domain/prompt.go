package domain

import "fmt"

// DefaultMaxPromptLength is the upper bound, in characters, of a trimmed user prompt.
const DefaultMaxPromptLength = 10000

// PromptRequest is a validated pair of prompts. Build it with the usecase
// validator; a zero value is never sent to a backend.
type PromptRequest struct {
	SystemPrompt string `json:"system_prompt"`
	UserPrompt   string `json:"user_prompt"`
}

// HasSystemPrompt reports whether the request carries a system prompt.
func (r PromptRequest) HasSystemPrompt() bool {
	return r.SystemPrompt != ""
}

type ValidationReason string

const (
	ReasonEmptyPrompt ValidationReason = "empty_prompt"
	ReasonTooLong     ValidationReason = "too_long"
	ReasonEmptyGuess  ValidationReason = "empty_guess"
	ReasonEmptyModel  ValidationReason = "empty_model"
)

// ValidationError is a user input problem. The session is left untouched.
type ValidationError struct {
	Reason ValidationReason `json:"reason"`
	Limit  int              `json:"limit,omitempty"`
}

func (e *ValidationError) Error() string {
	switch e.Reason {
	case ReasonEmptyPrompt:
		return "validation: user prompt is empty"
	case ReasonTooLong:
		return fmt.Sprintf("validation: user prompt exceeds %d characters", e.Limit)
	case ReasonEmptyGuess:
		return "validation: password guess is empty"
	case ReasonEmptyModel:
		return "validation: model identifier is empty"
	default:
		return "validation: " + string(e.Reason)
	}
}
