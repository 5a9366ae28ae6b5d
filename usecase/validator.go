package usecase

import (
	"strings"
	"unicode/utf8"

	"github.com/satriahrh/cocoa-fruit/playground/domain"
)

// PromptValidator turns raw input into a domain.PromptRequest. The zero
// value uses domain.DefaultMaxPromptLength.
type PromptValidator struct {
	MaxLength int
}

func NewPromptValidator(maxLength int) PromptValidator {
	return PromptValidator{MaxLength: maxLength}
}

func (v PromptValidator) limit() int {
	if v.MaxLength <= 0 {
		return domain.DefaultMaxPromptLength
	}
	return v.MaxLength
}

// Validate trims both prompts and bounds the user prompt, counted in
// characters (runes). The system prompt has no bound and may be empty.
func (v PromptValidator) Validate(rawSystem, rawUser string) (domain.PromptRequest, error) {
	user := strings.TrimSpace(rawUser)
	if user == "" {
		return domain.PromptRequest{}, &domain.ValidationError{Reason: domain.ReasonEmptyPrompt}
	}
	if limit := v.limit(); utf8.RuneCountInString(user) > limit {
		return domain.PromptRequest{}, &domain.ValidationError{Reason: domain.ReasonTooLong, Limit: limit}
	}

	return domain.PromptRequest{
		SystemPrompt: strings.TrimSpace(rawSystem),
		UserPrompt:   user,
	}, nil
}
