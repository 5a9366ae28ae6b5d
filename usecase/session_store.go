package usecase

import (
	"strings"
	"sync"

	"github.com/satriahrh/cocoa-fruit/playground/domain"
)

// SessionStore owns the state of one session. Fields are only reachable
// through its methods; reads return copies.
type SessionStore struct {
	mu sync.RWMutex

	selectedModel string
	draft         domain.Draft
	exchanges     []domain.Exchange
	flags         []domain.DisplayFlags
	viewMode      domain.ViewMode

	levels []domain.EngageLevel
	engage engageState
}

type engageState struct {
	level          int
	prompt         string
	guess          string
	showUserPrompt bool
	exchanges      []domain.Exchange
}

// NewSessionStore starts a session on defaultModel. levels feeds the Engage
// game; it may be empty when the game is not offered.
func NewSessionStore(defaultModel string, levels []domain.EngageLevel) *SessionStore {
	return &SessionStore{
		selectedModel: defaultModel,
		viewMode:      domain.ViewPlayground,
		levels:        append([]domain.EngageLevel(nil), levels...),
		engage:        engageState{level: 1},
	}
}

func (s *SessionStore) Draft() domain.Draft {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.draft
}

func (s *SessionStore) SetDraft(system, user string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft = domain.Draft{SystemPrompt: system, UserPrompt: user}
}

func (s *SessionStore) SelectedModel() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selectedModel
}

func (s *SessionStore) SetSelectedModel(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selectedModel = id
}

// AppendResponse adds one exchange at the end of the history with both
// display flags off.
func (s *SessionStore) AppendResponse(req domain.PromptRequest, resp domain.ModelResponse) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := checkOrder(s.exchanges, resp); err != nil {
		return err
	}
	s.exchanges = append(s.exchanges, domain.Exchange{Request: req, Response: resp})
	s.flags = append(s.flags, domain.DisplayFlags{})
	return nil
}

func checkOrder(history []domain.Exchange, resp domain.ModelResponse) error {
	if n := len(history); n > 0 && resp.CreatedAt.Before(history[n-1].Response.CreatedAt) {
		return domain.ErrOutOfOrder
	}
	return nil
}

// Len is the number of exchanges in the playground history.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.exchanges)
}

// ToggleDisplay flips one flag of the response at index.
func (s *SessionStore) ToggleDisplay(index int, field domain.DisplayField) (domain.DisplayFlags, error) {
	if !field.Valid() {
		return domain.DisplayFlags{}, domain.ErrUnknownDisplayField
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.flags) {
		return domain.DisplayFlags{}, &domain.IndexError{Index: index, Len: len(s.flags)}
	}
	switch field {
	case domain.ShowPrompt:
		s.flags[index].ShowPrompt = !s.flags[index].ShowPrompt
	case domain.ShowSystemPrompt:
		s.flags[index].ShowSystemPrompt = !s.flags[index].ShowSystemPrompt
	}
	return s.flags[index], nil
}

// Reset clears the history, the display flags and both drafts. The selected
// model and the Engage game are kept.
func (s *SessionStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft = domain.Draft{}
	s.exchanges = nil
	s.flags = nil
}

func (s *SessionStore) ViewMode() domain.ViewMode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.viewMode
}

func (s *SessionStore) SetViewMode(mode domain.ViewMode) error {
	if !mode.Valid() {
		return domain.ErrUnknownViewMode
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.viewMode = mode
	return nil
}

// Snapshot copies the whole state for rendering.
func (s *SessionStore) Snapshot() domain.SessionSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]domain.SessionEntry, len(s.exchanges))
	for i, ex := range s.exchanges {
		entries[i] = domain.SessionEntry{Index: i, Exchange: ex, Flags: s.flags[i]}
	}

	return domain.SessionSnapshot{
		SelectedModel: s.selectedModel,
		Draft:         s.draft,
		ViewMode:      s.viewMode,
		Entries:       entries,
		Engage: domain.EngageSnapshot{
			Level:          s.engage.level,
			LevelCount:     len(s.levels),
			Prompt:         s.engage.prompt,
			PasswordGuess:  s.engage.guess,
			ShowUserPrompt: s.engage.showUserPrompt,
			Exchanges:      append([]domain.Exchange{}, s.engage.exchanges...),
		},
	}
}

// Engage game

// EngageLevel returns the current level number and its configuration.
func (s *SessionStore) EngageLevel() (int, domain.EngageLevel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	lvl, err := s.levelLocked(s.engage.level)
	return s.engage.level, lvl, err
}

func (s *SessionStore) levelLocked(level int) (domain.EngageLevel, error) {
	if level < 1 || level > len(s.levels) {
		return domain.EngageLevel{}, domain.ErrUnknownLevel
	}
	return s.levels[level-1], nil
}

// SetEngageLevel moves to level and restarts the game.
func (s *SessionStore) SetEngageLevel(level int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.levelLocked(level); err != nil {
		return err
	}
	s.engage = engageState{level: level, showUserPrompt: s.engage.showUserPrompt}
	return nil
}

func (s *SessionStore) EngagePrompt() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.engage.prompt
}

func (s *SessionStore) SetEngagePrompt(prompt string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.engage.prompt = prompt
}

func (s *SessionStore) EngageGuess() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.engage.guess
}

func (s *SessionStore) SetEngageGuess(guess string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.engage.guess = guess
}

func (s *SessionStore) AppendEngageResponse(req domain.PromptRequest, resp domain.ModelResponse) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := checkOrder(s.engage.exchanges, resp); err != nil {
		return err
	}
	s.engage.exchanges = append(s.engage.exchanges, domain.Exchange{Request: req, Response: resp})
	return nil
}

func (s *SessionStore) EngageLen() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.engage.exchanges)
}

func (s *SessionStore) ToggleEngageUserPrompt() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.engage.showUserPrompt = !s.engage.showUserPrompt
	return s.engage.showUserPrompt
}

// ResetEngage clears the game on the current level.
func (s *SessionStore) ResetEngage() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.engage = engageState{level: s.engage.level, showUserPrompt: s.engage.showUserPrompt}
}

// CheckPassword compares guess, trimmed and case-insensitively, against the
// current level's password. It returns the level the guess was checked on.
func (s *SessionStore) CheckPassword(guess string) (int, bool, error) {
	guess = strings.TrimSpace(guess)
	if guess == "" {
		return 0, false, &domain.ValidationError{Reason: domain.ReasonEmptyGuess}
	}
	level, lvl, err := s.EngageLevel()
	if err != nil {
		return level, false, err
	}
	return level, strings.EqualFold(guess, lvl.Password), nil
}
