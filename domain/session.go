package domain

import (
	"errors"
	"fmt"
	"time"
)

// Exchange pairs a submitted request with the response it produced.
type Exchange struct {
	Request  PromptRequest `json:"request"`
	Response ModelResponse `json:"response"`
}

// DisplayField names one presentational flag of a response.
type DisplayField string

const (
	ShowPrompt       DisplayField = "show_prompt"
	ShowSystemPrompt DisplayField = "show_system_prompt"
)

func (f DisplayField) Valid() bool {
	return f == ShowPrompt || f == ShowSystemPrompt
}

type DisplayFlags struct {
	ShowPrompt       bool `json:"show_prompt"`
	ShowSystemPrompt bool `json:"show_system_prompt"`
}

// Draft is the in-progress, not yet submitted input.
type Draft struct {
	SystemPrompt string `json:"system_prompt"`
	UserPrompt   string `json:"user_prompt"`
}

type ViewMode string

const (
	ViewPlayground ViewMode = "playground"
	ViewEngage     ViewMode = "engage"
)

func (m ViewMode) Valid() bool {
	return m == ViewPlayground || m == ViewEngage
}

// EngageLevel is one round of the password game: a system prompt hiding a
// password the player tries to extract.
type EngageLevel struct {
	SystemPrompt string `json:"-" toml:"system_prompt"`
	Password     string `json:"-" toml:"password"`
}

// SessionEntry is one rendered row of the playground history.
type SessionEntry struct {
	Index int `json:"index"`
	Exchange
	Flags DisplayFlags `json:"flags"`
}

type EngageSnapshot struct {
	Level          int        `json:"level"`
	LevelCount     int        `json:"level_count"`
	Prompt         string     `json:"prompt"`
	PasswordGuess  string     `json:"password_guess"`
	ShowUserPrompt bool       `json:"show_user_prompt"`
	Exchanges      []Exchange `json:"exchanges"`
}

// SessionSnapshot is a copy of the session state for rendering. Mutating it
// has no effect on the session.
type SessionSnapshot struct {
	SessionID     string         `json:"session_id"`
	SelectedModel string         `json:"selected_model"`
	Draft         Draft          `json:"draft"`
	ViewMode      ViewMode       `json:"view_mode"`
	Entries       []SessionEntry `json:"entries"`
	Engage        EngageSnapshot `json:"engage"`
}

// IndexError is returned when a response index is outside the history.
type IndexError struct {
	Index int
	Len   int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("response index %d out of range [0, %d)", e.Index, e.Len)
}

var (
	ErrUnknownLevel        = errors.New("unknown engage level")
	ErrUnknownDisplayField = errors.New("unknown display field")
	ErrUnknownViewMode     = errors.New("unknown view mode")
	ErrOutOfOrder          = errors.New("response is older than the last appended response")
)

type SessionEventKind string

const (
	EventDraftChanged   SessionEventKind = "draft_changed"
	EventModelChanged   SessionEventKind = "model_changed"
	EventResponseAdded  SessionEventKind = "response_added"
	EventReset          SessionEventKind = "reset"
	EventDisplayToggled SessionEventKind = "display_toggled"
	EventViewChanged    SessionEventKind = "view_changed"
	EventEngageChanged  SessionEventKind = "engage_changed"
	EventEngageResponse SessionEventKind = "engage_response_added"
	EventSessionEnded   SessionEventKind = "session_ended"
)

// SessionEvent tells renderers that a session changed.
type SessionEvent struct {
	SessionID string           `json:"session_id"`
	Kind      SessionEventKind `json:"kind"`
	At        time.Time        `json:"at"`
}
