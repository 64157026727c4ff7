// Package session drives a single translation request from the triggering
// chat event to the final reply.
//
// The interactive flow is a small state machine:
//
//	Created -> AwaitingSelection -> Translating -> Closed
//	AwaitingSelection -> Closed   (selection timed out)
//	Created -> Closed             (language not identified, no UI shown)
//
// Every session ends Closed, and any selection UI it created is removed on
// the way out regardless of which edge was taken.
package session

import (
	"context"
	"fmt"
	"time"

	"github.com/nadzzz/sylliba/internal/dispatch"
	"github.com/nadzzz/sylliba/internal/language"
)

// State is a session lifecycle state.
type State int

const (
	StateCreated State = iota
	StateAwaitingSelection
	StateTranslating
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateAwaitingSelection:
		return "awaiting_selection"
	case StateTranslating:
		return "translating"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Outcome records how a closed session ended.
type Outcome string

const (
	OutcomeTranslated  Outcome = "translated"
	OutcomeTimeout     Outcome = "timeout"
	OutcomeUnsupported Outcome = "unsupported"
	OutcomeFailed      Outcome = "failed"
	OutcomeCancelled   Outcome = "cancelled"
)

// Origin identifies the interaction that triggered a flow.
type Origin struct {
	InteractionID string
	UserID        string
	ChannelID     string
	// Ref is the platform's own handle for responding to the interaction.
	Ref any
}

// MessageRef points at an existing chat message.
type MessageRef struct {
	ChannelID string
	MessageID string
	Text      string
}

// Attachment is a remotely hosted file referenced by a command.
type Attachment struct {
	URL      string
	Filename string
	Size     int
}

// Reaction is an emoji added to a message.
type Reaction struct {
	Emoji   string
	UserID  string
	Message MessageRef
}

// UIRef is the handle of a selection UI element.
type UIRef struct {
	ID     string
	Handle any
}

// Selector describes the language-selection UI.
type Selector struct {
	Prompt  string
	Token   dispatch.Token
	Options []language.Language
}

// Platform is the subset of the chat platform the controller drives.
type Platform interface {
	// Respond answers an interaction immediately.
	Respond(ctx context.Context, origin Origin, content string, ephemeral bool) error
	// Defer acknowledges an interaction whose answer comes later via EditResponse.
	Defer(ctx context.Context, origin Origin) error
	EditResponse(ctx context.Context, origin Origin, content string) error

	// Reply posts content as a reply to an existing message.
	Reply(ctx context.Context, msg MessageRef, content string) error

	ShowSelector(ctx context.Context, origin Origin, sel Selector) (UIRef, error)
	UpdateSelector(ctx context.Context, ui UIRef, content string) error
	RemoveSelector(ctx context.Context, ui UIRef) error

	// Acknowledge silences the client-side loading state of a selection.
	Acknowledge(ctx context.Context, sel dispatch.Selection) error
	// Dismiss answers a selection that no session accepted.
	Dismiss(ctx context.Context, sel dispatch.Selection, content string) error
}

// Session is one interactive translation request.
type Session struct {
	ID        dispatch.Token
	Origin    Origin
	Message   MessageRef
	Detected  string
	Target    string
	CreatedAt time.Time
	Expiry    time.Time
	UI        *UIRef

	state   State
	outcome Outcome
	history []State
}

func newSession(origin Origin, msg MessageRef, now time.Time, timeout time.Duration) *Session {
	return &Session{
		ID:        dispatch.NewToken(),
		Origin:    origin,
		Message:   msg,
		CreatedAt: now,
		Expiry:    now.Add(timeout),
		state:     StateCreated,
		history:   []State{StateCreated},
	}
}

// State returns the current state.
func (s *Session) State() State { return s.state }

// Outcome returns how the session ended, or "" while it is still open.
func (s *Session) Outcome() Outcome { return s.outcome }

// History returns every state the session passed through, in order.
func (s *Session) History() []State {
	out := make([]State, len(s.history))
	copy(out, s.history)
	return out
}

func (s *Session) transition(to State) {
	s.state = to
	s.history = append(s.history, to)
}

func (s *Session) close(outcome Outcome) {
	if s.state == StateClosed {
		return
	}
	s.outcome = outcome
	s.transition(StateClosed)
}
