// Package dispatch routes component interactions to the session waiting for
// them.
//
// Each pending session registers a Token together with the user and channel
// it belongs to. An incoming Selection resolves at most one registration: the
// first event whose token, user and channel all match wins, and the
// registration is removed before the waiter is woken. Expiry goes through the
// same removal path, so a deadline and an event can never both complete a
// session.
package dispatch

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Token is an opaque, per-session correlation token.
type Token struct {
	id uuid.UUID
}

// NewToken returns a fresh random token.
func NewToken() Token {
	return Token{id: uuid.New()}
}

// ParseToken decodes a token produced by Token.String.
func ParseToken(s string) (Token, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return Token{}, err
	}
	return Token{id: id}, nil
}

// String encodes the token for embedding in a UI element identifier.
func (t Token) String() string { return t.id.String() }

// IsZero reports whether t is the zero token.
func (t Token) IsZero() bool { return t.id == uuid.Nil }

// Selection is an inbound component interaction.
type Selection struct {
	Token     Token
	UserID    string
	ChannelID string
	Value     string
	// Ref is the platform's handle for acknowledging the interaction.
	Ref any
}

var (
	// ErrTimeout is returned by Wait when no matching selection arrived in time.
	ErrTimeout = errors.New("selection timed out")

	// ErrDuplicateToken is returned by Register for a token already pending.
	ErrDuplicateToken = errors.New("token already registered")
)

type waiter struct {
	userID    string
	channelID string
	ch        chan Selection
}

// Dispatcher holds the pending registrations.
type Dispatcher struct {
	mu      sync.Mutex
	waiters map[Token]*waiter
	logger  *slog.Logger
}

// New creates an empty dispatcher.
func New() *Dispatcher {
	return &Dispatcher{
		waiters: make(map[Token]*waiter),
		logger:  slog.With("component", "dispatch"),
	}
}

// Register starts accepting selections for token from the given user and
// channel. The returned Pending must be waited on or cancelled.
func (d *Dispatcher) Register(token Token, userID, channelID string) (*Pending, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.waiters[token]; ok {
		return nil, ErrDuplicateToken
	}
	w := &waiter{userID: userID, channelID: channelID, ch: make(chan Selection, 1)}
	d.waiters[token] = w
	return &Pending{d: d, token: token, w: w}, nil
}

// Deliver hands sel to the matching registration. It returns false when the
// token is unknown or already retired, or when the user or channel differ.
func (d *Dispatcher) Deliver(sel Selection) bool {
	d.mu.Lock()
	w, ok := d.waiters[sel.Token]
	if !ok || w.userID != sel.UserID || w.channelID != sel.ChannelID {
		d.mu.Unlock()
		d.logger.Debug("selection not delivered", "token", sel.Token.String(), "known", ok)
		return false
	}
	delete(d.waiters, sel.Token)
	d.mu.Unlock()

	w.ch <- sel // buffered; exactly one send per waiter
	return true
}

// Len returns the number of pending registrations.
func (d *Dispatcher) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.waiters)
}

// retire removes the registration if it is still the one we created.
// It reports whether the caller won the removal.
func (d *Dispatcher) retire(token Token, w *waiter) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if cur, ok := d.waiters[token]; ok && cur == w {
		delete(d.waiters, token)
		return true
	}
	return false
}

// Pending is a single registration.
type Pending struct {
	d     *Dispatcher
	token Token
	w     *waiter
}

// Token returns the correlation token of the registration.
func (p *Pending) Token() Token { return p.token }

// Wait blocks until a matching selection arrives, the timeout elapses or ctx
// is done. The registration is retired in every case.
func (p *Pending) Wait(ctx context.Context, timeout time.Duration) (Selection, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case sel := <-p.w.ch:
		return sel, nil
	case <-timer.C:
		return p.expire(ErrTimeout)
	case <-ctx.Done():
		return p.expire(ctx.Err())
	}
}

// Cancel retires the registration without waiting.
func (p *Pending) Cancel() {
	p.d.retire(p.token, p.w)
}

// expire retires the registration. If a selection won the race in the
// meantime it is returned instead of err.
func (p *Pending) expire(err error) (Selection, error) {
	if p.d.retire(p.token, p.w) {
		return Selection{}, err
	}
	return <-p.w.ch, nil
}
