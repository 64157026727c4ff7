package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"github.com/nadzzz/sylliba/internal/dispatch"
	"github.com/nadzzz/sylliba/internal/gateway"
	"github.com/nadzzz/sylliba/internal/language"
)

// Prompt shown above the language selection menu.
const selectorPrompt = "Which language would you like to translate to?"

const (
	cleanupTimeout = 10 * time.Second
	defaultTimeout = 120 * time.Second
)

// Attachments materializes an attachment for the duration of fn.
type Attachments interface {
	Use(ctx context.Context, url, filename string, fn func(encoded string) error) error
}

// Controller runs translation flows. It is safe for concurrent use; each
// triggering event is handled independently.
type Controller struct {
	identifier  *language.Identifier
	registry    *language.Registry
	gateway     gateway.Gateway
	attachments Attachments
	platform    Platform
	dispatcher  *dispatch.Dispatcher
	timeout     time.Duration
	now         func() time.Time
	logger      *slog.Logger

	mu       sync.Mutex
	sessions map[dispatch.Token]*Session
	wg       sync.WaitGroup
}

// Option configures a Controller.
type Option func(*Controller)

// WithTimeout sets how long a selection UI waits for the user.
func WithTimeout(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithDispatcher shares a dispatcher between controllers.
func WithDispatcher(d *dispatch.Dispatcher) Option {
	return func(c *Controller) { c.dispatcher = d }
}

// New creates a controller.
func New(identifier *language.Identifier, gw gateway.Gateway, attachments Attachments, platform Platform, opts ...Option) *Controller {
	c := &Controller{
		identifier:  identifier,
		registry:    identifier.Registry(),
		gateway:     gw,
		attachments: attachments,
		platform:    platform,
		dispatcher:  dispatch.New(),
		timeout:     defaultTimeout,
		now:         time.Now,
		logger:      slog.With("component", "session"),
		sessions:    make(map[dispatch.Token]*Session),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Active returns the number of sessions that have not closed yet.
func (c *Controller) Active() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sessions)
}

// Go runs fn on its own goroutine. A panic inside fn is logged and swallowed
// so one broken event cannot take down the event loop.
func (c *Controller) Go(ctx context.Context, name string, fn func(ctx context.Context) error) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				c.logger.Error("handler panicked", "handler", name, "panic", r, "stack", string(debug.Stack()))
			}
		}()
		if err := fn(ctx); err != nil {
			c.logger.Error("handler failed", "handler", name, "error", err)
		}
	}()
}

// Wait blocks until every goroutine started with Go has returned.
func (c *Controller) Wait() {
	c.wg.Wait()
}

// TranslateMessage runs the interactive flow for an existing message: the
// user picks a target language from a selection UI and the translation is
// posted as a reply to msg.
//
// The returned error reports platform failures only. Detection and gateway
// failures are delivered to the user and reflected in the session outcome.
func (c *Controller) TranslateMessage(ctx context.Context, origin Origin, msg MessageRef) (*Session, error) {
	s := newSession(origin, msg, c.now(), c.timeout)
	logger := c.logger.With("session", s.ID.String(), "user", origin.UserID, "channel", origin.ChannelID)
	logger.Info("session started", "text_length", len(msg.Text))

	c.track(s)
	defer c.untrack(s)

	// Step 1: Identify the source language. On failure the interaction is
	// answered with the error and no selector is shown.
	src, err := c.identifier.BestMatch(msg.Text)
	if err != nil {
		logger.Warn("language not identified", "error", err)
		s.close(OutcomeUnsupported)
		if rerr := c.platform.Respond(ctx, origin, err.Error(), true); rerr != nil {
			return s, fmt.Errorf("responding with detection error: %w", rerr)
		}
		return s, nil
	}
	s.Detected = src.Name
	logger.Info("language detected", "language", src.Name)

	// Step 2: Register before the UI exists so an immediate click is not lost.
	pending, err := c.dispatcher.Register(s.ID, origin.UserID, origin.ChannelID)
	if err != nil {
		s.close(OutcomeFailed)
		return s, fmt.Errorf("registering session: %w", err)
	}
	defer pending.Cancel()

	ui, err := c.platform.ShowSelector(ctx, origin, Selector{
		Prompt:  selectorPrompt,
		Token:   s.ID,
		Options: c.registry.Options(),
	})
	if err != nil {
		s.close(OutcomeFailed)
		return s, fmt.Errorf("showing selector: %w", err)
	}
	s.UI = &ui
	defer c.removeSelector(ctx, logger, ui)
	s.transition(StateAwaitingSelection)

	// Step 3: Wait for exactly one correlated selection.
	sel, err := pending.Wait(ctx, c.timeout)
	switch {
	case errors.Is(err, dispatch.ErrTimeout):
		logger.Info("selection timed out", "timeout", c.timeout)
		s.close(OutcomeTimeout)
		return s, nil
	case err != nil:
		logger.Info("session cancelled", "error", err)
		s.close(OutcomeCancelled)
		return s, nil
	}

	// Step 4: Translate.
	s.transition(StateTranslating)
	if err := c.platform.Acknowledge(ctx, sel); err != nil {
		logger.Warn("acknowledging selection failed", "error", err)
	}

	target, ok := c.registry.Lookup(sel.Value)
	if !ok {
		s.close(OutcomeFailed)
		return s, c.platform.Reply(ctx, msg, fmt.Sprintf("%s is not a supported language.", sel.Value))
	}
	s.Target = target.Name

	progress := fmt.Sprintf("Translating from %s to %s...", s.Detected, s.Target)
	if err := c.platform.UpdateSelector(ctx, ui, progress); err != nil {
		logger.Warn("updating selector failed", "error", err)
	}

	start := c.now()
	text, err := c.gateway.Translate(ctx, msg.Text, s.Detected, s.Target)
	if err != nil {
		logger.Error("translation failed", "error", err)
		s.close(OutcomeFailed)
		if rerr := c.platform.Reply(ctx, msg, failureText(err)); rerr != nil {
			return s, fmt.Errorf("replying with translation error: %w", rerr)
		}
		return s, nil
	}

	if err := c.platform.Reply(ctx, msg, text); err != nil {
		s.close(OutcomeFailed)
		return s, fmt.Errorf("sending translation: %w", err)
	}
	s.close(OutcomeTranslated)
	logger.Info("session complete", "target", s.Target, "duration", time.Since(start))
	return s, nil
}

// TranslateText translates text into target and answers the originating
// interaction.
func (c *Controller) TranslateText(ctx context.Context, origin Origin, text, target string) error {
	logger := c.logger.With("interaction", origin.InteractionID, "user", origin.UserID)

	if err := c.platform.Defer(ctx, origin); err != nil {
		return fmt.Errorf("deferring response: %w", err)
	}

	tgt, ok := c.registry.Lookup(target)
	if !ok {
		return c.platform.EditResponse(ctx, origin, unsupportedTarget(target))
	}

	src, err := c.identifier.BestMatch(text)
	if err != nil {
		logger.Warn("language not identified", "error", err)
		return c.platform.EditResponse(ctx, origin, err.Error())
	}
	logger.Info("language detected", "language", src.Name, "target", tgt.Name)

	out, err := c.gateway.Translate(ctx, text, src.Name, tgt.Name)
	if err != nil {
		logger.Error("translation failed", "error", err)
		return c.platform.EditResponse(ctx, origin, failureText(err))
	}
	return c.platform.EditResponse(ctx, origin, out)
}

// TranscribeAudio downloads an audio attachment, sends it for transcription
// and answers with the resulting text. The downloaded file never outlives
// the call.
func (c *Controller) TranscribeAudio(ctx context.Context, origin Origin, att Attachment, source, target string) error {
	logger := c.logger.With("interaction", origin.InteractionID, "filename", att.Filename)
	logger.Info("transcription requested", "bytes", att.Size)

	if err := c.platform.Defer(ctx, origin); err != nil {
		return fmt.Errorf("deferring response: %w", err)
	}

	src, ok := c.registry.Lookup(source)
	if !ok {
		return c.platform.EditResponse(ctx, origin, unsupportedTarget(source))
	}
	tgt, ok := c.registry.Lookup(target)
	if !ok {
		return c.platform.EditResponse(ctx, origin, unsupportedTarget(target))
	}

	var text string
	err := c.attachments.Use(ctx, att.URL, att.Filename, func(encoded string) error {
		var err error
		text, err = c.gateway.TranscribeEncoded(ctx, encoded, src.Name, tgt.Name)
		return err
	})
	if err != nil {
		logger.Error("transcription failed", "error", err)
		return c.platform.EditResponse(ctx, origin, failureText(err))
	}
	return c.platform.EditResponse(ctx, origin, text)
}

// HandleReaction translates a message into the language whose flag was added
// as a reaction. Reactions that are not a known flag are ignored.
func (c *Controller) HandleReaction(ctx context.Context, r Reaction) error {
	tgt, ok := c.registry.ByFlag(r.Emoji)
	if !ok {
		return nil
	}
	if strings.TrimSpace(r.Message.Text) == "" {
		return nil
	}
	logger := c.logger.With("message", r.Message.MessageID, "user", r.UserID)
	logger.Info("flag reaction", "target", tgt.Name)

	src, err := c.identifier.BestMatch(r.Message.Text)
	if err != nil {
		logger.Warn("language not identified", "error", err)
		return c.platform.Reply(ctx, r.Message, err.Error())
	}

	out, err := c.gateway.Translate(ctx, r.Message.Text, src.Name, tgt.Name)
	if err != nil {
		logger.Error("translation failed", "error", err)
		return c.platform.Reply(ctx, r.Message, failureText(err))
	}
	return c.platform.Reply(ctx, r.Message, out)
}

// SupportedLanguages answers with the bullet list of supported languages.
func (c *Controller) SupportedLanguages(ctx context.Context, origin Origin) error {
	var b strings.Builder
	for i, name := range c.registry.Names() {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("- ")
		b.WriteString(name)
	}
	return c.platform.Respond(ctx, origin, b.String(), true)
}

// Autocomplete suggests supported language names starting with partial.
func (c *Controller) Autocomplete(partial string) []string {
	names := c.registry.Autocomplete(partial)
	if len(names) > language.MaxOptions {
		names = names[:language.MaxOptions]
	}
	return names
}

// HandleSelection routes a selection to the session waiting for it. A
// selection no session accepts (expired, duplicate or from someone else) is
// dismissed and false is returned.
func (c *Controller) HandleSelection(ctx context.Context, sel dispatch.Selection) (bool, error) {
	if c.dispatcher.Deliver(sel) {
		return true, nil
	}
	c.logger.Info("selection rejected", "token", sel.Token.String(), "user", sel.UserID)
	return false, c.platform.Dismiss(ctx, sel, "This selection is no longer active.")
}

func (c *Controller) track(s *Session) {
	c.mu.Lock()
	c.sessions[s.ID] = s
	c.mu.Unlock()
}

func (c *Controller) untrack(s *Session) {
	c.mu.Lock()
	delete(c.sessions, s.ID)
	c.mu.Unlock()
}

// removeSelector runs on every exit once a UI exists, including after ctx is
// cancelled.
func (c *Controller) removeSelector(ctx context.Context, logger *slog.Logger, ui UIRef) {
	cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cleanupTimeout)
	defer cancel()
	if err := c.platform.RemoveSelector(cctx, ui); err != nil {
		logger.Warn("removing selector failed", "error", err)
	}
}

func failureText(err error) string {
	return fmt.Sprintf("Translation failed: %v", err)
}

func unsupportedTarget(name string) string {
	return fmt.Sprintf("%s is not a supported language. Use the `/supported_languages` command to see a list.", name)
}
