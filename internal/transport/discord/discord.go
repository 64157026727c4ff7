// Package discord implements the Discord transport for sylliba.
//
// The transport owns the gateway connection. It registers the bot's
// application commands, turns Discord events into session controller calls,
// and implements session.Platform so the controller can answer through the
// same connection. Every event is handled on its own goroutine.
package discord

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/bwmarrin/discordgo"

	"github.com/nadzzz/sylliba/internal/config"
	"github.com/nadzzz/sylliba/internal/dispatch"
	"github.com/nadzzz/sylliba/internal/session"
)

// Handler is the controller surface the transport routes events to.
type Handler interface {
	TranslateMessage(ctx context.Context, origin session.Origin, msg session.MessageRef) (*session.Session, error)
	TranslateText(ctx context.Context, origin session.Origin, text, target string) error
	TranscribeAudio(ctx context.Context, origin session.Origin, att session.Attachment, source, target string) error
	HandleReaction(ctx context.Context, r session.Reaction) error
	SupportedLanguages(ctx context.Context, origin session.Origin) error
	Autocomplete(partial string) []string
	HandleSelection(ctx context.Context, sel dispatch.Selection) (bool, error)
	Go(ctx context.Context, name string, fn func(ctx context.Context) error)
}

// Transport implements transport.Transport and session.Platform on Discord.
type Transport struct {
	guildID   string
	session   *discordgo.Session
	logger    *slog.Logger
	connected atomic.Bool

	mu      sync.RWMutex
	handler Handler
	ctx     context.Context
}

// New creates the Discord session. No connection is made until Listen.
func New(cfg config.DiscordConfig) (*Transport, error) {
	if cfg.Token == "" {
		return nil, errors.New("discord: token is required")
	}
	s, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("discord: creating session: %w", err)
	}
	s.Identify.Intents = discordgo.IntentsAllWithoutPrivileged
	if cfg.MessageContent {
		s.Identify.Intents |= discordgo.IntentMessageContent
	}

	return &Transport{
		guildID: cfg.GuildID,
		session: s,
		logger:  slog.With("component", "discord"),
		ctx:     context.Background(),
	}, nil
}

// Name returns the transport identifier.
func (t *Transport) Name() string { return "discord" }

// Bind sets the handler events are routed to. It must be called before Listen.
func (t *Transport) Bind(h Handler) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.handler = h
}

// Listen connects to the gateway, registers the commands and blocks until
// the context is cancelled.
func (t *Transport) Listen(ctx context.Context) error {
	t.mu.Lock()
	if t.handler == nil {
		t.mu.Unlock()
		return errors.New("discord: no handler bound")
	}
	t.ctx = ctx
	t.mu.Unlock()

	t.session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		t.logger.Info("logged in", "user", r.User.Username, "guilds", len(r.Guilds))
	})
	t.session.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		t.route(i.Interaction)
	})
	t.session.AddHandler(func(s *discordgo.Session, r *discordgo.MessageReactionAdd) {
		if s.State.User != nil && r.UserID == s.State.User.ID {
			return
		}
		t.reaction(r.MessageReaction)
	})

	if err := t.session.Open(); err != nil {
		return fmt.Errorf("discord: opening gateway: %w", err)
	}

	registered, err := t.session.ApplicationCommandBulkOverwrite(t.session.State.User.ID, t.guildID, commands())
	if err != nil {
		_ = t.session.Close()
		return fmt.Errorf("discord: registering commands: %w", err)
	}
	t.connected.Store(true)
	t.logger.Info("discord transport listening", "commands", len(registered), "guild", t.guildID)

	<-ctx.Done()
	t.connected.Store(false)
	t.logger.Info("discord transport shutting down")
	return nil
}

// Close disconnects from the gateway.
func (t *Transport) Close() error {
	t.connected.Store(false)
	return t.session.Close()
}

// ErrNotConnected is returned by Check until the gateway is open and the
// commands are registered.
var ErrNotConnected = errors.New("discord: not connected")

// Check is a readiness check that passes while the bot is connected.
func (t *Transport) Check(context.Context) error {
	if !t.connected.Load() {
		return ErrNotConnected
	}
	return nil
}

func (t *Transport) bound() (Handler, context.Context) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.handler, t.ctx
}

func origin(i *discordgo.Interaction) session.Origin {
	return session.Origin{
		InteractionID: i.ID,
		UserID:        userID(i),
		ChannelID:     i.ChannelID,
		Ref:           i,
	}
}

// route dispatches one interaction to the handler.
func (t *Transport) route(i *discordgo.Interaction) {
	h, ctx := t.bound()
	if h == nil {
		return
	}

	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		t.command(ctx, h, i)

	case discordgo.InteractionApplicationCommandAutocomplete:
		t.autocomplete(h, i)

	case discordgo.InteractionMessageComponent:
		data := i.MessageComponentData()
		token, err := parseSelectorCustomID(data.CustomID)
		if err != nil {
			t.logger.Debug("ignoring component", "custom_id", data.CustomID)
			return
		}
		value := ""
		if len(data.Values) > 0 {
			value = data.Values[0]
		}
		sel := dispatch.Selection{
			Token:     token,
			UserID:    userID(i),
			ChannelID: i.ChannelID,
			Value:     value,
			Ref:       i,
		}
		h.Go(ctx, "selection", func(ctx context.Context) error {
			_, err := h.HandleSelection(ctx, sel)
			return err
		})
	}
}

func (t *Transport) command(ctx context.Context, h Handler, i *discordgo.Interaction) {
	data := i.ApplicationCommandData()
	o := origin(i)
	opts := options(data)

	switch data.Name {
	case cmdTranslateMessage:
		var msg *discordgo.Message
		if data.Resolved != nil {
			msg = data.Resolved.Messages[data.TargetID]
		}
		if msg == nil {
			t.logger.Warn("translate target not resolved", "target", data.TargetID)
			return
		}
		ref := session.MessageRef{ChannelID: msg.ChannelID, MessageID: msg.ID, Text: msg.Content}
		h.Go(ctx, "translate_message", func(ctx context.Context) error {
			_, err := h.TranslateMessage(ctx, o, ref)
			return err
		})

	case cmdTranslateText:
		text := stringOption(opts, "text")
		target := stringOption(opts, "target_language")
		h.Go(ctx, cmdTranslateText, func(ctx context.Context) error {
			return h.TranslateText(ctx, o, text, target)
		})

	case cmdAudioToText:
		var att session.Attachment
		if id := stringOption(opts, "file"); id != "" && data.Resolved != nil {
			if a, ok := data.Resolved.Attachments[id]; ok {
				att = session.Attachment{URL: a.URL, Filename: a.Filename, Size: a.Size}
			}
		}
		source := stringOption(opts, "source_language")
		target := stringOption(opts, "target_language")
		h.Go(ctx, cmdAudioToText, func(ctx context.Context) error {
			if att.URL == "" {
				return fmt.Errorf("attachment missing from %s", cmdAudioToText)
			}
			return h.TranscribeAudio(ctx, o, att, source, target)
		})

	case cmdSupportedLanguages:
		h.Go(ctx, cmdSupportedLanguages, func(ctx context.Context) error {
			return h.SupportedLanguages(ctx, o)
		})

	default:
		t.logger.Warn("unknown command", "name", data.Name)
	}
}

func (t *Transport) autocomplete(h Handler, i *discordgo.Interaction) {
	opt, ok := focused(i.ApplicationCommandData())
	if !ok {
		return
	}
	partial, _ := opt.Value.(string)

	names := h.Autocomplete(partial)
	choices := make([]*discordgo.ApplicationCommandOptionChoice, len(names))
	for n, name := range names {
		choices[n] = &discordgo.ApplicationCommandOptionChoice{Name: name, Value: name}
	}

	err := t.session.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionApplicationCommandAutocompleteResult,
		Data: &discordgo.InteractionResponseData{Choices: choices},
	})
	if err != nil {
		t.logger.Warn("autocomplete response failed", "error", err)
	}
}

func (t *Transport) reaction(r *discordgo.MessageReaction) {
	h, ctx := t.bound()
	if h == nil {
		return
	}
	emoji := r.Emoji.Name
	// Only unicode flags can map to a language; skip the fetch for anything else.
	if r.Emoji.ID != "" || !isFlag(emoji) {
		return
	}

	h.Go(ctx, "reaction", func(ctx context.Context) error {
		msg, err := t.session.ChannelMessage(r.ChannelID, r.MessageID, discordgo.WithContext(ctx))
		if err != nil {
			return fmt.Errorf("fetching reacted message: %w", err)
		}
		return h.HandleReaction(ctx, session.Reaction{
			Emoji:  emoji,
			UserID: r.UserID,
			Message: session.MessageRef{
				ChannelID: r.ChannelID,
				MessageID: r.MessageID,
				Text:      msg.Content,
			},
		})
	})
}

// isFlag reports whether s is a pair of regional indicator symbols.
func isFlag(s string) bool {
	runes := []rune(s)
	if len(runes) != 2 {
		return false
	}
	for _, r := range runes {
		if r < '\U0001F1E6' || r > '\U0001F1FF' {
			return false
		}
	}
	return true
}
