package discord

import (
	"context"
	"errors"
	"testing"

	"github.com/bwmarrin/discordgo"

	"github.com/nadzzz/sylliba/internal/config"
	"github.com/nadzzz/sylliba/internal/dispatch"
	"github.com/nadzzz/sylliba/internal/health"
	"github.com/nadzzz/sylliba/internal/session"
)

// recordingHandler runs every job inline and remembers the calls.
type recordingHandler struct {
	messages     []session.MessageRef
	texts        [][2]string
	audio        []session.Attachment
	languages    int
	selections   []dispatch.Selection
	origins      []session.Origin
	autocomplete string
}

func (h *recordingHandler) TranslateMessage(_ context.Context, o session.Origin, msg session.MessageRef) (*session.Session, error) {
	h.origins = append(h.origins, o)
	h.messages = append(h.messages, msg)
	return nil, nil
}

func (h *recordingHandler) TranslateText(_ context.Context, o session.Origin, text, target string) error {
	h.origins = append(h.origins, o)
	h.texts = append(h.texts, [2]string{text, target})
	return nil
}

func (h *recordingHandler) TranscribeAudio(_ context.Context, _ session.Origin, att session.Attachment, _, _ string) error {
	h.audio = append(h.audio, att)
	return nil
}

func (h *recordingHandler) HandleReaction(context.Context, session.Reaction) error { return nil }

func (h *recordingHandler) SupportedLanguages(context.Context, session.Origin) error {
	h.languages++
	return nil
}

func (h *recordingHandler) Autocomplete(partial string) []string {
	h.autocomplete = partial
	return nil
}

func (h *recordingHandler) HandleSelection(_ context.Context, sel dispatch.Selection) (bool, error) {
	h.selections = append(h.selections, sel)
	return true, nil
}

func (h *recordingHandler) Go(ctx context.Context, _ string, fn func(context.Context) error) {
	_ = fn(ctx)
}

func newTestTransport(t *testing.T) (*Transport, *recordingHandler) {
	t.Helper()
	tr, err := New(config.DiscordConfig{Token: "test-token"})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	h := &recordingHandler{}
	tr.Bind(h)
	return tr, h
}

func member(id string) *discordgo.Member {
	return &discordgo.Member{User: &discordgo.User{ID: id}}
}

func TestNew_RequiresToken(t *testing.T) {
	if _, err := New(config.DiscordConfig{}); err == nil {
		t.Error("New() should fail without a token")
	}
}

func TestSelectorCustomID(t *testing.T) {
	tok := dispatch.NewToken()
	id := selectorCustomID(tok)

	got, err := parseSelectorCustomID(id)
	if err != nil {
		t.Fatalf("parseSelectorCustomID() error = %v", err)
	}
	if got != tok {
		t.Errorf("token = %v, want %v", got, tok)
	}
	if len(id) > 100 {
		t.Errorf("custom id is %d chars, Discord allows 100", len(id))
	}

	for _, bad := range []string{"other_button", selectorPrefix + "123456"} {
		if _, err := parseSelectorCustomID(bad); err == nil {
			t.Errorf("parseSelectorCustomID(%q) should fail", bad)
		}
	}
}

func TestCommands(t *testing.T) {
	byName := map[string]*discordgo.ApplicationCommand{}
	for _, c := range commands() {
		byName[c.Name] = c
	}

	for _, name := range []string{cmdTranslateText, cmdAudioToText, cmdSupportedLanguages, cmdTranslateMessage} {
		if _, ok := byName[name]; !ok {
			t.Errorf("command %q not registered", name)
		}
	}
	if byName[cmdTranslateMessage].Type != discordgo.MessageApplicationCommand {
		t.Error("Translate must be a message context-menu command")
	}
	for _, opt := range byName[cmdAudioToText].Options[1:] {
		if !opt.Autocomplete {
			t.Errorf("option %q should autocomplete", opt.Name)
		}
	}
}

func TestRoute_TranslateMessage(t *testing.T) {
	tr, h := newTestTransport(t)

	tr.route(&discordgo.Interaction{
		ID:        "i-1",
		Type:      discordgo.InteractionApplicationCommand,
		ChannelID: "chan-1",
		Member:    member("user-1"),
		Data: discordgo.ApplicationCommandInteractionData{
			Name:     cmdTranslateMessage,
			TargetID: "m-1",
			Resolved: &discordgo.ApplicationCommandInteractionDataResolved{
				Messages: map[string]*discordgo.Message{
					"m-1": {ID: "m-1", ChannelID: "chan-1", Content: "Bonjour le monde"},
				},
			},
		},
	})

	if len(h.messages) != 1 {
		t.Fatalf("TranslateMessage called %d times", len(h.messages))
	}
	want := session.MessageRef{ChannelID: "chan-1", MessageID: "m-1", Text: "Bonjour le monde"}
	if h.messages[0] != want {
		t.Errorf("message = %+v, want %+v", h.messages[0], want)
	}
	o := h.origins[0]
	if o.UserID != "user-1" || o.ChannelID != "chan-1" || o.InteractionID != "i-1" {
		t.Errorf("origin = %+v", o)
	}
}

func TestRoute_SlashCommands(t *testing.T) {
	tr, h := newTestTransport(t)

	tr.route(&discordgo.Interaction{
		Type: discordgo.InteractionApplicationCommand,
		User: &discordgo.User{ID: "dm-user"},
		Data: discordgo.ApplicationCommandInteractionData{
			Name: cmdTranslateText,
			Options: []*discordgo.ApplicationCommandInteractionDataOption{
				{Name: "text", Type: discordgo.ApplicationCommandOptionString, Value: "Bonjour"},
				{Name: "target_language", Type: discordgo.ApplicationCommandOptionString, Value: "English"},
			},
		},
	})
	if len(h.texts) != 1 || h.texts[0] != [2]string{"Bonjour", "English"} {
		t.Errorf("texts = %v", h.texts)
	}
	if h.origins[0].UserID != "dm-user" {
		t.Errorf("UserID = %q, want dm-user", h.origins[0].UserID)
	}

	tr.route(&discordgo.Interaction{
		Type:   discordgo.InteractionApplicationCommand,
		Member: member("user-1"),
		Data: discordgo.ApplicationCommandInteractionData{
			Name: cmdAudioToText,
			Options: []*discordgo.ApplicationCommandInteractionDataOption{
				{Name: "file", Type: discordgo.ApplicationCommandOptionAttachment, Value: "att-1"},
				{Name: "source_language", Type: discordgo.ApplicationCommandOptionString, Value: "English"},
				{Name: "target_language", Type: discordgo.ApplicationCommandOptionString, Value: "French"},
			},
			Resolved: &discordgo.ApplicationCommandInteractionDataResolved{
				Attachments: map[string]*discordgo.MessageAttachment{
					"att-1": {ID: "att-1", URL: "https://cdn.example/clip.ogg", Filename: "clip.ogg", Size: 42},
				},
			},
		},
	})
	want := session.Attachment{URL: "https://cdn.example/clip.ogg", Filename: "clip.ogg", Size: 42}
	if len(h.audio) != 1 || h.audio[0] != want {
		t.Errorf("audio = %+v", h.audio)
	}

	tr.route(&discordgo.Interaction{
		Type:   discordgo.InteractionApplicationCommand,
		Member: member("user-1"),
		Data:   discordgo.ApplicationCommandInteractionData{Name: cmdSupportedLanguages},
	})
	if h.languages != 1 {
		t.Errorf("SupportedLanguages called %d times", h.languages)
	}
}

func TestRoute_Selection(t *testing.T) {
	tr, h := newTestTransport(t)
	tok := dispatch.NewToken()

	tr.route(&discordgo.Interaction{
		Type:      discordgo.InteractionMessageComponent,
		ChannelID: "chan-1",
		Member:    member("user-1"),
		Data: discordgo.MessageComponentInteractionData{
			CustomID:      selectorCustomID(tok),
			ComponentType: discordgo.SelectMenuComponent,
			Values:        []string{"German"},
		},
	})
	tr.route(&discordgo.Interaction{
		Type:   discordgo.InteractionMessageComponent,
		Member: member("user-1"),
		Data:   discordgo.MessageComponentInteractionData{CustomID: "unrelated"},
	})

	if len(h.selections) != 1 {
		t.Fatalf("HandleSelection called %d times, want 1", len(h.selections))
	}
	sel := h.selections[0]
	if sel.Token != tok || sel.Value != "German" || sel.UserID != "user-1" || sel.ChannelID != "chan-1" {
		t.Errorf("selection = %+v", sel)
	}
	if _, ok := sel.Ref.(*discordgo.Interaction); !ok {
		t.Errorf("Ref = %T, want *discordgo.Interaction", sel.Ref)
	}
}

func TestIsFlag(t *testing.T) {
	tests := map[string]bool{
		"🇺🇸": true,
		"🇸🇮": true,
		"👍":  false,
		"🇺":  false,
		"US": false,
	}
	for in, want := range tests {
		if got := isFlag(in); got != want {
			t.Errorf("isFlag(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestCheck_ReadyOnlyWhileConnected(t *testing.T) {
	tr, _ := newTestTransport(t)
	hs := health.New(0)
	hs.SetReady(true)
	hs.AddCheck("discord", tr.Check)

	if err := hs.Ready(context.Background()); !errors.Is(err, ErrNotConnected) {
		t.Errorf("Ready() before connect = %v, want ErrNotConnected", err)
	}

	tr.connected.Store(true)
	if err := hs.Ready(context.Background()); err != nil {
		t.Errorf("Ready() while connected = %v", err)
	}

	tr.connected.Store(false)
	if err := tr.Check(context.Background()); !errors.Is(err, ErrNotConnected) {
		t.Errorf("Check() after disconnect = %v, want ErrNotConnected", err)
	}
}
