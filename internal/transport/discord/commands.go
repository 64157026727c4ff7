package discord

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/nadzzz/sylliba/internal/dispatch"
)

// Command names as registered with Discord.
const (
	cmdTranslateText      = "translate_text"
	cmdAudioToText        = "audio_to_text"
	cmdSupportedLanguages = "supported_languages"
	cmdTranslateMessage   = "Translate"
)

// selectorPrefix starts the custom id of every language selection menu.
const selectorPrefix = "target_language_selector_"

func selectorCustomID(token dispatch.Token) string {
	return selectorPrefix + token.String()
}

func parseSelectorCustomID(id string) (dispatch.Token, error) {
	raw, ok := strings.CutPrefix(id, selectorPrefix)
	if !ok {
		return dispatch.Token{}, fmt.Errorf("not a language selector: %q", id)
	}
	return dispatch.ParseToken(raw)
}

func languageOption(name, description string) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:         discordgo.ApplicationCommandOptionString,
		Name:         name,
		Description:  description,
		Required:     true,
		Autocomplete: true,
	}
}

// commands returns the application commands the bot registers.
func commands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        cmdTranslateText,
			Description: "Translate text into a language of your choice.",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "text",
					Description: "Text to translate",
					Required:    true,
				},
				languageOption("target_language", "Target Language"),
			},
		},
		{
			Name:        cmdAudioToText,
			Description: "Transcribes an audio file. Requires an audio file upload.",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionAttachment,
					Name:        "file",
					Description: "Audio File",
					Required:    true,
				},
				languageOption("source_language", "Source Language"),
				languageOption("target_language", "Target Language"),
			},
		},
		{
			Name:        cmdSupportedLanguages,
			Description: "List supported languages",
		},
		{
			Name: cmdTranslateMessage,
			Type: discordgo.MessageApplicationCommand,
		},
	}
}

// options indexes the top-level options of a command invocation by name.
func options(data discordgo.ApplicationCommandInteractionData) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	out := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(data.Options))
	for _, opt := range data.Options {
		out[opt.Name] = opt
	}
	return out
}

func stringOption(opts map[string]*discordgo.ApplicationCommandInteractionDataOption, name string) string {
	opt, ok := opts[name]
	if !ok {
		return ""
	}
	if s, ok := opt.Value.(string); ok {
		return s
	}
	return ""
}

// focused returns the option the user is currently typing into.
func focused(data discordgo.ApplicationCommandInteractionData) (*discordgo.ApplicationCommandInteractionDataOption, bool) {
	for _, opt := range data.Options {
		if opt.Focused {
			return opt, true
		}
	}
	return nil, false
}

// userID returns the invoking user for guild and direct-message interactions.
func userID(i *discordgo.Interaction) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}
