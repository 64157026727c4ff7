package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/nadzzz/sylliba/internal/dispatch"
	"github.com/nadzzz/sylliba/internal/session"
)

var _ session.Platform = (*Transport)(nil)

func interaction(ref any) (*discordgo.Interaction, error) {
	i, ok := ref.(*discordgo.Interaction)
	if !ok || i == nil {
		return nil, fmt.Errorf("discord: no interaction in %T", ref)
	}
	return i, nil
}

func (t *Transport) respond(ctx context.Context, ref any, resp *discordgo.InteractionResponse) error {
	i, err := interaction(ref)
	if err != nil {
		return err
	}
	return t.session.InteractionRespond(i, resp, discordgo.WithContext(ctx))
}

func (t *Transport) edit(ctx context.Context, ref any, edit *discordgo.WebhookEdit) error {
	i, err := interaction(ref)
	if err != nil {
		return err
	}
	_, err = t.session.InteractionResponseEdit(i, edit, discordgo.WithContext(ctx))
	return err
}

// Respond answers an interaction with a message.
func (t *Transport) Respond(ctx context.Context, origin session.Origin, content string, ephemeral bool) error {
	data := &discordgo.InteractionResponseData{Content: content}
	if ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}
	return t.respond(ctx, origin.Ref, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	})
}

// Defer shows the "thinking" state until EditResponse is called.
func (t *Transport) Defer(ctx context.Context, origin session.Origin) error {
	return t.respond(ctx, origin.Ref, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	})
}

// EditResponse replaces the deferred response.
func (t *Transport) EditResponse(ctx context.Context, origin session.Origin, content string) error {
	return t.edit(ctx, origin.Ref, &discordgo.WebhookEdit{Content: &content})
}

// Reply posts content as a reply to msg.
func (t *Transport) Reply(ctx context.Context, msg session.MessageRef, content string) error {
	ref := &discordgo.MessageReference{MessageID: msg.MessageID, ChannelID: msg.ChannelID}
	_, err := t.session.ChannelMessageSendReply(msg.ChannelID, content, ref, discordgo.WithContext(ctx))
	return err
}

// ShowSelector answers the interaction with an ephemeral select menu.
func (t *Transport) ShowSelector(ctx context.Context, origin session.Origin, sel session.Selector) (session.UIRef, error) {
	opts := make([]discordgo.SelectMenuOption, len(sel.Options))
	for n, l := range sel.Options {
		opts[n] = discordgo.SelectMenuOption{Label: l.Name, Value: l.Name}
	}

	err := t.respond(ctx, origin.Ref, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: sel.Prompt,
			Flags:   discordgo.MessageFlagsEphemeral,
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{Components: []discordgo.MessageComponent{
					discordgo.SelectMenu{
						MenuType: discordgo.StringSelectMenu,
						CustomID: selectorCustomID(sel.Token),
						Options:  opts,
					},
				}},
			},
		},
	})
	if err != nil {
		return session.UIRef{}, err
	}
	return session.UIRef{ID: origin.InteractionID, Handle: origin.Ref}, nil
}

// UpdateSelector replaces the menu with a plain status line.
func (t *Transport) UpdateSelector(ctx context.Context, ui session.UIRef, content string) error {
	return t.edit(ctx, ui.Handle, &discordgo.WebhookEdit{
		Content:    &content,
		Components: &[]discordgo.MessageComponent{},
	})
}

// RemoveSelector deletes the ephemeral menu message.
func (t *Transport) RemoveSelector(ctx context.Context, ui session.UIRef) error {
	i, err := interaction(ui.Handle)
	if err != nil {
		return err
	}
	return t.session.InteractionResponseDelete(i, discordgo.WithContext(ctx))
}

// Acknowledge defers the component update so the client stops loading.
func (t *Transport) Acknowledge(ctx context.Context, sel dispatch.Selection) error {
	return t.respond(ctx, sel.Ref, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredMessageUpdate,
	})
}

// Dismiss tells the clicking user that the menu is no longer active.
func (t *Transport) Dismiss(ctx context.Context, sel dispatch.Selection, content string) error {
	return t.respond(ctx, sel.Ref, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
}
