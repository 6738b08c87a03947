package main

import (
	"fmt"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/Jacobbrewer1/fastsupport/pkg/messages"
	"github.com/Jacobbrewer1/fastsupport/pkg/ticketing"
)

// legacyCloseButtonID is the close button of panels posted by earlier versions of the bot.
const legacyCloseButtonID = "fastsupport_close_ticket"

func componentControllers() map[string]componentProcessor {
	return map[string]componentProcessor{
		ticketing.ClaimButtonID:   claimButton,
		ticketing.ResolveButtonID: resolveButton,
		ticketing.CloseButtonID:   closeButton,
		legacyCloseButtonID:       closeButton,
	}
}

func componentPrefixes() map[string]componentProcessor {
	return map[string]componentProcessor{
		ticketing.TicketSelectPrefix: ticketSelect,
	}
}

// componentTicket is the ticket a button belongs to. The panel binding is used when the message is known, the channel
// the button was pressed in otherwise.
func componentTicket(a IApp, i *discordgo.InteractionCreate) (guildID, channelID string) {
	if i.Message != nil {
		if g, c, ok := a.Service().TicketForMessage(i.Message.ID); ok {
			return g, c
		}
	}
	return i.GuildID, i.ChannelID
}

func claimButton(a IApp, i *discordgo.InteractionCreate) error {
	guildID, channelID := componentTicket(a, i)
	if _, err := a.Service().Claim(a.Context(), guildID, channelID, interactionActor(i)); err != nil {
		return respondDenial(a, i, err, messages.ErrNotAllowedClaim)
	}
	return respondEphemeral(a, i, messages.TicketClaimed)
}

func resolveButton(a IApp, i *discordgo.InteractionCreate) error {
	guildID, channelID := componentTicket(a, i)
	return finishTicket(a, i, guildID, channelID, messages.TicketResolved, messages.ErrNotAllowedClose, a.Service().Resolve)
}

func closeButton(a IApp, i *discordgo.InteractionCreate) error {
	guildID, channelID := componentTicket(a, i)
	return finishTicket(a, i, guildID, channelID, messages.TicketClosed, messages.ErrNotAllowedClose, a.Service().Close)
}

// ticketSelect opens a ticket of the chosen category. Creating the channel can outlast the response deadline, so the
// interaction is deferred first.
func ticketSelect(a IApp, i *discordgo.InteractionCreate) error {
	values := i.MessageComponentData().Values
	if len(values) == 0 {
		return respondEphemeral(a, i, messages.ErrCategoryNotFound)
	}

	if err := deferEphemeral(a, i); err != nil {
		return fmt.Errorf("error deferring interaction: %w", err)
	}

	created, err := a.Service().CreateTicket(a.Context(), i.GuildID, interactionActor(i), values[0])
	if err != nil {
		msg, expected := userMessage(err, messages.ErrUserErrorProcessing)
		if eerr := editDeferred(a, i, msg); eerr != nil {
			return fmt.Errorf("error editing deferred response: %w", eerr)
		}
		if expected {
			return nil
		}
		return err
	}

	return editDeferred(a, i, fmt.Sprintf(messages.TicketCreated, channelMention(created.Channel.ID)))
}
