package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/Jacobbrewer1/fastsupport/pkg/custom"
	"github.com/Jacobbrewer1/fastsupport/pkg/messages"
	"github.com/Jacobbrewer1/fastsupport/pkg/ticketing"
)

func respondSlashError(a IApp, i *discordgo.InteractionCreate) error {
	return respondEphemeral(a, i, messages.ErrUserErrorProcessing)
}

func respondEphemeral(a IApp, i *discordgo.InteractionCreate, content string) error {
	return a.Session().InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
}

func respondEphemeralEmbed(a IApp, i *discordgo.InteractionCreate, embed *discordgo.MessageEmbed) error {
	return a.Session().InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
			Flags:  discordgo.MessageFlagsEphemeral,
		},
	})
}

// deferEphemeral acknowledges the interaction so the work behind it may take longer than the response deadline.
func deferEphemeral(a IApp, i *discordgo.InteractionCreate) error {
	return a.Session().InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Flags: discordgo.MessageFlagsEphemeral,
		},
	})
}

// editDeferred replaces the placeholder of a deferred response.
func editDeferred(a IApp, i *discordgo.InteractionCreate, content string) error {
	_, err := a.Session().InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
		Content: &content,
	})
	return err
}

// isAdmin reports whether the member that triggered the interaction is an administrator.
func isAdmin(i *discordgo.InteractionCreate) bool {
	return i.Member != nil && i.Member.Permissions&discordgo.PermissionAdministrator == discordgo.PermissionAdministrator
}

// interactionActor is the member that triggered the interaction.
func interactionActor(i *discordgo.InteractionCreate) ticketing.Actor {
	return ticketing.ActorFromMember(i.Member)
}

// userMessage turns an error from the ticketing engine into the message shown to the user. Denials the user can act on
// are expected; anything else is a failure that should be logged.
func userMessage(err error, unauthorized string) (msg string, expected bool) {
	var (
		duplicate *ticketing.DuplicateTicketError
		claimed   *ticketing.AlreadyClaimedError
	)
	switch {
	case errors.As(err, &duplicate):
		where := "it is still being created"
		if duplicate.ChannelID != "" {
			where = channelMention(duplicate.ChannelID)
		}
		return fmt.Sprintf(messages.DuplicateTicket, where), true
	case errors.As(err, &claimed):
		return fmt.Sprintf(messages.AlreadyClaimed, userMention(claimed.ClaimedBy)), true
	case errors.Is(err, ticketing.ErrTicketNotFound):
		return messages.ErrNotATicket, true
	case errors.Is(err, ticketing.ErrUnauthorized):
		return unauthorized, true
	case errors.Is(err, ticketing.ErrCategoryNotFound):
		return messages.ErrCategoryNotFound, true
	case errors.Is(err, ticketing.ErrCategoryExists):
		return messages.ErrCategoryExists, true
	case errors.Is(err, ticketing.ErrNoSupportChannel):
		return messages.ErrNoSupportChannel, true
	case errors.Is(err, ticketing.ErrInvalidName):
		return messages.ErrInvalidName, true
	case errors.Is(err, ticketing.ErrPlatformUnavailable):
		return messages.ErrPlatform, false
	}
	return messages.ErrUserErrorProcessing, false
}

func userMention(id string) string {
	return "<@" + id + ">"
}

func roleMention(id string) string {
	return "<@&" + id + ">"
}

func channelMention(id string) string {
	return "<#" + id + ">"
}

// parseUserMention extracts the user ID from a mention or a raw ID.
func parseUserMention(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "<@") && strings.HasSuffix(s, ">") {
		s = strings.TrimPrefix(strings.TrimSuffix(s[2:], ">"), "!")
	}
	if !custom.IsNumeric(s) {
		return "", false
	}
	return s, true
}

// parsePrefixCommand splits a message into a command and its arguments. Commands start with ! or a mention of the
// bot.
func parsePrefixCommand(content, botID string) (name, args string, ok bool) {
	content = strings.TrimSpace(content)

	switch {
	case strings.HasPrefix(content, commandPrefix):
		content = content[len(commandPrefix):]
	case botID != "" && strings.HasPrefix(content, userMention(botID)):
		content = content[len(userMention(botID)):]
	case botID != "" && strings.HasPrefix(content, "<@!"+botID+">"):
		content = content[len("<@!"+botID+">"):]
	default:
		return "", "", false
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return "", "", false
	}

	name, args, _ = strings.Cut(content, " ")
	return strings.ToLower(name), strings.TrimSpace(args), true
}
