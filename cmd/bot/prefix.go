package main

import (
	"fmt"
	"log/slog"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/Jacobbrewer1/fastsupport/pkg/logging"
	"github.com/Jacobbrewer1/fastsupport/pkg/messages"
	"github.com/Jacobbrewer1/fastsupport/pkg/ticketing"
)

const commandPrefix = "!"

func prefixControllers() map[string]prefixProcessor {
	return map[string]prefixProcessor{
		"close":  closePrefixCmd,
		"rename": renamePrefixCmd,
		"add":    addPrefixCmd,
		"remove": removePrefixCmd,
	}
}

// messageActor is the author of the message. Message members carry no permissions, so the administrator flag comes
// from the author's permissions in the channel.
func messageActor(a IApp, m *discordgo.MessageCreate) ticketing.Actor {
	member := m.Member
	if member == nil {
		member = new(discordgo.Member)
	}
	withUser := *member
	withUser.User = m.Author

	actor := ticketing.ActorFromMember(&withUser)
	perms, err := a.Session().UserChannelPermissions(m.Author.ID, m.ChannelID)
	if err != nil {
		a.Log().Debug("Error getting member permissions",
			slog.String(logging.KeyUser, m.Author.ID),
			slog.String(logging.KeyError, err.Error()),
		)
		return actor
	}
	actor.Administrator = perms&discordgo.PermissionAdministrator == discordgo.PermissionAdministrator
	return actor
}

func reply(a IApp, m *discordgo.MessageCreate, content string) error {
	if _, err := a.Session().ChannelMessageSend(m.ChannelID, content); err != nil {
		return fmt.Errorf("error sending reply: %w", err)
	}
	return nil
}

// replyDenial replies with the user facing message for err. Unexpected errors are returned for logging.
func replyDenial(a IApp, m *discordgo.MessageCreate, err error, unauthorized string) error {
	msg, expected := userMessage(err, unauthorized)
	if rerr := reply(a, m, msg); rerr != nil {
		return rerr
	}
	if expected {
		return nil
	}
	return err
}

func closePrefixCmd(a IApp, m *discordgo.MessageCreate, _ string) error {
	actor := messageActor(a, m)
	if err := a.Service().CheckAccess(a.Context(), m.GuildID, m.ChannelID, actor); err != nil {
		return replyDenial(a, m, err, messages.ErrNotAllowedClose)
	}

	if err := reply(a, m, messages.TicketClosed); err != nil {
		a.Log().Debug("Error acknowledging ticket close", slog.String(logging.KeyError, err.Error()))
	}
	return a.Service().Close(a.Context(), m.GuildID, m.ChannelID, actor)
}

func renamePrefixCmd(a IApp, m *discordgo.MessageCreate, args string) error {
	if args == "" {
		return reply(a, m, messages.ErrNameRequired)
	}

	name, err := a.Service().RenameTicket(a.Context(), m.GuildID, m.ChannelID, messageActor(a, m), args)
	if err != nil {
		return replyDenial(a, m, err, messages.ErrNotAllowedManage)
	}
	return reply(a, m, fmt.Sprintf(messages.TicketRenamed, name))
}

func addPrefixCmd(a IApp, m *discordgo.MessageCreate, args string) error {
	memberID, ok := prefixMember(m, args)
	if !ok {
		return reply(a, m, messages.ErrMemberRequired)
	}

	if err := a.Service().AddParticipant(a.Context(), m.GuildID, m.ChannelID, messageActor(a, m), memberID); err != nil {
		return replyDenial(a, m, err, messages.ErrNotAllowedManage)
	}
	return reply(a, m, fmt.Sprintf(messages.ParticipantAdded, userMention(memberID)))
}

func removePrefixCmd(a IApp, m *discordgo.MessageCreate, args string) error {
	memberID, ok := prefixMember(m, args)
	if !ok {
		return reply(a, m, messages.ErrMemberRequired)
	}

	if err := a.Service().RemoveParticipant(a.Context(), m.GuildID, m.ChannelID, messageActor(a, m), memberID); err != nil {
		return replyDenial(a, m, err, messages.ErrNotAllowedManage)
	}
	return reply(a, m, fmt.Sprintf(messages.ParticipantRemoved, userMention(memberID)))
}

// prefixMember is the first mentioned user, or the ID given as the argument.
func prefixMember(m *discordgo.MessageCreate, args string) (string, bool) {
	for _, u := range m.Mentions {
		if u != nil && !u.Bot {
			return u.ID, true
		}
	}
	return parseUserMention(args)
}
