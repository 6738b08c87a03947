package main

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/Jacobbrewer1/fastsupport/pkg/ticketing"
)

// maxMessagesPerPage is the most messages Discord returns for one history request.
const maxMessagesPerPage = 100

// discordPlatform runs the ticketing engine against the Discord REST API.
type discordPlatform struct {
	s *discordgo.Session
}

func newDiscordPlatform(s *discordgo.Session) *discordPlatform {
	return &discordPlatform{
		s: s,
	}
}

// notFound marks REST errors for entities that do not exist so the engine can match them with ticketing.ErrNotFound.
func notFound(err error) error {
	if err == nil {
		return nil
	}

	var restErr *discordgo.RESTError
	if !errors.As(err, &restErr) {
		return err
	}

	if restErr.Response != nil && restErr.Response.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %w", ticketing.ErrNotFound, err)
	}
	if restErr.Message != nil {
		switch restErr.Message.Code {
		case discordgo.ErrCodeUnknownChannel,
			discordgo.ErrCodeUnknownMessage,
			discordgo.ErrCodeUnknownMember,
			discordgo.ErrCodeUnknownRole:
			return fmt.Errorf("%w: %w", ticketing.ErrNotFound, err)
		}
	}
	return err
}

func (p *discordPlatform) Channel(channelID string) (*discordgo.Channel, error) {
	ch, err := p.s.Channel(channelID)
	return ch, notFound(err)
}

func (p *discordPlatform) GuildChannels(guildID string) ([]*discordgo.Channel, error) {
	channels, err := p.s.GuildChannels(guildID)
	return channels, notFound(err)
}

func (p *discordPlatform) CreateChannel(guildID string, data discordgo.GuildChannelCreateData) (*discordgo.Channel, error) {
	ch, err := p.s.GuildChannelCreateComplex(guildID, data)
	return ch, notFound(err)
}

func (p *discordPlatform) EditChannel(channelID string, data *discordgo.ChannelEdit) (*discordgo.Channel, error) {
	ch, err := p.s.ChannelEditComplex(channelID, data)
	return ch, notFound(err)
}

func (p *discordPlatform) DeleteChannel(channelID string) error {
	_, err := p.s.ChannelDelete(channelID)
	return notFound(err)
}

func (p *discordPlatform) SendMessage(channelID string, data *discordgo.MessageSend) (*discordgo.Message, error) {
	msg, err := p.s.ChannelMessageSendComplex(channelID, data)
	return msg, notFound(err)
}

func (p *discordPlatform) EditMessage(data *discordgo.MessageEdit) (*discordgo.Message, error) {
	msg, err := p.s.ChannelMessageEditComplex(data)
	return msg, notFound(err)
}

func (p *discordPlatform) Message(channelID, messageID string) (*discordgo.Message, error) {
	msg, err := p.s.ChannelMessage(channelID, messageID)
	return msg, notFound(err)
}

// RecentMessages pages back through the history of the channel until limit messages are read or the history ends.
func (p *discordPlatform) RecentMessages(channelID string, limit int) ([]*discordgo.Message, error) {
	msgs := make([]*discordgo.Message, 0, limit)
	before := ""
	for len(msgs) < limit {
		page, err := p.s.ChannelMessages(channelID, min(limit-len(msgs), maxMessagesPerPage), before, "", "")
		if err != nil {
			return nil, notFound(err)
		}
		msgs = append(msgs, page...)
		if len(page) < maxMessagesPerPage {
			break
		}
		before = page[len(page)-1].ID
	}
	return msgs, nil
}

func (p *discordPlatform) DeleteMessage(channelID, messageID string) error {
	return notFound(p.s.ChannelMessageDelete(channelID, messageID))
}

func (p *discordPlatform) Member(guildID, userID string) (*discordgo.Member, error) {
	m, err := p.s.GuildMember(guildID, userID)
	return m, notFound(err)
}

func (p *discordPlatform) Roles(guildID string) ([]*discordgo.Role, error) {
	roles, err := p.s.GuildRoles(guildID)
	return roles, notFound(err)
}

func (p *discordPlatform) SetPermission(channelID, targetID string, targetType discordgo.PermissionOverwriteType, allow, deny int64) error {
	return notFound(p.s.ChannelPermissionSet(channelID, targetID, targetType, allow, deny))
}

func (p *discordPlatform) DeletePermission(channelID, targetID string) error {
	return notFound(p.s.ChannelPermissionDelete(channelID, targetID))
}

func (p *discordPlatform) BotUserID() string {
	if p.s.State == nil || p.s.State.User == nil {
		return ""
	}
	return p.s.State.User.ID
}
