package ticketing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/Jacobbrewer1/fastsupport/pkg/entities"
	"github.com/Jacobbrewer1/fastsupport/pkg/logging"
)

// ErrInvalidName is returned when a new ticket name has no usable characters.
var ErrInvalidName = errors.New("name has no valid characters")

// RenameTicket renames the ticket channel. The name is slugified and the channel ID is appended when another channel
// already has that name. The applied name is returned.
func (s *Service) RenameTicket(ctx context.Context, guildID, channelID string, actor Actor, newName string) (string, error) {
	if _, err := s.access(guildID, channelID, actor); err != nil {
		return "", err
	}

	name := Slugify(newName)
	if name == "" {
		return "", ErrInvalidName
	}

	channels, err := s.platform.GuildChannels(guildID)
	if err != nil {
		return "", platformError("list channels", err)
	}
	if existing := findTextChannel(channels, name); existing != nil && existing.ID != channelID {
		name = name + "-" + channelID
	}

	if _, err := s.platform.EditChannel(channelID, &discordgo.ChannelEdit{Name: name}); err != nil {
		return "", platformError("rename channel", err)
	}

	updated := false
	s.store.Do(func(doc entities.ConfigDocument) {
		if e, ok := entities.GetOrInit(doc, guildID).OpenTickets[channelID]; ok {
			e.ChannelName = name
			updated = true
		}
	})
	if updated {
		s.store.Save(ctx)
	}

	s.guildLogger(guildID).Info("Ticket renamed",
		slog.String(logging.KeyChannel, channelID),
		slog.String(logging.KeyUser, actor.ID),
		slog.String("name", name),
	)
	return name, nil
}

// AddParticipant gives the member access to the ticket channel and posts a short lived notification.
func (s *Service) AddParticipant(ctx context.Context, guildID, channelID string, actor Actor, memberID string) error {
	if _, err := s.access(guildID, channelID, actor); err != nil {
		return err
	}

	if err := s.platform.SetPermission(channelID, memberID, discordgo.PermissionOverwriteTypeMember, viewAndSend, 0); err != nil {
		return platformError("set permission", err)
	}

	s.notify(ctx, guildID, channelID, fmt.Sprintf("\U0001F514 %s has been added to the ticket by %s.", userMention(memberID), actor.Mention()))
	return nil
}

// RemoveParticipant removes the member's explicit access to the ticket channel and posts a short lived notification.
func (s *Service) RemoveParticipant(ctx context.Context, guildID, channelID string, actor Actor, memberID string) error {
	if _, err := s.access(guildID, channelID, actor); err != nil {
		return err
	}

	if err := s.platform.DeletePermission(channelID, memberID); err != nil && !errors.Is(err, ErrNotFound) {
		return platformError("delete permission", err)
	}

	s.notify(ctx, guildID, channelID, fmt.Sprintf("ℹ️ %s has been removed from the ticket by %s.", userMention(memberID), actor.Mention()))
	return nil
}

// notify posts a message that is deleted once the notification delay has passed.
func (s *Service) notify(_ context.Context, guildID, channelID, content string) {
	l := s.guildLogger(guildID).With(slog.String(logging.KeyChannel, channelID))

	msg, err := s.platform.SendMessage(channelID, &discordgo.MessageSend{
		Content: content,
		AllowedMentions: &discordgo.MessageAllowedMentions{
			Parse: []discordgo.AllowedMentionType{discordgo.AllowedMentionTypeUsers},
		},
	})
	if err != nil {
		l.Error("Error sending notification", slog.String(logging.KeyError, err.Error()))
		return
	}

	s.scheduler.After(s.notificationDelay, func() {
		// The message may already be gone.
		_ = s.platform.DeleteMessage(channelID, msg.ID)
	})
}
