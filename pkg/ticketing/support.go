package ticketing

import (
	"context"
	"errors"
	"log/slog"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/Jacobbrewer1/fastsupport/pkg/custom"
	"github.com/Jacobbrewer1/fastsupport/pkg/entities"
	"github.com/Jacobbrewer1/fastsupport/pkg/logging"
)

// SetSupportChannel binds the support panel of the guild to the channel.
func (s *Service) SetSupportChannel(ctx context.Context, guildID, channelID string) {
	s.store.Do(func(doc entities.ConfigDocument) {
		entities.GetOrInit(doc, guildID).SupportChannelID = custom.Snowflake(channelID)
	})
	s.store.Save(ctx)
}

// SupportChannel returns the configured support channel of the guild, or an empty string.
func (s *Service) SupportChannel(guildID string) string {
	var id string
	s.store.Do(func(doc entities.ConfigDocument) {
		id = entities.GetOrInit(doc, guildID).SupportChannelID.String()
	})
	return id
}

// SupportPanelMessage renders the support panel of the guild with its current categories.
func (s *Service) SupportPanelMessage(guildID string) *discordgo.MessageSend {
	return SupportMessage(guildID, s.GetCategories(guildID))
}

// resolveSupportChannel returns the configured support channel, or the channel named support when none is configured
// or the configured one is gone.
func (s *Service) resolveSupportChannel(guildID string) (*discordgo.Channel, error) {
	if id := s.SupportChannel(guildID); id != "" {
		ch, err := s.platform.Channel(id)
		if err == nil {
			return ch, nil
		} else if !errors.Is(err, ErrNotFound) {
			return nil, platformError("get support channel", err)
		}
	}

	channels, err := s.platform.GuildChannels(guildID)
	if err != nil {
		return nil, platformError("list channels", err)
	}
	if ch := findTextChannel(channels, defaultSupportChannelName); ch != nil {
		return ch, nil
	}
	return nil, ErrNoSupportChannel
}

// findSupportPanel searches the recent messages of the channel for a support panel sent by the bot.
func (s *Service) findSupportPanel(channelID string) (*discordgo.Message, error) {
	msgs, err := s.platform.RecentMessages(channelID, supportHistoryDepth)
	if err != nil {
		return nil, platformError("list messages", err)
	}
	bot := s.platform.BotUserID()
	for _, m := range msgs {
		if isSupportPanel(m, bot) {
			return m, nil
		}
	}
	return nil, nil
}

// EnsureSupportPanel posts the support panel in the support channel unless one is already there. Guilds without a
// support channel are left alone.
func (s *Service) EnsureSupportPanel(ctx context.Context, guildID string) error {
	ch, err := s.resolveSupportChannel(guildID)
	if errors.Is(err, ErrNoSupportChannel) {
		return nil
	} else if err != nil {
		return err
	}

	existing, err := s.findSupportPanel(ch.ID)
	if err != nil {
		// Posting a duplicate panel is worse than posting none.
		return err
	}
	if existing != nil {
		return nil
	}

	_, err = s.sendSupportPanel(ctx, guildID, ch)
	return err
}

// SendSupportPanel posts a new support panel in the support channel and returns the channel.
func (s *Service) SendSupportPanel(ctx context.Context, guildID string) (*discordgo.Channel, error) {
	ch, err := s.resolveSupportChannel(guildID)
	if err != nil {
		return nil, err
	}
	if _, err := s.sendSupportPanel(ctx, guildID, ch); err != nil {
		return nil, err
	}
	return ch, nil
}

func (s *Service) sendSupportPanel(_ context.Context, guildID string, ch *discordgo.Channel) (*discordgo.Message, error) {
	msg, err := s.platform.SendMessage(ch.ID, s.SupportPanelMessage(guildID))
	if err != nil {
		return nil, platformError("send support panel", err)
	}
	s.guildLogger(guildID).Info("Support panel posted", slog.String(logging.KeyChannel, ch.ID))
	return msg, nil
}

// RefreshSupportPanel updates the category selector of the existing support panel, posting a new panel when the
// existing one cannot be edited. It reports whether a panel now shows the current categories.
func (s *Service) RefreshSupportPanel(ctx context.Context, guildID string) (bool, error) {
	ch, err := s.resolveSupportChannel(guildID)
	if errors.Is(err, ErrNoSupportChannel) {
		return false, nil
	} else if err != nil {
		return false, err
	}

	existing, err := s.findSupportPanel(ch.ID)
	if err != nil {
		return false, err
	}
	if existing == nil {
		return false, nil
	}

	_, err = s.platform.EditMessage(&discordgo.MessageEdit{
		Channel:    ch.ID,
		ID:         existing.ID,
		Embeds:     []*discordgo.MessageEmbed{SupportEmbed()},
		Components: SupportComponents(guildID, s.GetCategories(guildID)),
	})
	if err == nil {
		return true, nil
	}

	s.guildLogger(guildID).Warn("Error editing support panel, posting a new one",
		slog.String(logging.KeyChannel, ch.ID),
		slog.String(logging.KeyError, err.Error()),
	)
	if _, err := s.sendSupportPanel(ctx, guildID, ch); err != nil {
		return false, err
	}
	return true, nil
}
