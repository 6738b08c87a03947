package ticketing

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/Jacobbrewer1/fastsupport/pkg/custom"
	"github.com/Jacobbrewer1/fastsupport/pkg/entities"
	"github.com/Jacobbrewer1/fastsupport/pkg/logging"
	"github.com/google/uuid"
)

// AuditSink receives the audit records of ticket transitions.
type AuditSink interface {
	// Record stores the event.
	Record(ctx context.Context, event *entities.TicketEvent) error
}

// LogChannelSink posts audit records to the log channel of the guild, creating the channel when it is missing.
type LogChannelSink struct {
	l        *slog.Logger
	platform Platform
}

// NewLogChannelSink creates a sink that posts to the guild's log channel.
func NewLogChannelSink(l *slog.Logger, p Platform) *LogChannelSink {
	return &LogChannelSink{
		l:        l,
		platform: p,
	}
}

// Record posts the event to the log channel.
func (s *LogChannelSink) Record(_ context.Context, event *entities.TicketEvent) error {
	ch, err := s.logChannel(event.GuildID)
	if err != nil {
		return err
	}

	if _, err := s.platform.SendMessage(ch.ID, &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{AuditEmbed(event)},
	}); err != nil {
		return platformError("send audit record", err)
	}
	return nil
}

func (s *LogChannelSink) logChannel(guildID string) (*discordgo.Channel, error) {
	channels, err := s.platform.GuildChannels(guildID)
	if err != nil {
		return nil, platformError("list channels", err)
	}
	if ch := findTextChannel(channels, logChannelName); ch != nil {
		return ch, nil
	}

	s.l.Info("Log channel not found, creating it", slog.String(logging.KeyGuild, guildID))
	ch, err := s.platform.CreateChannel(guildID, discordgo.GuildChannelCreateData{
		Name: logChannelName,
		Type: discordgo.ChannelTypeGuildText,
	})
	if err != nil {
		return nil, platformError("create log channel", err)
	}
	return ch, nil
}

// AuditEmbed renders an audit record for the log channel.
func AuditEmbed(event *entities.TicketEvent) *discordgo.MessageEmbed {
	owner := "unknown"
	if event.OwnerID != "" {
		owner = userMention(event.OwnerID)
	}
	at := event.Timestamp.Time().UTC().Format("2006-01-02T15:04:05") + " UTC"

	var (
		title  string
		colour int
		lines  []string
	)
	switch event.Kind {
	case entities.EventOpened:
		title, colour = "\U0001F4C2 Ticket opened", colourOpened
		lines = []string{
			"**User:** " + owner,
			"**Channel:** " + channelMention(event.ChannelID),
			"**Category:** " + event.Category,
		}
	case entities.EventClaimed:
		title, colour = "\U0001F4CC Ticket claimed", colourClaimed
		lines = []string{
			"**Channel:** " + event.ChannelName,
			"**Claimed by:** " + userMention(event.ActorID),
			"**User:** " + owner,
		}
	case entities.EventResolved:
		title, colour = "\U0001F4C1 Ticket resolved", colourResolved
		lines = []string{
			"**Channel:** " + event.ChannelName,
			"**Resolved by:** " + userMention(event.ActorID),
			"**User:** " + owner,
			"**Category:** " + event.Category,
		}
	default:
		title, colour = "\U0001F4C1 Ticket closed", colourClosed
		lines = []string{
			"**Channel:** " + event.ChannelName,
			"**Closed by:** " + userMention(event.ActorID),
			"**User:** " + owner,
			"**Category:** " + event.Category,
		}
	}
	lines = append(lines, "**Time:** "+at)

	return &discordgo.MessageEmbed{
		Title:       title,
		Description: strings.Join(lines, "\n"),
		Color:       colour,
	}
}

// record sends the event to every sink. Failures are logged and never stop the transition.
func (s *Service) record(ctx context.Context, kind entities.TicketEventKind, guildID string, t *ticketRef, actorID string) {
	event := &entities.TicketEvent{
		ID:          uuid.NewString(),
		Kind:        kind,
		GuildID:     guildID,
		ChannelID:   t.channelID,
		ChannelName: t.channelName,
		OwnerID:     t.ownerID(),
		ActorID:     actorID,
		Category:    t.category,
		Timestamp:   custom.Datetime(s.now()),
	}

	ticketTransitions.WithLabelValues(string(kind)).Inc()

	for _, sink := range s.sinks {
		if err := sink.Record(ctx, event); err != nil {
			s.guildLogger(guildID).Error("Error recording ticket event",
				slog.String("kind", string(kind)),
				slog.String(logging.KeyChannel, t.channelID),
				slog.String("sink", fmt.Sprintf("%T", sink)),
				slog.String(logging.KeyError, err.Error()),
			)
		}
	}
}
