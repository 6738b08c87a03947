package ticketing

import (
	"context"
	"errors"
	"log/slog"

	"github.com/Jacobbrewer1/fastsupport/pkg/custom"
	"github.com/Jacobbrewer1/fastsupport/pkg/entities"
	"github.com/Jacobbrewer1/fastsupport/pkg/logging"
)

// Claim assigns the ticket to the actor. Only the first claim succeeds: later ones get an *AlreadyClaimedError naming
// the claimant and leave the ticket unchanged.
func (s *Service) Claim(ctx context.Context, guildID, channelID string, actor Actor) (*entities.TicketEntry, error) {
	var (
		entry     *entities.TicketEntry
		claimedBy string
	)
	s.store.Do(func(doc entities.ConfigDocument) {
		e, ok := entities.GetOrInit(doc, guildID).OpenTickets[channelID]
		if !ok {
			return
		}
		if !e.ClaimedBy.IsZero() {
			claimedBy = e.ClaimedBy.String()
			return
		}
		e.ClaimedBy = custom.Snowflake(actor.ID)
		entry = e.Clone()
	})

	switch {
	case claimedBy != "":
		ticketDenials.WithLabelValues(denialClaimed).Inc()
		return nil, &AlreadyClaimedError{ClaimedBy: claimedBy}
	case entry == nil:
		ticketDenials.WithLabelValues(denialNotATicket).Inc()
		return nil, ErrTicketNotFound
	}

	l := s.guildLogger(guildID).With(slog.String(logging.KeyChannel, channelID), slog.String(logging.KeyUser, actor.ID))
	s.store.Save(ctx)
	l.Info("Ticket claimed")

	if !entry.MessageID.IsZero() {
		if _, err := s.platform.EditMessage(TicketMessageEdit(entry)); err != nil {
			l.Error("Error updating ticket panel after claim", slog.String(logging.KeyError, err.Error()))
		}
	}

	if _, err := s.platform.SendMessage(channelID, ClaimNotification(entry.OwnerID.String(), actor.ID)); err != nil {
		l.Error("Error notifying ticket owner of claim", slog.String(logging.KeyError, err.Error()))
	}

	s.record(ctx, entities.EventClaimed, guildID, &ticketRef{
		channelID:   channelID,
		channelName: entry.ChannelName,
		category:    entry.Category,
		entry:       entry,
	}, actor.ID)

	return entry, nil
}

// Resolve ends the ticket as resolved. The entry is removed from the registry and the channel is deleted.
func (s *Service) Resolve(ctx context.Context, guildID, channelID string, actor Actor) error {
	return s.finish(ctx, guildID, channelID, actor, entities.EventResolved)
}

// Close ends the ticket without resolving it. The entry is removed from the registry and the channel is deleted.
func (s *Service) Close(ctx context.Context, guildID, channelID string, actor Actor) error {
	return s.finish(ctx, guildID, channelID, actor, entities.EventClosed)
}

func (s *Service) finish(ctx context.Context, guildID, channelID string, actor Actor, kind entities.TicketEventKind) error {
	t, err := s.access(guildID, channelID, actor)
	if err != nil {
		return err
	}

	// Only one terminal transition may win. Registry tickets are taken out of the registry before any I/O, topic only
	// tickets are held by a reservation on the channel.
	if t.entry != nil {
		removed := false
		s.store.Do(func(doc entities.ConfigDocument) {
			g := entities.GetOrInit(doc, guildID)
			if _, ok := g.OpenTickets[channelID]; ok {
				delete(g.OpenTickets, channelID)
				removed = true
			}
		})
		if !removed {
			ticketDenials.WithLabelValues(denialNotATicket).Inc()
			return ErrTicketNotFound
		}
	} else {
		key := finishingKey(channelID)
		if !s.reserve(guildID, key) {
			ticketDenials.WithLabelValues(denialNotATicket).Inc()
			return ErrTicketNotFound
		}
		defer s.release(guildID, key)
	}

	l := s.guildLogger(guildID).With(slog.String(logging.KeyChannel, channelID), slog.String(logging.KeyUser, actor.ID))

	if t.entry != nil {
		s.store.Save(ctx)
		s.unbind(t.entry.MessageID.String())
	}
	s.record(ctx, kind, guildID, t, actor.ID)

	l.Info("Ticket finished", slog.String("kind", string(kind)))

	if err := s.platform.DeleteChannel(channelID); err != nil && !errors.Is(err, ErrNotFound) {
		return platformError("delete channel", err)
	}
	return nil
}

// finishingKey is the reservation held while a ticket without a registry entry is being ended.
func finishingKey(channelID string) string {
	return "finish:" + channelID
}
