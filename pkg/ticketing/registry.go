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

// viewAndSend lets a member or role read and write in a ticket channel.
const viewAndSend = discordgo.PermissionViewChannel | discordgo.PermissionSendMessages | discordgo.PermissionReadMessageHistory

// CreatedTicket is the result of opening a ticket.
type CreatedTicket struct {
	// Channel is the new ticket channel.
	Channel *discordgo.Channel

	// Message is the control panel posted in the channel.
	Message *discordgo.Message

	// Entry is the registry entry of the ticket.
	Entry *entities.TicketEntry
}

// ticketRef is what the service knows about a ticket channel, from the registry or from the channel topic.
type ticketRef struct {
	channelID   string
	channelName string
	category    string

	// entry is a copy of the registry entry. Nil when the channel is only known as a ticket by its topic.
	entry *entities.TicketEntry

	// closeRoleIDs are the close roles of the ticket's category.
	closeRoleIDs []string
}

func (t *ticketRef) ownerID() string {
	if t.entry == nil {
		return ""
	}
	return t.entry.OwnerID.String()
}

func (t *ticketRef) claimedBy() string {
	if t.entry == nil {
		return ""
	}
	return t.entry.ClaimedBy.String()
}

// lookupTicket finds the ticket of a channel. A channel without a registry entry is still a ticket when its topic
// carries a category tag.
func (s *Service) lookupTicket(guildID, channelID string) (*ticketRef, error) {
	var ref *ticketRef
	s.store.Do(func(doc entities.ConfigDocument) {
		g := entities.GetOrInit(doc, guildID)
		if e, ok := g.OpenTickets[channelID]; ok {
			ref = &ticketRef{
				channelID:   channelID,
				channelName: e.ChannelName,
				category:    e.Category,
				entry:       e.Clone(),
			}
		}
	})

	ch, err := s.platform.Channel(channelID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, platformError("get channel", err)
	} else if err != nil {
		ch = nil
	}

	if ref == nil {
		if ch == nil || ch.GuildID != guildID {
			ticketDenials.WithLabelValues(denialNotATicket).Inc()
			return nil, ErrTicketNotFound
		}
		category, ok := categoryFromTopic(ch.Topic)
		if !ok {
			ticketDenials.WithLabelValues(denialNotATicket).Inc()
			return nil, ErrTicketNotFound
		}
		ref = &ticketRef{
			channelID: channelID,
			category:  category,
		}
	}
	if ch != nil {
		ref.channelName = ch.Name
	}

	s.store.Do(func(doc entities.ConfigDocument) {
		if c, ok := entities.GetOrInit(doc, guildID).CategoryExact(ref.category); ok {
			for _, id := range c.CloseRoleIDs {
				ref.closeRoleIDs = append(ref.closeRoleIDs, id.String())
			}
		}
	})
	return ref, nil
}

// findChannel resolves a registry entry against the channels of the guild, by ID first and then by its last known
// name.
func findChannel(channels []*discordgo.Channel, id, name string) *discordgo.Channel {
	if id != "" {
		for _, ch := range channels {
			if ch.ID == id {
				return ch
			}
		}
	}
	if name != "" {
		return findTextChannel(channels, name)
	}
	return nil
}

func findTextChannel(channels []*discordgo.Channel, name string) *discordgo.Channel {
	for _, ch := range channels {
		if ch.Type == discordgo.ChannelTypeGuildText && ch.Name == name {
			return ch
		}
	}
	return nil
}

// entryChannel returns the channel ID and name to resolve a registry entry with. Legacy entries are keyed by channel
// name and may lack the fields.
func entryChannel(key string, e *entities.TicketEntry) (id, name string) {
	id, name = e.ChannelID.String(), e.ChannelName
	if id == "" && custom.IsNumeric(key) {
		id = key
	}
	if name == "" && !custom.IsNumeric(key) {
		name = key
	}
	return id, name
}

// TryRegisterNewTicket checks that the user has no open ticket in the guild. Entries whose channel no longer exists
// are removed on the way. A *DuplicateTicketError is returned when a live ticket is found.
func (s *Service) TryRegisterNewTicket(ctx context.Context, guildID, ownerID string) error {
	channels, err := s.platform.GuildChannels(guildID)
	if err != nil {
		return platformError("list channels", err)
	}
	return s.checkDuplicates(ctx, guildID, ownerID, channels)
}

func (s *Service) checkDuplicates(ctx context.Context, guildID, ownerID string, channels []*discordgo.Channel) error {
	type owned struct {
		key   string
		entry *entities.TicketEntry
	}

	var entries []owned
	s.store.Do(func(doc entities.ConfigDocument) {
		g := entities.GetOrInit(doc, guildID)
		for _, k := range g.TicketsOwnedBy(ownerID) {
			entries = append(entries, owned{key: k, entry: g.OpenTickets[k].Clone()})
		}
	})

	var (
		orphans []string
		live    *discordgo.Channel
	)
	for _, o := range entries {
		id, name := entryChannel(o.key, o.entry)
		if ch := findChannel(channels, id, name); ch != nil {
			live = ch
			break
		}
		orphans = append(orphans, o.key)
	}

	if len(orphans) > 0 {
		removed := 0
		s.store.Do(func(doc entities.ConfigDocument) {
			g := entities.GetOrInit(doc, guildID)
			for _, k := range orphans {
				if e, ok := g.OpenTickets[k]; ok && e.OwnerID.String() == ownerID {
					delete(g.OpenTickets, k)
					removed++
				}
			}
		})
		if removed > 0 {
			orphansRemoved.Add(float64(removed))
			s.guildLogger(guildID).Info("Removed orphaned tickets",
				slog.String(logging.KeyUser, ownerID),
				slog.Any("keys", orphans),
			)
			s.store.Save(ctx)
		}
	}

	if live != nil {
		ticketDenials.WithLabelValues(denialDuplicate).Inc()
		return &DuplicateTicketError{ChannelID: live.ID}
	}
	return nil
}

// CreateTicket opens a ticket of the category for the actor. The registry entry is written only once the channel
// exists and the control panel has been posted in it.
func (s *Service) CreateTicket(ctx context.Context, guildID string, actor Actor, categoryLabel string) (*CreatedTicket, error) {
	l := s.guildLogger(guildID).With(slog.String(logging.KeyUser, actor.ID))

	var category *entities.Category
	s.store.Do(func(doc entities.ConfigDocument) {
		g := entities.GetOrInit(doc, guildID)
		c, ok := g.CategoryExact(categoryLabel)
		if !ok {
			c, ok = g.Category(categoryLabel)
		}
		if ok {
			category = c.Clone()
		}
	})
	if category == nil {
		return nil, ErrCategoryNotFound
	}

	if !s.reserve(guildID, actor.ID) {
		// Another creation for this user is in flight.
		ticketDenials.WithLabelValues(denialDuplicate).Inc()
		return nil, &DuplicateTicketError{}
	}
	defer s.release(guildID, actor.ID)

	channels, err := s.platform.GuildChannels(guildID)
	if err != nil {
		return nil, platformError("list channels", err)
	}

	if err := s.checkDuplicates(ctx, guildID, actor.ID, channels); err != nil {
		return nil, err
	}

	container := s.ticketContainer(guildID, channels)

	name := Slugify(category.Label) + "-" + Slugify(actor.Username)
	if findTextChannel(channels, name) != nil {
		name = name + "-" + actor.ID
	}

	data := discordgo.GuildChannelCreateData{
		Name:                 name,
		Type:                 discordgo.ChannelTypeGuildText,
		Topic:                TopicFor(category.Label),
		PermissionOverwrites: s.ticketOverwrites(guildID, actor.ID, category),
	}
	if container != nil {
		data.ParentID = container.ID
	}

	ch, err := s.platform.CreateChannel(guildID, data)
	if err != nil {
		return nil, platformError("create channel", err)
	}
	l = l.With(slog.String(logging.KeyChannel, ch.ID))

	entry := &entities.TicketEntry{
		ChannelID:   custom.Snowflake(ch.ID),
		ChannelName: ch.Name,
		OwnerID:     custom.Snowflake(actor.ID),
		Category:    category.Label,
	}

	msg, err := s.platform.SendMessage(ch.ID, TicketMessage(entry, category.NotifyRoleID.String()))
	if err != nil {
		// Without a panel the channel cannot be managed, so do not leave it behind.
		if delErr := s.platform.DeleteChannel(ch.ID); delErr != nil {
			l.Error("Error deleting ticket channel after failed panel", slog.String(logging.KeyError, delErr.Error()))
		}
		return nil, platformError("send ticket panel", err)
	}
	entry.MessageID = custom.Snowflake(msg.ID)

	s.store.Do(func(doc entities.ConfigDocument) {
		entities.GetOrInit(doc, guildID).OpenTickets[ch.ID] = entry.Clone()
	})
	s.store.Save(ctx)
	s.bind(msg.ID, guildID, ch.ID)

	l.Info("Ticket opened", slog.String("category", category.Label))

	s.record(ctx, entities.EventOpened, guildID, &ticketRef{
		channelID:   ch.ID,
		channelName: ch.Name,
		category:    category.Label,
		entry:       entry,
	}, actor.ID)

	return &CreatedTicket{
		Channel: ch,
		Message: msg,
		Entry:   entry,
	}, nil
}

// ticketContainer finds or creates the channel category tickets are grouped in. Tickets are created at the top level
// when it cannot be created.
func (s *Service) ticketContainer(guildID string, channels []*discordgo.Channel) *discordgo.Channel {
	for _, ch := range channels {
		if ch.Type == discordgo.ChannelTypeGuildCategory && ch.Name == ticketContainerName {
			return ch
		}
	}

	container, err := s.platform.CreateChannel(guildID, discordgo.GuildChannelCreateData{
		Name: ticketContainerName,
		Type: discordgo.ChannelTypeGuildCategory,
	})
	if err != nil {
		s.guildLogger(guildID).Error("Error creating ticket container", slog.String(logging.KeyError, err.Error()))
		return nil
	}
	return container
}

// ticketOverwrites hides the channel from everyone except the owner, the bot, the close roles of the category and the
// legacy staff role.
func (s *Service) ticketOverwrites(guildID, ownerID string, category *entities.Category) []*discordgo.PermissionOverwrite {
	overwrites := []*discordgo.PermissionOverwrite{
		{
			// The @everyone role has the ID of the guild.
			ID:   guildID,
			Type: discordgo.PermissionOverwriteTypeRole,
			Deny: discordgo.PermissionViewChannel,
		},
		{
			ID:    ownerID,
			Type:  discordgo.PermissionOverwriteTypeMember,
			Allow: viewAndSend,
		},
	}

	if bot := s.platform.BotUserID(); bot != "" {
		overwrites = append(overwrites, &discordgo.PermissionOverwrite{
			ID:    bot,
			Type:  discordgo.PermissionOverwriteTypeMember,
			Allow: viewAndSend,
		})
	}

	for _, id := range category.CloseRoleIDs {
		overwrites = append(overwrites, &discordgo.PermissionOverwrite{
			ID:    id.String(),
			Type:  discordgo.PermissionOverwriteTypeRole,
			Allow: viewAndSend,
		})
	}

	if staff := s.legacyStaffRoleID(guildID); staff != "" && !category.HasCloseRole(staff) {
		overwrites = append(overwrites, &discordgo.PermissionOverwrite{
			ID:    staff,
			Type:  discordgo.PermissionOverwriteTypeRole,
			Allow: viewAndSend,
		})
	}

	return overwrites
}
