package ticketing

import (
	"github.com/Jacobbrewer1/discordgo"
)

// Platform is the subset of the Discord API the ticketing engine needs. Lookups of entities that do not exist must
// return an error that matches ErrNotFound.
type Platform interface {
	// Channel gets a channel by ID.
	Channel(channelID string) (*discordgo.Channel, error)

	// GuildChannels lists every channel of a guild.
	GuildChannels(guildID string) ([]*discordgo.Channel, error)

	// CreateChannel creates a channel in a guild.
	CreateChannel(guildID string, data discordgo.GuildChannelCreateData) (*discordgo.Channel, error)

	// EditChannel edits the name or topic of a channel.
	EditChannel(channelID string, data *discordgo.ChannelEdit) (*discordgo.Channel, error)

	// DeleteChannel deletes a channel.
	DeleteChannel(channelID string) error

	// SendMessage sends a message to a channel.
	SendMessage(channelID string, data *discordgo.MessageSend) (*discordgo.Message, error)

	// EditMessage edits a message.
	EditMessage(data *discordgo.MessageEdit) (*discordgo.Message, error)

	// Message gets a message by ID.
	Message(channelID, messageID string) (*discordgo.Message, error)

	// RecentMessages lists the most recent messages of a channel, newest first.
	RecentMessages(channelID string, limit int) ([]*discordgo.Message, error)

	// DeleteMessage deletes a message.
	DeleteMessage(channelID, messageID string) error

	// Member gets a member of a guild.
	Member(guildID, userID string) (*discordgo.Member, error)

	// Roles lists the roles of a guild.
	Roles(guildID string) ([]*discordgo.Role, error)

	// SetPermission creates or replaces a permission overwrite on a channel.
	SetPermission(channelID, targetID string, targetType discordgo.PermissionOverwriteType, allow, deny int64) error

	// DeletePermission removes a permission overwrite from a channel.
	DeletePermission(channelID, targetID string) error

	// BotUserID is the ID of the bot user.
	BotUserID() string
}

// Actor is the user performing an operation.
type Actor struct {
	// ID is the user ID.
	ID string

	// Username is the user's name. It is used to name ticket channels.
	Username string

	// RoleIDs are the roles the user holds in the guild.
	RoleIDs []string

	// Administrator is whether the user has the administrator permission in the guild.
	Administrator bool
}

// ActorFromMember builds an actor from a guild member. Permissions are only populated on members that come with an
// interaction.
func ActorFromMember(m *discordgo.Member) Actor {
	if m == nil || m.User == nil {
		return Actor{}
	}
	return Actor{
		ID:            m.User.ID,
		Username:      m.User.Username,
		RoleIDs:       m.Roles,
		Administrator: m.Permissions&discordgo.PermissionAdministrator == discordgo.PermissionAdministrator,
	}
}

// HasRole reports whether the actor holds the role.
func (a Actor) HasRole(roleID string) bool {
	for _, r := range a.RoleIDs {
		if r == roleID {
			return true
		}
	}
	return false
}

// Mention returns the mention string of the actor.
func (a Actor) Mention() string {
	return userMention(a.ID)
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
