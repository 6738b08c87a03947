package entities

import (
	"github.com/Jacobbrewer1/fastsupport/pkg/custom"
)

// TicketEventKind is a step in the life of a ticket that is recorded for auditing.
type TicketEventKind string

const (
	// EventOpened is recorded when a ticket channel is created.
	EventOpened TicketEventKind = "opened"

	// EventClaimed is recorded when a member of staff claims a ticket.
	EventClaimed TicketEventKind = "claimed"

	// EventResolved is recorded when a ticket is resolved.
	EventResolved TicketEventKind = "resolved"

	// EventClosed is recorded when a ticket is closed without being resolved.
	EventClosed TicketEventKind = "closed"
)

// TicketEvent is an audit record of a ticket transition.
type TicketEvent struct {
	// ID is the ID of the record.
	ID string `json:"id" bson:"_id"`

	// Kind is the transition.
	Kind TicketEventKind `json:"kind" bson:"kind"`

	// GuildID is the guild the ticket belongs to.
	GuildID string `json:"guild_id" bson:"guild_id"`

	// ChannelID is the ticket channel.
	ChannelID string `json:"channel_id" bson:"channel_id"`

	// ChannelName is the name of the channel when the event happened.
	ChannelName string `json:"channel_name" bson:"channel_name"`

	// OwnerID is the user that opened the ticket. Empty when unknown.
	OwnerID string `json:"owner_id" bson:"owner_id"`

	// ActorID is the user that performed the transition.
	ActorID string `json:"actor_id" bson:"actor_id"`

	// Category is the category label of the ticket.
	Category string `json:"category" bson:"category"`

	// Timestamp is when the event happened.
	Timestamp custom.Datetime `json:"timestamp" bson:"timestamp"`
}
