package entities

import (
	"github.com/Jacobbrewer1/fastsupport/pkg/custom"
)

// TicketStatus is the state of an open ticket.
type TicketStatus int

const (
	// StatusPending is a ticket that nobody has claimed yet.
	StatusPending TicketStatus = iota

	// StatusClaimed is a ticket that a member of staff has claimed.
	StatusClaimed
)

// String implements the fmt.Stringer interface.
func (s TicketStatus) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusClaimed:
		return "claimed"
	}
	return "unknown"
}

// TicketEntry is the registry entry of an open ticket.
type TicketEntry struct {
	// ChannelID is the ID of the ticket channel.
	ChannelID custom.Snowflake `json:"channel_id"`

	// ChannelName is the last known name of the channel. It is only used as a fallback when looking the channel up.
	ChannelName string `json:"channel_name"`

	// OwnerID is the ID of the user that opened the ticket.
	OwnerID custom.Snowflake `json:"owner_id"`

	// ClaimedBy is the ID of the member of staff handling the ticket.
	ClaimedBy custom.Snowflake `json:"claimed_by"`

	// Category is the label of the category the ticket was opened in.
	Category string `json:"category"`

	// MessageID is the ID of the control panel message in the ticket channel.
	MessageID custom.Snowflake `json:"message_id"`
}

// Status returns the state of the ticket.
func (t *TicketEntry) Status() TicketStatus {
	if t.ClaimedBy.IsZero() {
		return StatusPending
	}
	return StatusClaimed
}

// Clone returns a copy of the entry.
func (t *TicketEntry) Clone() *TicketEntry {
	cp := *t
	return &cp
}
