package ticketing

import (
	"context"
	"log/slog"

	"github.com/Jacobbrewer1/fastsupport/pkg/logging"
)

// Grant is the reason an actor may manage a ticket.
type Grant int

const (
	// GrantNone means the actor may not manage the ticket.
	GrantNone Grant = iota

	// GrantAdministrator is given to guild administrators.
	GrantAdministrator

	// GrantClaimant is given to the member of staff who claimed the ticket.
	GrantClaimant

	// GrantCloseRole is given to holders of a close role of the ticket's category.
	GrantCloseRole

	// GrantLegacyStaff is given to holders of the legacy staff role.
	GrantLegacyStaff
)

// String implements the fmt.Stringer interface.
func (g Grant) String() string {
	switch g {
	case GrantAdministrator:
		return "administrator"
	case GrantClaimant:
		return "claimant"
	case GrantCloseRole:
		return "close_role"
	case GrantLegacyStaff:
		return "legacy_staff"
	}
	return "none"
}

// Allowed reports whether the grant allows managing the ticket.
func (g Grant) Allowed() bool {
	return g != GrantNone
}

// authorize decides whether the actor may resolve, close, rename or change the participants of the ticket. The rules
// are checked in order and the legacy staff role is only looked up when the others fail.
func (s *Service) authorize(guildID string, actor Actor, t *ticketRef) Grant {
	if actor.Administrator {
		return GrantAdministrator
	}
	if claimant := t.claimedBy(); claimant != "" && claimant == actor.ID {
		return GrantClaimant
	}
	for _, id := range t.closeRoleIDs {
		if actor.HasRole(id) {
			return GrantCloseRole
		}
	}
	if staff := s.legacyStaffRoleID(guildID); staff != "" && actor.HasRole(staff) {
		return GrantLegacyStaff
	}
	return GrantNone
}

// legacyStaffRoleID resolves the legacy staff role by name. It returns an empty string when the role does not exist
// or the roles cannot be listed.
func (s *Service) legacyStaffRoleID(guildID string) string {
	if s.legacyStaffRole == "" {
		return ""
	}

	roles, err := s.platform.Roles(guildID)
	if err != nil {
		s.guildLogger(guildID).Warn("Error listing roles", slog.String(logging.KeyError, err.Error()))
		return ""
	}
	for _, r := range roles {
		if r.Name == s.legacyStaffRole {
			return r.ID
		}
	}
	return ""
}

// CheckAccess returns nil when the actor may manage the ticket in the channel. It returns ErrTicketNotFound when the
// channel is not a ticket and ErrUnauthorized when the actor may not manage it.
func (s *Service) CheckAccess(_ context.Context, guildID, channelID string, actor Actor) error {
	t, err := s.lookupTicket(guildID, channelID)
	if err != nil {
		return err
	}
	if !s.authorize(guildID, actor, t).Allowed() {
		ticketDenials.WithLabelValues(denialUnauthorized).Inc()
		return ErrUnauthorized
	}
	return nil
}

// access looks the ticket up and checks the actor may manage it.
func (s *Service) access(guildID, channelID string, actor Actor) (*ticketRef, error) {
	t, err := s.lookupTicket(guildID, channelID)
	if err != nil {
		return nil, err
	}

	grant := s.authorize(guildID, actor, t)
	if !grant.Allowed() {
		ticketDenials.WithLabelValues(denialUnauthorized).Inc()
		return nil, ErrUnauthorized
	}

	s.guildLogger(guildID).Debug("Ticket access granted",
		slog.String(logging.KeyChannel, channelID),
		slog.String(logging.KeyUser, actor.ID),
		slog.String("grant", grant.String()),
	)
	return t, nil
}
