package ticketing

import (
	"context"
	"testing"

	"github.com/Jacobbrewer1/fastsupport/pkg/entities"
	"github.com/stretchr/testify/require"
)

func TestAuthorize(t *testing.T) {
	env := newTestEnv(t)
	staff := env.platform.addRole(testGuild, DefaultLegacyStaffRole)

	ref := &ticketRef{
		channelID:    "700",
		category:     "Other",
		entry:        &entities.TicketEntry{ChannelID: "700", OwnerID: "42", ClaimedBy: "50", Category: "Other"},
		closeRoleIDs: []string{"60"},
	}

	tests := []struct {
		name        string
		actor       Actor
		want        Grant
		roleLookups int
	}{
		{
			name:  "Administrator",
			actor: Actor{ID: "1", Administrator: true, RoleIDs: []string{"60", staff.ID}},
			want:  GrantAdministrator,
		},
		{
			name:  "Claimant",
			actor: Actor{ID: "50", RoleIDs: []string{"60"}},
			want:  GrantClaimant,
		},
		{
			name:  "CloseRole",
			actor: Actor{ID: "51", RoleIDs: []string{"60", staff.ID}},
			want:  GrantCloseRole,
		},
		{
			name:        "LegacyStaff",
			actor:       Actor{ID: "52", RoleIDs: []string{staff.ID}},
			want:        GrantLegacyStaff,
			roleLookups: 1,
		},
		{
			name:        "Owner",
			actor:       Actor{ID: "42"},
			want:        GrantNone,
			roleLookups: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := env.platform.roleLookups
			got := env.svc.authorize(testGuild, tt.actor, ref)
			require.Equal(t, tt.want, got)
			require.Equal(t, tt.want != GrantNone, got.Allowed())
			require.Equal(t, tt.roleLookups, env.platform.roleLookups-before, "the staff role is only resolved when needed")
		})
	}
}

func TestAuthorize_LegacyRoleDisabled(t *testing.T) {
	env := newTestEnv(t)
	staff := env.platform.addRole(testGuild, DefaultLegacyStaffRole)
	WithLegacyStaffRole("")(env.svc)

	got := env.svc.authorize(testGuild, Actor{ID: "52", RoleIDs: []string{staff.ID}}, &ticketRef{category: "Other"})
	require.Equal(t, GrantNone, got)
	require.Zero(t, env.platform.roleLookups)
}

func TestCheckAccess(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created, err := env.svc.CreateTicket(ctx, testGuild, user("42", "Alice"), "Other")
	require.NoError(t, err)
	_, _, err = env.svc.AddCategoryCloseRole(ctx, testGuild, "Other", "60")
	require.NoError(t, err)

	require.NoError(t, env.svc.CheckAccess(ctx, testGuild, created.Channel.ID, Actor{ID: "51", RoleIDs: []string{"60"}}))
	require.ErrorIs(t, env.svc.CheckAccess(ctx, testGuild, created.Channel.ID, Actor{ID: "51", RoleIDs: []string{"61"}}), ErrUnauthorized)
	require.ErrorIs(t, env.svc.CheckAccess(ctx, testGuild, "404", Actor{ID: "51", Administrator: true}), ErrTicketNotFound)
}
