package main

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/Jacobbrewer1/fastsupport/pkg/custom"
	"github.com/Jacobbrewer1/fastsupport/pkg/entities"
	"github.com/Jacobbrewer1/fastsupport/pkg/messages"
	"github.com/Jacobbrewer1/fastsupport/pkg/ticketing"
	"github.com/stretchr/testify/require"
)

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		want     string
		expected bool
	}{
		{
			name:     "duplicate with channel",
			err:      &ticketing.DuplicateTicketError{ChannelID: "700"},
			want:     fmt.Sprintf(messages.DuplicateTicket, "<#700>"),
			expected: true,
		},
		{
			name:     "duplicate in flight",
			err:      &ticketing.DuplicateTicketError{},
			want:     fmt.Sprintf(messages.DuplicateTicket, "it is still being created"),
			expected: true,
		},
		{
			name:     "already claimed",
			err:      fmt.Errorf("wrapped: %w", &ticketing.AlreadyClaimedError{ClaimedBy: "42"}),
			want:     fmt.Sprintf(messages.AlreadyClaimed, "<@42>"),
			expected: true,
		},
		{
			name:     "not a ticket",
			err:      ticketing.ErrTicketNotFound,
			want:     messages.ErrNotATicket,
			expected: true,
		},
		{
			name:     "unauthorized",
			err:      ticketing.ErrUnauthorized,
			want:     messages.ErrNotAllowedClose,
			expected: true,
		},
		{
			name:     "category missing",
			err:      ticketing.ErrCategoryNotFound,
			want:     messages.ErrCategoryNotFound,
			expected: true,
		},
		{
			name:     "category exists",
			err:      ticketing.ErrCategoryExists,
			want:     messages.ErrCategoryExists,
			expected: true,
		},
		{
			name:     "no support channel",
			err:      ticketing.ErrNoSupportChannel,
			want:     messages.ErrNoSupportChannel,
			expected: true,
		},
		{
			name:     "invalid name",
			err:      ticketing.ErrInvalidName,
			want:     messages.ErrInvalidName,
			expected: true,
		},
		{
			name: "platform",
			err:  &ticketing.PlatformError{Op: "create channel", Err: errors.New("boom")},
			want: messages.ErrPlatform,
		},
		{
			name: "unknown",
			err:  errors.New("boom"),
			want: messages.ErrUserErrorProcessing,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, expected := userMessage(tt.err, messages.ErrNotAllowedClose)
			require.Equal(t, tt.want, got)
			require.Equal(t, tt.expected, expected)
		})
	}
}

func TestParsePrefixCommand(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		wantName string
		wantArgs string
		wantOK   bool
	}{
		{name: "bang", content: "!close", wantName: "close", wantOK: true},
		{name: "bang with args", content: "!rename  Billing Help ", wantName: "rename", wantArgs: "Billing Help", wantOK: true},
		{name: "upper case", content: "!ADD <@42>", wantName: "add", wantArgs: "<@42>", wantOK: true},
		{name: "mention", content: "<@99> remove <@42>", wantName: "remove", wantArgs: "<@42>", wantOK: true},
		{name: "nick mention", content: "<@!99> close", wantName: "close", wantOK: true},
		{name: "other mention", content: "<@98> close"},
		{name: "bare prefix", content: "!"},
		{name: "plain text", content: "close this please"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			name, args, ok := parsePrefixCommand(tt.content, "99")
			require.Equal(t, tt.wantOK, ok)
			require.Equal(t, tt.wantName, name)
			require.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestParseUserMention(t *testing.T) {
	tests := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{in: "<@42>", want: "42", wantOK: true},
		{in: "<@!42>", want: "42", wantOK: true},
		{in: " 42 ", want: "42", wantOK: true},
		{in: "<@&42>"},
		{in: "someone"},
		{in: ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := parseUserMention(tt.in)
			require.Equal(t, tt.wantOK, ok)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestPrefixMember(t *testing.T) {
	m := &discordgo.MessageCreate{Message: &discordgo.Message{
		Mentions: []*discordgo.User{{ID: "99", Bot: true}, {ID: "42"}},
	}}
	id, ok := prefixMember(m, "<@99> <@42>")
	require.True(t, ok)
	require.Equal(t, "42", id)

	id, ok = prefixMember(&discordgo.MessageCreate{Message: &discordgo.Message{}}, "43")
	require.True(t, ok)
	require.Equal(t, "43", id)
}

func TestSlashControllers_CoverCommands(t *testing.T) {
	controllers := slashControllers()
	require.Len(t, controllers, len(slashCommands))
	for _, cmd := range slashCommands {
		_, ok := controllers[cmd.Name]
		require.True(t, ok, cmd.Name)
	}
}

func TestCategoryRolesText(t *testing.T) {
	cat := entities.NewCategory("Billing", "Payments", "")
	require.Equal(t, fmt.Sprintf(messages.CategoryRoles, "Billing", messages.None, messages.None), categoryRoles(cat))

	cat.NotifyRoleID = custom.Snowflake("10")
	cat.AddCloseRole("11")
	cat.AddCloseRole("12")
	require.Equal(t, "**Billing**\nNotify: <@&10>\nClose roles: <@&11>, <@&12>", categoryRoles(cat))
}

func TestCategoryList(t *testing.T) {
	plain := entities.NewCategory("Other", "Anything else", "")
	withEmoji := entities.NewCategory("Billing", "Payments", "\U0001F4B0")
	withEmoji.NotifyRoleID = custom.Snowflake("10")

	got := categoryList([]*entities.Category{withEmoji, plain})
	require.Equal(t, messages.CategoriesHeader+"\n"+
		"- \U0001F4B0 **Billing**: Payments (notify: <@&10>)\n"+
		"- **Other**: Anything else", got)
}

func TestHistoryList(t *testing.T) {
	at := custom.Datetime(time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC))
	got := historyList([]*entities.TicketEvent{
		{Kind: entities.EventOpened, ChannelName: "other-alice", ActorID: "42", Category: "Other", Timestamp: at},
		{Kind: entities.EventClosed, ChannelName: "other-alice", ActorID: "7", Timestamp: at},
	})
	require.Equal(t, messages.HistoryHeader+"\n"+
		"- `2024-03-01 12:30:00` **opened** #other-alice by <@42> (Other)\n"+
		"- `2024-03-01 12:30:00` **closed** #other-alice by <@7>", got)
}
