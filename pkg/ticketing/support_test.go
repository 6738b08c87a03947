package ticketing

import (
	"context"
	"testing"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/stretchr/testify/require"
)

func TestEnsureSupportPanel(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	support := env.platform.addChannel(testGuild, "support", discordgo.ChannelTypeGuildText)

	require.NoError(t, env.svc.EnsureSupportPanel(ctx, testGuild))
	require.NoError(t, env.svc.EnsureSupportPanel(ctx, testGuild))

	msgs := env.platform.channelMessages(support.ID)
	require.Len(t, msgs, 1)
	require.Equal(t, SupportPanelTitle, msgs[0].Embeds[0].Title)

	menu := msgs[0].Components[0].(discordgo.ActionsRow).Components[0].(discordgo.SelectMenu)
	require.Equal(t, TicketSelectPrefix+testGuild, menu.CustomID)
	require.Len(t, menu.Options, 3)
}

func TestEnsureSupportPanel_NoChannel(t *testing.T) {
	env := newTestEnv(t)

	// A voice channel called support is not a support channel.
	env.platform.addChannel(testGuild, "support", discordgo.ChannelTypeGuildVoice)

	require.NoError(t, env.svc.EnsureSupportPanel(context.Background(), testGuild))

	_, err := env.svc.SendSupportPanel(context.Background(), testGuild)
	require.ErrorIs(t, err, ErrNoSupportChannel)
}

func TestSupportChannel_ConfiguredFirst(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	fallback := env.platform.addChannel(testGuild, "support", discordgo.ChannelTypeGuildText)
	configured := env.platform.addChannel(testGuild, "help-desk", discordgo.ChannelTypeGuildText)

	env.svc.SetSupportChannel(ctx, testGuild, configured.ID)
	require.Equal(t, configured.ID, env.svc.SupportChannel(testGuild))

	ch, err := env.svc.SendSupportPanel(ctx, testGuild)
	require.NoError(t, err)
	require.Equal(t, configured.ID, ch.ID)
	require.Len(t, env.platform.channelMessages(configured.ID), 1)
	require.Empty(t, env.platform.channelMessages(fallback.ID))

	// The configured channel is gone, so the panel goes to #support.
	env.platform.removeChannel(configured.ID)
	ch, err = env.svc.SendSupportPanel(ctx, testGuild)
	require.NoError(t, err)
	require.Equal(t, fallback.ID, ch.ID)
}

func TestRefreshSupportPanel(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	refreshed, err := env.svc.RefreshSupportPanel(ctx, testGuild)
	require.NoError(t, err)
	require.False(t, refreshed, "no support channel")

	support := env.platform.addChannel(testGuild, "support", discordgo.ChannelTypeGuildText)
	refreshed, err = env.svc.RefreshSupportPanel(ctx, testGuild)
	require.NoError(t, err)
	require.False(t, refreshed, "no panel to refresh")
	require.Empty(t, env.platform.channelMessages(support.ID))

	// Messages from other users are not panels.
	env.platform.messages[support.ID] = append(env.platform.messages[support.ID], &discordgo.Message{
		ID:     "9000",
		Author: &discordgo.User{ID: "42"},
		Embeds: []*discordgo.MessageEmbed{SupportEmbed()},
	})
	refreshed, err = env.svc.RefreshSupportPanel(ctx, testGuild)
	require.NoError(t, err)
	require.False(t, refreshed)

	require.NoError(t, env.svc.EnsureSupportPanel(ctx, testGuild))
	refreshed, err = env.svc.RefreshSupportPanel(ctx, testGuild)
	require.NoError(t, err)
	require.True(t, refreshed)
	require.Len(t, env.platform.channelMessages(support.ID), 2)
	require.Equal(t, 1, env.platform.editCount())
}
