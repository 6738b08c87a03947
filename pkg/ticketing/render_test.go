package ticketing

import (
	"testing"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/Jacobbrewer1/fastsupport/pkg/entities"
	"github.com/stretchr/testify/require"
)

func TestTicketEmbed(t *testing.T) {
	e := &entities.TicketEntry{ChannelID: "700", OwnerID: "42", Category: "Partnership", MessageID: "701"}

	embed := TicketEmbed(e)
	require.Equal(t, "Partnership", embed.Title)
	require.Len(t, embed.Fields, 3)
	require.Equal(t, "• <@42> opened a ticket about **Partnership**!", embed.Fields[0].Value)
	require.Equal(t, "• **The ticket is waiting to be claimed**", embed.Fields[2].Value)

	e.ClaimedBy = "50"
	require.Equal(t, "• The ticket has been claimed by <@50>!", TicketEmbed(e).Fields[2].Value)

	e.OwnerID = ""
	require.Equal(t, "• Unknown user opened a ticket about **Partnership**!", TicketEmbed(e).Fields[0].Value)
}

func TestTicketMessage(t *testing.T) {
	e := &entities.TicketEntry{OwnerID: "42", Category: "Other"}

	require.Equal(t, "<@42>", TicketMessage(e, "").Content)
	require.Equal(t, "<@&60> <@42>", TicketMessage(e, "60").Content)

	row := TicketMessage(e, "").Components[0].(discordgo.ActionsRow)
	ids := make([]string, 0, len(row.Components))
	for _, c := range row.Components {
		ids = append(ids, c.(discordgo.Button).CustomID)
	}
	require.Equal(t, []string{ClaimButtonID, ResolveButtonID, CloseButtonID}, ids)
}

func TestPanelUpToDate(t *testing.T) {
	e := &entities.TicketEntry{OwnerID: "42", Category: "Other", ClaimedBy: "50"}

	require.False(t, panelUpToDate(nil, e))
	require.False(t, panelUpToDate(&discordgo.Message{}, e))
	require.True(t, panelUpToDate(&discordgo.Message{Embeds: []*discordgo.MessageEmbed{TicketEmbed(e)}}, e))

	stale := &discordgo.Message{Embeds: []*discordgo.MessageEmbed{TicketEmbed(&entities.TicketEntry{OwnerID: "42", Category: "Other"})}}
	require.False(t, panelUpToDate(stale, e))
}

func TestTopic(t *testing.T) {
	cat, ok := categoryFromTopic(TopicFor("Staff Management"))
	require.True(t, ok)
	require.Equal(t, "Staff Management", cat)

	_, ok = categoryFromTopic("just chatting")
	require.False(t, ok)

	cat, ok = categoryFromTopic("ticket_category:")
	require.True(t, ok)
	require.Empty(t, cat)
}

func TestSupportComponents(t *testing.T) {
	cats := entities.DefaultCategories()
	cats = append(cats, entities.NewCategory("Sales", "", ""))

	menu := SupportComponents(testGuild, cats)[0].(discordgo.ActionsRow).Components[0].(discordgo.SelectMenu)
	require.Equal(t, TicketSelectPrefix+testGuild, menu.CustomID)
	require.Equal(t, 1, menu.MaxValues)
	require.Len(t, menu.Options, 4)
	require.Equal(t, "Staff Management", menu.Options[0].Value)
	require.Equal(t, "\U0001F530", menu.Options[0].Emoji.Name)
	require.Empty(t, menu.Options[3].Emoji.Name)
}

func TestIsSupportPanel(t *testing.T) {
	panel := &discordgo.Message{Author: &discordgo.User{ID: testBot}, Embeds: []*discordgo.MessageEmbed{SupportEmbed()}}
	require.True(t, isSupportPanel(panel, testBot))
	require.False(t, isSupportPanel(panel, "2"))
	require.False(t, isSupportPanel(&discordgo.Message{Author: &discordgo.User{ID: testBot}}, testBot))
	require.False(t, isSupportPanel(&discordgo.Message{Embeds: []*discordgo.MessageEmbed{SupportEmbed()}}, testBot))
}
