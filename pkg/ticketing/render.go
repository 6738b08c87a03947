package ticketing

import (
	"fmt"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/Jacobbrewer1/fastsupport/pkg/entities"
)

const (
	// ClaimButtonID is the custom ID of the claim button on a ticket panel.
	ClaimButtonID = "fastsupport_claim"

	// ResolveButtonID is the custom ID of the resolve button on a ticket panel.
	ResolveButtonID = "fastsupport_resolve"

	// CloseButtonID is the custom ID of the close button on a ticket panel.
	CloseButtonID = "fastsupport_close_actions"

	// TicketSelectPrefix prefixes the custom ID of the category selector of a guild's support panel.
	TicketSelectPrefix = "fastsupport_ticket_select_"
)

const (
	// SupportPanelTitle identifies the support panel among the bot's messages.
	SupportPanelTitle = "\U0001F4E9 Open a ticket!"

	// topicPrefix tags a ticket channel with its category.
	topicPrefix = "ticket_category:"

	// panelSeparator separates the opening line from the status line.
	panelSeparator = "---------------------------------------------"

	// blankFieldName is used for fields that only carry a value.
	blankFieldName = "\u200b"

	supportRule = "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━"
)

const (
	colourPanel    = 0x36393F
	colourOpened   = 0x57F287
	colourClaimed  = 0x57F287
	colourResolved = 0x3498DB
	colourClosed   = 0xED4245
)

const (
	// ClaimEmoji is shown on the claim button. (Ticket)
	ClaimEmoji = "\U0001F3AB"

	// ResolveEmoji is shown on the resolve button. (Check mark)
	ResolveEmoji = "✅"

	// CloseEmoji is shown on the close button. (Lock)
	CloseEmoji = "\U0001F512"
)

// TopicFor returns the channel topic that tags a ticket channel with its category.
func TopicFor(category string) string {
	return topicPrefix + category
}

// categoryFromTopic returns the category a channel topic is tagged with.
func categoryFromTopic(topic string) (string, bool) {
	if len(topic) < len(topicPrefix) || topic[:len(topicPrefix)] != topicPrefix {
		return "", false
	}
	return topic[len(topicPrefix):], true
}

// openingLine is the first line of a ticket panel.
func openingLine(ownerID, category string) string {
	owner := "Unknown user"
	if ownerID != "" {
		owner = userMention(ownerID)
	}
	return fmt.Sprintf("• %s opened a ticket about **%s**!", owner, category)
}

// statusLine is the line of a ticket panel that shows the status of the ticket.
func statusLine(e *entities.TicketEntry) string {
	switch e.Status() {
	case entities.StatusClaimed:
		return fmt.Sprintf("• The ticket has been claimed by %s!", userMention(e.ClaimedBy.String()))
	default:
		return "• **The ticket is waiting to be claimed**"
	}
}

// TicketEmbed renders the control panel embed of a ticket from its registry entry.
func TicketEmbed(e *entities.TicketEntry) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title: e.Category,
		Color: colourPanel,
		Fields: []*discordgo.MessageEmbedField{
			{Name: blankFieldName, Value: openingLine(e.OwnerID.String(), e.Category)},
			{Name: blankFieldName, Value: panelSeparator},
			{Name: blankFieldName, Value: statusLine(e)},
		},
	}
}

// TicketComponents renders the buttons of a ticket panel.
func TicketComponents() []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    fmt.Sprintf("%s Claim", ClaimEmoji),
					Style:    discordgo.SecondaryButton,
					Emoji:    discordgo.ComponentEmoji{},
					CustomID: ClaimButtonID,
				},
				discordgo.Button{
					Label:    fmt.Sprintf("%s Resolve", ResolveEmoji),
					Style:    discordgo.PrimaryButton,
					Emoji:    discordgo.ComponentEmoji{},
					CustomID: ResolveButtonID,
				},
				discordgo.Button{
					Label:    fmt.Sprintf("%s Close ticket", CloseEmoji),
					Style:    discordgo.DangerButton,
					Emoji:    discordgo.ComponentEmoji{},
					CustomID: CloseButtonID,
				},
			},
		},
	}
}

// TicketMessage renders the first message of a ticket channel. The owner is pinged, and the notify role too when one
// is set.
func TicketMessage(e *entities.TicketEntry, notifyRoleID string) *discordgo.MessageSend {
	content := userMention(e.OwnerID.String())
	if notifyRoleID != "" {
		content = roleMention(notifyRoleID) + " " + content
	}

	return &discordgo.MessageSend{
		Content: content,
		Embeds:  []*discordgo.MessageEmbed{TicketEmbed(e)},
		AllowedMentions: &discordgo.MessageAllowedMentions{
			Parse: []discordgo.AllowedMentionType{
				discordgo.AllowedMentionTypeUsers,
				discordgo.AllowedMentionTypeRoles,
			},
		},
		Components: TicketComponents(),
	}
}

// TicketMessageEdit renders the edit that brings an existing panel up to date with the entry.
func TicketMessageEdit(e *entities.TicketEntry) *discordgo.MessageEdit {
	return &discordgo.MessageEdit{
		Channel:    e.ChannelID.String(),
		ID:         e.MessageID.String(),
		Embeds:     []*discordgo.MessageEmbed{TicketEmbed(e)},
		Components: TicketComponents(),
	}
}

// panelUpToDate reports whether the message already shows the rendered panel of the entry.
func panelUpToDate(msg *discordgo.Message, e *entities.TicketEntry) bool {
	if msg == nil || len(msg.Embeds) == 0 || msg.Embeds[0] == nil {
		return false
	}

	got := msg.Embeds[0]
	want := TicketEmbed(e)
	if got.Title != want.Title || len(got.Fields) != len(want.Fields) {
		return false
	}
	for i := range want.Fields {
		if got.Fields[i] == nil || got.Fields[i].Value != want.Fields[i].Value {
			return false
		}
	}
	return true
}

// ClaimNotification renders the message telling the owner their ticket was claimed.
func ClaimNotification(ownerID, claimantID string) *discordgo.MessageSend {
	owner := "User"
	if ownerID != "" {
		owner = userMention(ownerID)
	}
	return &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{
			{
				Description: fmt.Sprintf("%s, your ticket has been claimed by %s!", owner, userMention(claimantID)),
				Color:       colourClaimed,
			},
		},
	}
}

// SupportEmbed renders the embed of the support panel.
func SupportEmbed() *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title: SupportPanelTitle,
		Color: colourPanel,
		Fields: []*discordgo.MessageEmbedField{
			{Name: blankFieldName, Value: "> **Support is available 24/7.**"},
			{Name: blankFieldName, Value: supportRule},
			{Name: blankFieldName, Value: "• Click on the menu below!"},
			{Name: blankFieldName, Value: supportRule},
			{Name: blankFieldName, Value: "• Select the category that matches your request!"},
		},
		Footer: &discordgo.MessageEmbedFooter{
			Text: "Fast Support",
		},
	}
}

// SupportComponents renders the category selector of the support panel.
func SupportComponents(guildID string, categories []*entities.Category) []discordgo.MessageComponent {
	opts := make([]discordgo.SelectMenuOption, 0, len(categories))
	for _, c := range categories {
		opt := discordgo.SelectMenuOption{
			Label:       truncate(c.Label, 100),
			Value:       truncate(c.Label, 100),
			Description: truncate(c.Description, 100),
		}
		if e := c.DisplayEmoji(); e != "" {
			opt.Emoji = discordgo.ComponentEmoji{Name: e}
		}
		opts = append(opts, opt)
	}

	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.SelectMenu{
					CustomID:    TicketSelectPrefix + guildID,
					Placeholder: "\U0001F3AB Choose the type of ticket",
					MaxValues:   1,
					Options:     opts,
				},
			},
		},
	}
}

// SupportMessage renders the support panel.
func SupportMessage(guildID string, categories []*entities.Category) *discordgo.MessageSend {
	return &discordgo.MessageSend{
		Embeds:     []*discordgo.MessageEmbed{SupportEmbed()},
		Components: SupportComponents(guildID, categories),
	}
}

// isSupportPanel reports whether the message is a support panel sent by the bot.
func isSupportPanel(msg *discordgo.Message, botID string) bool {
	if msg == nil || msg.Author == nil || msg.Author.ID != botID {
		return false
	}
	return len(msg.Embeds) > 0 && msg.Embeds[0] != nil && msg.Embeds[0].Title == SupportPanelTitle
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
