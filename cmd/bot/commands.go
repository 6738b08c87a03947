package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/Jacobbrewer1/fastsupport/pkg/entities"
	"github.com/Jacobbrewer1/fastsupport/pkg/logging"
	"github.com/Jacobbrewer1/fastsupport/pkg/messages"
	"github.com/Jacobbrewer1/fastsupport/pkg/ticketing"
)

const (
	helpCmdName                    = "help"
	supportCmdName                 = "support"
	setChannelCmdName              = "set-channel"
	sendEmbedCmdName               = "send-embed"
	addCategoryCmdName             = "add-category"
	removeCategoryCmdName          = "remove-category"
	listCategoriesCmdName          = "list-categories"
	modifyCategoryCmdName          = "modify-category"
	moveCategoryCmdName            = "move-category"
	setCategoryNotifyCmdName       = "set-category-notify"
	addCategoryCloseRoleCmdName    = "add-category-close-role"
	removeCategoryCloseRoleCmdName = "remove-category-close-role"
	showCategoryRolesCmdName       = "show-category-roles"
	ticketCloseCmdName             = "ticket-close"
	ticketRenameCmdName            = "ticket-rename"
	ticketAddCmdName               = "ticket-add"
	ticketRemoveCmdName            = "ticket-remove"
	ticketHistoryCmdName           = "ticket-history"
)

const (
	optChannel     = "channel"
	optLabel       = "label"
	optDescription = "description"
	optEmoji       = "emoji"
	optOldLabel    = "old_label"
	optNewLabel    = "new_label"
	optNewDesc     = "new_description"
	optNewEmoji    = "new_emoji"
	optPosition    = "position"
	optRole        = "role"
	optNewName     = "new_name"
	optMember      = "member"
	optLimit       = "limit"
)

const (
	defaultHistoryLimit = 10
	maxHistoryLimit     = 25
)

func labelOption(description string) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Name:        optLabel,
		Type:        discordgo.ApplicationCommandOptionString,
		Description: description,
		Required:    true,
	}
}

// slashCommands are registered in every guild.
var slashCommands = []*discordgo.ApplicationCommand{
	{
		Name:        helpCmdName,
		Description: "Show the FastSupport commands",
	},
	{
		Name:        supportCmdName,
		Description: "\U0001F3AB Open a support ticket",
	},
	{
		Name:        setChannelCmdName,
		Description: "Set the channel the support message is posted in",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Name:         optChannel,
				Type:         discordgo.ApplicationCommandOptionChannel,
				Description:  "Channel the support message is posted in automatically",
				ChannelTypes: []discordgo.ChannelType{discordgo.ChannelTypeGuildText},
				Required:     true,
			},
		},
	},
	{
		Name:        sendEmbedCmdName,
		Description: "Post the support message in the support channel now",
	},
	{
		Name:        addCategoryCmdName,
		Description: "Add a ticket category",
		Options: []*discordgo.ApplicationCommandOption{
			labelOption("Title of the category"),
			{
				Name:        optDescription,
				Type:        discordgo.ApplicationCommandOptionString,
				Description: "Short description",
				Required:    true,
			},
			{
				Name:        optEmoji,
				Type:        discordgo.ApplicationCommandOptionString,
				Description: "Optional emoji",
			},
		},
	},
	{
		Name:        removeCategoryCmdName,
		Description: "Remove a category by its title",
		Options:     []*discordgo.ApplicationCommandOption{labelOption("Title of the category")},
	},
	{
		Name:        listCategoriesCmdName,
		Description: "Show the configured categories",
	},
	{
		Name:        modifyCategoryCmdName,
		Description: "Change the title, description or emoji of a category",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Name:        optOldLabel,
				Type:        discordgo.ApplicationCommandOptionString,
				Description: "Current title of the category",
				Required:    true,
			},
			{
				Name:        optNewLabel,
				Type:        discordgo.ApplicationCommandOptionString,
				Description: "New title",
			},
			{
				Name:        optNewDesc,
				Type:        discordgo.ApplicationCommandOptionString,
				Description: "New description",
			},
			{
				Name:        optNewEmoji,
				Type:        discordgo.ApplicationCommandOptionString,
				Description: "New emoji, a space to remove it",
			},
		},
	},
	{
		Name:        moveCategoryCmdName,
		Description: "Move a category to a position (1 is first)",
		Options: []*discordgo.ApplicationCommandOption{
			labelOption("Title of the category"),
			{
				Name:        optPosition,
				Type:        discordgo.ApplicationCommandOptionInteger,
				Description: "New position, starting at 1",
				Required:    true,
			},
		},
	},
	{
		Name:        setCategoryNotifyCmdName,
		Description: "Set the role mentioned when a ticket of the category is opened",
		Options: []*discordgo.ApplicationCommandOption{
			labelOption("Title of the category"),
			{
				Name:        optRole,
				Type:        discordgo.ApplicationCommandOptionRole,
				Description: "Role to mention, leave empty to remove",
			},
		},
	},
	{
		Name:        addCategoryCloseRoleCmdName,
		Description: "Allow a role to close tickets of a category",
		Options: []*discordgo.ApplicationCommandOption{
			labelOption("Title of the category"),
			{
				Name:        optRole,
				Type:        discordgo.ApplicationCommandOptionRole,
				Description: "Role allowed to close the tickets",
				Required:    true,
			},
		},
	},
	{
		Name:        removeCategoryCloseRoleCmdName,
		Description: "Stop a role from closing tickets of a category",
		Options: []*discordgo.ApplicationCommandOption{
			labelOption("Title of the category"),
			{
				Name:        optRole,
				Type:        discordgo.ApplicationCommandOptionRole,
				Description: "Role to remove",
				Required:    true,
			},
		},
	},
	{
		Name:        showCategoryRolesCmdName,
		Description: "Show the roles configured for a category",
		Options:     []*discordgo.ApplicationCommandOption{labelOption("Title of the category")},
	},
	{
		Name:        ticketCloseCmdName,
		Description: "\U0001F512 Close this ticket (run it in the ticket channel)",
	},
	{
		Name:        ticketRenameCmdName,
		Description: "✏️ Rename the ticket channel",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Name:        optNewName,
				Type:        discordgo.ApplicationCommandOptionString,
				Description: "New name of the channel",
				Required:    true,
			},
		},
	},
	{
		Name:        ticketAddCmdName,
		Description: "➕ Let a member see this ticket",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Name:        optMember,
				Type:        discordgo.ApplicationCommandOptionUser,
				Description: "Member to add",
				Required:    true,
			},
		},
	},
	{
		Name:        ticketRemoveCmdName,
		Description: "➖ Remove a member from this ticket",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Name:        optMember,
				Type:        discordgo.ApplicationCommandOptionUser,
				Description: "Member to remove",
				Required:    true,
			},
		},
	},
	{
		Name:        ticketHistoryCmdName,
		Description: "Show the archived ticket events of this ticket, or of the server",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Name:        optLimit,
				Type:        discordgo.ApplicationCommandOptionInteger,
				Description: "Number of events to show",
			},
		},
	},
}


// slashControllers maps every slash command to its processor.
func slashControllers() map[string]slashProcessor {
	return map[string]slashProcessor{
		helpCmdName:                    helpCmd,
		supportCmdName:                 supportCmd,
		setChannelCmdName:              adminOnly(setChannelCmd),
		sendEmbedCmdName:               adminOnly(sendEmbedCmd),
		addCategoryCmdName:             adminOnly(addCategoryCmd),
		removeCategoryCmdName:          adminOnly(removeCategoryCmd),
		listCategoriesCmdName:          adminOnly(listCategoriesCmd),
		modifyCategoryCmdName:          adminOnly(modifyCategoryCmd),
		moveCategoryCmdName:            adminOnly(moveCategoryCmd),
		setCategoryNotifyCmdName:       adminOnly(setCategoryNotifyCmd),
		addCategoryCloseRoleCmdName:    adminOnly(addCategoryCloseRoleCmd),
		removeCategoryCloseRoleCmdName: adminOnly(removeCategoryCloseRoleCmd),
		showCategoryRolesCmdName:       adminOnly(showCategoryRolesCmd),
		ticketCloseCmdName:             ticketCloseCmd,
		ticketRenameCmdName:            ticketRenameCmd,
		ticketAddCmdName:               ticketAddCmd,
		ticketRemoveCmdName:            ticketRemoveCmd,
		ticketHistoryCmdName:           adminOnly(ticketHistoryCmd),
	}
}

func adminOnly(next slashProcessor) slashProcessor {
	return func(a IApp, i *discordgo.InteractionCreate) error {
		if !isAdmin(i) {
			return respondEphemeral(a, i, messages.ErrAdminOnly)
		}
		return next(a, i)
	}
}

type options map[string]*discordgo.ApplicationCommandInteractionDataOption

func commandOptions(i *discordgo.InteractionCreate) options {
	opts := make(options)
	for _, o := range i.ApplicationCommandData().Options {
		opts[o.Name] = o
	}
	return opts
}

func (o options) text(name string) (string, bool) {
	opt, ok := o[name]
	if !ok {
		return "", false
	}
	return opt.StringValue(), true
}

// id returns the ID held by a channel, role or user option.
func (o options) id(name string) string {
	opt, ok := o[name]
	if !ok {
		return ""
	}
	v, _ := opt.Value.(string)
	return v
}

// respondDenial responds with the user facing message for err. Unexpected errors are returned for logging after the
// user has been answered.
func respondDenial(a IApp, i *discordgo.InteractionCreate, err error, unauthorized string) error {
	msg, expected := userMessage(err, unauthorized)
	if rerr := respondEphemeral(a, i, msg); rerr != nil {
		return fmt.Errorf("error responding to interaction: %w", rerr)
	}
	if expected {
		return nil
	}
	return err
}

func helpCmd(a IApp, i *discordgo.InteractionCreate) error {
	return respondEphemeralEmbed(a, i, helpEmbed())
}

func helpEmbed() *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "\U0001F198 FastSupport help",
		Description: "These are the available commands.",
		Color:       0x36393F,
		Fields: []*discordgo.MessageEmbedField{
			{
				Name: "\U0001F6E0️ Administration",
				Value: strings.Join([]string{
					"• `/help`: Show this list",
					"• `/support`: Open a support ticket",
					"• `/set-channel`: Set the support channel",
					"• `/send-embed`: Post the support message",
					"• `/add-category`: Add a category",
					"• `/remove-category`: Remove a category",
					"• `/modify-category`: Change a category",
					"• `/move-category`: Reorder the categories",
					"• `/list-categories`: Show the categories",
				}, "\n"),
			},
			{
				Name: "\U0001F465 Roles",
				Value: strings.Join([]string{
					"• `/set-category-notify`: Role mentioned when a ticket is opened",
					"• `/add-category-close-role`: Allow a role to close tickets",
					"• `/remove-category-close-role`: Stop a role from closing tickets",
					"• `/show-category-roles`: Show the roles of a category",
				}, "\n"),
			},
			{
				Name: "\U0001F510 Ticket commands",
				Value: strings.Join([]string{
					"• `!close` or `/ticket-close`: Close the ticket",
					"• `!add @user` or `/ticket-add`: Add a member to the ticket",
					"• `!remove @user` or `/ticket-remove`: Remove a member from the ticket",
					"• `!rename <name>` or `/ticket-rename`: Rename the ticket",
					"• `/ticket-history`: Show the archived ticket events",
				}, "\n"),
			},
		},
		Footer: &discordgo.MessageEmbedFooter{
			Text: "FastSupport",
		},
	}
}

func supportCmd(a IApp, i *discordgo.InteractionCreate) error {
	panel := a.Service().SupportPanelMessage(i.GuildID)
	return a.Session().InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds:     panel.Embeds,
			Components: panel.Components,
		},
	})
}

func setChannelCmd(a IApp, i *discordgo.InteractionCreate) error {
	channelID := commandOptions(i).id(optChannel)
	a.Service().SetSupportChannel(a.Context(), i.GuildID, channelID)
	return respondEphemeral(a, i, fmt.Sprintf(messages.SupportChannelSet, channelMention(channelID)))
}

func sendEmbedCmd(a IApp, i *discordgo.InteractionCreate) error {
	ch, err := a.Service().SendSupportPanel(a.Context(), i.GuildID)
	if err != nil {
		return respondDenial(a, i, err, messages.ErrAdminOnly)
	}
	return respondEphemeral(a, i, fmt.Sprintf(messages.SupportPanelSent, channelMention(ch.ID)))
}

func addCategoryCmd(a IApp, i *discordgo.InteractionCreate) error {
	opts := commandOptions(i)
	label, _ := opts.text(optLabel)
	description, _ := opts.text(optDescription)
	emoji, _ := opts.text(optEmoji)

	cat, err := a.Service().AddCategory(a.Context(), i.GuildID, label, description, emoji)
	if err != nil {
		return respondDenial(a, i, err, messages.ErrAdminOnly)
	}
	return respondEphemeral(a, i, fmt.Sprintf(messages.CategoryAdded, cat.Label))
}

func removeCategoryCmd(a IApp, i *discordgo.InteractionCreate) error {
	label, _ := commandOptions(i).text(optLabel)
	if err := a.Service().DeleteCategory(a.Context(), i.GuildID, label); err != nil {
		return respondDenial(a, i, err, messages.ErrAdminOnly)
	}
	return respondEphemeral(a, i, fmt.Sprintf(messages.CategoryRemoved, label))
}

func listCategoriesCmd(a IApp, i *discordgo.InteractionCreate) error {
	cats := a.Service().GetCategories(i.GuildID)
	if len(cats) == 0 {
		return respondEphemeral(a, i, messages.NoCategories)
	}
	return respondEphemeral(a, i, categoryList(cats))
}

func categoryList(cats []*entities.Category) string {
	lines := make([]string, 0, len(cats)+1)
	lines = append(lines, messages.CategoriesHeader)
	for _, c := range cats {
		line := "- "
		if e := c.DisplayEmoji(); e != "" {
			line += e + " "
		}
		line += fmt.Sprintf("**%s**: %s", c.Label, c.Description)
		if !c.NotifyRoleID.IsZero() {
			line += fmt.Sprintf(" (notify: %s)", roleMention(c.NotifyRoleID.String()))
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func modifyCategoryCmd(a IApp, i *discordgo.InteractionCreate) error {
	opts := commandOptions(i)
	oldLabel, _ := opts.text(optOldLabel)

	var changes ticketing.CategoryChanges
	if v, ok := opts.text(optNewLabel); ok {
		changes.Label = &v
	}
	if v, ok := opts.text(optNewDesc); ok {
		changes.Description = &v
	}
	if v, ok := opts.text(optNewEmoji); ok {
		changes.Emoji = &v
	}
	if changes.Label == nil && changes.Description == nil && changes.Emoji == nil {
		return respondEphemeral(a, i, fmt.Sprintf(messages.CategoryUnchanged, oldLabel))
	}

	mod, err := a.Service().ModifyCategory(a.Context(), i.GuildID, oldLabel, changes)
	if err != nil {
		return respondDenial(a, i, err, messages.ErrAdminOnly)
	}
	if len(mod.Changed) == 0 {
		return respondEphemeral(a, i, fmt.Sprintf(messages.CategoryUnchanged, mod.Category.Label))
	}
	return respondEphemeral(a, i, fmt.Sprintf(messages.CategoryModified,
		mod.Category.Label, strings.Join(mod.Changed, ", "), mod.TicketsUpdated))
}

func moveCategoryCmd(a IApp, i *discordgo.InteractionCreate) error {
	opts := commandOptions(i)
	label, _ := opts.text(optLabel)
	position := 1
	if o, ok := opts[optPosition]; ok {
		position = int(o.IntValue())
	}

	pos, moved, err := a.Service().MoveCategory(a.Context(), i.GuildID, label, position)
	if err != nil {
		return respondDenial(a, i, err, messages.ErrAdminOnly)
	}
	if !moved {
		return respondEphemeral(a, i, fmt.Sprintf(messages.CategoryNotMoved, label, pos))
	}
	return respondEphemeral(a, i, fmt.Sprintf(messages.CategoryMoved, label, pos))
}

func setCategoryNotifyCmd(a IApp, i *discordgo.InteractionCreate) error {
	opts := commandOptions(i)
	label, _ := opts.text(optLabel)
	roleID := opts.id(optRole)

	cat, err := a.Service().SetCategoryNotifyRole(a.Context(), i.GuildID, label, roleID)
	if err != nil {
		return respondDenial(a, i, err, messages.ErrAdminOnly)
	}
	if roleID == "" {
		return respondEphemeral(a, i, fmt.Sprintf(messages.NotifyRoleCleared, cat.Label))
	}
	return respondEphemeral(a, i, fmt.Sprintf(messages.NotifyRoleSet, roleMention(roleID), cat.Label))
}

func addCategoryCloseRoleCmd(a IApp, i *discordgo.InteractionCreate) error {
	opts := commandOptions(i)
	label, _ := opts.text(optLabel)
	roleID := opts.id(optRole)

	cat, changed, err := a.Service().AddCategoryCloseRole(a.Context(), i.GuildID, label, roleID)
	if err != nil {
		return respondDenial(a, i, err, messages.ErrAdminOnly)
	}
	format := messages.CloseRoleAdded
	if !changed {
		format = messages.CloseRoleExists
	}
	return respondEphemeral(a, i, fmt.Sprintf(format, roleMention(roleID), cat.Label))
}

func removeCategoryCloseRoleCmd(a IApp, i *discordgo.InteractionCreate) error {
	opts := commandOptions(i)
	label, _ := opts.text(optLabel)
	roleID := opts.id(optRole)

	cat, changed, err := a.Service().RemoveCategoryCloseRole(a.Context(), i.GuildID, label, roleID)
	if err != nil {
		return respondDenial(a, i, err, messages.ErrAdminOnly)
	}
	format := messages.CloseRoleRemoved
	if !changed {
		format = messages.CloseRoleMissing
	}
	return respondEphemeral(a, i, fmt.Sprintf(format, roleMention(roleID), cat.Label))
}

func showCategoryRolesCmd(a IApp, i *discordgo.InteractionCreate) error {
	label, _ := commandOptions(i).text(optLabel)
	cat, err := a.Service().GetCategory(i.GuildID, label)
	if err != nil {
		return respondDenial(a, i, err, messages.ErrAdminOnly)
	}
	return respondEphemeral(a, i, categoryRoles(cat))
}

func categoryRoles(cat *entities.Category) string {
	notify := messages.None
	if !cat.NotifyRoleID.IsZero() {
		notify = roleMention(cat.NotifyRoleID.String())
	}

	closeRoles := messages.None
	if len(cat.CloseRoleIDs) > 0 {
		mentions := make([]string, 0, len(cat.CloseRoleIDs))
		for _, id := range cat.CloseRoleIDs {
			mentions = append(mentions, roleMention(id.String()))
		}
		closeRoles = strings.Join(mentions, ", ")
	}
	return fmt.Sprintf(messages.CategoryRoles, cat.Label, notify, closeRoles)
}

func ticketCloseCmd(a IApp, i *discordgo.InteractionCreate) error {
	return finishTicket(a, i, i.GuildID, i.ChannelID, messages.TicketClosed, messages.ErrNotAllowedClose, a.Service().Close)
}

// finishTicket checks access before answering, because the channel the interaction came from is deleted by finish.
func finishTicket(
	a IApp,
	i *discordgo.InteractionCreate,
	guildID, channelID, done, unauthorized string,
	finish func(ctx context.Context, guildID, channelID string, actor ticketing.Actor) error,
) error {
	actor := interactionActor(i)
	if err := a.Service().CheckAccess(a.Context(), guildID, channelID, actor); err != nil {
		return respondDenial(a, i, err, unauthorized)
	}

	if err := respondEphemeral(a, i, done); err != nil {
		a.Log().Debug("Error acknowledging ticket end", slog.String(logging.KeyError, err.Error()))
	}
	return finish(a.Context(), guildID, channelID, actor)
}

func ticketRenameCmd(a IApp, i *discordgo.InteractionCreate) error {
	newName, _ := commandOptions(i).text(optNewName)
	name, err := a.Service().RenameTicket(a.Context(), i.GuildID, i.ChannelID, interactionActor(i), newName)
	if err != nil {
		return respondDenial(a, i, err, messages.ErrNotAllowedManage)
	}
	return respondEphemeral(a, i, fmt.Sprintf(messages.TicketRenamed, name))
}

func ticketAddCmd(a IApp, i *discordgo.InteractionCreate) error {
	memberID := commandOptions(i).id(optMember)
	if err := a.Service().AddParticipant(a.Context(), i.GuildID, i.ChannelID, interactionActor(i), memberID); err != nil {
		return respondDenial(a, i, err, messages.ErrNotAllowedManage)
	}
	return respondEphemeral(a, i, fmt.Sprintf(messages.ParticipantAdded, userMention(memberID)))
}

func ticketRemoveCmd(a IApp, i *discordgo.InteractionCreate) error {
	memberID := commandOptions(i).id(optMember)
	if err := a.Service().RemoveParticipant(a.Context(), i.GuildID, i.ChannelID, interactionActor(i), memberID); err != nil {
		return respondDenial(a, i, err, messages.ErrNotAllowedManage)
	}
	return respondEphemeral(a, i, fmt.Sprintf(messages.ParticipantRemoved, userMention(memberID)))
}

// ticketHistoryCmd shows the archived events of the ticket it is run in, or the latest events of the guild.
func ticketHistoryCmd(a IApp, i *discordgo.InteractionCreate) error {
	hist := a.History()
	if hist == nil {
		return respondEphemeral(a, i, messages.HistoryDisabled)
	}

	limit := int64(defaultHistoryLimit)
	if o, ok := commandOptions(i)[optLimit]; ok {
		limit = min(max(o.IntValue(), 1), maxHistoryLimit)
	}

	var (
		events []*entities.TicketEvent
		err    error
	)
	if _, ok := a.Service().Ticket(i.GuildID, i.ChannelID); ok {
		events, err = hist.ChannelHistory(a.Context(), i.GuildID, i.ChannelID)
		if len(events) > int(limit) {
			events = events[len(events)-int(limit):]
		}
	} else {
		events, err = hist.GuildHistory(a.Context(), i.GuildID, limit)
	}
	if err != nil {
		return fmt.Errorf("error getting ticket history: %w", err)
	}

	if len(events) == 0 {
		return respondEphemeral(a, i, messages.NoHistory)
	}
	return respondEphemeral(a, i, historyList(events))
}

func historyList(events []*entities.TicketEvent) string {
	lines := make([]string, 0, len(events)+1)
	lines = append(lines, messages.HistoryHeader)
	for _, e := range events {
		line := fmt.Sprintf("- `%s` **%s** #%s by %s",
			e.Timestamp.Time().UTC().Format(time.DateTime), e.Kind, e.ChannelName, userMention(e.ActorID))
		if e.Category != "" {
			line += fmt.Sprintf(" (%s)", e.Category)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}
