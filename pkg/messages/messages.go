package messages

// Errors shown to users.
const (
	ErrUserErrorProcessing = "❌ Something went wrong while processing your request. Please try again later."
	ErrAdminOnly           = "❌ You must be an administrator to use this command."
	ErrNotATicket          = "⚠️ This channel does not look like a ticket."
	ErrNotAllowedClose     = "⛔ You do not have permission to close this ticket."
	ErrNotAllowedManage    = "⛔ You do not have permission to manage this ticket."
	ErrNotAllowedClaim     = "⛔ You do not have permission to claim this ticket."
	ErrCategoryNotFound    = "⚠️ Category not found."
	ErrCategoryExists      = "⚠️ A category with this name already exists."
	ErrNoSupportChannel    = "❌ No support channel is configured and no `support` channel was found."
	ErrInvalidName         = "❌ That name cannot be used for a channel."
	ErrGuildOnly           = "❌ This command can only be used in a server."
	ErrPlatform            = "❌ Discord did not accept the request (missing permissions?)."
	ErrMemberRequired      = "❌ Mention the member, for example `!add @user`."
	ErrNameRequired        = "❌ Give the new name, for example `!rename billing`."
)

// Confirmations shown to users.
const (
	TicketClosed     = "\U0001F512 Ticket closed."
	TicketResolved   = "✅ Ticket resolved."
	NoCategories     = "No categories configured."
	CategoriesHeader = "**Categories:**"
	None             = "none"
	HistoryDisabled  = "ℹ️ Ticket history is not archived on this bot."
	NoHistory        = "ℹ️ No ticket history yet."
	HistoryHeader    = "**Ticket history:**"
)

// Formats shown to users. Each is used with fmt.Sprintf.
const (
	TicketCreated      = "✅ Your ticket has been created: %s"
	DuplicateTicket    = "⚠️ You already have an open ticket: %s"
	AlreadyClaimed     = "\U0001F6D1 This ticket has already been claimed by %s."
	TicketClaimed      = "✅ You claimed this ticket."
	TicketRenamed      = "✏️ Ticket renamed to `%s`."
	ParticipantAdded   = "✅ %s can now see this ticket."
	ParticipantRemoved = "✅ %s can no longer see this ticket."
	SupportChannelSet  = "✅ Support channel set to %s"
	SupportPanelSent   = "✅ Support message sent in %s"
	CategoryAdded      = "✅ Category **%s** added."
	CategoryRemoved    = "\U0001F5D1️ Category **%s** removed."
	CategoryModified   = "✅ Category **%s** modified (%s). %d open ticket(s) updated."
	CategoryUnchanged  = "ℹ️ Nothing to change on category **%s**."
	CategoryMoved      = "✅ Category **%s** moved to position %d."
	CategoryNotMoved   = "ℹ️ Category **%s** is already at position %d."
	NotifyRoleSet      = "✅ %s will be mentioned when a **%s** ticket is opened."
	NotifyRoleCleared  = "✅ Nobody will be mentioned when a **%s** ticket is opened."
	CloseRoleAdded     = "✅ %s can now close **%s** tickets."
	CloseRoleExists    = "ℹ️ %s can already close **%s** tickets."
	CloseRoleRemoved   = "✅ %s can no longer close **%s** tickets."
	CloseRoleMissing   = "ℹ️ %s could not close **%s** tickets."
	CategoryRoles      = "**%s**\nNotify: %s\nClose roles: %s"
)
