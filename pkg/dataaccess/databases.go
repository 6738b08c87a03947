package dataaccess

const (
	// mongoDatabase is the database the bot keeps its archives in.
	mongoDatabase = "fastsupport"

	// historyCollection holds one document per ticket transition.
	historyCollection = "ticket_history"
)
