package config

import "time"

const (
	// AppName is the name of the application.
	AppName = "fastsupport"

	// EnvBotToken is the environment variable for the bot token.
	EnvBotToken = `BOT_TOKEN`

	// EnvApplicationId is the environment variable for the application ID.
	EnvApplicationId = `APPLICATION_ID`

	// EnvMongoUri is the environment variable for the MongoDB URI. The ticket history is only archived when it is set.
	EnvMongoUri = `MONGO_URI`

	// EnvMonitoringPort is the environment variable for the monitoring port.
	EnvMonitoringPort = `MONITORING_PORT`

	// EnvConfigFile is the environment variable for the guild configuration file.
	EnvConfigFile = `CONFIG_FILE`

	// EnvConfigMaxBackups is the environment variable for the number of configuration backups kept.
	EnvConfigMaxBackups = `CONFIG_MAX_BACKUPS`

	// EnvLegacyStaffRole is the environment variable for the name of the role that may manage every ticket.
	EnvLegacyStaffRole = `LEGACY_STAFF_ROLE`

	// EnvDotEnvFile is the environment variable for the .env file to load.
	EnvDotEnvFile = `DOTENV_FILE`
)

const (
	defaultMonitoringPort = "8080"
	defaultConfigFile     = "guild_config.json"
	defaultMaxBackups     = 5
	defaultLegacyStaff    = "Staff"
	defaultDotEnvFile     = ".env"

	// DefaultShutdownTimeout is how long the shutdown hook waits for the final save.
	DefaultShutdownTimeout = 10 * time.Second
)
