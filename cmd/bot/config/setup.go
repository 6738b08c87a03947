package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"

	"github.com/Jacobbrewer1/fastsupport/pkg/logging"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

// ErrIncompleteConfig is returned when a required setting is missing.
var ErrIncompleteConfig = errors.New("incomplete configuration")

// Config is the configuration of the bot.
type Config struct {
	// BotToken is the token for the bot.
	BotToken string

	// ApplicationId is the ID of the application.
	ApplicationId string

	// MongoUri is the URI for the MongoDB database. Empty disables the ticket history archive.
	MongoUri string

	// MonitoringPort is the port for the monitoring server.
	MonitoringPort string

	// ConfigFile is the guild configuration file.
	ConfigFile string

	// MaxBackups is the number of configuration backups kept.
	MaxBackups int

	// LegacyStaffRole is the name of the role that may manage every ticket. Empty disables it.
	LegacyStaffRole string
}

// LoadDotEnv loads the .env file into the environment. Variables that are already set win. A missing file is not an
// error.
func LoadDotEnv(l *slog.Logger) error {
	path := os.Getenv(EnvDotEnvFile)
	if path == "" {
		path = defaultDotEnvFile
	}

	if err := godotenv.Load(path); errors.Is(err, fs.ErrNotExist) {
		l.Debug("No .env file found", slog.String("path", path))
		return nil
	} else if err != nil {
		return fmt.Errorf("error loading %s: %w", path, err)
	}

	l.Debug("Loaded .env file", slog.String("path", path))
	return nil
}

// Parse reads the configuration from the environment and the command line arguments.
func Parse(l *slog.Logger) (*Config, error) {
	return ParseArgs(l, os.Args[1:])
}

// ParseArgs reads the configuration from the environment, then lets the arguments override it.
func ParseArgs(l *slog.Logger, args []string) (*Config, error) {
	c := &Config{
		MonitoringPort:  defaultMonitoringPort,
		ConfigFile:      defaultConfigFile,
		MaxBackups:      defaultMaxBackups,
		LegacyStaffRole: defaultLegacyStaff,
	}

	if envBT := os.Getenv(EnvBotToken); envBT != "" {
		l.Debug("Found bot token in environment", slog.String("key", EnvBotToken))
		c.BotToken = envBT
	}

	if envAppId := os.Getenv(EnvApplicationId); envAppId != "" {
		l.Debug("Found application ID in environment", slog.String("key", EnvApplicationId))
		c.ApplicationId = envAppId
	}

	if envMongoUri := os.Getenv(EnvMongoUri); envMongoUri != "" {
		l.Debug("Found MongoDB URI in environment", slog.String("key", EnvMongoUri))
		c.MongoUri = envMongoUri
	}

	if envMonitoringPort := os.Getenv(EnvMonitoringPort); envMonitoringPort != "" {
		l.Debug("Found monitoring port in environment", slog.String("key", EnvMonitoringPort))
		c.MonitoringPort = envMonitoringPort
	}

	if envConfigFile := os.Getenv(EnvConfigFile); envConfigFile != "" {
		l.Debug("Found configuration file in environment", slog.String("key", EnvConfigFile))
		c.ConfigFile = envConfigFile
	}

	if envMaxBackups := os.Getenv(EnvConfigMaxBackups); envMaxBackups != "" {
		n, err := strconv.Atoi(envMaxBackups)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid %s %q: must be a non-negative integer", EnvConfigMaxBackups, envMaxBackups)
		}
		c.MaxBackups = n
	}

	if role, ok := os.LookupEnv(EnvLegacyStaffRole); ok {
		l.Debug("Found legacy staff role in environment", slog.String("key", EnvLegacyStaffRole))
		c.LegacyStaffRole = role
	}

	flags := pflag.NewFlagSet(AppName, pflag.ContinueOnError)
	flags.StringVar(&c.ConfigFile, "config-file", c.ConfigFile, "Guild configuration file")
	flags.StringVar(&c.MonitoringPort, "monitoring-port", c.MonitoringPort, "Port of the metrics and health server")
	flags.IntVar(&c.MaxBackups, "max-backups", c.MaxBackups, "Number of configuration backups kept")
	flags.StringVar(&c.LegacyStaffRole, "legacy-staff-role", c.LegacyStaffRole, "Role that may manage every ticket, empty to disable")
	if err := flags.Parse(args); err != nil {
		return nil, fmt.Errorf("error parsing flags: %w", err)
	}

	if c.BotToken == "" || c.ApplicationId == "" {
		l.Error("Not all required environment variables have been provided",
			slog.String(logging.KeyError, ErrIncompleteConfig.Error()),
			slog.Bool(EnvBotToken, c.BotToken != ""),
			slog.Bool(EnvApplicationId, c.ApplicationId != ""),
		)
		return nil, ErrIncompleteConfig
	}

	if c.MongoUri == "" {
		l.Info("No MongoDB URI provided, ticket history will not be archived", slog.String("key", EnvMongoUri))
	}
	return c, nil
}
