package logging

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

const (
	// KeyError is the key used for errors in log attributes.
	KeyError = "error"

	// KeyDal is the key used for the data access layer name.
	KeyDal = "dal"

	// KeyGuild is the key used for guild IDs.
	KeyGuild = "guild_id"

	// KeyChannel is the key used for channel IDs.
	KeyChannel = "channel_id"

	// KeyUser is the key used for user IDs.
	KeyUser = "user_id"

	// KeyApp is the key used for the application name.
	KeyApp = "app"
)

// EnvLogLevel is the environment variable used to set the log level.
const EnvLogLevel = `LOG_LEVEL`

// Name is the name of the application that is logging.
type Name string

// Config is the configuration for a logger.
type Config struct {
	// appName is the name of the application.
	appName Name

	// level is the minimum level that will be logged.
	level slog.Level

	// w is where the logs are written to.
	w io.Writer
}

// NewConfig creates a new logging configuration for the given application. The level is read from the environment,
// defaulting to info.
func NewConfig(appName Name) *Config {
	lvl, err := ParseLevel(os.Getenv(EnvLogLevel))
	if err != nil {
		lvl = slog.LevelInfo
	}

	return &Config{
		appName: appName,
		level:   lvl,
		w:       os.Stdout,
	}
}

// WithWriter sets where the logs are written to.
func (c *Config) WithWriter(w io.Writer) *Config {
	c.w = w
	return c
}

// CommonLogger creates the logger that is shared by the application.
func CommonLogger(c *Config) (*slog.Logger, error) {
	if c == nil {
		return nil, errors.New("logging config is nil")
	}
	if c.appName == "" {
		return nil, errors.New("application name is required")
	}

	h := slog.NewJSONHandler(c.w, &slog.HandlerOptions{
		AddSource: c.level == slog.LevelDebug,
		Level:     c.level,
	})

	l := slog.New(h).With(slog.String(KeyApp, string(c.appName)))
	slog.SetDefault(l)
	return l, nil
}

// ParseLevel converts a textual level into a slog level. An empty string is info.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}
