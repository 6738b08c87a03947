package config

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setRequired(t *testing.T) {
	t.Setenv(EnvBotToken, "token")
	t.Setenv(EnvApplicationId, "123")
}

func TestParseArgs_Defaults(t *testing.T) {
	setRequired(t)

	c, err := ParseArgs(newTestLogger(), nil)
	require.NoError(t, err)
	require.Equal(t, &Config{
		BotToken:        "token",
		ApplicationId:   "123",
		MonitoringPort:  "8080",
		ConfigFile:      "guild_config.json",
		MaxBackups:      5,
		LegacyStaffRole: "Staff",
	}, c)
}

func TestParseArgs_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv(EnvMongoUri, "mongodb://localhost:27017")
	t.Setenv(EnvMonitoringPort, "9090")
	t.Setenv(EnvConfigFile, "/data/env.json")
	t.Setenv(EnvConfigMaxBackups, "2")
	t.Setenv(EnvLegacyStaffRole, "")

	c, err := ParseArgs(newTestLogger(), []string{"--config-file", "/data/flag.json"})
	require.NoError(t, err)
	require.Equal(t, "mongodb://localhost:27017", c.MongoUri)
	require.Equal(t, "9090", c.MonitoringPort)
	require.Equal(t, "/data/flag.json", c.ConfigFile, "flags win over the environment")
	require.Equal(t, 2, c.MaxBackups)
	require.Empty(t, c.LegacyStaffRole)
}

func TestParseArgs_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		args []string
	}{
		{
			name: "MissingToken",
			env:  map[string]string{EnvBotToken: "", EnvApplicationId: "123"},
		},
		{
			name: "BadBackups",
			env:  map[string]string{EnvBotToken: "token", EnvApplicationId: "123", EnvConfigMaxBackups: "-1"},
		},
		{
			name: "UnknownFlag",
			env:  map[string]string{EnvBotToken: "token", EnvApplicationId: "123"},
			args: []string{"--nope"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := ParseArgs(newTestLogger(), tt.args)
			require.Error(t, err)
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(path, []byte("BOT_TOKEN=from-file\nAPPLICATION_ID=456\n"), 0o600))

	t.Setenv(EnvDotEnvFile, path)
	t.Setenv(EnvBotToken, "")
	require.NoError(t, os.Unsetenv(EnvBotToken))
	t.Setenv(EnvApplicationId, "from-env")

	require.NoError(t, LoadDotEnv(newTestLogger()))
	require.Equal(t, "from-file", os.Getenv(EnvBotToken))
	require.Equal(t, "from-env", os.Getenv(EnvApplicationId), "the environment wins")

	t.Setenv(EnvDotEnvFile, filepath.Join(dir, "missing.env"))
	require.NoError(t, LoadDotEnv(newTestLogger()))
}
