package logging

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    slog.Level
		wantErr bool
	}{
		{name: "Empty", in: "", want: slog.LevelInfo},
		{name: "Debug", in: "DEBUG", want: slog.LevelDebug},
		{name: "Warning", in: " warning ", want: slog.LevelWarn},
		{name: "Error", in: "error", want: slog.LevelError},
		{name: "Unknown", in: "loud", want: slog.LevelInfo, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			require.Equal(t, tt.want, got)
		})
	}
}

func TestCommonLogger(t *testing.T) {
	buf := new(bytes.Buffer)
	l, err := CommonLogger(NewConfig(`tests`).WithWriter(buf))
	require.NoError(t, err)

	l.Info("hello")
	require.Contains(t, buf.String(), `"app":"tests"`)
	require.Contains(t, buf.String(), `"msg":"hello"`)

	_, err = CommonLogger(NewConfig(""))
	require.Error(t, err)
}
