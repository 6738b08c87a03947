package custom

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSnowflake_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    Snowflake
		wantErr bool
	}{
		{name: "String", in: `"123456789012345678"`, want: "123456789012345678"},
		{name: "Number", in: `1180843473932419123`, want: "1180843473932419123"},
		{name: "Null", in: `null`, want: ""},
		{name: "Float", in: `1.5`, wantErr: true},
		{name: "Bool", in: `true`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Snowflake
			err := json.Unmarshal([]byte(tt.in), &got)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestSnowflake_MarshalJSON(t *testing.T) {
	got, err := json.Marshal(struct {
		A Snowflake `json:"a"`
		B Snowflake `json:"b"`
	}{A: "42"})
	require.NoError(t, err)
	require.JSONEq(t, `{"a":"42","b":null}`, string(got))
}

func TestIsNumeric(t *testing.T) {
	require.True(t, IsNumeric("0123"))
	require.False(t, IsNumeric(""))
	require.False(t, IsNumeric("partnership-bob"))
	require.False(t, IsNumeric("12a"))
}
