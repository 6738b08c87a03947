package custom

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestDatetime_JSON(t *testing.T) {
	d := Datetime(time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC))

	b, err := json.Marshal(d)
	require.NoError(t, err)
	require.Equal(t, `"2024-03-01T12:30:00Z"`, string(b))

	var got Datetime
	require.NoError(t, json.Unmarshal(b, &got))
	require.True(t, time.Time(d).Equal(time.Time(got)))

	b, err = json.Marshal(Datetime{})
	require.NoError(t, err)
	require.Equal(t, `null`, string(b))

	require.NoError(t, json.Unmarshal([]byte(`null`), &got))
	require.True(t, got.IsZero())
}

func TestDatetime_BSON(t *testing.T) {
	type record struct {
		At Datetime `bson:"at"`
	}
	d := Datetime(time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC))

	b, err := bson.Marshal(record{At: d})
	require.NoError(t, err)

	raw := bson.Raw(b).Lookup("at")
	require.Equal(t, bson.TypeString, raw.Type)
	require.Equal(t, "2024-03-01T12:30:00Z", raw.StringValue())

	var got record
	require.NoError(t, bson.Unmarshal(b, &got))
	require.True(t, time.Time(d).Equal(time.Time(got.At)))

	b, err = bson.Marshal(bson.M{"at": 42})
	require.NoError(t, err)
	require.Error(t, bson.Unmarshal(b, &got))
}
