package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseID(t *testing.T) {
	id, err := ParseID("42")
	require.NoError(t, err)
	assert.Equal(t, ID(42), id)

	id, err = ParseID(" 7 ")
	require.NoError(t, err)
	assert.Equal(t, ID(7), id)

	for _, raw := range []string{"", "abc", "0", "-3", "1.5"} {
		_, err := ParseID(raw)
		assert.Error(t, err, "raw=%q", raw)
	}
}

func TestIDMarshalsAsString(t *testing.T) {
	data, err := json.Marshal(ID(9007199254740993))
	require.NoError(t, err)
	assert.Equal(t, `"9007199254740993"`, string(data))

	payload, err := json.Marshal(struct {
		ID ID `json:"id"`
	}{ID: 12})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"12"}`, string(payload))
}

func TestIDUnmarshal(t *testing.T) {
	var id ID
	require.NoError(t, json.Unmarshal([]byte(`"33"`), &id))
	assert.Equal(t, ID(33), id)

	id = 0
	require.NoError(t, json.Unmarshal([]byte(`44`), &id))
	assert.Equal(t, ID(44), id)

	id = 5
	require.NoError(t, json.Unmarshal([]byte(`null`), &id))
	assert.Equal(t, ID(5), id, "null leaves the value unchanged")

	assert.Error(t, json.Unmarshal([]byte(`"abc"`), &id))
	assert.Error(t, json.Unmarshal([]byte(`1.5`), &id))
}
