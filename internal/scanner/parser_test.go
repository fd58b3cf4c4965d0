package scanner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePayloadJSON(t *testing.T) {
	id, err := ParsePayload(`{"indexNumber":"ST-1042","name":"Amara Silva","parent_telephone":"+94 71 234 5678"}`)
	require.NoError(t, err)
	assert.Equal(t, "ST-1042", id.IndexNumber)
	assert.Equal(t, "Amara Silva", id.Name)
	assert.Equal(t, "+94 71 234 5678", id.ParentTelephone)
	assert.True(t, id.Valid())
}

func TestParsePayloadJSONWithoutIndex(t *testing.T) {
	id, err := ParsePayload(`{"name":"Amara Silva"}`)
	require.NoError(t, err)
	assert.False(t, id.Valid())
}

func TestParsePayloadURL(t *testing.T) {
	id, err := ParsePayload("https://school.example/students?indexNumber=ST-2001&name=Nimal")
	require.NoError(t, err)
	assert.Equal(t, "ST-2001", id.IndexNumber)
	assert.Equal(t, "Nimal", id.Name)
}

func TestParsePayloadURLWithoutIndexValue(t *testing.T) {
	_, err := ParsePayload("https://school.example/students?indexNumber=")
	assert.ErrorIs(t, err, ErrUnrecognizedPayload)
}

func TestParsePayloadRawText(t *testing.T) {
	id, err := ParsePayload("  hello world  ")
	require.NoError(t, err)
	assert.False(t, id.Valid())
	assert.Equal(t, "hello world", id.RawData)
}

func TestParsePayloadEmpty(t *testing.T) {
	_, err := ParsePayload("   ")
	assert.ErrorIs(t, err, ErrUnrecognizedPayload)
}

func TestParsePayloadJSONWinsOverURLShape(t *testing.T) {
	// A JSON object containing "indexNumber=" in a value still parses as JSON.
	id, err := ParsePayload(`{"indexNumber":"ST-3","rawData":"x?indexNumber=ST-999"}`)
	require.NoError(t, err)
	assert.Equal(t, "ST-3", id.IndexNumber)
}
