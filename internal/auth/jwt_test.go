package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testKey    = "test-signing-key"
	testIssuer = "qrattend-test"
)

func TestCheckLogin(t *testing.T) {
	assert.NoError(t, CheckLogin("admin", "secret", "admin", "secret"))
	assert.ErrorIs(t, CheckLogin("admin", "wrong", "admin", "secret"), ErrBadCredentials)
	assert.ErrorIs(t, CheckLogin("other", "secret", "admin", "secret"), ErrBadCredentials)
}

func TestIssueAndParse(t *testing.T) {
	pair, err := Issue("admin", testIssuer, testKey, 15*time.Minute, 24*time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	assert.True(t, pair.RefreshExp.After(pair.AccessExp))

	claims, err := Parse(pair.AccessToken, testKey, testIssuer)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Subject)
	assert.Equal(t, RoleStaff, claims.Role)
}

func TestParseWrongKey(t *testing.T) {
	pair, err := Issue("admin", testIssuer, testKey, time.Minute, time.Hour)
	require.NoError(t, err)

	_, err = Parse(pair.AccessToken, "different-key", testIssuer)
	assert.Error(t, err)
}

func TestParseWrongIssuer(t *testing.T) {
	pair, err := Issue("admin", "someone-else", testKey, time.Minute, time.Hour)
	require.NoError(t, err)

	_, err = Parse(pair.AccessToken, testKey, testIssuer)
	assert.Error(t, err)
}

func TestParseExpired(t *testing.T) {
	pair, err := Issue("admin", testIssuer, testKey, -time.Minute, time.Hour)
	require.NoError(t, err)

	_, err = Parse(pair.AccessToken, testKey, testIssuer)
	assert.Error(t, err)
}
